package bookingRepo

import (
	"context"

	"bengkelbot/models"
)

// BookingRepository defines the interface for booking data access. Capacity
// queries only ever see "active" bookings (pending, confirmed, in-progress,
// in-queue); terminal statuses are filtered out at the query level.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) (string, error)
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	UpdateStatus(ctx context.Context, id, status string) error
	ListByDate(ctx context.Context, date string) ([]models.Booking, error)

	// ActiveOnDate returns every active booking that starts on the given date,
	// regardless of category.
	ActiveOnDate(ctx context.Context, date string) ([]models.Booking, error)

	// ActiveByCategoryOnDate returns active bookings of one category starting
	// on the given date.
	ActiveByCategoryOnDate(ctx context.Context, category, date string) ([]models.Booking, error)

	// ActiveByCategoryStartingBefore returns active bookings of one category
	// whose start date is strictly before the given date. Callers filter by
	// each booking's own occupancy span, which is not bounded by any
	// configured constant.
	ActiveByCategoryStartingBefore(ctx context.Context, category, before string) ([]models.Booking, error)
}
