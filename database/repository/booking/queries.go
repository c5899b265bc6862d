package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"bengkelbot/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func activeStatusFilter() bson.M {
	return bson.M{"$in": models.ActiveStatuses}
}

func (r *MongoBookingRepo) findBookings(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}})
	cursor, err := r.coll.Find(cctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("booking query failed: %w", err)
	}
	defer cursor.Close(cctx)

	var bookings []models.Booking
	if err := cursor.All(cctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}

// ListByDate returns every booking on a date, any status. Used by the
// dashboard endpoints.
func (r *MongoBookingRepo) ListByDate(ctx context.Context, date string) ([]models.Booking, error) {
	return r.findBookings(ctx, bson.M{"date": date})
}

// ActiveOnDate returns active bookings starting on the given date.
func (r *MongoBookingRepo) ActiveOnDate(ctx context.Context, date string) ([]models.Booking, error) {
	return r.findBookings(ctx, bson.M{
		"date":   date,
		"status": activeStatusFilter(),
	})
}

// ActiveByCategoryOnDate returns active bookings of one category on a date.
func (r *MongoBookingRepo) ActiveByCategoryOnDate(ctx context.Context, category, date string) ([]models.Booking, error) {
	return r.findBookings(ctx, bson.M{
		"category": category,
		"date":     date,
		"status":   activeStatusFilter(),
	})
}

// ActiveByCategoryStartingBefore returns active bookings of one category whose
// start date is strictly before the given date. ISO dates compare correctly as
// strings, so a plain range filter is enough.
func (r *MongoBookingRepo) ActiveByCategoryStartingBefore(ctx context.Context, category, before string) ([]models.Booking, error) {
	return r.findBookings(ctx, bson.M{
		"category": category,
		"date":     bson.M{"$lt": before},
		"status":   activeStatusFilter(),
	})
}
