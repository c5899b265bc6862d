package schedule

import (
	"context"
	"fmt"
	"testing"

	"bengkelbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBookingRepo is an in-memory stand-in for the Mongo repository.
type fakeBookingRepo struct {
	bookings []models.Booking
	nextID   int
}

func (f *fakeBookingRepo) Create(ctx context.Context, b *models.Booking) (string, error) {
	f.nextID++
	b.ID = fmt.Sprintf("bk-%d", f.nextID)
	f.bookings = append(f.bookings, *b)
	return b.ID, nil
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	for i := range f.bookings {
		if f.bookings[i].ID == id {
			return &f.bookings[i], nil
		}
	}
	return nil, fmt.Errorf("booking %s not found", id)
}

func (f *fakeBookingRepo) UpdateStatus(ctx context.Context, id, status string) error {
	for i := range f.bookings {
		if f.bookings[i].ID == id {
			f.bookings[i].Status = status
			return nil
		}
	}
	return fmt.Errorf("booking %s not found", id)
}

func (f *fakeBookingRepo) ListByDate(ctx context.Context, date string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.bookings {
		if b.Date == date {
			out = append(out, b)
		}
	}
	return out, nil
}

func isActive(status string) bool {
	for _, s := range models.ActiveStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func (f *fakeBookingRepo) ActiveOnDate(ctx context.Context, date string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.bookings {
		if b.Date == date && isActive(b.Status) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) ActiveByCategoryOnDate(ctx context.Context, category, date string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.bookings {
		if b.Category == category && b.Date == date && isActive(b.Status) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) ActiveByCategoryStartingBefore(ctx context.Context, category, before string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.bookings {
		if b.Category == category && b.Date < before && isActive(b.Status) {
			out = append(out, b)
		}
	}
	return out, nil
}

func newEngine(repo *fakeBookingRepo) *DefaultSchedulingEngine {
	return &DefaultSchedulingEngine{Repo: repo, Limits: DefaultLimits()}
}

func detailingBooking(date, tm, status string) models.Booking {
	return models.Booking{
		Service: "Coating Motor Doff", Category: models.CategoryDetailing,
		Date: date, Time: tm, DurationMinutes: 120, Status: status,
	}
}

func repaintBooking(date string, days int) models.Booking {
	return models.Booking{
		Service: "Repaint Bodi Halus", Category: models.CategoryRepaint,
		Date: date, Time: "09:00", DurationMinutes: 480,
		EstimatedDays: days, Status: models.StatusConfirmed,
	}
}

func TestDetailingCapacityMonotonicity(t *testing.T) {
	repo := &fakeBookingRepo{}
	engine := newEngine(repo)
	req := models.BookingRequest{Service: "Coating Motor Doff", Date: "2025-06-10", Time: "10:00", DurationMinutes: 120}

	// Below the limit the slot is available; at the limit it is not.
	res, err := engine.CheckAvailability(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.Available)

	repo.bookings = append(repo.bookings, detailingBooking("2025-06-10", "08:00", models.StatusConfirmed))
	res, err = engine.CheckAvailability(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.Available)

	repo.bookings = append(repo.bookings, detailingBooking("2025-06-10", "13:00", models.StatusPending))
	res, err = engine.CheckAvailability(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, res.Available)
	assert.NotEmpty(t, res.Reason)
}

func TestCancelledBookingsDoNotConsumeCapacity(t *testing.T) {
	repo := &fakeBookingRepo{}
	repo.bookings = append(repo.bookings,
		detailingBooking("2025-06-10", "08:00", models.StatusCancelled),
		detailingBooking("2025-06-10", "10:00", models.StatusCompleted),
	)
	engine := newEngine(repo)

	res, err := engine.CheckAvailability(context.Background(), models.BookingRequest{
		Service: "Detailing Full", Date: "2025-06-10", Time: "10:00", DurationMinutes: 120,
	})
	require.NoError(t, err)
	assert.True(t, res.Available)
}

func TestRepaintOverlapWindow(t *testing.T) {
	repo := &fakeBookingRepo{}
	// Job A occupies 07-01..07-05, job B occupies 07-03..07-07.
	repo.bookings = append(repo.bookings,
		repaintBooking("2025-07-01", 5),
		repaintBooking("2025-07-03", 5),
	)
	engine := newEngine(repo)

	req := models.BookingRequest{Service: "Repaint Bodi Kasar", Date: "2025-07-04", Time: "09:00", DurationMinutes: 480}
	res, err := engine.CheckAvailability(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, res.Available, "two repaint jobs already overlap 2025-07-04")

	req.Date = "2025-07-08"
	res, err = engine.CheckAvailability(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.Available, "only job B's window reaches 2025-07-07")
}

func TestRepaintLongJobsStillConsumeCapacity(t *testing.T) {
	repo := &fakeBookingRepo{}
	// Both jobs run 07-01..07-07, longer than the default 5-day window.
	repo.bookings = append(repo.bookings,
		repaintBooking("2025-07-01", 7),
		repaintBooking("2025-07-01", 7),
	)
	engine := newEngine(repo)

	req := models.BookingRequest{Service: "Repaint Bodi Kasar", Date: "2025-07-06", Time: "09:00", DurationMinutes: 480}
	res, err := engine.CheckAvailability(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, res.Available, "both 7-day jobs still occupy 2025-07-06")

	req.Date = "2025-07-08"
	res, err = engine.CheckAvailability(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.Available, "both jobs end before 2025-07-08")
}

func TestSimpleServiceIntervalIntersection(t *testing.T) {
	repo := &fakeBookingRepo{}
	repo.bookings = append(repo.bookings, models.Booking{
		Service: "Ganti Oli", Category: models.CategoryOther,
		Date: "2025-06-12", Time: "10:00", DurationMinutes: 60,
		Status: models.StatusConfirmed,
	})
	engine := newEngine(repo)

	// 10:30 starts inside the existing 10:00-11:00 interval.
	res, err := engine.CheckAvailability(context.Background(), models.BookingRequest{
		Service: "Servis Ringan", Date: "2025-06-12", Time: "10:30", DurationMinutes: 60,
	})
	require.NoError(t, err)
	assert.False(t, res.Available)

	// 11:00 touches the boundary; strict intersection allows it.
	res, err = engine.CheckAvailability(context.Background(), models.BookingRequest{
		Service: "Servis Ringan", Date: "2025-06-12", Time: "11:00", DurationMinutes: 60,
	})
	require.NoError(t, err)
	assert.True(t, res.Available)
}

func TestOvernightWarningIsAdvisory(t *testing.T) {
	engine := newEngine(&fakeBookingRepo{})

	res, err := engine.CheckAvailability(context.Background(), models.BookingRequest{
		Service: "Coating Motor Glossy", Date: "2025-06-12", Time: "16:00", DurationMinutes: 180,
	})
	require.NoError(t, err)
	assert.True(t, res.Available)
	assert.NotEmpty(t, res.OvernightWarning)

	// Repaint jobs are multi-day by nature; no overnight warning.
	res, err = engine.CheckAvailability(context.Background(), models.BookingRequest{
		Service: "Repaint Bodi Halus", Date: "2025-06-12", Time: "16:00", DurationMinutes: 480,
	})
	require.NoError(t, err)
	assert.Empty(t, res.OvernightWarning)
}

func TestFindNextAvailableSkipsFullDays(t *testing.T) {
	repo := &fakeBookingRepo{}
	repo.bookings = append(repo.bookings,
		detailingBooking("2025-06-10", "08:00", models.StatusConfirmed),
		detailingBooking("2025-06-10", "10:00", models.StatusConfirmed),
		detailingBooking("2025-06-10", "13:00", models.StatusConfirmed),
		detailingBooking("2025-06-11", "08:00", models.StatusConfirmed),
	)
	engine := newEngine(repo)

	req := models.BookingRequest{Service: "Coating Motor Doff", Date: "2025-06-10", Time: "10:00", DurationMinutes: 120}
	slot, err := engine.FindNextAvailable(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, slot)
	assert.Equal(t, "2025-06-11", slot.Date)
	assert.Equal(t, "10:00", slot.Time)

	// The proposed slot must pass an independent re-check.
	recheck := req
	recheck.Date = slot.Date
	res, err := engine.CheckAvailability(context.Background(), recheck)
	require.NoError(t, err)
	assert.True(t, res.Available)
}

func TestFindNextAvailableExhaustsHorizon(t *testing.T) {
	repo := &fakeBookingRepo{}
	engine := newEngine(repo)
	engine.Limits.ScanHorizonDays = 3
	for i := 1; i <= 3; i++ {
		date := addDays("2025-06-10", i)
		repo.bookings = append(repo.bookings,
			detailingBooking(date, "08:00", models.StatusConfirmed),
			detailingBooking(date, "10:00", models.StatusConfirmed),
		)
	}

	slot, err := engine.FindNextAvailable(context.Background(), models.BookingRequest{
		Service: "Detailing Full", Date: "2025-06-10", Time: "10:00", DurationMinutes: 120,
	})
	require.NoError(t, err)
	assert.Nil(t, slot)
}

func TestCommitRevalidatesCapacity(t *testing.T) {
	repo := &fakeBookingRepo{}
	engine := newEngine(repo)
	req := models.BookingRequest{
		Service: "Coating Motor Doff", Date: "2025-06-10", Time: "10:00",
		DurationMinutes: 120, CustomerNumber: "628111", CustomerName: "Budi",
	}

	id1, err := engine.Commit(context.Background(), req)
	require.NoError(t, err)
	assert.NotEmpty(t, id1)

	req.Time = "13:00"
	_, err = engine.Commit(context.Background(), req)
	require.NoError(t, err)

	// Day is now at the detailing limit; a third commit must fail even though
	// an earlier advisory check might have said otherwise.
	req.Time = "15:00"
	_, err = engine.Commit(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCapacityConflict)
	assert.Len(t, repo.bookings, 2)
}

func TestCommitDefaultsRepaintSpan(t *testing.T) {
	repo := &fakeBookingRepo{}
	engine := newEngine(repo)

	id, err := engine.Commit(context.Background(), models.BookingRequest{
		Service: "Repaint Bodi Halus", Date: "2025-07-01", Time: "09:00",
		DurationMinutes: 480, CustomerNumber: "628222", CustomerName: "Sari",
	})
	require.NoError(t, err)

	b, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryRepaint, b.Category)
	assert.Equal(t, 5, b.EstimatedDays)
	assert.Equal(t, models.StatusPending, b.Status)
}
