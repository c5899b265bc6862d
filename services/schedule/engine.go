// Package schedule decides whether a requested booking slot fits under the
// workshop's category capacity rules, and finds the nearest slot that does.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"

	bookingRepo "bengkelbot/database/repository/booking"
	"bengkelbot/models"

	"go.uber.org/zap"
)

// ErrCapacityConflict is returned by Commit when capacity was consumed
// between an advisory check and the commit-time re-validation.
var ErrCapacityConflict = errors.New("capacity conflict")

// Limits holds the capacity rule constants. The numeric defaults are fixed
// business rules; they are configurable but their shape is not.
type Limits struct {
	RepaintConcurrent int // max overlapping repaint jobs
	RepaintWindowDays int // occupancy window of one repaint job
	DetailingPerDay   int // max detailing/coating jobs per calendar day
	ClosingHour       int // operating-hours cutoff (24h clock)
	ScanHorizonDays   int // forward scan bound for FindNextAvailable
}

// DefaultLimits returns the production rule set.
func DefaultLimits() Limits {
	return Limits{
		RepaintConcurrent: 2,
		RepaintWindowDays: 5,
		DetailingPerDay:   2,
		ClosingHour:       17,
		ScanHorizonDays:   30,
	}
}

// ReminderQueue schedules an appointment reminder for a committed booking.
type ReminderQueue interface {
	EnqueueBookingReminder(booking *models.Booking) error
}

// SchedulingEngine is the booking capacity scheduler.
type SchedulingEngine interface {
	CheckAvailability(ctx context.Context, req models.BookingRequest) (*models.AvailabilityResult, error)
	FindNextAvailable(ctx context.Context, req models.BookingRequest) (*models.NextSlot, error)
	Commit(ctx context.Context, req models.BookingRequest) (string, error)
}

// DefaultSchedulingEngine implements SchedulingEngine against the booking
// repository.
type DefaultSchedulingEngine struct {
	Repo      bookingRepo.BookingRepository
	Limits    Limits
	Reminders ReminderQueue // optional
	Logger    *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// CheckAvailability applies the category rule for the candidate slot. The
// overnight warning is advisory and never blocks.
func (e *DefaultSchedulingEngine) CheckAvailability(ctx context.Context, req models.BookingRequest) (*models.AvailabilityResult, error) {
	category := CategoryFor(req.Service)

	start, err := TimeToMinutes(req.Time)
	if err != nil {
		return nil, err
	}
	end := start + req.DurationMinutes

	res := &models.AvailabilityResult{Available: true}
	switch category {
	case models.CategoryRepaint:
		count, err := e.overlappingRepaintJobs(ctx, req.Date)
		if err != nil {
			return nil, err
		}
		if count >= e.Limits.RepaintConcurrent {
			res.Available = false
			res.Reason = fmt.Sprintf("already %d repaint jobs in progress around %s", count, req.Date)
		}

	case models.CategoryDetailing:
		existing, err := e.Repo.ActiveByCategoryOnDate(ctx, models.CategoryDetailing, req.Date)
		if err != nil {
			return nil, err
		}
		if len(existing) >= e.Limits.DetailingPerDay {
			res.Available = false
			res.Reason = fmt.Sprintf("detailing/coating slots on %s are full (%d booked)", req.Date, len(existing))
		}

	default:
		existing, err := e.Repo.ActiveOnDate(ctx, req.Date)
		if err != nil {
			return nil, err
		}
		for _, b := range existing {
			bStart, err := TimeToMinutes(b.Time)
			if err != nil {
				continue
			}
			bEnd := bStart + b.DurationMinutes
			if start < bEnd && bStart < end {
				res.Available = false
				res.Reason = fmt.Sprintf("overlaps an existing booking at %s on %s", b.Time, req.Date)
				break
			}
		}
	}

	if category != models.CategoryRepaint && end > e.Limits.ClosingHour*60 {
		res.OvernightWarning = fmt.Sprintf(
			"the job would finish after closing time (%02d:00); the vehicle may stay overnight",
			e.Limits.ClosingHour,
		)
	}
	return res, nil
}

// FindNextAvailable walks forward day by day from the requested date and
// returns the first day that passes the category rule, or nil when nothing
// opens up within the scan horizon.
func (e *DefaultSchedulingEngine) FindNextAvailable(ctx context.Context, req models.BookingRequest) (*models.NextSlot, error) {
	for i := 1; i <= e.Limits.ScanHorizonDays; i++ {
		candidate := req
		candidate.Date = addDays(req.Date, i)
		res, err := e.CheckAvailability(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if res.Available {
			return &models.NextSlot{Date: candidate.Date, Time: req.Time}, nil
		}
	}
	return nil, nil
}

// Commit persists the booking after re-running the capacity check under a
// per-category lock, so two concurrent commits for the same category cannot
// both pass the check and overbook.
func (e *DefaultSchedulingEngine) Commit(ctx context.Context, req models.BookingRequest) (string, error) {
	lock := e.lockFor(CategoryFor(req.Service))
	lock.Lock()
	defer lock.Unlock()

	res, err := e.CheckAvailability(ctx, req)
	if err != nil {
		return "", err
	}
	if !res.Available {
		return "", fmt.Errorf("%w: %s", ErrCapacityConflict, res.Reason)
	}

	category := CategoryFor(req.Service)
	booking := &models.Booking{
		CustomerNumber:  req.CustomerNumber,
		CustomerName:    req.CustomerName,
		Service:         req.Service,
		Category:        category,
		Date:            req.Date,
		Time:            req.Time,
		DurationMinutes: req.DurationMinutes,
		EstimatedDays:   req.EstimatedDays,
		Status:          models.StatusPending,
	}
	if category == models.CategoryRepaint && booking.EstimatedDays == 0 {
		booking.EstimatedDays = e.Limits.RepaintWindowDays
	}

	id, err := e.Repo.Create(ctx, booking)
	if err != nil {
		return "", fmt.Errorf("failed to persist booking: %w", err)
	}

	if e.Reminders != nil {
		if err := e.Reminders.EnqueueBookingReminder(booking); err != nil && e.Logger != nil {
			e.Logger.Warn("failed to enqueue booking reminder",
				zap.String("booking_id", id), zap.Error(err))
		}
	}
	return id, nil
}

// overlappingRepaintJobs counts active repaint bookings whose occupancy
// window intersects the candidate window starting at date.
func (e *DefaultSchedulingEngine) overlappingRepaintJobs(ctx context.Context, date string) (int, error) {
	window := e.Limits.RepaintWindowDays
	candEnd := addDays(date, window) // exclusive

	// A booking's occupancy span is its own EstimatedDays, which can exceed
	// the default window, so the query cannot bound how far back a still-open
	// job may have started. Fetch everything that starts before the candidate
	// window closes and intersect per booking.
	existing, err := e.Repo.ActiveByCategoryStartingBefore(ctx, models.CategoryRepaint, candEnd)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, b := range existing {
		span := b.EstimatedDays
		if span <= 0 {
			span = window
		}
		bEnd := addDays(b.Date, span) // exclusive
		// ISO dates compare lexicographically, so string comparison is a
		// valid interval intersection test.
		if b.Date < candEnd && date < bEnd {
			count++
		}
	}
	return count, nil
}

func (e *DefaultSchedulingEngine) lockFor(category string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.locks == nil {
		e.locks = make(map[string]*sync.Mutex)
	}
	lock, ok := e.locks[category]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[category] = lock
	}
	return lock
}
