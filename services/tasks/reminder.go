package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"bengkelbot/config"
	"bengkelbot/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeBookingReminder = "reminder:booking"

// reminderLead is how long before the appointment the reminder fires.
const reminderLead = 2 * time.Hour

// NewBookingReminderTask builds the delayed asynq task for one booking.
func NewBookingReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingReminder, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}

// ReminderScheduler enqueues booking reminders onto the asynq queue.
type ReminderScheduler struct {
	client *asynq.Client
	logger *zap.Logger
}

// NewReminderScheduler connects an asynq client to the reminder queue DB.
func NewReminderScheduler(logger *zap.Logger) *ReminderScheduler {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderDB,
	})
	return &ReminderScheduler{client: client, logger: logger}
}

// EnqueueBookingReminder schedules a reminder shortly before the appointment.
// Bookings whose reminder moment has already passed are skipped.
func (s *ReminderScheduler) EnqueueBookingReminder(booking *models.Booking) error {
	fireAt, err := reminderFireTime(booking)
	if err != nil {
		return err
	}
	if fireAt.Before(time.Now()) {
		s.logger.Debug("reminder moment already passed, skipping",
			zap.String("booking_id", booking.ID),
			zap.Time("fire_at", fireAt))
		return nil
	}

	task, opts, err := NewBookingReminderTask(models.ReminderPayload{
		BookingID: booking.ID,
		Number:    booking.CustomerNumber,
		Service:   booking.Service,
		Date:      booking.Date,
		Time:      booking.Time,
	}, fireAt)
	if err != nil {
		return fmt.Errorf("failed to build reminder task: %w", err)
	}

	info, err := s.client.Enqueue(task, opts...)
	if err != nil {
		return fmt.Errorf("failed to enqueue reminder: %w", err)
	}
	s.logger.Info("booking reminder scheduled",
		zap.String("booking_id", booking.ID),
		zap.String("task_id", info.ID),
		zap.Time("fire_at", fireAt))
	return nil
}

// Close releases the asynq client connection.
func (s *ReminderScheduler) Close() error {
	return s.client.Close()
}

func reminderFireTime(booking *models.Booking) (time.Time, error) {
	hhmm := booking.Time
	if hhmm == "" {
		hhmm = "09:00"
	}
	start, err := time.ParseInLocation("2006-01-02 15:04", booking.Date+" "+hhmm, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid booking schedule %q %q: %w", booking.Date, booking.Time, err)
	}
	return start.Add(-reminderLead), nil
}
