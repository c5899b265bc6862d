package tasks

import (
	"encoding/json"
	"testing"
	"time"

	"bengkelbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReminderFireTime(t *testing.T) {
	booking := &models.Booking{Date: "2025-06-12", Time: "10:30"}
	fireAt, err := reminderFireTime(booking)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 12, 8, 30, 0, 0, time.Local), fireAt)
}

func TestReminderFireTimeDefaultsMorning(t *testing.T) {
	booking := &models.Booking{Date: "2025-06-12"}
	fireAt, err := reminderFireTime(booking)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 12, 7, 0, 0, 0, time.Local), fireAt)
}

func TestReminderFireTimeRejectsBadSchedule(t *testing.T) {
	_, err := reminderFireTime(&models.Booking{Date: "sometime", Time: "10:00"})
	assert.Error(t, err)
}

func TestNewBookingReminderTaskPayloadRoundTrip(t *testing.T) {
	payload := models.ReminderPayload{
		BookingID: "bk-1",
		Number:    "628111",
		Service:   "Repaint Full Body",
		Date:      "2025-06-12",
		Time:      "09:00",
	}
	task, opts, err := NewBookingReminderTask(payload, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, TypeBookingReminder, task.Type())
	assert.Len(t, opts, 1)

	var decoded models.ReminderPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	assert.Equal(t, payload, decoded)
}
