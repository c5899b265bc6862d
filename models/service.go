package models

// ServiceItem is one catalog entry. Prices are keyed by motor size class
// (S, M, L, XL).
type ServiceItem struct {
	ID              string             `bson:"id" json:"id"`
	Name            string             `bson:"name" json:"name"`
	Category        string             `bson:"category" json:"category"`
	DurationMinutes int                `bson:"duration_minutes" json:"duration_minutes"`
	EstimatedDays   int                `bson:"estimated_days,omitempty" json:"estimated_days,omitempty"`
	Prices          map[string]float64 `bson:"prices" json:"prices"`
}

// ReminderPayload is the asynq task payload for appointment reminders.
type ReminderPayload struct {
	BookingID string `json:"booking_id"`
	Number    string `json:"number"`
	Service   string `json:"service"`
	Date      string `json:"date"`
	Time      string `json:"time"`
}
