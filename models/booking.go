package models

import "time"

// Service categories used by the capacity rules.
const (
	CategoryRepaint   = "repaint"
	CategoryDetailing = "detailing"
	CategoryOther     = "other"
)

// Booking statuses. A booking counts against capacity while its status is in
// ActiveStatuses; cancelled and completed bookings never do.
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in-progress"
	StatusInQueue    = "in-queue"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// ActiveStatuses is the open set of statuses that consume capacity.
var ActiveStatuses = []string{StatusPending, StatusConfirmed, StatusInProgress, StatusInQueue}

// Booking represents a confirmed booking record.
type Booking struct {
	ID              string    `bson:"id" json:"id"`                             // Unique booking identifier (UUID)
	CustomerNumber  string    `bson:"customer_number" json:"customer_number"`   // Transport identity of the customer
	CustomerName    string    `bson:"customer_name" json:"customer_name"`       // Display name supplied by the transport
	Service         string    `bson:"service" json:"service"`                   // Catalog service name (e.g. "Repaint Bodi Halus")
	Category        string    `bson:"category" json:"category"`                 // Derived capacity category
	Date            string    `bson:"date" json:"date"`                         // Booking date in "YYYY-MM-DD" format
	Time            string    `bson:"time" json:"time"`                         // Start time in "HH:mm" format
	DurationMinutes int       `bson:"duration_minutes" json:"duration_minutes"` // Resolved from the service catalog
	EstimatedDays   int       `bson:"estimated_days" json:"estimated_days"`     // Occupancy span for multi-day jobs
	Status          string    `bson:"status" json:"status"`
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
}

// BookingRequest is a candidate slot before capacity validation. Date and Time
// are already normalized to the strict forms.
type BookingRequest struct {
	Service         string `json:"service"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	DurationMinutes int    `json:"duration_minutes"`
	EstimatedDays   int    `json:"estimated_days,omitempty"`
	CustomerNumber  string `json:"customer_number"`
	CustomerName    string `json:"customer_name"`
}

// AvailabilityResult is the outcome of a capacity check. OvernightWarning is
// advisory and never blocks the slot.
type AvailabilityResult struct {
	Available        bool   `json:"available"`
	Reason           string `json:"reason,omitempty"`
	OvernightWarning string `json:"overnight_warning,omitempty"`
}

// NextSlot is the first slot that passes the capacity rules on a forward scan.
type NextSlot struct {
	Date string `json:"date"`
	Time string `json:"time"`
}
