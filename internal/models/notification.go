package models

import "time"

// Notification events emitted by work log transitions.
const (
	EventLogSubmitted = "log_submitted"
	EventLogApproved  = "log_approved"
)

// Notification is a queryable per-recipient record of a work log event.
// The read flag is monotonic: once read, a notification stays read.
type Notification struct {
	ID          int       `json:"id"`
	RecipientID int       `json:"recipient_id"`
	WorkLogID   int       `json:"work_log_id"`
	Event       string    `json:"event"`
	Message     string    `json:"message"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}
