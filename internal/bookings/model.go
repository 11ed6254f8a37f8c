package bookings

import "time"

// Record is one completed appointment request. Immutable once written:
// the log only ever appends, never rewrites.
//
// Phone and ScheduledFor are free text exactly as the sender typed them.
type Record struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	ScheduledFor string    `json:"scheduled_for"`
	Sender       string    `json:"sender"`
	RecordedAt   time.Time `json:"recorded_at"`
}
