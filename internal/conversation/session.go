package conversation

// Step identifies where a sender is in the conversation flow.
type Step string

const (
	StepMenu               Step = "menu"
	StepCollectingName     Step = "collecting_name"
	StepCollectingPhone    Step = "collecting_phone"
	StepCollectingSchedule Step = "collecting_schedule"
)

// DraftBooking accumulates the appointment fields collected across the
// three sequential prompts. Fields are free text, stored verbatim.
type DraftBooking struct {
	Name         string `json:"name,omitempty"`
	Phone        string `json:"phone,omitempty"`
	ScheduledFor string `json:"scheduled_for,omitempty"`
}

// Empty reports whether no field has been collected yet.
func (d DraftBooking) Empty() bool {
	return d.Name == "" && d.Phone == "" && d.ScheduledFor == ""
}

// Session is the per-sender conversation progress record. Exactly one
// session exists per sender identity; it is reset, never deleted, after a
// booking completes.
type Session struct {
	Step   Step         `json:"step"`
	Draft  DraftBooking `json:"draft_booking"`
	Paused bool         `json:"paused"`
}

// NewSession returns the default session for a first-time sender.
func NewSession() *Session {
	return &Session{Step: StepMenu}
}

// Reset returns the session to the menu with an empty draft. Called after
// a completed booking and when automation resumes from handoff.
func (s *Session) Reset() {
	s.Step = StepMenu
	s.Draft = DraftBooking{}
	s.Paused = false
}
