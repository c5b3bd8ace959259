package records

import "time"

// CallRecord is the persisted outcome of one outbound reminder call.
//
// Transcript and RecordingURL are filled only after the provider reports
// the call completed; rows for rejected or timed-out calls keep them empty.
type CallRecord struct {
	CallID       string `json:"call_id" db:"call_id"`
	PhoneNumber  string `json:"phone_number" db:"phone_number"`
	Status       string `json:"status" db:"status"`
	Transcript   string `json:"transcript,omitempty" db:"transcript"`
	RecordingURL string `json:"recording_url,omitempty" db:"recording_url"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

const (
	StatusInitiating = "initiating"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusNoAnswered = "no_answered"
	StatusTimedOut   = "timed_out"
)
