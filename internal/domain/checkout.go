package domain

import "time"

// Phase is the lifecycle state of a checkout submission.
type Phase string

const (
	// PhaseIdle means no submission has been attempted for the session.
	PhaseIdle Phase = "idle"
	// PhaseSubmitting means a submission is in flight. A second submit
	// request during this phase is ignored.
	PhaseSubmitting Phase = "submitting"
	// PhaseSucceeded means the order was created and its payment confirmed.
	PhaseSucceeded Phase = "succeeded"
	// PhaseFailed means the submission stopped, either before any network
	// call (precondition failure) or on a backend rejection.
	PhaseFailed Phase = "failed"
)

// Submission is the checkout state for one session. A failed submission
// keeps its shortfall list so the session can show what blocked it; the next
// submit attempt starts a fresh record.
type Submission struct {
	SessionID     string      `json:"session_id"`
	Phase         Phase       `json:"phase"`
	OrderID       string      `json:"order_id,omitempty"`
	PaymentID     string      `json:"payment_id,omitempty"`
	FailureReason string      `json:"failure_reason,omitempty"`
	Shortfalls    []Shortfall `json:"shortfalls,omitempty"`
	StartedAt     time.Time   `json:"started_at,omitempty"`
	FinishedAt    time.Time   `json:"finished_at,omitempty"`
}

// InFlight reports whether a submission is currently being processed.
func (s *Submission) InFlight() bool {
	return s.Phase == PhaseSubmitting
}
