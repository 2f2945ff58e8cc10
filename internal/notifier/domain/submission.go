package domain

import "time"

// Submission statuses. A submission is recorded before sending, so a send
// failure leaves an auditable "failed" row instead of losing the lead.
const (
	SubmissionStatusPending = "pending"
	SubmissionStatusSent    = "sent"
	SubmissionStatusFailed  = "failed"
)

// Submission is one contact-form entry: who asked, what they asked, and from
// which client IP the request arrived.
type Submission struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Message   string    `json:"message"`
	ClientIP  string    `json:"client_ip"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
