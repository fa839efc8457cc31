package models

import "time"

// Submission statuses.
const (
	SubmissionSuccess = "success"
	SubmissionError   = "error"
)

// Submission is one contact form delivery attempt, kept for operators.
type Submission struct {
	ID        string    `json:"id"`
	VisitorID string    `json:"visitorId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
