package models

import "time"

// Validation bounds for poll input
const (
	QuestionMinLen = 5
	QuestionMaxLen = 500
	MinOptions     = 2
	MaxOptions     = 10

	PasswordMinLen = 8
)

// Request types

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreatePollRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type UpdatePollRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type CastVoteRequest struct {
	OptionID string `json:"option_id"`
}

// Response types

type SessionResponse struct {
	Account Account `json:"account"`
}

type CreatePollResponse struct {
	PollID  string `json:"poll_id"`
	Message string `json:"message"`
}

type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Domain types

type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	CreatedAt    time.Time `json:"created_at"`
}

type Poll struct {
	ID         string    `json:"id"`
	Question   string    `json:"question"`
	CreatedBy  *string   `json:"created_by"` // nil once the creator account is deleted
	TotalVotes int       `json:"total_votes"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type PollOption struct {
	ID         string    `json:"id"`
	PollID     string    `json:"poll_id"`
	Text       string    `json:"text"`
	VotesCount int       `json:"votes_count"`
	CreatedAt  time.Time `json:"created_at"`
}

type Vote struct {
	ID        string    `json:"id"`
	PollID    string    `json:"poll_id"`
	OptionID  string    `json:"option_id"`
	AccountID string    `json:"account_id"`
	CreatedAt time.Time `json:"created_at"`
}

type PollWithOptions struct {
	Poll
	Options []PollOption `json:"options"`
}

// PollSummary is the list projection: poll, options, and a humanized age
// string for dashboard rendering.
type PollSummary struct {
	PollWithOptions
	Created string `json:"created"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
