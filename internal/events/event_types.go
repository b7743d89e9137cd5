package events

import (
	"time"

	"github.com/civicflow/civicflow/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered         EventType = "user_registered"
	EventVerificationRequested  EventType = "verification_requested"
	EventPasswordResetRequested EventType = "password_reset_requested"
	EventTicketCreated          EventType = "ticket_created"
	EventTicketAssigned         EventType = "ticket_assigned"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// VerificationRequestedPayload payload. Carries the plaintext code for
// delivery; never persisted outside the verification row.
type VerificationRequestedPayload struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// PasswordResetRequestedPayload payload.
type PasswordResetRequestedPayload struct {
	Email     string `json:"email"`
	ResetLink string `json:"reset_link"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketID     string                `json:"ticket_id"`
	CreatedByID  string                `json:"created_by_id"`
	CreatorEmail string                `json:"creator_email"`
	Title        string                `json:"title"`
	Priority     domain.TicketPriority `json:"priority"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	TicketID      string `json:"ticket_id"`
	Title         string `json:"title"`
	AssignedToID  string `json:"assigned_to_id"`
	AssigneeEmail string `json:"assignee_email"`
	AssignedByID  string `json:"assigned_by_id"`
}
