package dto

import (
	"time"

	"github.com/civicflow/civicflow/internal/domain"
)

// CreateTicketRequest payload for new tickets.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description *string               `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Location    *string               `json:"location"`
	DueAt       *time.Time            `json:"dueAt"`
}

// UpdateTicketRequest payload; absent fields are untouched.
type UpdateTicketRequest struct {
	Title       *string                `json:"title"`
	Description *string                `json:"description"`
	Priority    *domain.TicketPriority `json:"priority"`
	Status      *domain.TicketStatus   `json:"status"`
	Location    *string                `json:"location"`
	DueAt       *time.Time             `json:"dueAt"`
}

// AssignRequest payload for ticket assignment.
type AssignRequest struct {
	OfficerID string `json:"officerId"`
}

// TicketView is the response projection of a ticket.
type TicketView struct {
	ID           string                `json:"id"`
	Title        string                `json:"title"`
	Description  *string               `json:"description,omitempty"`
	Priority     domain.TicketPriority `json:"priority"`
	Status       domain.TicketStatus   `json:"status"`
	CreatedByID  string                `json:"createdById"`
	AssignedToID *string               `json:"assignedToId,omitempty"`
	Location     *string               `json:"location,omitempty"`
	DueAt        *time.Time            `json:"dueAt,omitempty"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    *time.Time            `json:"updatedAt,omitempty"`
}

// NewTicketView projects a ticket.
func NewTicketView(t *domain.Ticket) TicketView {
	return TicketView{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Priority:     t.Priority,
		Status:       t.Status,
		CreatedByID:  t.CreatedByID,
		AssignedToID: t.AssignedToID,
		Location:     t.Location,
		DueAt:        t.DueAt,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}
