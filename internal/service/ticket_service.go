package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/civicflow/civicflow/internal/auth"
	"github.com/civicflow/civicflow/internal/domain"
	"github.com/civicflow/civicflow/internal/events"
	"github.com/civicflow/civicflow/internal/repository"
	apperrors "github.com/civicflow/civicflow/pkg/util"
)

// TicketService applies the access-control policy to ticket reads and
// mutations. Mutations are restricted to tickets the principal can
// see; tickets outside the scope report not-found so their existence
// is not leaked.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles repositories.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
}

// NewTicketService creates the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
	}
}

// TicketCreateInput captures fields a caller may set on creation.
type TicketCreateInput struct {
	Title       string
	Description *string
	Priority    domain.TicketPriority
	Location    *string
	DueAt       *time.Time
}

// TicketUpdateInput captures mutable fields; nil leaves a field as is.
type TicketUpdateInput struct {
	Title       *string
	Description *string
	Priority    *domain.TicketPriority
	Status      *domain.TicketStatus
	Location    *string
	DueAt       *time.Time
}

// List returns the tickets visible to the principal.
func (s *TicketService) List(ctx context.Context, principal auth.Principal) ([]domain.Ticket, error) {
	scope := auth.ScopeFor(principal)

	filter := repository.TicketFilter{}
	switch {
	case scope.All:
	case scope.InvolvedID != "":
		filter.InvolvedID = &scope.InvolvedID
	default:
		filter.CreatedByID = &scope.CreatedByID
	}

	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// Create opens a new ticket owned by the principal.
func (s *TicketService) Create(ctx context.Context, principal auth.Principal, input TicketCreateInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !domain.ValidTicketPriority(priority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": priority})
	}

	ticket := &domain.Ticket{
		Title:       input.Title,
		Description: input.Description,
		Priority:    priority,
		Status:      domain.TicketStatusNew,
		CreatedByID: principal.ID,
		Location:    input.Location,
		DueAt:       input.DueAt,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(events.EventTicketCreated, events.TicketCreatedPayload{
		TicketID:     ticket.ID,
		CreatedByID:  principal.ID,
		CreatorEmail: principal.Email,
		Title:        ticket.Title,
		Priority:     ticket.Priority,
	})
	return ticket, nil
}

// Update modifies a ticket within the principal's scope.
func (s *TicketService) Update(ctx context.Context, principal auth.Principal, id string, input TicketUpdateInput) error {
	ticket, err := s.visibleTicket(ctx, principal, id)
	if err != nil {
		return err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return apperrors.NewValidationError("title required", nil)
		}
		ticket.Title = *input.Title
	}
	if input.Description != nil {
		ticket.Description = input.Description
	}
	if input.Priority != nil {
		if !domain.ValidTicketPriority(*input.Priority) {
			return apperrors.NewValidationError("unknown priority", map[string]any{"priority": *input.Priority})
		}
		ticket.Priority = *input.Priority
	}
	if input.Status != nil {
		if !domain.ValidTicketStatus(*input.Status) {
			return apperrors.NewValidationError("unknown status", map[string]any{"status": *input.Status})
		}
		ticket.Status = *input.Status
	}
	if input.Location != nil {
		ticket.Location = input.Location
	}
	if input.DueAt != nil {
		ticket.DueAt = input.DueAt
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// Delete removes a ticket within the principal's scope.
func (s *TicketService) Delete(ctx context.Context, principal auth.Principal, id string) error {
	if _, err := s.visibleTicket(ctx, principal, id); err != nil {
		return err
	}
	if err := s.tickets.Delete(ctx, id); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// Assign routes a ticket to an officer. Only admins may assign, and
// only officers may be assignees; both checks are in the policy layer.
func (s *TicketService) Assign(ctx context.Context, principal auth.Principal, ticketID, officerID string) error {
	if !auth.CanAssign(principal) {
		return apperrors.NewForbidden("only admins may assign tickets")
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return apperrors.MapError(err)
	}

	officer, err := s.users.GetByID(ctx, officerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("invalid officer id", map[string]any{"officer_id": officerID})
		}
		return apperrors.MapError(err)
	}
	if !auth.ValidAssignee(officer) {
		return apperrors.NewValidationError("invalid officer id", map[string]any{"officer_id": officerID})
	}

	ticket.AssignedToID = &officer.ID
	if ticket.Status == domain.TicketStatusNew {
		ticket.Status = domain.TicketStatusInProgress
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return apperrors.MapError(err)
	}

	s.publish(events.EventTicketAssigned, events.TicketAssignedPayload{
		TicketID:      ticket.ID,
		Title:         ticket.Title,
		AssignedToID:  officer.ID,
		AssigneeEmail: officer.Email,
		AssignedByID:  principal.ID,
	})
	return nil
}

func (s *TicketService) visibleTicket(ctx context.Context, principal auth.Principal, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	if !auth.ScopeFor(principal).Allows(ticket) {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
	}
	return ticket, nil
}

func (s *TicketService) publish(eventType events.EventType, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Publish(events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
