package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicflow/civicflow/internal/auth"
	"github.com/civicflow/civicflow/internal/domain"
	"github.com/civicflow/civicflow/internal/events"
	"github.com/civicflow/civicflow/internal/repository/memory"
)

type ticketFixture struct {
	svc        *TicketService
	users      *memory.UserRepository
	tickets    *memory.TicketRepository
	dispatcher *captureDispatcher

	alice  auth.Principal // citizen
	bob    auth.Principal // citizen
	olivia auth.Principal // officer
	amy    auth.Principal // admin
}

func newTicketFixture(t *testing.T) *ticketFixture {
	t.Helper()
	users := memory.NewUserRepository()
	tickets := memory.NewTicketRepository()
	dispatcher := &captureDispatcher{}

	fix := &ticketFixture{
		users:      users,
		tickets:    tickets,
		dispatcher: dispatcher,
		svc: NewTicketService(TicketDependencies{
			TicketRepo: tickets,
			UserRepo:   users,
			Dispatcher: dispatcher,
		}),
	}

	ctx := context.Background()
	mk := func(email string, role domain.Role) auth.Principal {
		user := &domain.User{Email: email, PasswordHash: "x", Role: role}
		require.NoError(t, users.Create(ctx, user))
		return auth.Principal{ID: user.ID, Email: email, Role: role}
	}
	fix.alice = mk("alice@example.com", domain.RoleCitizen)
	fix.bob = mk("bob@example.com", domain.RoleCitizen)
	fix.olivia = mk("olivia@example.com", domain.RoleOfficer)
	fix.amy = mk("amy@example.com", domain.RoleAdmin)
	return fix
}

func (f *ticketFixture) create(t *testing.T, p auth.Principal, title string) *domain.Ticket {
	t.Helper()
	ticket, err := f.svc.Create(context.Background(), p, TicketCreateInput{Title: title})
	require.NoError(t, err)
	return ticket
}

func TestCreateDefaults(t *testing.T) {
	fix := newTicketFixture(t)

	ticket := fix.create(t, fix.alice, "broken streetlight")
	assert.Equal(t, domain.TicketStatusNew, ticket.Status)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	assert.Equal(t, fix.alice.ID, ticket.CreatedByID)

	_, err := fix.svc.Create(context.Background(), fix.alice, TicketCreateInput{Title: "  "})
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
}

func TestListVisibilityPerRole(t *testing.T) {
	fix := newTicketFixture(t)
	ctx := context.Background()

	aliceTicket := fix.create(t, fix.alice, "pothole on main st")
	bobTicket := fix.create(t, fix.bob, "noise complaint")
	officerOwn := fix.create(t, fix.olivia, "fallen tree")

	require.NoError(t, fix.svc.Assign(ctx, fix.amy, bobTicket.ID, fix.olivia.ID))

	ids := func(tickets []domain.Ticket) []string {
		var out []string
		for _, ticket := range tickets {
			out = append(out, ticket.ID)
		}
		return out
	}

	aliceSees, err := fix.svc.List(ctx, fix.alice)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{aliceTicket.ID}, ids(aliceSees))

	oliviaSees, err := fix.svc.List(ctx, fix.olivia)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{officerOwn.ID, bobTicket.ID}, ids(oliviaSees))

	amySees, err := fix.svc.List(ctx, fix.amy)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{aliceTicket.ID, bobTicket.ID, officerOwn.ID}, ids(amySees))
}

func TestUpdateScopedToVisibility(t *testing.T) {
	fix := newTicketFixture(t)
	ctx := context.Background()

	ticket := fix.create(t, fix.alice, "pothole on main st")

	newTitle := "pothole on main street"
	err := fix.svc.Update(ctx, fix.bob, ticket.ID, TicketUpdateInput{Title: &newTitle})
	assert.Equal(t, "NOT_FOUND", errCode(t, err), "foreign tickets look nonexistent")

	require.NoError(t, fix.svc.Update(ctx, fix.alice, ticket.ID, TicketUpdateInput{Title: &newTitle}))
	updated, err := fix.tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, newTitle, updated.Title)
	assert.NotNil(t, updated.UpdatedAt)

	resolved := domain.TicketStatusResolved
	require.NoError(t, fix.svc.Update(ctx, fix.amy, ticket.ID, TicketUpdateInput{Status: &resolved}))

	bad := domain.TicketStatus("BOGUS")
	err = fix.svc.Update(ctx, fix.amy, ticket.ID, TicketUpdateInput{Status: &bad})
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
}

func TestDeleteScopedToVisibility(t *testing.T) {
	fix := newTicketFixture(t)
	ctx := context.Background()

	ticket := fix.create(t, fix.alice, "pothole on main st")

	err := fix.svc.Delete(ctx, fix.bob, ticket.ID)
	assert.Equal(t, "NOT_FOUND", errCode(t, err))

	require.NoError(t, fix.svc.Delete(ctx, fix.alice, ticket.ID))
	err = fix.svc.Delete(ctx, fix.alice, ticket.ID)
	assert.Equal(t, "NOT_FOUND", errCode(t, err))
}

func TestAssignRules(t *testing.T) {
	fix := newTicketFixture(t)
	ctx := context.Background()

	ticket := fix.create(t, fix.alice, "pothole on main st")

	err := fix.svc.Assign(ctx, fix.olivia, ticket.ID, fix.olivia.ID)
	assert.Equal(t, "FORBIDDEN", errCode(t, err), "only admins assign")

	err = fix.svc.Assign(ctx, fix.amy, ticket.ID, fix.bob.ID)
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err), "assignee must be an officer")

	err = fix.svc.Assign(ctx, fix.amy, ticket.ID, "no-such-user")
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))

	err = fix.svc.Assign(ctx, fix.amy, "no-such-ticket", fix.olivia.ID)
	assert.Equal(t, "NOT_FOUND", errCode(t, err))

	require.NoError(t, fix.svc.Assign(ctx, fix.amy, ticket.ID, fix.olivia.ID))
	assigned, err := fix.tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, assigned.AssignedToID)
	assert.Equal(t, fix.olivia.ID, *assigned.AssignedToID)
	assert.Equal(t, domain.TicketStatusInProgress, assigned.Status)

	event := fix.dispatcher.lastOfType(t, events.EventTicketAssigned)
	payload := event.Payload.(events.TicketAssignedPayload)
	assert.Equal(t, fix.olivia.ID, payload.AssignedToID)
	assert.Equal(t, "olivia@example.com", payload.AssigneeEmail)
}
