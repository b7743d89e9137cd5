package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/civicflow/civicflow/internal/events"
	"github.com/civicflow/civicflow/internal/notify"
)

// NotificationService turns domain events into outbound emails. It
// runs entirely off the request path via the event dispatcher.
type NotificationService struct {
	dispatcher events.Dispatcher
	notifier   notify.Notifier
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, notifier notify.Notifier, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		notifier:   notifier,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventVerificationRequested, n.handleVerificationRequested)
	n.dispatcher.Subscribe(events.EventPasswordResetRequested, n.handlePasswordResetRequested)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
}

func (n *NotificationService) handleVerificationRequested(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.VerificationRequestedPayload)
	if !ok {
		n.logger.Warn("unexpected payload", zap.String("type", string(event.Type)))
		return nil
	}
	body := fmt.Sprintf("<p>Your verification code is <strong>%s</strong>. It will expire in 10 minutes.</p>", payload.Code)
	return n.notifier.Send(ctx, payload.Email, "Your CivicFlow verification code", body)
}

func (n *NotificationService) handlePasswordResetRequested(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PasswordResetRequestedPayload)
	if !ok {
		n.logger.Warn("unexpected payload", zap.String("type", string(event.Type)))
		return nil
	}
	body := fmt.Sprintf("Click the link to reset your password: <a href=%q>%s</a>", payload.ResetLink, payload.ResetLink)
	return n.notifier.Send(ctx, payload.Email, "Reset your password", body)
}

func (n *NotificationService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		n.logger.Warn("unexpected payload", zap.String("type", string(event.Type)))
		return nil
	}
	body := fmt.Sprintf("<p>Ticket <strong>%s</strong> has been assigned to you.</p>", payload.Title)
	return n.notifier.Send(ctx, payload.AssigneeEmail, "A ticket was assigned to you", body)
}
