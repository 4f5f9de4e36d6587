package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fenway-events/eventhub-api/internal/models"
	"github.com/fenway-events/eventhub-api/internal/repository"
	appErrors "github.com/fenway-events/eventhub-api/pkg/errors"
	"github.com/fenway-events/eventhub-api/pkg/export"
)

type ticketRepository interface {
	Register(ctx context.Context, eventID, userID string) (*models.Ticket, error)
	Cancel(ctx context.Context, eventID, userID string) error
	FindByEventAndUser(ctx context.Context, eventID, userID string) (*models.Ticket, error)
	FindDetail(ctx context.Context, ticketID string) (*models.TicketDetail, error)
	ListByUser(ctx context.Context, userID string) ([]models.TicketDetail, error)
	ListByEvent(ctx context.Context, eventID string) ([]models.TicketDetail, error)
}

type ticketEventFinder interface {
	FindByID(ctx context.Context, id string) (*models.EventDetail, error)
}

type ticketRenderer interface {
	RenderTicket(doc export.TicketDocument) ([]byte, error)
}

// TicketService handles event registration, cancellation and ticket passes.
type TicketService struct {
	tickets  ticketRepository
	events   ticketEventFinder
	renderer ticketRenderer
	logger   *zap.Logger
}

// NewTicketService constructs a TicketService.
func NewTicketService(tickets ticketRepository, events ticketEventFinder, renderer ticketRenderer, logger *zap.Logger) *TicketService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{tickets: tickets, events: events, renderer: renderer, logger: logger}
}

// Register books a ticket for the user. Past events and double registration
// are rejected; a sold-out event surfaces as a conflict.
func (s *TicketService) Register(ctx context.Context, eventID, userID string) (*models.Ticket, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch event")
	}
	if event.Date.Before(time.Now()) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "event already happened")
	}

	existing, err := s.tickets.FindByEventAndUser(ctx, eventID, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check registration")
	}
	if existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "already registered for this event")
	}

	ticket, err := s.tickets.Register(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrSoldOut) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "event is sold out")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register")
	}
	s.logger.Info("ticket registered", zap.String("event_id", eventID), zap.String("user_id", userID))
	return ticket, nil
}

// Cancel releases the user's ticket for an event.
func (s *TicketService) Cancel(ctx context.Context, eventID, userID string) error {
	if err := s.tickets.Cancel(ctx, eventID, userID); err != nil {
		if errors.Is(err, repository.ErrNoRowsAffected) {
			return appErrors.Clone(appErrors.ErrNotFound, "no ticket for this event")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel ticket")
	}
	s.logger.Info("ticket cancelled", zap.String("event_id", eventID), zap.String("user_id", userID))
	return nil
}

// ListByUser returns the user's tickets with event context.
func (s *TicketService) ListByUser(ctx context.Context, userID string) ([]models.TicketDetail, error) {
	tickets, err := s.tickets.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tickets")
	}
	if tickets == nil {
		tickets = []models.TicketDetail{}
	}
	return tickets, nil
}

// RenderPass produces a PDF ticket pass for a ticket the user holds.
func (s *TicketService) RenderPass(ctx context.Context, ticketID, userID string) ([]byte, error) {
	detail, err := s.tickets.FindDetail(ctx, ticketID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "ticket not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch ticket")
	}
	if detail.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not the ticket holder")
	}

	price := "Free"
	if detail.EventPrice > 0 {
		price = fmt.Sprintf("$%.2f", detail.EventPrice)
	}
	doc := export.TicketDocument{
		TicketID:     detail.ID,
		EventName:    detail.EventName,
		EventDate:    detail.EventDate.Format("Mon, 02 Jan 2006"),
		Location:     detail.EventLocation,
		Organizer:    detail.OrganizerName,
		AttendeeName: detail.AttendeeName,
		Price:        price,
	}
	pdf, err := s.renderer.RenderTicket(doc)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render ticket")
	}
	return pdf, nil
}
