package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fenway-events/eventhub-api/internal/models"
)

// ErrSoldOut signals that an event has no tickets left.
var ErrSoldOut = errors.New("event sold out")

const ticketDetailColumns = `t.id, t.event_id, t.user_id, t.purchase_date, t.created_at,
        e.name AS event_name, e.date AS event_date, e.location AS event_location, e.price AS event_price,
        o.full_name AS organizer_name, COALESCE(o.organization, '') AS organizer_organization,
        a.full_name AS attendee_name`

const ticketDetailBase = `FROM tickets t
        JOIN events e ON e.id = t.event_id
        JOIN users o ON o.id = e.organizer_id
        JOIN users a ON a.id = t.user_id`

// TicketRepository manages ticket persistence. Registration decrements the
// event's available count in the same transaction.
type TicketRepository struct {
	db *sqlx.DB
}

// NewTicketRepository constructs a TicketRepository.
func NewTicketRepository(db *sqlx.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// Register creates a ticket and decrements available_tickets atomically.
// The guarded UPDATE prevents overselling under concurrent registrations.
func (r *TicketRepository) Register(ctx context.Context, eventID, userID string) (*models.Ticket, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin register: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		"UPDATE events SET available_tickets = available_tickets - 1 WHERE id = $1 AND available_tickets > 0",
		eventID)
	if err != nil {
		return nil, fmt.Errorf("decrement tickets: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil, ErrSoldOut
	}

	ticket := &models.Ticket{
		ID:           uuid.NewString(),
		EventID:      eventID,
		UserID:       userID,
		PurchaseDate: time.Now().UTC(),
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO tickets (id, event_id, user_id, purchase_date, created_at) VALUES ($1, $2, $3, $4, $5)",
		ticket.ID, ticket.EventID, ticket.UserID, ticket.PurchaseDate, ticket.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert ticket: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit register: %w", err)
	}
	return ticket, nil
}

// Cancel removes a user's ticket and returns the seat to the pool.
func (r *TicketRepository) Cancel(ctx context.Context, eventID, userID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cancel: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		"DELETE FROM tickets WHERE event_id = $1 AND user_id = $2", eventID, userID)
	if err != nil {
		return fmt.Errorf("delete ticket: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNoRowsAffected
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE events SET available_tickets = available_tickets + 1 WHERE id = $1 AND available_tickets < total_tickets",
		eventID); err != nil {
		return fmt.Errorf("restore ticket count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cancel: %w", err)
	}
	return nil
}

// FindByEventAndUser returns the ticket a user holds for an event, or nil.
func (r *TicketRepository) FindByEventAndUser(ctx context.Context, eventID, userID string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := r.db.GetContext(ctx, &ticket,
		"SELECT id, event_id, user_id, purchase_date, created_at FROM tickets WHERE event_id = $1 AND user_id = $2",
		eventID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find ticket: %w", err)
	}
	return &ticket, nil
}

// FindDetail returns a ticket with event and attendee identity for rendering.
func (r *TicketRepository) FindDetail(ctx context.Context, ticketID string) (*models.TicketDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE t.id = $1", ticketDetailColumns, ticketDetailBase)
	var detail models.TicketDetail
	if err := r.db.GetContext(ctx, &detail, query, ticketID); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListByUser returns the user's tickets, newest purchase first.
func (r *TicketRepository) ListByUser(ctx context.Context, userID string) ([]models.TicketDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE t.user_id = $1 ORDER BY t.purchase_date DESC", ticketDetailColumns, ticketDetailBase)
	var tickets []models.TicketDetail
	if err := r.db.SelectContext(ctx, &tickets, query, userID); err != nil {
		return nil, fmt.Errorf("list user tickets: %w", err)
	}
	return tickets, nil
}

// ListByEvent returns every ticket sold for an event, for organizer exports.
func (r *TicketRepository) ListByEvent(ctx context.Context, eventID string) ([]models.TicketDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE t.event_id = $1 ORDER BY t.purchase_date ASC", ticketDetailColumns, ticketDetailBase)
	var tickets []models.TicketDetail
	if err := r.db.SelectContext(ctx, &tickets, query, eventID); err != nil {
		return nil, fmt.Errorf("list event tickets: %w", err)
	}
	return tickets, nil
}
