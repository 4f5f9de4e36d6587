package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/fenway-events/eventhub-api/internal/filter"
	"github.com/fenway-events/eventhub-api/internal/models"
)

const eventDetailColumns = `e.id, e.name, e.description, e.event_types, e.date, e.time, e.location_type, e.location,
        e.organizer_id, e.price, e.total_tickets, e.available_tickets, e.max_attendees, e.rating, e.is_reported, e.reported_at, e.created_at, e.updated_at,
        u.full_name AS organizer_name, COALESCE(u.organization, '') AS organizer_organization`

const eventDetailBase = `FROM events e JOIN users u ON u.id = e.organizer_id`

// EventRepository manages persistence for events and compiles filter criteria
// into SQL predicates.
type EventRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db, now: time.Now}
}

// Search compiles the criteria into a predicate plus sort order and returns
// matching events with organizer identity attached. All distinct criteria
// fields combine with AND; only the type set has an internal and/or choice.
func (r *EventRepository) Search(ctx context.Context, criteria models.FilterCriteria) ([]models.EventDetail, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if len(criteria.Types) > 0 {
		// "or" intersects the event's tag set, "and" (the default) requires
		// the event to carry every requested tag.
		op := "@>"
		if strings.EqualFold(criteria.Operator, models.OperatorOr) {
			op = "&&"
		}
		conditions = append(conditions, fmt.Sprintf("e.event_types %s $%d", op, len(args)+1))
		args = append(args, pq.Array(criteria.Types))
	}

	if criteria.Location != "" {
		conditions = append(conditions, fmt.Sprintf("e.location = $%d", len(args)+1))
		args = append(args, criteria.Location)
	}

	if criteria.LocationType != "" {
		conditions = append(conditions, fmt.Sprintf("e.location_type = $%d", len(args)+1))
		args = append(args, criteria.LocationType)
	}

	if criteria.DateRange != nil {
		spec := *criteria.DateRange
		if spec.Explicit() && (spec.Start.IsZero() || spec.End.IsZero()) {
			// Browse filters may supply a single bound; the missing side
			// stays unconstrained.
			if !spec.Start.IsZero() {
				conditions = append(conditions, fmt.Sprintf("e.date >= $%d", len(args)+1))
				args = append(args, filter.StartOfDay(spec.Start))
			}
			if !spec.End.IsZero() {
				conditions = append(conditions, fmt.Sprintf("e.date <= $%d", len(args)+1))
				args = append(args, filter.EndOfDay(spec.End))
			}
		} else {
			rng := filter.ResolveRange(spec, r.now())
			conditions = append(conditions, fmt.Sprintf("e.date >= $%d AND e.date <= $%d", len(args)+1, len(args)+2))
			args = append(args, rng.Start, rng.End)
		}
	}

	if cmp := filter.ParseComparison(criteria.Price); cmp != nil {
		conditions = append(conditions, fmt.Sprintf("e.price %s $%d", comparisonOperator(cmp.Op), len(args)+1))
		args = append(args, cmp.Value)
	}

	if criteria.MaxPrice != nil {
		conditions = append(conditions, fmt.Sprintf("e.price <= $%d", len(args)+1))
		args = append(args, *criteria.MaxPrice)
	}

	if criteria.Organizer != "" {
		idx := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(LOWER(u.full_name) LIKE $%d OR LOWER(u.organization) LIKE $%d)", idx, idx))
		args = append(args, "%"+strings.ToLower(criteria.Organizer)+"%")
	}

	// true restricts to flagged events; false filters nothing.
	if criteria.IsReported {
		conditions = append(conditions, "e.is_reported = TRUE")
	}

	if cmp := filter.ParseComparison(criteria.Attendance); cmp != nil {
		conditions = append(conditions, fmt.Sprintf("e.max_attendees %s $%d", comparisonOperator(cmp.Op), len(args)+1))
		args = append(args, cmp.Value)
	}

	if criteria.SearchTerm != "" {
		// A separate OR-group from the organizer pair: both groups AND
		// together when present.
		idx := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(LOWER(e.name) LIKE $%d OR LOWER(e.description) LIKE $%d)", idx, idx))
		args = append(args, "%"+strings.ToLower(criteria.SearchTerm)+"%")
	}

	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY %s",
		eventDetailColumns, eventDetailBase, strings.Join(conditions, " AND "), sortClause(criteria.Sort))

	var events []models.EventDetail
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	return events, nil
}

func comparisonOperator(op filter.Op) string {
	switch op {
	case filter.OpLt:
		return "<"
	case filter.OpGt:
		return ">"
	default:
		return "="
	}
}

func sortClause(sort string) string {
	switch strings.ToLower(sort) {
	case models.SortPriceAsc:
		return "e.price ASC"
	case models.SortPriceDesc:
		return "e.price DESC"
	case models.SortDateDesc:
		return "e.date DESC"
	case models.SortRating:
		return "e.rating DESC"
	default:
		return "e.date ASC"
	}
}

// FindByID fetches a single event with organizer identity.
func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.EventDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE e.id = $1", eventDetailColumns, eventDetailBase)
	var detail models.EventDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListByOrganizer returns events owned by the given user, newest first.
func (r *EventRepository) ListByOrganizer(ctx context.Context, organizerID string) ([]models.EventDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE e.organizer_id = $1 ORDER BY e.created_at DESC", eventDetailColumns, eventDetailBase)
	var events []models.EventDetail
	if err := r.db.SelectContext(ctx, &events, query, organizerID); err != nil {
		return nil, fmt.Errorf("list organizer events: %w", err)
	}
	return events, nil
}

// List returns events for admin tables with pagination.
func (r *EventRepository) List(ctx context.Context, f models.EventListFilter) ([]models.EventDetail, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if f.OrganizerID != "" {
		conditions = append(conditions, fmt.Sprintf("e.organizer_id = $%d", len(args)+1))
		args = append(args, f.OrganizerID)
	}
	if f.Reported != nil {
		conditions = append(conditions, fmt.Sprintf("e.is_reported = $%d", len(args)+1))
		args = append(args, *f.Reported)
	}
	if f.Search != "" {
		idx := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(LOWER(e.name) LIKE $%d OR LOWER(e.description) LIKE $%d)", idx, idx))
		args = append(args, "%"+strings.ToLower(f.Search)+"%")
	}

	where := strings.Join(conditions, " AND ")

	page := f.Page
	if page < 1 {
		page = 1
	}
	size := f.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY e.created_at DESC LIMIT %d OFFSET %d",
		eventDetailColumns, eventDetailBase, where, size, offset)

	var events []models.EventDetail
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(e.id) %s WHERE %s", eventDetailBase, where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}
	return events, total, nil
}

// Create inserts a new event record.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now
	const query = `INSERT INTO events (id, name, description, event_types, date, time, location_type, location,
        organizer_id, price, total_tickets, available_tickets, max_attendees, rating, is_reported, reported_at, created_at, updated_at)
        VALUES (:id, :name, :description, :event_types, :date, :time, :location_type, :location,
        :organizer_id, :price, :total_tickets, :available_tickets, :max_attendees, :rating, :is_reported, :reported_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// Update persists mutable event fields.
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	event.UpdatedAt = time.Now().UTC()
	const query = `UPDATE events SET name = :name, description = :description, event_types = :event_types,
        date = :date, time = :time, location_type = :location_type, location = :location, price = :price,
        total_tickets = :total_tickets, available_tickets = :available_tickets, max_attendees = :max_attendees,
        updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, event)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

// Delete removes an event.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM events WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

// SetReported flags or unflags an event after a moderation decision.
func (r *EventRepository) SetReported(ctx context.Context, id string, reported bool, ts time.Time) error {
	var reportedAt *time.Time
	if reported {
		reportedAt = &ts
	}
	result, err := r.db.ExecContext(ctx,
		"UPDATE events SET is_reported = $2, reported_at = $3, updated_at = $4 WHERE id = $1",
		id, reported, reportedAt, ts)
	if err != nil {
		return fmt.Errorf("set event reported: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}
