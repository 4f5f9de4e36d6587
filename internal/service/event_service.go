package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/fenway-events/eventhub-api/internal/models"
	"github.com/fenway-events/eventhub-api/internal/repository"
	appErrors "github.com/fenway-events/eventhub-api/pkg/errors"
)

type eventRepository interface {
	Search(ctx context.Context, criteria models.FilterCriteria) ([]models.EventDetail, error)
	FindByID(ctx context.Context, id string) (*models.EventDetail, error)
	ListByOrganizer(ctx context.Context, organizerID string) ([]models.EventDetail, error)
	List(ctx context.Context, f models.EventListFilter) ([]models.EventDetail, int, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id string) error
}

type eventCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// BrowseFilter carries the structured query parameters of GET /events/filter.
type BrowseFilter struct {
	EventType    string
	StartDate    string
	EndDate      string
	MaxPrice     *float64
	LocationType string
}

// EventService owns event lifecycle and the two search entry points.
type EventService struct {
	repo           eventRepository
	cache          eventCache
	validator      *validator.Validate
	logger         *zap.Logger
	detailCacheTTL time.Duration
}

// NewEventService constructs an EventService.
func NewEventService(repo eventRepository, cache eventCache, validate *validator.Validate, logger *zap.Logger, detailCacheTTL time.Duration) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EventService{repo: repo, cache: cache, validator: validate, logger: logger, detailCacheTTL: detailCacheTTL}
}

// Search runs compiled filter criteria against the event store.
func (s *EventService) Search(ctx context.Context, criteria models.FilterCriteria) ([]models.EventDetail, error) {
	events, err := s.repo.Search(ctx, criteria)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrQueryFailed.Code, appErrors.ErrQueryFailed.Status, appErrors.ErrQueryFailed.Message)
	}
	if events == nil {
		events = []models.EventDetail{}
	}
	return events, nil
}

// Browse maps the structured filter endpoint's parameters onto criteria and
// searches. Invalid dates are rejected rather than silently dropped.
func (s *EventService) Browse(ctx context.Context, f BrowseFilter) ([]models.EventDetail, error) {
	criteria := models.FilterCriteria{
		MaxPrice:     f.MaxPrice,
		LocationType: f.LocationType,
	}
	if f.EventType != "" {
		criteria.Types = []string{f.EventType}
		criteria.Operator = models.OperatorOr
	}

	if f.StartDate != "" || f.EndDate != "" {
		spec := models.DateSpec{}
		if f.StartDate != "" {
			start, err := models.ParseDate(f.StartDate)
			if err != nil {
				return nil, appErrors.Clone(appErrors.ErrValidation, "invalid startDate")
			}
			spec.Start = start
		}
		if f.EndDate != "" {
			end, err := models.ParseDate(f.EndDate)
			if err != nil {
				return nil, appErrors.Clone(appErrors.ErrValidation, "invalid endDate")
			}
			spec.End = end
		}
		criteria.DateRange = &spec
	}

	return s.Search(ctx, criteria)
}

// GetDetail returns a single event, served from cache when possible.
func (s *EventService) GetDetail(ctx context.Context, id string) (*models.EventDetail, error) {
	key := eventDetailCacheKey(id)
	if s.cache != nil {
		var cached models.EventDetail
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch event")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, detail, s.detailCacheTTL); err != nil {
			s.logger.Warn("event cache set failed", zap.String("event_id", id), zap.Error(err))
		}
	}
	return detail, nil
}

// ListByOrganizer returns the caller's own events.
func (s *EventService) ListByOrganizer(ctx context.Context, organizerID string) ([]models.EventDetail, error) {
	events, err := s.repo.ListByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	return events, nil
}

// List returns paginated events for admin tables.
func (s *EventService) List(ctx context.Context, f models.EventListFilter) ([]models.EventDetail, *models.Pagination, error) {
	events, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	size := f.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return events, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Create validates and stores a new event for the organizer.
func (s *EventService) Create(ctx context.Context, organizerID string, req models.EventRequest) (*models.Event, error) {
	event, err := s.buildEvent(req)
	if err != nil {
		return nil, err
	}
	event.OrganizerID = organizerID
	event.AvailableTickets = req.TotalTickets

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}
	s.logger.Info("event created", zap.String("event_id", event.ID), zap.String("organizer_id", organizerID))
	return event, nil
}

// Update applies changes to an event the caller owns (or administrates).
func (s *EventService) Update(ctx context.Context, eventID, callerID string, isAdmin bool, req models.EventRequest) (*models.Event, error) {
	existing, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch event")
	}
	if existing.OrganizerID != callerID && !isAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not the event organizer")
	}

	event, err := s.buildEvent(req)
	if err != nil {
		return nil, err
	}
	event.ID = eventID
	event.OrganizerID = existing.OrganizerID

	sold := existing.TotalTickets - existing.AvailableTickets
	if req.TotalTickets < sold {
		return nil, appErrors.Clone(appErrors.ErrValidation, "total tickets below tickets already sold")
	}
	event.AvailableTickets = req.TotalTickets - sold

	if err := s.repo.Update(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event")
	}
	s.invalidateDetail(ctx, eventID)
	return event, nil
}

// Delete removes an event the caller owns (or administrates).
func (s *EventService) Delete(ctx context.Context, eventID, callerID string, isAdmin bool) error {
	existing, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch event")
	}
	if existing.OrganizerID != callerID && !isAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "not the event organizer")
	}

	if err := s.repo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrNoRowsAffected) {
			return appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete event")
	}
	s.invalidateDetail(ctx, eventID)
	return nil
}

func (s *EventService) buildEvent(req models.EventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}

	date, err := models.ParseDate(req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid event date")
	}
	if date.Before(time.Now()) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "event date must be in the future")
	}

	maxAttendees := req.MaxAttendees
	if maxAttendees <= 0 {
		maxAttendees = req.TotalTickets
	}

	return &models.Event{
		Name:         req.Name,
		Description:  req.Description,
		EventTypes:   pq.StringArray(req.EventTypes),
		Date:         date,
		Time:         req.Time,
		LocationType: req.LocationType,
		Location:     req.Location,
		Price:        req.Price,
		TotalTickets: req.TotalTickets,
		MaxAttendees: maxAttendees,
	}, nil
}

func (s *EventService) invalidateDetail(ctx context.Context, eventID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, eventDetailCacheKey(eventID)); err != nil {
		s.logger.Warn("event cache invalidation failed", zap.String("event_id", eventID), zap.Error(err))
	}
}

func eventDetailCacheKey(id string) string {
	return fmt.Sprintf("events:detail:%s", id)
}
