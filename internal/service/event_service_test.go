package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fenway-events/eventhub-api/internal/models"
	appErrors "github.com/fenway-events/eventhub-api/pkg/errors"
)

type fakeEventRepo struct {
	searched  []models.FilterCriteria
	searchErr error
	events    []models.EventDetail
	byID      map[string]*models.EventDetail
	created   []*models.Event
	updated   []*models.Event
	deleted   []string
}

func (f *fakeEventRepo) Search(_ context.Context, criteria models.FilterCriteria) ([]models.EventDetail, error) {
	f.searched = append(f.searched, criteria)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.events, nil
}

func (f *fakeEventRepo) FindByID(_ context.Context, id string) (*models.EventDetail, error) {
	if d, ok := f.byID[id]; ok {
		return d, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeEventRepo) ListByOrganizer(_ context.Context, _ string) ([]models.EventDetail, error) {
	return f.events, nil
}

func (f *fakeEventRepo) List(_ context.Context, _ models.EventListFilter) ([]models.EventDetail, int, error) {
	return f.events, len(f.events), nil
}

func (f *fakeEventRepo) Create(_ context.Context, event *models.Event) error {
	event.ID = "ev-new"
	f.created = append(f.created, event)
	return nil
}

func (f *fakeEventRepo) Update(_ context.Context, event *models.Event) error {
	f.updated = append(f.updated, event)
	return nil
}

func (f *fakeEventRepo) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func validEventRequest() models.EventRequest {
	return models.EventRequest{
		Name:         "Jazz Night",
		EventTypes:   []string{"music"},
		Date:         time.Now().Add(72 * time.Hour).Format("2006-01-02"),
		LocationType: models.LocationInPerson,
		Location:     "Boston",
		Price:        25,
		TotalTickets: 100,
	}
}

func TestEventServiceBrowseMapsFilter(t *testing.T) {
	repo := &fakeEventRepo{}
	svc := NewEventService(repo, nil, nil, nil, time.Minute)

	max := 30.0
	_, err := svc.Browse(context.Background(), BrowseFilter{
		EventType:    "music",
		StartDate:    "2025-06-01",
		EndDate:      "2025-06-07",
		MaxPrice:     &max,
		LocationType: models.LocationVirtual,
	})
	require.NoError(t, err)

	require.Len(t, repo.searched, 1)
	got := repo.searched[0]
	assert.Equal(t, []string{"music"}, got.Types)
	assert.Equal(t, models.OperatorOr, got.Operator)
	assert.Equal(t, models.LocationVirtual, got.LocationType)
	require.NotNil(t, got.MaxPrice)
	assert.Equal(t, 30.0, *got.MaxPrice)
	require.NotNil(t, got.DateRange)
	assert.True(t, got.DateRange.Explicit())
}

func TestEventServiceBrowseRejectsBadDate(t *testing.T) {
	svc := NewEventService(&fakeEventRepo{}, nil, nil, nil, time.Minute)
	_, err := svc.Browse(context.Background(), BrowseFilter{StartDate: "not a date"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestEventServiceSearchWrapsQueryError(t *testing.T) {
	repo := &fakeEventRepo{searchErr: sql.ErrConnDone}
	svc := NewEventService(repo, nil, nil, nil, time.Minute)

	_, err := svc.Search(context.Background(), models.FilterCriteria{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrQueryFailed.Code, appErrors.FromError(err).Code)
}

func TestEventServiceSearchReturnsEmptySlice(t *testing.T) {
	svc := NewEventService(&fakeEventRepo{}, nil, nil, nil, time.Minute)
	events, err := svc.Search(context.Background(), models.FilterCriteria{})
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestEventServiceCreateValidation(t *testing.T) {
	repo := &fakeEventRepo{}
	svc := NewEventService(repo, nil, nil, nil, time.Minute)

	req := validEventRequest()
	event, err := svc.Create(context.Background(), "org-1", req)
	require.NoError(t, err)
	assert.Equal(t, "org-1", event.OrganizerID)
	assert.Equal(t, 100, event.AvailableTickets)
	assert.Equal(t, 100, event.MaxAttendees)

	past := validEventRequest()
	past.Date = "2020-01-01"
	_, err = svc.Create(context.Background(), "org-1", past)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	missing := validEventRequest()
	missing.Name = ""
	_, err = svc.Create(context.Background(), "org-1", missing)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestEventServiceUpdateOwnership(t *testing.T) {
	existing := &models.EventDetail{Event: models.Event{
		ID: "ev-1", OrganizerID: "org-1", TotalTickets: 100, AvailableTickets: 40,
	}}
	repo := &fakeEventRepo{byID: map[string]*models.EventDetail{"ev-1": existing}}
	svc := NewEventService(repo, nil, nil, nil, time.Minute)

	_, err := svc.Update(context.Background(), "ev-1", "someone-else", false, validEventRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	// 60 sold tickets; shrinking below that is rejected.
	shrunk := validEventRequest()
	shrunk.TotalTickets = 50
	_, err = svc.Update(context.Background(), "ev-1", "org-1", false, shrunk)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	grown := validEventRequest()
	grown.TotalTickets = 120
	updated, err := svc.Update(context.Background(), "ev-1", "org-1", false, grown)
	require.NoError(t, err)
	assert.Equal(t, 60, updated.AvailableTickets)

	// Admins bypass ownership.
	_, err = svc.Update(context.Background(), "ev-1", "admin-1", true, validEventRequest())
	require.NoError(t, err)
}

func TestEventServiceDelete(t *testing.T) {
	existing := &models.EventDetail{Event: models.Event{ID: "ev-1", OrganizerID: "org-1"}}
	repo := &fakeEventRepo{byID: map[string]*models.EventDetail{"ev-1": existing}}
	svc := NewEventService(repo, nil, nil, nil, time.Minute)

	err := svc.Delete(context.Background(), "ev-1", "org-1", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"ev-1"}, repo.deleted)

	err = svc.Delete(context.Background(), "missing", "org-1", false)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
