package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fenway-events/eventhub-api/internal/models"
	"github.com/fenway-events/eventhub-api/internal/service"
)

type fakeEventRepo struct {
	searched []models.FilterCriteria
	events   []models.EventDetail
}

func (f *fakeEventRepo) Search(_ context.Context, criteria models.FilterCriteria) ([]models.EventDetail, error) {
	f.searched = append(f.searched, criteria)
	return f.events, nil
}

func (f *fakeEventRepo) FindByID(context.Context, string) (*models.EventDetail, error) {
	return nil, context.Canceled
}

func (f *fakeEventRepo) ListByOrganizer(context.Context, string) ([]models.EventDetail, error) {
	return nil, nil
}

func (f *fakeEventRepo) List(context.Context, models.EventListFilter) ([]models.EventDetail, int, error) {
	return nil, 0, nil
}

func (f *fakeEventRepo) Create(context.Context, *models.Event) error { return nil }
func (f *fakeEventRepo) Update(context.Context, *models.Event) error { return nil }
func (f *fakeEventRepo) Delete(context.Context, string) error        { return nil }

func newFilterRouter(repo *fakeEventRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewEventService(repo, nil, nil, nil, time.Minute)
	router := gin.New()
	router.GET("/events/filter", NewEventHandler(svc).Filter)
	return router
}

func TestEventHandlerFilter(t *testing.T) {
	repo := &fakeEventRepo{events: []models.EventDetail{
		{Event: models.Event{ID: "ev-1", Name: "Jazz Night"}},
	}}
	router := newFilterRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/events/filter?eventType=music&startDate=2025-06-01&endDate=2025-06-07&maxPrice=30&locationType=virtual", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool                 `json:"success"`
		Data    []models.EventDetail `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Data, 1)

	require.Len(t, repo.searched, 1)
	criteria := repo.searched[0]
	assert.Equal(t, []string{"music"}, criteria.Types)
	assert.Equal(t, models.LocationVirtual, criteria.LocationType)
	require.NotNil(t, criteria.MaxPrice)
	assert.Equal(t, 30.0, *criteria.MaxPrice)
	require.NotNil(t, criteria.DateRange)
	assert.True(t, criteria.DateRange.Explicit())
}

func TestEventHandlerFilterNoParams(t *testing.T) {
	repo := &fakeEventRepo{}
	router := newFilterRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/events/filter", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, repo.searched, 1)
	assert.Empty(t, repo.searched[0].Types)
	assert.Nil(t, repo.searched[0].DateRange)
}

func TestEventHandlerFilterBadMaxPrice(t *testing.T) {
	router := newFilterRouter(&fakeEventRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/events/filter?maxPrice=cheap", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.NotEmpty(t, body.Error)
}

func TestEventHandlerFilterBadDate(t *testing.T) {
	router := newFilterRouter(&fakeEventRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/events/filter?startDate=soon", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
