package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fenway-events/eventhub-api/internal/filter"
	"github.com/fenway-events/eventhub-api/internal/models"
)

func newEventMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func eventDetailRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "name", "description", "event_types", "date", "time", "location_type", "location",
		"organizer_id", "price", "total_tickets", "available_tickets", "max_attendees", "rating",
		"is_reported", "reported_at", "created_at", "updated_at", "organizer_name", "organizer_organization",
	}).AddRow("ev-1", "Jazz Night", "Live jazz", "{music}", now, "19:00", "in-person", "Boston",
		"org-1", 25.0, 100, 80, 100, 4.5, false, nil, now, now, "Ada Smith", "Fenway Arts")
}

func TestEventRepositorySearchTypesOr(t *testing.T) {
	db, mock, cleanup := newEventMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND e.event_types && $1 ORDER BY e.date ASC")).
		WithArgs(pq.Array([]string{"music", "art"})).
		WillReturnRows(eventDetailRows())

	events, err := repo.Search(context.Background(), models.FilterCriteria{
		Types:    []string{"music", "art"},
		Operator: models.OperatorOr,
	})
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, "Ada Smith", events[0].OrganizerName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositorySearchTypesAndDefault(t *testing.T) {
	db, mock, cleanup := newEventMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	// Without an explicit operator the whole tag set must match.
	mock.ExpectQuery(regexp.QuoteMeta("e.event_types @> $1")).
		WithArgs(pq.Array([]string{"music", "outdoor"})).
		WillReturnRows(eventDetailRows())

	_, err := repo.Search(context.Background(), models.FilterCriteria{Types: []string{"music", "outdoor"}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositorySearchDateKeyword(t *testing.T) {
	db, mock, cleanup := newEventMock(t)
	defer cleanup()
	repo := NewEventRepository(db)
	fixed := time.Date(2025, time.March, 12, 14, 30, 0, 0, time.Local)
	repo.now = func() time.Time { return fixed }

	mock.ExpectQuery(regexp.QuoteMeta("e.date >= $1 AND e.date <= $2")).
		WithArgs(filter.StartOfDay(fixed), filter.EndOfDay(fixed)).
		WillReturnRows(eventDetailRows())

	spec := models.DateSpec{Keyword: "today"}
	_, err := repo.Search(context.Background(), models.FilterCriteria{DateRange: &spec})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositorySearchPartialDateBound(t *testing.T) {
	db, mock, cleanup := newEventMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	start := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.Local)
	mock.ExpectQuery(regexp.QuoteMeta("1=1 AND e.date >= $1 ORDER BY")).
		WithArgs(filter.StartOfDay(start)).
		WillReturnRows(eventDetailRows())

	spec := models.DateSpec{Start: start}
	_, err := repo.Search(context.Background(), models.FilterCriteria{DateRange: &spec})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositorySearchPriceAndAttendance(t *testing.T) {
	db, mock, cleanup := newEventMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("e.price < $1 AND e.max_attendees > $2")).
		WithArgs(float64(50), float64(100)).
		WillReturnRows(eventDetailRows())

	_, err := repo.Search(context.Background(), models.FilterCriteria{
		Price:      "under 50",
		Attendance: "more than 100",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositorySearchFreePrice(t *testing.T) {
	db, mock, cleanup := newEventMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("e.price = $1")).
		WithArgs(float64(0)).
		WillReturnRows(eventDetailRows())

	_, err := repo.Search(context.Background(), models.FilterCriteria{Price: "free"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositorySearchOrganizerAndSearchTermGroups(t *testing.T) {
	db, mock, cleanup := newEventMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	// Organizer and search term form two separate OR-groups joined by AND.
	mock.ExpectQuery(regexp.QuoteMeta("(LOWER(u.full_name) LIKE $1 OR LOWER(u.organization) LIKE $1) AND (LOWER(e.name) LIKE $2 OR LOWER(e.description) LIKE $2)")).
		WithArgs("%fenway arts%", "%jazz%").
		WillReturnRows(eventDetailRows())

	_, err := repo.Search(context.Background(), models.FilterCriteria{
		Organizer:  "Fenway Arts",
		SearchTerm: "Jazz",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositorySearchReportedAsymmetry(t *testing.T) {
	db, mock, cleanup := newEventMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	// false adds nothing; the predicate only appears for true.
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 ORDER BY e.date ASC")).
		WillReturnRows(eventDetailRows())
	_, err := repo.Search(context.Background(), models.FilterCriteria{IsReported: false})
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND e.is_reported = TRUE ORDER BY e.date ASC")).
		WillReturnRows(eventDetailRows())
	_, err = repo.Search(context.Background(), models.FilterCriteria{IsReported: true})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositorySearchSort(t *testing.T) {
	db, mock, cleanup := newEventMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	cases := map[string]string{
		models.SortPriceAsc:  "ORDER BY e.price ASC",
		models.SortPriceDesc: "ORDER BY e.price DESC",
		models.SortDateDesc:  "ORDER BY e.date DESC",
		models.SortRating:    "ORDER BY e.rating DESC",
		"unknown":            "ORDER BY e.date ASC",
	}
	for sort, clause := range cases {
		mock.ExpectQuery(regexp.QuoteMeta(clause)).WillReturnRows(eventDetailRows())
		_, err := repo.Search(context.Background(), models.FilterCriteria{Sort: sort})
		require.NoError(t, err, sort)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositorySearchLocationAndMaxPrice(t *testing.T) {
	db, mock, cleanup := newEventMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	max := 30.0
	mock.ExpectQuery(regexp.QuoteMeta("e.location = $1 AND e.location_type = $2 AND e.price <= $3")).
		WithArgs("Boston", models.LocationInPerson, max).
		WillReturnRows(eventDetailRows())

	_, err := repo.Search(context.Background(), models.FilterCriteria{
		Location:     "Boston",
		LocationType: models.LocationInPerson,
		MaxPrice:     &max,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newEventMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectExec("INSERT INTO events").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	event := &models.Event{
		Name:         "Jazz Night",
		EventTypes:   pq.StringArray{"music"},
		Date:         time.Now().Add(48 * time.Hour),
		LocationType: models.LocationInPerson,
		Location:     "Boston",
		OrganizerID:  "org-1",
		TotalTickets: 100,
	}
	err := repo.Create(context.Background(), event)
	require.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositorySetReported(t *testing.T) {
	db, mock, cleanup := newEventMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectExec("UPDATE events SET is_reported").
		WithArgs("ev-1", true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetReported(context.Background(), "ev-1", true, time.Now())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newEventMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectExec("DELETE FROM events").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNoRowsAffected)
	assert.NoError(t, mock.ExpectationsWereMet())
}
