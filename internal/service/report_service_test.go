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

type fakeReportRepo struct {
	open     map[string]*models.EventReport
	byID     map[string]*models.EventReport
	created  []*models.EventReport
	resolved []string
}

func (f *fakeReportRepo) Create(_ context.Context, report *models.EventReport) error {
	report.ID = "rep-new"
	f.created = append(f.created, report)
	return nil
}

func (f *fakeReportRepo) FindOpenByEventAndUser(_ context.Context, eventID, userID string) (*models.EventReport, error) {
	return f.open[eventID+"/"+userID], nil
}

func (f *fakeReportRepo) FindByID(_ context.Context, id string) (*models.EventReport, error) {
	if r, ok := f.byID[id]; ok {
		return r, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeReportRepo) List(_ context.Context, _ string, _, _ int) ([]models.ReportDetail, int, error) {
	return nil, 0, nil
}

func (f *fakeReportRepo) Resolve(_ context.Context, id, status, _ string) error {
	f.resolved = append(f.resolved, id+":"+status)
	return nil
}

type fakeTicketFinder struct {
	tickets map[string]*models.Ticket
}

func (f *fakeTicketFinder) FindByEventAndUser(_ context.Context, eventID, userID string) (*models.Ticket, error) {
	return f.tickets[eventID+"/"+userID], nil
}

type fakeEventMarker struct {
	events map[string]*models.EventDetail
	marks  []string
}

func (f *fakeEventMarker) FindByID(_ context.Context, id string) (*models.EventDetail, error) {
	if e, ok := f.events[id]; ok {
		return e, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeEventMarker) SetReported(_ context.Context, id string, reported bool, _ time.Time) error {
	state := "off"
	if reported {
		state = "on"
	}
	f.marks = append(f.marks, id+":"+state)
	return nil
}

func TestReportServiceCreateRequiresTicket(t *testing.T) {
	events := &fakeEventMarker{events: map[string]*models.EventDetail{
		"ev-1": {Event: models.Event{ID: "ev-1"}},
	}}
	reports := &fakeReportRepo{open: map[string]*models.EventReport{}}
	tickets := &fakeTicketFinder{tickets: map[string]*models.Ticket{}}
	svc := NewReportService(reports, tickets, events, nil)

	_, err := svc.Create(context.Background(), "ev-1", "user-1", "spam")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, reports.created)
}

func TestReportServiceCreateFlagsEvent(t *testing.T) {
	events := &fakeEventMarker{events: map[string]*models.EventDetail{
		"ev-1": {Event: models.Event{ID: "ev-1"}},
	}}
	reports := &fakeReportRepo{open: map[string]*models.EventReport{}}
	tickets := &fakeTicketFinder{tickets: map[string]*models.Ticket{
		"ev-1/user-1": {ID: "t-1"},
	}}
	svc := NewReportService(reports, tickets, events, nil)

	report, err := svc.Create(context.Background(), "ev-1", "user-1", "misleading listing")
	require.NoError(t, err)
	assert.Equal(t, "rep-new", report.ID)
	assert.Equal(t, []string{"ev-1:on"}, events.marks)
}

func TestReportServiceCreateDuplicate(t *testing.T) {
	events := &fakeEventMarker{events: map[string]*models.EventDetail{
		"ev-1": {Event: models.Event{ID: "ev-1"}},
	}}
	reports := &fakeReportRepo{open: map[string]*models.EventReport{
		"ev-1/user-1": {ID: "rep-1"},
	}}
	tickets := &fakeTicketFinder{tickets: map[string]*models.Ticket{
		"ev-1/user-1": {ID: "t-1"},
	}}
	svc := NewReportService(reports, tickets, events, nil)

	_, err := svc.Create(context.Background(), "ev-1", "user-1", "again")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestReportServiceResolve(t *testing.T) {
	events := &fakeEventMarker{events: map[string]*models.EventDetail{}}
	reports := &fakeReportRepo{byID: map[string]*models.EventReport{
		"rep-1": {ID: "rep-1", EventID: "ev-1", Status: models.ReportStatusOpen},
		"rep-2": {ID: "rep-2", EventID: "ev-2", Status: models.ReportStatusFlagged},
	}}
	svc := NewReportService(reports, &fakeTicketFinder{}, events, nil)

	err := svc.Resolve(context.Background(), "rep-1", "admin-1", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"rep-1:" + models.ReportStatusDismissed}, reports.resolved)
	assert.Equal(t, []string{"ev-1:off"}, events.marks)

	err = svc.Resolve(context.Background(), "rep-2", "admin-1", true)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}
