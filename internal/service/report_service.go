package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/fenway-events/eventhub-api/internal/models"
	appErrors "github.com/fenway-events/eventhub-api/pkg/errors"
)

type reportRepository interface {
	Create(ctx context.Context, report *models.EventReport) error
	FindOpenByEventAndUser(ctx context.Context, eventID, userID string) (*models.EventReport, error)
	FindByID(ctx context.Context, id string) (*models.EventReport, error)
	List(ctx context.Context, status string, page, pageSize int) ([]models.ReportDetail, int, error)
	Resolve(ctx context.Context, id, status, adminID string) error
}

type reportTicketFinder interface {
	FindByEventAndUser(ctx context.Context, eventID, userID string) (*models.Ticket, error)
}

type reportEventMarker interface {
	FindByID(ctx context.Context, id string) (*models.EventDetail, error)
	SetReported(ctx context.Context, id string, reported bool, ts time.Time) error
}

// ReportService handles event moderation reports.
type ReportService struct {
	reports reportRepository
	tickets reportTicketFinder
	events  reportEventMarker
	logger  *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(reports reportRepository, tickets reportTicketFinder, events reportEventMarker, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{reports: reports, tickets: tickets, events: events, logger: logger}
}

// Create files a report against an event. Only ticket holders may report,
// and each user gets one open report per event. Filing a report flags the
// event immediately so searches for reported events see it.
func (s *ReportService) Create(ctx context.Context, eventID, userID, reason string) (*models.EventReport, error) {
	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch event")
	}

	ticket, err := s.tickets.FindByEventAndUser(ctx, eventID, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check ticket")
	}
	if ticket == nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only ticket holders can report an event")
	}

	existing, err := s.reports.FindOpenByEventAndUser(ctx, eventID, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check reports")
	}
	if existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "you already reported this event")
	}

	report := &models.EventReport{EventID: eventID, UserID: userID, Reason: reason}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create report")
	}

	if err := s.events.SetReported(ctx, eventID, true, time.Now().UTC()); err != nil {
		s.logger.Error("failed to flag reported event", zap.String("event_id", eventID), zap.Error(err))
	}

	s.logger.Info("event reported", zap.String("event_id", eventID), zap.String("user_id", userID))
	return report, nil
}

// List returns reports for admin review.
func (s *ReportService) List(ctx context.Context, status string, page, pageSize int) ([]models.ReportDetail, *models.Pagination, error) {
	if status != "" && status != models.ReportStatusOpen && status != models.ReportStatusFlagged && status != models.ReportStatusDismissed {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid report status")
	}
	reports, total, err := s.reports.List(ctx, status, page, pageSize)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reports")
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return reports, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Resolve closes a report. Flagging keeps the event marked as reported;
// dismissing clears the mark.
func (s *ReportService) Resolve(ctx context.Context, reportID, adminID string, flag bool) error {
	report, err := s.reports.FindByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch report")
	}
	if report.Status != models.ReportStatusOpen {
		return appErrors.Clone(appErrors.ErrConflict, "report already resolved")
	}

	status := models.ReportStatusDismissed
	if flag {
		status = models.ReportStatusFlagged
	}
	if err := s.reports.Resolve(ctx, reportID, status, adminID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve report")
	}

	if err := s.events.SetReported(ctx, report.EventID, flag, time.Now().UTC()); err != nil {
		s.logger.Error("failed to update reported mark", zap.String("event_id", report.EventID), zap.Error(err))
	}
	s.logger.Info("report resolved", zap.String("report_id", reportID), zap.String("status", status))
	return nil
}
