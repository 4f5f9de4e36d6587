package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fenway-events/eventhub-api/internal/models"
	appErrors "github.com/fenway-events/eventhub-api/pkg/errors"
	"github.com/fenway-events/eventhub-api/pkg/export"
	"github.com/fenway-events/eventhub-api/pkg/jobs"
	"github.com/fenway-events/eventhub-api/pkg/storage"
)

type exportTicketLister interface {
	ListByEvent(ctx context.Context, eventID string) ([]models.TicketDetail, error)
}

type exportEventFinder interface {
	FindByID(ctx context.Context, id string) (*models.EventDetail, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type tableRenderer interface {
	RenderTable(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
	Workers   int
}

// ExportService generates attendee-list exports in the background and hands
// out signed download URLs. Job state lives in memory; exports are
// re-requestable and expire with their files.
type ExportService struct {
	tickets exportTicketLister
	events  exportEventFinder
	storage fileStorage
	csv     csvRenderer
	pdf     tableRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig

	queue *jobs.Queue

	mu   sync.RWMutex
	jobs map[string]*models.ExportJob
}

// NewExportService constructs an ExportService.
func NewExportService(tickets exportTicketLister, events exportEventFinder, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}

	s := &ExportService{
		tickets: tickets,
		events:  events,
		storage: store,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
		jobs:    make(map[string]*models.ExportJob),
	}
	s.queue = jobs.NewQueue("exports", s.process, jobs.QueueConfig{
		Workers: cfg.Workers,
		Logger:  logger,
	})
	return s
}

// Start launches the export workers.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the export workers.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// Request enqueues an attendee-list export for an event the caller organizes.
func (s *ExportService) Request(ctx context.Context, eventID, callerID string, isAdmin bool, format string) (*models.ExportJob, error) {
	if format != models.ExportFormatCSV && format != models.ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch event")
	}
	if event.OrganizerID != callerID && !isAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not the event organizer")
	}

	job := &models.ExportJob{
		ID:          uuid.NewString(),
		EventID:     eventID,
		RequestedBy: callerID,
		Format:      format,
		Status:      models.ExportStatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "attendee-export"}); err != nil {
		s.failJob(job.ID, err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export")
	}
	return s.snapshot(job.ID), nil
}

// Status returns the current state of an export job the caller requested.
func (s *ExportService) Status(jobID, callerID string, isAdmin bool) (*models.ExportJob, error) {
	job := s.snapshot(jobID)
	if job == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	if job.RequestedBy != callerID && !isAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not the export owner")
	}
	return job, nil
}

// OpenDownload validates a signed token and returns the file handle.
func (s *ExportService) OpenDownload(token string) (*os.File, string, error) {
	jobID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		s.logger.Warn("export file missing", zap.String("job_id", jobID), zap.Error(err))
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export no longer available")
	}
	return file, relPath, nil
}

// Cleanup removes expired export files. Intended for a periodic caller.
func (s *ExportService) Cleanup() {
	deleted, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL)
	if err != nil {
		s.logger.Error("export cleanup failed", zap.Error(err))
		return
	}
	if len(deleted) > 0 {
		s.logger.Info("expired exports removed", zap.Int("count", len(deleted)))
	}
}

func (s *ExportService) process(ctx context.Context, job jobs.Job) error {
	tracked := s.snapshot(job.ID)
	if tracked == nil {
		return fmt.Errorf("unknown export job %s", job.ID)
	}

	event, err := s.events.FindByID(ctx, tracked.EventID)
	if err != nil {
		s.failJob(job.ID, err)
		return err
	}
	tickets, err := s.tickets.ListByEvent(ctx, tracked.EventID)
	if err != nil {
		s.failJob(job.ID, err)
		return err
	}

	dataset := attendeeDataset(tickets)
	var payload []byte
	switch tracked.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.RenderTable(dataset, fmt.Sprintf("Attendees: %s", event.Name))
	default:
		err = fmt.Errorf("unsupported format %s", tracked.Format)
	}
	if err != nil {
		s.failJob(job.ID, err)
		return err
	}

	filename := fmt.Sprintf("%s/%s.%s", tracked.EventID, job.ID, tracked.Format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		s.failJob(job.ID, err)
		return err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		s.failJob(job.ID, err)
		return err
	}

	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	now := time.Now().UTC()
	s.mu.Lock()
	tracked = s.jobs[job.ID]
	tracked.Status = models.ExportStatusCompleted
	tracked.DownloadURL = fmt.Sprintf("%s/exports/download/%s", prefix, token)
	tracked.ExpiresAt = &expiresAt
	tracked.CompletedAt = &now
	s.mu.Unlock()

	s.logger.Info("export completed", zap.String("job_id", job.ID), zap.String("event_id", tracked.EventID))
	return nil
}

func attendeeDataset(tickets []models.TicketDetail) export.Dataset {
	rows := make([]map[string]string, 0, len(tickets))
	for _, t := range tickets {
		rows = append(rows, map[string]string{
			"Ticket":    t.ID,
			"Attendee":  t.AttendeeName,
			"Purchased": t.PurchaseDate.Format("2006-01-02 15:04"),
			"Price":     fmt.Sprintf("%.2f", t.EventPrice),
		})
	}
	return export.Dataset{
		Headers: []string{"Ticket", "Attendee", "Purchased", "Price"},
		Rows:    rows,
	}
}

func (s *ExportService) snapshot(jobID string) *models.ExportJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil
	}
	clone := *job
	return &clone
}

func (s *ExportService) failJob(jobID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[jobID]; ok {
		job.Status = models.ExportStatusFailed
		job.Error = err.Error()
	}
}
