package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fenway-events/eventhub-api/internal/models"
)

const reportDetailColumns = `r.id, r.event_id, r.user_id, r.reason, r.status, r.created_at, r.resolved_at, r.resolved_by,
        e.name AS event_name, u.full_name AS reporter_name`

const reportDetailBase = `FROM event_reports r
        JOIN events e ON e.id = r.event_id
        JOIN users u ON u.id = r.user_id`

// ReportRepository manages moderation reports against events.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs a ReportRepository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create inserts a new open report.
func (r *ReportRepository) Create(ctx context.Context, report *models.EventReport) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	report.Status = models.ReportStatusOpen
	report.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO event_reports (id, event_id, user_id, reason, status, created_at)
        VALUES (:id, :event_id, :user_id, :reason, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, report); err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

// FindOpenByEventAndUser returns the user's open report for an event, or nil.
func (r *ReportRepository) FindOpenByEventAndUser(ctx context.Context, eventID, userID string) (*models.EventReport, error) {
	var report models.EventReport
	err := r.db.GetContext(ctx, &report,
		`SELECT id, event_id, user_id, reason, status, created_at, resolved_at, resolved_by
         FROM event_reports WHERE event_id = $1 AND user_id = $2 AND status = $3`,
		eventID, userID, models.ReportStatusOpen)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find open report: %w", err)
	}
	return &report, nil
}

// FindByID returns a single report.
func (r *ReportRepository) FindByID(ctx context.Context, id string) (*models.EventReport, error) {
	var report models.EventReport
	err := r.db.GetContext(ctx, &report,
		`SELECT id, event_id, user_id, reason, status, created_at, resolved_at, resolved_by
         FROM event_reports WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// List returns reports for admin review, optionally filtered by status.
func (r *ReportRepository) List(ctx context.Context, status string, page, pageSize int) ([]models.ReportDetail, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if status != "" {
		conditions = append(conditions, fmt.Sprintf("r.status = $%d", len(args)+1))
		args = append(args, status)
	}

	where := strings.Join(conditions, " AND ")

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY r.created_at DESC LIMIT %d OFFSET %d",
		reportDetailColumns, reportDetailBase, where, pageSize, offset)

	var reports []models.ReportDetail
	if err := r.db.SelectContext(ctx, &reports, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(r.id) %s WHERE %s", reportDetailBase, where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}
	return reports, total, nil
}

// Resolve closes a report with the admin's decision.
func (r *ReportRepository) Resolve(ctx context.Context, id, status, adminID string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE event_reports SET status = $2, resolved_at = $3, resolved_by = $4 WHERE id = $1",
		id, status, time.Now().UTC(), adminID)
	if err != nil {
		return fmt.Errorf("resolve report: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}
