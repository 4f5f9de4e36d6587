package models

import "time"

// Export formats and job states.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"

	ExportStatusPending   = "pending"
	ExportStatusCompleted = "completed"
	ExportStatusFailed    = "failed"
)

// ExportJob tracks an asynchronous attendee-list export.
type ExportJob struct {
	ID          string     `json:"id"`
	EventID     string     `json:"eventId"`
	RequestedBy string     `json:"requestedBy"`
	Format      string     `json:"format"`
	Status      string     `json:"status"`
	DownloadURL string     `json:"downloadUrl,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}
