package models

import "time"

// Report statuses.
const (
	ReportStatusOpen      = "open"
	ReportStatusFlagged   = "flagged"
	ReportStatusDismissed = "dismissed"
)

// EventReport records a ticket holder flagging an event for moderation.
type EventReport struct {
	ID         string     `db:"id" json:"id"`
	EventID    string     `db:"event_id" json:"eventId"`
	UserID     string     `db:"user_id" json:"userId"`
	Reason     string     `db:"reason" json:"reason,omitempty"`
	Status     string     `db:"status" json:"status"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
	ResolvedAt *time.Time `db:"resolved_at" json:"resolvedAt,omitempty"`
	ResolvedBy *string    `db:"resolved_by" json:"resolvedBy,omitempty"`
}

// ReportDetail joins a report with event and reporter identity for admin tables.
type ReportDetail struct {
	EventReport
	EventName    string `db:"event_name" json:"eventName"`
	ReporterName string `db:"reporter_name" json:"reporterName"`
}
