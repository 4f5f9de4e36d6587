package models

import (
	"time"

	"github.com/lib/pq"
)

// Location types for events.
const (
	LocationVirtual  = "virtual"
	LocationInPerson = "in-person"
)

// Event is a scheduled happening users can register for.
type Event struct {
	ID               string         `db:"id" json:"id"`
	Name             string         `db:"name" json:"name"`
	Description      string         `db:"description" json:"description"`
	EventTypes       pq.StringArray `db:"event_types" json:"eventTypes"`
	Date             time.Time      `db:"date" json:"date"`
	Time             string         `db:"time" json:"time"`
	LocationType     string         `db:"location_type" json:"locationType"`
	Location         string         `db:"location" json:"location"`
	OrganizerID      string         `db:"organizer_id" json:"organizerId"`
	Price            float64        `db:"price" json:"price"`
	TotalTickets     int            `db:"total_tickets" json:"totalTickets"`
	AvailableTickets int            `db:"available_tickets" json:"availableTickets"`
	MaxAttendees     int            `db:"max_attendees" json:"maxAttendees"`
	Rating           float64        `db:"rating" json:"rating"`
	IsReported       bool           `db:"is_reported" json:"isReported"`
	ReportedAt       *time.Time     `db:"reported_at" json:"reportedAt,omitempty"`
	CreatedAt        time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updatedAt"`
}

// EventDetail is an event joined with its organizer's display identity.
type EventDetail struct {
	Event
	OrganizerName         string `db:"organizer_name" json:"organizerName"`
	OrganizerOrganization string `db:"organizer_organization" json:"organizerOrganization,omitempty"`
}

// EventRequest is the payload for creating or updating an event.
type EventRequest struct {
	Name         string   `json:"name" validate:"required"`
	Description  string   `json:"description"`
	EventTypes   []string `json:"eventTypes" validate:"required,min=1"`
	Date         string   `json:"date" validate:"required"`
	Time         string   `json:"time"`
	LocationType string   `json:"locationType" validate:"required,oneof=virtual in-person"`
	Location     string   `json:"location" validate:"required"`
	Price        float64  `json:"price" validate:"gte=0"`
	TotalTickets int      `json:"totalTickets" validate:"required,gt=0"`
	MaxAttendees int      `json:"maxAttendees"`
}

// EventListFilter drives the plain admin/organizer event listings.
type EventListFilter struct {
	OrganizerID string
	Reported    *bool
	Search      string
	Page        int
	PageSize    int
}
