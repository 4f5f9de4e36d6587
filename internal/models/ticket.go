package models

import "time"

// Ticket records a user's registration for an event.
type Ticket struct {
	ID           string    `db:"id" json:"id"`
	EventID      string    `db:"event_id" json:"eventId"`
	UserID       string    `db:"user_id" json:"userId"`
	PurchaseDate time.Time `db:"purchase_date" json:"purchaseDate"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// TicketDetail joins a ticket with the event and organizer it refers to.
type TicketDetail struct {
	Ticket
	EventName             string    `db:"event_name" json:"eventName"`
	EventDate             time.Time `db:"event_date" json:"eventDate"`
	EventLocation         string    `db:"event_location" json:"eventLocation"`
	EventPrice            float64   `db:"event_price" json:"eventPrice"`
	OrganizerName         string    `db:"organizer_name" json:"organizerName"`
	OrganizerOrganization string    `db:"organizer_organization" json:"organizerOrganization,omitempty"`
	AttendeeName          string    `db:"attendee_name" json:"attendeeName"`
}
