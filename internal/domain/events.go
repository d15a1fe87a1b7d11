package domain

import "time"

// EventType enumerates the outbound lifecycle events. They are published
// fire-and-forget after the primary state change commits.
type EventType string

const (
	EventDamageAssessed EventType = "DAMAGE_ASSESSED"
	EventDamageCharged  EventType = "DAMAGE_CHARGED"
	EventDamageDisputed EventType = "DAMAGE_DISPUTED"
	EventDamageResolved EventType = "DAMAGE_RESOLVED"
	EventPenaltyWaived  EventType = "PENALTY_WAIVED"
)

// Event is the plain tagged payload pushed onto the outbound queue.
// AmountCents carries the monetary figure relevant to the event: liability
// for assessments and charges, refund amount for resolutions, waived amount
// for waivers. Zero when no money moved.
type Event struct {
	Type          EventType `json:"type"`
	ReportID      int32     `json:"report_id,omitempty"`
	RentalID      int32     `json:"rental_id"`
	AmountCents   int64     `json:"amount_cents"`
	Currency      string    `json:"currency,omitempty"`
	CustomerName  string    `json:"customer_name,omitempty"`
	CustomerEmail string    `json:"customer_email,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}
