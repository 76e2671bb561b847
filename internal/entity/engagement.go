package entity

import (
	"time"

	"github.com/google/uuid"
)

// EngagementEvent is one interaction with a lead, fed in by webhooks.
type EngagementEvent struct {
	ID              uuid.UUID `json:"id"`
	LeadID          uuid.UUID `json:"lead_id"`
	EngagementType  string    `json:"engagement_type"`
	Channel         string    `json:"channel"`
	Subject         *string   `json:"subject,omitempty"`
	Content         *string   `json:"content,omitempty"`
	DurationSeconds int       `json:"duration_seconds"`
	OccurredAt      time.Time `json:"occurred_at"`
	CreatedAt       time.Time `json:"created_at"`
}

// WebhookEvent is the audit record written for every inbound webhook payload.
type WebhookEvent struct {
	ID        uuid.UUID `json:"id"`
	EventType string    `json:"event_type"`
	Source    string    `json:"source"`
	Payload   string    `json:"payload"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
