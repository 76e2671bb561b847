package entity

import (
	"time"

	"github.com/google/uuid"
)

// EnrichmentResult is the outcome of a single provider call. CreditsUsed is
// zero when the payload was served from cache.
type EnrichmentResult struct {
	Success     bool           `json:"success"`
	Provider    string         `json:"provider"`
	Data        map[string]any `json:"data,omitempty"`
	Error       string         `json:"error,omitempty"`
	CreditsUsed int            `json:"credits_used"`
}

// EnrichmentOutcome aggregates one orchestration pass across providers.
type EnrichmentOutcome struct {
	Enriched bool               `json:"enriched"`
	Provider string             `json:"provider,omitempty"`
	Data     map[string]any     `json:"data,omitempty"`
	Results  []EnrichmentResult `json:"results"`
}

// EnrichmentHistory records one orchestration call against a lead, regardless
// of how many providers were attempted.
type EnrichmentHistory struct {
	ID             uuid.UUID `json:"id"`
	LeadID         uuid.UUID `json:"lead_id"`
	Provider       string    `json:"provider"`
	EnrichmentType string    `json:"enrichment_type"`
	RequestPayload string    `json:"request_payload"`
	ResponseData   string    `json:"response_data"`
	Status         string    `json:"status"`
	ErrorMessage   *string   `json:"error_message,omitempty"`
	CreditsUsed    int       `json:"credits_used"`
	DurationMS     int64     `json:"enrichment_duration_ms"`
	CreatedAt      time.Time `json:"created_at"`
}
