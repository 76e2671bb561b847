package entity

import (
	"time"

	"github.com/google/uuid"
)

// ScoreSnapshot is one immutable, timestamped computation of a lead's score.
// Rows are insert-only; the "current" score for a lead is the snapshot with the
// greatest CalculatedAt. The single sanctioned mutation is the engagement-score
// bump applied by the engagement webhook, which targets exactly that row.
type ScoreSnapshot struct {
	ID                uuid.UUID          `json:"id"`
	LeadID            uuid.UUID          `json:"lead_id"`
	ContactID         *uuid.UUID         `json:"contact_id,omitempty"`
	OrganizationID    *uuid.UUID         `json:"organization_id,omitempty"`
	TotalScore        float64            `json:"total_score"`
	DemographicScore  float64            `json:"demographic_score"`
	FirmographicScore float64            `json:"firmographic_score"`
	BehavioralScore   float64            `json:"behavioral_score"`
	EngagementScore   float64            `json:"engagement_score"`
	MLScore           float64            `json:"ml_score"`
	ScoringModel      string             `json:"scoring_model"`
	ModelVersion      string             `json:"model_version"`
	FeatureWeights    map[string]float64 `json:"feature_weights"`
	Breakdown         map[string]float64 `json:"score_breakdown"`
	CalculatedAt      time.Time          `json:"calculated_at"`
}
