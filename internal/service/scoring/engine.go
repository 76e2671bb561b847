// Package scoring computes lead score snapshots from demographic,
// firmographic, behavioral, and engagement signals plus a simulated model
// prediction, and appends them to the immutable snapshot history.
package scoring

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/config"
	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/dto"
	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/entity"
)

// mlWeight is the fixed share of the simulated model prediction in the total.
const mlWeight = 0.1

// scoringModel identifies the ensemble recorded on every snapshot.
const scoringModel = "ml_ensemble"

// ProfileStore provides the joined lead view the calculators consume.
type ProfileStore interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*entity.LeadProfile, error)
}

// SnapshotStore persists and reads score snapshots.
type SnapshotStore interface {
	Insert(ctx context.Context, snapshot *entity.ScoreSnapshot) (*entity.ScoreSnapshot, error)
	History(ctx context.Context, leadID uuid.UUID, limit int) ([]entity.ScoreSnapshot, error)
}

// Engine orchestrates a scoring pass: load the profile, run the calculators,
// combine with configured weights, and append the snapshot.
type Engine struct {
	profiles  ProfileStore
	snapshots SnapshotStore
	cfg       config.ScoringConfig
}

// NewEngine wires a scoring engine.
func NewEngine(profiles ProfileStore, snapshots SnapshotStore, cfg config.ScoringConfig) *Engine {
	return &Engine{profiles: profiles, snapshots: snapshots, cfg: cfg}
}

// CalculateAndSaveScore scores the lead and appends a new snapshot. The
// returned snapshot carries the persisted id and timestamp.
func (e *Engine) CalculateAndSaveScore(ctx context.Context, leadID uuid.UUID) (*entity.ScoreSnapshot, error) {
	profile, err := e.profiles.GetProfile(ctx, leadID)
	if err != nil {
		return nil, err
	}

	breakdown := map[string]float64{}

	demographic := demographicScore(profile, breakdown)
	firmographic := firmographicScore(profile, breakdown)
	behavioral := behavioralScore(profile, breakdown)
	engagement := engagementScore(profile, breakdown)
	prediction := mlScore(demographic, firmographic, behavioral, engagement)

	weights := e.cfg.Weights
	total := round2(
		demographic*weights.Demographic +
			firmographic*weights.Firmographic +
			behavioral*weights.Behavioral +
			engagement*weights.Engagement +
			prediction*mlWeight,
	)

	snapshot := &entity.ScoreSnapshot{
		LeadID:            leadID,
		ContactID:         profile.ContactID,
		OrganizationID:    profile.OrganizationID,
		TotalScore:        total,
		DemographicScore:  demographic,
		FirmographicScore: firmographic,
		BehavioralScore:   behavioral,
		EngagementScore:   engagement,
		MLScore:           prediction,
		ScoringModel:      scoringModel,
		ModelVersion:      e.cfg.ModelVersion,
		FeatureWeights: map[string]float64{
			"engagement":   weights.Engagement,
			"demographic":  weights.Demographic,
			"firmographic": weights.Firmographic,
			"behavioral":   weights.Behavioral,
		},
		Breakdown: breakdown,
	}

	return e.snapshots.Insert(ctx, snapshot)
}

// ScoreCategory buckets a total score into hot, warm, or cold. Thresholds are
// inclusive on the lower bound.
func (e *Engine) ScoreCategory(score float64) string {
	switch {
	case score >= e.cfg.Thresholds.Hot:
		return "hot"
	case score >= e.cfg.Thresholds.Warm:
		return "warm"
	default:
		return "cold"
	}
}

// History returns past snapshots for a lead, newest first.
func (e *Engine) History(ctx context.Context, leadID uuid.UUID, limit int) ([]entity.ScoreSnapshot, error) {
	return e.snapshots.History(ctx, leadID, limit)
}

// BulkRescore recalculates a batch of leads sequentially. A failing lead
// yields an error item without aborting the rest of the batch.
func (e *Engine) BulkRescore(ctx context.Context, leadIDs []string) []dto.BulkRescoreItem {
	results := make([]dto.BulkRescoreItem, 0, len(leadIDs))

	for _, raw := range leadIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			results = append(results, dto.BulkRescoreItem{
				LeadID: raw,
				Error:  fmt.Sprintf("invalid lead id: %v", err),
			})
			continue
		}

		snapshot, err := e.CalculateAndSaveScore(ctx, id)
		if err != nil {
			results = append(results, dto.BulkRescoreItem{LeadID: raw, Error: err.Error()})
			continue
		}

		results = append(results, dto.BulkRescoreItem{
			LeadID:  raw,
			Score:   snapshot.TotalScore,
			Success: true,
		})
	}

	return results
}
