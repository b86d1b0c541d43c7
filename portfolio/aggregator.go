// ABOUTME: Portfolio-level rollups: pipeline metrics, prioritized list, weekly focus
// ABOUTME: Pure computation over per-opportunity snapshots loaded with bounded concurrency
package portfolio

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/dealsense/models"
	"golang.org/x/sync/errgroup"
)

// StageProbability is the fixed likelihood-of-close weight per stage, used
// for weighted pipeline value.
var StageProbability = map[string]float64{
	models.StageLead:        0.10,
	models.StageTarget:      0.20,
	models.StageDiscovery:   0.35,
	models.StageContracting: 0.70,
	models.StageProduction:  0.90,
}

// stageWeight feeds the priority formula. Later stages rank higher.
var stageWeight = map[string]float64{
	models.StageLead:        20,
	models.StageTarget:      40,
	models.StageDiscovery:   60,
	models.StageContracting: 80,
	models.StageProduction:  100,
}

// Priority formula weights; each component is normalized to 0-100 first.
const (
	priorityValueWeight      = 0.30
	priorityConfidenceWeight = 0.40
	priorityStageWeight      = 0.30
)

// Priority tiers.
const (
	highTierAt   = 70.0
	mediumTierAt = 40.0
)

const (
	highConfidenceAt = 75.0
	atRiskBelow      = 40.0
	atRiskFlagCount  = 2
)

// Weekly focus: only actions at or above this score qualify, and the digest
// is capped.
const (
	focusActionScoreAt = 75.0
	focusDigestSize    = 5
)

// loadConcurrency bounds the snapshot fan-out so the store is not
// overwhelmed.
const loadConcurrency = 8

// Snapshot is one opportunity's slice of the portfolio.
type Snapshot struct {
	Entry           models.IndexEntry
	Scores          *models.Scores
	Recommendations *models.Recommendations
}

// Loader supplies snapshots. The db-backed implementation lives in pipeline.
type Loader interface {
	ListIndex(ctx context.Context) ([]models.IndexEntry, error)
	LoadSnapshot(ctx context.Context, entry models.IndexEntry) (Snapshot, error)
}

// LoadSnapshots fans out independent per-opportunity loads in parallel and
// joins before aggregation. A failure on one opportunity does not abort the
// whole load; the opportunity is excluded with a logged warning.
func LoadSnapshots(ctx context.Context, loader Loader) ([]Snapshot, error) {
	entries, err := loader.ListIndex(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*Snapshot, len(entries))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)

	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			snap, err := loader.LoadSnapshot(gCtx, entry)
			if err != nil {
				log.Printf("portfolio: excluding opportunity %s from aggregation: %v", entry.ID, err)
				return nil
			}
			results[i] = &snap
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	snapshots := make([]Snapshot, 0, len(results))
	for _, r := range results {
		if r != nil {
			snapshots = append(snapshots, *r)
		}
	}
	return snapshots, nil
}

type StageStats struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
	Value int64  `json:"value"`
}

type Metrics struct {
	TotalValue          int64                 `json:"total_value"`
	WeightedValue       float64               `json:"weighted_value"`
	AverageConfidence   float64               `json:"average_confidence"`
	HighConfidenceCount int                   `json:"high_confidence_count"`
	AtRiskCount         int                   `json:"at_risk_count"`
	Stages              map[string]StageStats `json:"stages"`
}

// ComputeMetrics rolls the snapshots into pipeline metrics.
func ComputeMetrics(snapshots []Snapshot) Metrics {
	m := Metrics{Stages: make(map[string]StageStats)}

	var confidenceSum float64
	for _, s := range snapshots {
		m.TotalValue += s.Entry.Value
		m.WeightedValue += float64(s.Entry.Value) * StageProbability[s.Entry.Stage]
		confidenceSum += s.Entry.Confidence

		if s.Entry.Confidence >= highConfidenceAt {
			m.HighConfidenceCount++
		}
		riskCount := 0
		if s.Recommendations != nil {
			riskCount = len(s.Recommendations.Risks)
		}
		if riskCount >= atRiskFlagCount || s.Entry.Confidence < atRiskBelow {
			m.AtRiskCount++
		}

		stats := m.Stages[s.Entry.Stage]
		stats.Stage = s.Entry.Stage
		stats.Count++
		stats.Value += s.Entry.Value
		m.Stages[s.Entry.Stage] = stats
	}

	if len(snapshots) > 0 {
		m.AverageConfidence = confidenceSum / float64(len(snapshots))
	}
	return m
}

type PriorityItem struct {
	models.IndexEntry
	PriorityScore float64 `json:"priority_score"`
	Tier          string  `json:"tier"`
}

// Prioritize scores each opportunity by normalized value, confidence, and
// stage weight. Value is normalized against the portfolio maximum, never
// used as a raw dollar figure.
func Prioritize(snapshots []Snapshot) []PriorityItem {
	var maxValue int64
	for _, s := range snapshots {
		if s.Entry.Value > maxValue {
			maxValue = s.Entry.Value
		}
	}

	items := make([]PriorityItem, 0, len(snapshots))
	for _, s := range snapshots {
		valueScore := 0.0
		if maxValue > 0 {
			valueScore = float64(s.Entry.Value) / float64(maxValue) * 100
		}

		score := priorityValueWeight*valueScore +
			priorityConfidenceWeight*s.Entry.Confidence +
			priorityStageWeight*stageWeight[s.Entry.Stage]

		items = append(items, PriorityItem{
			IndexEntry:    s.Entry,
			PriorityScore: score,
			Tier:          priorityTier(score),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Tier != items[j].Tier {
			return tierRank(items[i].Tier) < tierRank(items[j].Tier)
		}
		return items[i].Confidence > items[j].Confidence
	})
	return items
}

func priorityTier(score float64) string {
	switch {
	case score >= highTierAt:
		return models.TierHigh
	case score >= mediumTierAt:
		return models.TierMedium
	}
	return models.TierLow
}

func tierRank(tier string) int {
	switch tier {
	case models.TierHigh:
		return 0
	case models.TierMedium:
		return 1
	}
	return 2
}

type FocusAction struct {
	OpportunityID   uuid.UUID `json:"opportunity_id"`
	OpportunityName string    `json:"opportunity_name"`
	Action          string    `json:"action"`
	Reasoning       string    `json:"reasoning"`
	Timing          string    `json:"timing"`
	Score           float64   `json:"score"`
}

type WeeklyFocus struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Actions     []FocusAction `json:"actions"`
}

// ComputeWeeklyFocus collects each opportunity's top-ranked action when it
// qualifies, forces an immediate re-engage entry for going-cold risks, and
// returns the most urgent entries up to the digest size. Urgency comes from
// the action's structured timing field, never from parsing action text.
func ComputeWeeklyFocus(snapshots []Snapshot, now time.Time) WeeklyFocus {
	var actions []FocusAction

	for _, s := range snapshots {
		if s.Recommendations == nil {
			continue
		}

		if len(s.Recommendations.Actions) > 0 {
			top := s.Recommendations.Actions[0]
			if top.Score >= focusActionScoreAt {
				actions = append(actions, FocusAction{
					OpportunityID:   s.Entry.ID,
					OpportunityName: s.Entry.Name,
					Action:          top.Action,
					Reasoning:       top.Reasoning,
					Timing:          top.Timing,
					Score:           top.Score,
				})
			}
		}

		for _, risk := range s.Recommendations.Risks {
			if risk.Kind == models.RiskGoingCold {
				actions = append(actions, FocusAction{
					OpportunityID:   s.Entry.ID,
					OpportunityName: s.Entry.Name,
					Action:          "Re-engage before the opportunity goes cold",
					Reasoning:       risk.Message,
					Timing:          models.TimingImmediate,
					Score:           100,
				})
				break
			}
		}
	}

	sort.SliceStable(actions, func(i, j int) bool {
		if actions[i].Timing != actions[j].Timing {
			return models.TimingRank(actions[i].Timing) < models.TimingRank(actions[j].Timing)
		}
		return actions[i].Score > actions[j].Score
	})

	if len(actions) > focusDigestSize {
		actions = actions[:focusDigestSize]
	}

	return WeeklyFocus{GeneratedAt: now, Actions: actions}
}
