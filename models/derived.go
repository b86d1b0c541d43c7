// ABOUTME: Derived artifact models: Scores, Recommendations, and the portfolio index entry
// ABOUTME: Both artifacts are fully recomputable and overwritten whole on every recomputation
package models

import (
	"time"

	"github.com/google/uuid"
)

// Scores is the multi-dimensional confidence readout for one opportunity.
// It is derived entirely from Opportunity+Intelligence+Stakeholders and
// never hand-edited. IntelVersion records the Intelligence version the
// scores were computed from.
type Scores struct {
	OpportunityID uuid.UUID `json:"opportunity_id"`

	AIReadiness          float64              `json:"ai_readiness"`
	AIReadinessBreakdown AIReadinessBreakdown `json:"ai_readiness_breakdown"`

	ChampionStrength        string `json:"champion_strength"`
	UseCaseClarityTier      string `json:"use_case_clarity_tier"`
	DecisionTimelineTier    string `json:"decision_timeline_tier"`
	BudgetRangeTier         string `json:"budget_range_tier"`
	PrimaryPainPoint        string `json:"primary_pain_point"`
	TechnicalComplexityTier string `json:"technical_complexity_tier"`
	CompetitiveThreatTier   string `json:"competitive_threat_tier"`

	DealConfidence          float64             `json:"deal_confidence"`
	DealConfidenceBreakdown ConfidenceBreakdown `json:"deal_confidence_breakdown"`

	IntelVersion int64     `json:"intel_version"`
	ComputedAt   time.Time `json:"computed_at"`
}

type AIReadinessBreakdown struct {
	ExecutiveMandate    float64 `json:"executive_mandate"`
	TechnicalCapability float64 `json:"technical_capability"`
	UseCaseClarity      float64 `json:"use_case_clarity"`
	BudgetTimeline      float64 `json:"budget_timeline"`
}

type ConfidenceBreakdown struct {
	ChampionStrength      float64 `json:"champion_strength"`
	BudgetConfirmed       float64 `json:"budget_confirmed"`
	TechnicalFit          float64 `json:"technical_fit"`
	StakeholderEngagement float64 `json:"stakeholder_engagement"`
	CompetitivePosition   float64 `json:"competitive_position"`
	DecisionClarity       float64 `json:"decision_clarity"`
}

// Champion strength tiers.
const (
	ChampionStrong   = "strong"
	ChampionModerate = "moderate"
	ChampionWeak     = "weak"
	ChampionNone     = "none"
)

// Generic tier values used by several categorical readouts.
const (
	TierHigh    = "high"
	TierMedium  = "medium"
	TierLow     = "low"
	TierNone    = "none"
	TierUnknown = "unknown"
)

// Budget range tiers.
const (
	BudgetConfirmedTier = "confirmed"
	BudgetLikelyTier    = "likely"
	BudgetExploringTier = "exploring"
	BudgetUnknownTier   = "unknown"
)

// Action timing hints. Structured so downstream consumers never parse
// free text to classify urgency.
const (
	TimingImmediate = "immediate"
	TimingThisWeek  = "this_week"
	TimingSoon      = "soon"
)

// TimingRank orders timing hints, most urgent first.
func TimingRank(timing string) int {
	switch timing {
	case TimingImmediate:
		return 0
	case TimingThisWeek:
		return 1
	case TimingSoon:
		return 2
	}
	return 3
}

// Risk kind tags.
const (
	RiskGoingCold         = "going_cold"
	RiskUnaddressedPain   = "unaddressed_pain"
	RiskUnknownTimeline   = "unknown_timeline"
	RiskCompetitiveThreat = "competitive_threat"
)

type Action struct {
	RuleID    string  `json:"rule_id"`
	Action    string  `json:"action"`
	Reasoning string  `json:"reasoning"`
	Timing    string  `json:"timing"`
	Score     float64 `json:"score"`
}

type Risk struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Recommendations is the ranked next-best-action list plus risk flags for
// one opportunity. Same lifecycle as Scores.
type Recommendations struct {
	OpportunityID uuid.UUID `json:"opportunity_id"`
	Actions       []Action  `json:"actions"`
	Risks         []Risk    `json:"risks"`
	IntelVersion  int64     `json:"intel_version"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// IndexEntry is the denormalized projection kept for portfolio-wide listing
// without loading every opportunity's full record tree. It is a cache of the
// canonical records, refreshed on every write, never a second source of truth.
type IndexEntry struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Counterparty string    `json:"counterparty"`
	Stage        string    `json:"stage"`
	Value        int64     `json:"value"`
	Confidence   float64   `json:"confidence"`
	UpdatedAt    time.Time `json:"updated_at"`
}
