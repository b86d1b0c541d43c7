// ABOUTME: Pure recommendation engine producing ranked next-best-actions
// ABOUTME: Fixed rule table keyed on stage and weakest score dimension
package recommend

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/harperreed/dealsense/models"
)

// ErrStaleScores means the scores passed in were computed from an older
// intelligence version than the one supplied. That is an orchestration bug,
// not a runtime condition to recover from.
var ErrStaleScores = errors.New("scores are stale relative to intelligence")

// How far below its healthy threshold a factor sits scales the action's
// urgency.
const urgencySlope = 0.5

// Timing cutoffs on the final action score.
const (
	timingImmediateAt = 85.0
	timingThisWeekAt  = 70.0
)

// Input carries everything the engine needs. LastInteraction and Now feed
// the risk checks; identical inputs always produce identical output.
type Input struct {
	Opportunity     *models.Opportunity
	Scores          *models.Scores
	Intelligence    *models.Intelligence
	Stakeholders    []models.Stakeholder
	LastInteraction time.Time
	Now             time.Time
}

type rule struct {
	id        string
	stages    []string // nil means any stage
	factor    func(*models.Scores) float64
	threshold float64
	base      float64
	action    string
	trigger   string // names the factor in the reasoning string
}

// ruleTable order is the fixed secondary priority for simultaneous triggers.
var ruleTable = []rule{
	{
		id:        "budget_confirmation",
		stages:    []string{models.StageContracting},
		factor:    func(s *models.Scores) float64 { return s.DealConfidenceBreakdown.BudgetConfirmed },
		threshold: 70,
		base:      85,
		action:    "Confirm budget and procurement path with the economic buyer",
		trigger:   "budget confirmation",
	},
	{
		id:        "champion_enablement",
		stages:    []string{models.StageDiscovery, models.StageContracting},
		factor:    func(s *models.Scores) float64 { return s.DealConfidenceBreakdown.ChampionStrength },
		threshold: 60,
		base:      80,
		action:    "Identify and enable an internal champion with a tailored business case",
		trigger:   "champion strength",
	},
	{
		id:        "executive_alignment",
		stages:    []string{models.StageTarget, models.StageDiscovery},
		factor:    func(s *models.Scores) float64 { return s.AIReadinessBreakdown.ExecutiveMandate },
		threshold: 50,
		base:      75,
		action:    "Secure an executive sponsor meeting to establish mandate",
		trigger:   "executive mandate",
	},
	{
		id:        "use_case_definition",
		stages:    []string{models.StageLead, models.StageTarget, models.StageDiscovery},
		factor:    func(s *models.Scores) float64 { return s.AIReadinessBreakdown.UseCaseClarity },
		threshold: 50,
		base:      72,
		action:    "Run a use-case scoping workshop to sharpen the primary use case",
		trigger:   "use-case clarity",
	},
	{
		id:        "technical_validation",
		stages:    []string{models.StageDiscovery, models.StageContracting},
		factor:    func(s *models.Scores) float64 { return s.DealConfidenceBreakdown.TechnicalFit },
		threshold: 55,
		base:      70,
		action:    "Schedule a technical deep-dive to resolve open requirements",
		trigger:   "technical fit",
	},
	{
		id:        "competitive_differentiation",
		factor:    func(s *models.Scores) float64 { return s.DealConfidenceBreakdown.CompetitivePosition },
		threshold: 45,
		base:      68,
		action:    "Present differentiation evidence against the competing alternatives",
		trigger:   "competitive position",
	},
	{
		id:        "budget_discovery",
		stages:    []string{models.StageLead, models.StageTarget, models.StageDiscovery},
		factor:    func(s *models.Scores) float64 { return s.DealConfidenceBreakdown.BudgetConfirmed },
		threshold: 40,
		base:      65,
		action:    "Probe budget ownership and funding timeline in the next conversation",
		trigger:   "budget signal",
	},
	{
		id:        "stakeholder_expansion",
		factor:    func(s *models.Scores) float64 { return s.DealConfidenceBreakdown.StakeholderEngagement },
		threshold: 40,
		base:      60,
		action:    "Map and engage additional stakeholders beyond the current contacts",
		trigger:   "stakeholder engagement",
	},
}

// Compute produces the ranked action list and independent risk flags. It
// refuses with ErrStaleScores when the scores' intelligence version does not
// match the intelligence supplied.
func Compute(in Input) (*models.Recommendations, error) {
	if in.Scores.IntelVersion != in.Intelligence.Version {
		return nil, fmt.Errorf("scores at intelligence version %d, intelligence at %d: %w",
			in.Scores.IntelVersion, in.Intelligence.Version, ErrStaleScores)
	}

	actions := rankActions(in.Opportunity.Stage, in.Scores)
	risks := deriveRisks(in)

	return &models.Recommendations{
		OpportunityID: in.Opportunity.ID,
		Actions:       actions,
		Risks:         risks,
		IntelVersion:  in.Intelligence.Version,
		GeneratedAt:   in.Now,
	}, nil
}

func rankActions(stage string, scores *models.Scores) []models.Action {
	type candidate struct {
		models.Action
		order int // table position, the fixed tiebreak
	}

	var candidates []candidate
	seen := map[string]bool{}

	for i, r := range ruleTable {
		if !stageMatches(r.stages, stage) {
			continue
		}
		factor := r.factor(scores)
		if factor >= r.threshold {
			continue
		}
		if seen[r.id] {
			continue
		}
		seen[r.id] = true

		// The further below its healthy threshold, the more urgent.
		score := r.base + (r.threshold-factor)*urgencySlope
		if score > 100 {
			score = 100
		}

		candidates = append(candidates, candidate{
			Action: models.Action{
				RuleID:    r.id,
				Action:    r.action,
				Reasoning: fmt.Sprintf("%s is at %.0f, below the healthy threshold of %.0f for the %s stage", r.trigger, factor, r.threshold, stage),
				Timing:    timingFor(score),
				Score:     score,
			},
			order: i,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].order < candidates[j].order
	})

	actions := make([]models.Action, len(candidates))
	for i, c := range candidates {
		actions[i] = c.Action
	}
	return actions
}

func stageMatches(stages []string, stage string) bool {
	if len(stages) == 0 {
		return true
	}
	for _, s := range stages {
		if s == stage {
			return true
		}
	}
	return false
}

func timingFor(score float64) string {
	switch {
	case score >= timingImmediateAt:
		return models.TimingImmediate
	case score >= timingThisWeekAt:
		return models.TimingThisWeek
	}
	return models.TimingSoon
}
