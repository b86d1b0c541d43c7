// ABOUTME: Pure scoring engine deriving Scores from opportunity state
// ABOUTME: No side effects, no I/O; absence of signal yields the floor, never a null
package scoring

import (
	"time"

	"github.com/harperreed/dealsense/models"
)

// AI-readiness component weights. Documented, tunable constants summing to 1.0.
const (
	WeightExecutiveMandate    = 0.30
	WeightTechnicalCapability = 0.25
	WeightUseCaseClarity      = 0.25
	WeightBudgetTimeline      = 0.20
)

// Deal-confidence factor weights, summing to 1.0.
const (
	WeightChampion            = 0.25
	WeightBudgetConfirmed     = 0.20
	WeightTechnicalFit        = 0.15
	WeightEngagement          = 0.15
	WeightCompetitivePosition = 0.10
	WeightDecisionClarity     = 0.15
)

// Tunable coefficients for the component formulas. These are business
// parameters, not physical constants.
const (
	execMandateFloor    = 10.0
	execMandatePerExec  = 24.0
	execMandateMaxExecs = 3
	execMandateBudget   = 20.0

	techCapabilityBase      = 70.0
	techPenaltyHighPriority = 15.0
	techPenaltyOther        = 5.0
	techBonusStrongInternal = 30.0
	techBonusSomeInternal   = 15.0

	useCaseSecondaryBonus = 5.0

	budgetTimelineFloor     = 10.0
	budgetConfirmedBonus    = 50.0
	budgetSignalBonus       = 8.0
	budgetSignalBonusMax    = 16.0
	timelineStalePenalty    = 10.0
	timelineStaleAfter      = 30 * 24 * time.Hour
	urgencyImmediateBonus   = 24.0
	urgencyNearTermBonus    = 16.0
	urgencyThisYearBonus    = 8.0

	confidenceBudgetFloor     = 10.0
	confidenceBudgetPerSignal = 15.0
	confidenceBudgetConfirmed = 95.0

	engagementPerStakeholder = 20.0
	engagementStakeholderCap = 60.0
	recencyWithinWeekBonus   = 40.0
	recencyWithinTwoWeeks    = 25.0
	recencyWithinMonth       = 10.0

	differentiatorBonus = 10.0
)

// Input is everything the engine needs. LastInteraction is the timestamp of
// the most recent communication (zero when none exist); Now anchors recency
// and staleness so identical inputs always produce identical output.
type Input struct {
	Opportunity     *models.Opportunity
	Intelligence    *models.Intelligence
	Stakeholders    []models.Stakeholder
	LastInteraction time.Time
	Now             time.Time
}

// Compute derives the full Scores record. Output is always fully populated
// and carries the intelligence version it was computed from.
func Compute(in Input) *models.Scores {
	opp := in.Opportunity
	intel := in.Intelligence

	breakdown := models.AIReadinessBreakdown{
		ExecutiveMandate:    executiveMandate(intel),
		TechnicalCapability: technicalCapability(intel),
		UseCaseClarity:      useCaseClarity(intel),
		BudgetTimeline:      budgetTimeline(opp, intel, in.Now),
	}

	championTier := championStrength(in.Stakeholders)
	threatTier := competitiveThreat(intel)

	confidence := models.ConfidenceBreakdown{
		ChampionStrength:      championFactor(championTier),
		BudgetConfirmed:       budgetConfirmedFactor(intel),
		TechnicalFit:          breakdown.TechnicalCapability,
		StakeholderEngagement: engagement(in.Stakeholders, in.LastInteraction, in.Now),
		CompetitivePosition:   competitivePosition(threatTier, intel),
		DecisionClarity:       decisionClarity(intel),
	}

	return &models.Scores{
		OpportunityID:        opp.ID,
		AIReadiness:          round1(WeightExecutiveMandate*breakdown.ExecutiveMandate + WeightTechnicalCapability*breakdown.TechnicalCapability + WeightUseCaseClarity*breakdown.UseCaseClarity + WeightBudgetTimeline*breakdown.BudgetTimeline),
		AIReadinessBreakdown: breakdown,

		ChampionStrength:        championTier,
		UseCaseClarityTier:      clarityTier(intel),
		DecisionTimelineTier:    timelineTier(intel),
		BudgetRangeTier:         budgetRangeTier(intel),
		PrimaryPainPoint:        primaryPainPoint(intel),
		TechnicalComplexityTier: technicalComplexity(intel),
		CompetitiveThreatTier:   threatTier,

		DealConfidence:          round1(WeightChampion*confidence.ChampionStrength + WeightBudgetConfirmed*confidence.BudgetConfirmed + WeightTechnicalFit*confidence.TechnicalFit + WeightEngagement*confidence.StakeholderEngagement + WeightCompetitivePosition*confidence.CompetitivePosition + WeightDecisionClarity*confidence.DecisionClarity),
		DealConfidenceBreakdown: confidence,

		IntelVersion: intel.Version,
		ComputedAt:   in.Now,
	}
}

// executiveMandate rises with each executive stakeholder signal and with a
// confirmed budget.
func executiveMandate(intel *models.Intelligence) float64 {
	execs := 0
	for _, m := range intel.StakeholderIntel.Mentions {
		if m.Role == "executive" {
			execs++
		}
	}
	if execs > execMandateMaxExecs {
		execs = execMandateMaxExecs
	}

	score := execMandateFloor + float64(execs)*execMandatePerExec
	if intel.BudgetTimeline.BudgetConfirmed {
		score += execMandateBudget
	}
	return clamp(score)
}

// technicalCapability falls with unresolved high-priority requirements and
// rises with recorded internal capability.
func technicalCapability(intel *models.Intelligence) float64 {
	score := techCapabilityBase
	for _, req := range intel.TechRequirements.Items {
		if req.Priority == models.SeverityHigh {
			score -= techPenaltyHighPriority
		} else {
			score -= techPenaltyOther
		}
	}
	switch intel.Maturity.InternalCapability {
	case "strong":
		score += techBonusStrongInternal
	case "moderate":
		score += techBonusSomeInternal
	}
	return clamp(score)
}

// useCaseClarity maps the clarity tag to a numeric band.
func useCaseClarity(intel *models.Intelligence) float64 {
	var score float64
	switch intel.UseCase.Clarity {
	case models.ClarityClear:
		score = 95
	case models.ClarityEmerging:
		score = 65
	case models.ClarityExploring:
		score = 35
	default:
		score = 10
	}
	score += float64(len(intel.UseCase.SecondaryUseCases)) * useCaseSecondaryBonus
	return clamp(score)
}

// budgetTimeline rises with budget confirmation and timeline urgency, and
// falls when urgency has stayed unknown for a long time.
func budgetTimeline(opp *models.Opportunity, intel *models.Intelligence, now time.Time) float64 {
	score := budgetTimelineFloor
	if intel.BudgetTimeline.BudgetConfirmed {
		score += budgetConfirmedBonus
	}

	signalBonus := float64(len(intel.BudgetTimeline.Signals)) * budgetSignalBonus
	if signalBonus > budgetSignalBonusMax {
		signalBonus = budgetSignalBonusMax
	}
	score += signalBonus

	switch intel.Maturity.TimelineUrgency {
	case models.UrgencyImmediate:
		score += urgencyImmediateBonus
	case models.UrgencyNearTerm:
		score += urgencyNearTermBonus
	case models.UrgencyThisYear:
		score += urgencyThisYearBonus
	default:
		if now.Sub(opp.CreatedAt) > timelineStaleAfter {
			score -= timelineStalePenalty
		}
	}
	return clamp(score)
}

// championStrength derives a tier from the count and sentiment of champions
// and decision-makers.
func championStrength(stakeholders []models.Stakeholder) string {
	var positiveChampions, champions, decisionMakers, negativeChampions int
	for _, s := range stakeholders {
		switch s.Role {
		case models.RoleChampion:
			champions++
			switch s.Sentiment {
			case models.SentimentPositive:
				positiveChampions++
			case models.SentimentNegative:
				negativeChampions++
			}
		case models.RoleDecisionMaker:
			decisionMakers++
		}
	}

	switch {
	case positiveChampions >= 2, positiveChampions >= 1 && decisionMakers >= 1:
		return models.ChampionStrong
	case champions > negativeChampions:
		return models.ChampionModerate
	case champions > 0 || decisionMakers > 0:
		return models.ChampionWeak
	}
	return models.ChampionNone
}

func championFactor(tier string) float64 {
	switch tier {
	case models.ChampionStrong:
		return 90
	case models.ChampionModerate:
		return 65
	case models.ChampionWeak:
		return 35
	}
	return 10
}

func budgetConfirmedFactor(intel *models.Intelligence) float64 {
	if intel.BudgetTimeline.BudgetConfirmed {
		return confidenceBudgetConfirmed
	}
	signals := len(intel.BudgetTimeline.Signals)
	if signals > 3 {
		signals = 3
	}
	return confidenceBudgetFloor + float64(signals)*confidenceBudgetPerSignal
}

// engagement combines distinct stakeholder count with recency of the last
// interaction.
func engagement(stakeholders []models.Stakeholder, lastInteraction, now time.Time) float64 {
	score := float64(len(stakeholders)) * engagementPerStakeholder
	if score > engagementStakeholderCap {
		score = engagementStakeholderCap
	}

	if !lastInteraction.IsZero() {
		since := now.Sub(lastInteraction)
		switch {
		case since <= 7*24*time.Hour:
			score += recencyWithinWeekBonus
		case since <= 14*24*time.Hour:
			score += recencyWithinTwoWeeks
		case since <= 30*24*time.Hour:
			score += recencyWithinMonth
		}
	}
	return clamp(score)
}

// competitivePosition is the inverse of the threat tier, nudged up when
// differentiators are on record.
func competitivePosition(threatTier string, intel *models.Intelligence) float64 {
	var score float64
	switch threatTier {
	case models.TierNone:
		score = 90
	case models.TierLow:
		score = 70
	case models.TierMedium:
		score = 45
	default:
		score = 20
	}
	if len(intel.Competitive.Differentiators) > 0 {
		score += differentiatorBonus
	}
	return clamp(score)
}

func decisionClarity(intel *models.Intelligence) float64 {
	switch intel.Maturity.TimelineUrgency {
	case models.UrgencyImmediate:
		return 90
	case models.UrgencyNearTerm:
		return 70
	case models.UrgencyThisYear:
		return 50
	}
	return 15
}

func clarityTier(intel *models.Intelligence) string {
	if intel.UseCase.Clarity == "" {
		return models.ClarityUnknown
	}
	return intel.UseCase.Clarity
}

func timelineTier(intel *models.Intelligence) string {
	if intel.Maturity.TimelineUrgency == "" {
		return models.UrgencyUnknown
	}
	return intel.Maturity.TimelineUrgency
}

func budgetRangeTier(intel *models.Intelligence) string {
	switch {
	case intel.BudgetTimeline.BudgetConfirmed:
		return models.BudgetConfirmedTier
	case len(intel.BudgetTimeline.Signals) >= 2:
		return models.BudgetLikelyTier
	case len(intel.BudgetTimeline.Signals) == 1:
		return models.BudgetExploringTier
	}
	return models.BudgetUnknownTier
}

// primaryPainPoint is the highest-severity pain point's category, defaulting
// to "other" when none are recorded.
func primaryPainPoint(intel *models.Intelligence) string {
	best := ""
	bestRank := -1
	for _, p := range intel.PainPoints.Items {
		rank := severityRank(p.Severity)
		if rank > bestRank {
			bestRank = rank
			best = p.Category
		}
	}
	if best == "" {
		return "other"
	}
	return best
}

func severityRank(severity string) int {
	switch severity {
	case models.SeverityHigh:
		return 2
	case models.SeverityMedium:
		return 1
	}
	return 0
}

func technicalComplexity(intel *models.Intelligence) string {
	high := 0
	for _, req := range intel.TechRequirements.Items {
		if req.Priority == models.SeverityHigh {
			high++
		}
	}
	total := len(intel.TechRequirements.Items)

	switch {
	case high >= 2:
		return models.TierHigh
	case high >= 1 || total >= 3:
		return models.TierMedium
	case total >= 1:
		return models.TierLow
	}
	return models.TierNone
}

func competitiveThreat(intel *models.Intelligence) string {
	competitors := len(intel.Competitive.Competitors)
	failures := len(intel.Competitive.PriorVendorFailures)

	switch {
	case failures > 0 || competitors >= 3:
		return models.TierHigh
	case competitors == 2:
		return models.TierMedium
	case competitors == 1:
		return models.TierLow
	}
	return models.TierNone
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// round1 keeps scores to one decimal place so recomputed output is stable.
func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
