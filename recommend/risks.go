// ABOUTME: Risk flag derivation, independent of the ranked actions
// ABOUTME: Every risk carries a structured kind tag so consumers never parse free text
package recommend

import (
	"fmt"
	"time"

	"github.com/harperreed/dealsense/models"
)

// goingColdAfter is how long without a communication before an opportunity
// is flagged as going cold.
const goingColdAfter = 14 * 24 * time.Hour

// timelineRiskAfterDays maps each stage to how long the decision timeline
// may remain unknown before it becomes a risk. Later stages tolerate less.
var timelineRiskAfterDays = map[string]int{
	models.StageLead:        45,
	models.StageTarget:      30,
	models.StageDiscovery:   21,
	models.StageContracting: 10,
}

func deriveRisks(in Input) []models.Risk {
	var risks []models.Risk

	// Going cold: last interaction recency past the threshold. An
	// opportunity with no communications at all counts from creation.
	reference := in.LastInteraction
	if reference.IsZero() {
		reference = in.Opportunity.CreatedAt
	}
	if since := in.Now.Sub(reference); since > goingColdAfter {
		risks = append(risks, models.Risk{
			Kind:    models.RiskGoingCold,
			Message: fmt.Sprintf("no communication in %d days, opportunity is going cold", int(since.Hours()/24)),
		})
	}

	// Unaddressed high-severity pain points.
	for _, p := range in.Intelligence.PainPoints.Items {
		if p.Severity == models.SeverityHigh {
			risks = append(risks, models.Risk{
				Kind:    models.RiskUnaddressedPain,
				Message: fmt.Sprintf("high-severity %s pain point unaddressed: %s", p.Category, p.Description),
			})
			break
		}
	}

	// Decision timeline unknown past the stage-specific threshold.
	if in.Intelligence.Maturity.TimelineUrgency == models.UrgencyUnknown || in.Intelligence.Maturity.TimelineUrgency == "" {
		if days, ok := timelineRiskAfterDays[in.Opportunity.Stage]; ok {
			age := in.Now.Sub(in.Opportunity.CreatedAt)
			if age > time.Duration(days)*24*time.Hour {
				risks = append(risks, models.Risk{
					Kind:    models.RiskUnknownTimeline,
					Message: fmt.Sprintf("decision timeline still unknown after %d days at %s stage", int(age.Hours()/24), in.Opportunity.Stage),
				})
			}
		}
	}

	// High competitive threat with no differentiation on record.
	if in.Scores.CompetitiveThreatTier == models.TierHigh && len(in.Intelligence.Competitive.Differentiators) == 0 {
		risks = append(risks, models.Risk{
			Kind: models.RiskCompetitiveThreat,
			Message: fmt.Sprintf("competitive threat is high (%d competitors, %d prior vendor failures) with no differentiation recorded",
				len(in.Intelligence.Competitive.Competitors), len(in.Intelligence.Competitive.PriorVendorFailures)),
		})
	}

	return risks
}
