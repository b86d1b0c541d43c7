// ABOUTME: Intelligence aggregator that routes extracted insight strings into categories
// ABOUTME: Deterministic keyword classification; upstream extraction is out of scope
package intel

import (
	"log"
	"strings"
	"time"

	"github.com/harperreed/dealsense/models"
)

// Insight categories matched by the fixed vocabulary.
const (
	CategoryVolumeCapacity     = "volume_capacity"
	CategorySecurityCompliance = "security_compliance"
	CategoryBudget             = "budget"
	CategoryTimelineUrgency    = "timeline_urgency"
	CategoryExecutive          = "executive_stakeholder"
	CategoryIntegration        = "integration_technical"
	CategoryCompetitive        = "competitive"
	CategoryUseCase            = "use_case"
)

// vocabulary maps categories to the keywords that select them. First match
// wins in the order listed by categoryOrder. This is intentionally a dumb
// categorizer: it routes pre-extracted strings into structured buckets and
// never re-derives meaning from raw text.
var vocabulary = map[string][]string{
	CategoryVolumeCapacity:     {"volume", "capacity", "scale", "throughput", "backlog", "can't keep up", "overwhelmed"},
	CategorySecurityCompliance: {"security", "compliance", "soc 2", "soc2", "hipaa", "gdpr", "audit", "data residency", "pii"},
	CategoryBudget:             {"budget", "funding", "procurement", "price", "pricing", "cost", "spend"},
	CategoryTimelineUrgency:    {"timeline", "deadline", "urgent", "immediately", "this quarter", "this month", "asap", "by end of"},
	CategoryExecutive:          {"ceo", "cto", "cfo", "coo", "cio", "vp ", "vice president", "board", "executive", "c-suite", "mandate"},
	CategoryIntegration:        {"integration", "integrate", "api", "sso", "on-prem", "infrastructure", "deploy", "migration", "data pipeline"},
	CategoryCompetitive:        {"competitor", "competing", "vendor", "alternative", "evaluating", "rfp", "differentiat"},
	CategoryUseCase:            {"use case", "pilot", "workflow", "automate", "proof of concept", "poc"},
}

// categoryOrder fixes match precedence so classification is deterministic.
var categoryOrder = []string{
	CategoryExecutive,
	CategoryBudget,
	CategoryTimelineUrgency,
	CategorySecurityCompliance,
	CategoryVolumeCapacity,
	CategoryIntegration,
	CategoryCompetitive,
	CategoryUseCase,
}

// Classify returns the category for an insight string, or "" when nothing in
// the vocabulary matches.
func Classify(insight string) string {
	lower := strings.ToLower(insight)
	for _, category := range categoryOrder {
		for _, keyword := range vocabulary[category] {
			if strings.Contains(lower, keyword) {
				return category
			}
		}
	}
	return ""
}

// Apply folds the insight strings into the intelligence record, attaching
// provenance (source communication id, extraction timestamp) to every item.
// Unmatched strings are logged and dropped, never stored. The version stamp
// is bumped once when anything was folded. Returns the number of insights
// folded.
func Apply(intel *models.Intelligence, insights []string, sourceID string, now time.Time) int {
	folded := 0
	for _, insight := range insights {
		insight = strings.TrimSpace(insight)
		if insight == "" {
			continue
		}

		category := Classify(insight)
		if category == "" {
			log.Printf("intel: dropping unclassified insight from %s: %q", sourceID, insight)
			continue
		}

		fold(intel, category, insight, sourceID, now)
		folded++
	}

	if folded > 0 {
		intel.Version++
	}
	return folded
}

func fold(intel *models.Intelligence, category, insight, sourceID string, now time.Time) {
	signal := models.Signal{Text: insight, Source: sourceID, ExtractedAt: now}
	lower := strings.ToLower(insight)

	switch category {
	case CategoryVolumeCapacity, CategorySecurityCompliance:
		intel.PainPoints.Items = append(intel.PainPoints.Items, models.PainPoint{
			Category:    category,
			Description: insight,
			Severity:    severityOf(lower),
			Source:      sourceID,
			ExtractedAt: now,
		})
		intel.PainPoints.UpdatedAt = now

	case CategoryBudget:
		if containsAny(lower, "approved", "confirmed", "allocated", "signed off") {
			intel.BudgetTimeline.BudgetConfirmed = true
		}
		intel.BudgetTimeline.Signals = append(intel.BudgetTimeline.Signals, signal)
		intel.BudgetTimeline.UpdatedAt = now

	case CategoryTimelineUrgency:
		intel.BudgetTimeline.Signals = append(intel.BudgetTimeline.Signals, signal)
		intel.BudgetTimeline.UpdatedAt = now
		intel.Maturity.TimelineUrgency = urgencyOf(lower, intel.Maturity.TimelineUrgency)
		intel.Maturity.Signals = append(intel.Maturity.Signals, signal)
		intel.Maturity.UpdatedAt = now

	case CategoryExecutive:
		intel.StakeholderIntel.Mentions = append(intel.StakeholderIntel.Mentions, models.StakeholderMention{
			Name:        insight,
			Role:        "executive",
			Source:      sourceID,
			ExtractedAt: now,
		})
		intel.StakeholderIntel.UpdatedAt = now
		intel.Maturity.Signals = append(intel.Maturity.Signals, signal)
		intel.Maturity.UpdatedAt = now

	case CategoryIntegration:
		intel.TechRequirements.Items = append(intel.TechRequirements.Items, models.TechRequirement{
			Category:    category,
			Requirement: insight,
			Priority:    severityOf(lower),
			Source:      sourceID,
			ExtractedAt: now,
		})
		intel.TechRequirements.UpdatedAt = now

	case CategoryCompetitive:
		if containsAny(lower, "failed", "failure", "didn't work", "abandoned", "churned") {
			intel.Competitive.PriorVendorFailures = append(intel.Competitive.PriorVendorFailures, insight)
		} else if strings.Contains(lower, "differentiat") || containsAny(lower, "advantage", "unique") {
			intel.Competitive.Differentiators = append(intel.Competitive.Differentiators, insight)
		} else {
			intel.Competitive.Competitors = append(intel.Competitive.Competitors, insight)
		}
		intel.Competitive.Signals = append(intel.Competitive.Signals, signal)
		intel.Competitive.UpdatedAt = now

	case CategoryUseCase:
		intel.UseCase.Signals = append(intel.UseCase.Signals, signal)
		intel.UseCase.Clarity = clarityAfterSignal(intel.UseCase.Clarity, len(intel.UseCase.Signals))
		intel.UseCase.UpdatedAt = now
	}
}

func severityOf(lower string) string {
	if containsAny(lower, "critical", "urgent", "blocker", "severe", "major") {
		return models.SeverityHigh
	}
	if containsAny(lower, "minor", "small", "nice to have") {
		return models.SeverityLow
	}
	return models.SeverityMedium
}

// urgencyOf only ever tightens the recorded urgency.
func urgencyOf(lower, current string) string {
	next := models.UrgencyThisYear
	if containsAny(lower, "immediately", "asap", "urgent", "this month") {
		next = models.UrgencyImmediate
	} else if containsAny(lower, "this quarter", "next month", "weeks", "deadline") {
		next = models.UrgencyNearTerm
	}
	if urgencyRank(next) < urgencyRank(current) {
		return next
	}
	return current
}

func urgencyRank(urgency string) int {
	switch urgency {
	case models.UrgencyImmediate:
		return 0
	case models.UrgencyNearTerm:
		return 1
	case models.UrgencyThisYear:
		return 2
	}
	return 3
}

// clarityAfterSignal moves use-case clarity one tier per accumulated signal:
// one signal means they are exploring, two emerging, three or more clear.
func clarityAfterSignal(current string, signalCount int) string {
	switch {
	case signalCount >= 3:
		return models.ClarityClear
	case signalCount == 2:
		return models.ClarityEmerging
	case signalCount == 1:
		return models.ClarityExploring
	}
	return current
}

func containsAny(s string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
