// ABOUTME: Tests for insight classification and intelligence folding
// ABOUTME: Covers category precedence, provenance, version bumps, and drop behavior
package intel

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/dealsense/models"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		insight  string
		category string
	}{
		{"The team can't keep up with invoice volume", CategoryVolumeCapacity},
		{"They need SOC 2 compliance before any rollout", CategorySecurityCompliance},
		{"Budget approved for Q3", CategoryBudget},
		{"Hard deadline by end of the quarter", CategoryTimelineUrgency},
		{"The CTO is sponsoring the initiative", CategoryExecutive},
		{"Must integrate with their existing API gateway", CategoryIntegration},
		{"They are evaluating two other vendors", CategoryCompetitive},
		{"Wants a pilot for the claims workflow", CategoryUseCase},
		{"The weather was nice", ""},
	}

	for _, c := range cases {
		if got := Classify(c.insight); got != c.category {
			t.Errorf("Classify(%q) = %q, want %q", c.insight, got, c.category)
		}
	}
}

func TestClassifyPrecedence(t *testing.T) {
	// Executive keywords outrank budget keywords when both match
	got := Classify("CFO signed off on the budget")
	if got != CategoryExecutive {
		t.Errorf("Expected executive to win precedence, got %q", got)
	}
}

func TestApplyFoldsAndBumpsVersion(t *testing.T) {
	intel := models.NewIntelligence(uuid.New())
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	insights := []string{
		"Processing backlog has overwhelmed the ops team",
		"Budget approved by finance",
		"CTO wants this live immediately",
	}

	folded := Apply(intel, insights, "comm-1", now)
	if folded != 3 {
		t.Errorf("Expected 3 folded, got %d", folded)
	}
	if intel.Version != 1 {
		t.Errorf("Expected a single version bump, got %d", intel.Version)
	}

	if len(intel.PainPoints.Items) != 1 {
		t.Fatalf("Expected 1 pain point, got %d", len(intel.PainPoints.Items))
	}
	pp := intel.PainPoints.Items[0]
	if pp.Source != "comm-1" || !pp.ExtractedAt.Equal(now) {
		t.Error("Pain point missing provenance")
	}

	if !intel.BudgetTimeline.BudgetConfirmed {
		t.Error("Budget confirmation keyword should set BudgetConfirmed")
	}
	if len(intel.StakeholderIntel.Mentions) != 1 {
		t.Errorf("Expected 1 stakeholder mention, got %d", len(intel.StakeholderIntel.Mentions))
	}
}

func TestApplyDropsUnmatched(t *testing.T) {
	intel := models.NewIntelligence(uuid.New())

	folded := Apply(intel, []string{"nothing relevant here", "   "}, "comm-2", time.Now().UTC())
	if folded != 0 {
		t.Errorf("Expected 0 folded, got %d", folded)
	}
	if intel.Version != 0 {
		t.Errorf("Version must not bump when nothing folds, got %d", intel.Version)
	}
}

func TestUrgencyOnlyTightens(t *testing.T) {
	intel := models.NewIntelligence(uuid.New())
	now := time.Now().UTC()

	Apply(intel, []string{"deadline is this quarter"}, "c1", now)
	if intel.Maturity.TimelineUrgency != models.UrgencyNearTerm {
		t.Errorf("Expected near_term, got %s", intel.Maturity.TimelineUrgency)
	}

	Apply(intel, []string{"they need this immediately"}, "c2", now)
	if intel.Maturity.TimelineUrgency != models.UrgencyImmediate {
		t.Errorf("Expected immediate, got %s", intel.Maturity.TimelineUrgency)
	}

	// A looser signal never loosens the recorded urgency
	Apply(intel, []string{"general timeline discussion"}, "c3", now)
	if intel.Maturity.TimelineUrgency != models.UrgencyImmediate {
		t.Errorf("Urgency loosened to %s", intel.Maturity.TimelineUrgency)
	}
}

func TestUseCaseClarityProgression(t *testing.T) {
	intel := models.NewIntelligence(uuid.New())
	now := time.Now().UTC()

	Apply(intel, []string{"interested in a pilot"}, "c1", now)
	if intel.UseCase.Clarity != models.ClarityExploring {
		t.Errorf("Expected exploring after 1 signal, got %s", intel.UseCase.Clarity)
	}

	Apply(intel, []string{"pilot would cover the claims workflow"}, "c2", now)
	if intel.UseCase.Clarity != models.ClarityEmerging {
		t.Errorf("Expected emerging after 2 signals, got %s", intel.UseCase.Clarity)
	}

	Apply(intel, []string{"proof of concept scoped to intake automation"}, "c3", now)
	if intel.UseCase.Clarity != models.ClarityClear {
		t.Errorf("Expected clear after 3 signals, got %s", intel.UseCase.Clarity)
	}
}

func TestCompetitiveRouting(t *testing.T) {
	intel := models.NewIntelligence(uuid.New())
	now := time.Now().UTC()

	Apply(intel, []string{
		"their previous vendor failed to deliver",
		"our on-device processing is a key differentiator",
		"also evaluating a competitor from the coast",
	}, "c1", now)

	if len(intel.Competitive.PriorVendorFailures) != 1 {
		t.Errorf("Expected 1 prior failure, got %d", len(intel.Competitive.PriorVendorFailures))
	}
	if len(intel.Competitive.Differentiators) != 1 {
		t.Errorf("Expected 1 differentiator, got %d", len(intel.Competitive.Differentiators))
	}
	if len(intel.Competitive.Competitors) != 1 {
		t.Errorf("Expected 1 competitor, got %d", len(intel.Competitive.Competitors))
	}
	if len(intel.Competitive.Signals) != 3 {
		t.Errorf("Expected 3 competitive signals, got %d", len(intel.Competitive.Signals))
	}
}

func TestSeverityOf(t *testing.T) {
	intel := models.NewIntelligence(uuid.New())
	now := time.Now().UTC()

	Apply(intel, []string{
		"critical capacity blocker in production",
		"minor throughput concern",
		"backlog keeps growing",
	}, "c1", now)

	if len(intel.PainPoints.Items) != 3 {
		t.Fatalf("Expected 3 pain points, got %d", len(intel.PainPoints.Items))
	}
	severities := []string{
		intel.PainPoints.Items[0].Severity,
		intel.PainPoints.Items[1].Severity,
		intel.PainPoints.Items[2].Severity,
	}
	want := []string{models.SeverityHigh, models.SeverityLow, models.SeverityMedium}
	for i := range want {
		if severities[i] != want[i] {
			t.Errorf("Pain point %d severity = %s, want %s", i, severities[i], want[i])
		}
	}
}
