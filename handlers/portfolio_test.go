// ABOUTME: Tests for portfolio MCP tool handlers
// ABOUTME: Validates summary and weekly focus against a seeded pipeline
package handlers

import (
	"context"
	"testing"

	"github.com/harperreed/dealsense/models"
)

func TestGetPortfolioSummaryTool(t *testing.T) {
	orch := setupTestOrchestrator(t)
	oppHandler := NewOpportunityHandlers(orch)
	handler := NewPortfolioHandlers(orch)
	ctx := context.Background()

	for _, name := range []string{"Deal One", "Deal Two"} {
		if _, _, err := oppHandler.CreateOpportunity(ctx, nil, CreateOpportunityInput{
			Name:         name,
			Counterparty: "Acme Corp",
			Value:        10000000,
		}); err != nil {
			t.Fatalf("CreateOpportunity failed: %v", err)
		}
	}

	_, summary, err := handler.GetPortfolioSummary(ctx, nil, PortfolioSummaryInput{})
	if err != nil {
		t.Fatalf("GetPortfolioSummary failed: %v", err)
	}

	if summary.OpportunityCount != 2 {
		t.Errorf("Expected 2 opportunities, got %d", summary.OpportunityCount)
	}
	if summary.Metrics.TotalValue != 20000000 {
		t.Errorf("Expected total value 20000000, got %d", summary.Metrics.TotalValue)
	}
	if summary.StageCounts[models.StageLead] != 2 {
		t.Errorf("Expected 2 leads, got %d", summary.StageCounts[models.StageLead])
	}
	if len(summary.Prioritized) != 2 {
		t.Errorf("Expected 2 prioritized items, got %d", len(summary.Prioritized))
	}
}

func TestGetWeeklyFocusTool(t *testing.T) {
	orch := setupTestOrchestrator(t)
	oppHandler := NewOpportunityHandlers(orch)
	handler := NewPortfolioHandlers(orch)
	ctx := context.Background()

	if _, _, err := oppHandler.CreateOpportunity(ctx, nil, CreateOpportunityInput{
		Name:         "Fresh Lead",
		Counterparty: "Acme Corp",
	}); err != nil {
		t.Fatalf("CreateOpportunity failed: %v", err)
	}

	_, focus, err := handler.GetWeeklyFocus(ctx, nil, WeeklyFocusInput{})
	if err != nil {
		t.Fatalf("GetWeeklyFocus failed: %v", err)
	}

	if focus.GeneratedAt.IsZero() {
		t.Error("GeneratedAt was not set")
	}
	if len(focus.Actions) == 0 {
		t.Fatal("Expected at least one focus action for a fresh lead")
	}
	for _, a := range focus.Actions {
		if a.Timing == "" {
			t.Errorf("Action %q missing timing", a.Action)
		}
	}
}
