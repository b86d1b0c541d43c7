// ABOUTME: Tests for opportunity MCP tool handlers
// ABOUTME: Validates tool input validation, output shaping, and error handling
package handlers

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/harperreed/dealsense/db"
	"github.com/harperreed/dealsense/models"
	"github.com/harperreed/dealsense/pipeline"
)

func setupTestOrchestrator(t *testing.T) *pipeline.Orchestrator {
	t.Helper()
	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenDatabase failed: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return pipeline.New(database)
}

func TestCreateOpportunityTool(t *testing.T) {
	handler := NewOpportunityHandlers(setupTestOrchestrator(t))
	ctx := context.Background()

	_, out, err := handler.CreateOpportunity(ctx, nil, CreateOpportunityInput{
		Name:         "Enterprise Rollout",
		Counterparty: "Acme Corp",
		Industry:     "logistics",
		Value:        50000000,
	})
	if err != nil {
		t.Fatalf("CreateOpportunity failed: %v", err)
	}

	if out.ID == "" {
		t.Error("ID was not set")
	}
	if out.Stage != models.StageLead {
		t.Errorf("Expected default stage lead, got %s", out.Stage)
	}
	if out.Currency != "USD" {
		t.Errorf("Expected default currency USD, got %s", out.Currency)
	}
	if out.CreatedAt == "" {
		t.Error("CreatedAt was not formatted")
	}
}

func TestCreateOpportunityToolValidation(t *testing.T) {
	handler := NewOpportunityHandlers(setupTestOrchestrator(t))
	ctx := context.Background()

	if _, _, err := handler.CreateOpportunity(ctx, nil, CreateOpportunityInput{Counterparty: "Acme"}); err == nil {
		t.Error("Expected error for missing name")
	}
	if _, _, err := handler.CreateOpportunity(ctx, nil, CreateOpportunityInput{Name: "Deal"}); err == nil {
		t.Error("Expected error for missing counterparty")
	}
}

func TestUpdateOpportunityTool(t *testing.T) {
	handler := NewOpportunityHandlers(setupTestOrchestrator(t))
	ctx := context.Background()

	_, created, err := handler.CreateOpportunity(ctx, nil, CreateOpportunityInput{
		Name:         "Original",
		Counterparty: "Acme Corp",
	})
	if err != nil {
		t.Fatalf("CreateOpportunity failed: %v", err)
	}

	value := int64(7500000)
	_, updated, err := handler.UpdateOpportunity(ctx, nil, UpdateOpportunityInput{
		ID:    created.ID,
		Name:  "Renamed",
		Value: &value,
	})
	if err != nil {
		t.Fatalf("UpdateOpportunity failed: %v", err)
	}

	if updated.Name != "Renamed" || updated.Value != value {
		t.Errorf("Update not applied: %s / %d", updated.Name, updated.Value)
	}
	if updated.Counterparty != "Acme Corp" {
		t.Errorf("Unset field changed: %s", updated.Counterparty)
	}
}

func TestAdvanceStageTool(t *testing.T) {
	handler := NewOpportunityHandlers(setupTestOrchestrator(t))
	ctx := context.Background()

	_, created, err := handler.CreateOpportunity(ctx, nil, CreateOpportunityInput{
		Name:         "Advancing",
		Counterparty: "Acme Corp",
	})
	if err != nil {
		t.Fatalf("CreateOpportunity failed: %v", err)
	}

	_, advanced, err := handler.AdvanceStage(ctx, nil, AdvanceStageInput{ID: created.ID, Reason: "qualified"})
	if err != nil {
		t.Fatalf("AdvanceStage failed: %v", err)
	}
	if advanced.Stage != models.StageTarget {
		t.Errorf("Expected target, got %s", advanced.Stage)
	}

	if _, _, err := handler.AdvanceStage(ctx, nil, AdvanceStageInput{ID: "not-a-uuid"}); err == nil {
		t.Error("Expected error for malformed id")
	}
}

func TestGetOpportunityViewTool(t *testing.T) {
	handler := NewOpportunityHandlers(setupTestOrchestrator(t))
	ctx := context.Background()

	_, created, err := handler.CreateOpportunity(ctx, nil, CreateOpportunityInput{
		Name:         "Viewable",
		Counterparty: "Acme Corp",
	})
	if err != nil {
		t.Fatalf("CreateOpportunity failed: %v", err)
	}

	_, view, err := handler.GetOpportunityView(ctx, nil, GetOpportunityViewInput{ID: created.ID})
	if err != nil {
		t.Fatalf("GetOpportunityView failed: %v", err)
	}
	if view.Opportunity.Name != "Viewable" {
		t.Errorf("Unexpected opportunity in view: %s", view.Opportunity.Name)
	}
	if view.Scores == nil || view.Recommendations == nil {
		t.Error("View missing derived artifacts")
	}
}

func TestListOpportunitiesTool(t *testing.T) {
	handler := NewOpportunityHandlers(setupTestOrchestrator(t))
	ctx := context.Background()

	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		if _, _, err := handler.CreateOpportunity(ctx, nil, CreateOpportunityInput{
			Name:         name,
			Counterparty: "Acme Corp",
		}); err != nil {
			t.Fatalf("CreateOpportunity failed: %v", err)
		}
	}

	_, out, err := handler.ListOpportunities(ctx, nil, ListOpportunitiesInput{})
	if err != nil {
		t.Fatalf("ListOpportunities failed: %v", err)
	}
	if out.Count != 3 {
		t.Errorf("Expected 3 opportunities, got %d", out.Count)
	}

	if _, _, err := handler.ListOpportunities(ctx, nil, ListOpportunitiesInput{Stage: "negotiation"}); err == nil {
		t.Error("Expected error for invalid stage filter")
	}
}
