// ABOUTME: Tests for communication MCP tool handlers
// ABOUTME: Validates ingestion inputs and the processing round trip
package handlers

import (
	"context"
	"testing"

	"github.com/harperreed/dealsense/models"
)

func TestAddCommunicationTool(t *testing.T) {
	orch := setupTestOrchestrator(t)
	oppHandler := NewOpportunityHandlers(orch)
	handler := NewCommunicationHandlers(orch)
	ctx := context.Background()

	_, opp, err := oppHandler.CreateOpportunity(ctx, nil, CreateOpportunityInput{
		Name:         "Comm Deal",
		Counterparty: "Acme Corp",
	})
	if err != nil {
		t.Fatalf("CreateOpportunity failed: %v", err)
	}

	_, out, err := handler.AddCommunication(ctx, nil, AddCommunicationInput{
		OpportunityID: opp.ID,
		Type:          models.CommMeeting,
		Subject:       "Kickoff",
		Content:       "Discussed scope",
		Timestamp:     "2026-06-15T10:00:00Z",
	})
	if err != nil {
		t.Fatalf("AddCommunication failed: %v", err)
	}

	if out.ID == "" {
		t.Error("Communication ID was not assigned")
	}
	if out.Processed {
		t.Error("New communication must start unprocessed")
	}
}

func TestAddCommunicationToolValidation(t *testing.T) {
	orch := setupTestOrchestrator(t)
	handler := NewCommunicationHandlers(orch)
	ctx := context.Background()

	cases := []struct {
		name  string
		input AddCommunicationInput
	}{
		{"missing id", AddCommunicationInput{Type: models.CommCall, Content: "x"}},
		{"bad type", AddCommunicationInput{OpportunityID: "c4a760a8-dbcf-4e14-9f39-645a8e6366cf", Type: "fax", Content: "x"}},
		{"missing content", AddCommunicationInput{OpportunityID: "c4a760a8-dbcf-4e14-9f39-645a8e6366cf", Type: models.CommCall}},
		{"bad timestamp", AddCommunicationInput{OpportunityID: "c4a760a8-dbcf-4e14-9f39-645a8e6366cf", Type: models.CommCall, Content: "x", Timestamp: "yesterday"}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, _, err := handler.AddCommunication(ctx, nil, c.input); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestProcessCommunicationTool(t *testing.T) {
	orch := setupTestOrchestrator(t)
	oppHandler := NewOpportunityHandlers(orch)
	handler := NewCommunicationHandlers(orch)
	ctx := context.Background()

	_, opp, err := oppHandler.CreateOpportunity(ctx, nil, CreateOpportunityInput{
		Name:         "Process Deal",
		Counterparty: "Acme Corp",
	})
	if err != nil {
		t.Fatalf("CreateOpportunity failed: %v", err)
	}

	_, comm, err := handler.AddCommunication(ctx, nil, AddCommunicationInput{
		OpportunityID: opp.ID,
		Type:          models.CommCall,
		Content:       "Budget call",
	})
	if err != nil {
		t.Fatalf("AddCommunication failed: %v", err)
	}

	_, out, err := handler.ProcessCommunication(ctx, nil, ProcessCommunicationInput{
		OpportunityID:   opp.ID,
		CommunicationID: comm.ID,
		Insights:        []string{"budget approved by finance", "urgent deadline this month"},
	})
	if err != nil {
		t.Fatalf("ProcessCommunication failed: %v", err)
	}
	if out.InsightCount != 2 {
		t.Errorf("Expected insight count 2, got %d", out.InsightCount)
	}

	// Double processing is rejected
	if _, _, err := handler.ProcessCommunication(ctx, nil, ProcessCommunicationInput{
		OpportunityID:   opp.ID,
		CommunicationID: comm.ID,
		Insights:        []string{"duplicate"},
	}); err == nil {
		t.Error("Expected error for double processing")
	}
}
