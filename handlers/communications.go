// ABOUTME: Communication MCP tool handlers, the ingestion surface
// ABOUTME: Implements add_communication and process_communication tools
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/dealsense/models"
	"github.com/harperreed/dealsense/pipeline"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type CommunicationHandlers struct {
	orch *pipeline.Orchestrator
}

func NewCommunicationHandlers(orch *pipeline.Orchestrator) *CommunicationHandlers {
	return &CommunicationHandlers{orch: orch}
}

type AddCommunicationInput struct {
	OpportunityID string   `json:"opportunity_id" jsonschema:"Opportunity ID (required)"`
	Type          string   `json:"type" jsonschema:"Type: meeting, call, email, message"`
	Subject       string   `json:"subject,omitempty" jsonschema:"Subject line"`
	Content       string   `json:"content" jsonschema:"Full communication content (required)"`
	Participants  []string `json:"participants,omitempty" jsonschema:"Participant names"`
	Timestamp     string   `json:"timestamp,omitempty" jsonschema:"When it happened, ISO 8601 (default now)"`
}

type CommunicationOutput struct {
	ID            string   `json:"id"`
	OpportunityID string   `json:"opportunity_id"`
	Type          string   `json:"type"`
	Subject       string   `json:"subject,omitempty"`
	Participants  []string `json:"participants,omitempty"`
	Timestamp     string   `json:"timestamp"`
	Processed     bool     `json:"processed"`
}

func (h *CommunicationHandlers) AddCommunication(ctx context.Context, request *mcp.CallToolRequest, input AddCommunicationInput) (*mcp.CallToolResult, CommunicationOutput, error) {
	oppID, err := parseID(input.OpportunityID)
	if err != nil {
		return nil, CommunicationOutput{}, err
	}
	if !models.IsValidCommType(input.Type) {
		return nil, CommunicationOutput{}, fmt.Errorf("invalid type: %s (valid: meeting, call, email, message)", input.Type)
	}
	if input.Content == "" {
		return nil, CommunicationOutput{}, fmt.Errorf("content is required")
	}

	c := &models.Communication{
		OpportunityID: oppID,
		Type:          input.Type,
		Subject:       input.Subject,
		Content:       input.Content,
		Participants:  input.Participants,
	}

	if input.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, input.Timestamp)
		if err != nil {
			return nil, CommunicationOutput{}, fmt.Errorf("invalid timestamp format (use ISO 8601/RFC3339): %w", err)
		}
		c.Timestamp = ts
	}

	if err := h.orch.AddCommunication(ctx, c); err != nil {
		return nil, CommunicationOutput{}, fmt.Errorf("failed to add communication: %w", err)
	}

	return nil, CommunicationOutput{
		ID:            c.ID,
		OpportunityID: c.OpportunityID.String(),
		Type:          c.Type,
		Subject:       c.Subject,
		Participants:  c.Participants,
		Timestamp:     c.Timestamp.Format(timeFormat),
		Processed:     c.Processed,
	}, nil
}

type ProcessCommunicationInput struct {
	OpportunityID   string   `json:"opportunity_id" jsonschema:"Opportunity ID (required)"`
	CommunicationID string   `json:"communication_id" jsonschema:"Communication ID (required)"`
	Insights        []string `json:"insights" jsonschema:"Pre-extracted insight strings to fold into intelligence"`
}

type ProcessCommunicationOutput struct {
	OpportunityID   string `json:"opportunity_id"`
	CommunicationID string `json:"communication_id"`
	InsightCount    int    `json:"insight_count"`
}

func (h *CommunicationHandlers) ProcessCommunication(ctx context.Context, request *mcp.CallToolRequest, input ProcessCommunicationInput) (*mcp.CallToolResult, ProcessCommunicationOutput, error) {
	oppID, err := parseID(input.OpportunityID)
	if err != nil {
		return nil, ProcessCommunicationOutput{}, err
	}
	if input.CommunicationID == "" {
		return nil, ProcessCommunicationOutput{}, fmt.Errorf("communication_id is required")
	}

	if err := h.orch.ProcessCommunication(ctx, oppID, input.CommunicationID, input.Insights); err != nil {
		return nil, ProcessCommunicationOutput{}, fmt.Errorf("failed to process communication: %w", err)
	}

	return nil, ProcessCommunicationOutput{
		OpportunityID:   input.OpportunityID,
		CommunicationID: input.CommunicationID,
		InsightCount:    len(input.Insights),
	}, nil
}
