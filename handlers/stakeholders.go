// ABOUTME: Stakeholder MCP tool handlers
// ABOUTME: Implements add_stakeholder and update_stakeholder tools
package handlers

import (
	"context"
	"fmt"

	"github.com/harperreed/dealsense/models"
	"github.com/harperreed/dealsense/pipeline"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type StakeholderHandlers struct {
	orch *pipeline.Orchestrator
}

func NewStakeholderHandlers(orch *pipeline.Orchestrator) *StakeholderHandlers {
	return &StakeholderHandlers{orch: orch}
}

type AddStakeholderInput struct {
	OpportunityID string `json:"opportunity_id" jsonschema:"Opportunity ID (required)"`
	Name          string `json:"name" jsonschema:"Stakeholder name (required)"`
	Title         string `json:"title,omitempty" jsonschema:"Job title"`
	Email         string `json:"email,omitempty" jsonschema:"Email address"`
	Role          string `json:"role" jsonschema:"Role: champion, decision_maker, evaluator, blocker, user"`
	Sentiment     string `json:"sentiment,omitempty" jsonschema:"Sentiment: positive, neutral, negative (default neutral)"`
}

type StakeholderOutput struct {
	ID            string   `json:"id"`
	OpportunityID string   `json:"opportunity_id"`
	Name          string   `json:"name"`
	Title         string   `json:"title,omitempty"`
	Email         string   `json:"email,omitempty"`
	Role          string   `json:"role"`
	Sentiment     string   `json:"sentiment"`
	KeyQuotes     []string `json:"key_quotes,omitempty"`
	Concerns      []string `json:"concerns,omitempty"`
}

func stakeholderToOutput(s *models.Stakeholder) StakeholderOutput {
	return StakeholderOutput{
		ID:            s.ID.String(),
		OpportunityID: s.OpportunityID.String(),
		Name:          s.Name,
		Title:         s.Title,
		Email:         s.Email,
		Role:          s.Role,
		Sentiment:     s.Sentiment,
		KeyQuotes:     s.KeyQuotes,
		Concerns:      s.Concerns,
	}
}

func (h *StakeholderHandlers) AddStakeholder(ctx context.Context, request *mcp.CallToolRequest, input AddStakeholderInput) (*mcp.CallToolResult, StakeholderOutput, error) {
	oppID, err := parseID(input.OpportunityID)
	if err != nil {
		return nil, StakeholderOutput{}, err
	}
	if input.Name == "" {
		return nil, StakeholderOutput{}, fmt.Errorf("name is required")
	}
	if !models.IsValidRole(input.Role) {
		return nil, StakeholderOutput{}, fmt.Errorf("invalid role: %s (valid: champion, decision_maker, evaluator, blocker, user)", input.Role)
	}
	if input.Sentiment != "" && !models.IsValidSentiment(input.Sentiment) {
		return nil, StakeholderOutput{}, fmt.Errorf("invalid sentiment: %s (valid: positive, neutral, negative)", input.Sentiment)
	}

	s := &models.Stakeholder{
		OpportunityID: oppID,
		Name:          input.Name,
		Title:         input.Title,
		Email:         input.Email,
		Role:          input.Role,
		Sentiment:     input.Sentiment,
	}

	if err := h.orch.AddStakeholder(ctx, s); err != nil {
		return nil, StakeholderOutput{}, fmt.Errorf("failed to add stakeholder: %w", err)
	}

	return nil, stakeholderToOutput(s), nil
}

type UpdateStakeholderInput struct {
	ID            string `json:"id" jsonschema:"Stakeholder ID (required)"`
	OpportunityID string `json:"opportunity_id" jsonschema:"Opportunity ID (required)"`
	Name          string `json:"name,omitempty" jsonschema:"Updated name"`
	Title         string `json:"title,omitempty" jsonschema:"Updated title"`
	Email         string `json:"email,omitempty" jsonschema:"Updated email"`
	Role          string `json:"role,omitempty" jsonschema:"Updated role"`
	Sentiment     string `json:"sentiment,omitempty" jsonschema:"Updated sentiment"`
	AddQuote      string `json:"add_quote,omitempty" jsonschema:"Key quote to append"`
	AddConcern    string `json:"add_concern,omitempty" jsonschema:"Concern to append"`
}

func (h *StakeholderHandlers) UpdateStakeholder(ctx context.Context, request *mcp.CallToolRequest, input UpdateStakeholderInput) (*mcp.CallToolResult, StakeholderOutput, error) {
	id, err := parseID(input.ID)
	if err != nil {
		return nil, StakeholderOutput{}, err
	}
	oppID, err := parseID(input.OpportunityID)
	if err != nil {
		return nil, StakeholderOutput{}, err
	}
	if input.Role != "" && !models.IsValidRole(input.Role) {
		return nil, StakeholderOutput{}, fmt.Errorf("invalid role: %s", input.Role)
	}
	if input.Sentiment != "" && !models.IsValidSentiment(input.Sentiment) {
		return nil, StakeholderOutput{}, fmt.Errorf("invalid sentiment: %s", input.Sentiment)
	}

	s, err := h.orch.UpdateStakeholder(ctx, oppID, id, pipeline.StakeholderUpdate{
		Name:       input.Name,
		Title:      input.Title,
		Email:      input.Email,
		Role:       input.Role,
		Sentiment:  input.Sentiment,
		AddQuote:   input.AddQuote,
		AddConcern: input.AddConcern,
	})
	if err != nil {
		return nil, StakeholderOutput{}, fmt.Errorf("failed to update stakeholder: %w", err)
	}

	return nil, stakeholderToOutput(s), nil
}
