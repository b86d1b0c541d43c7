// ABOUTME: Opportunity MCP tool handlers
// ABOUTME: Implements create/update/advance/view/list tools over the orchestrator
package handlers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/dealsense/db"
	"github.com/harperreed/dealsense/models"
	"github.com/harperreed/dealsense/pipeline"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type OpportunityHandlers struct {
	orch *pipeline.Orchestrator
}

func NewOpportunityHandlers(orch *pipeline.Orchestrator) *OpportunityHandlers {
	return &OpportunityHandlers{orch: orch}
}

type CreateOpportunityInput struct {
	Name         string `json:"name" jsonschema:"Opportunity name (required)"`
	Counterparty string `json:"counterparty" jsonschema:"Counterparty company name (required)"`
	Industry     string `json:"industry,omitempty" jsonschema:"Counterparty industry"`
	Value        int64  `json:"value,omitempty" jsonschema:"Deal value in cents"`
	Currency     string `json:"currency,omitempty" jsonschema:"Currency code (default USD)"`
}

type OpportunityOutput struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Counterparty string `json:"counterparty"`
	Industry     string `json:"industry,omitempty"`
	Stage        string `json:"stage"`
	Value        int64  `json:"value,omitempty"`
	Currency     string `json:"currency"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

func opportunityToOutput(o *models.Opportunity) OpportunityOutput {
	return OpportunityOutput{
		ID:           o.ID.String(),
		Name:         o.Name,
		Counterparty: o.Counterparty,
		Industry:     o.Industry,
		Stage:        o.Stage,
		Value:        o.Value,
		Currency:     o.Currency,
		CreatedAt:    o.CreatedAt.Format(timeFormat),
		UpdatedAt:    o.UpdatedAt.Format(timeFormat),
	}
}

func (h *OpportunityHandlers) CreateOpportunity(ctx context.Context, request *mcp.CallToolRequest, input CreateOpportunityInput) (*mcp.CallToolResult, OpportunityOutput, error) {
	if input.Name == "" {
		return nil, OpportunityOutput{}, fmt.Errorf("name is required")
	}
	if input.Counterparty == "" {
		return nil, OpportunityOutput{}, fmt.Errorf("counterparty is required")
	}

	opp := &models.Opportunity{
		Name:         input.Name,
		Counterparty: input.Counterparty,
		Industry:     input.Industry,
		Value:        input.Value,
		Currency:     input.Currency,
	}

	if err := h.orch.CreateOpportunity(ctx, opp); err != nil {
		return nil, OpportunityOutput{}, fmt.Errorf("failed to create opportunity: %w", err)
	}

	return nil, opportunityToOutput(opp), nil
}

type UpdateOpportunityInput struct {
	ID           string `json:"id" jsonschema:"Opportunity ID (required)"`
	Name         string `json:"name,omitempty" jsonschema:"Updated name"`
	Counterparty string `json:"counterparty,omitempty" jsonschema:"Updated counterparty name"`
	Industry     string `json:"industry,omitempty" jsonschema:"Updated industry"`
	Value        *int64 `json:"value,omitempty" jsonschema:"Updated value in cents"`
}

func (h *OpportunityHandlers) UpdateOpportunity(ctx context.Context, request *mcp.CallToolRequest, input UpdateOpportunityInput) (*mcp.CallToolResult, OpportunityOutput, error) {
	id, err := parseID(input.ID)
	if err != nil {
		return nil, OpportunityOutput{}, err
	}

	fields := pipeline.UpdateFields{Value: input.Value}
	if input.Name != "" {
		fields.Name = &input.Name
	}
	if input.Counterparty != "" {
		fields.Counterparty = &input.Counterparty
	}
	if input.Industry != "" {
		fields.Industry = &input.Industry
	}

	opp, err := h.orch.UpdateOpportunity(ctx, id, fields)
	if err != nil {
		return nil, OpportunityOutput{}, fmt.Errorf("failed to update opportunity: %w", err)
	}

	return nil, opportunityToOutput(opp), nil
}

type AdvanceStageInput struct {
	ID     string `json:"id" jsonschema:"Opportunity ID (required)"`
	Reason string `json:"reason,omitempty" jsonschema:"Why the stage is advancing"`
}

func (h *OpportunityHandlers) AdvanceStage(ctx context.Context, request *mcp.CallToolRequest, input AdvanceStageInput) (*mcp.CallToolResult, OpportunityOutput, error) {
	id, err := parseID(input.ID)
	if err != nil {
		return nil, OpportunityOutput{}, err
	}

	opp, err := h.orch.AdvanceStage(ctx, id, input.Reason)
	if err != nil {
		return nil, OpportunityOutput{}, fmt.Errorf("failed to advance stage: %w", err)
	}

	return nil, opportunityToOutput(opp), nil
}

type GetOpportunityViewInput struct {
	ID string `json:"id" jsonschema:"Opportunity ID (required)"`
}

func (h *OpportunityHandlers) GetOpportunityView(ctx context.Context, request *mcp.CallToolRequest, input GetOpportunityViewInput) (*mcp.CallToolResult, *pipeline.OpportunityView, error) {
	id, err := parseID(input.ID)
	if err != nil {
		return nil, nil, err
	}

	view, err := h.orch.GetOpportunityView(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load opportunity view: %w", err)
	}

	return nil, view, nil
}

type ListOpportunitiesInput struct {
	Stage        string `json:"stage,omitempty" jsonschema:"Filter by stage: lead, target, discovery, contracting, production"`
	Counterparty string `json:"counterparty,omitempty" jsonschema:"Filter by counterparty substring"`
	MinValue     int64  `json:"min_value,omitempty" jsonschema:"Minimum value in cents"`
	MaxValue     int64  `json:"max_value,omitempty" jsonschema:"Maximum value in cents"`
	Query        string `json:"query,omitempty" jsonschema:"Free-text search against name and counterparty"`
	Limit        int    `json:"limit,omitempty" jsonschema:"Max results (default 50)"`
}

type ListOpportunitiesOutput struct {
	Opportunities []OpportunityOutput `json:"opportunities"`
	Count         int                 `json:"count"`
}

func (h *OpportunityHandlers) ListOpportunities(ctx context.Context, request *mcp.CallToolRequest, input ListOpportunitiesInput) (*mcp.CallToolResult, ListOpportunitiesOutput, error) {
	if input.Stage != "" && !models.IsValidStage(input.Stage) {
		return nil, ListOpportunitiesOutput{}, fmt.Errorf("invalid stage: %s (valid: lead, target, discovery, contracting, production)", input.Stage)
	}

	opps, err := h.orch.ListOpportunities(ctx, db.OpportunityFilter{
		Stage:        input.Stage,
		Counterparty: input.Counterparty,
		MinValue:     input.MinValue,
		MaxValue:     input.MaxValue,
		Query:        input.Query,
		Limit:        input.Limit,
	})
	if err != nil {
		return nil, ListOpportunitiesOutput{}, fmt.Errorf("failed to list opportunities: %w", err)
	}

	out := ListOpportunitiesOutput{Count: len(opps)}
	for i := range opps {
		out.Opportunities = append(out.Opportunities, opportunityToOutput(&opps[i]))
	}

	return nil, out, nil
}

const timeFormat = "2006-01-02T15:04:05Z07:00"

func parseID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, fmt.Errorf("id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id: %w", err)
	}
	return id, nil
}
