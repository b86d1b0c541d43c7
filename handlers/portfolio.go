// ABOUTME: Portfolio MCP tool handlers
// ABOUTME: Implements get_portfolio_summary and get_weekly_focus tools
package handlers

import (
	"context"
	"fmt"

	"github.com/harperreed/dealsense/pipeline"
	"github.com/harperreed/dealsense/portfolio"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type PortfolioHandlers struct {
	orch *pipeline.Orchestrator
}

func NewPortfolioHandlers(orch *pipeline.Orchestrator) *PortfolioHandlers {
	return &PortfolioHandlers{orch: orch}
}

type PortfolioSummaryInput struct{}

func (h *PortfolioHandlers) GetPortfolioSummary(ctx context.Context, request *mcp.CallToolRequest, input PortfolioSummaryInput) (*mcp.CallToolResult, *pipeline.PortfolioSummary, error) {
	summary, err := h.orch.PortfolioSummary(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compute portfolio summary: %w", err)
	}
	return nil, summary, nil
}

type WeeklyFocusInput struct{}

func (h *PortfolioHandlers) GetWeeklyFocus(ctx context.Context, request *mcp.CallToolRequest, input WeeklyFocusInput) (*mcp.CallToolResult, portfolio.WeeklyFocus, error) {
	focus, err := h.orch.WeeklyFocus(ctx)
	if err != nil {
		return nil, portfolio.WeeklyFocus{}, fmt.Errorf("failed to compute weekly focus: %w", err)
	}
	return nil, focus, nil
}
