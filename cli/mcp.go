// ABOUTME: MCP server subcommand
// ABOUTME: Starts the deal intelligence MCP server on stdio
package cli

import (
	"context"
	"log"

	"github.com/harperreed/dealsense/handlers"
	"github.com/harperreed/dealsense/pipeline"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// MCPCommand starts the MCP server on stdio
func MCPCommand(orch *pipeline.Orchestrator) error {
	log.Println("Starting deal intelligence MCP server...")

	opportunityHandlers := handlers.NewOpportunityHandlers(orch)
	stakeholderHandlers := handlers.NewStakeholderHandlers(orch)
	communicationHandlers := handlers.NewCommunicationHandlers(orch)
	portfolioHandlers := handlers.NewPortfolioHandlers(orch)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "dealsense",
		Version: "0.1.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_opportunity",
		Description: "Create a new sales opportunity with its empty intelligence record",
	}, opportunityHandlers.CreateOpportunity)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_opportunity",
		Description: "Update an opportunity's name, counterparty, industry, or value",
	}, opportunityHandlers.UpdateOpportunity)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "advance_stage",
		Description: "Advance an opportunity one pipeline stage forward",
	}, opportunityHandlers.AdvanceStage)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_opportunity_view",
		Description: "Load an opportunity with stakeholders, scores, recommendations, and recent communications",
	}, opportunityHandlers.GetOpportunityView)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_opportunities",
		Description: "List opportunities with optional stage, counterparty, value, and text filters",
	}, opportunityHandlers.ListOpportunities)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_stakeholder",
		Description: "Add a stakeholder to an opportunity and recompute its scores",
	}, stakeholderHandlers.AddStakeholder)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_stakeholder",
		Description: "Update a stakeholder's role, sentiment, quotes, or concerns",
	}, stakeholderHandlers.UpdateStakeholder)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_communication",
		Description: "Record a communication (meeting, call, email, message) for an opportunity",
	}, communicationHandlers.AddCommunication)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "process_communication",
		Description: "Fold extracted insight strings into intelligence and recompute scores and recommendations",
	}, communicationHandlers.ProcessCommunication)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_portfolio_summary",
		Description: "Compute pipeline metrics and the prioritized opportunity list",
	}, portfolioHandlers.GetPortfolioSummary)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_weekly_focus",
		Description: "Compute the weekly focus digest of the most urgent next-best-actions",
	}, portfolioHandlers.GetWeeklyFocus)

	ctx := context.Background()
	return server.Run(ctx, &mcp.StdioTransport{})
}
