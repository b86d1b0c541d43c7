// ABOUTME: Opportunity CLI commands
// ABOUTME: Human-friendly commands for managing opportunities
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/harperreed/dealsense/db"
	"github.com/harperreed/dealsense/models"
	"github.com/harperreed/dealsense/pipeline"
)

// AddOpportunityCommand creates a new opportunity.
func AddOpportunityCommand(orch *pipeline.Orchestrator, args []string) error {
	fs := flag.NewFlagSet("add-opportunity", flag.ExitOnError)
	name := fs.String("name", "", "Opportunity name (required)")
	counterparty := fs.String("counterparty", "", "Counterparty company name (required)")
	industry := fs.String("industry", "", "Counterparty industry")
	value := fs.Int64("value", 0, "Deal value in cents")
	currency := fs.String("currency", "USD", "Currency code")
	_ = fs.Parse(args)

	if *name == "" {
		return fmt.Errorf("--name is required")
	}
	if *counterparty == "" {
		return fmt.Errorf("--counterparty is required")
	}

	opp := &models.Opportunity{
		Name:         *name,
		Counterparty: *counterparty,
		Industry:     *industry,
		Value:        *value,
		Currency:     *currency,
	}

	if err := orch.CreateOpportunity(context.Background(), opp); err != nil {
		return fmt.Errorf("failed to create opportunity: %w", err)
	}

	fmt.Printf("✓ Opportunity created: %s (ID: %s)\n", opp.Name, opp.ID)
	fmt.Printf("  Counterparty: %s\n", opp.Counterparty)
	fmt.Printf("  Stage: %s\n", opp.Stage)
	if opp.Value > 0 {
		fmt.Printf("  Value: $%.2f %s\n", float64(opp.Value)/100.0, opp.Currency)
	}

	return nil
}

// ListOpportunitiesCommand lists opportunities with optional filters.
func ListOpportunitiesCommand(orch *pipeline.Orchestrator, args []string) error {
	fs := flag.NewFlagSet("list-opportunities", flag.ExitOnError)
	stage := fs.String("stage", "", "Filter by stage (lead, target, discovery, contracting, production)")
	counterparty := fs.String("counterparty", "", "Filter by counterparty substring")
	query := fs.String("query", "", "Search by name or counterparty")
	minValue := fs.Int64("min-value", 0, "Minimum value in cents")
	maxValue := fs.Int64("max-value", 0, "Maximum value in cents")
	limit := fs.Int("limit", 50, "Maximum results")
	_ = fs.Parse(args)

	if *stage != "" && !models.IsValidStage(*stage) {
		return fmt.Errorf("invalid stage: %s", *stage)
	}

	opps, err := orch.ListOpportunities(context.Background(), db.OpportunityFilter{
		Stage:        *stage,
		Counterparty: *counterparty,
		Query:        *query,
		MinValue:     *minValue,
		MaxValue:     *maxValue,
		Limit:        *limit,
	})
	if err != nil {
		return fmt.Errorf("failed to list opportunities: %w", err)
	}

	if len(opps) == 0 {
		fmt.Println("No opportunities found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCOUNTERPARTY\tSTAGE\tVALUE")
	for _, o := range opps {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t$%.2f\n", o.ID, o.Name, o.Counterparty, o.Stage, float64(o.Value)/100.0)
	}
	w.Flush()

	fmt.Printf("\n%d opportunities\n", len(opps))
	return nil
}

// ShowOpportunityCommand prints the full view for one opportunity.
func ShowOpportunityCommand(orch *pipeline.Orchestrator, args []string) error {
	fs := flag.NewFlagSet("show-opportunity", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("opportunity ID is required")
	}
	id, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid opportunity ID: %w", err)
	}

	view, err := orch.GetOpportunityView(context.Background(), id)
	if err != nil {
		return fmt.Errorf("failed to load opportunity: %w", err)
	}

	o := view.Opportunity
	fmt.Printf("%s - %s [%s]\n", o.Name, o.Counterparty, o.Stage)
	if o.Value > 0 {
		fmt.Printf("Value: $%.2f %s\n", float64(o.Value)/100.0, o.Currency)
	}

	s := view.Scores
	fmt.Printf("\nScores (intelligence v%d):\n", s.IntelVersion)
	fmt.Printf("  Deal confidence: %.1f\n", s.DealConfidence)
	fmt.Printf("  AI readiness: %.1f\n", s.AIReadiness)
	fmt.Printf("  Champion strength: %s\n", s.ChampionStrength)
	fmt.Printf("  Competitive threat: %s\n", s.CompetitiveThreatTier)
	fmt.Printf("  Primary pain point: %s\n", s.PrimaryPainPoint)

	if len(view.Stakeholders) > 0 {
		fmt.Printf("\nStakeholders:\n")
		for _, st := range view.Stakeholders {
			fmt.Printf("  %s (%s, %s)\n", st.Name, st.Role, st.Sentiment)
		}
	}

	if len(view.Recommendations.Actions) > 0 {
		fmt.Printf("\nNext best actions:\n")
		for i, a := range view.Recommendations.Actions {
			fmt.Printf("  %d. [%s, %.0f] %s\n", i+1, a.Timing, a.Score, a.Action)
			fmt.Printf("     %s\n", a.Reasoning)
		}
	}

	if len(view.Recommendations.Risks) > 0 {
		fmt.Printf("\nRisks:\n")
		for _, r := range view.Recommendations.Risks {
			fmt.Printf("  [%s] %s\n", r.Kind, r.Message)
		}
	}

	if len(view.RecentCommunications) > 0 {
		fmt.Printf("\nRecent communications:\n")
		for _, c := range view.RecentCommunications {
			processed := " "
			if c.Processed {
				processed = "✓"
			}
			fmt.Printf("  %s [%s]%s %s\n", c.Timestamp.Format("2006-01-02"), c.Type, processed, c.Subject)
		}
	}

	return nil
}

// UpdateOpportunityCommand updates fields on an existing opportunity.
func UpdateOpportunityCommand(orch *pipeline.Orchestrator, args []string) error {
	fs := flag.NewFlagSet("update-opportunity", flag.ExitOnError)
	name := fs.String("name", "", "Updated name")
	counterparty := fs.String("counterparty", "", "Updated counterparty")
	industry := fs.String("industry", "", "Updated industry")
	value := fs.Int64("value", -1, "Updated value in cents")
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("opportunity ID is required (flags must come before the ID)")
	}
	id, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid opportunity ID: %w", err)
	}

	var fields pipeline.UpdateFields
	if *name != "" {
		fields.Name = name
	}
	if *counterparty != "" {
		fields.Counterparty = counterparty
	}
	if *industry != "" {
		fields.Industry = industry
	}
	if *value >= 0 {
		fields.Value = value
	}

	opp, err := orch.UpdateOpportunity(context.Background(), id, fields)
	if err != nil {
		return fmt.Errorf("failed to update opportunity: %w", err)
	}

	fmt.Printf("✓ Opportunity updated: %s\n", opp.Name)
	return nil
}

// AdvanceStageCommand moves an opportunity forward one stage.
func AdvanceStageCommand(orch *pipeline.Orchestrator, args []string) error {
	fs := flag.NewFlagSet("advance-stage", flag.ExitOnError)
	reason := fs.String("reason", "", "Why the stage is advancing")
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("opportunity ID is required (flags must come before the ID)")
	}
	id, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid opportunity ID: %w", err)
	}

	opp, err := orch.AdvanceStage(context.Background(), id, *reason)
	if err != nil {
		return fmt.Errorf("failed to advance stage: %w", err)
	}

	last := opp.StageHistory[len(opp.StageHistory)-1]
	fmt.Printf("✓ %s advanced: %s → %s\n", opp.Name, last.From, last.To)
	return nil
}

// DeleteOpportunityCommand removes an opportunity and all child records.
func DeleteOpportunityCommand(orch *pipeline.Orchestrator, args []string) error {
	fs := flag.NewFlagSet("delete-opportunity", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("opportunity ID is required")
	}
	id, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid opportunity ID: %w", err)
	}

	if err := orch.DeleteOpportunity(context.Background(), id); err != nil {
		return fmt.Errorf("failed to delete opportunity: %w", err)
	}

	fmt.Printf("✓ Opportunity %s deleted\n", id)
	return nil
}
