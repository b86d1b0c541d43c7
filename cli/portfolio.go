// ABOUTME: Portfolio CLI commands
// ABOUTME: Cross-opportunity rollup and the weekly focus digest
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/harperreed/dealsense/models"
	"github.com/harperreed/dealsense/pipeline"
)

// PortfolioCommand prints the portfolio summary.
func PortfolioCommand(orch *pipeline.Orchestrator, args []string) error {
	fs := flag.NewFlagSet("portfolio", flag.ExitOnError)
	_ = fs.Parse(args)

	summary, err := orch.PortfolioSummary(context.Background())
	if err != nil {
		return fmt.Errorf("failed to compute portfolio summary: %w", err)
	}

	fmt.Printf("Portfolio: %d opportunities\n", summary.OpportunityCount)
	fmt.Printf("  Total value:      %s\n", formatCents(summary.Metrics.TotalValue))
	fmt.Printf("  Weighted value:   %s\n", formatCents(int64(summary.Metrics.WeightedValue)))
	fmt.Printf("  Avg confidence:   %.1f\n", summary.Metrics.AverageConfidence)
	fmt.Printf("  High confidence:  %d\n", summary.Metrics.HighConfidenceCount)
	fmt.Printf("  At risk:          %d\n", summary.Metrics.AtRiskCount)

	fmt.Println("\nBy stage:")
	for _, stage := range models.StageOrder {
		stats, ok := summary.Metrics.Stages[stage]
		if !ok {
			continue
		}
		fmt.Printf("  %-12s %3d  %s\n", stage, stats.Count, formatCents(stats.Value))
	}

	if len(summary.Prioritized) == 0 {
		return nil
	}

	fmt.Println("\nPriorities:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIER\tSCORE\tNAME\tCOUNTERPARTY\tSTAGE\tVALUE\tCONFIDENCE")
	for _, item := range summary.Prioritized {
		fmt.Fprintf(w, "%s\t%.1f\t%s\t%s\t%s\t%s\t%.1f\n",
			item.Tier, item.PriorityScore, item.Name, item.Counterparty,
			item.Stage, formatCents(item.Value), item.Confidence)
	}
	return w.Flush()
}

// FocusCommand prints the weekly focus digest.
func FocusCommand(orch *pipeline.Orchestrator, args []string) error {
	fs := flag.NewFlagSet("focus", flag.ExitOnError)
	_ = fs.Parse(args)

	focus, err := orch.WeeklyFocus(context.Background())
	if err != nil {
		return fmt.Errorf("failed to compute weekly focus: %w", err)
	}

	if len(focus.Actions) == 0 {
		fmt.Println("No focus actions this week.")
		return nil
	}

	fmt.Printf("Weekly focus (%s):\n", focus.GeneratedAt.Format("2006-01-02"))
	for i, a := range focus.Actions {
		fmt.Printf("%d. [%s] %s: %s\n", i+1, a.Timing, a.OpportunityName, a.Action)
		if a.Reasoning != "" {
			fmt.Printf("   %s\n", a.Reasoning)
		}
	}
	return nil
}

// formatCents renders an integer cent amount as dollars.
func formatCents(cents int64) string {
	return fmt.Sprintf("$%.2f", float64(cents)/100)
}
