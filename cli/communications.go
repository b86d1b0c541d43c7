// ABOUTME: Communication CLI commands
// ABOUTME: Logging communications and folding their insights into intelligence
package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/dealsense/models"
	"github.com/harperreed/dealsense/pipeline"
)

// AddCommunicationCommand records a communication against an opportunity.
func AddCommunicationCommand(orch *pipeline.Orchestrator, args []string) error {
	fs := flag.NewFlagSet("add-communication", flag.ExitOnError)
	opportunity := fs.String("opportunity", "", "Opportunity ID (required)")
	commType := fs.String("type", "", "Type (meeting, call, email, message)")
	subject := fs.String("subject", "", "Subject line")
	content := fs.String("content", "", "Full content (required)")
	participants := fs.String("participants", "", "Comma-separated participant names")
	timestamp := fs.String("timestamp", "", "When it happened, RFC3339 (default now)")
	_ = fs.Parse(args)

	if *opportunity == "" {
		return fmt.Errorf("--opportunity is required")
	}
	if !models.IsValidCommType(*commType) {
		return fmt.Errorf("invalid type: %q (valid: meeting, call, email, message)", *commType)
	}
	if *content == "" {
		return fmt.Errorf("--content is required")
	}

	oppID, err := uuid.Parse(*opportunity)
	if err != nil {
		return fmt.Errorf("invalid opportunity ID: %w", err)
	}

	c := &models.Communication{
		OpportunityID: oppID,
		Type:          *commType,
		Subject:       *subject,
		Content:       *content,
	}
	if *participants != "" {
		for _, p := range strings.Split(*participants, ",") {
			if p = strings.TrimSpace(p); p != "" {
				c.Participants = append(c.Participants, p)
			}
		}
	}
	if *timestamp != "" {
		ts, err := time.Parse(time.RFC3339, *timestamp)
		if err != nil {
			return fmt.Errorf("invalid timestamp (use RFC3339): %w", err)
		}
		c.Timestamp = ts
	}

	if err := orch.AddCommunication(context.Background(), c); err != nil {
		return fmt.Errorf("failed to add communication: %w", err)
	}

	fmt.Printf("✓ Communication logged: %s %s (ID: %s)\n", c.Type, c.Timestamp.Format("2006-01-02"), c.ID)
	return nil
}

// ProcessCommunicationCommand marks a communication processed and folds
// its extracted insights into the opportunity's intelligence.
func ProcessCommunicationCommand(orch *pipeline.Orchestrator, args []string) error {
	fs := flag.NewFlagSet("process-communication", flag.ExitOnError)
	opportunity := fs.String("opportunity", "", "Opportunity ID (required)")
	insight := multiFlag{}
	fs.Var(&insight, "insight", "Extracted insight text (repeatable)")
	_ = fs.Parse(args)

	if *opportunity == "" {
		return fmt.Errorf("--opportunity is required")
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("communication ID is required (flags must come before the ID)")
	}

	oppID, err := uuid.Parse(*opportunity)
	if err != nil {
		return fmt.Errorf("invalid opportunity ID: %w", err)
	}
	commID := fs.Arg(0)

	if err := orch.ProcessCommunication(context.Background(), oppID, commID, insight); err != nil {
		return fmt.Errorf("failed to process communication: %w", err)
	}

	fmt.Printf("✓ Communication processed: %s (%d insights)\n", commID, len(insight))
	return nil
}

// multiFlag collects repeated string flag values.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ", ") }

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}
