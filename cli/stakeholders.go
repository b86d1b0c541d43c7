// ABOUTME: Stakeholder CLI commands
// ABOUTME: Human-friendly commands for managing opportunity stakeholders
package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/dealsense/models"
	"github.com/harperreed/dealsense/pipeline"
)

// AddStakeholderCommand adds a stakeholder to an opportunity.
func AddStakeholderCommand(orch *pipeline.Orchestrator, args []string) error {
	fs := flag.NewFlagSet("add-stakeholder", flag.ExitOnError)
	opportunity := fs.String("opportunity", "", "Opportunity ID (required)")
	name := fs.String("name", "", "Stakeholder name (required)")
	title := fs.String("title", "", "Job title")
	email := fs.String("email", "", "Email address")
	role := fs.String("role", "", "Role (champion, decision_maker, evaluator, blocker, user)")
	sentiment := fs.String("sentiment", "neutral", "Sentiment (positive, neutral, negative)")
	_ = fs.Parse(args)

	if *opportunity == "" {
		return fmt.Errorf("--opportunity is required")
	}
	if *name == "" {
		return fmt.Errorf("--name is required")
	}
	if !models.IsValidRole(*role) {
		return fmt.Errorf("invalid role: %q (valid: champion, decision_maker, evaluator, blocker, user)", *role)
	}
	if !models.IsValidSentiment(*sentiment) {
		return fmt.Errorf("invalid sentiment: %q (valid: positive, neutral, negative)", *sentiment)
	}

	oppID, err := uuid.Parse(*opportunity)
	if err != nil {
		return fmt.Errorf("invalid opportunity ID: %w", err)
	}

	s := &models.Stakeholder{
		OpportunityID: oppID,
		Name:          *name,
		Title:         *title,
		Email:         *email,
		Role:          *role,
		Sentiment:     *sentiment,
	}

	if err := orch.AddStakeholder(context.Background(), s); err != nil {
		return fmt.Errorf("failed to add stakeholder: %w", err)
	}

	fmt.Printf("✓ Stakeholder added: %s (%s, %s) (ID: %s)\n", s.Name, s.Role, s.Sentiment, s.ID)
	return nil
}

// UpdateStakeholderCommand updates a stakeholder in place.
func UpdateStakeholderCommand(orch *pipeline.Orchestrator, args []string) error {
	fs := flag.NewFlagSet("update-stakeholder", flag.ExitOnError)
	opportunity := fs.String("opportunity", "", "Opportunity ID (required)")
	role := fs.String("role", "", "Updated role")
	sentiment := fs.String("sentiment", "", "Updated sentiment")
	quote := fs.String("quote", "", "Key quote to append")
	concern := fs.String("concern", "", "Concern to append")
	_ = fs.Parse(args)

	if *opportunity == "" {
		return fmt.Errorf("--opportunity is required")
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("stakeholder ID is required (flags must come before the ID)")
	}

	oppID, err := uuid.Parse(*opportunity)
	if err != nil {
		return fmt.Errorf("invalid opportunity ID: %w", err)
	}
	id, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid stakeholder ID: %w", err)
	}
	if *role != "" && !models.IsValidRole(*role) {
		return fmt.Errorf("invalid role: %q", *role)
	}
	if *sentiment != "" && !models.IsValidSentiment(*sentiment) {
		return fmt.Errorf("invalid sentiment: %q", *sentiment)
	}

	s, err := orch.UpdateStakeholder(context.Background(), oppID, id, pipeline.StakeholderUpdate{
		Role:       *role,
		Sentiment:  *sentiment,
		AddQuote:   *quote,
		AddConcern: *concern,
	})
	if err != nil {
		return fmt.Errorf("failed to update stakeholder: %w", err)
	}

	fmt.Printf("✓ Stakeholder updated: %s (%s, %s)\n", s.Name, s.Role, s.Sentiment)
	return nil
}
