// ABOUTME: Tests for opportunity database operations
// ABOUTME: Covers atomic record tree creation, filtering, index sync, and cascade delete
package db

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/harperreed/dealsense/models"
)

func TestCreateOpportunity(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()
	ctx := context.Background()

	opp := &models.Opportunity{
		Name:         "Acme AI Rollout",
		Counterparty: "Acme Corp",
		Industry:     "manufacturing",
		Value:        10000000,
	}

	if err := CreateOpportunity(ctx, database, opp); err != nil {
		t.Fatalf("CreateOpportunity failed: %v", err)
	}

	if opp.ID == uuid.Nil {
		t.Error("Opportunity ID was not set")
	}
	if opp.Stage != models.StageLead {
		t.Errorf("Expected default stage lead, got %s", opp.Stage)
	}
	if opp.Currency != "USD" {
		t.Errorf("Expected default currency USD, got %s", opp.Currency)
	}
	if len(opp.StageHistory) != 1 || opp.StageHistory[0].To != models.StageLead {
		t.Error("Initial stage history entry was not recorded")
	}

	// The whole record tree exists immediately
	if _, err := GetIntelligence(ctx, database, opp.ID); err != nil {
		t.Errorf("Intelligence record missing after create: %v", err)
	}
	if _, err := GetScores(ctx, database, opp.ID); err != nil {
		t.Errorf("Scores record missing after create: %v", err)
	}
	if _, err := GetRecommendations(ctx, database, opp.ID); err != nil {
		t.Errorf("Recommendations record missing after create: %v", err)
	}

	entries, err := ListIndex(ctx, database)
	if err != nil {
		t.Fatalf("ListIndex failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 index entry, got %d", len(entries))
	}
	if entries[0].ID != opp.ID || entries[0].Stage != models.StageLead {
		t.Error("Index entry does not match the opportunity")
	}
}

func TestCreateOpportunityInvalidStage(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	opp := &models.Opportunity{Name: "Bad", Counterparty: "Corp", Stage: "negotiation"}
	err := CreateOpportunity(context.Background(), database, opp)
	if !errors.Is(err, models.ErrInvalidStage) {
		t.Errorf("Expected ErrInvalidStage, got %v", err)
	}
}

func TestGetOpportunityNotFound(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	_, err := GetOpportunity(context.Background(), database, uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestUpdateOpportunitySyncsIndex(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()
	ctx := context.Background()

	opp := &models.Opportunity{Name: "Original", Counterparty: "Acme Corp", Value: 5000000}
	if err := CreateOpportunity(ctx, database, opp); err != nil {
		t.Fatalf("CreateOpportunity failed: %v", err)
	}

	opp.Name = "Renamed"
	opp.Value = 7500000
	if err := UpdateOpportunity(ctx, database, opp); err != nil {
		t.Fatalf("UpdateOpportunity failed: %v", err)
	}

	found, err := GetOpportunity(ctx, database, opp.ID)
	if err != nil {
		t.Fatalf("GetOpportunity failed: %v", err)
	}
	if found.Name != "Renamed" || found.Value != 7500000 {
		t.Errorf("Update not persisted: %s / %d", found.Name, found.Value)
	}

	entries, err := ListIndex(ctx, database)
	if err != nil {
		t.Fatalf("ListIndex failed: %v", err)
	}
	if entries[0].Name != "Renamed" || entries[0].Value != 7500000 {
		t.Error("Index entry was not kept in step with the update")
	}
}

func TestUpdateOpportunityNotFound(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	opp := &models.Opportunity{ID: uuid.New(), Name: "Ghost", Counterparty: "Corp", Stage: models.StageLead}
	err := UpdateOpportunity(context.Background(), database, opp)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestFindOpportunities(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()
	ctx := context.Background()

	seed := []models.Opportunity{
		{Name: "Alpha Pilot", Counterparty: "Acme Corp", Stage: models.StageLead, Value: 5000000},
		{Name: "Beta Rollout", Counterparty: "Beta Industries", Stage: models.StageDiscovery, Value: 20000000},
		{Name: "Gamma Expansion", Counterparty: "Acme Corp", Stage: models.StageDiscovery, Value: 10000000},
	}
	for i := range seed {
		if err := CreateOpportunity(ctx, database, &seed[i]); err != nil {
			t.Fatalf("CreateOpportunity failed: %v", err)
		}
	}

	t.Run("by stage", func(t *testing.T) {
		opps, err := FindOpportunities(ctx, database, OpportunityFilter{Stage: models.StageDiscovery})
		if err != nil {
			t.Fatalf("FindOpportunities failed: %v", err)
		}
		if len(opps) != 2 {
			t.Errorf("Expected 2 discovery opportunities, got %d", len(opps))
		}
	})

	t.Run("by counterparty substring", func(t *testing.T) {
		opps, err := FindOpportunities(ctx, database, OpportunityFilter{Counterparty: "acme"})
		if err != nil {
			t.Fatalf("FindOpportunities failed: %v", err)
		}
		if len(opps) != 2 {
			t.Errorf("Expected 2 Acme opportunities, got %d", len(opps))
		}
	})

	t.Run("by value range", func(t *testing.T) {
		opps, err := FindOpportunities(ctx, database, OpportunityFilter{MinValue: 8000000, MaxValue: 15000000})
		if err != nil {
			t.Fatalf("FindOpportunities failed: %v", err)
		}
		if len(opps) != 1 || opps[0].Name != "Gamma Expansion" {
			t.Errorf("Expected only Gamma Expansion in range, got %d results", len(opps))
		}
	})

	t.Run("by query", func(t *testing.T) {
		opps, err := FindOpportunities(ctx, database, OpportunityFilter{Query: "beta"})
		if err != nil {
			t.Fatalf("FindOpportunities failed: %v", err)
		}
		if len(opps) != 1 || opps[0].Name != "Beta Rollout" {
			t.Errorf("Expected Beta Rollout, got %d results", len(opps))
		}
	})

	t.Run("limit", func(t *testing.T) {
		opps, err := FindOpportunities(ctx, database, OpportunityFilter{Limit: 2})
		if err != nil {
			t.Fatalf("FindOpportunities failed: %v", err)
		}
		if len(opps) != 2 {
			t.Errorf("Expected limit of 2 to hold, got %d", len(opps))
		}
	})
}

func TestDeleteOpportunity(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()
	ctx := context.Background()

	opp := &models.Opportunity{Name: "Doomed", Counterparty: "Acme Corp"}
	if err := CreateOpportunity(ctx, database, opp); err != nil {
		t.Fatalf("CreateOpportunity failed: %v", err)
	}

	s := &models.Stakeholder{OpportunityID: opp.ID, Name: "Jane", Role: models.RoleChampion}
	if err := CreateStakeholder(ctx, database, s); err != nil {
		t.Fatalf("CreateStakeholder failed: %v", err)
	}

	if err := DeleteOpportunity(ctx, database, opp.ID); err != nil {
		t.Fatalf("DeleteOpportunity failed: %v", err)
	}

	if _, err := GetOpportunity(ctx, database, opp.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected opportunity to be gone, got %v", err)
	}
	if _, err := GetIntelligence(ctx, database, opp.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected intelligence to be gone, got %v", err)
	}
	if _, err := GetStakeholder(ctx, database, s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected stakeholder to be gone, got %v", err)
	}

	entries, err := ListIndex(ctx, database)
	if err != nil {
		t.Fatalf("ListIndex failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty index after delete, got %d entries", len(entries))
	}
}

func TestDeleteOpportunityNotFound(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	err := DeleteOpportunity(context.Background(), database, uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
