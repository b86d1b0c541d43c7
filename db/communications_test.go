// ABOUTME: Tests for communication database operations
// ABOUTME: Covers ULID ordering, the one-way processed transition, and recency lookup
package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harperreed/dealsense/models"
)

func TestCreateCommunication(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()
	ctx := context.Background()

	opp := &models.Opportunity{Name: "Comm Deal", Counterparty: "Acme Corp"}
	if err := CreateOpportunity(ctx, database, opp); err != nil {
		t.Fatalf("CreateOpportunity failed: %v", err)
	}

	c := &models.Communication{
		OpportunityID: opp.ID,
		Type:          models.CommMeeting,
		Subject:       "Kickoff",
		Content:       "Discussed scope and timeline",
		Participants:  []string{"Jane", "Raj"},
	}

	if err := CreateCommunication(ctx, database, c); err != nil {
		t.Fatalf("CreateCommunication failed: %v", err)
	}

	if c.ID == "" {
		t.Error("Communication ID was not assigned")
	}
	if c.Timestamp.IsZero() {
		t.Error("Timestamp was not defaulted")
	}

	found, err := GetCommunication(ctx, database, c.ID)
	if err != nil {
		t.Fatalf("GetCommunication failed: %v", err)
	}
	if found.Subject != "Kickoff" || found.Processed {
		t.Errorf("Unexpected communication state: %+v", found)
	}
	if len(found.Participants) != 2 {
		t.Errorf("Expected 2 participants, got %d", len(found.Participants))
	}
}

func TestCommunicationIDsSortChronologically(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()
	ctx := context.Background()

	opp := &models.Opportunity{Name: "Order Deal", Counterparty: "Acme Corp"}
	if err := CreateOpportunity(ctx, database, opp); err != nil {
		t.Fatalf("CreateOpportunity failed: %v", err)
	}

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	earlier := &models.Communication{OpportunityID: opp.ID, Type: models.CommEmail, Content: "first", Timestamp: base}
	later := &models.Communication{OpportunityID: opp.ID, Type: models.CommEmail, Content: "second", Timestamp: base.Add(48 * time.Hour)}

	if err := CreateCommunication(ctx, database, earlier); err != nil {
		t.Fatalf("CreateCommunication failed: %v", err)
	}
	if err := CreateCommunication(ctx, database, later); err != nil {
		t.Fatalf("CreateCommunication failed: %v", err)
	}

	if earlier.ID >= later.ID {
		t.Errorf("Expected %s < %s for time-ordered ids", earlier.ID, later.ID)
	}
}

func TestMarkCommunicationProcessed(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()
	ctx := context.Background()

	opp := &models.Opportunity{Name: "Process Deal", Counterparty: "Acme Corp"}
	if err := CreateOpportunity(ctx, database, opp); err != nil {
		t.Fatalf("CreateOpportunity failed: %v", err)
	}

	c := &models.Communication{OpportunityID: opp.ID, Type: models.CommCall, Content: "budget approved"}
	if err := CreateCommunication(ctx, database, c); err != nil {
		t.Fatalf("CreateCommunication failed: %v", err)
	}

	insights := []string{"budget approved by CFO"}
	if err := MarkCommunicationProcessed(ctx, database, c.ID, insights); err != nil {
		t.Fatalf("MarkCommunicationProcessed failed: %v", err)
	}

	found, err := GetCommunication(ctx, database, c.ID)
	if err != nil {
		t.Fatalf("GetCommunication failed: %v", err)
	}
	if !found.Processed {
		t.Error("Processed flag was not set")
	}
	if len(found.Insights) != 1 || found.Insights[0] != insights[0] {
		t.Errorf("Insights not recorded: %v", found.Insights)
	}

	// Second processing attempt must be rejected
	err = MarkCommunicationProcessed(ctx, database, c.ID, []string{"duplicate"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected rejection of double processing, got %v", err)
	}
}

func TestListCommunicationsOrderAndLimit(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()
	ctx := context.Background()

	opp := &models.Opportunity{Name: "List Deal", Counterparty: "Acme Corp"}
	if err := CreateOpportunity(ctx, database, opp); err != nil {
		t.Fatalf("CreateOpportunity failed: %v", err)
	}

	base := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		c := &models.Communication{
			OpportunityID: opp.ID,
			Type:          models.CommMessage,
			Content:       "update",
			Timestamp:     base.Add(time.Duration(i) * time.Hour),
		}
		if err := CreateCommunication(ctx, database, c); err != nil {
			t.Fatalf("CreateCommunication failed: %v", err)
		}
	}

	comms, err := ListCommunications(ctx, database, opp.ID, 0)
	if err != nil {
		t.Fatalf("ListCommunications failed: %v", err)
	}
	if len(comms) != 10 {
		t.Errorf("Expected default limit of 10, got %d", len(comms))
	}
	for i := 1; i < len(comms); i++ {
		if comms[i].Timestamp.After(comms[i-1].Timestamp) {
			t.Fatal("Communications are not ordered most recent first")
		}
	}
}

func TestLatestCommunicationTime(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()
	ctx := context.Background()

	opp := &models.Opportunity{Name: "Recency Deal", Counterparty: "Acme Corp"}
	if err := CreateOpportunity(ctx, database, opp); err != nil {
		t.Fatalf("CreateOpportunity failed: %v", err)
	}

	latest, err := LatestCommunicationTime(ctx, database, opp.ID)
	if err != nil {
		t.Fatalf("LatestCommunicationTime failed: %v", err)
	}
	if !latest.IsZero() {
		t.Errorf("Expected zero time with no communications, got %v", latest)
	}

	ts := time.Date(2026, 5, 10, 15, 30, 0, 0, time.UTC)
	c := &models.Communication{OpportunityID: opp.ID, Type: models.CommEmail, Content: "ping", Timestamp: ts}
	if err := CreateCommunication(ctx, database, c); err != nil {
		t.Fatalf("CreateCommunication failed: %v", err)
	}

	latest, err = LatestCommunicationTime(ctx, database, opp.ID)
	if err != nil {
		t.Fatalf("LatestCommunicationTime failed: %v", err)
	}
	if !latest.Equal(ts) {
		t.Errorf("Expected %v, got %v", ts, latest)
	}

	// An older communication must not displace the most recent timestamp
	older := &models.Communication{OpportunityID: opp.ID, Type: models.CommCall, Content: "earlier", Timestamp: ts.Add(-72 * time.Hour)}
	if err := CreateCommunication(ctx, database, older); err != nil {
		t.Fatalf("CreateCommunication failed: %v", err)
	}

	latest, err = LatestCommunicationTime(ctx, database, opp.ID)
	if err != nil {
		t.Fatalf("LatestCommunicationTime failed: %v", err)
	}
	if !latest.Equal(ts) {
		t.Errorf("Expected %v after adding older communication, got %v", ts, latest)
	}
}
