// ABOUTME: Read-side query surface: opportunity view, listing, portfolio rollups
// ABOUTME: Implements the snapshot loader the portfolio aggregator fans out over
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/dealsense/db"
	"github.com/harperreed/dealsense/models"
	"github.com/harperreed/dealsense/portfolio"
)

// recentCommunicationLimit bounds the communications embedded in a view.
const recentCommunicationLimit = 10

type OpportunityView struct {
	Opportunity          *models.Opportunity     `json:"opportunity"`
	Stakeholders         []models.Stakeholder    `json:"stakeholders"`
	Scores               *models.Scores          `json:"scores"`
	Recommendations      *models.Recommendations `json:"recommendations"`
	RecentCommunications []models.Communication  `json:"recent_communications"`
}

// GetOpportunityView assembles the full read model for one opportunity. The
// reads run under the opportunity's lock so no mutation can interleave
// between them; the view is always a consistent snapshot.
func (o *Orchestrator) GetOpportunityView(ctx context.Context, id uuid.UUID) (*OpportunityView, error) {
	ctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()

	unlock := o.locks.lock(id)
	defer unlock()

	opp, err := db.GetOpportunity(ctx, o.db, id)
	if err != nil {
		return nil, err
	}
	stakeholders, err := db.ListStakeholders(ctx, o.db, id)
	if err != nil {
		return nil, err
	}
	scores, err := db.GetScores(ctx, o.db, id)
	if err != nil {
		return nil, err
	}
	recs, err := db.GetRecommendations(ctx, o.db, id)
	if err != nil {
		return nil, err
	}
	comms, err := db.ListCommunications(ctx, o.db, id, recentCommunicationLimit)
	if err != nil {
		return nil, err
	}

	return &OpportunityView{
		Opportunity:          opp,
		Stakeholders:         stakeholders,
		Scores:               scores,
		Recommendations:      recs,
		RecentCommunications: comms,
	}, nil
}

func (o *Orchestrator) ListOpportunities(ctx context.Context, filter db.OpportunityFilter) ([]models.Opportunity, error) {
	ctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()

	return db.FindOpportunities(ctx, o.db, filter)
}

// PortfolioSummary is the cross-opportunity rollup for dashboards.
type PortfolioSummary struct {
	Metrics          portfolio.Metrics        `json:"metrics"`
	Prioritized      []portfolio.PriorityItem `json:"prioritized"`
	StageCounts      map[string]int           `json:"stage_counts"`
	OpportunityCount int                      `json:"opportunity_count"`
}

func (o *Orchestrator) PortfolioSummary(ctx context.Context) (*PortfolioSummary, error) {
	snapshots, err := portfolio.LoadSnapshots(ctx, o.loader())
	if err != nil {
		return nil, err
	}

	metrics := portfolio.ComputeMetrics(snapshots)

	stageCounts := make(map[string]int, len(metrics.Stages))
	for stage, stats := range metrics.Stages {
		stageCounts[stage] = stats.Count
	}

	return &PortfolioSummary{
		Metrics:          metrics,
		Prioritized:      portfolio.Prioritize(snapshots),
		StageCounts:      stageCounts,
		OpportunityCount: len(snapshots),
	}, nil
}

func (o *Orchestrator) WeeklyFocus(ctx context.Context) (portfolio.WeeklyFocus, error) {
	snapshots, err := portfolio.LoadSnapshots(ctx, o.loader())
	if err != nil {
		return portfolio.WeeklyFocus{}, err
	}
	return portfolio.ComputeWeeklyFocus(snapshots, time.Now().UTC()), nil
}

func (o *Orchestrator) loader() portfolio.Loader {
	return &dbLoader{db: o}
}

// dbLoader adapts the store to the portfolio.Loader contract.
type dbLoader struct {
	db *Orchestrator
}

func (l *dbLoader) ListIndex(ctx context.Context) ([]models.IndexEntry, error) {
	return db.ListIndex(ctx, l.db.db)
}

func (l *dbLoader) LoadSnapshot(ctx context.Context, entry models.IndexEntry) (portfolio.Snapshot, error) {
	scores, err := db.GetScores(ctx, l.db.db, entry.ID)
	if err != nil {
		return portfolio.Snapshot{}, err
	}
	recs, err := db.GetRecommendations(ctx, l.db.db, entry.ID)
	if err != nil {
		return portfolio.Snapshot{}, err
	}
	return portfolio.Snapshot{Entry: entry, Scores: scores, Recommendations: recs}, nil
}
