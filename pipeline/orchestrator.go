// ABOUTME: Pipeline orchestrator, the only component with side effects
// ABOUTME: Sequences mutation, aggregation, scoring, recommendation, and persistence atomically
package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/dealsense/db"
	"github.com/harperreed/dealsense/intel"
	"github.com/harperreed/dealsense/models"
	"github.com/harperreed/dealsense/recommend"
	"github.com/harperreed/dealsense/scoring"
)

// ErrRecomputeFailed is the caller-facing signal for internal recomputation
// errors (staleness and the like). The underlying cause is logged, not
// surfaced.
var ErrRecomputeFailed = errors.New("recomputation failed, safe to retry")

// storageTimeout bounds every persistence sequence. On timeout the whole
// mutation rolls back and is reported as transient.
const storageTimeout = 5 * time.Second

// Orchestrator owns the mutate -> aggregate -> score -> recommend -> persist
// sequence. It is an explicit constructed object, never a process-wide
// singleton, so tests can run independent instances.
type Orchestrator struct {
	db    *sql.DB
	locks *keyedLocks
}

func New(database *sql.DB) *Orchestrator {
	return &Orchestrator{
		db:    database,
		locks: newKeyedLocks(),
	}
}

// CreateOpportunity creates the record tree and computes the initial derived
// artifacts so a fresh opportunity is immediately scoreable and listable.
func (o *Orchestrator) CreateOpportunity(ctx context.Context, opp *models.Opportunity) error {
	ctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()

	if err := db.CreateOpportunity(ctx, o.db, opp); err != nil {
		return err
	}

	unlock := o.locks.lock(opp.ID)
	defer unlock()

	intelRecord, err := db.GetIntelligence(ctx, o.db, opp.ID)
	if err != nil {
		return err
	}
	return o.recomputeAndSave(ctx, opp, intelRecord, intelRecord.Version, nil)
}

// UpdateFields is a partial update for generic opportunity fields. Nil means
// leave unchanged.
type UpdateFields struct {
	Name         *string
	Counterparty *string
	Industry     *string
	Value        *int64
}

func (o *Orchestrator) UpdateOpportunity(ctx context.Context, id uuid.UUID, fields UpdateFields) (*models.Opportunity, error) {
	ctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()

	unlock := o.locks.lock(id)
	defer unlock()

	opp, err := db.GetOpportunity(ctx, o.db, id)
	if err != nil {
		return nil, err
	}

	if fields.Name != nil {
		opp.Name = *fields.Name
	}
	if fields.Counterparty != nil {
		opp.Counterparty = *fields.Counterparty
	}
	if fields.Industry != nil {
		opp.Industry = *fields.Industry
	}
	if fields.Value != nil {
		opp.Value = *fields.Value
	}

	if err := db.UpdateOpportunity(ctx, o.db, opp); err != nil {
		return nil, err
	}

	intelRecord, err := db.GetIntelligence(ctx, o.db, id)
	if err != nil {
		return nil, err
	}
	if err := o.recomputeAndSave(ctx, opp, intelRecord, intelRecord.Version, nil); err != nil {
		return nil, err
	}
	return opp, nil
}

// AdvanceStage moves the opportunity forward exactly one stage. Backward or
// skipping transitions are rejected, and advancing past production fails
// with models.ErrTerminalStage.
func (o *Orchestrator) AdvanceStage(ctx context.Context, id uuid.UUID, reason string) (*models.Opportunity, error) {
	ctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()

	unlock := o.locks.lock(id)
	defer unlock()

	opp, err := db.GetOpportunity(ctx, o.db, id)
	if err != nil {
		return nil, err
	}

	if err := opp.Advance(reason, time.Now().UTC()); err != nil {
		return nil, err
	}

	if err := db.UpdateOpportunity(ctx, o.db, opp); err != nil {
		return nil, err
	}

	intelRecord, err := db.GetIntelligence(ctx, o.db, id)
	if err != nil {
		return nil, err
	}
	if err := o.recomputeAndSave(ctx, opp, intelRecord, intelRecord.Version, nil); err != nil {
		return nil, err
	}
	return opp, nil
}

// DeleteOpportunity removes the opportunity and all child records.
func (o *Orchestrator) DeleteOpportunity(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()

	unlock := o.locks.lock(id)
	defer unlock()

	return db.DeleteOpportunity(ctx, o.db, id)
}

func (o *Orchestrator) AddStakeholder(ctx context.Context, s *models.Stakeholder) error {
	ctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()

	unlock := o.locks.lock(s.OpportunityID)
	defer unlock()

	opp, err := db.GetOpportunity(ctx, o.db, s.OpportunityID)
	if err != nil {
		return err
	}

	if err := db.CreateStakeholder(ctx, o.db, s); err != nil {
		return err
	}

	intelRecord, err := db.GetIntelligence(ctx, o.db, opp.ID)
	if err != nil {
		return err
	}
	return o.recomputeAndSave(ctx, opp, intelRecord, intelRecord.Version, nil)
}

// StakeholderUpdate is a partial stakeholder mutation. Empty fields are left
// unchanged; AddQuote and AddConcern append.
type StakeholderUpdate struct {
	Name       string
	Title      string
	Email      string
	Role       string
	Sentiment  string
	AddQuote   string
	AddConcern string
}

// UpdateStakeholder loads, mutates, and writes the stakeholder under the
// opportunity's lock so concurrent updates never lose each other's changes.
func (o *Orchestrator) UpdateStakeholder(ctx context.Context, opportunityID, stakeholderID uuid.UUID, update StakeholderUpdate) (*models.Stakeholder, error) {
	ctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()

	unlock := o.locks.lock(opportunityID)
	defer unlock()

	opp, err := db.GetOpportunity(ctx, o.db, opportunityID)
	if err != nil {
		return nil, err
	}

	s, err := db.GetStakeholder(ctx, o.db, stakeholderID)
	if err != nil {
		return nil, err
	}
	if s.OpportunityID != opportunityID {
		return nil, fmt.Errorf("stakeholder %s does not belong to opportunity %s: %w", stakeholderID, opportunityID, db.ErrNotFound)
	}

	if update.Name != "" {
		s.Name = update.Name
	}
	if update.Title != "" {
		s.Title = update.Title
	}
	if update.Email != "" {
		s.Email = update.Email
	}
	if update.Role != "" {
		s.Role = update.Role
	}
	if update.Sentiment != "" {
		s.Sentiment = update.Sentiment
	}
	if update.AddQuote != "" {
		s.KeyQuotes = append(s.KeyQuotes, update.AddQuote)
	}
	if update.AddConcern != "" {
		s.Concerns = append(s.Concerns, update.AddConcern)
	}

	if err := db.UpdateStakeholder(ctx, o.db, s); err != nil {
		return nil, err
	}

	intelRecord, err := db.GetIntelligence(ctx, o.db, opp.ID)
	if err != nil {
		return nil, err
	}
	if err := o.recomputeAndSave(ctx, opp, intelRecord, intelRecord.Version, nil); err != nil {
		return nil, err
	}
	return s, nil
}

// AddCommunication records a communication. Recomputation runs because
// interaction recency feeds the engagement factor and the going-cold risk.
func (o *Orchestrator) AddCommunication(ctx context.Context, c *models.Communication) error {
	ctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()

	unlock := o.locks.lock(c.OpportunityID)
	defer unlock()

	opp, err := db.GetOpportunity(ctx, o.db, c.OpportunityID)
	if err != nil {
		return err
	}

	if err := db.CreateCommunication(ctx, o.db, c); err != nil {
		return err
	}

	intelRecord, err := db.GetIntelligence(ctx, o.db, opp.ID)
	if err != nil {
		return err
	}
	return o.recomputeAndSave(ctx, opp, intelRecord, intelRecord.Version, nil)
}

// ProcessCommunication folds the extracted insight strings into intelligence
// and recomputes both derived artifacts, persisting everything as one unit.
func (o *Orchestrator) ProcessCommunication(ctx context.Context, opportunityID uuid.UUID, communicationID string, insights []string) error {
	ctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()

	unlock := o.locks.lock(opportunityID)
	defer unlock()

	opp, err := db.GetOpportunity(ctx, o.db, opportunityID)
	if err != nil {
		return err
	}

	comm, err := db.GetCommunication(ctx, o.db, communicationID)
	if err != nil {
		return err
	}
	if comm.OpportunityID != opportunityID {
		return fmt.Errorf("communication %s does not belong to opportunity %s: %w", communicationID, opportunityID, db.ErrNotFound)
	}
	if comm.Processed {
		return fmt.Errorf("communication %s is unknown or already processed: %w", communicationID, db.ErrNotFound)
	}

	intelRecord, err := db.GetIntelligence(ctx, o.db, opportunityID)
	if err != nil {
		return err
	}
	loadedVersion := intelRecord.Version

	intel.Apply(intelRecord, insights, communicationID, time.Now().UTC())

	// The processed flag commits inside the derived-state transaction, so a
	// failed save leaves the communication unprocessed and the call retryable.
	return o.recomputeAndSave(ctx, opp, intelRecord, loadedVersion, &db.ProcessedInsights{
		CommunicationID: communicationID,
		Insights:        insights,
	})
}

// recomputeAndSave runs the pure engines against the current state and
// persists intelligence, scores, recommendations, and the index entry as one
// transaction, along with the processed transition when the mutation came
// from a communication. Callers hold the opportunity's lock.
func (o *Orchestrator) recomputeAndSave(ctx context.Context, opp *models.Opportunity, intelRecord *models.Intelligence, loadedVersion int64, processed *db.ProcessedInsights) error {
	stakeholders, err := db.ListStakeholders(ctx, o.db, opp.ID)
	if err != nil {
		return err
	}
	lastInteraction, err := db.LatestCommunicationTime(ctx, o.db, opp.ID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()

	scores := scoring.Compute(scoring.Input{
		Opportunity:     opp,
		Intelligence:    intelRecord,
		Stakeholders:    stakeholders,
		LastInteraction: lastInteraction,
		Now:             now,
	})

	recs, err := recommend.Compute(recommend.Input{
		Opportunity:     opp,
		Scores:          scores,
		Intelligence:    intelRecord,
		Stakeholders:    stakeholders,
		LastInteraction: lastInteraction,
		Now:             now,
	})
	if err != nil {
		// Staleness here means an orchestration bug; log the cause and
		// surface a generic retryable failure.
		log.Printf("pipeline: recomputation for %s failed: %v", opp.ID, err)
		return ErrRecomputeFailed
	}

	return db.SaveDerived(ctx, o.db, opp, intelRecord, loadedVersion, scores, recs, processed)
}
