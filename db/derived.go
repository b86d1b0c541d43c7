// ABOUTME: Scores and recommendations persistence, plus the atomic recomputation write
// ABOUTME: SaveDerived commits intelligence, both derived artifacts, and the index entry as one unit
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/dealsense/models"
)

func GetScores(ctx context.Context, db *sql.DB, opportunityID uuid.UUID) (*models.Scores, error) {
	var payload string

	err := db.QueryRowContext(ctx, `
		SELECT payload FROM scores WHERE opportunity_id = ?
	`, opportunityID.String()).Scan(&payload)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("opportunity %s: %w", opportunityID, ErrNotFound)
	}
	if err != nil {
		return nil, wrapTransient(err)
	}

	scores := &models.Scores{}
	if err := json.Unmarshal([]byte(payload), scores); err != nil {
		return nil, fmt.Errorf("decoding scores for %s: %w", opportunityID, err)
	}

	return scores, nil
}

func GetRecommendations(ctx context.Context, db *sql.DB, opportunityID uuid.UUID) (*models.Recommendations, error) {
	var payload string

	err := db.QueryRowContext(ctx, `
		SELECT payload FROM recommendations WHERE opportunity_id = ?
	`, opportunityID.String()).Scan(&payload)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("opportunity %s: %w", opportunityID, ErrNotFound)
	}
	if err != nil {
		return nil, wrapTransient(err)
	}

	recs := &models.Recommendations{}
	if err := json.Unmarshal([]byte(payload), recs); err != nil {
		return nil, fmt.Errorf("decoding recommendations for %s: %w", opportunityID, err)
	}

	return recs, nil
}

// ProcessedInsights ties a communication's processed transition to the
// derived-state write. Carrying it into SaveDerived means a rollback also
// undoes the processed flag, so the caller can retry with the same insights.
type ProcessedInsights struct {
	CommunicationID string
	Insights        []string
}

// SaveDerived persists a recomputation result as one logical unit: the folded
// intelligence, the scores and recommendations derived from it, the refreshed
// index entry, and (when set) the source communication's processed flag.
// loadedVersion is the intelligence version the caller read before mutating;
// the write fails with ErrVersionConflict if another writer got there first,
// so no caller ever observes scores computed against an intelligence state
// older than its own mutation.
func SaveDerived(ctx context.Context, db *sql.DB, opp *models.Opportunity, intel *models.Intelligence, loadedVersion int64, scores *models.Scores, recs *models.Recommendations, processed *ProcessedInsights) error {
	scoresJSON, err := json.Marshal(scores)
	if err != nil {
		return err
	}
	recsJSON, err := json.Marshal(recs)
	if err != nil {
		return err
	}

	now := time.Now().UTC()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return wrapTransient(err)
	}
	defer tx.Rollback()

	if err := putIntelligence(ctx, tx, intel, loadedVersion, now); err != nil {
		return err
	}

	if processed != nil {
		if err := markProcessed(ctx, tx, processed.CommunicationID, processed.Insights); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE scores SET payload = ?, intel_version = ?, computed_at = ?
		WHERE opportunity_id = ?
	`, string(scoresJSON), scores.IntelVersion, now, opp.ID.String())
	if err != nil {
		return wrapTransient(err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE recommendations SET payload = ?, intel_version = ?, generated_at = ?
		WHERE opportunity_id = ?
	`, string(recsJSON), recs.IntelVersion, now, opp.ID.String())
	if err != nil {
		return wrapTransient(err)
	}

	// Per-entry upsert: an unrelated opportunity's index entry is never
	// locked or rewritten by this write.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO pipeline_index (opportunity_id, name, counterparty, stage, value, confidence, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(opportunity_id) DO UPDATE SET
			name = excluded.name,
			counterparty = excluded.counterparty,
			stage = excluded.stage,
			value = excluded.value,
			confidence = excluded.confidence,
			updated_at = excluded.updated_at
	`, opp.ID.String(), opp.Name, opp.Counterparty, opp.Stage, opp.Value, scores.DealConfidence, now)
	if err != nil {
		return wrapTransient(err)
	}

	return wrapTransient(tx.Commit())
}
