// ABOUTME: Opportunity database operations
// ABOUTME: Creation atomically establishes intelligence, derived artifacts, and the index entry
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/dealsense/models"
)

// CreateOpportunity inserts the opportunity plus its empty intelligence,
// scores, recommendations, and index entry in one transaction. Every other
// component can therefore assume these records always exist for a known id.
func CreateOpportunity(ctx context.Context, db *sql.DB, opp *models.Opportunity) error {
	opp.ID = uuid.New()
	now := time.Now().UTC()
	opp.CreatedAt = now
	opp.UpdatedAt = now

	if opp.Currency == "" {
		opp.Currency = "USD"
	}
	if opp.Stage == "" {
		opp.Stage = models.StageLead
	}
	if !models.IsValidStage(opp.Stage) {
		return fmt.Errorf("%w: %s", models.ErrInvalidStage, opp.Stage)
	}
	if len(opp.StageHistory) == 0 {
		opp.StageHistory = []models.StageTransition{{From: "", To: opp.Stage, At: now}}
	}

	historyJSON, err := json.Marshal(opp.StageHistory)
	if err != nil {
		return err
	}

	intel := models.NewIntelligence(opp.ID)
	intelJSON, err := json.Marshal(intel)
	if err != nil {
		return err
	}

	scores := &models.Scores{OpportunityID: opp.ID, ComputedAt: now}
	scoresJSON, err := json.Marshal(scores)
	if err != nil {
		return err
	}

	recs := &models.Recommendations{OpportunityID: opp.ID, GeneratedAt: now}
	recsJSON, err := json.Marshal(recs)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return wrapTransient(err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO opportunities (id, name, counterparty, industry, stage, value, currency, stage_history, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, opp.ID.String(), opp.Name, opp.Counterparty, opp.Industry, opp.Stage, opp.Value, opp.Currency, string(historyJSON), opp.CreatedAt, opp.UpdatedAt)
	if err != nil {
		return wrapTransient(err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO intelligence (opportunity_id, payload, version, updated_at)
		VALUES (?, ?, 0, ?)
	`, opp.ID.String(), string(intelJSON), now)
	if err != nil {
		return wrapTransient(err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO scores (opportunity_id, payload, intel_version, computed_at)
		VALUES (?, ?, 0, ?)
	`, opp.ID.String(), string(scoresJSON), now)
	if err != nil {
		return wrapTransient(err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO recommendations (opportunity_id, payload, intel_version, generated_at)
		VALUES (?, ?, 0, ?)
	`, opp.ID.String(), string(recsJSON), now)
	if err != nil {
		return wrapTransient(err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO pipeline_index (opportunity_id, name, counterparty, stage, value, confidence, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)
	`, opp.ID.String(), opp.Name, opp.Counterparty, opp.Stage, opp.Value, now)
	if err != nil {
		return wrapTransient(err)
	}

	return wrapTransient(tx.Commit())
}

func GetOpportunity(ctx context.Context, db *sql.DB, id uuid.UUID) (*models.Opportunity, error) {
	opp := &models.Opportunity{}
	var industry sql.NullString
	var value sql.NullInt64
	var historyJSON string

	err := db.QueryRowContext(ctx, `
		SELECT id, name, counterparty, industry, stage, value, currency, stage_history, created_at, updated_at
		FROM opportunities WHERE id = ?
	`, id.String()).Scan(
		&opp.ID,
		&opp.Name,
		&opp.Counterparty,
		&industry,
		&opp.Stage,
		&value,
		&opp.Currency,
		&historyJSON,
		&opp.CreatedAt,
		&opp.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("opportunity %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, wrapTransient(err)
	}

	if industry.Valid {
		opp.Industry = industry.String
	}
	if value.Valid {
		opp.Value = value.Int64
	}
	if err := json.Unmarshal([]byte(historyJSON), &opp.StageHistory); err != nil {
		return nil, fmt.Errorf("decoding stage history for %s: %w", id, err)
	}

	return opp, nil
}

func UpdateOpportunity(ctx context.Context, db *sql.DB, opp *models.Opportunity) error {
	opp.UpdatedAt = time.Now().UTC()

	historyJSON, err := json.Marshal(opp.StageHistory)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return wrapTransient(err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE opportunities
		SET name = ?, counterparty = ?, industry = ?, stage = ?, value = ?, currency = ?, stage_history = ?, updated_at = ?
		WHERE id = ?
	`, opp.Name, opp.Counterparty, opp.Industry, opp.Stage, opp.Value, opp.Currency, string(historyJSON), opp.UpdatedAt, opp.ID.String())
	if err != nil {
		return wrapTransient(err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("opportunity %s: %w", opp.ID, ErrNotFound)
	}

	// Keep the index projection in step with the canonical record.
	_, err = tx.ExecContext(ctx, `
		UPDATE pipeline_index
		SET name = ?, counterparty = ?, stage = ?, value = ?, updated_at = ?
		WHERE opportunity_id = ?
	`, opp.Name, opp.Counterparty, opp.Stage, opp.Value, opp.UpdatedAt, opp.ID.String())
	if err != nil {
		return wrapTransient(err)
	}

	return wrapTransient(tx.Commit())
}

// OpportunityFilter selects opportunities for listing. Filters are applied
// in-memory after a full load, which is acceptable at this scale.
type OpportunityFilter struct {
	Stage        string
	Counterparty string // substring match
	MinValue     int64
	MaxValue     int64  // 0 means unbounded
	Query        string // free-text against name and counterparty
	Limit        int
}

func FindOpportunities(ctx context.Context, db *sql.DB, filter OpportunityFilter) ([]models.Opportunity, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, counterparty, industry, stage, value, currency, stage_history, created_at, updated_at
		FROM opportunities
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, wrapTransient(err)
	}
	defer rows.Close()

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var opps []models.Opportunity
	for rows.Next() {
		var o models.Opportunity
		var industry sql.NullString
		var value sql.NullInt64
		var historyJSON string

		if err := rows.Scan(&o.ID, &o.Name, &o.Counterparty, &industry, &o.Stage, &value, &o.Currency, &historyJSON, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		if industry.Valid {
			o.Industry = industry.String
		}
		if value.Valid {
			o.Value = value.Int64
		}
		if err := json.Unmarshal([]byte(historyJSON), &o.StageHistory); err != nil {
			return nil, fmt.Errorf("decoding stage history for %s: %w", o.ID, err)
		}

		if !matchesFilter(&o, filter) {
			continue
		}

		opps = append(opps, o)
		if len(opps) >= limit {
			break
		}
	}

	return opps, rows.Err()
}

func matchesFilter(o *models.Opportunity, filter OpportunityFilter) bool {
	if filter.Stage != "" && o.Stage != filter.Stage {
		return false
	}
	if filter.Counterparty != "" && !strings.Contains(strings.ToLower(o.Counterparty), strings.ToLower(filter.Counterparty)) {
		return false
	}
	if filter.MinValue > 0 && o.Value < filter.MinValue {
		return false
	}
	if filter.MaxValue > 0 && o.Value > filter.MaxValue {
		return false
	}
	if filter.Query != "" {
		q := strings.ToLower(filter.Query)
		if !strings.Contains(strings.ToLower(o.Name), q) && !strings.Contains(strings.ToLower(o.Counterparty), q) {
			return false
		}
	}
	return true
}

// DeleteOpportunity removes the whole record tree and the index entry in one
// transaction. Never partial.
func DeleteOpportunity(ctx context.Context, db *sql.DB, id uuid.UUID) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return wrapTransient(err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM opportunities WHERE id = ?`, id.String())
	if err != nil {
		return wrapTransient(err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("opportunity %s: %w", id, ErrNotFound)
	}

	for _, table := range []string{"stakeholders", "communications", "intelligence", "scores", "recommendations", "pipeline_index"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE opportunity_id = ?`, id.String()); err != nil {
			return wrapTransient(err)
		}
	}

	return wrapTransient(tx.Commit())
}
