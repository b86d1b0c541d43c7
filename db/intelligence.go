// ABOUTME: Intelligence record database operations
// ABOUTME: One JSON document per opportunity with a monotonic version stamp
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

func GetIntelligence(ctx context.Context, db *sql.DB, opportunityID uuid.UUID) (*models.Intelligence, error) {
	var payload string
	var version int64

	err := db.QueryRowContext(ctx, `
		SELECT payload, version FROM intelligence WHERE opportunity_id = ?
	`, opportunityID.String()).Scan(&payload, &version)

	if err == sql.ErrNoRows {
		// CreateOpportunity establishes this row, so a miss means the
		// opportunity itself is unknown.
		return nil, fmt.Errorf("opportunity %s: %w", opportunityID, ErrNotFound)
	}
	if err != nil {
		return nil, wrapTransient(err)
	}

	intel := &models.Intelligence{}
	if err := json.Unmarshal([]byte(payload), intel); err != nil {
		return nil, fmt.Errorf("decoding intelligence for %s: %w", opportunityID, err)
	}
	intel.Version = version

	return intel, nil
}

// putIntelligence writes the record inside an existing transaction with an
// optimistic check against the version the caller loaded. A concurrent
// writer having bumped the version surfaces as ErrVersionConflict.
func putIntelligence(ctx context.Context, tx *sql.Tx, intel *models.Intelligence, loadedVersion int64, now time.Time) error {
	payload, err := json.Marshal(intel)
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE intelligence SET payload = ?, version = ?, updated_at = ?
		WHERE opportunity_id = ? AND version = ?
	`, string(payload), intel.Version, now, intel.OpportunityID.String(), loadedVersion)
	if err != nil {
		return wrapTransient(err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("intelligence for %s at version %d: %w", intel.OpportunityID, loadedVersion, ErrVersionConflict)
	}

	return nil
}
