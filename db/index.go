// ABOUTME: Portfolio index operations
// ABOUTME: Denormalized per-opportunity projection for listing without full record loads
package db

import (
	"context"
	"database/sql"

	"github.com/harperreed/dealsense/models"
)

// ListIndex returns every index entry, highest confidence first.
func ListIndex(ctx context.Context, db *sql.DB) ([]models.IndexEntry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT opportunity_id, name, counterparty, stage, value, confidence, updated_at
		FROM pipeline_index
		ORDER BY confidence DESC
	`)
	if err != nil {
		return nil, wrapTransient(err)
	}
	defer rows.Close()

	var entries []models.IndexEntry
	for rows.Next() {
		var e models.IndexEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.Counterparty, &e.Stage, &e.Value, &e.Confidence, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
