// ABOUTME: Communication database operations
// ABOUTME: Records are immutable except for the one-way processed transition
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/dealsense/models"
	"github.com/oklog/ulid/v2"
)

// CreateCommunication assigns a ULID keyed to the communication timestamp so
// ids sort chronologically.
func CreateCommunication(ctx context.Context, db *sql.DB, c *models.Communication) error {
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now().UTC()
	}
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	c.ID = ulid.MustNew(ulid.Timestamp(c.Timestamp), entropy).String()

	participantsJSON, err := json.Marshal(c.Participants)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO communications (id, opportunity_id, type, subject, content, participants, timestamp, processed, insights)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, NULL)
	`, c.ID, c.OpportunityID.String(), c.Type, c.Subject, c.Content, string(participantsJSON), c.Timestamp)

	return wrapTransient(err)
}

func GetCommunication(ctx context.Context, db *sql.DB, id string) (*models.Communication, error) {
	c := &models.Communication{}
	var participantsJSON string
	var insightsJSON sql.NullString

	err := db.QueryRowContext(ctx, `
		SELECT id, opportunity_id, type, subject, content, participants, timestamp, processed, insights
		FROM communications WHERE id = ?
	`, id).Scan(&c.ID, &c.OpportunityID, &c.Type, &c.Subject, &c.Content, &participantsJSON, &c.Timestamp, &c.Processed, &insightsJSON)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("communication %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, wrapTransient(err)
	}

	if err := json.Unmarshal([]byte(participantsJSON), &c.Participants); err != nil {
		return nil, err
	}
	if insightsJSON.Valid {
		if err := json.Unmarshal([]byte(insightsJSON.String), &c.Insights); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// MarkCommunicationProcessed records the extracted insights and flips the
// processed flag. The transition is one-way; processing twice is rejected so
// insights are never folded into intelligence a second time.
func MarkCommunicationProcessed(ctx context.Context, db *sql.DB, id string, insights []string) error {
	return markProcessed(ctx, db, id, insights)
}

// execer is satisfied by both *sql.DB and *sql.Tx, so the processed
// transition can run inside the derived-state transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func markProcessed(ctx context.Context, ex execer, id string, insights []string) error {
	insightsJSON, err := json.Marshal(insights)
	if err != nil {
		return err
	}

	res, err := ex.ExecContext(ctx, `
		UPDATE communications SET processed = 1, insights = ?
		WHERE id = ? AND processed = 0
	`, string(insightsJSON), id)
	if err != nil {
		return wrapTransient(err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("communication %s is unknown or already processed: %w", id, ErrNotFound)
	}

	return nil
}

// ListCommunications returns the opportunity's communications most recent
// first, bounded by limit.
func ListCommunications(ctx context.Context, db *sql.DB, opportunityID uuid.UUID, limit int) ([]models.Communication, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, opportunity_id, type, subject, content, participants, timestamp, processed, insights
		FROM communications
		WHERE opportunity_id = ?
		ORDER BY timestamp DESC
		LIMIT ?
	`, opportunityID.String(), limit)
	if err != nil {
		return nil, wrapTransient(err)
	}
	defer rows.Close()

	var comms []models.Communication
	for rows.Next() {
		var c models.Communication
		var participantsJSON string
		var insightsJSON sql.NullString

		if err := rows.Scan(&c.ID, &c.OpportunityID, &c.Type, &c.Subject, &c.Content, &participantsJSON, &c.Timestamp, &c.Processed, &insightsJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(participantsJSON), &c.Participants); err != nil {
			return nil, err
		}
		if insightsJSON.Valid {
			if err := json.Unmarshal([]byte(insightsJSON.String), &c.Insights); err != nil {
				return nil, err
			}
		}

		comms = append(comms, c)
	}

	return comms, rows.Err()
}

// LatestCommunicationTime returns the timestamp of the most recent
// communication, or the zero time when none exist. Selecting the column
// directly rather than MAX() keeps the driver's DATETIME conversion.
func LatestCommunicationTime(ctx context.Context, db *sql.DB, opportunityID uuid.UUID) (time.Time, error) {
	var ts time.Time
	err := db.QueryRowContext(ctx, `
		SELECT timestamp FROM communications
		WHERE opportunity_id = ?
		ORDER BY timestamp DESC
		LIMIT 1
	`, opportunityID.String()).Scan(&ts)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, wrapTransient(err)
	}
	return ts, nil
}
