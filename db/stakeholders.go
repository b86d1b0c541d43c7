// ABOUTME: Stakeholder database operations
// ABOUTME: Stakeholders are owned by exactly one opportunity and mutated in place
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

func CreateStakeholder(ctx context.Context, db *sql.DB, s *models.Stakeholder) error {
	s.ID = uuid.New()
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now

	if s.Sentiment == "" {
		s.Sentiment = models.SentimentNeutral
	}

	quotesJSON, err := json.Marshal(s.KeyQuotes)
	if err != nil {
		return err
	}
	concernsJSON, err := json.Marshal(s.Concerns)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO stakeholders (id, opportunity_id, name, title, email, role, sentiment, key_quotes, concerns, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID.String(), s.OpportunityID.String(), s.Name, s.Title, s.Email, s.Role, s.Sentiment, string(quotesJSON), string(concernsJSON), s.CreatedAt, s.UpdatedAt)

	return wrapTransient(err)
}

func GetStakeholder(ctx context.Context, db *sql.DB, id uuid.UUID) (*models.Stakeholder, error) {
	s := &models.Stakeholder{}
	var title, email sql.NullString
	var quotesJSON, concernsJSON string

	err := db.QueryRowContext(ctx, `
		SELECT id, opportunity_id, name, title, email, role, sentiment, key_quotes, concerns, created_at, updated_at
		FROM stakeholders WHERE id = ?
	`, id.String()).Scan(&s.ID, &s.OpportunityID, &s.Name, &title, &email, &s.Role, &s.Sentiment, &quotesJSON, &concernsJSON, &s.CreatedAt, &s.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("stakeholder %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, wrapTransient(err)
	}

	if title.Valid {
		s.Title = title.String
	}
	if email.Valid {
		s.Email = email.String
	}
	if err := json.Unmarshal([]byte(quotesJSON), &s.KeyQuotes); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(concernsJSON), &s.Concerns); err != nil {
		return nil, err
	}

	return s, nil
}

func UpdateStakeholder(ctx context.Context, db *sql.DB, s *models.Stakeholder) error {
	s.UpdatedAt = time.Now().UTC()

	quotesJSON, err := json.Marshal(s.KeyQuotes)
	if err != nil {
		return err
	}
	concernsJSON, err := json.Marshal(s.Concerns)
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx, `
		UPDATE stakeholders
		SET name = ?, title = ?, email = ?, role = ?, sentiment = ?, key_quotes = ?, concerns = ?, updated_at = ?
		WHERE id = ?
	`, s.Name, s.Title, s.Email, s.Role, s.Sentiment, string(quotesJSON), string(concernsJSON), s.UpdatedAt, s.ID.String())
	if err != nil {
		return wrapTransient(err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("stakeholder %s: %w", s.ID, ErrNotFound)
	}

	return nil
}

func ListStakeholders(ctx context.Context, db *sql.DB, opportunityID uuid.UUID) ([]models.Stakeholder, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, opportunity_id, name, title, email, role, sentiment, key_quotes, concerns, created_at, updated_at
		FROM stakeholders
		WHERE opportunity_id = ?
		ORDER BY created_at ASC
	`, opportunityID.String())
	if err != nil {
		return nil, wrapTransient(err)
	}
	defer rows.Close()

	var stakeholders []models.Stakeholder
	for rows.Next() {
		var s models.Stakeholder
		var title, email sql.NullString
		var quotesJSON, concernsJSON string

		if err := rows.Scan(&s.ID, &s.OpportunityID, &s.Name, &title, &email, &s.Role, &s.Sentiment, &quotesJSON, &concernsJSON, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		if title.Valid {
			s.Title = title.String
		}
		if email.Valid {
			s.Email = email.String
		}
		if err := json.Unmarshal([]byte(quotesJSON), &s.KeyQuotes); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(concernsJSON), &s.Concerns); err != nil {
			return nil, err
		}

		stakeholders = append(stakeholders, s)
	}

	return stakeholders, rows.Err()
}
