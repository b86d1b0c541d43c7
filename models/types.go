// ABOUTME: Data models for deal intelligence entities
// ABOUTME: Defines Opportunity, Stakeholder, and Communication structs
package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Opportunity struct {
	ID           uuid.UUID         `json:"id"`
	Name         string            `json:"name"`
	Counterparty string            `json:"counterparty"`
	Industry     string            `json:"industry,omitempty"`
	Stage        string            `json:"stage"`
	Value        int64             `json:"value,omitempty"` // in cents
	Currency     string            `json:"currency"`
	StageHistory []StageTransition `json:"stage_history"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

type StageTransition struct {
	From   string    `json:"from"`
	To     string    `json:"to"`
	At     time.Time `json:"at"`
	Reason string    `json:"reason,omitempty"`
}

type Stakeholder struct {
	ID            uuid.UUID `json:"id"`
	OpportunityID uuid.UUID `json:"opportunity_id"`
	Name          string    `json:"name"`
	Title         string    `json:"title,omitempty"`
	Email         string    `json:"email,omitempty"`
	Role          string    `json:"role"`
	Sentiment     string    `json:"sentiment"`
	KeyQuotes     []string  `json:"key_quotes,omitempty"`
	Concerns      []string  `json:"concerns,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Communication struct {
	ID            string    `json:"id"` // ULID, time-ordered
	OpportunityID uuid.UUID `json:"opportunity_id"`
	Type          string    `json:"type"`
	Subject       string    `json:"subject"`
	Content       string    `json:"content"`
	Participants  []string  `json:"participants,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	Processed     bool      `json:"processed"`
	Insights      []string  `json:"insights,omitempty"`
}

// Pipeline stages, in order. Advancing is strictly forward one step at a
// time; production is terminal.
const (
	StageLead        = "lead"
	StageTarget      = "target"
	StageDiscovery   = "discovery"
	StageContracting = "contracting"
	StageProduction  = "production"
)

// StageOrder lists the stages in pipeline order.
var StageOrder = []string{StageLead, StageTarget, StageDiscovery, StageContracting, StageProduction}

var (
	ErrInvalidStage  = errors.New("invalid stage")
	ErrTerminalStage = errors.New("opportunity is already at terminal stage")
)

// StageIndex returns the position of a stage in the pipeline, or -1.
func StageIndex(stage string) int {
	for i, s := range StageOrder {
		if s == stage {
			return i
		}
	}
	return -1
}

func IsValidStage(stage string) bool {
	return StageIndex(stage) >= 0
}

// NextStage returns the stage after the given one.
func NextStage(stage string) (string, error) {
	idx := StageIndex(stage)
	if idx < 0 {
		return "", fmt.Errorf("%w: %s", ErrInvalidStage, stage)
	}
	if idx == len(StageOrder)-1 {
		return "", fmt.Errorf("%w: %s", ErrTerminalStage, stage)
	}
	return StageOrder[idx+1], nil
}

// Advance moves the opportunity forward one stage, appending to StageHistory.
// Stage always equals the To of the last history entry.
func (o *Opportunity) Advance(reason string, at time.Time) error {
	next, err := NextStage(o.Stage)
	if err != nil {
		return err
	}
	o.StageHistory = append(o.StageHistory, StageTransition{
		From:   o.Stage,
		To:     next,
		At:     at,
		Reason: reason,
	})
	o.Stage = next
	o.UpdatedAt = at
	return nil
}

// Stakeholder role constants.
const (
	RoleChampion      = "champion"
	RoleDecisionMaker = "decision_maker"
	RoleEvaluator     = "evaluator"
	RoleBlocker       = "blocker"
	RoleUser          = "user"
)

// Sentiment constants.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Communication type constants.
const (
	CommMeeting = "meeting"
	CommCall    = "call"
	CommEmail   = "email"
	CommMessage = "message"
)

func IsValidRole(role string) bool {
	switch role {
	case RoleChampion, RoleDecisionMaker, RoleEvaluator, RoleBlocker, RoleUser:
		return true
	}
	return false
}

func IsValidSentiment(sentiment string) bool {
	switch sentiment {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

func IsValidCommType(commType string) bool {
	switch commType {
	case CommMeeting, CommCall, CommEmail, CommMessage:
		return true
	}
	return false
}
