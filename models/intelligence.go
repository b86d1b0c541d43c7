// ABOUTME: Intelligence data model with seven categorized fact collections
// ABOUTME: Each extracted item carries provenance back to its source communication
package models

import (
	"time"

	"github.com/google/uuid"
)

// Intelligence holds the structured facts extracted from an opportunity's
// communications. Version increases monotonically on every fold so derived
// artifacts can detect staleness.
type Intelligence struct {
	OpportunityID    uuid.UUID            `json:"opportunity_id"`
	PainPoints       PainPointIntel       `json:"pain_points"`
	Maturity         MaturityIntel        `json:"maturity"`
	BudgetTimeline   BudgetTimelineIntel  `json:"budget_timeline"`
	StakeholderIntel StakeholderIntel     `json:"stakeholder_intel"`
	TechRequirements TechRequirementIntel `json:"technical_requirements"`
	UseCase          UseCaseIntel         `json:"use_case"`
	Competitive      CompetitiveIntel     `json:"competitive"`
	Version          int64                `json:"version"`
}

// Signal is a raw insight string with provenance.
type Signal struct {
	Text        string    `json:"text"`
	Source      string    `json:"source"` // communication id
	ExtractedAt time.Time `json:"extracted_at"`
}

type PainPoint struct {
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Severity    string    `json:"severity"`
	Source      string    `json:"source"`
	ExtractedAt time.Time `json:"extracted_at"`
}

type PainPointIntel struct {
	Items     []PainPoint `json:"items,omitempty"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type MaturityIntel struct {
	Stage              string    `json:"stage,omitempty"`
	PriorAttempts      []string  `json:"prior_attempts,omitempty"`
	InternalCapability string    `json:"internal_capability,omitempty"`
	TimelineUrgency    string    `json:"timeline_urgency,omitempty"`
	Signals            []Signal  `json:"signals,omitempty"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type BudgetTimelineIntel struct {
	BudgetConfirmed bool      `json:"budget_confirmed"`
	Signals         []Signal  `json:"signals,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type StakeholderMention struct {
	Name        string    `json:"name"`
	Role        string    `json:"role,omitempty"`
	Source      string    `json:"source"`
	ExtractedAt time.Time `json:"extracted_at"`
}

type StakeholderIntel struct {
	Mentions  []StakeholderMention `json:"mentions,omitempty"`
	UpdatedAt time.Time            `json:"updated_at"`
}

type TechRequirement struct {
	Category    string    `json:"category"`
	Requirement string    `json:"requirement"`
	Priority    string    `json:"priority"`
	Source      string    `json:"source"`
	ExtractedAt time.Time `json:"extracted_at"`
}

type TechRequirementIntel struct {
	Items     []TechRequirement `json:"items,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type UseCaseIntel struct {
	Clarity           string    `json:"clarity,omitempty"`
	SecondaryUseCases []string  `json:"secondary_use_cases,omitempty"`
	Signals           []Signal  `json:"signals,omitempty"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type CompetitiveIntel struct {
	Competitors         []string  `json:"competitors,omitempty"`
	PriorVendorFailures []string  `json:"prior_vendor_failures,omitempty"`
	Differentiators     []string  `json:"differentiators,omitempty"`
	Signals             []Signal  `json:"signals,omitempty"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Severity constants for pain points and technical requirement priorities.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// Timeline urgency tags.
const (
	UrgencyImmediate = "immediate"
	UrgencyNearTerm  = "near_term"
	UrgencyThisYear  = "this_year"
	UrgencyUnknown   = "unknown"
)

// Use-case clarity tags.
const (
	ClarityClear     = "clear"
	ClarityEmerging  = "emerging"
	ClarityExploring = "exploring"
	ClarityUnknown   = "unknown"
)

// NewIntelligence returns the empty seven-category record every opportunity
// starts with.
func NewIntelligence(opportunityID uuid.UUID) *Intelligence {
	return &Intelligence{
		OpportunityID: opportunityID,
		Maturity:      MaturityIntel{TimelineUrgency: UrgencyUnknown},
		UseCase:       UseCaseIntel{Clarity: ClarityUnknown},
		Version:       0,
	}
}
