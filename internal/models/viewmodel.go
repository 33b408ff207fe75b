package models

import (
	"time"

	"github.com/google/uuid"
)

// ViewModel is a denormalized, display-ready grant. It is assembled fresh
// from canonical rows, join rows and live counts on every read and never
// persisted.
type ViewModel struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"` // sanitized HTML
	Summary       string     `json:"summary"`     // plain text, for search
	FundingAmount string     `json:"funding_amount"`
	AmountValue   float64    `json:"amount_value"` // parsed upper bound, 0 if unknown
	GrantType     string     `json:"grant_type"`
	DueDate       *time.Time `json:"due_date"`

	OrganizationID   uuid.UUID `json:"organization_id"`
	OrganizationName string    `json:"organization_name"`
	OrganizationLogo string    `json:"organization_logo"`
	OrganizationSlug string    `json:"organization_slug"`

	Categories []string `json:"categories"`
	Locations  []string `json:"locations"`

	// Live aggregate: distinct savers across all actors, independent of
	// the requesting actor's own state.
	SaveCount int `json:"save_count"`

	// Tracking metadata merged in from the base record, if any.
	SavedAt           *time.Time `json:"saved_at,omitempty"`
	AppliedAt         *time.Time `json:"applied_at,omitempty"`
	ApplicationStatus string     `json:"application_status,omitempty"`
	AwardedAt         *time.Time `json:"awarded_at,omitempty"`
	AwardAmount       *float64   `json:"award_amount,omitempty"`
	TrackingNotes     string     `json:"tracking_notes,omitempty"`
}
