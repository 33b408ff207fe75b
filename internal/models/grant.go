package models

import (
	"time"

	"github.com/google/uuid"
)

// Grant is the canonical funding-opportunity record, independent of any
// actor's tracking state.
type Grant struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"` // Full HTML description
	FundingAmount  string     `json:"funding_amount"`
	GrantType      string     `json:"grant_type"`
	DueDate        *time.Time `json:"due_date"` // nil = rolling/ongoing
	OrganizationID uuid.UUID  `json:"organization_id"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Organization is a funder or applicant entity.
type Organization struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"image_url"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

type Category struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type Location struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// GrantTag is a resolved join row: one tag name attached to one grant.
// Both category and location joins are fetched in this shape.
type GrantTag struct {
	GrantID uuid.UUID `json:"grant_id"`
	Name    string    `json:"name"`
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
