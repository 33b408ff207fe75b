package models

import (
	"time"

	"github.com/google/uuid"
)

// ScopeKind distinguishes individual from organization ownership.
type ScopeKind string

const (
	ScopeIndividual   ScopeKind = "individual"
	ScopeOrganization ScopeKind = "organization"
)

// Scope is the ownership unit for application and award records. It is
// resolved once per operation and passed explicitly through every
// subsequent call.
type Scope struct {
	Kind ScopeKind `json:"kind"`
	ID   uuid.UUID `json:"id"`
}

func IndividualScope(actorID uuid.UUID) Scope {
	return Scope{Kind: ScopeIndividual, ID: actorID}
}

func OrganizationScope(orgID uuid.UUID) Scope {
	return Scope{Kind: ScopeOrganization, ID: orgID}
}

// BaseRecord identifies which grant is tracked and carries the tracking
// relationship's own metadata. Decorate merges that metadata into an
// assembled ViewModel.
type BaseRecord interface {
	BaseGrantID() uuid.UUID
	Decorate(vm *ViewModel)
}

// CatalogRecord wraps a grant with no tracking relationship. The public
// catalog assembles through it so every listing shares one pipeline.
type CatalogRecord struct {
	GrantID uuid.UUID `json:"grant_id"`
}

func (r CatalogRecord) BaseGrantID() uuid.UUID { return r.GrantID }

func (r CatalogRecord) Decorate(vm *ViewModel) {}

// SavedRecord marks a grant bookmarked by one actor. At most one exists
// per (grant, actor).
type SavedRecord struct {
	GrantID   uuid.UUID `json:"grant_id"`
	ActorID   uuid.UUID `json:"actor_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (r SavedRecord) BaseGrantID() uuid.UUID { return r.GrantID }

func (r SavedRecord) Decorate(vm *ViewModel) {
	t := r.CreatedAt
	vm.SavedAt = &t
}

// ApplicationRecord marks a grant applied to under a scope. At most one
// exists per (grant, scope), enforced by the store.
type ApplicationRecord struct {
	GrantID   uuid.UUID `json:"grant_id"`
	Scope     Scope     `json:"scope"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes"`
	AppliedAt time.Time `json:"applied_at"`
}

func (r ApplicationRecord) BaseGrantID() uuid.UUID { return r.GrantID }

func (r ApplicationRecord) Decorate(vm *ViewModel) {
	t := r.AppliedAt
	vm.AppliedAt = &t
	vm.ApplicationStatus = r.Status
	vm.TrackingNotes = r.Notes
}

// AwardRecord marks a grant received under a scope. At most one exists
// per (grant, scope), enforced by the store.
type AwardRecord struct {
	GrantID   uuid.UUID `json:"grant_id"`
	Scope     Scope     `json:"scope"`
	Amount    float64   `json:"amount"`
	Notes     string    `json:"notes"`
	AwardedAt time.Time `json:"awarded_at"`
}

func (r AwardRecord) BaseGrantID() uuid.UUID { return r.GrantID }

func (r AwardRecord) Decorate(vm *ViewModel) {
	t := r.AwardedAt
	vm.AwardedAt = &t
	amount := r.Amount
	vm.AwardAmount = &amount
	vm.TrackingNotes = r.Notes
}
