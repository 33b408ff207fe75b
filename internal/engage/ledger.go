package engage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/david/grant-tracker/internal/models"
	"github.com/google/uuid"
)

// Tracked section names.
const (
	SectionSaved        = "saved"
	SectionApplications = "applications"
	SectionReceived     = "received"
)

// Ledger owns the three tracked collections and the rules governing
// membership in each, per (grant, scope). The store's uniqueness
// constraints are the correctness mechanism under concurrent mutation;
// the ledger only shapes the views and absorbs idempotence-class errors
// where the contract calls for a no-op.
type Ledger struct {
	gw  Gateway
	asm *Assembler
}

func NewLedger(gw Gateway, asm *Assembler) *Ledger {
	return &Ledger{gw: gw, asm: asm}
}

// TrackedSection fetches and denormalizes one tracked collection. The
// saved section is a computed set difference: saved records minus grants
// with an active application in the scope. Nothing is deleted to produce
// it, so un-applying restores the original save untouched.
func (l *Ledger) TrackedSection(ctx context.Context, section string, actorID uuid.UUID, scope models.Scope) ([]models.ViewModel, error) {
	base, err := l.sectionRecords(ctx, section, actorID, scope)
	if err != nil {
		return nil, err
	}
	return l.asm.Assemble(ctx, base)
}

func (l *Ledger) sectionRecords(ctx context.Context, section string, actorID uuid.UUID, scope models.Scope) ([]models.BaseRecord, error) {
	switch section {
	case SectionSaved:
		saved, err := l.gw.SavedByActor(ctx, actorID)
		if err != nil {
			return nil, err
		}
		apps, err := l.gw.ApplicationsByScope(ctx, scope)
		if err != nil {
			return nil, err
		}
		applied := make(map[uuid.UUID]bool, len(apps))
		for _, app := range apps {
			applied[app.GrantID] = true
		}

		base := make([]models.BaseRecord, 0, len(saved))
		for _, rec := range saved {
			if applied[rec.GrantID] {
				continue
			}
			base = append(base, rec)
		}
		return base, nil

	case SectionApplications:
		apps, err := l.gw.ApplicationsByScope(ctx, scope)
		if err != nil {
			return nil, err
		}
		base := make([]models.BaseRecord, 0, len(apps))
		for _, rec := range apps {
			base = append(base, rec)
		}
		return base, nil

	case SectionReceived:
		awards, err := l.gw.AwardsByScope(ctx, scope)
		if err != nil {
			return nil, err
		}
		base := make([]models.BaseRecord, 0, len(awards))
		for _, rec := range awards {
			base = append(base, rec)
		}
		return base, nil
	}

	return nil, fmt.Errorf("unknown tracked section %q", section)
}

// Save bookmarks a grant for an actor. Saving an already saved grant is a
// no-op, not an error.
func (l *Ledger) Save(ctx context.Context, grantID, actorID uuid.UUID) error {
	err := l.gw.InsertSaved(ctx, grantID, actorID)
	if errors.Is(err, ErrDuplicate) {
		return nil
	}
	return err
}

// Unsave removes a bookmark; absent records are a no-op.
func (l *Ledger) Unsave(ctx context.Context, grantID, actorID uuid.UUID) error {
	err := l.gw.DeleteSaved(ctx, grantID, actorID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// MarkApplied records an application for (grant, scope). Returns
// ErrDuplicate when one already exists; losing an insert race to another
// session of the same scope degrades to the same error.
func (l *Ledger) MarkApplied(ctx context.Context, grantID uuid.UUID, scope models.Scope, notes string) error {
	return l.gw.InsertApplication(ctx, models.ApplicationRecord{
		GrantID:   grantID,
		Scope:     scope,
		Status:    "applied",
		Notes:     notes,
		AppliedAt: time.Now().UTC(),
	})
}

// RemoveApplication deletes the application for (grant, scope). The saved
// view is a set difference, so the grant reappears there automatically
// when the underlying save survives; when it does not (the grant was
// applied to directly, never saved), a SavedRecord is created so the
// grant stays reachable.
func (l *Ledger) RemoveApplication(ctx context.Context, grantID, actorID uuid.UUID, scope models.Scope) error {
	err := l.gw.DeleteApplication(ctx, grantID, scope)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	if err := l.gw.InsertSaved(ctx, grantID, actorID); err != nil && !errors.Is(err, ErrDuplicate) {
		return err
	}
	return nil
}

// MarkReceived records an award for (grant, scope). Allowed from any
// prior state; returns ErrDuplicate when one already exists.
func (l *Ledger) MarkReceived(ctx context.Context, grantID uuid.UUID, scope models.Scope, amount float64, notes string) error {
	return l.gw.InsertAward(ctx, models.AwardRecord{
		GrantID:   grantID,
		Scope:     scope,
		Amount:    amount,
		Notes:     notes,
		AwardedAt: time.Now().UTC(),
	})
}

// RemoveAward deletes the award for (grant, scope); absent records are a
// no-op.
func (l *Ledger) RemoveAward(ctx context.Context, grantID uuid.UUID, scope models.Scope) error {
	err := l.gw.DeleteAward(ctx, grantID, scope)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
