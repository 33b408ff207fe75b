package engage

import (
	"context"
	"errors"
	"fmt"

	"github.com/david/grant-tracker/internal/models"
	"github.com/google/uuid"
)

// Action names accepted by the orchestrator.
type Action string

const (
	ActionSave      Action = "save"
	ActionUnsave    Action = "unsave"
	ActionApply     Action = "apply"
	ActionUnapply   Action = "unapply"
	ActionReceive   Action = "receive"
	ActionUnreceive Action = "unreceive"
)

// ActionExtra carries the optional payload of a tracking action.
type ActionExtra struct {
	Notes  string  `json:"notes"`
	Amount float64 `json:"amount"`
}

// ActionResult reports the outcome of a tracking action together with the
// affected section. On failure Section holds the pre-mutation snapshot so
// the UI can restore exactly what it showed before the call; on success
// it is re-derived through assembly, never hand-patched.
type ActionResult struct {
	Success bool               `json:"success"`
	Error   string             `json:"error,omitempty"`
	Section []models.ViewModel `json:"section"`
}

// Orchestrator executes tracking state transitions against the ledger.
type Orchestrator struct {
	ledger *Ledger
}

func NewOrchestrator(ledger *Ledger) *Orchestrator {
	return &Orchestrator{ledger: ledger}
}

// SectionFor names the tracked section an action's record type lives in.
func SectionFor(action Action) (string, error) {
	switch action {
	case ActionSave, ActionUnsave:
		return SectionSaved, nil
	case ActionApply, ActionUnapply:
		return SectionApplications, nil
	case ActionReceive, ActionUnreceive:
		return SectionReceived, nil
	}
	return "", fmt.Errorf("unknown action %q", action)
}

// Perform runs one state transition. The scope must already be resolved
// by the caller — it is never re-derived here. Idempotence-class errors
// (duplicate insert, delete of an absent record) count as success; all
// others return the snapshot alongside the error.
func (o *Orchestrator) Perform(ctx context.Context, action Action, grantID, actorID uuid.UUID, scope models.Scope, extra ActionExtra) (ActionResult, error) {
	section, err := SectionFor(action)
	if err != nil {
		return ActionResult{Error: ErrorKind(err)}, err
	}

	snapshot, err := o.ledger.TrackedSection(ctx, section, actorID, scope)
	if err != nil {
		return ActionResult{Error: ErrorKind(err)}, err
	}

	err = o.mutate(ctx, action, grantID, actorID, scope, extra)
	if errors.Is(err, ErrDuplicate) || errors.Is(err, ErrNotFound) {
		err = nil
	}
	if err != nil {
		return ActionResult{Error: ErrorKind(err), Section: snapshot}, err
	}

	// Re-derive from the store rather than patching the snapshot: another
	// session may have mutated tracking state while this call ran.
	refreshed, err := o.ledger.TrackedSection(ctx, section, actorID, scope)
	if err != nil {
		return ActionResult{Success: true, Error: ErrorKind(err), Section: snapshot}, err
	}

	return ActionResult{Success: true, Section: refreshed}, nil
}

func (o *Orchestrator) mutate(ctx context.Context, action Action, grantID, actorID uuid.UUID, scope models.Scope, extra ActionExtra) error {
	switch action {
	case ActionSave:
		return o.ledger.Save(ctx, grantID, actorID)
	case ActionUnsave:
		return o.ledger.Unsave(ctx, grantID, actorID)
	case ActionApply:
		return o.ledger.MarkApplied(ctx, grantID, scope, extra.Notes)
	case ActionUnapply:
		return o.ledger.RemoveApplication(ctx, grantID, actorID, scope)
	case ActionReceive:
		return o.ledger.MarkReceived(ctx, grantID, scope, extra.Amount, extra.Notes)
	case ActionUnreceive:
		return o.ledger.RemoveAward(ctx, grantID, scope)
	}
	return fmt.Errorf("unknown action %q", action)
}
