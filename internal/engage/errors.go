package engage

import (
	"errors"
	"fmt"
)

// Error taxonomy for tracking mutations and assembly. Duplicate and
// NotFound are idempotence-class: the orchestrator absorbs them and
// reports success. Permission and Transient propagate and trigger a
// snapshot restore at the UI boundary.
var (
	ErrDuplicate  = errors.New("record already exists")
	ErrNotFound   = errors.New("record not found")
	ErrPermission = errors.New("permission denied")
	ErrTransient  = errors.New("store temporarily unavailable")
)

// AssemblyError marks a failed denormalization batch. It is a distinct
// signal from a legitimately empty result: callers must retry or surface
// it, never render it as "no data".
type AssemblyError struct {
	Stage string
	Err   error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("assembly failed at %s: %v", e.Stage, e.Err)
}

func (e *AssemblyError) Unwrap() error { return e.Err }

// ErrorKind maps an error to its wire name.
func ErrorKind(err error) string {
	var asmErr *AssemblyError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDuplicate):
		return "duplicate"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrPermission):
		return "permission"
	case errors.Is(err, ErrTransient):
		return "transient"
	case errors.As(err, &asmErr):
		return "assembly"
	}
	return "internal"
}
