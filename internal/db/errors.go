package db

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/david/grant-tracker/internal/engage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes this store translates into the engage taxonomy.
const (
	pgUniqueViolation       = "23505"
	pgInsufficientPrivilege = "42501"
)

// mapError translates a pgx failure into the engage taxonomy so callers
// never branch on driver details. Unclassified errors pass through
// wrapped.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, engage.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w", op, engage.ErrDuplicate)
		case pgInsufficientPrivilege:
			return fmt.Errorf("%s: %w", op, engage.ErrPermission)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, engage.ErrTransient)
	}

	return fmt.Errorf("%s: %w", op, err)
}
