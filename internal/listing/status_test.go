package listing

import (
	"testing"
	"time"
)

func TestDeriveStatuses_NoDueDateIsOpenAndRolling(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	set := DeriveStatuses(nil, now)
	if !set.Open || !set.Rolling {
		t.Fatalf("expected open and rolling, got %+v", set)
	}
	if set.Closed {
		t.Fatal("no due date must never be closed")
	}
}

func TestDeriveStatuses_PastDueDateIsClosedOnly(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	yesterday := time.Date(2026, 3, 9, 23, 59, 0, 0, time.UTC)

	set := DeriveStatuses(&yesterday, now)
	if !set.Closed || set.Open || set.Rolling {
		t.Fatalf("expected closed only, got %+v", set)
	}
}

func TestDeriveStatuses_DueTodayIsOpenOnly(t *testing.T) {
	// Evaluation normalizes to midnight: a deadline earlier today still
	// counts as open for the whole day.
	now := time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC)
	today := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	set := DeriveStatuses(&today, now)
	if !set.Open || set.Rolling || set.Closed {
		t.Fatalf("expected open only, got %+v", set)
	}
}

func TestDeriveStatuses_FutureDueDateIsOpen(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	future := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	set := DeriveStatuses(&future, now)
	if !set.Open || set.Rolling || set.Closed {
		t.Fatalf("expected open only, got %+v", set)
	}
}
