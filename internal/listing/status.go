package listing

import "time"

// Status is derived from a grant's due date at evaluation time; it is
// never stored on the record.
type Status string

const (
	StatusOpen    Status = "open"
	StatusRolling Status = "rolling"
	StatusClosed  Status = "closed"
)

// StatusSet holds the statuses a record satisfies at a point in time. A
// record with no due date is both open and rolling; the overlap is
// intentional.
type StatusSet struct {
	Open    bool
	Rolling bool
	Closed  bool
}

func (s StatusSet) Has(status Status) bool {
	switch status {
	case StatusOpen:
		return s.Open
	case StatusRolling:
		return s.Rolling
	case StatusClosed:
		return s.Closed
	}
	return false
}

// DeriveStatuses evaluates a due date against the current date normalized
// to midnight UTC. Open: no due date, or due date on or after today.
// Rolling: no due date. Closed: due date before today.
func DeriveStatuses(dueDate *time.Time, now time.Time) StatusSet {
	if dueDate == nil {
		return StatusSet{Open: true, Rolling: true}
	}

	today := midnight(now)
	due := midnight(*dueDate)

	if due.Before(today) {
		return StatusSet{Closed: true}
	}
	return StatusSet{Open: true}
}

func midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
