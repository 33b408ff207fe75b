package listing

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Filter is the one fixed filter shape: fields are ANDed together, values
// inside a multi-select field are ORed. Empty fields match everything.
type Filter struct {
	Search     string              `json:"search"`
	Selections map[string][]string `json:"selections"` // multi-select field -> selected names
	Scalars    map[string]string   `json:"scalars"`    // scalar field -> exact value
	Status     Status              `json:"status"`     // derived from due date, "" = any
}

// Config binds a view's filterable fields to extractors over T. A config is
// fixed per entity type and validated against the view registry at startup,
// so evaluation never dispatches on runtime shape and never throws.
type Config[T any] struct {
	View       string
	SearchText func(T) []string
	NameSets   map[string]func(T) []string
	Scalars    map[string]func(T) string
	DueDate    func(T) *time.Time // nil when the view has no status/due-date semantics
	Name       func(T) string
	Amount     func(T) float64
}

// Validate checks the config against its registry entry: every declared
// field must have an extractor and no extractor may be undeclared.
func (c Config[T]) Validate(reg *Registry) error {
	view, err := reg.View(c.View)
	if err != nil {
		return err
	}

	if len(view.SearchFields) > 0 && c.SearchText == nil {
		return fmt.Errorf("view %s: search fields declared but no search extractor", c.View)
	}
	for _, field := range view.MultiSelect {
		if _, ok := c.NameSets[field]; !ok {
			return fmt.Errorf("view %s: multi-select field %q has no extractor", c.View, field)
		}
	}
	for field := range c.NameSets {
		if !contains(view.MultiSelect, field) {
			return fmt.Errorf("view %s: extractor for undeclared multi-select field %q", c.View, field)
		}
	}
	for _, field := range view.Scalar {
		if _, ok := c.Scalars[field]; !ok {
			return fmt.Errorf("view %s: scalar field %q has no extractor", c.View, field)
		}
	}
	for field := range c.Scalars {
		if !contains(view.Scalar, field) {
			return fmt.Errorf("view %s: extractor for undeclared scalar field %q", c.View, field)
		}
	}
	if view.StatusField && c.DueDate == nil {
		return fmt.Errorf("view %s: status filtering declared but no due-date extractor", c.View)
	}

	return nil
}

// Check rejects filters referencing fields the config does not know, so a
// bad filter is an error up front rather than a predicate failure mid-scan.
func (c Config[T]) Check(f Filter) error {
	for field := range f.Selections {
		if _, ok := c.NameSets[field]; !ok {
			return fmt.Errorf("view %s: unknown multi-select field %q", c.View, field)
		}
	}
	for field := range f.Scalars {
		if _, ok := c.Scalars[field]; !ok {
			return fmt.Errorf("view %s: unknown scalar field %q", c.View, field)
		}
	}
	if f.Status != "" {
		if c.DueDate == nil {
			return fmt.Errorf("view %s: status filter unsupported", c.View)
		}
		switch f.Status {
		case StatusOpen, StatusRolling, StatusClosed:
		default:
			return fmt.Errorf("view %s: unknown status %q", c.View, f.Status)
		}
	}
	return nil
}

// Apply reduces items to those matching every populated filter field. It
// always operates on the full collection and returns a new slice.
func Apply[T any](items []T, cfg Config[T], f Filter, now time.Time) ([]T, error) {
	if err := cfg.Check(f); err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]T, 0, len(items))

	for _, item := range items {
		if search != "" && !matchesSearch(item, cfg, search) {
			continue
		}
		if !matchesSelections(item, cfg, f.Selections) {
			continue
		}
		if !matchesScalars(item, cfg, f.Scalars) {
			continue
		}
		if f.Status != "" && !DeriveStatuses(cfg.DueDate(item), now).Has(f.Status) {
			continue
		}
		out = append(out, item)
	}

	return out, nil
}

func matchesSearch[T any](item T, cfg Config[T], search string) bool {
	for _, text := range cfg.SearchText(item) {
		if strings.Contains(strings.ToLower(text), search) {
			return true
		}
	}
	return false
}

func matchesSelections[T any](item T, cfg Config[T], selections map[string][]string) bool {
	for field, selected := range selections {
		if len(selected) == 0 {
			continue
		}
		if !intersectsFold(cfg.NameSets[field](item), selected) {
			return false
		}
	}
	return true
}

func matchesScalars[T any](item T, cfg Config[T], scalars map[string]string) bool {
	for field, want := range scalars {
		if want == "" {
			continue
		}
		if !strings.EqualFold(cfg.Scalars[field](item), want) {
			return false
		}
	}
	return true
}

// intersectsFold reports whether the two name sets share at least one
// member, case-insensitively.
func intersectsFold(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(w)) {
				return true
			}
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// Sort criteria names. Records with no due date sort as if their due date
// were the maximum representable date: last ascending, first descending.
const (
	SortDueDateAsc  = "due_date_asc"
	SortDueDateDesc = "due_date_desc"
	SortAmountAsc   = "amount_asc"
	SortAmountDesc  = "amount_desc"
	SortNameAsc     = "name_asc"
	SortNameDesc    = "name_desc"
)

var maxDueDate = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)

// Sort returns a stably ordered copy of items under the named criterion.
func Sort[T any](items []T, cfg Config[T], criterion string) ([]T, error) {
	out := make([]T, len(items))
	copy(out, items)

	var less func(a, b T) bool
	switch criterion {
	case "", SortDueDateAsc:
		less = func(a, b T) bool { return dueOrMax(cfg, a).Before(dueOrMax(cfg, b)) }
	case SortDueDateDesc:
		less = func(a, b T) bool { return dueOrMax(cfg, b).Before(dueOrMax(cfg, a)) }
	case SortAmountAsc:
		less = func(a, b T) bool { return cfg.Amount(a) < cfg.Amount(b) }
	case SortAmountDesc:
		less = func(a, b T) bool { return cfg.Amount(b) < cfg.Amount(a) }
	case SortNameAsc:
		less = func(a, b T) bool {
			return strings.ToLower(cfg.Name(a)) < strings.ToLower(cfg.Name(b))
		}
	case SortNameDesc:
		less = func(a, b T) bool {
			return strings.ToLower(cfg.Name(b)) < strings.ToLower(cfg.Name(a))
		}
	default:
		return nil, fmt.Errorf("view %s: unknown sort criterion %q", cfg.View, criterion)
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out, nil
}

func dueOrMax[T any](cfg Config[T], item T) time.Time {
	if cfg.DueDate == nil {
		return maxDueDate
	}
	if due := cfg.DueDate(item); due != nil {
		return *due
	}
	return maxDueDate
}

// Page is one window of a filtered, sorted collection plus its totals.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// Paginate slices items into a 1-indexed page. Out-of-range page numbers
// are clamped to the nearest valid page rather than treated as errors.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if pageSize < 1 {
		pageSize = 1
	}

	totalCount := len(items)
	totalPages := (totalCount + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}

	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > totalCount {
		start = totalCount
	}
	if end > totalCount {
		end = totalCount
	}

	return Page[T]{
		Items:      items[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}
