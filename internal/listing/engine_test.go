package listing

import (
	"testing"
	"time"
)

type testGrant struct {
	Title      string
	Summary    string
	Funder     string
	Categories []string
	Locations  []string
	GrantType  string
	Amount     float64
	DueDate    *time.Time
}

func testConfig() Config[testGrant] {
	return Config[testGrant]{
		View: "grants",
		SearchText: func(g testGrant) []string {
			out := []string{g.Title, g.Summary, g.Funder}
			return append(out, g.Categories...)
		},
		NameSets: map[string]func(testGrant) []string{
			"categories": func(g testGrant) []string { return g.Categories },
			"locations":  func(g testGrant) []string { return g.Locations },
		},
		Scalars: map[string]func(testGrant) string{
			"grant_type": func(g testGrant) string { return g.GrantType },
		},
		DueDate: func(g testGrant) *time.Time { return g.DueDate },
		Name:    func(g testGrant) string { return g.Title },
		Amount:  func(g testGrant) float64 { return g.Amount },
	}
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

var testNow = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

func TestApply_MultiSelectORWithinField(t *testing.T) {
	items := []testGrant{
		{Title: "A", Categories: []string{"Health"}},
		{Title: "B", Categories: []string{"Environment"}},
		{Title: "C", Categories: []string{"Education", "Arts"}},
	}

	got, err := Apply(items, testConfig(), Filter{
		Selections: map[string][]string{"categories": {"Health", "Education"}},
	}, testNow)
	if err != nil {
		t.Fatal(err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].Title != "A" || got[1].Title != "C" {
		t.Fatalf("expected A and C, got %s and %s", got[0].Title, got[1].Title)
	}
}

func TestApply_CrossFieldAND(t *testing.T) {
	items := []testGrant{
		{Title: "A", Categories: []string{"Health"}, Locations: []string{"Oakland"}},
		{Title: "B", Categories: []string{"Health"}, Locations: []string{"Denver"}},
	}

	got, err := Apply(items, testConfig(), Filter{
		Selections: map[string][]string{
			"categories": {"Health"},
			"locations":  {"Oakland"},
		},
	}, testNow)
	if err != nil {
		t.Fatal(err)
	}

	if len(got) != 1 || got[0].Title != "A" {
		t.Fatalf("expected only A, got %v", got)
	}
}

func TestApply_EmptySelectionMatchesEverything(t *testing.T) {
	items := []testGrant{{Title: "A"}, {Title: "B"}}

	got, err := Apply(items, testConfig(), Filter{
		Selections: map[string][]string{"categories": {}},
	}, testNow)
	if err != nil {
		t.Fatal(err)
	}

	if len(got) != 2 {
		t.Fatalf("expected all items, got %d", len(got))
	}
}

func TestApply_SearchIsCaseInsensitiveSubstring(t *testing.T) {
	items := []testGrant{
		{Title: "Community Health Initiative"},
		{Title: "Arts Fellowship", Summary: "supports HEALTH education"},
		{Title: "Bridge Repair"},
	}

	got, err := Apply(items, testConfig(), Filter{Search: "health"}, testNow)
	if err != nil {
		t.Fatal(err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
}

func TestApply_ScalarExactMatch(t *testing.T) {
	items := []testGrant{
		{Title: "A", GrantType: "federal"},
		{Title: "B", GrantType: "foundation"},
	}

	got, err := Apply(items, testConfig(), Filter{
		Scalars: map[string]string{"grant_type": "foundation"},
	}, testNow)
	if err != nil {
		t.Fatal(err)
	}

	if len(got) != 1 || got[0].Title != "B" {
		t.Fatalf("expected only B, got %v", got)
	}
}

func TestApply_UnknownFieldRejected(t *testing.T) {
	_, err := Apply([]testGrant{}, testConfig(), Filter{
		Selections: map[string][]string{"eligibility": {"nonprofit"}},
	}, testNow)
	if err == nil {
		t.Fatal("expected error for unknown multi-select field")
	}
}

func TestApply_StatusFilter(t *testing.T) {
	items := []testGrant{
		{Title: "NoDue"},
		{Title: "Yesterday", DueDate: datePtr(2026, 3, 9)},
		{Title: "Today", DueDate: datePtr(2026, 3, 10)},
		{Title: "NextWeek", DueDate: datePtr(2026, 3, 17)},
	}
	cfg := testConfig()

	open, err := Apply(items, cfg, Filter{Status: StatusOpen}, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if len(open) != 3 {
		t.Fatalf("expected 3 open, got %d", len(open))
	}

	rolling, err := Apply(items, cfg, Filter{Status: StatusRolling}, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if len(rolling) != 1 || rolling[0].Title != "NoDue" {
		t.Fatalf("expected only NoDue rolling, got %v", rolling)
	}

	closed, err := Apply(items, cfg, Filter{Status: StatusClosed}, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if len(closed) != 1 || closed[0].Title != "Yesterday" {
		t.Fatalf("expected only Yesterday closed, got %v", closed)
	}
}

func TestSort_NilDueDateSortsAsMaxDate(t *testing.T) {
	items := []testGrant{
		{Title: "Rolling"},
		{Title: "Soon", DueDate: datePtr(2026, 4, 1)},
		{Title: "Later", DueDate: datePtr(2026, 8, 1)},
	}
	cfg := testConfig()

	asc, err := Sort(items, cfg, SortDueDateAsc)
	if err != nil {
		t.Fatal(err)
	}
	if asc[0].Title != "Soon" || asc[2].Title != "Rolling" {
		t.Fatalf("ascending: expected Soon first and Rolling last, got %v", titles(asc))
	}

	desc, err := Sort(items, cfg, SortDueDateDesc)
	if err != nil {
		t.Fatal(err)
	}
	if desc[0].Title != "Rolling" {
		t.Fatalf("descending: expected Rolling first, got %v", titles(desc))
	}
}

func TestSort_IsStable(t *testing.T) {
	due := datePtr(2026, 5, 1)
	items := []testGrant{
		{Title: "First", DueDate: due},
		{Title: "Second", DueDate: due},
		{Title: "Third", DueDate: due},
	}

	got, err := Sort(items, testConfig(), SortDueDateAsc)
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Title != "First" || got[1].Title != "Second" || got[2].Title != "Third" {
		t.Fatalf("equal keys must keep input order, got %v", titles(got))
	}
}

func TestSort_AmountAndName(t *testing.T) {
	items := []testGrant{
		{Title: "b", Amount: 50000},
		{Title: "A", Amount: 10000},
	}
	cfg := testConfig()

	byAmount, err := Sort(items, cfg, SortAmountDesc)
	if err != nil {
		t.Fatal(err)
	}
	if byAmount[0].Title != "b" {
		t.Fatalf("expected b first by amount desc, got %v", titles(byAmount))
	}

	byName, err := Sort(items, cfg, SortNameAsc)
	if err != nil {
		t.Fatal(err)
	}
	if byName[0].Title != "A" {
		t.Fatalf("name sort must ignore case, got %v", titles(byName))
	}

	if _, err := Sort(items, cfg, "popularity"); err == nil {
		t.Fatal("expected error for unknown criterion")
	}
}

func TestPaginate_Bounds(t *testing.T) {
	items := make([]int, 10)
	for i := range items {
		items[i] = i + 1
	}

	page1 := Paginate(items, 1, 4)
	if len(page1.Items) != 4 || page1.Items[0] != 1 || page1.Items[3] != 4 {
		t.Fatalf("page 1: expected items 1-4, got %v", page1.Items)
	}
	if page1.TotalPages != 3 || page1.TotalCount != 10 {
		t.Fatalf("expected totals 10/3, got %d/%d", page1.TotalCount, page1.TotalPages)
	}

	page3 := Paginate(items, 3, 4)
	if len(page3.Items) != 2 || page3.Items[0] != 9 {
		t.Fatalf("page 3: expected items 9-10, got %v", page3.Items)
	}
}

func TestPaginate_OutOfRangeClamped(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	zero := Paginate(items, 0, 2)
	if zero.Page != 1 || len(zero.Items) != 2 {
		t.Fatalf("page 0 must clamp to page 1, got page %d with %v", zero.Page, zero.Items)
	}

	far := Paginate(items, 99, 2)
	if far.Page != 3 || len(far.Items) != 1 || far.Items[0] != 5 {
		t.Fatalf("page 99 must clamp to last page, got page %d with %v", far.Page, far.Items)
	}
	if far.TotalCount != 5 || far.TotalPages != 3 {
		t.Fatalf("clamped page must keep correct totals, got %d/%d", far.TotalCount, far.TotalPages)
	}
}

func TestPaginate_Empty(t *testing.T) {
	page := Paginate([]int{}, 1, 4)
	if len(page.Items) != 0 || page.TotalCount != 0 || page.TotalPages != 1 {
		t.Fatalf("unexpected empty pagination result: %+v", page)
	}
}

func titles(items []testGrant) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Title
	}
	return out
}
