package filter

import (
	"reflect"
	"testing"

	"trirule/internal/core"
)

func tx(id int64, desc string, cents int64, kind core.Kind, date core.Date, cat *core.Category) core.Transaction {
	return core.Transaction{
		ID:          id,
		Amount:      core.Money{Cents: cents},
		Description: desc,
		Date:        date,
		Kind:        kind,
		Category:    cat,
	}
}

func sample() []core.Transaction {
	food := &core.Category{ID: 1, Name: "Food", Type: core.Need}
	fun := &core.Category{ID: 2, Name: "Fun", Type: core.Want}
	return []core.Transaction{
		tx(1, "Salary", 250000, core.Income, core.NewDate(2025, 3, 1), nil),
		tx(2, "Groceries", 4550, core.Expense, core.NewDate(2025, 3, 3), food),
		tx(3, "Cinema", 1200, core.Expense, core.NewDate(2025, 3, 5), fun),
		tx(4, "Refund", 1200, core.Income, core.NewDate(2025, 3, 5), food),
	}
}

func ids(list []core.Transaction) []int64 {
	out := make([]int64, len(list))
	for i, t := range list {
		out[i] = t.ID
	}
	return out
}

func TestApplyIdentity(t *testing.T) {
	in := sample()
	got := Apply(in, State{})
	if len(got) != len(in) {
		t.Fatalf("empty filter must keep all rows, got %d of %d", len(got), len(in))
	}
	if !reflect.DeepEqual(ids(got), ids(in)) {
		t.Fatalf("empty filter must preserve order: %v", ids(got))
	}
}

func TestApplySubset(t *testing.T) {
	in := sample()
	states := []State{
		{Kind: "expense"},
		{Category: "1"},
		{Search: "cin"},
		{DateFrom: "2025-03-04"},
	}
	byID := map[int64]bool{}
	for _, t := range in {
		byID[t.ID] = true
	}
	for _, s := range states {
		for _, got := range Apply(in, s) {
			if !byID[got.ID] {
				t.Fatalf("filter fabricated row %d for %+v", got.ID, s)
			}
		}
	}
}

func TestKindAndCategoryPredicates(t *testing.T) {
	in := sample()

	got := Apply(in, State{Kind: "income"})
	if !reflect.DeepEqual(ids(got), []int64{1, 4}) {
		t.Fatalf("kind filter: %v", ids(got))
	}

	got = Apply(in, State{Category: "2"})
	if !reflect.DeepEqual(ids(got), []int64{3}) {
		t.Fatalf("category filter: %v", ids(got))
	}

	// Uncategorized rows never match a non-empty category filter.
	for _, r := range Apply(in, State{Category: "1"}) {
		if r.Category == nil {
			t.Fatal("uncategorized row matched category filter")
		}
	}
}

func TestDateRangeInclusive(t *testing.T) {
	in := sample()

	// Same-day range includes the whole day.
	got := Apply(in, State{DateFrom: "2025-03-05", DateTo: "2025-03-05"})
	if !reflect.DeepEqual(ids(got), []int64{3, 4}) {
		t.Fatalf("same-day range: %v", ids(got))
	}

	got = Apply(in, State{DateTo: "2025-03-03"})
	if !reflect.DeepEqual(ids(got), []int64{1, 2}) {
		t.Fatalf("dateTo bound: %v", ids(got))
	}

	// Garbage bounds fall back to no constraint.
	got = Apply(in, State{DateFrom: "not-a-date"})
	if len(got) != len(in) {
		t.Fatalf("malformed dateFrom must not filter, got %d rows", len(got))
	}
}

func TestSearchMatchesDescriptionCategoryAmount(t *testing.T) {
	in := sample()

	cases := []struct {
		term string
		want []int64
	}{
		{"groc", []int64{2}},
		{"FOOD", []int64{2, 4}}, // category name, case-insensitive
		{"45.5", []int64{2}},    // decimal form of the amount
		{"zzz", nil},
	}
	for _, tc := range cases {
		got := ids(Apply(in, State{Search: tc.term}))
		if len(got) == 0 {
			got = nil
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("search %q: got %v, want %v", tc.term, got, tc.want)
		}
	}
}

func TestSortDateReverses(t *testing.T) {
	in := sample()[:3] // distinct dates, no ties

	asc := ids(Apply(in, State{SortBy: SortDate, SortOrder: Asc}))
	desc := ids(Apply(in, State{SortBy: SortDate, SortOrder: Desc}))

	for i := range asc {
		if asc[i] != desc[len(desc)-1-i] {
			t.Fatalf("date desc is not the reverse of asc: %v vs %v", asc, desc)
		}
	}
}

func TestSortAmountSignBuckets(t *testing.T) {
	// Regression pin for the sign-bucketed comparator: [-5, 3, -1, 7]
	// ascending -> [-5, -1, 3, 7]; descending -> [7, 3, -5, -1].
	in := []core.Transaction{
		tx(1, "a", 500, core.Expense, core.NewDate(2025, 1, 1), nil),
		tx(2, "b", 300, core.Income, core.NewDate(2025, 1, 2), nil),
		tx(3, "c", 100, core.Expense, core.NewDate(2025, 1, 3), nil),
		tx(4, "d", 700, core.Income, core.NewDate(2025, 1, 4), nil),
	}

	asc := Apply(in, State{SortBy: SortAmount, SortOrder: Asc})
	wantAsc := []int64{-500, -100, 300, 700}
	for i, r := range asc {
		if r.SignedCents() != wantAsc[i] {
			t.Fatalf("asc: got %v", signed(asc))
		}
	}

	desc := Apply(in, State{SortBy: SortAmount, SortOrder: Desc})
	wantDesc := []int64{700, 300, -500, -100}
	for i, r := range desc {
		if r.SignedCents() != wantDesc[i] {
			t.Fatalf("desc: got %v", signed(desc))
		}
	}
}

func signed(list []core.Transaction) []int64 {
	out := make([]int64, len(list))
	for i, t := range list {
		out[i] = t.SignedCents()
	}
	return out
}

func TestSortCategoryUsesNameWithUncategorizedFirst(t *testing.T) {
	in := sample()
	got := Apply(in, State{SortBy: SortCategory, SortOrder: Asc})
	// "" (uncategorized) < "Food" < "Fun"; ties keep input order.
	want := []string{"", "Food", "Food", "Fun"}
	for i, r := range got {
		if r.CategoryName() != want[i] {
			t.Fatalf("category sort: position %d is %q", i, r.CategoryName())
		}
	}
}

func TestToggle(t *testing.T) {
	s := NewState()
	if s.SortBy != SortDate || s.SortOrder != Desc {
		t.Fatalf("default sort should be date desc, got %s %s", s.SortBy, s.SortOrder)
	}

	s.Toggle(SortAmount)
	if s.SortBy != SortAmount || s.SortOrder != Asc {
		t.Fatal("new column must start ascending")
	}
	s.Toggle(SortAmount)
	if s.SortOrder != Desc {
		t.Fatal("re-selecting the active column must flip direction")
	}
	s.Toggle(SortAmount)
	if s.SortOrder != Asc {
		t.Fatal("third toggle must flip back to ascending")
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	in := sample()
	before := ids(in)
	_ = Apply(in, State{SortBy: SortAmount, SortOrder: Desc})
	if !reflect.DeepEqual(ids(in), before) {
		t.Fatal("Apply mutated its input slice")
	}
}
