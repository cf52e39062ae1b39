// Package filter implements the in-memory transaction filter/sort engine.
//
// Apply is a pure function: it derives a new slice from the input list and
// the filter state, applying a conjunction of independent field predicates
// followed by a single-key sort. It never mutates its inputs.
package filter

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"trirule/internal/core"
)

// SortKey is a column the transaction list can be sorted on.
type SortKey string

const (
	SortDate        SortKey = "date"
	SortDescription SortKey = "description"
	SortCategory    SortKey = "category"
	SortKind        SortKey = "kind"
	SortAmount      SortKey = "amount"
)

// SortOrder is the sort direction.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// State holds the user-editable filter and sort configuration. Empty
// string fields mean "no constraint". Category holds the decimal string
// form of a category id. DateFrom/DateTo are YYYY-MM-DD and inclusive.
type State struct {
	Kind      string
	Category  string
	DateFrom  string
	DateTo    string
	Search    string
	SortBy    SortKey
	SortOrder SortOrder
}

// NewState returns the default state: no constraints, newest first.
func NewState() State {
	return State{SortBy: SortDate, SortOrder: Desc}
}

// Toggle selects a sort column. Re-selecting the active column flips the
// direction; a new column always starts ascending.
func (s *State) Toggle(key SortKey) {
	if s.SortBy == key {
		if s.SortOrder == Asc {
			s.SortOrder = Desc
		} else {
			s.SortOrder = Asc
		}
		return
	}
	s.SortBy = key
	s.SortOrder = Asc
}

// Apply filters then sorts the transaction list according to the state.
func Apply(transactions []core.Transaction, s State) []core.Transaction {
	out := make([]core.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if matches(tx, s) {
			out = append(out, tx)
		}
	}
	sortBy(out, s.SortBy, s.SortOrder)
	return out
}

func matches(tx core.Transaction, s State) bool {
	if s.Kind != "" && string(tx.Kind) != s.Kind {
		return false
	}
	if s.Category != "" {
		if tx.Category == nil {
			return false
		}
		if strconv.FormatInt(tx.Category.ID, 10) != s.Category {
			return false
		}
	}
	// Unparseable bounds degrade to "no constraint".
	if from, err := core.ParseDate(s.DateFrom); s.DateFrom != "" && err == nil {
		if tx.Date.Before(from.Time) {
			return false
		}
	}
	if to, err := core.ParseDate(s.DateTo); s.DateTo != "" && err == nil {
		// Inclusive bound: the whole day up to 23:59:59.999.
		end := to.Add(24*time.Hour - time.Millisecond)
		if tx.Date.After(end) {
			return false
		}
	}
	if s.Search != "" {
		term := strings.ToLower(s.Search)
		if !strings.Contains(strings.ToLower(tx.Description), term) &&
			!strings.Contains(strings.ToLower(tx.CategoryName()), term) &&
			!strings.Contains(tx.Amount.Decimal(), term) {
			return false
		}
	}
	return true
}

func sortBy(list []core.Transaction, key SortKey, order SortOrder) {
	var less func(a, b core.Transaction) bool

	switch key {
	case SortDate:
		less = func(a, b core.Transaction) bool {
			return a.Date.Time.Before(b.Date.Time)
		}
	case SortDescription:
		less = func(a, b core.Transaction) bool {
			return compareFold(a.Description, b.Description) < 0
		}
	case SortCategory:
		less = func(a, b core.Transaction) bool {
			return compareFold(a.CategoryName(), b.CategoryName()) < 0
		}
	case SortKind:
		less = func(a, b core.Transaction) bool {
			return a.Kind < b.Kind
		}
	case SortAmount:
		sortAmount(list, order)
		return
	default:
		return
	}

	if order == Desc {
		inner := less
		less = func(a, b core.Transaction) bool { return inner(b, a) }
	}
	sort.SliceStable(list, func(i, j int) bool { return less(list[i], list[j]) })
}

// sortAmount applies the sign-bucketed amount ordering. Descending is NOT
// the reverse of ascending: ascending is plain numeric order (negatives
// first), while descending puts non-negative amounts first in numeric
// descending order, then negative amounts by descending magnitude.
// [-5, 3, -1, 7] ascending -> [-5, -1, 3, 7]; descending -> [7, 3, -5, -1].
func sortAmount(list []core.Transaction, order SortOrder) {
	if order == Desc {
		sort.SliceStable(list, func(i, j int) bool {
			a, b := list[i].SignedCents(), list[j].SignedCents()
			an, bn := a < 0, b < 0
			if an != bn {
				return !an // non-negative bucket first
			}
			if an {
				return a < b // more negative = larger magnitude first
			}
			return a > b
		})
		return
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].SignedCents() < list[j].SignedCents()
	})
}

// compareFold orders strings case-insensitively, falling back to the raw
// bytes to keep the ordering total.
func compareFold(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}
