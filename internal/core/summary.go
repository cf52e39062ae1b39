package core

// Summary holds the aggregated totals for a date range, computed
// server-side.
type Summary struct {
	Income   Money
	Expenses Money
	Balance  Money
}

// CategoryBreakdown maps category names to aggregated totals, split by
// transaction kind.
type CategoryBreakdown struct {
	Income   map[string]Money
	Expenses map[string]Money
}

// HistoryPoint is one bucket of a time-bucketed income/expense series.
// Day is 0 for yearly (per-month) series; Month is the bucket for yearly
// series and the queried month for monthly (per-day) series.
type HistoryPoint struct {
	Year    int
	Month   int
	Day     int
	Income  Money
	Expense Money
}

// Balance returns income minus expense for the bucket.
func (p HistoryPoint) Balance() Money {
	return Money{Cents: p.Income.Cents - p.Expense.Cents}
}
