package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"trirule/internal/core"
)

// SummaryReport is the aggregated view for a date range: totals plus
// per-category maps for each kind.
type SummaryReport struct {
	Summary   core.Summary
	Breakdown core.CategoryBreakdown
}

type summaryDTO struct {
	Summary struct {
		Income   float64 `json:"income"`
		Expenses float64 `json:"expenses"`
		Balance  float64 `json:"balance"`
	} `json:"summary"`
	Categories struct {
		Income   map[string]float64 `json:"income"`
		Expenses map[string]float64 `json:"expenses"`
	} `json:"categories"`
}

// Summary fetches server-side aggregated totals for [start, end], both
// YYYY-MM-DD inclusive.
func (c *Client) Summary(ctx context.Context, start, end string) (SummaryReport, error) {
	params := url.Values{}
	if start != "" {
		params.Set("start_date", start)
	}
	if end != "" {
		params.Set("end_date", end)
	}

	var dto summaryDTO
	if err := c.do(ctx, http.MethodGet, "/transactions/summary", params, nil, &dto); err != nil {
		return SummaryReport{}, err
	}

	report := SummaryReport{
		Summary: core.Summary{
			Income:   core.FromFloat(dto.Summary.Income),
			Expenses: core.FromFloat(dto.Summary.Expenses),
			Balance:  core.FromFloat(dto.Summary.Balance),
		},
		Breakdown: core.CategoryBreakdown{
			Income:   make(map[string]core.Money, len(dto.Categories.Income)),
			Expenses: make(map[string]core.Money, len(dto.Categories.Expenses)),
		},
	}
	for name, v := range dto.Categories.Income {
		report.Breakdown.Income[name] = core.FromFloat(v)
	}
	for name, v := range dto.Categories.Expenses {
		report.Breakdown.Expenses[name] = core.FromFloat(v)
	}
	return report, nil
}

type historyDTO struct {
	Year    int     `json:"year"`
	Month   int     `json:"month"`
	Day     int     `json:"day"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

func (d historyDTO) toCore() core.HistoryPoint {
	return core.HistoryPoint{
		Year:    d.Year,
		Month:   d.Month,
		Day:     d.Day,
		Income:  core.FromFloat(d.Income),
		Expense: core.FromFloat(d.Expense),
	}
}

// MonthlyHistory fetches the per-day income/expense series for a month.
func (c *Client) MonthlyHistory(ctx context.Context, year, month int) ([]core.HistoryPoint, error) {
	params := url.Values{
		"year":  {strconv.Itoa(year)},
		"month": {strconv.Itoa(month)},
	}
	return c.history(ctx, "/history/monthly", params)
}

// YearlyHistory fetches the per-month income/expense series for a year.
func (c *Client) YearlyHistory(ctx context.Context, year int) ([]core.HistoryPoint, error) {
	params := url.Values{"year": {strconv.Itoa(year)}}
	return c.history(ctx, "/history/yearly", params)
}

func (c *Client) history(ctx context.Context, path string, params url.Values) ([]core.HistoryPoint, error) {
	var dtos []historyDTO
	if err := c.do(ctx, http.MethodGet, path, params, nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]core.HistoryPoint, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toCore())
	}
	return out, nil
}
