package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"trirule/internal/core"
)

// transactionDTO is the backend wire shape. Amount arrives as a decimal
// number; the category is embedded when the transaction has one.
type transactionDTO struct {
	ID          int64        `json:"id"`
	Amount      float64      `json:"amount"`
	Description string       `json:"description"`
	Date        string       `json:"date"`
	Kind        string       `json:"kind"`
	Category    *categoryDTO `json:"category"`
}

// toCore rejects malformed payloads instead of letting them propagate
// into rendering.
func (d transactionDTO) toCore() (core.Transaction, error) {
	date, err := core.ParseDate(d.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", d.ID, err)
	}
	kind := core.Kind(d.Kind)
	if err := kind.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", d.ID, err)
	}
	tx := core.Transaction{
		ID:          d.ID,
		Amount:      core.FromFloat(d.Amount),
		Description: d.Description,
		Date:        date,
		Kind:        kind,
	}
	if d.Category != nil {
		cat, err := d.Category.toCore()
		if err != nil {
			return core.Transaction{}, fmt.Errorf("transaction %d: %w", d.ID, err)
		}
		tx.Category = &cat
	}
	return tx, nil
}

// TransactionInput is the payload for creating or updating a transaction.
// CategoryID nil leaves the transaction uncategorized.
type TransactionInput struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	Kind        string  `json:"kind"`
	CategoryID  *int64  `json:"category_id"`
}

// Transactions fetches the full transaction list for the session user.
func (c *Client) Transactions(ctx context.Context) ([]core.Transaction, error) {
	var dtos []transactionDTO
	if err := c.do(ctx, http.MethodGet, "/transactions", nil, nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]core.Transaction, 0, len(dtos))
	for _, d := range dtos {
		tx, err := d.toCore()
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

func (c *Client) CreateTransaction(ctx context.Context, in TransactionInput) error {
	return c.do(ctx, http.MethodPost, "/transactions", nil, in, nil)
}

func (c *Client) UpdateTransaction(ctx context.Context, id int64, in TransactionInput) error {
	return c.do(ctx, http.MethodPut, "/transactions/"+strconv.FormatInt(id, 10), nil, in, nil)
}

func (c *Client) DeleteTransaction(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/transactions/"+strconv.FormatInt(id, 10), nil, nil, nil)
}
