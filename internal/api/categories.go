package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"trirule/internal/core"
)

type categoryDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Type  string `json:"type"`
}

func (d categoryDTO) toCore() (core.Category, error) {
	cat := core.Category{
		ID:    d.ID,
		Name:  d.Name,
		Color: d.Color,
		Type:  core.CategoryType(d.Type),
	}
	if err := cat.Validate(); err != nil {
		return core.Category{}, fmt.Errorf("category %d: %w", d.ID, err)
	}
	return cat, nil
}

// CategoryInput is the payload for creating or updating a category.
type CategoryInput struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Type  string `json:"type"`
}

// Categories fetches the session user's categories.
func (c *Client) Categories(ctx context.Context) ([]core.Category, error) {
	var dtos []categoryDTO
	if err := c.do(ctx, http.MethodGet, "/categories", nil, nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]core.Category, 0, len(dtos))
	for _, d := range dtos {
		cat, err := d.toCore()
		if err != nil {
			return nil, err
		}
		out = append(out, cat)
	}
	return out, nil
}

func (c *Client) CreateCategory(ctx context.Context, in CategoryInput) error {
	return c.do(ctx, http.MethodPost, "/categories", nil, in, nil)
}

func (c *Client) UpdateCategory(ctx context.Context, id int64, in CategoryInput) error {
	return c.do(ctx, http.MethodPut, "/categories/"+strconv.FormatInt(id, 10), nil, in, nil)
}

// DeleteCategory removes a category. Transactions keep their dangling
// reference client-side; the backend decides what happens to them.
func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/categories/"+strconv.FormatInt(id, 10), nil, nil, nil)
}
