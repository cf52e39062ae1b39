package api

import (
	"context"
	"net/http"
)

// Settings is the user's stored preferences.
type Settings struct {
	Currency string `json:"currency"`
}

// SettingsUpdate is the payload for UpdateSettings. ConversionRate is the
// factor from the previous base currency to the new one; the backend uses
// it to rescale stored amounts.
type SettingsUpdate struct {
	Currency       string   `json:"currency"`
	ConversionRate *float64 `json:"conversion_rate,omitempty"`
}

// GetSettings fetches the stored settings.
func (c *Client) GetSettings(ctx context.Context) (Settings, error) {
	var s Settings
	if err := c.do(ctx, http.MethodGet, "/settings", nil, nil, &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// UpdateSettings persists new settings and returns the backend's
// confirmed copy.
func (c *Client) UpdateSettings(ctx context.Context, update SettingsUpdate) (Settings, error) {
	var resp struct {
		Msg      string   `json:"msg"`
		Settings Settings `json:"settings"`
	}
	if err := c.do(ctx, http.MethodPut, "/settings", nil, update, &resp); err != nil {
		return Settings{}, err
	}
	return resp.Settings, nil
}
