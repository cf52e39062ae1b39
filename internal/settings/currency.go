// Package settings owns the account preferences screen: the base
// currency changeover and password updates.
//
// A currency change is a three-step workflow against two services: the
// public rate API (display table, then the previous→new conversion
// factor) and the backend settings endpoint. The new currency is shown
// optimistically; any step failing reverts the display to the previous
// value and surfaces exactly one error notification. The backend owns
// rescaling of stored amounts.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"trirule/internal/api"
	"trirule/internal/log"
	"trirule/internal/notify"
)

// ErrUpdateInFlight is returned when a currency change is already
// running; the UI disables the trigger, this guard backs it up.
var ErrUpdateInFlight = errors.New("currency update already in progress")

// DisplayCurrencies is the set shown in the settings rate table.
var DisplayCurrencies = []string{"USD", "EUR", "GBP", "JPY"}

// Symbol maps an ISO-4217 code to its display glyph, falling back to the
// code itself.
func Symbol(code string) string {
	switch code {
	case "USD", "MXN", "CAD", "AUD":
		return "$"
	case "EUR":
		return "€"
	case "GBP":
		return "£"
	case "JPY", "CNY":
		return "¥"
	case "INR":
		return "₹"
	case "RUB":
		return "₽"
	case "BRL":
		return "R$"
	case "KRW":
		return "₩"
	case "TRY":
		return "₺"
	}
	if code == "" {
		return "$"
	}
	return code
}

// Currency is the selected base currency and its glyph.
type Currency struct {
	Code   string
	Symbol string
}

// RateSource is the slice of the rate client the workflow needs.
type RateSource interface {
	Latest(ctx context.Context, base string, symbols []string) (map[string]float64, error)
	Rate(ctx context.Context, from, to string) (float64, error)
}

// Backend is the slice of the API client the workflow needs.
type Backend interface {
	GetSettings(ctx context.Context) (api.Settings, error)
	UpdateSettings(ctx context.Context, update api.SettingsUpdate) (api.Settings, error)
}

// changeover captures the pre-update value so a failed workflow can
// revert the display, and records whether it already rolled back.
type changeover struct {
	previous Currency
	done     bool
}

func (c *changeover) rollback(w *Workflow) {
	if c.done {
		return
	}
	c.done = true
	w.current = c.previous
}

type Workflow struct {
	backend  Backend
	rates    RateSource
	notifier notify.Notifier
	logger   *slog.Logger

	mu       sync.Mutex
	updating bool
	baseline string // backend-confirmed currency code
	current  Currency
	table    map[string]float64
}

func NewWorkflow(backend Backend, rates RateSource, notifier notify.Notifier, logger *slog.Logger) *Workflow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workflow{
		backend:  backend,
		rates:    rates,
		notifier: notifier,
		logger:   logger,
		current:  Currency{Code: "EUR", Symbol: Symbol("EUR")},
		baseline: "EUR",
	}
}

// Load fetches the stored currency and the display rate table. A missing
// rate table is not fatal; the settings screen just shows no rates.
func (w *Workflow) Load(ctx context.Context) error {
	stored, err := w.backend.GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	w.mu.Lock()
	w.baseline = stored.Currency
	w.current = Currency{Code: stored.Currency, Symbol: Symbol(stored.Currency)}
	w.mu.Unlock()

	table, err := w.rates.Latest(ctx, stored.Currency, DisplayCurrencies)
	if err != nil {
		w.logger.Warn("exchange rate table unavailable",
			log.FieldCurrency, stored.Currency,
			log.FieldError, err)
		return nil
	}
	w.mu.Lock()
	w.table = table
	w.mu.Unlock()
	return nil
}

// Current returns the displayed currency.
func (w *Workflow) Current() Currency {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// RateTable returns the last fetched display rates for the current base.
func (w *Workflow) RateTable() map[string]float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.table
}

// UpdateCurrency runs the three-step changeover to code. On success the
// backend-confirmed currency becomes the new baseline; on failure the
// displayed currency reverts and a single error notification fires.
func (w *Workflow) UpdateCurrency(ctx context.Context, code string) error {
	w.mu.Lock()
	if w.updating {
		w.mu.Unlock()
		return ErrUpdateInFlight
	}
	w.updating = true
	saga := &changeover{previous: w.current}
	previousCode := w.baseline
	w.current = Currency{Code: code, Symbol: Symbol(code)}
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.updating = false
		w.mu.Unlock()
	}()

	fail := func(step string, err error) error {
		w.mu.Lock()
		saga.rollback(w)
		w.mu.Unlock()
		w.logger.Error("currency update failed",
			log.FieldOperation, log.OpUpdate,
			"step", step,
			"from", previousCode,
			"to", code,
			log.FieldError, err)
		w.notifier.Notify(notify.Notification{
			Type:    notify.Error,
			Title:   "Error",
			Message: "could not update the currency",
		})
		return fmt.Errorf("%s: %w", step, err)
	}

	// Step 1: full table with the new code as base, for display only.
	table, err := w.rates.Latest(ctx, code, DisplayCurrencies)
	if err != nil {
		return fail("fetch rate table", err)
	}

	// Step 2: the single previous→new conversion factor.
	rate, err := w.rates.Rate(ctx, previousCode, code)
	if err != nil {
		return fail("fetch conversion rate", err)
	}

	// Step 3: persist; the backend rescales stored amounts itself.
	confirmed, err := w.backend.UpdateSettings(ctx, api.SettingsUpdate{
		Currency:       code,
		ConversionRate: &rate,
	})
	if err != nil {
		return fail("persist settings", err)
	}

	w.mu.Lock()
	w.baseline = confirmed.Currency
	w.current = Currency{Code: confirmed.Currency, Symbol: Symbol(confirmed.Currency)}
	w.table = table
	w.mu.Unlock()

	w.notifier.Notify(notify.Notification{
		Type:    notify.Success,
		Title:   "Success",
		Message: fmt.Sprintf("currency updated to %s", confirmed.Currency),
	})
	return nil
}
