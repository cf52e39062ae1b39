// Package ui is the terminal front end: one Elm-style model covering
// the login, dashboard, transaction, category, settings and transfer
// screens. All backend traffic happens inside tea.Cmd functions; the
// model itself only reacts to typed messages.
package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"trirule/internal/api"
	"trirule/internal/core"
	"trirule/internal/filter"
	"trirule/internal/log"
	"trirule/internal/notify"
	"trirule/internal/settings"
	"trirule/internal/store"
	"trirule/internal/summary"
	"trirule/internal/transfer"
	"trirule/internal/ui/theme"
)

type Screen int

const (
	ScreenLogin Screen = iota
	ScreenDashboard
	ScreenTransactions
	ScreenCategories
	ScreenSettings
	ScreenTransfer
)

var screenOrder = []Screen{
	ScreenDashboard,
	ScreenTransactions,
	ScreenCategories,
	ScreenSettings,
	ScreenTransfer,
}

const toastLifetime = 4 * time.Second

type toast struct {
	id int
	n  notify.Notification
}

// Deps carries everything the model needs; main wires it up.
type Deps struct {
	Client    *api.Client
	Summaries *summary.Service
	Prefs     *settings.Workflow
	Transfers *transfer.Workflow
	Snapshot  *store.Store // optional
	Events    chan notify.Notification
	Logger    *log.Logger
	PerPage   int
}

type Model struct {
	deps   Deps
	logger *log.Logger

	screen Screen
	width  int
	height int
	ready  bool

	user    *api.User
	offline bool

	transactions []core.Transaction
	categories   []core.Category
	filters      filter.State
	page         int
	cursor       int
	perPage      int

	summaryReport api.SummaryReport
	summaryLoaded bool
	history       []core.HistoryPoint

	currencyIdx int

	searchInput  textinput.Model
	searchActive bool

	form    *form
	confirm *confirmPrompt

	toasts  []toast
	toastID int

	spin    spinner.Model
	loading int
}

// confirmPrompt blocks destructive actions behind an explicit yes.
type confirmPrompt struct {
	message string
	action  tea.Cmd
}

// Messages

type sessionMsg struct {
	loggedIn bool
	user     api.User
	err      error
}

type authMsg struct {
	user api.User
	err  error
}

type registeredMsg struct {
	err error
}

type loggedOutMsg struct {
	err error
}

type refreshedMsg struct {
	transactions []core.Transaction
	categories   []core.Category
	err          error
}

type snapshotMsg struct {
	transactions []core.Transaction
	categories   []core.Category
	syncedAt     time.Time
	ok           bool
}

type summaryMsg struct {
	report api.SummaryReport
	err    error
}

type historyMsg struct {
	points []core.HistoryPoint
	err    error
}

type settingsLoadedMsg struct {
	err error
}

type currencyChangedMsg struct {
	err error
}

type passwordChangedMsg struct {
	err error
}

type transactionSavedMsg struct {
	err error
}

type transactionDeletedMsg struct {
	err error
}

type categorySavedMsg struct {
	err error
}

type categoryDeletedMsg struct {
	err error
}

type importedMsg struct {
	result api.ImportResult
	err    error
}

type exportedMsg struct {
	path string
	err  error
}

type notificationMsg struct {
	n notify.Notification
}

type toastExpiredMsg struct {
	id int
}

func NewModel(deps Deps) Model {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	search := textinput.New()
	search.Placeholder = "search"
	search.CharLimit = 120

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = sp.Style.Foreground(theme.Default.Primary)

	return Model{
		deps:    deps,
		logger:  logger.WithComponent(log.ComponentUI),
		screen:  ScreenLogin,
		filters: filter.NewState(),
		page:    1,
		perPage: deps.PerPage,

		searchInput: search,
		spin:        sp,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.checkSession(),
		m.waitForEvent(),
		m.spin.Tick,
	)
}

// Commands

func (m Model) checkSession() tea.Cmd {
	client := m.deps.Client
	return func() tea.Msg {
		ctx := context.Background()
		loggedIn, err := client.CheckAuth(ctx)
		if err != nil || !loggedIn {
			return sessionMsg{loggedIn: false, err: err}
		}
		user, err := client.Profile(ctx)
		if err != nil {
			return sessionMsg{loggedIn: true, err: err}
		}
		return sessionMsg{loggedIn: true, user: user}
	}
}

func (m Model) login(email, password string) tea.Cmd {
	client := m.deps.Client
	return func() tea.Msg {
		user, err := client.Login(context.Background(), api.Credentials{
			Email:    email,
			Password: password,
		})
		return authMsg{user, err}
	}
}

func (m Model) register(username, email, password string) tea.Cmd {
	client := m.deps.Client
	return func() tea.Msg {
		err := client.Register(context.Background(), api.Registration{
			Username: username,
			Email:    email,
			Password: password,
		})
		return registeredMsg{err}
	}
}

func (m Model) logout() tea.Cmd {
	client := m.deps.Client
	return func() tea.Msg {
		err := client.Logout(context.Background())
		return loggedOutMsg{err}
	}
}

// refreshAll reloads transactions and categories in parallel and
// invalidates the summary cache. Mutations and logins funnel through
// here so every screen sees the same state.
func (m Model) refreshAll() tea.Cmd {
	client := m.deps.Client
	summaries := m.deps.Summaries
	snapshot := m.deps.Snapshot
	logger := m.logger
	return func() tea.Msg {
		var (
			transactions []core.Transaction
			categories   []core.Category
		)
		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() error {
			t, err := client.Transactions(ctx)
			if err != nil {
				return err
			}
			transactions = t
			return nil
		})
		g.Go(func() error {
			c, err := client.Categories(ctx)
			if err != nil {
				return err
			}
			categories = c
			return nil
		})
		if err := g.Wait(); err != nil {
			return refreshedMsg{err: err}
		}

		if summaries != nil {
			summaries.Invalidate()
		}
		if snapshot != nil {
			if err := snapshot.Replace(ctx, transactions, categories); err != nil {
				logger.Warn("snapshot write failed", log.FieldError, err)
			}
		}
		return refreshedMsg{transactions: transactions, categories: categories}
	}
}

// loadSnapshot pulls the last known data from the local database so the
// list screens work while the backend is unreachable.
func (m Model) loadSnapshot() tea.Cmd {
	snapshot := m.deps.Snapshot
	if snapshot == nil {
		return nil
	}
	return func() tea.Msg {
		ctx := context.Background()
		at, ok, err := snapshot.LastSync(ctx)
		if err != nil || !ok {
			return snapshotMsg{}
		}
		transactions, err := snapshot.Transactions(ctx)
		if err != nil {
			return snapshotMsg{}
		}
		categories, err := snapshot.Categories(ctx)
		if err != nil {
			return snapshotMsg{}
		}
		return snapshotMsg{transactions: transactions, categories: categories, syncedAt: at, ok: true}
	}
}

func (m Model) fetchSummary() tea.Cmd {
	summaries := m.deps.Summaries
	if summaries == nil {
		return nil
	}
	start, end := monthBounds(time.Now())
	return func() tea.Msg {
		report, err := summaries.Refresh(context.Background(),
			start.Format("2006-01-02"), end.Format("2006-01-02"))
		return summaryMsg{report, err}
	}
}

func (m Model) fetchHistory() tea.Cmd {
	client := m.deps.Client
	now := time.Now()
	return func() tea.Msg {
		points, err := client.MonthlyHistory(context.Background(), now.Year(), int(now.Month()))
		return historyMsg{points, err}
	}
}

func (m Model) loadSettings() tea.Cmd {
	prefs := m.deps.Prefs
	if prefs == nil {
		return nil
	}
	return func() tea.Msg {
		err := prefs.Load(context.Background())
		return settingsLoadedMsg{err}
	}
}

func (m Model) changeCurrency(code string) tea.Cmd {
	prefs := m.deps.Prefs
	return func() tea.Msg {
		err := prefs.UpdateCurrency(context.Background(), code)
		return currencyChangedMsg{err}
	}
}

func (m Model) changePassword(current, next string) tea.Cmd {
	client := m.deps.Client
	return func() tea.Msg {
		err := client.UpdatePassword(context.Background(), api.PasswordChange{
			CurrentPassword: current,
			NewPassword:     next,
		})
		return passwordChangedMsg{err}
	}
}

func (m Model) saveTransaction(id int64, input api.TransactionInput) tea.Cmd {
	client := m.deps.Client
	return func() tea.Msg {
		var err error
		if id == 0 {
			err = client.CreateTransaction(context.Background(), input)
		} else {
			err = client.UpdateTransaction(context.Background(), id, input)
		}
		return transactionSavedMsg{err}
	}
}

func (m Model) deleteTransaction(id int64) tea.Cmd {
	client := m.deps.Client
	return func() tea.Msg {
		err := client.DeleteTransaction(context.Background(), id)
		return transactionDeletedMsg{err}
	}
}

func (m Model) saveCategory(id int64, input api.CategoryInput) tea.Cmd {
	client := m.deps.Client
	return func() tea.Msg {
		var err error
		if id == 0 {
			err = client.CreateCategory(context.Background(), input)
		} else {
			err = client.UpdateCategory(context.Background(), id, input)
		}
		return categorySavedMsg{err}
	}
}

func (m Model) deleteCategory(id int64) tea.Cmd {
	client := m.deps.Client
	return func() tea.Msg {
		err := client.DeleteCategory(context.Background(), id)
		return categoryDeletedMsg{err}
	}
}

func (m Model) runImport(path string) tea.Cmd {
	transfers := m.deps.Transfers
	return func() tea.Msg {
		result, err := transfers.Import(context.Background(), path)
		return importedMsg{result, err}
	}
}

func (m Model) runExport() tea.Cmd {
	transfers := m.deps.Transfers
	return func() tea.Msg {
		path, err := transfers.Export(context.Background(), ".")
		return exportedMsg{path, err}
	}
}

// waitForEvent blocks on the notification channel; workflows running in
// other goroutines surface their toasts through it.
func (m Model) waitForEvent() tea.Cmd {
	events := m.deps.Events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		return notificationMsg{<-events}
	}
}

func expireToast(id int) tea.Cmd {
	return tea.Tick(toastLifetime, func(time.Time) tea.Msg {
		return toastExpiredMsg{id}
	})
}

// monthBounds returns the first and last day of the month containing t.
func monthBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 1, -1)
	return start, end
}
