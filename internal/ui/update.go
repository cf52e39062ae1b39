package ui

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"trirule/internal/api"
	"trirule/internal/core"
	"trirule/internal/filter"
	"trirule/internal/log"
	"trirule/internal/notify"
	"trirule/internal/pagination"
	"trirule/internal/settings"
)

var sortCycle = []filter.SortKey{
	filter.SortDate,
	filter.SortDescription,
	filter.SortCategory,
	filter.SortKind,
	filter.SortAmount,
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case spinner.TickMsg:
		if m.loading > 0 {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case notificationMsg:
		m = m.pushToast(msg.n)
		return m, tea.Batch(expireToast(m.toastID), m.waitForEvent())

	case toastExpiredMsg:
		kept := m.toasts[:0]
		for _, t := range m.toasts {
			if t.id != msg.id {
				kept = append(kept, t)
			}
		}
		m.toasts = kept
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.handleData(msg)
}

func (m Model) handleData(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionMsg:
		if msg.err != nil {
			m.offline = true
			m.screen = ScreenTransactions
			m.logger.Warn("backend unreachable, falling back to snapshot", log.FieldError, msg.err)
			return m, m.loadSnapshot()
		}
		if !msg.loggedIn {
			m.form = newLoginForm()
			return m, nil
		}
		m.user = &msg.user
		m.screen = ScreenDashboard
		m.loading++
		return m, m.enterSession()

	case authMsg:
		if msg.err != nil {
			if m.form != nil {
				m.form.errMsg = errorText(msg.err, "sign in failed")
			}
			return m, nil
		}
		m.user = &msg.user
		m.form = nil
		m.screen = ScreenDashboard
		m.loading++
		return m, m.enterSession()

	case registeredMsg:
		if msg.err != nil {
			if m.form != nil {
				m.form.errMsg = errorText(msg.err, "registration failed")
			}
			return m, nil
		}
		m = m.pushLocalToast(notify.Success, "Success", "account created, sign in")
		m.form = newLoginForm()
		return m, expireToast(m.toastID)

	case loggedOutMsg:
		m.user = nil
		m.transactions = nil
		m.categories = nil
		m.summaryLoaded = false
		m.history = nil
		m.screen = ScreenLogin
		m.form = newLoginForm()
		return m, nil

	case refreshedMsg:
		m.loading--
		if msg.err != nil {
			m = m.pushLocalToast(notify.Error, "Error", errorText(msg.err, "could not load data"))
			return m, expireToast(m.toastID)
		}
		m.offline = false
		m.transactions = msg.transactions
		m.categories = msg.categories
		m = m.clampList()
		return m, nil

	case snapshotMsg:
		if !msg.ok {
			return m, nil
		}
		m.transactions = msg.transactions
		m.categories = msg.categories
		m = m.clampList()
		m = m.pushLocalToast(notify.Info, "Offline",
			fmt.Sprintf("showing data from %s", msg.syncedAt.Local().Format("2006-01-02 15:04")))
		return m, expireToast(m.toastID)

	case summaryMsg:
		if msg.err == nil {
			m.summaryReport = msg.report
			m.summaryLoaded = true
		}
		return m, nil

	case historyMsg:
		if msg.err == nil {
			m.history = msg.points
		}
		return m, nil

	case settingsLoadedMsg:
		if msg.err != nil {
			m = m.pushLocalToast(notify.Error, "Error", errorText(msg.err, "could not load settings"))
			return m, expireToast(m.toastID)
		}
		m.currencyIdx = m.currentCurrencyIdx()
		return m, nil

	case currencyChangedMsg:
		m.loading--
		// The workflow emits its own success or error toast; a success
		// changes the display currency everywhere, so refetch.
		if msg.err == nil {
			m.loading++
			return m, tea.Batch(m.refreshAll(), m.fetchSummary(), m.spin.Tick)
		}
		return m, nil

	case passwordChangedMsg:
		m.loading--
		if msg.err != nil {
			m = m.pushLocalToast(notify.Error, "Error", errorText(msg.err, "could not change the password"))
			return m, expireToast(m.toastID)
		}
		m.form = nil
		m = m.pushLocalToast(notify.Success, "Success", "password changed")
		return m, expireToast(m.toastID)

	case transactionSavedMsg:
		return m.afterMutation(msg.err, "transaction saved")

	case transactionDeletedMsg:
		return m.afterMutation(msg.err, "transaction deleted")

	case categorySavedMsg:
		return m.afterMutation(msg.err, "category saved")

	case categoryDeletedMsg:
		return m.afterMutation(msg.err, "category deleted")

	case importedMsg:
		m.loading--
		m.form = nil
		// Toasts come from the workflow. Only a clean import changes the
		// canonical list.
		if msg.err == nil && msg.result.ErrorCount == 0 {
			m.loading++
			return m, tea.Batch(m.refreshAll(), m.fetchSummary(), m.fetchHistory(), m.spin.Tick)
		}
		return m, nil

	case exportedMsg:
		m.loading--
		return m, nil
	}

	return m, nil
}

// enterSession kicks off every fetch a fresh session needs. Callers
// bump m.loading themselves before returning.
func (m Model) enterSession() tea.Cmd {
	return tea.Batch(
		m.refreshAll(),
		m.fetchSummary(),
		m.fetchHistory(),
		m.loadSettings(),
		m.spin.Tick,
	)
}

func (m Model) afterMutation(err error, success string) (tea.Model, tea.Cmd) {
	m.loading--
	if err != nil {
		if m.form != nil {
			m.form.errMsg = errorText(err, "request failed")
			return m, nil
		}
		m = m.pushLocalToast(notify.Error, "Error", errorText(err, "request failed"))
		return m, expireToast(m.toastID)
	}
	m.form = nil
	m = m.pushLocalToast(notify.Success, "Success", success)
	m.loading++
	return m, tea.Batch(
		expireToast(m.toastID),
		m.refreshAll(),
		m.fetchSummary(),
		m.fetchHistory(),
		m.spin.Tick,
	)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirm != nil {
		switch {
		case msg.String() == "y", key.Matches(msg, keys.Confirm):
			action := m.confirm.action
			m.confirm = nil
			m.loading++
			return m, tea.Batch(action, m.spin.Tick)
		case msg.String() == "n", key.Matches(msg, keys.Back):
			m.confirm = nil
		}
		return m, nil
	}

	if m.searchActive {
		if key.Matches(msg, keys.Confirm) || key.Matches(msg, keys.Back) {
			m.searchActive = false
			m.searchInput.Blur()
			m.filters.Search = m.searchInput.Value()
			m.page = 1
			m.cursor = 0
			return m, nil
		}
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}

	if m.form != nil {
		return m.handleFormKey(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.NextScreen):
		m = m.switchScreen(1)
		return m, nil
	case key.Matches(msg, keys.PrevScreen):
		m = m.switchScreen(-1)
		return m, nil
	case key.Matches(msg, keys.Refresh):
		if m.user != nil {
			m.loading++
			return m, tea.Batch(m.refreshAll(), m.fetchSummary(), m.fetchHistory(), m.spin.Tick)
		}
		return m, m.checkSession()
	}

	switch m.screen {
	case ScreenTransactions:
		return m.handleTransactionsKey(msg)
	case ScreenCategories:
		return m.handleCategoriesKey(msg)
	case ScreenSettings:
		return m.handleSettingsKey(msg)
	case ScreenTransfer:
		return m.handleTransferKey(msg)
	case ScreenDashboard:
		if msg.String() == "L" && m.user != nil {
			return m, m.logout()
		}
	}
	return m, nil
}

func (m Model) handleTransactionsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	page := m.currentPage()

	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(page.Items)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.PrevPage):
		if m.page > 1 {
			m.page--
			m.cursor = 0
		}
	case key.Matches(msg, keys.NextPage):
		if m.page < pagination.TotalPages(len(m.visible()), m.perPage) {
			m.page++
			m.cursor = 0
		}
	case key.Matches(msg, keys.New):
		m.form = newTransactionForm(m.categories, nil)
	case key.Matches(msg, keys.Edit):
		if m.cursor < len(page.Items) {
			tx := page.Items[m.cursor]
			m.form = newTransactionForm(m.categories, &tx)
		}
	case key.Matches(msg, keys.Delete):
		if m.cursor < len(page.Items) {
			tx := page.Items[m.cursor]
			m.confirm = &confirmPrompt{
				message: fmt.Sprintf("delete %q?", tx.Description),
				action:  m.deleteTransaction(tx.ID),
			}
		}
	case key.Matches(msg, keys.Search):
		m.searchActive = true
		m.searchInput.SetValue(m.filters.Search)
		m.searchInput.Focus()
	case key.Matches(msg, keys.FilterKind):
		m.filters.Kind = nextKindFilter(m.filters.Kind)
		m.page = 1
		m.cursor = 0
	case key.Matches(msg, keys.FilterCat):
		m.filters.Category = m.nextCategoryFilter(m.filters.Category)
		m.page = 1
		m.cursor = 0
	case key.Matches(msg, keys.Sort):
		m.filters.Toggle(nextSortKey(m.filters.SortBy))
		m.page = 1
		m.cursor = 0
	case key.Matches(msg, keys.Order):
		m.filters.Toggle(m.filters.SortBy)
	case msg.String() == "t":
		m.form = newDatesForm(m.filters.DateFrom, m.filters.DateTo)
	}
	return m, nil
}

func (m Model) handleCategoriesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.categories)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.New):
		m.form = newCategoryForm(nil)
	case key.Matches(msg, keys.Edit):
		if m.cursor < len(m.categories) {
			cat := m.categories[m.cursor]
			m.form = newCategoryForm(&cat)
		}
	case key.Matches(msg, keys.Delete):
		if m.cursor < len(m.categories) {
			cat := m.categories[m.cursor]
			m.confirm = &confirmPrompt{
				message: fmt.Sprintf("delete category %q? its transactions become uncategorized", cat.Name),
				action:  m.deleteCategory(cat.ID),
			}
		}
	}
	return m, nil
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Currency):
		m.currencyIdx = (m.currencyIdx + 1) % len(settings.DisplayCurrencies)
	case key.Matches(msg, keys.Confirm):
		code := settings.DisplayCurrencies[m.currencyIdx]
		if m.deps.Prefs != nil && code != m.deps.Prefs.Current().Code {
			m.loading++
			return m, tea.Batch(m.changeCurrency(code), m.spin.Tick)
		}
	case key.Matches(msg, keys.Password):
		m.form = newPasswordForm()
	case msg.String() == "L":
		return m, m.logout()
	}
	return m, nil
}

func (m Model) handleTransferKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Import):
		m.form = newImportForm()
	case key.Matches(msg, keys.Export):
		m.loading++
		return m, tea.Batch(m.runExport(), m.spin.Tick)
	}
	return m, nil
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form
	if key.Matches(msg, keys.Back) {
		if m.screen == ScreenLogin {
			// esc flips between sign in and registration
			if f.kind == formLogin {
				m.form = newRegisterForm()
			} else {
				m.form = newLoginForm()
			}
			return m, nil
		}
		m.form = nil
		return m, nil
	}
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab", "down":
		f.nextField()
		return m, nil
	case "shift+tab", "up":
		f.prevField()
		return m, nil
	case "left":
		if f.onChoice() {
			f.cycle(-1, m.categories)
			return m, nil
		}
	case "right":
		if f.onChoice() {
			f.cycle(1, m.categories)
			return m, nil
		}
	case "enter":
		if f.focus < f.fieldCount()-1 {
			f.nextField()
			return m, nil
		}
		return m.submitForm()
	}
	return m, f.updateInputs(msg)
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	f := m.form
	switch f.kind {
	case formLogin:
		email, password := f.value(0), f.value(1)
		if email == "" || password == "" {
			f.errMsg = "email and password are required"
			return m, nil
		}
		return m, m.login(email, password)

	case formRegister:
		username, email := f.value(0), f.value(1)
		password, confirm := f.value(2), f.value(3)
		if username == "" || email == "" {
			f.errMsg = "username and email are required"
			return m, nil
		}
		if password != confirm {
			f.errMsg = "passwords do not match"
			return m, nil
		}
		if !settings.CheckPassword(password).Valid() {
			f.errMsg = "password needs 8+ chars, a lowercase letter, a number and a special character"
			return m, nil
		}
		return m, m.register(username, email, password)

	case formTransaction:
		amount, err := core.ParseAmount(f.value(0))
		if err != nil {
			f.errMsg = "invalid amount"
			return m, nil
		}
		description := f.value(1)
		if description == "" {
			f.errMsg = "description is required"
			return m, nil
		}
		if _, err := core.ParseDate(f.value(2)); err != nil {
			f.errMsg = "date must be YYYY-MM-DD"
			return m, nil
		}
		input := api.TransactionInput{
			Amount:      amount.Float(),
			Description: description,
			Date:        f.value(2),
			Kind:        string(f.kindChoice),
		}
		if f.categoryIdx >= 0 && f.categoryIdx < len(m.categories) {
			id := m.categories[f.categoryIdx].ID
			input.CategoryID = &id
		}
		m.loading++
		return m, tea.Batch(m.saveTransaction(f.editID, input), m.spin.Tick)

	case formCategory:
		candidate := core.Category{
			Name:  f.value(0),
			Color: f.value(1),
			Type:  f.typeChoice,
		}
		if err := candidate.Validate(); err != nil {
			f.errMsg = errorText(err, "invalid category")
			return m, nil
		}
		input := api.CategoryInput{
			Name:  candidate.Name,
			Color: candidate.Color,
			Type:  string(candidate.Type),
		}
		m.loading++
		return m, tea.Batch(m.saveCategory(f.editID, input), m.spin.Tick)

	case formPassword:
		current, next, confirm := f.value(0), f.value(1), f.value(2)
		if err := settings.ValidatePasswordChange(current, next, confirm); err != nil {
			f.errMsg = err.Error()
			return m, nil
		}
		m.loading++
		return m, tea.Batch(m.changePassword(current, next), m.spin.Tick)

	case formImport:
		path := f.value(0)
		m.loading++
		return m, tea.Batch(m.runImport(path), m.spin.Tick)

	case formDates:
		// Malformed bounds are treated as no constraint by the filter, so
		// the form accepts anything.
		m.filters.DateFrom = f.value(0)
		m.filters.DateTo = f.value(1)
		m.form = nil
		m.page = 1
		m.cursor = 0
		return m, nil
	}
	return m, nil
}

// switchScreen cycles through the authenticated screens.
func (m Model) switchScreen(delta int) Model {
	if m.user == nil && !m.offline {
		return m
	}
	cur := 0
	for i, s := range screenOrder {
		if s == m.screen {
			cur = i
			break
		}
	}
	next := screenOrder[(cur+delta+len(screenOrder))%len(screenOrder)]
	m.logger.Debug("screen changed", log.FieldScreen, screenNames[next])
	m.screen = next
	m.cursor = 0
	return m
}

// Helpers

func (m Model) visible() []core.Transaction {
	return filter.Apply(m.transactions, m.filters)
}

func (m Model) currentPage() pagination.Page[core.Transaction] {
	return pagination.Paginate(m.visible(), m.page, m.perPage)
}

// clampList keeps page and cursor valid after the underlying data moved.
func (m Model) clampList() Model {
	if m.page < 1 {
		m.page = 1
	}
	total := pagination.TotalPages(len(m.visible()), m.perPage)
	if m.page > total {
		m.page = total
	}
	if n := len(m.currentPage().Items); m.cursor >= n {
		m.cursor = 0
	}
	return m
}

func nextKindFilter(cur string) string {
	switch cur {
	case "":
		return string(core.Income)
	case string(core.Income):
		return string(core.Expense)
	default:
		return ""
	}
}

// nextCategoryFilter cycles none -> each category -> none.
func (m Model) nextCategoryFilter(cur string) string {
	if len(m.categories) == 0 {
		return ""
	}
	if cur == "" {
		return strconv.FormatInt(m.categories[0].ID, 10)
	}
	for i, c := range m.categories {
		if strconv.FormatInt(c.ID, 10) == cur {
			if i+1 < len(m.categories) {
				return strconv.FormatInt(m.categories[i+1].ID, 10)
			}
			return ""
		}
	}
	return ""
}

func nextSortKey(cur filter.SortKey) filter.SortKey {
	for i, k := range sortCycle {
		if k == cur {
			return sortCycle[(i+1)%len(sortCycle)]
		}
	}
	return filter.SortDate
}

func (m Model) currentCurrencyIdx() int {
	if m.deps.Prefs == nil {
		return 0
	}
	code := m.deps.Prefs.Current().Code
	for i, c := range settings.DisplayCurrencies {
		if c == code {
			return i
		}
	}
	return 0
}

func (m Model) pushToast(n notify.Notification) Model {
	m.toastID++
	m.toasts = append(m.toasts, toast{id: m.toastID, n: n})
	return m
}

func (m Model) pushLocalToast(t notify.Type, title, message string) Model {
	return m.pushToast(notify.Notification{Type: t, Title: title, Message: message})
}

// errorText prefers the backend's message for api errors.
func errorText(err error, fallback string) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Msg != "" {
		return apiErr.Msg
	}
	return fallback
}
