package ui

import (
	"strconv"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"trirule/internal/api"
	"trirule/internal/core"
	"trirule/internal/filter"
	"trirule/internal/notify"
)

var userStub = api.User{ID: 1, Username: "demo", Email: "demo@example.com"}

func testModel(t *testing.T) Model {
	t.Helper()
	m := NewModel(Deps{PerPage: 5})
	m.ready = true
	m.width = 120
	m.height = 40
	return m
}

func makeTransactions(n int) []core.Transaction {
	out := make([]core.Transaction, 0, n)
	for i := 0; i < n; i++ {
		d, _ := core.ParseDate("2024-03-" + twoDigit(i%27+1))
		out = append(out, core.Transaction{
			ID:          int64(i + 1),
			Amount:      core.Money{Cents: int64(100 * (i + 1))},
			Description: "tx " + strconv.Itoa(i+1),
			Date:        d,
			Kind:        core.Expense,
		})
	}
	return out
}

func twoDigit(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func TestRefreshedPopulatesAndClamps(t *testing.T) {
	m := testModel(t)
	m.loading = 1
	m.page = 9 // stale page from a longer list

	next, _ := m.Update(refreshedMsg{transactions: makeTransactions(7)})
	got := next.(Model)

	if len(got.transactions) != 7 {
		t.Fatalf("transactions: %d", len(got.transactions))
	}
	// 7 items at 5 per page is 2 pages; page 9 clamps to 2.
	if got.page != 2 {
		t.Fatalf("page: %d", got.page)
	}
	if got.loading != 0 {
		t.Fatalf("loading: %d", got.loading)
	}
}

func TestKindFilterCycles(t *testing.T) {
	if got := nextKindFilter(""); got != "income" {
		t.Fatalf("first: %q", got)
	}
	if got := nextKindFilter("income"); got != "expense" {
		t.Fatalf("second: %q", got)
	}
	if got := nextKindFilter("expense"); got != "" {
		t.Fatalf("third: %q", got)
	}
}

func TestCategoryFilterCycles(t *testing.T) {
	m := testModel(t)
	m.categories = []core.Category{
		{ID: 4, Name: "Rent", Color: "#ffffff", Type: core.Need},
		{ID: 9, Name: "Fun", Color: "#000000", Type: core.Want},
	}
	if got := m.nextCategoryFilter(""); got != "4" {
		t.Fatalf("first: %q", got)
	}
	if got := m.nextCategoryFilter("4"); got != "9" {
		t.Fatalf("second: %q", got)
	}
	if got := m.nextCategoryFilter("9"); got != "" {
		t.Fatalf("wrap: %q", got)
	}
}

func TestSortKeyCycleCoversAllColumns(t *testing.T) {
	seen := map[filter.SortKey]bool{}
	k := filter.SortDate
	for i := 0; i < len(sortCycle); i++ {
		seen[k] = true
		k = nextSortKey(k)
	}
	if len(seen) != len(sortCycle) {
		t.Fatalf("cycle misses columns: %v", seen)
	}
	if k != filter.SortDate {
		t.Fatalf("cycle does not wrap: %s", k)
	}
}

func TestPageNavigationClamps(t *testing.T) {
	m := testModel(t)
	m.user = &userStub
	m.screen = ScreenTransactions
	m.transactions = makeTransactions(12) // 3 pages at 5 per page

	// Already on page 1; left must not underflow.
	next, _ := m.handleTransactionsKey(keyMsg("left"))
	if got := next.(Model); got.page != 1 {
		t.Fatalf("page after left on first: %d", got.page)
	}

	m.page = 3
	next, _ = m.handleTransactionsKey(keyMsg("right"))
	if got := next.(Model); got.page != 3 {
		t.Fatalf("page after right on last: %d", got.page)
	}

	m.page = 2
	next, _ = m.handleTransactionsKey(keyMsg("right"))
	if got := next.(Model); got.page != 3 || got.cursor != 0 {
		t.Fatalf("page=%d cursor=%d", next.(Model).page, next.(Model).cursor)
	}
}

func TestFilterChangeResetsPage(t *testing.T) {
	m := testModel(t)
	m.screen = ScreenTransactions
	m.transactions = makeTransactions(20)
	m.page = 4

	next, _ := m.handleTransactionsKey(keyMsg("f"))
	got := next.(Model)
	if got.page != 1 {
		t.Fatalf("page: %d", got.page)
	}
	if got.filters.Kind != "income" {
		t.Fatalf("kind filter: %q", got.filters.Kind)
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	m := testModel(t)
	m.screen = ScreenTransactions
	m.transactions = makeTransactions(3)

	next, _ := m.handleTransactionsKey(keyMsg("d"))
	got := next.(Model)
	if got.confirm == nil {
		t.Fatal("expected confirmation prompt")
	}

	// Declining clears the prompt without firing the action.
	after, cmd := got.handleKey(keyMsg("n"))
	if after.(Model).confirm != nil {
		t.Fatal("prompt not cleared")
	}
	if cmd != nil {
		t.Fatal("decline must not run the action")
	}

	// Confirming with enter fires the action.
	after, cmd = got.handleKey(keyMsg("enter"))
	if after.(Model).confirm != nil {
		t.Fatal("prompt not cleared on confirm")
	}
	if cmd == nil {
		t.Fatal("confirm must run the action")
	}
}

func TestToastsExpireByID(t *testing.T) {
	m := testModel(t)
	next, _ := m.Update(notificationMsg{n: notify.Notification{Type: notify.Info, Title: "A", Message: "one"}})
	m = next.(Model)
	firstID := m.toastID
	next, _ = m.Update(notificationMsg{n: notify.Notification{Type: notify.Info, Title: "B", Message: "two"}})
	m = next.(Model)

	next, _ = m.Update(toastExpiredMsg{id: firstID})
	m = next.(Model)
	if len(m.toasts) != 1 || m.toasts[0].n.Title != "B" {
		t.Fatalf("toasts: %+v", m.toasts)
	}
}

func TestTransactionFormValidation(t *testing.T) {
	m := testModel(t)
	m.form = newTransactionForm(nil, nil)
	m.form.inputs[0].SetValue("abc")
	m.form.inputs[1].SetValue("lunch")
	m.form.inputs[2].SetValue("2024-03-01")

	next, cmd := m.submitForm()
	got := next.(Model)
	if got.form.errMsg == "" {
		t.Fatal("expected amount error")
	}
	if cmd != nil {
		t.Fatal("invalid form must not submit")
	}

	got.form.inputs[0].SetValue("12.50")
	got.form.inputs[2].SetValue("not-a-date")
	next, cmd = got.submitForm()
	if next.(Model).form.errMsg == "" || cmd != nil {
		t.Fatal("expected date error")
	}
}

func TestDatesFormAcceptsAnythingAndResetsPage(t *testing.T) {
	m := testModel(t)
	m.screen = ScreenTransactions
	m.page = 3
	m.form = newDatesForm("", "")
	m.form.inputs[0].SetValue("garbage")
	m.form.inputs[1].SetValue("2024-12-31")

	next, _ := m.submitForm()
	got := next.(Model)
	if got.form != nil {
		t.Fatal("form should close")
	}
	if got.filters.DateFrom != "garbage" || got.filters.DateTo != "2024-12-31" {
		t.Fatalf("filters: %+v", got.filters)
	}
	if got.page != 1 {
		t.Fatalf("page: %d", got.page)
	}
}

func TestImportPartialSuccessDoesNotRefetch(t *testing.T) {
	m := testModel(t)
	m.loading = 1

	next, cmd := m.Update(importedMsg{result: api.ImportResult{SuccessCount: 3, ErrorCount: 2}})
	got := next.(Model)
	if got.loading != 0 {
		t.Fatalf("loading: %d", got.loading)
	}
	if cmd != nil {
		t.Fatal("partial import must not trigger a refetch")
	}
}

func TestMonthBounds(t *testing.T) {
	at := time.Date(2024, 2, 15, 12, 0, 0, 0, time.UTC)
	start, end := monthBounds(at)
	if start.Format("2006-01-02") != "2024-02-01" {
		t.Fatalf("start: %s", start)
	}
	if end.Format("2006-01-02") != "2024-02-29" {
		t.Fatalf("end: %s", end)
	}
}

func TestSwitchScreenRequiresSession(t *testing.T) {
	m := testModel(t)
	m.screen = ScreenLogin
	if got := m.switchScreen(1); got.screen != ScreenLogin {
		t.Fatalf("screen changed without session: %v", got.screen)
	}

	m.user = &userStub
	m.screen = ScreenDashboard
	if got := m.switchScreen(1); got.screen != ScreenTransactions {
		t.Fatalf("next screen: %v", got.screen)
	}
	if got := m.switchScreen(-1); got.screen != ScreenTransfer {
		t.Fatalf("previous wraps: %v", got.screen)
	}
}

func TestEscClosesFormOutsideLogin(t *testing.T) {
	m := testModel(t)
	m.user = &userStub
	m.screen = ScreenTransactions
	m.form = newTransactionForm(nil, nil)

	next, _ := m.handleKey(keyMsg("esc"))
	if next.(Model).form != nil {
		t.Fatal("esc should close the form")
	}
}

func TestEscFlipsLoginAndRegister(t *testing.T) {
	m := testModel(t)
	m.screen = ScreenLogin
	m.form = newLoginForm()

	next, _ := m.handleKey(keyMsg("esc"))
	m = next.(Model)
	if m.form == nil || m.form.kind != formRegister {
		t.Fatalf("expected register form, got %+v", m.form)
	}

	next, _ = m.handleKey(keyMsg("esc"))
	m = next.(Model)
	if m.form == nil || m.form.kind != formLogin {
		t.Fatalf("expected login form, got %+v", m.form)
	}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}
