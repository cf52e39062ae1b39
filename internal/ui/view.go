package ui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"trirule/internal/core"
	"trirule/internal/filter"
	"trirule/internal/notify"
	"trirule/internal/pagination"
	"trirule/internal/settings"
	"trirule/internal/transfer"
	"trirule/internal/ui/theme"
)

var (
	t = theme.Default

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(t.Primary)
	tabStyle    = lipgloss.NewStyle().Foreground(t.Muted).Padding(0, 1)
	activeTab   = lipgloss.NewStyle().Foreground(t.Text).Background(t.Overlay).Padding(0, 1).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(t.Muted)
	labelStyle  = lipgloss.NewStyle().Foreground(t.Subtext)
	errStyle    = lipgloss.NewStyle().Foreground(t.Error)
	okStyle     = lipgloss.NewStyle().Foreground(t.Success)
	warnStyle   = lipgloss.NewStyle().Foreground(t.Warning)
	infoStyle   = lipgloss.NewStyle().Foreground(t.Info)
	incomeStyle = lipgloss.NewStyle().Foreground(t.Income)
	expStyle    = lipgloss.NewStyle().Foreground(t.Expense)
	cursorStyle = lipgloss.NewStyle().Background(t.Overlay).Foreground(t.Text)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 2)
)

var screenNames = map[Screen]string{
	ScreenDashboard:    "Dashboard",
	ScreenTransactions: "Transactions",
	ScreenCategories:   "Categories",
	ScreenSettings:     "Settings",
	ScreenTransfer:     "Import/Export",
}

func (m Model) View() string {
	if !m.ready {
		return "\n  Loading..."
	}

	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteString("\n")

	if toasts := m.viewToasts(); toasts != "" {
		b.WriteString(toasts)
		b.WriteString("\n")
	}

	switch {
	case m.confirm != nil:
		b.WriteString(m.viewConfirm())
	case m.form != nil:
		b.WriteString(m.viewForm())
	default:
		switch m.screen {
		case ScreenLogin:
			b.WriteString(mutedStyle.Render("  connecting..."))
		case ScreenDashboard:
			b.WriteString(m.viewDashboard())
		case ScreenTransactions:
			b.WriteString(m.viewTransactions())
		case ScreenCategories:
			b.WriteString(m.viewCategories())
		case ScreenSettings:
			b.WriteString(m.viewSettings())
		case ScreenTransfer:
			b.WriteString(m.viewTransfer())
		}
	}

	return b.String()
}

func (m Model) viewHeader() string {
	left := titleStyle.Render(" trirule ")

	var tabs []string
	if m.user != nil || m.offline {
		for _, s := range screenOrder {
			if s == m.screen {
				tabs = append(tabs, activeTab.Render(screenNames[s]))
			} else {
				tabs = append(tabs, tabStyle.Render(screenNames[s]))
			}
		}
	}

	var right string
	switch {
	case m.offline:
		right = warnStyle.Render("offline")
	case m.user != nil:
		right = mutedStyle.Render(m.user.Username)
	}
	if m.loading > 0 {
		right = m.spin.View() + " " + right
	}

	return left + strings.Join(tabs, "") + "  " + right
}

func (m Model) viewToasts() string {
	var lines []string
	for _, toast := range m.toasts {
		style := infoStyle
		switch toast.n.Type {
		case notify.Success:
			style = okStyle
		case notify.Error:
			style = errStyle
		case notify.Warning:
			style = warnStyle
		}
		lines = append(lines, "  "+style.Render(toast.n.Title+": "+toast.n.Message))
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewConfirm() string {
	return "\n  " + warnStyle.Render(m.confirm.message) + "\n\n" +
		mutedStyle.Render("  y: yes   n: no")
}

func (m Model) viewForm() string {
	f := m.form
	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render(f.title) + "\n\n")

	for i := range f.inputs {
		marker := "  "
		if f.focus == i {
			marker = "> "
		}
		b.WriteString(fmt.Sprintf("  %s%s %s\n", marker,
			labelStyle.Render(fmt.Sprintf("%-20s", f.labels[i])), f.inputs[i].View()))
	}
	for c := 0; c < f.choices; c++ {
		idx := len(f.inputs) + c
		marker := "  "
		if f.focus == idx {
			marker = "> "
		}
		b.WriteString(fmt.Sprintf("  %s%s ◂ %s ▸\n", marker,
			labelStyle.Render(fmt.Sprintf("%-20s", f.labels[idx])),
			f.choiceLabel(c, m.categories)))
	}

	if f.errMsg != "" {
		b.WriteString("\n  " + errStyle.Render(f.errMsg) + "\n")
	}

	help := "enter: submit   esc: cancel   tab: next field"
	if m.screen == ScreenLogin {
		if f.kind == formLogin {
			help = "enter: sign in   esc: create an account instead"
		} else {
			help = "enter: register   esc: back to sign in"
		}
	}
	b.WriteString("\n" + mutedStyle.Render("  "+help))
	return b.String()
}

func (m Model) viewDashboard() string {
	symbol := m.currencySymbol()

	if !m.summaryLoaded {
		return mutedStyle.Render("  loading summary...")
	}

	s := m.summaryReport.Summary
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		cardStyle.Render(labelStyle.Render("Income")+"\n"+incomeStyle.Render(s.Income.Format(symbol))),
		cardStyle.Render(labelStyle.Render("Expenses")+"\n"+expStyle.Render(s.Expenses.Format(symbol))),
		cardStyle.Render(labelStyle.Render("Balance")+"\n"+balanceStyle(s.Balance).Render(s.Balance.Format(symbol))),
	)

	var b strings.Builder
	b.WriteString("\n" + cards + "\n")

	if breakdown := m.viewBreakdown(symbol); breakdown != "" {
		b.WriteString("\n" + breakdown + "\n")
	}
	if history := m.viewHistory(symbol); history != "" {
		b.WriteString("\n" + history + "\n")
	}

	b.WriteString("\n" + mutedStyle.Render("  tab: screens   r: refresh   L: sign out   q: quit"))
	return b.String()
}

func (m Model) viewBreakdown(symbol string) string {
	br := m.summaryReport.Breakdown
	if len(br.Income) == 0 && len(br.Expenses) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("  " + labelStyle.Render("By category") + "\n")
	for _, name := range sortedKeys(br.Expenses) {
		b.WriteString(fmt.Sprintf("    %-24s %s\n", name, expStyle.Render(br.Expenses[name].Format(symbol))))
	}
	for _, name := range sortedKeys(br.Income) {
		b.WriteString(fmt.Sprintf("    %-24s %s\n", name, incomeStyle.Render(br.Income[name].Format(symbol))))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) viewHistory(symbol string) string {
	if len(m.history) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("  " + labelStyle.Render("This month") + "\n")
	for _, p := range m.history {
		b.WriteString(fmt.Sprintf("    %04d-%02d-%02d  %s / %s\n",
			p.Year, p.Month, p.Day,
			incomeStyle.Render(p.Income.Format(symbol)),
			expStyle.Render(p.Expense.Format(symbol))))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) viewTransactions() string {
	symbol := m.currencySymbol()
	visible := m.visible()
	page := m.currentPage()
	totalPages := pagination.TotalPages(len(visible), m.perPage)

	var b strings.Builder
	b.WriteString("\n  " + m.viewFilterLine() + "\n\n")

	header := fmt.Sprintf("  %-12s %-28s %-16s %-8s %12s",
		sortHeading("Date", filter.SortDate, m.filters),
		sortHeading("Description", filter.SortDescription, m.filters),
		sortHeading("Category", filter.SortCategory, m.filters),
		sortHeading("Kind", filter.SortKind, m.filters),
		sortHeading("Amount", filter.SortAmount, m.filters))
	b.WriteString(labelStyle.Render(header) + "\n")

	if len(page.Items) == 0 {
		b.WriteString(mutedStyle.Render("  no transactions") + "\n")
	}
	for i, tx := range page.Items {
		row := transactionRow(tx, symbol)
		if i == m.cursor {
			row = cursorStyle.Render(row)
		}
		b.WriteString(row + "\n")
	}

	b.WriteString("\n  " + renderWindow(m.page, totalPages) +
		mutedStyle.Render(fmt.Sprintf("   %d of %d", len(page.Items), len(visible))) + "\n")
	b.WriteString(mutedStyle.Render("  n: new  e: edit  d: delete  /: search  f: kind  c: category  t: dates  s: sort  o: order  ←/→: page"))

	if m.searchActive {
		b.WriteString("\n\n  search: " + m.searchInput.View())
	}
	return b.String()
}

func transactionRow(tx core.Transaction, symbol string) string {
	// SignedCents applies expense polarity once, whatever sign the
	// backend stored the amount with.
	signed := core.Money{Cents: tx.SignedCents()}
	kind := incomeStyle.Render(string(tx.Kind))
	amount := incomeStyle.Render(signed.Format(symbol))
	if tx.Kind == core.Expense {
		kind = expStyle.Render(string(tx.Kind))
		amount = expStyle.Render(signed.Format(symbol))
	}
	category := tx.CategoryName()
	if category == "" {
		category = mutedStyle.Render("uncategorized")
	}
	return fmt.Sprintf("  %-12s %-28s %-16s %-8s %12s",
		tx.Date.String(), truncate(tx.Description, 28), category, kind, amount)
}

func (m Model) viewFilterLine() string {
	var parts []string
	if m.filters.Kind != "" {
		parts = append(parts, "kind="+m.filters.Kind)
	}
	if m.filters.Category != "" {
		name := m.filters.Category
		for _, c := range m.categories {
			if strconv.FormatInt(c.ID, 10) == m.filters.Category {
				name = c.Name
				break
			}
		}
		parts = append(parts, "category="+name)
	}
	if m.filters.DateFrom != "" || m.filters.DateTo != "" {
		parts = append(parts, fmt.Sprintf("dates=%s..%s", m.filters.DateFrom, m.filters.DateTo))
	}
	if m.filters.Search != "" {
		parts = append(parts, "search="+m.filters.Search)
	}
	if len(parts) == 0 {
		return mutedStyle.Render("no filters")
	}
	return infoStyle.Render(strings.Join(parts, "  "))
}

func (m Model) viewCategories() string {
	var b strings.Builder
	b.WriteString("\n")
	if len(m.categories) == 0 {
		b.WriteString(mutedStyle.Render("  no categories") + "\n")
	}
	for i, c := range m.categories {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Render("■")
		row := fmt.Sprintf("  %s %-24s %-6s", swatch, c.Name, c.Type)
		if i == m.cursor {
			row = cursorStyle.Render(row)
		}
		b.WriteString(row + "\n")
	}
	b.WriteString("\n" + mutedStyle.Render("  n: new  e: edit  d: delete"))
	return b.String()
}

func (m Model) viewSettings() string {
	var b strings.Builder
	b.WriteString("\n  " + labelStyle.Render("Currency") + "\n")

	current := ""
	if m.deps.Prefs != nil {
		current = m.deps.Prefs.Current().Code
	}
	for i, code := range settings.DisplayCurrencies {
		marker := "  "
		if i == m.currencyIdx {
			marker = "> "
		}
		line := fmt.Sprintf("  %s%s (%s)", marker, code, settings.Symbol(code))
		if code == current {
			line += okStyle.Render("  active")
		}
		b.WriteString(line + "\n")
	}

	if m.deps.Prefs != nil {
		if table := m.deps.Prefs.RateTable(); len(table) > 0 {
			b.WriteString("\n  " + labelStyle.Render("Rates (base "+current+")") + "\n")
			for _, code := range settings.DisplayCurrencies {
				if rate, ok := table[code]; ok && code != current {
					b.WriteString(fmt.Sprintf("    1 %s = %.4f %s\n", current, rate, code))
				}
			}
		}
	}

	if m.user != nil {
		b.WriteString("\n  " + labelStyle.Render("Account") + "\n")
		b.WriteString("    " + m.user.Username + "  " + mutedStyle.Render(m.user.Email) + "\n")
	}

	b.WriteString("\n" + mutedStyle.Render("  u: next currency  enter: apply  p: change password  L: sign out"))
	return b.String()
}

func (m Model) viewTransfer() string {
	var b strings.Builder
	b.WriteString("\n  " + labelStyle.Render("Import") + "\n")
	b.WriteString("    upload a spreadsheet (.xlsx, .xls, .csv); the backend parses the rows\n")
	if m.deps.Transfers != nil && m.deps.Transfers.ImportPhase() == transfer.PhaseRunning {
		b.WriteString("    " + m.spin.View() + " importing...\n")
	}
	b.WriteString("\n  " + labelStyle.Render("Export") + "\n")
	b.WriteString("    download every transaction as a dated spreadsheet\n")
	if m.deps.Transfers != nil && m.deps.Transfers.ExportPhase() == transfer.PhaseRunning {
		b.WriteString("    " + m.spin.View() + " exporting...\n")
	}
	b.WriteString("\n" + mutedStyle.Render("  i: import  x: export"))
	return b.String()
}

// renderWindow draws the compact page strip, highlighting the current
// page and collapsing gaps to an ellipsis.
func renderWindow(current, total int) string {
	var parts []string
	for _, p := range pagination.Window(current, total) {
		switch {
		case p == pagination.Ellipsis:
			parts = append(parts, mutedStyle.Render("…"))
		case p == current:
			parts = append(parts, activeTab.Render(strconv.Itoa(p)))
		default:
			parts = append(parts, tabStyle.Render(strconv.Itoa(p)))
		}
	}
	return strings.Join(parts, " ")
}

func sortHeading(label string, key filter.SortKey, s filter.State) string {
	if s.SortBy != key {
		return label
	}
	if s.SortOrder == filter.Asc {
		return label + " ↑"
	}
	return label + " ↓"
}

func (m Model) currencySymbol() string {
	if m.deps.Prefs != nil {
		if s := m.deps.Prefs.Current().Symbol; s != "" {
			return s
		}
	}
	return "$"
}

func balanceStyle(m core.Money) lipgloss.Style {
	if m.Cents < 0 {
		return expStyle
	}
	return incomeStyle
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func sortedKeys(m map[string]core.Money) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
