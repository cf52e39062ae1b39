package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"trirule/internal/core"
)

type formKind int

const (
	formLogin formKind = iota
	formRegister
	formTransaction
	formCategory
	formPassword
	formImport
	formDates
)

// form is a small focus-tracked input group. Text inputs come first;
// enumerated choices (kind, category, type) follow as pseudo-fields
// cycled with left/right.
type form struct {
	kind    formKind
	title   string
	labels  []string
	inputs  []textinput.Model
	choices int
	focus   int
	editID  int64
	errMsg  string

	kindChoice  core.Kind
	typeChoice  core.CategoryType
	categoryIdx int // index into the model's category list, -1 = none
}

func newInput(placeholder string, echo bool) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 200
	if !echo {
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '•'
	}
	return in
}

func newLoginForm() *form {
	f := &form{
		kind:   formLogin,
		title:  "Sign in",
		labels: []string{"email", "password"},
		inputs: []textinput.Model{
			newInput("you@example.com", true),
			newInput("password", false),
		},
	}
	f.setFocus(0)
	return f
}

func newRegisterForm() *form {
	f := &form{
		kind:   formRegister,
		title:  "Create account",
		labels: []string{"username", "email", "password", "confirm password"},
		inputs: []textinput.Model{
			newInput("username", true),
			newInput("you@example.com", true),
			newInput("password", false),
			newInput("repeat password", false),
		},
	}
	f.setFocus(0)
	return f
}

func newTransactionForm(categories []core.Category, existing *core.Transaction) *form {
	f := &form{
		kind:   formTransaction,
		title:  "New transaction",
		labels: []string{"amount", "description", "date", "kind", "category"},
		inputs: []textinput.Model{
			newInput("0.00", true),
			newInput("description", true),
			newInput("YYYY-MM-DD", true),
		},
		choices:     2,
		kindChoice:  core.Expense,
		categoryIdx: -1,
	}
	if existing != nil {
		f.title = "Edit transaction"
		f.editID = existing.ID
		f.inputs[0].SetValue(existing.Amount.Decimal())
		f.inputs[1].SetValue(existing.Description)
		f.inputs[2].SetValue(existing.Date.String())
		f.kindChoice = existing.Kind
		if existing.Category != nil {
			for i, c := range categories {
				if c.ID == existing.Category.ID {
					f.categoryIdx = i
					break
				}
			}
		}
	}
	f.setFocus(0)
	return f
}

func newCategoryForm(existing *core.Category) *form {
	f := &form{
		kind:   formCategory,
		title:  "New category",
		labels: []string{"name", "color", "type"},
		inputs: []textinput.Model{
			newInput("name", true),
			newInput("#rrggbb", true),
		},
		choices:    1,
		typeChoice: core.Need,
	}
	if existing != nil {
		f.title = "Edit category"
		f.editID = existing.ID
		f.inputs[0].SetValue(existing.Name)
		f.inputs[1].SetValue(existing.Color)
		f.typeChoice = existing.Type
	}
	f.setFocus(0)
	return f
}

func newPasswordForm() *form {
	f := &form{
		kind:   formPassword,
		title:  "Change password",
		labels: []string{"current password", "new password", "confirm new password"},
		inputs: []textinput.Model{
			newInput("current", false),
			newInput("new", false),
			newInput("repeat new", false),
		},
	}
	f.setFocus(0)
	return f
}

func newImportForm() *form {
	f := &form{
		kind:   formImport,
		title:  "Import spreadsheet",
		labels: []string{"file path"},
		inputs: []textinput.Model{
			newInput("data.xlsx", true),
		},
	}
	f.setFocus(0)
	return f
}

func newDatesForm(from, to string) *form {
	f := &form{
		kind:   formDates,
		title:  "Date range",
		labels: []string{"from", "to"},
		inputs: []textinput.Model{
			newInput("YYYY-MM-DD", true),
			newInput("YYYY-MM-DD", true),
		},
	}
	f.inputs[0].SetValue(from)
	f.inputs[1].SetValue(to)
	f.setFocus(0)
	return f
}

func (f *form) fieldCount() int {
	return len(f.inputs) + f.choices
}

func (f *form) setFocus(i int) {
	f.focus = i
	for j := range f.inputs {
		if j == i {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
}

func (f *form) nextField() {
	f.setFocus((f.focus + 1) % f.fieldCount())
}

func (f *form) prevField() {
	f.setFocus((f.focus - 1 + f.fieldCount()) % f.fieldCount())
}

// onChoice reports whether focus sits on a pseudo-field.
func (f *form) onChoice() bool {
	return f.focus >= len(f.inputs)
}

// cycle rotates the focused choice. categories is the model's category
// list, used by the transaction form.
func (f *form) cycle(delta int, categories []core.Category) {
	if !f.onChoice() {
		return
	}
	choice := f.focus - len(f.inputs)
	switch f.kind {
	case formTransaction:
		if choice == 0 {
			if f.kindChoice == core.Expense {
				f.kindChoice = core.Income
			} else {
				f.kindChoice = core.Expense
			}
			return
		}
		// -1 (none) .. len(categories)-1
		n := len(categories) + 1
		idx := (f.categoryIdx + 1 + delta + n) % n
		f.categoryIdx = idx - 1
	case formCategory:
		order := []core.CategoryType{core.Need, core.Want, core.Save}
		for i, t := range order {
			if t == f.typeChoice {
				f.typeChoice = order[(i+delta+len(order))%len(order)]
				return
			}
		}
		f.typeChoice = core.Need
	}
}

// updateInputs forwards a message to the focused text input.
func (f *form) updateInputs(msg tea.Msg) tea.Cmd {
	if f.focus >= len(f.inputs) {
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *form) value(i int) string {
	return strings.TrimSpace(f.inputs[i].Value())
}

// choiceLabel renders the current value of pseudo-field i.
func (f *form) choiceLabel(choice int, categories []core.Category) string {
	switch f.kind {
	case formTransaction:
		if choice == 0 {
			return string(f.kindChoice)
		}
		if f.categoryIdx < 0 || f.categoryIdx >= len(categories) {
			return "none"
		}
		c := categories[f.categoryIdx]
		return c.Name + " (#" + strconv.FormatInt(c.ID, 10) + ")"
	case formCategory:
		return string(f.typeChoice)
	}
	return ""
}
