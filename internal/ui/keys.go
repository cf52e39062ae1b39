package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit    key.Binding
	Back    key.Binding
	Confirm key.Binding

	NextScreen key.Binding
	PrevScreen key.Binding

	Up       key.Binding
	Down     key.Binding
	PrevPage key.Binding
	NextPage key.Binding

	New    key.Binding
	Edit   key.Binding
	Delete key.Binding

	Search     key.Binding
	FilterKind key.Binding
	FilterCat  key.Binding
	Sort       key.Binding
	Order      key.Binding

	Currency key.Binding
	Password key.Binding
	Import   key.Binding
	Export   key.Binding
	Refresh  key.Binding
}

var keys = keyMap{
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),

	NextScreen: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next screen")),
	PrevScreen: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous screen")),

	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	PrevPage: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous page")),
	NextPage: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next page")),

	New:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
	Edit:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	Delete: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),

	Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	FilterKind: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter kind")),
	FilterCat:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "filter category")),
	Sort:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort column")),
	Order:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "sort order")),

	Currency: key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "currency")),
	Password: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "password")),
	Import:   key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "import")),
	Export:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export")),
	Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
}
