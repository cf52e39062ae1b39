package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

const (
	Need CategoryType = "need"
	Want CategoryType = "want"
	Save CategoryType = "save"
)

type (
	// Kind is the polarity of a transaction.
	Kind string

	// CategoryType is the budgeting classification of a category.
	CategoryType string

	Date struct {
		time.Time
	}

	Category struct {
		ID    int64
		Name  string
		Color string // #RRGGBB
		Type  CategoryType
	}

	Transaction struct {
		ID          int64
		Amount      Money
		Description string
		Date        Date
		Kind        Kind
		Category    *Category // nil when uncategorized
	}
)

var (
	ErrInvalidKind         = errors.New("invalid transaction kind")
	ErrInvalidCategoryType = errors.New("invalid category type")
	ErrInvalidColor        = errors.New("invalid category color")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidDate         = errors.New("invalid date")
	ErrEmptyDescription    = errors.New("empty description")
	ErrEmptyName           = errors.New("empty category name")
)

func (k Kind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	}
	return ErrInvalidKind
}

func (ct CategoryType) Validate() error {
	switch ct {
	case Need, Want, Save:
		return nil
	}
	return ErrInvalidCategoryType
}

// NewDate creates a calendar date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a backend date string in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String renders the date in the backend's wire format.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if err := c.Type.Validate(); err != nil {
		return err
	}
	if c.Color != "" && !validHexColor(c.Color) {
		return ErrInvalidColor
	}
	return nil
}

func validHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if t.Amount.Cents == 0 {
		return ErrInvalidAmount
	}
	return t.Kind.Validate()
}

// CategoryName returns the category name, or "" when uncategorized.
func (t Transaction) CategoryName() string {
	if t.Category == nil {
		return ""
	}
	return t.Category.Name
}

// SignedCents returns the amount with expense polarity applied: expenses
// are negative regardless of how the backend stored the sign.
func (t Transaction) SignedCents() int64 {
	c := t.Amount.Cents
	if c < 0 {
		c = -c
	}
	if t.Kind == Expense {
		return -c
	}
	return c
}
