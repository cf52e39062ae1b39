package settings

import (
	"errors"
	"strings"
	"unicode"
)

var (
	ErrPasswordMismatch    = errors.New("new passwords do not match")
	ErrPasswordWeak        = errors.New("new password does not meet the requirements")
	ErrCurrentPassRequired = errors.New("current password is required")
)

const specialChars = `!@#$%^&*(),.?":{}|<>`

// PasswordChecks reports which strength requirements a candidate
// password satisfies; the settings screen renders them as a checklist.
type PasswordChecks struct {
	Length      bool // at least 8 characters
	Lowercase   bool
	Number      bool
	SpecialChar bool
}

func (c PasswordChecks) Valid() bool {
	return c.Length && c.Lowercase && c.Number && c.SpecialChar
}

// CheckPassword evaluates the strength requirements.
func CheckPassword(pw string) PasswordChecks {
	checks := PasswordChecks{Length: len(pw) >= 8}
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			checks.Lowercase = true
		case unicode.IsDigit(r):
			checks.Number = true
		case strings.ContainsRune(specialChars, r):
			checks.SpecialChar = true
		}
	}
	return checks
}

// ValidatePasswordChange runs the client-side checks before the change is
// sent to the backend.
func ValidatePasswordChange(current, next, confirm string) error {
	if next != confirm {
		return ErrPasswordMismatch
	}
	if current == "" {
		return ErrCurrentPassRequired
	}
	if !CheckPassword(next).Valid() {
		return ErrPasswordWeak
	}
	return nil
}
