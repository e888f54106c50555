// Package validate provides a chainable Validator for service-layer input.
// Only the first violated rule is reported.
package validate

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dtroode/cardkeeper-server/internal/model"
)

var usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{3,20}$`)

// Validator is not safe for concurrent use.
type Validator struct {
	err *model.Error
}

func New() *Validator {
	return &Validator{}
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.fail(field, "is required")
	}
	return v
}

// MaxLen fails if the rune count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.fail(field, "is too long")
	}
	return v
}

// Email fails unless value is a bare address with a dotted domain.
func (v *Validator) Email(field, value string) *Validator {
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value || addr.Name != "" {
		v.fail(field, "must be a valid email address")
		return v
	}
	at := strings.LastIndex(value, "@")
	if domain := value[at+1:]; !strings.Contains(domain, ".") || strings.HasSuffix(domain, ".") {
		v.fail(field, "must be a valid email address")
	}
	return v
}

// Username fails unless value is 3 to 20 letters, digits, underscores or hyphens.
func (v *Validator) Username(field, value string) *Validator {
	if utf8.RuneCountInString(value) < 3 || utf8.RuneCountInString(value) > 20 {
		v.fail(field, "must be between 3 and 20 characters")
		return v
	}
	if !usernameRegex.MatchString(value) {
		v.fail(field, "may contain only letters, digits, underscores and hyphens")
	}
	return v
}

// Password fails unless value has at least 6 characters with a letter and a digit.
func (v *Validator) Password(field, value string) *Validator {
	if utf8.RuneCountInString(value) < 6 {
		v.fail(field, "must be at least 6 characters")
		return v
	}
	var letter, digit bool
	for _, r := range value {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter {
		v.fail(field, "must contain at least one letter")
	}
	if !digit {
		v.fail(field, "must contain at least one digit")
	}
	return v
}

// NonNegative fails if value is below zero.
func (v *Validator) NonNegative(field string, value float64) *Validator {
	if value < 0 {
		v.fail(field, "must not be negative")
	}
	return v
}

// Positive fails if value is below one.
func (v *Validator) Positive(field string, value int) *Validator {
	if value < 1 {
		v.fail(field, "must be at least 1")
	}
	return v
}

// AtMost fails if value exceeds max.
func (v *Validator) AtMost(field string, value, max int) *Validator {
	if value > max {
		v.fail(field, fmt.Sprintf("must be at most %d", max))
	}
	return v
}

// Custom fails with message if failed is true.
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.fail(field, message)
	}
	return v
}

// Err returns the first violation as a validation error, or nil.
func (v *Validator) Err() error {
	if v.err == nil {
		return nil
	}
	return v.err
}

func (v *Validator) fail(field, message string) {
	if v.err == nil {
		v.err = model.NewValidationError(field, message)
	}
}
