package domain

import (
	"fmt"
	"strings"
	"unicode"

	commonerrors "github.com/SafronovIK/authgate/internal/common/errors"
)

type passwordRule struct {
	message string
	check   func(string) bool
}

// Rules are evaluated in declaration order; the error lists every unmet one.
var passwordRules = []passwordRule{
	{"at least 8 characters", func(s string) bool { return len(s) >= 8 }},
	{"one uppercase letter", containsClass(unicode.IsUpper)},
	{"one lowercase letter", containsClass(unicode.IsLower)},
	{"one digit", containsClass(unicode.IsDigit)},
	{"one special character", containsClass(func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})},
}

func containsClass(class func(rune) bool) func(string) bool {
	return func(s string) bool {
		for _, r := range s {
			if class(r) {
				return true
			}
		}
		return false
	}
}

// Password is an immutable value object holding a plaintext password that
// met every strength rule. It is never persisted; only its hash is.
type Password struct {
	value string
}

func NewPassword(raw string) (Password, error) {
	var violations []string
	for _, rule := range passwordRules {
		if !rule.check(raw) {
			violations = append(violations, rule.message)
		}
	}

	if len(violations) > 0 {
		return Password{}, commonerrors.ErrWeakPassword.WithCause(fmt.Errorf(
			"Weak password: Password must contain: %s.", strings.Join(violations, ", ")))
	}

	return Password{value: raw}, nil
}

func (p Password) String() string {
	return p.value
}
