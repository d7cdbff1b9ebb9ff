package domain

import (
	"fmt"
	"regexp"

	commonerrors "github.com/SafronovIK/authgate/internal/common/errors"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Email is an immutable value object. A constructed Email is always valid.
type Email struct {
	value string
}

func NewEmail(raw string) (Email, error) {
	if !emailPattern.MatchString(raw) {
		return Email{}, commonerrors.ErrInvalidEmail.WithCause(
			fmt.Errorf("invalid email address: %s", raw))
	}
	return Email{value: raw}, nil
}

func (e Email) String() string {
	return e.value
}

func (e Email) Equals(other Email) bool {
	return e.value == other.value
}
