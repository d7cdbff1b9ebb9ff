package domain

import (
	"errors"
	"strings"
	"testing"

	commonerrors "github.com/SafronovIK/authgate/internal/common/errors"
)

func TestNewPasswordAccepted(t *testing.T) {
	for _, raw := range []string{
		"Str0ngP@ssw0rd!",
		"Aa1!aaaa",
		"pass_Word9",
	} {
		if _, err := NewPassword(raw); err != nil {
			t.Errorf("NewPassword(%q) error = %v", raw, err)
		}
	}
}

func TestNewPasswordViolations(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "all rules unmet",
			raw:  "",
			want: []string{
				"at least 8 characters",
				"one uppercase letter",
				"one lowercase letter",
				"one digit",
				"one special character",
			},
		},
		{
			name: "short lowercase word",
			raw:  "weak",
			want: []string{
				"at least 8 characters",
				"one uppercase letter",
				"one digit",
				"one special character",
			},
		},
		{
			name: "no special character",
			raw:  "Password1",
			want: []string{"one special character"},
		},
		{
			name: "no digit",
			raw:  "Password!",
			want: []string{"one digit"},
		},
		{
			name: "no uppercase",
			raw:  "password1!",
			want: []string{"one uppercase letter"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPassword(tt.raw)
			if !errors.Is(err, commonerrors.ErrWeakPassword) {
				t.Fatalf("NewPassword(%q) error = %v, want ErrWeakPassword", tt.raw, err)
			}

			wantMsg := "Weak password: Password must contain: " + strings.Join(tt.want, ", ") + "."
			if !strings.Contains(err.Error(), wantMsg) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), wantMsg)
			}
		})
	}
}

func TestNewPasswordUnderscoreIsSpecial(t *testing.T) {
	if _, err := NewPassword("Passw0rd_"); err != nil {
		t.Errorf("NewPassword with underscore error = %v", err)
	}
}
