package crypto

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasherRoundTrip(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("Str0ngP@ssw0rd!")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if strings.Contains(hash, "Str0ngP@ssw0rd!") {
		t.Error("hash contains the plaintext")
	}

	if err := h.Compare(hash, "Str0ngP@ssw0rd!"); err != nil {
		t.Errorf("Compare() with correct password error = %v", err)
	}
	if err := h.Compare(hash, "Wr0ngP@ssw0rd!"); err == nil {
		t.Error("Compare() accepted wrong password")
	}
}

func TestNewBcryptHasherClampsCost(t *testing.T) {
	if h := NewBcryptHasher(-1); h.Cost != bcrypt.DefaultCost {
		t.Errorf("Cost = %d, want default for out-of-range input", h.Cost)
	}
	if h := NewBcryptHasher(100); h.Cost != bcrypt.DefaultCost {
		t.Errorf("Cost = %d, want default for out-of-range input", h.Cost)
	}
}
