package utils

import (
	"testing"
)

func TestNewInviteToken(t *testing.T) {
	a := NewInviteToken()
	b := NewInviteToken()

	if len(a) != 64 {
		t.Errorf("token length = %d, expected 64", len(a))
	}
	if a == b {
		t.Error("tokens should be unique")
	}
}

func TestHashToken(t *testing.T) {
	token := NewInviteToken()

	hash, err := HashToken(token)
	if err != nil {
		t.Fatalf("HashToken() error = %v", err)
	}
	if hash == token {
		t.Error("HashToken() should not return the plaintext token")
	}

	hash2, _ := HashToken(token)
	if hash == hash2 {
		t.Error("same token should produce different hashes (due to salt)")
	}
}

func TestCheckToken(t *testing.T) {
	token := NewInviteToken()
	hash, _ := HashToken(token)

	tests := []struct {
		name  string
		token string
		hash  string
		want  bool
	}{
		{"correct token", token, hash, true},
		{"wrong token", NewInviteToken(), hash, false},
		{"empty token", "", hash, false},
		{"garbage hash", token, "not-a-hash", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckToken(tt.token, tt.hash); got != tt.want {
				t.Errorf("CheckToken() = %v, expected %v", got, tt.want)
			}
		})
	}
}
