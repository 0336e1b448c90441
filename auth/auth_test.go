// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	tests := []struct {
		name    string
		byteLen int
		wantLen int // hex encoded length = byteLen * 2
	}{
		{"6 bytes", 6, 12},
		{"8 bytes", 8, 16},
		{"16 bytes", 16, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := GenerateID(tt.byteLen)
			if err != nil {
				t.Fatalf("GenerateID() error = %v", err)
			}
			if len(id) != tt.wantLen {
				t.Errorf("GenerateID() length = %d, want %d", len(id), tt.wantLen)
			}
			for _, c := range id {
				if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
					t.Errorf("GenerateID() contains invalid hex char: %c", c)
				}
			}
		})
	}

	id1, _ := GenerateID(16)
	id2, _ := GenerateID(16)
	if id1 == id2 {
		t.Error("GenerateID() produced duplicate IDs (extremely unlikely)")
	}
}

func TestGenerateAdminToken(t *testing.T) {
	tests := []struct {
		name   string
		pollID string
		salt   string
	}{
		{"standard", "poll123", "secret-salt"},
		{"empty poll id", "", "salt"},
		{"empty salt", "poll456", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := GenerateAdminToken(tt.pollID, tt.salt)

			if token == "" {
				t.Error("GenerateAdminToken() returned empty string")
			}

			if token != GenerateAdminToken(tt.pollID, tt.salt) {
				t.Error("GenerateAdminToken() is not deterministic")
			}

			if tt.pollID != "" && tt.salt != "" {
				if token == GenerateAdminToken(tt.pollID+"x", tt.salt) {
					t.Error("GenerateAdminToken() produced same token for different poll IDs")
				}
			}

			if strings.Contains(token, "=") {
				t.Error("GenerateAdminToken() contains padding characters")
			}
		})
	}
}

func TestValidateAdminToken(t *testing.T) {
	pollID := "test-poll-123"
	salt := "test-salt"
	validToken := GenerateAdminToken(pollID, salt)

	tests := []struct {
		name    string
		pollID  string
		token   string
		salt    string
		wantErr bool
	}{
		{"valid token", pollID, validToken, salt, false},
		{"wrong token", pollID, "wrong-token", salt, true},
		{"wrong poll id", "different-poll", validToken, salt, true},
		{"wrong salt", pollID, validToken, "different-salt", true},
		{"empty token", pollID, "", salt, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAdminToken(tt.pollID, tt.token, tt.salt)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAdminToken() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && err != ErrInvalidAdminToken {
				t.Errorf("ValidateAdminToken() error = %v, want %v", err, ErrInvalidAdminToken)
			}
		})
	}
}

func TestAdminTokenFromRequest(t *testing.T) {
	tests := []struct {
		name   string
		target string
		header string
		want   string
	}{
		{"header", "/polls/p1", "from-header", "from-header"},
		{"query", "/polls/p1?adminToken=from-query", "", "from-query"},
		{"header wins", "/polls/p1?adminToken=from-query", "from-header", "from-header"},
		{"none", "/polls/p1", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.target, nil)
			if tt.header != "" {
				req.Header.Set("X-Admin-Key", tt.header)
			}
			if got := AdminTokenFromRequest(req); got != tt.want {
				t.Errorf("AdminTokenFromRequest() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsAdmin(t *testing.T) {
	salt := "salt"
	req := httptest.NewRequest("GET", "/polls/p1?adminToken="+GenerateAdminToken("p1", salt), nil)

	if !IsAdmin(req, "p1", salt) {
		t.Error("IsAdmin() = false for valid query token")
	}
	if IsAdmin(req, "p2", salt) {
		t.Error("IsAdmin() = true for another poll")
	}
}

func TestHashVoterKey(t *testing.T) {
	h1, err := HashVoterKey("poll", "key-1", "salt")
	if err != nil {
		t.Fatalf("HashVoterKey() error = %v", err)
	}
	if len(h1) != 64 {
		t.Errorf("HashVoterKey() length = %d, want 64", len(h1))
	}

	h2, _ := HashVoterKey("poll", "  key-1 ", "salt")
	if h1 != h2 {
		t.Error("HashVoterKey() should ignore surrounding whitespace")
	}

	other, _ := HashVoterKey("other-poll", "key-1", "salt")
	if h1 == other {
		t.Error("HashVoterKey() produced same hash for different polls")
	}

	if strings.Contains(h1, "key-1") {
		t.Error("HashVoterKey() leaks the raw key")
	}

	if _, err := HashVoterKey("poll", "   ", "salt"); err != ErrMissingVoterKey {
		t.Errorf("HashVoterKey() error = %v, want %v", err, ErrMissingVoterKey)
	}
}

func TestHashIP(t *testing.T) {
	tests := []struct {
		name string
		ip   string
		salt string
	}{
		{"IPv4", "192.168.1.1", "ip-salt"},
		{"IPv6", "2001:0db8:85a3::8a2e:0370:7334", "ip-salt"},
		{"localhost", "127.0.0.1", "ip-salt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash := HashIP(tt.ip, tt.salt)

			if len(hash) != 16 {
				t.Errorf("HashIP() length = %d, want 16", len(hash))
			}
			for _, c := range hash {
				if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
					t.Errorf("HashIP() contains invalid hex char: %c", c)
				}
			}
			if hash != HashIP(tt.ip, tt.salt) {
				t.Error("HashIP() is not deterministic")
			}
		})
	}

	if HashIP("192.168.1.1", "salt") == HashIP("192.168.1.2", "salt") {
		t.Error("HashIP() produced same hash for different IPs")
	}
	if HashIP("192.168.1.1", "salt1") == HashIP("192.168.1.1", "salt2") {
		t.Error("HashIP() produced same hash for different salts")
	}
}

func BenchmarkGenerateAdminToken(b *testing.B) {
	pollID := "test-poll-123"
	salt := "test-salt"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		GenerateAdminToken(pollID, salt)
	}
}
