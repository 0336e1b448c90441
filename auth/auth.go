// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrInvalidAdminToken = errors.New("invalid admin token")
	ErrMissingVoterKey   = errors.New("voter key is required")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateAdminToken creates an HMAC-based admin token for a poll
// This is deterministic and verifiable, so it is never stored
func GenerateAdminToken(pollID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte("admin:" + pollID))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner tokens
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateAdminToken checks if the provided admin token is valid for the poll
func ValidateAdminToken(pollID, token, salt string) error {
	if token == "" {
		return ErrInvalidAdminToken
	}
	expected := GenerateAdminToken(pollID, salt)
	if !hmac.Equal([]byte(token), []byte(expected)) {
		return ErrInvalidAdminToken
	}
	return nil
}

// AdminTokenFromRequest reads the admin token from the X-Admin-Key header,
// falling back to the adminToken query parameter used by share links
func AdminTokenFromRequest(r *http.Request) string {
	if token := r.Header.Get("X-Admin-Key"); token != "" {
		return token
	}
	return r.URL.Query().Get("adminToken")
}

// IsAdmin reports whether the request carries a valid admin token for the poll
func IsAdmin(r *http.Request, pollID, salt string) bool {
	return ValidateAdminToken(pollID, AdminTokenFromRequest(r), salt) == nil
}

// HashVoterKey turns the browser-held voter key into the value stored with
// a ballot. The raw key never reaches the database.
func HashVoterKey(pollID, voterKey, salt string) (string, error) {
	voterKey = strings.TrimSpace(voterKey)
	if voterKey == "" {
		return "", ErrMissingVoterKey
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte("voter:" + pollID + ":" + voterKey))
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits) - enough for deduplication
	return hex.EncodeToString(sum[:8])
}
