// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/rankpick/auth"
	"github.com/danielhkuo/rankpick/cliparse"
	"github.com/danielhkuo/rankpick/db"
	"github.com/danielhkuo/rankpick/moderation"
	"github.com/google/uuid"
)

// seq keeps fixture timestamps strictly increasing within a test binary
var seq atomic.Int64

func nextMillis() int64 {
	return time.Now().UnixMilli() + seq.Add(1)
}

// SetupTestDB creates a fresh file-backed SQLite database with the full schema.
// The database lives in t.TempDir() and is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, filepath.Join(t.TempDir(), "rankpick.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:               3318,
		DatabaseURL:        "file:test.db",
		DatabaseType:       cliparse.DatabaseSQLite,
		AdminKeySalt:       "test-admin-salt",
		DailyPollLimit:     50,
		MaxCandidates:      20,
		DescriptionTimeout: time.Second,
	}
}

// CreateTestPoll creates a poll in the database and returns its ID and admin token.
// phase should be "nominating", "voting", or "closed".
func CreateTestPoll(t *testing.T, conn *sql.DB, cfg cliparse.Config, phase, pollType, method string) (pollID, adminToken string) {
	t.Helper()

	pollID, _ = auth.GenerateID(16)
	adminToken = auth.GenerateAdminToken(pollID, cfg.AdminKeySalt)

	_, err := conn.Exec(`
		INSERT INTO poll (id, title, poll_type, method, phase, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, pollID, "Test Poll", pollType, method, phase, nextMillis())
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	return pollID, adminToken
}

// AddTestCandidate adds a candidate to a poll and returns its ID.
// Candidates added in sequence sort in that order.
func AddTestCandidate(t *testing.T, conn *sql.DB, pollID, title string) string {
	t.Helper()

	candidateID, _ := auth.GenerateID(12)
	_, err := conn.Exec(`
		INSERT INTO candidate (id, poll_id, title, title_key, added_by, added_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, candidateID, pollID, title, moderation.TitleKey(title), "TestUser", nextMillis())
	if err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}

	return candidateID
}

// SubmitTestVote stores a ranked ballot for voterKey and returns the vote ID
func SubmitTestVote(t *testing.T, conn *sql.DB, cfg cliparse.Config, pollID, voterKey, nickname string, rankings []string) string {
	t.Helper()

	voterHash, err := auth.HashVoterKey(pollID, voterKey, cfg.AdminKeySalt)
	if err != nil {
		t.Fatalf("Failed to hash voter key: %v", err)
	}

	voteID := uuid.NewString()
	_, err = conn.Exec(`
		INSERT INTO ballot (id, poll_id, voter_hash, nickname, submitted_at)
		VALUES ($1, $2, $3, $4, $5)
	`, voteID, pollID, voterHash, nickname, nextMillis())
	if err != nil {
		t.Fatalf("Failed to create test ballot: %v", err)
	}

	for i, candidateID := range rankings {
		_, err := conn.Exec(`
			INSERT INTO ballot_ranking (ballot_id, rank_position, candidate_id)
			VALUES ($1, $2, $3)
		`, voteID, i, candidateID)
		if err != nil {
			t.Fatalf("Failed to create test ranking: %v", err)
		}
	}

	return voteID
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
