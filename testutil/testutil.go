// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/pollpulse/pollpulse/auth"
	"github.com/pollpulse/pollpulse/cliparse"
	"github.com/pollpulse/pollpulse/db"
)

// TestPassword is the password every fixture account is created with.
const TestPassword = "password-123"

// SetupTestDB creates a fresh in-memory SQLite database with the full
// schema. One connection holds the whole database, so database/sql must
// not open a second one.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", "file::memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)

	if err := db.EnableForeignKeys(conn); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}
	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3330,
		DatabaseURL:  "file::memory:",
		DatabaseType: "sqlite",
	}
}

// CreateTestAccount inserts an account with TestPassword and returns its ID
func CreateTestAccount(t *testing.T, conn *sql.DB, email string) string {
	t.Helper()

	hash, err := auth.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("Failed to hash test password: %v", err)
	}

	accountID := uuid.NewString()
	_, err = conn.Exec(`
		INSERT INTO account (id, email, full_name, password_hash, created_at)
		VALUES ($1, $2, 'Test User', $3, $4)
	`, accountID, email, hash, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test account: %v", err)
	}

	return accountID
}

// NewTestSession creates a live session for the account and returns its token
func NewTestSession(t *testing.T, conn *sql.DB, accountID string) string {
	t.Helper()

	token, err := auth.NewSessionToken()
	if err != nil {
		t.Fatalf("Failed to generate session token: %v", err)
	}

	now := time.Now().UTC()
	_, err = conn.Exec(`
		INSERT INTO session (token, account_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`, token, accountID, now, now.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	return token
}

// CreateTestPoll creates a poll and returns its ID. createdAt is explicit
// so list-ordering tests control recency.
func CreateTestPoll(t *testing.T, conn *sql.DB, creatorID, question string, createdAt time.Time) string {
	t.Helper()

	pollID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO poll (id, question, created_by, total_votes, created_at, updated_at)
		VALUES ($1, $2, $3, 0, $4, $5)
	`, pollID, question, creatorID, createdAt, createdAt)
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	return pollID
}

// AddTestOption adds an option to a poll and returns the option ID
func AddTestOption(t *testing.T, conn *sql.DB, pollID, text string) string {
	t.Helper()

	optionID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO poll_option (id, poll_id, text, votes_count, created_at)
		VALUES ($1, $2, $3, 0, $4)
	`, optionID, pollID, text, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test option: %v", err)
	}

	return optionID
}

// CastTestVote inserts a vote row and bumps both cached counters, the
// same way the vote handler does.
func CastTestVote(t *testing.T, conn *sql.DB, pollID, optionID, accountID string) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO vote (id, poll_id, option_id, account_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.NewString(), pollID, optionID, accountID, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}

	if _, err := conn.Exec(`UPDATE poll_option SET votes_count = votes_count + 1 WHERE id = $1`, optionID); err != nil {
		t.Fatalf("Failed to bump option counter: %v", err)
	}
	if _, err := conn.Exec(`UPDATE poll SET total_votes = total_votes + 1 WHERE id = $1`, pollID); err != nil {
		t.Fatalf("Failed to bump poll counter: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
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

// WithSession attaches a session cookie to the request
func WithSession(req *http.Request, token string) *http.Request {
	req.AddCookie(&http.Cookie{Name: "pollpulse_session", Value: token})
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
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
