// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollpulse/pollpulse/models"
	"github.com/pollpulse/pollpulse/testutil"
)

func optionTextsInDB(t *testing.T, conn *sql.DB, pollID string) []string {
	t.Helper()
	rows, err := conn.Query(`SELECT text FROM poll_option WHERE poll_id = $1`, pollID)
	require.NoError(t, err)
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var text string
		require.NoError(t, rows.Scan(&text))
		texts = append(texts, text)
	}
	return texts
}

func TestCreatePoll(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewPollHandler(conn, testutil.GetTestConfig())
	accountID := testutil.CreateTestAccount(t, conn, "creator@example.com")
	token := testutil.NewTestSession(t, conn, accountID)

	req := testutil.WithSession(testutil.MakeRequest("POST", "/polls", models.CreatePollRequest{
		Question: "Favorite color?",
		Options:  []string{" Red ", "Blue", ""},
	}, nil), token)
	w := httptest.NewRecorder()

	h.CreatePoll(w, req)

	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.CreatePollResponse
	testutil.AssertJSON(t, w, &resp)
	require.NotEmpty(t, resp.PollID)

	// Options are trimmed, empties dropped; the stored set matches the input set
	assert.ElementsMatch(t, []string{"Red", "Blue"}, optionTextsInDB(t, conn, resp.PollID))

	var question string
	var createdBy string
	var totalVotes int
	require.NoError(t, conn.QueryRow(`
		SELECT question, created_by, total_votes FROM poll WHERE id = $1
	`, resp.PollID).Scan(&question, &createdBy, &totalVotes))
	assert.Equal(t, "Favorite color?", question)
	assert.Equal(t, accountID, createdBy)
	assert.Equal(t, 0, totalVotes)
}

func TestCreatePoll_Unauthenticated(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewPollHandler(conn, testutil.GetTestConfig())

	req := testutil.MakeRequest("POST", "/polls", models.CreatePollRequest{
		Question: "Favorite color?",
		Options:  []string{"Red", "Blue"},
	}, nil)
	w := httptest.NewRecorder()

	h.CreatePoll(w, req)

	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}

func TestCreatePoll_Validation(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewPollHandler(conn, testutil.GetTestConfig())
	accountID := testutil.CreateTestAccount(t, conn, "creator@example.com")
	token := testutil.NewTestSession(t, conn, accountID)

	elevenOptions := make([]string, 11)
	for i := range elevenOptions {
		elevenOptions[i] = "Option " + string(rune('A'+i))
	}

	testCases := []struct {
		name     string
		question string
		options  []string
	}{
		{"question too short", "Hi?", []string{"Red", "Blue"}},
		{"question only whitespace", "     ", []string{"Red", "Blue"}},
		{"question too long", strings.Repeat("q", 501), []string{"Red", "Blue"}},
		{"single option", "Favorite color?", []string{"Red"}},
		{"no options", "Favorite color?", []string{}},
		{"too many options", "Favorite color?", elevenOptions},
		{"only whitespace options", "Favorite color?", []string{"  ", "\t", "Red"}},
		{"duplicate options", "Favorite color?", []string{"Red", " Red "}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.WithSession(testutil.MakeRequest("POST", "/polls", models.CreatePollRequest{
				Question: tc.question,
				Options:  tc.options,
			}, nil), token)
			w := httptest.NewRecorder()

			h.CreatePoll(w, req)

			testutil.AssertStatus(t, w, http.StatusBadRequest)

			// Failed validation must leave no partial state
			var count int
			require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM poll`).Scan(&count))
			assert.Equal(t, 0, count)
		})
	}
}

func TestCreatePoll_QuestionBoundaries(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewPollHandler(conn, testutil.GetTestConfig())
	accountID := testutil.CreateTestAccount(t, conn, "creator@example.com")
	token := testutil.NewTestSession(t, conn, accountID)

	// Exactly 5 and exactly 500 characters are valid
	for _, question := range []string{"12345", strings.Repeat("q", 500)} {
		req := testutil.WithSession(testutil.MakeRequest("POST", "/polls", models.CreatePollRequest{
			Question: question,
			Options:  []string{"Yes", "No"},
		}, nil), token)
		w := httptest.NewRecorder()

		h.CreatePoll(w, req)

		testutil.AssertStatus(t, w, http.StatusCreated)
	}
}

func TestUpdatePoll(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewPollHandler(conn, testutil.GetTestConfig())
	accountID := testutil.CreateTestAccount(t, conn, "owner@example.com")
	token := testutil.NewTestSession(t, conn, accountID)

	pollID := testutil.CreateTestPoll(t, conn, accountID, "Favorite color?", time.Now().UTC())
	testutil.AddTestOption(t, conn, pollID, "Red")
	testutil.AddTestOption(t, conn, pollID, "Blue")

	req := testutil.WithSession(testutil.MakeRequest("PUT", "/polls/"+pollID, models.UpdatePollRequest{
		Question: "Favorite colour?",
		Options:  []string{"Green", "Blue"},
	}, nil), token)
	req.SetPathValue("id", pollID)
	w := httptest.NewRecorder()

	h.UpdatePoll(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var question string
	require.NoError(t, conn.QueryRow(`SELECT question FROM poll WHERE id = $1`, pollID).Scan(&question))
	assert.Equal(t, "Favorite colour?", question)

	// No votes yet, so the option set was replaced wholesale
	assert.ElementsMatch(t, []string{"Green", "Blue"}, optionTextsInDB(t, conn, pollID))
}

func TestUpdatePoll_NotOwner(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewPollHandler(conn, testutil.GetTestConfig())
	ownerID := testutil.CreateTestAccount(t, conn, "owner@example.com")
	otherID := testutil.CreateTestAccount(t, conn, "other@example.com")
	otherToken := testutil.NewTestSession(t, conn, otherID)

	pollID := testutil.CreateTestPoll(t, conn, ownerID, "Favorite color?", time.Now().UTC())
	testutil.AddTestOption(t, conn, pollID, "Red")
	testutil.AddTestOption(t, conn, pollID, "Blue")

	req := testutil.WithSession(testutil.MakeRequest("PUT", "/polls/"+pollID, models.UpdatePollRequest{
		Question: "Hijacked question?",
		Options:  []string{"Red", "Blue"},
	}, nil), otherToken)
	req.SetPathValue("id", pollID)
	w := httptest.NewRecorder()

	h.UpdatePoll(w, req)

	testutil.AssertStatus(t, w, http.StatusForbidden)

	var question string
	require.NoError(t, conn.QueryRow(`SELECT question FROM poll WHERE id = $1`, pollID).Scan(&question))
	assert.Equal(t, "Favorite color?", question)
}

func TestUpdatePoll_NotFound(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewPollHandler(conn, testutil.GetTestConfig())
	accountID := testutil.CreateTestAccount(t, conn, "owner@example.com")
	token := testutil.NewTestSession(t, conn, accountID)

	req := testutil.WithSession(testutil.MakeRequest("PUT", "/polls/missing", models.UpdatePollRequest{
		Question: "Favorite color?",
		Options:  []string{"Red", "Blue"},
	}, nil), token)
	req.SetPathValue("id", "missing")
	w := httptest.NewRecorder()

	h.UpdatePoll(w, req)

	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestUpdatePoll_OptionsLockedAfterVoting(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewPollHandler(conn, testutil.GetTestConfig())
	ownerID := testutil.CreateTestAccount(t, conn, "owner@example.com")
	voterID := testutil.CreateTestAccount(t, conn, "voter@example.com")
	token := testutil.NewTestSession(t, conn, ownerID)

	pollID := testutil.CreateTestPoll(t, conn, ownerID, "Favorite color?", time.Now().UTC())
	redID := testutil.AddTestOption(t, conn, pollID, "Red")
	testutil.AddTestOption(t, conn, pollID, "Blue")
	testutil.CastTestVote(t, conn, pollID, redID, voterID)

	// Changing the option set after a vote is a conflict
	req := testutil.WithSession(testutil.MakeRequest("PUT", "/polls/"+pollID, models.UpdatePollRequest{
		Question: "Favorite color?",
		Options:  []string{"Green", "Blue"},
	}, nil), token)
	req.SetPathValue("id", pollID)
	w := httptest.NewRecorder()

	h.UpdatePoll(w, req)

	testutil.AssertStatus(t, w, http.StatusConflict)
	assert.ElementsMatch(t, []string{"Red", "Blue"}, optionTextsInDB(t, conn, pollID))

	// Updating only the question still works, options and counters untouched
	req = testutil.WithSession(testutil.MakeRequest("PUT", "/polls/"+pollID, models.UpdatePollRequest{
		Question: "Favourite colour?",
		Options:  []string{"Blue", "Red"}, // same set, different order
	}, nil), token)
	req.SetPathValue("id", pollID)
	w = httptest.NewRecorder()

	h.UpdatePoll(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var question string
	require.NoError(t, conn.QueryRow(`SELECT question FROM poll WHERE id = $1`, pollID).Scan(&question))
	assert.Equal(t, "Favourite colour?", question)

	var votesCount int
	require.NoError(t, conn.QueryRow(`SELECT votes_count FROM poll_option WHERE id = $1`, redID).Scan(&votesCount))
	assert.Equal(t, 1, votesCount)
}

func TestDeletePoll(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewPollHandler(conn, testutil.GetTestConfig())
	ownerID := testutil.CreateTestAccount(t, conn, "owner@example.com")
	voterID := testutil.CreateTestAccount(t, conn, "voter@example.com")
	token := testutil.NewTestSession(t, conn, ownerID)

	pollID := testutil.CreateTestPoll(t, conn, ownerID, "Favorite color?", time.Now().UTC())
	redID := testutil.AddTestOption(t, conn, pollID, "Red")
	testutil.AddTestOption(t, conn, pollID, "Blue")
	testutil.CastTestVote(t, conn, pollID, redID, voterID)

	req := testutil.WithSession(testutil.MakeRequest("DELETE", "/polls/"+pollID, nil, nil), token)
	req.SetPathValue("id", pollID)
	w := httptest.NewRecorder()

	h.DeletePoll(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	// Cascade removed options and votes with the poll
	for _, query := range []string{
		`SELECT COUNT(*) FROM poll WHERE id = $1`,
		`SELECT COUNT(*) FROM poll_option WHERE poll_id = $1`,
		`SELECT COUNT(*) FROM vote WHERE poll_id = $1`,
	} {
		var count int
		require.NoError(t, conn.QueryRow(query, pollID).Scan(&count))
		assert.Equal(t, 0, count, query)
	}
}

func TestDeletePoll_NotOwner(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewPollHandler(conn, testutil.GetTestConfig())
	ownerID := testutil.CreateTestAccount(t, conn, "owner@example.com")
	otherID := testutil.CreateTestAccount(t, conn, "other@example.com")
	otherToken := testutil.NewTestSession(t, conn, otherID)

	pollID := testutil.CreateTestPoll(t, conn, ownerID, "Favorite color?", time.Now().UTC())
	testutil.AddTestOption(t, conn, pollID, "Red")
	testutil.AddTestOption(t, conn, pollID, "Blue")

	req := testutil.WithSession(testutil.MakeRequest("DELETE", "/polls/"+pollID, nil, nil), otherToken)
	req.SetPathValue("id", pollID)
	w := httptest.NewRecorder()

	h.DeletePoll(w, req)

	testutil.AssertStatus(t, w, http.StatusForbidden)

	var count int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM poll WHERE id = $1`, pollID).Scan(&count))
	assert.Equal(t, 1, count)
	assert.Len(t, optionTextsInDB(t, conn, pollID), 2)
}

func TestDeletePoll_Unauthenticated(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewPollHandler(conn, testutil.GetTestConfig())
	ownerID := testutil.CreateTestAccount(t, conn, "owner@example.com")
	pollID := testutil.CreateTestPoll(t, conn, ownerID, "Favorite color?", time.Now().UTC())

	req := testutil.MakeRequest("DELETE", "/polls/"+pollID, nil, nil)
	req.SetPathValue("id", pollID)
	w := httptest.NewRecorder()

	h.DeletePoll(w, req)

	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}

func TestDeletePoll_NotFound(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewPollHandler(conn, testutil.GetTestConfig())
	accountID := testutil.CreateTestAccount(t, conn, "owner@example.com")
	token := testutil.NewTestSession(t, conn, accountID)

	req := testutil.WithSession(testutil.MakeRequest("DELETE", "/polls/missing", nil, nil), token)
	req.SetPathValue("id", "missing")
	w := httptest.NewRecorder()

	h.DeletePoll(w, req)

	testutil.AssertStatus(t, w, http.StatusNotFound)
}
