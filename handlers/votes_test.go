// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollpulse/pollpulse/models"
	"github.com/pollpulse/pollpulse/testutil"
)

func castVoteRequest(t *testing.T, token, pollID, optionID string) *http.Request {
	t.Helper()
	req := testutil.MakeRequest("POST", "/polls/"+pollID+"/vote", models.CastVoteRequest{OptionID: optionID}, nil)
	if token != "" {
		req = testutil.WithSession(req, token)
	}
	req.SetPathValue("id", pollID)
	return req
}

func TestCastVote(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewVoteHandler(conn, testutil.GetTestConfig())
	ownerID := testutil.CreateTestAccount(t, conn, "owner@example.com")
	voterID := testutil.CreateTestAccount(t, conn, "voter@example.com")
	token := testutil.NewTestSession(t, conn, voterID)

	pollID := testutil.CreateTestPoll(t, conn, ownerID, "Favorite color?", time.Now().UTC())
	redID := testutil.AddTestOption(t, conn, pollID, "Red")
	blueID := testutil.AddTestOption(t, conn, pollID, "Blue")

	w := httptest.NewRecorder()
	h.CastVote(w, castVoteRequest(t, token, pollID, blueID))

	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.StatusResponse
	testutil.AssertJSON(t, w, &resp)
	assert.True(t, resp.Success)

	// Vote row exists and both cached counters moved
	var voteCount, blueVotes, redVotes, totalVotes int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM vote WHERE poll_id = $1 AND account_id = $2`, pollID, voterID).Scan(&voteCount))
	require.NoError(t, conn.QueryRow(`SELECT votes_count FROM poll_option WHERE id = $1`, blueID).Scan(&blueVotes))
	require.NoError(t, conn.QueryRow(`SELECT votes_count FROM poll_option WHERE id = $1`, redID).Scan(&redVotes))
	require.NoError(t, conn.QueryRow(`SELECT total_votes FROM poll WHERE id = $1`, pollID).Scan(&totalVotes))
	assert.Equal(t, 1, voteCount)
	assert.Equal(t, 1, blueVotes)
	assert.Equal(t, 0, redVotes)
	assert.Equal(t, 1, totalVotes)
}

func TestCastVote_Unauthenticated(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewVoteHandler(conn, testutil.GetTestConfig())
	ownerID := testutil.CreateTestAccount(t, conn, "owner@example.com")
	pollID := testutil.CreateTestPoll(t, conn, ownerID, "Favorite color?", time.Now().UTC())
	redID := testutil.AddTestOption(t, conn, pollID, "Red")

	w := httptest.NewRecorder()
	h.CastVote(w, castVoteRequest(t, "", pollID, redID))

	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}

func TestCastVote_MissingOptionID(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewVoteHandler(conn, testutil.GetTestConfig())
	ownerID := testutil.CreateTestAccount(t, conn, "owner@example.com")
	voterID := testutil.CreateTestAccount(t, conn, "voter@example.com")
	token := testutil.NewTestSession(t, conn, voterID)
	pollID := testutil.CreateTestPoll(t, conn, ownerID, "Favorite color?", time.Now().UTC())

	w := httptest.NewRecorder()
	h.CastVote(w, castVoteRequest(t, token, pollID, ""))

	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestCastVote_CrossPollOption(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewVoteHandler(conn, testutil.GetTestConfig())
	ownerID := testutil.CreateTestAccount(t, conn, "owner@example.com")
	voterID := testutil.CreateTestAccount(t, conn, "voter@example.com")
	token := testutil.NewTestSession(t, conn, voterID)

	pollID := testutil.CreateTestPoll(t, conn, ownerID, "Favorite color?", time.Now().UTC())
	testutil.AddTestOption(t, conn, pollID, "Red")

	otherPollID := testutil.CreateTestPoll(t, conn, ownerID, "Favorite animal?", time.Now().UTC())
	catID := testutil.AddTestOption(t, conn, otherPollID, "Cat")

	// An option id from a different poll must never produce a vote
	w := httptest.NewRecorder()
	h.CastVote(w, castVoteRequest(t, token, pollID, catID))

	testutil.AssertStatus(t, w, http.StatusBadRequest)

	var count int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM vote`).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestCastVote_UnknownOption(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewVoteHandler(conn, testutil.GetTestConfig())
	ownerID := testutil.CreateTestAccount(t, conn, "owner@example.com")
	voterID := testutil.CreateTestAccount(t, conn, "voter@example.com")
	token := testutil.NewTestSession(t, conn, voterID)
	pollID := testutil.CreateTestPoll(t, conn, ownerID, "Favorite color?", time.Now().UTC())
	testutil.AddTestOption(t, conn, pollID, "Red")

	w := httptest.NewRecorder()
	h.CastVote(w, castVoteRequest(t, token, pollID, "no-such-option"))

	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestCastVote_Duplicate(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewVoteHandler(conn, testutil.GetTestConfig())
	ownerID := testutil.CreateTestAccount(t, conn, "owner@example.com")
	voterID := testutil.CreateTestAccount(t, conn, "voter@example.com")
	token := testutil.NewTestSession(t, conn, voterID)

	pollID := testutil.CreateTestPoll(t, conn, ownerID, "Favorite color?", time.Now().UTC())
	redID := testutil.AddTestOption(t, conn, pollID, "Red")
	blueID := testutil.AddTestOption(t, conn, pollID, "Blue")

	w := httptest.NewRecorder()
	h.CastVote(w, castVoteRequest(t, token, pollID, redID))
	testutil.AssertStatus(t, w, http.StatusOK)

	// Second vote, even for a different option, is a conflict
	w = httptest.NewRecorder()
	h.CastVote(w, castVoteRequest(t, token, pollID, blueID))
	testutil.AssertStatus(t, w, http.StatusConflict)

	var totalVotes int
	require.NoError(t, conn.QueryRow(`SELECT total_votes FROM poll WHERE id = $1`, pollID).Scan(&totalVotes))
	assert.Equal(t, 1, totalVotes)
}

func TestCastVote_TwoVoters(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewVoteHandler(conn, testutil.GetTestConfig())
	ownerID := testutil.CreateTestAccount(t, conn, "owner@example.com")
	aliceID := testutil.CreateTestAccount(t, conn, "alice@example.com")
	bobID := testutil.CreateTestAccount(t, conn, "bob@example.com")
	aliceToken := testutil.NewTestSession(t, conn, aliceID)
	bobToken := testutil.NewTestSession(t, conn, bobID)

	pollID := testutil.CreateTestPoll(t, conn, ownerID, "Favorite color?", time.Now().UTC())
	redID := testutil.AddTestOption(t, conn, pollID, "Red")
	blueID := testutil.AddTestOption(t, conn, pollID, "Blue")

	w := httptest.NewRecorder()
	h.CastVote(w, castVoteRequest(t, aliceToken, pollID, blueID))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = httptest.NewRecorder()
	h.CastVote(w, castVoteRequest(t, bobToken, pollID, blueID))
	testutil.AssertStatus(t, w, http.StatusOK)

	var totalVotes, blueVotes, redVotes int
	require.NoError(t, conn.QueryRow(`SELECT total_votes FROM poll WHERE id = $1`, pollID).Scan(&totalVotes))
	require.NoError(t, conn.QueryRow(`SELECT votes_count FROM poll_option WHERE id = $1`, blueID).Scan(&blueVotes))
	require.NoError(t, conn.QueryRow(`SELECT votes_count FROM poll_option WHERE id = $1`, redID).Scan(&redVotes))
	assert.Equal(t, 2, totalVotes)
	assert.Equal(t, 2, blueVotes)
	assert.Equal(t, 0, redVotes)
}
