// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/pollpulse/pollpulse/cliparse"
	"github.com/pollpulse/pollpulse/middleware"
	"github.com/pollpulse/pollpulse/models"
)

type ReadHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewReadHandler(db *sql.DB, cfg cliparse.Config) *ReadHandler {
	return &ReadHandler{db: db, cfg: cfg}
}

// GetPoll handles GET /polls/{id}
// Returns the poll with nested options and their counters.
func (h *ReadHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	var poll models.Poll
	var createdBy sql.NullString
	err := h.db.QueryRow(`
		SELECT id, question, created_by, total_votes, created_at, updated_at
		FROM poll
		WHERE id = $1
	`, pollID).Scan(
		&poll.ID, &poll.Question, &createdBy, &poll.TotalVotes, &poll.CreatedAt, &poll.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if createdBy.Valid {
		poll.CreatedBy = &createdBy.String
	}

	options, err := h.pollOptions(poll.ID)
	if err != nil {
		slog.Error("failed to query options", "error", err, "poll_id", poll.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PollWithOptions{
		Poll:    poll,
		Options: options,
	})
}

// ListPolls handles GET /polls
// Returns all polls newest-first with nested options. With ?mine=1 the
// list is scoped to the session account instead.
func (h *ReadHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	var rows *sql.Rows
	var err error

	if r.URL.Query().Get("mine") == "1" {
		account, aerr := CurrentAccount(h.db, r)
		if aerr == ErrNoSession {
			middleware.ErrorResponse(w, http.StatusUnauthorized, "you must be logged in to list your polls")
			return
		}
		if aerr != nil {
			slog.Error("failed to resolve session", "error", aerr)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}

		rows, err = h.db.Query(`
			SELECT id, question, created_by, total_votes, created_at, updated_at
			FROM poll
			WHERE created_by = $1
			ORDER BY created_at DESC
		`, account.ID)
	} else {
		rows, err = h.db.Query(`
			SELECT id, question, created_by, total_votes, created_at, updated_at
			FROM poll
			ORDER BY created_at DESC
		`)
	}

	if err != nil {
		slog.Error("failed to query polls", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	polls := []models.Poll{}
	for rows.Next() {
		var poll models.Poll
		var createdBy sql.NullString
		if err := rows.Scan(&poll.ID, &poll.Question, &createdBy, &poll.TotalVotes, &poll.CreatedAt, &poll.UpdatedAt); err != nil {
			slog.Error("failed to scan poll", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if createdBy.Valid {
			poll.CreatedBy = &createdBy.String
		}
		polls = append(polls, poll)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate polls", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	summaries := make([]models.PollSummary, 0, len(polls))
	for _, poll := range polls {
		options, err := h.pollOptions(poll.ID)
		if err != nil {
			slog.Error("failed to query options", "error", err, "poll_id", poll.ID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}

		summaries = append(summaries, models.PollSummary{
			PollWithOptions: models.PollWithOptions{Poll: poll, Options: options},
			Created:         humanize.Time(poll.CreatedAt),
		})
	}

	middleware.JSONResponse(w, http.StatusOK, summaries)
}

// pollOptions returns a poll's options in insertion order.
func (h *ReadHandler) pollOptions(pollID string) ([]models.PollOption, error) {
	rows, err := h.db.Query(`
		SELECT id, poll_id, text, votes_count, created_at
		FROM poll_option
		WHERE poll_id = $1
		ORDER BY created_at, id
	`, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	options := []models.PollOption{}
	for rows.Next() {
		var opt models.PollOption
		if err := rows.Scan(&opt.ID, &opt.PollID, &opt.Text, &opt.VotesCount, &opt.CreatedAt); err != nil {
			return nil, err
		}
		options = append(options, opt)
	}
	return options, rows.Err()
}
