// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pollpulse/pollpulse/cliparse"
	"github.com/pollpulse/pollpulse/db"
	"github.com/pollpulse/pollpulse/middleware"
	"github.com/pollpulse/pollpulse/models"
)

type VoteHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewVoteHandler(db *sql.DB, cfg cliparse.Config) *VoteHandler {
	return &VoteHandler{db: db, cfg: cfg}
}

// CastVote handles POST /polls/{id}/vote
//
// The duplicate check runs twice: an advisory read for fast feedback,
// then the UNIQUE(poll_id, account_id) constraint at insert time.
// Only the constraint is authoritative; two rapid submissions can both
// pass the read, and exactly one survives the insert.
func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	account, err := CurrentAccount(h.db, r)
	if err == ErrNoSession {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "you must be logged in to vote")
		return
	}
	if err != nil {
		slog.Error("failed to resolve session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.OptionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "option_id is required")
		return
	}

	// The option must belong to this poll. Without this check a client
	// could submit an option id from a different poll.
	var optionID string
	err = h.db.QueryRow(`
		SELECT id FROM poll_option WHERE id = $1 AND poll_id = $2
	`, req.OptionID, pollID).Scan(&optionID)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid option for this poll")
		return
	}
	if err != nil {
		slog.Error("failed to query option", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Advisory pre-check for low-latency feedback
	var alreadyVoted bool
	err = h.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM vote WHERE poll_id = $1 AND account_id = $2)
	`, pollID, account.ID).Scan(&alreadyVoted)

	if err != nil {
		slog.Error("failed to query existing vote", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if alreadyVoted {
		middleware.ErrorResponse(w, http.StatusConflict, "you have already voted on this poll")
		return
	}

	// Vote insert and counter bumps share one transaction, so the cached
	// counters never drift from the vote rows.
	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	_, err = tx.Exec(`
		INSERT INTO vote (id, poll_id, option_id, account_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.NewString(), pollID, optionID, account.ID, now)

	if err != nil {
		if db.IsUniqueViolation(err) {
			// Lost the race between the pre-check and the insert
			middleware.ErrorResponse(w, http.StatusConflict, "you have already voted on this poll")
			return
		}
		slog.Error("failed to insert vote", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to cast vote")
		return
	}

	_, err = tx.Exec(`
		UPDATE poll_option SET votes_count = votes_count + 1 WHERE id = $1
	`, optionID)
	if err != nil {
		slog.Error("failed to update option counter", "error", err, "option_id", optionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to cast vote")
		return
	}

	_, err = tx.Exec(`
		UPDATE poll SET total_votes = total_votes + 1, updated_at = $1 WHERE id = $2
	`, now, pollID)
	if err != nil {
		slog.Error("failed to update poll counter", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to cast vote")
		return
	}

	if err := tx.Commit(); err != nil {
		if db.IsUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "you have already voted on this poll")
			return
		}
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to cast vote")
		return
	}

	slog.Info("vote cast", "poll_id", pollID, "option_id", optionID, "account_id", account.ID)

	middleware.JSONResponse(w, http.StatusOK, models.StatusResponse{
		Success: true,
		Message: "Vote cast successfully",
	})
}
