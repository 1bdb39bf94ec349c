// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/pollpulse/pollpulse/cliparse"
	"github.com/pollpulse/pollpulse/middleware"
	"github.com/pollpulse/pollpulse/models"
)

type PollHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewPollHandler(db *sql.DB, cfg cliparse.Config) *PollHandler {
	return &PollHandler{db: db, cfg: cfg}
}

// validatePollInput trims and validates question and options shared by
// create and update. Returns the trimmed question, the surviving option
// texts, and a user-displayable error message ("" when valid).
func validatePollInput(question string, options []string) (string, []string, string) {
	q := strings.TrimSpace(question)
	if utf8.RuneCountInString(q) < models.QuestionMinLen {
		return "", nil, "question must be at least 5 characters long"
	}
	if utf8.RuneCountInString(q) > models.QuestionMaxLen {
		return "", nil, "question must not exceed 500 characters"
	}

	if len(options) < models.MinOptions {
		return "", nil, "at least 2 options are required"
	}
	if len(options) > models.MaxOptions {
		return "", nil, "maximum 10 options are allowed"
	}

	// Drop empty options, reject duplicates among the survivors. The
	// UNIQUE(poll_id, text) constraint would reject duplicates anyway;
	// checking here turns a 500 into a 400.
	seen := make(map[string]bool, len(options))
	valid := make([]string, 0, len(options))
	for _, opt := range options {
		text := strings.TrimSpace(opt)
		if text == "" {
			continue
		}
		if seen[text] {
			return "", nil, "option texts must be unique"
		}
		seen[text] = true
		valid = append(valid, text)
	}

	if len(valid) < models.MinOptions {
		return "", nil, "at least 2 valid options are required"
	}

	return q, valid, ""
}

// optionSetChanged compares option-text sets order-insensitively.
func optionSetChanged(existing, proposed []string) bool {
	if len(existing) != len(proposed) {
		return true
	}
	set := make(map[string]bool, len(existing))
	for _, text := range existing {
		set[strings.TrimSpace(text)] = true
	}
	for _, text := range proposed {
		if !set[strings.TrimSpace(text)] {
			return true
		}
	}
	return false
}

// CreatePoll handles POST /polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	account, err := CurrentAccount(h.db, r)
	if err == ErrNoSession {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "you must be logged in to create a poll")
		return
	}
	if err != nil {
		slog.Error("failed to resolve session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	question, options, msg := validatePollInput(req.Question, req.Options)
	if msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	pollID := uuid.NewString()
	now := time.Now().UTC()

	// Poll and options are created in one transaction so a failed option
	// insert never leaves a poll with zero options.
	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO poll (id, question, created_by, total_votes, created_at, updated_at)
		VALUES ($1, $2, $3, 0, $4, $5)
	`, pollID, question, account.ID, now, now)

	if err != nil {
		slog.Error("failed to insert poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}

	for _, text := range options {
		_, err = tx.Exec(`
			INSERT INTO poll_option (id, poll_id, text, votes_count, created_at)
			VALUES ($1, $2, $3, 0, $4)
		`, uuid.NewString(), pollID, text, now)

		if err != nil {
			slog.Error("failed to insert option", "error", err, "poll_id", pollID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll options")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}

	slog.Info("poll created", "poll_id", pollID, "created_by", account.ID, "options", len(options))

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePollResponse{
		PollID:  pollID,
		Message: "Poll created successfully",
	})
}

// UpdatePoll handles PUT /polls/{id}
func (h *PollHandler) UpdatePoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	account, err := CurrentAccount(h.db, r)
	if err == ErrNoSession {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "you must be logged in to update a poll")
		return
	}
	if err != nil {
		slog.Error("failed to resolve session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var req models.UpdatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	question, options, msg := validatePollInput(req.Question, req.Options)
	if msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	var createdBy sql.NullString
	var totalVotes int
	err = h.db.QueryRow(`
		SELECT created_by, total_votes FROM poll WHERE id = $1
	`, pollID).Scan(&createdBy, &totalVotes)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if !createdBy.Valid || createdBy.String != account.ID {
		middleware.ErrorResponse(w, http.StatusForbidden, "you can only update your own polls")
		return
	}

	existing, err := h.optionTexts(pollID)
	if err != nil {
		slog.Error("failed to query options", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	optionsChanged := optionSetChanged(existing, options)

	// Option rows carry votes, so the set is locked once voting starts.
	// The question alone stays editable.
	if totalVotes > 0 && optionsChanged {
		middleware.ErrorResponse(w, http.StatusConflict,
			"cannot modify poll options after voting has started; only the question can be updated")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update poll")
		return
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	_, err = tx.Exec(`
		UPDATE poll SET question = $1, updated_at = $2 WHERE id = $3
	`, question, now, pollID)

	if err != nil {
		slog.Error("failed to update poll", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update poll")
		return
	}

	if optionsChanged {
		// Full replace, not a diff. Discarding option identifiers is
		// safe only because no votes reference them yet.
		_, err = tx.Exec(`DELETE FROM poll_option WHERE poll_id = $1`, pollID)
		if err != nil {
			slog.Error("failed to delete options", "error", err, "poll_id", pollID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update poll options")
			return
		}

		for _, text := range options {
			_, err = tx.Exec(`
				INSERT INTO poll_option (id, poll_id, text, votes_count, created_at)
				VALUES ($1, $2, $3, 0, $4)
			`, uuid.NewString(), pollID, text, now)

			if err != nil {
				slog.Error("failed to insert option", "error", err, "poll_id", pollID)
				middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update poll options")
				return
			}
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update poll")
		return
	}

	slog.Info("poll updated", "poll_id", pollID, "options_changed", optionsChanged)

	middleware.JSONResponse(w, http.StatusOK, models.StatusResponse{
		Success: true,
		Message: "Poll updated successfully",
	})
}

// DeletePoll handles DELETE /polls/{id}
func (h *PollHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	account, err := CurrentAccount(h.db, r)
	if err == ErrNoSession {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "you must be logged in to delete a poll")
		return
	}
	if err != nil {
		slog.Error("failed to resolve session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var createdBy sql.NullString
	err = h.db.QueryRow(`SELECT created_by FROM poll WHERE id = $1`, pollID).Scan(&createdBy)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if !createdBy.Valid || createdBy.String != account.ID {
		middleware.ErrorResponse(w, http.StatusForbidden, "you can only delete your own polls")
		return
	}

	// Cascade removes options and votes
	_, err = h.db.Exec(`DELETE FROM poll WHERE id = $1`, pollID)
	if err != nil {
		slog.Error("failed to delete poll", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete poll")
		return
	}

	slog.Info("poll deleted", "poll_id", pollID, "deleted_by", account.ID)

	middleware.JSONResponse(w, http.StatusOK, models.StatusResponse{
		Success: true,
		Message: "Poll deleted successfully",
	})
}

// optionTexts returns the option texts currently stored for a poll.
func (h *PollHandler) optionTexts(pollID string) ([]string, error) {
	rows, err := h.db.Query(`SELECT text FROM poll_option WHERE poll_id = $1`, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, err
		}
		texts = append(texts, text)
	}
	return texts, rows.Err()
}
