// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pollpulse/pollpulse/auth"
	"github.com/pollpulse/pollpulse/cliparse"
	"github.com/pollpulse/pollpulse/db"
	"github.com/pollpulse/pollpulse/middleware"
	"github.com/pollpulse/pollpulse/models"
)

// SessionCookie is the cookie carrying the opaque session token.
const SessionCookie = "pollpulse_session"

// sessionTTL bounds how long a login stays valid.
const sessionTTL = 7 * 24 * time.Hour

// ErrNoSession means no account could be resolved from the request:
// missing cookie, unknown token, or expired session. Handlers treat all
// three uniformly as 401.
var ErrNoSession = errors.New("no resolvable session")

type AccountHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewAccountHandler(db *sql.DB, cfg cliparse.Config) *AccountHandler {
	return &AccountHandler{db: db, cfg: cfg}
}

// Signup handles POST /auth/signup
func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate input
	if req.Email == "" || req.Password == "" || req.FullName == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "email, password, and full_name are required")
		return
	}
	if !strings.Contains(req.Email, "@") {
		middleware.ErrorResponse(w, http.StatusBadRequest, "please enter a valid email address")
		return
	}
	if len(req.Password) < models.PasswordMinLen {
		middleware.ErrorResponse(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	account := models.Account{
		ID:        uuid.NewString(),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		FullName:  strings.TrimSpace(req.FullName),
		CreatedAt: time.Now().UTC(),
	}

	// The UNIQUE constraint on email is the authoritative duplicate guard
	_, err = h.db.Exec(`
		INSERT INTO account (id, email, full_name, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, account.ID, account.Email, account.FullName, passwordHash, account.CreatedAt)

	if err != nil {
		if db.IsUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "an account with this email already exists")
			return
		}
		slog.Error("failed to insert account", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	if err := h.startSession(w, account.ID); err != nil {
		slog.Error("failed to start session", "error", err, "account_id", account.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	slog.Info("account created", "account_id", account.ID, "email", account.Email)

	middleware.JSONResponse(w, http.StatusCreated, models.SessionResponse{Account: account})
}

// Login handles POST /auth/login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Email == "" || req.Password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "email and password are required")
		return
	}

	var account models.Account
	err := h.db.QueryRow(`
		SELECT id, email, full_name, password_hash, created_at
		FROM account
		WHERE email = $1
	`, strings.ToLower(strings.TrimSpace(req.Email))).Scan(
		&account.ID, &account.Email, &account.FullName, &account.PasswordHash, &account.CreatedAt,
	)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err != nil {
		slog.Error("failed to query account", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if !auth.CheckPassword(account.PasswordHash, req.Password) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if err := h.startSession(w, account.ID); err != nil {
		slog.Error("failed to start session", "error", err, "account_id", account.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	slog.Info("account logged in", "account_id", account.ID)

	middleware.JSONResponse(w, http.StatusOK, models.SessionResponse{Account: account})
}

// Logout handles POST /auth/logout
// Returns 200 whether or not a live session was attached.
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		if _, err := h.db.Exec(`DELETE FROM session WHERE token = $1`, cookie.Value); err != nil {
			slog.Warn("failed to delete session", "error", err)
		}
	}

	clearSessionCookie(w)

	middleware.JSONResponse(w, http.StatusOK, models.StatusResponse{
		Success: true,
		Message: "Logged out",
	})
}

// Me handles GET /auth/me
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	account, err := CurrentAccount(h.db, r)
	if err == ErrNoSession {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "you are not logged in")
		return
	}
	if err != nil {
		slog.Error("failed to resolve session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SessionResponse{Account: *account})
}

// startSession mints a session row and sets the cookie on the response.
func (h *AccountHandler) startSession(w http.ResponseWriter, accountID string) error {
	token, err := auth.NewSessionToken()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = h.db.Exec(`
		INSERT INTO session (token, account_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`, token, accountID, now, now.Add(sessionTTL))
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  now.Add(sessionTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// CurrentAccount resolves the session cookie to an account row.
// Expired sessions are deleted on sight.
func CurrentAccount(dbc *sql.DB, r *http.Request) (*models.Account, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoSession
	}

	var account models.Account
	var expiresAt time.Time
	err = dbc.QueryRow(`
		SELECT a.id, a.email, a.full_name, a.created_at, s.expires_at
		FROM session s
		JOIN account a ON a.id = s.account_id
		WHERE s.token = $1
	`, cookie.Value).Scan(
		&account.ID, &account.Email, &account.FullName, &account.CreatedAt, &expiresAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}

	if time.Now().After(expiresAt) {
		if _, err := dbc.Exec(`DELETE FROM session WHERE token = $1`, cookie.Value); err != nil {
			slog.Warn("failed to delete expired session", "error", err)
		}
		return nil, ErrNoSession
	}

	return &account, nil
}
