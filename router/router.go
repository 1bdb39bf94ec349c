// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/pollpulse/pollpulse/cliparse"
	"github.com/pollpulse/pollpulse/handlers"
	"github.com/pollpulse/pollpulse/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	accountHandler := handlers.NewAccountHandler(db, cfg)
	pollHandler := handlers.NewPollHandler(db, cfg)
	voteHandler := handlers.NewVoteHandler(db, cfg)
	readHandler := handlers.NewReadHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Accounts and sessions
	mux.HandleFunc("POST /auth/signup", middleware.WithLogging(accountHandler.Signup))
	mux.HandleFunc("POST /auth/login", middleware.WithLogging(accountHandler.Login))
	mux.HandleFunc("POST /auth/logout", middleware.WithLogging(accountHandler.Logout))
	mux.HandleFunc("GET /auth/me", middleware.WithLogging(accountHandler.Me))

	// Poll management (owner operations)
	mux.HandleFunc("POST /polls", middleware.WithLogging(pollHandler.CreatePoll))
	mux.HandleFunc("PUT /polls/{id}", middleware.WithLogging(pollHandler.UpdatePoll))
	mux.HandleFunc("DELETE /polls/{id}", middleware.WithLogging(pollHandler.DeletePoll))

	// Voting
	mux.HandleFunc("POST /polls/{id}/vote", middleware.WithLogging(voteHandler.CastVote))

	// Reads (public)
	mux.HandleFunc("GET /polls", middleware.WithLogging(readHandler.ListPolls))
	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(readHandler.GetPoll))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pollpulse API v1"))
	})

	return mux
}
