// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Pollpulse API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health

Accounts and sessions:

	POST /auth/signup - Register, starts a session
	POST /auth/login  - Log in, starts a session
	POST /auth/logout - End the session
	GET  /auth/me     - Current account

Poll management (session required, owner checks in handlers):

	POST   /polls      - Create poll with options
	PUT    /polls/{id} - Update question/options
	DELETE /polls/{id} - Delete poll (cascades)

Voting (session required):

	POST /polls/{id}/vote - Cast the account's single vote

Reads (public):

	GET /polls      - All polls, newest first (?mine=1 for own polls)
	GET /polls/{id} - Poll with options and vote counters

# Handler Initialization

The router creates handler instances with dependency injection:

	accountHandler := handlers.NewAccountHandler(db, cfg)
	pollHandler := handlers.NewPollHandler(db, cfg)
	voteHandler := handlers.NewVoteHandler(db, cfg)
	readHandler := handlers.NewReadHandler(db, cfg)

All handlers receive the database connection and configuration.
*/
package router
