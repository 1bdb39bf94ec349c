// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Pollpulse API server.

Pollpulse is a polling service: accounts create polls with 2-10 options,
share them, and every account gets exactly one vote per poll.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=postgres://... go run main.go

Or with flags:

	go run main.go -p 3330 -d "postgres://..." -t postgres

A local .env file is loaded automatically when present.

# Configuration

Required settings:

  - DATABASE_URL (-d): Connection string

Optional settings:

  - PORT (-p): Server port (default: 3330)
  - DATABASE_TYPE (-t): postgres (default) or sqlite

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (accounts, polls, votes, reads)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response types
  - auth: Password hashing and session tokens
  - db: Schema creation and driver error classification
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
