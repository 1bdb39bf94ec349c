// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Pollpulse API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - AccountHandler: Signup, login, logout, current account
  - PollHandler: Poll create, update, delete
  - VoteHandler: One vote per account per poll
  - ReadHandler: Poll detail and dashboard listing

Handlers are created via constructor functions that accept *sql.DB and Config:

	pollHandler := handlers.NewPollHandler(db, cfg)

# Authentication

Mutating endpoints resolve the session cookie to an account:

	account, err := handlers.CurrentAccount(db, r)

A missing cookie, an unknown token, and an expired session all yield
ErrNoSession, which handlers map uniformly to 401.

# Poll Lifecycle

	POST   /polls      → CreatePoll (question + 2-10 options, one transaction)
	PUT    /polls/{id} → UpdatePoll (owner only; options locked once voted on)
	DELETE /polls/{id} → DeletePoll (owner only; cascade removes options/votes)

# Voting

	POST /polls/{id}/vote → CastVote

CastVote validates that the option belongs to the poll, runs an advisory
duplicate read, then inserts under UNIQUE(poll_id, account_id). The
constraint, not the read, is what guarantees at-most-one-vote under
concurrent submissions. Option and poll counters are bumped in the same
transaction as the insert.

# Reads

	GET /polls      → ListPolls (newest first; ?mine=1 scopes to the caller)
	GET /polls/{id} → GetPoll (poll with nested options and counters)
*/
package handlers
