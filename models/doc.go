// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - SignupRequest: email, password, full_name
  - LoginRequest: email, password
  - CreatePollRequest: question, options
  - UpdatePollRequest: question, options
  - CastVoteRequest: option_id

# Response Types

Types for JSON responses:

  - SessionResponse: account
  - CreatePollResponse: poll_id, message
  - StatusResponse: success, message
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - Account: registered user (password hash never serialized)
  - Poll: question plus cached total vote counter
  - PollOption: option text plus cached per-option counter
  - Vote: one row per (poll, account) pair
  - PollWithOptions: poll with nested options
  - PollSummary: list projection with humanized age

# Validation Bounds

	QuestionMinLen = 5
	QuestionMaxLen = 500
	MinOptions     = 2
	MaxOptions     = 10
	PasswordMinLen = 8
*/
package models
