// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation and driver error classification.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The DDL sticks to the dialect shared by PostgreSQL and SQLite so the same
binary runs against either driver.

# Tables

The schema includes:

  - account: Registered users with bcrypt password hashes
  - session: Cookie-backed session tokens with expiry
  - poll: Questions with a cached total_votes counter
  - poll_option: Option text with a cached votes_count counter
  - vote: One row per (poll, account) pair

# Relationships

	account 1──* session (CASCADE)
	account 1──* poll    (SET NULL)
	poll    1──* poll_option (CASCADE)
	poll    1──* vote        (CASCADE)
	poll_option 1──* vote    (CASCADE)

# Constraints

Uniqueness constraints are the authoritative correctness guards:

  - account.email: one account per email
  - poll_option.(poll_id, text): no duplicate option text within a poll
  - vote.(poll_id, account_id): at most one vote per account per poll

IsUniqueViolation classifies driver errors for both lib/pq and
modernc.org/sqlite so handlers can map violations to 409 Conflict.
*/
package db
