// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides password hashing and session token generation.

# Passwords

Passwords are hashed with bcrypt at the default cost:

	hash, err := auth.HashPassword(password)
	ok := auth.CheckPassword(hash, password)

The salt is embedded in the hash, so no separate salt storage is needed,
and comparison is constant-time.

# Session Tokens

Session tokens are random 32-byte (256-bit) secrets:

	token, err := auth.NewSessionToken()

Tokens are URL-safe base64 encoded without padding and stored server-side
in the session table. The cookie carries only the opaque token; a row
lookup resolves it to an account.
*/
package auth
