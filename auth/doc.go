// Copyright (c) 2025 The UniVote Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides token generation and credential hashing utilities.

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters

# Link Tokens

Link tokens are random 24-byte (192-bit) secrets used for the one-shot
Telegram chat linking handoff:

	token, err := auth.GenerateLinkToken()

Tokens are URL-safe base64 encoded without padding.

# Credential Hashing

Passwords are hashed with bcrypt at the default cost:

	hash, err := auth.HashPassword(plain)
	ok := auth.CheckPassword(hash, plain)

The OTP verifier hashes one-time codes with its own bcrypt routine; this
package only covers long-lived credentials.
*/
package auth
