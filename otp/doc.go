// Copyright (c) 2025 The UniVote Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package otp implements one-time-code possession verification.

# Issuing

	v := otp.NewVerifier(db, identityStore, channel)
	challenge, err := v.Issue(userID, clientIP)

Issue generates a 6-digit code from crypto/rand, stores only its bcrypt
hash with a 2 minute TTL, and hands the plaintext to the notification
channel. A user is limited to 3 issuances per trailing 5 minutes
(ErrRateLimited). If delivery fails the challenge remains valid and
ErrDeliveryFailed is returned - the user may still have received the code.

# Verifying

	err := v.Verify(userID, submittedCode)

Verify always targets the user's most recent challenge; older ones are
superseded, not deleted. Outcomes:

  - ErrNoChallenge: nothing was ever issued
  - ErrConsumed: the challenge was already used (replay rejected)
  - ErrExpired: at or past the TTL, checked lazily - no background sweep
  - ErrCodeMismatch: wrong code; the attempt counter is incremented

Success stamps verified_at exactly once. A concurrent double-verify is
resolved by a conditional update, so only one caller wins.

# Ownership

Each Verifier owns its random source, clock, and hashing routine. The clock
and code generator are injectable, which is how the expiry and rate-limit
tests drive time.
*/
package otp
