// Copyright (c) 2025 The UniVote Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package identity implements the identity store: user records, credential
verification, and the Telegram chat linking handoff.

# Users

	store := identity.NewStore(db)
	user, err := store.Register("u1234567", "Ada Lovelace", models.RoleVoter, "pw", "+370...")
	user, err = store.FindUser(id)
	user, err = store.FindUserByUniversityID("u1234567")

Credentials are bcrypt hashed; VerifyPassword returns ErrBadCredentials for
both unknown ids and wrong passwords.

# Telegram Linking

Linking binds a Telegram chat id to a user so the OTP verifier has an
out-of-band delivery handle:

	link, err := store.CreateLinkToken(userID)
	// user opens t.me/<bot>?start=<token>; the bot calls back with
	err = store.CompleteLink(token, chatID)

Link tokens are one-shot: CompleteLink consumes the token, and a replay
returns ErrLinkNotFound.
*/
package identity
