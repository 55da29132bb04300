// Copyright (c) 2025 The UniVote Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package notify delivers messages to a user's out-of-band device.

# The Channel Contract

The core depends only on this interface:

	type Channel interface {
		Deliver(handle, message string) error
	}

Delivery either succeeds or fails promptly. There is no retry loop anywhere:
a failed delivery is surfaced to the caller and the user simply requests a
new code.

# Implementations

Telegram sends via the Bot API with a 10 second HTTP timeout:

	ch := notify.NewTelegram(token, "https://api.telegram.org")

LogOnly logs instead of sending, for development and tests:

	ch := notify.LogOnly{}
*/
package notify
