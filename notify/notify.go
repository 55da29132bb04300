// Copyright (c) 2025 The UniVote Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import "log/slog"

// Channel delivers a plaintext message to a user's out-of-band handle.
// Implementations must return promptly on failure; callers never retry.
type Channel interface {
	Deliver(handle, message string) error
}

// LogOnly is the development channel: it logs deliveries instead of sending
// them. Used when no bot token is configured and in tests.
type LogOnly struct{}

func (LogOnly) Deliver(handle, message string) error {
	// Dev stub: the message contains the plaintext code on purpose.
	slog.Info("delivery (log only)", "handle", handle, "message", message)
	return nil
}
