// Copyright (c) 2025 The UniVote Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package otp

import (
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/crypto/bcrypt"

	"github.com/univote/univote/auth"
	"github.com/univote/univote/identity"
	"github.com/univote/univote/models"
	"github.com/univote/univote/notify"
)

const (
	// CodeLength is the number of digits in a one-time code.
	CodeLength = 6

	// TTL is how long an issued code stays valid.
	TTL = 2 * time.Minute

	// rateWindow/maxPerWindow: at most 3 issuances per user per trailing
	// 5 minutes.
	rateWindow   = 5 * time.Minute
	maxPerWindow = 3
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrNotLinked      = errors.New("no notification handle linked")
	ErrRateLimited    = errors.New("too many code requests, wait before trying again")
	ErrDeliveryFailed = errors.New("could not deliver code")
	ErrNoChallenge    = errors.New("no code was issued")
	ErrConsumed       = errors.New("code already used")
	ErrExpired        = errors.New("code expired")
	ErrCodeMismatch   = errors.New("wrong code")
)

// UserDirectory is the slice of the identity store the verifier needs.
type UserDirectory interface {
	FindUser(id string) (*models.User, error)
}

// Verifier issues and checks one-time codes. It owns its random source and
// hashing routine; nothing here is process-global.
type Verifier struct {
	db      *sql.DB
	users   UserDirectory
	channel notify.Channel

	// injectable for tests
	now     func() time.Time
	newCode func() (string, error)
}

func NewVerifier(database *sql.DB, users UserDirectory, channel notify.Channel) *Verifier {
	return &Verifier{
		db:      database,
		users:   users,
		channel: channel,
		now:     time.Now,
		newCode: generateCode,
	}
}

// generateCode produces a zero-padded numeric code from crypto/rand.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", CodeLength, n), nil
}

// Issue generates a code for the user, persists its bcrypt hash with a
// 2 minute TTL, and hands the plaintext to the notification channel.
//
// A user with 3 or more challenges in the trailing 5 minutes gets
// ErrRateLimited and nothing is persisted or sent. The count-then-insert
// sequence is not serialized across concurrent requests, so a burst can
// slightly over-issue; that is tolerated.
//
// If delivery fails the challenge stays valid and ErrDeliveryFailed is
// returned alongside it: a code that somehow arrived can still be used.
func (v *Verifier) Issue(userID, clientIP string) (*models.OtpChallenge, error) {
	u, err := v.users.FindUser(userID)
	if errors.Is(err, identity.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if u.TelegramChatID == nil {
		return nil, ErrNotLinked
	}

	now := v.now()

	var recent int
	err = v.db.QueryRow(`
		SELECT COUNT(*) FROM otp_challenges
		WHERE user_id = $1 AND created_at > $2
	`, userID, now.Add(-rateWindow)).Scan(&recent)
	if err != nil {
		return nil, fmt.Errorf("failed to count recent challenges: %w", err)
	}
	if recent >= maxPerWindow {
		return nil, ErrRateLimited
	}

	code, err := v.newCode()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash code: %w", err)
	}

	id, err := auth.GenerateID(16)
	if err != nil {
		return nil, err
	}

	ch := &models.OtpChallenge{
		ID:        id,
		UserID:    userID,
		OtpHash:   string(hash),
		CreatedAt: now,
		ExpiresAt: now.Add(TTL),
	}
	var ip *string
	if clientIP != "" {
		ip = &clientIP
		ch.IPAddress = ip
	}

	_, err = v.db.Exec(`
		INSERT INTO otp_challenges (id, user_id, otp_hash, ip_address, created_at, expires_at, attempts)
		VALUES ($1, $2, $3, $4, $5, $6, 0)
	`, ch.ID, ch.UserID, ch.OtpHash, ip, ch.CreatedAt, ch.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert challenge: %w", err)
	}

	message := fmt.Sprintf("Your verification code: %s\nExpires %s.", code, humanize.Time(ch.ExpiresAt))
	if err := v.channel.Deliver(*u.TelegramChatID, message); err != nil {
		slog.Warn("otp delivery failed", "user_id", userID, "error", err)
		return ch, errors.Join(ErrDeliveryFailed, err)
	}

	slog.Info("otp issued", "user_id", userID, "challenge_id", ch.ID)
	return ch, nil
}

// Verify checks a submitted code against the user's most recent challenge.
// Challenges are single-use: a successful Verify stamps verified_at, and a
// replay of the same code returns ErrConsumed. Expiry is detected lazily
// here; there is no background sweep.
//
// A wrong code increments the challenge's attempt counter. The counter is
// recorded but no lockout threshold is enforced on it.
func (v *Verifier) Verify(userID, code string) error {
	var (
		id         string
		otpHash    string
		expiresAt  time.Time
		verifiedAt sql.NullTime
	)
	err := v.db.QueryRow(`
		SELECT id, otp_hash, expires_at, verified_at
		FROM otp_challenges
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, userID).Scan(&id, &otpHash, &expiresAt, &verifiedAt)
	if err == sql.ErrNoRows {
		return ErrNoChallenge
	}
	if err != nil {
		return fmt.Errorf("failed to load challenge: %w", err)
	}

	if verifiedAt.Valid {
		return ErrConsumed
	}

	now := v.now()
	if !now.Before(expiresAt) {
		return ErrExpired
	}

	if bcrypt.CompareHashAndPassword([]byte(otpHash), []byte(code)) != nil {
		if _, err := v.db.Exec(`
			UPDATE otp_challenges SET attempts = attempts + 1 WHERE id = $1
		`, id); err != nil {
			return fmt.Errorf("failed to record attempt: %w", err)
		}
		return ErrCodeMismatch
	}

	// Guard against a concurrent verify winning between the read and this
	// write: only the first stamp succeeds.
	res, err := v.db.Exec(`
		UPDATE otp_challenges SET verified_at = $1 WHERE id = $2 AND verified_at IS NULL
	`, now, id)
	if err != nil {
		return fmt.Errorf("failed to consume challenge: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConsumed
	}

	slog.Info("otp verified", "user_id", userID, "challenge_id", id)
	return nil
}
