// Copyright (c) 2025 The UniVote Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package identity

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/univote/univote/auth"
	"github.com/univote/univote/db"
	"github.com/univote/univote/models"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateID    = errors.New("university id already registered")
	ErrBadCredentials = errors.New("invalid credentials")
	ErrLinkNotFound   = errors.New("link token not found")
)

// Store is the identity store: users and their out-of-band contact handles.
type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) *Store {
	return &Store{db: database}
}

// Register creates a user with a bcrypt credential hash. The university id
// must be unique; a duplicate returns ErrDuplicateID.
func (s *Store) Register(universityID, fullName string, role models.Role, password, phoneNumber string) (*models.User, error) {
	id, err := auth.GenerateID(16)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		ID:           id,
		UniversityID: universityID,
		FullName:     fullName,
		Role:         role,
		PhoneNumber:  phoneNumber,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	_, err = s.db.Exec(`
		INSERT INTO users (id, university_id, full_name, role, phone_number, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, u.ID, u.UniversityID, u.FullName, string(u.Role), u.PhoneNumber, u.PasswordHash, u.CreatedAt)

	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicateID
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return u, nil
}

// FindUser looks up a user by internal id. Returns ErrNotFound if absent.
func (s *Store) FindUser(id string) (*models.User, error) {
	return s.scanUser(s.db.QueryRow(`
		SELECT id, university_id, full_name, role, phone_number, telegram_chat_id, password_hash, created_at
		FROM users WHERE id = $1
	`, id))
}

// FindUserByUniversityID looks up a user by external (university) id.
func (s *Store) FindUserByUniversityID(universityID string) (*models.User, error) {
	return s.scanUser(s.db.QueryRow(`
		SELECT id, university_id, full_name, role, phone_number, telegram_chat_id, password_hash, created_at
		FROM users WHERE university_id = $1
	`, universityID))
}

// VerifyPassword checks a credential against the stored hash. Returns the
// user on success; ErrBadCredentials covers both unknown ids and wrong
// passwords so callers cannot probe for registered ids.
func (s *Store) VerifyPassword(universityID, password string) (*models.User, error) {
	u, err := s.FindUserByUniversityID(universityID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, ErrBadCredentials
	}
	return u, nil
}

// ListUsers returns all users ordered by creation time.
func (s *Store) ListUsers() ([]models.User, error) {
	rows, err := s.db.Query(`
		SELECT id, university_id, full_name, role, phone_number, telegram_chat_id, password_hash, created_at
		FROM users ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// DeleteUser removes a user and their OTP challenges and link tokens.
// Vote receipts are kept: the fact that a vote was cast survives the voter
// record.
func (s *Store) DeleteUser(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM otp_challenges WHERE user_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete otp challenges: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM telegram_links WHERE user_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete link tokens: %w", err)
	}

	res, err := tx.Exec(`DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// CreateLinkToken issues a one-shot token for binding a Telegram chat to
// the user. The token is handed to the user out of band (deep link to the
// bot); completing the link consumes it.
func (s *Store) CreateLinkToken(userID string) (*models.TelegramLink, error) {
	if _, err := s.FindUser(userID); err != nil {
		return nil, err
	}

	id, err := auth.GenerateID(16)
	if err != nil {
		return nil, err
	}
	token, err := auth.GenerateLinkToken()
	if err != nil {
		return nil, err
	}

	link := &models.TelegramLink{
		ID:        id,
		UserID:    userID,
		Token:     token,
		CreatedAt: time.Now(),
	}

	_, err = s.db.Exec(`
		INSERT INTO telegram_links (id, user_id, token, created_at)
		VALUES ($1, $2, $3, $4)
	`, link.ID, link.UserID, link.Token, link.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert link token: %w", err)
	}

	return link, nil
}

// CompleteLink consumes a link token and binds the chat id to its user.
// A second call with the same token returns ErrLinkNotFound.
func (s *Store) CompleteLink(token, chatID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var userID string
	err = tx.QueryRow(`SELECT user_id FROM telegram_links WHERE token = $1`, token).Scan(&userID)
	if err == sql.ErrNoRows {
		return ErrLinkNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to query link token: %w", err)
	}

	if _, err := tx.Exec(`UPDATE users SET telegram_chat_id = $1 WHERE id = $2`, chatID, userID); err != nil {
		return fmt.Errorf("failed to bind chat id: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM telegram_links WHERE token = $1`, token); err != nil {
		return fmt.Errorf("failed to consume link token: %w", err)
	}

	return tx.Commit()
}

func (s *Store) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var role string
	var phone, chatID sql.NullString
	err := row.Scan(&u.ID, &u.UniversityID, &u.FullName, &role, &phone, &chatID, &u.PasswordHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	parsed, err := models.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("corrupt role for user %s: %w", u.ID, err)
	}
	u.Role = parsed
	if phone.Valid {
		u.PhoneNumber = phone.String
	}
	if chatID.Valid {
		u.TelegramChatID = &chatID.String
	}
	return &u, nil
}

func scanUserRow(rows *sql.Rows) (*models.User, error) {
	var u models.User
	var role string
	var phone, chatID sql.NullString
	err := rows.Scan(&u.ID, &u.UniversityID, &u.FullName, &role, &phone, &chatID, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	parsed, err := models.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("corrupt role for user %s: %w", u.ID, err)
	}
	u.Role = parsed
	if phone.Valid {
		u.PhoneNumber = phone.String
	}
	if chatID.Valid {
		u.TelegramChatID = &chatID.String
	}
	return &u, nil
}
