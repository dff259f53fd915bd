package models

import (
	"database/sql"
	"errors"
	"strings"
	"time"
)

func CreateUser(db *sql.DB, email, username, passwordHash string) error {
	_, err := db.Exec(`INSERT INTO users (email, username, password_hash) VALUES (?, ?, ?)`, email, username, passwordHash)
	if err != nil {
		str := err.Error()
		if strings.Contains(str, "UNIQUE constraint failed: users.email") {
			return ErrDuplicateEmail
		}
		if strings.Contains(str, "UNIQUE constraint failed: users.username") {
			return ErrDuplicateUsername
		}
	}
	return err
}

func GetUserByEmail(db *sql.DB, email string) (*User, error) {
	row := db.QueryRow(`SELECT id, email, username, password_hash, created_at FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func GetUserByID(db *sql.DB, id int) (*User, error) {
	row := db.QueryRow(`SELECT id, email, username, password_hash, created_at FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func CreateSession(db *sql.DB, userID int, sessionID string, expires time.Time) error {
	// revoke existing
	_, err := db.Exec(`UPDATE sessions SET revoked_at = CURRENT_TIMESTAMP WHERE user_id = ? AND revoked_at IS NULL`, userID)
	if err != nil {
		return err
	}
	_, err = db.Exec(`INSERT INTO sessions (id, user_id, expires_at) VALUES (?, ?, ?)`, sessionID, userID, expires)
	return err
}

func GetSession(db *sql.DB, id string) (*Session, error) {
	row := db.QueryRow(`SELECT id, user_id, created_at, expires_at, revoked_at FROM sessions WHERE id = ?`, id)
	var s Session
	var revoked sql.NullTime
	err := row.Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.ExpiresAt, &revoked)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if revoked.Valid {
		s.RevokedAt = &revoked.Time
	}
	return &s, nil
}

func RevokeSession(db *sql.DB, id string) error {
	_, err := db.Exec(`UPDATE sessions SET revoked_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	return err
}
