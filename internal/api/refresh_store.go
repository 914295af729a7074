package api

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"
)

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// StoreRefreshToken persists a refresh token hash with its expiry. INSERT OR
// IGNORE absorbs identical tokens generated in quick succession; the follow-up
// update re-arms expiry and clears any prior revocation.
func StoreRefreshToken(db *sql.DB, userID int, token string, expiresAt time.Time, ttlDays int) error {
	th := hashToken(token)
	_, err := db.Exec(
		"INSERT OR IGNORE INTO refresh_tokens (user_id, token_hash, expires_at, ttl_days) VALUES (?, ?, ?, ?)",
		userID, th, expiresAt, ttlDays,
	)
	if err != nil {
		return err
	}
	_, err = db.Exec(
		"UPDATE refresh_tokens SET expires_at = ?, ttl_days = ?, revoked = 0 WHERE token_hash = ?",
		expiresAt, ttlDays, th,
	)
	return err
}

// ValidateRefreshTokenInDB checks presence, revocation and expiry; returns
// the owning user and the token's TTL so rotation can preserve it.
func ValidateRefreshTokenInDB(db *sql.DB, token string) (int, int, error) {
	var userID, ttlDays int
	var revoked bool
	var expiresAt time.Time
	row := db.QueryRow(
		"SELECT user_id, expires_at, revoked, ttl_days FROM refresh_tokens WHERE token_hash = ?",
		hashToken(token),
	)
	if err := row.Scan(&userID, &expiresAt, &revoked, &ttlDays); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, errors.New("refresh token not found")
		}
		return 0, 0, err
	}
	if revoked {
		return 0, 0, errors.New("refresh token revoked")
	}
	if time.Now().After(expiresAt) {
		return 0, 0, errors.New("refresh token expired")
	}
	return userID, ttlDays, nil
}

func RevokeRefreshToken(db *sql.DB, token string) error {
	_, err := db.Exec("UPDATE refresh_tokens SET revoked = 1 WHERE token_hash = ?", hashToken(token))
	return err
}
