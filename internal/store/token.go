package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/SmartForms-ai/google-forms-api/internal/model"
)

type TokenStore struct {
	db *sql.DB
}

func NewTokenStore(db *sql.DB) *TokenStore {
	return &TokenStore{db: db}
}

func scanToken(scanner interface{ Scan(...any) error }) (*model.TokenRecord, error) {
	var t model.TokenRecord
	var expiresAt sql.NullTime
	err := scanner.Scan(&t.ID, &t.UserID, &t.AccessToken, &t.RefreshToken, &expiresAt, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		t.ExpiresAt = expiresAt.Time
	}
	return &t, nil
}

const tokenCols = `id, user_id, access_token, refresh_token, expires_at, created_at`

func (s *TokenStore) Create(userID, accessToken, refreshToken string, expiresAt time.Time) (*model.TokenRecord, error) {
	result, err := s.db.Exec(
		`INSERT INTO oauth_tokens (user_id, access_token, refresh_token, expires_at) VALUES (?, ?, ?, ?)`,
		userID, accessToken, refreshToken, expiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert token: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+tokenCols+` FROM oauth_tokens WHERE id = ?`, id)
	t, err := scanToken(row)
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}
	return t, nil
}

// GetLatestByUserID returns the most recently created token for the user, or
// nil when the user has never authorized. Older superseded rows are ignored.
func (s *TokenStore) GetLatestByUserID(userID string) (*model.TokenRecord, error) {
	row := s.db.QueryRow(
		`SELECT `+tokenCols+` FROM oauth_tokens WHERE user_id = ? ORDER BY id DESC LIMIT 1`,
		userID,
	)
	t, err := scanToken(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get token by user: %w", err)
	}
	return t, nil
}

// UpdateAccessToken stores a refreshed access token and its new expiry.
func (s *TokenStore) UpdateAccessToken(id int64, accessToken string, expiresAt time.Time) error {
	_, err := s.db.Exec(
		`UPDATE oauth_tokens SET access_token = ?, expires_at = ? WHERE id = ?`,
		accessToken, expiresAt, id,
	)
	if err != nil {
		return fmt.Errorf("update access token: %w", err)
	}
	return nil
}

// DeleteByUserID clears all tokens for the user. Called when a new
// authorization flow starts so stale credentials never win the latest-row
// selection.
func (s *TokenStore) DeleteByUserID(userID string) error {
	_, err := s.db.Exec(`DELETE FROM oauth_tokens WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("delete tokens: %w", err)
	}
	return nil
}
