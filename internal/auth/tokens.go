package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ludolist/backend/internal/models"
	"github.com/ludolist/backend/internal/repositories"
)

// SessionStore persists issued refresh tokens so they can survive process
// restarts. A missing token surfaces as repositories.ErrNotFound; the token
// manager translates it for its callers.
type SessionStore interface {
	Save(ctx context.Context, record repositories.SessionRecord) error
	Find(ctx context.Context, refreshToken string) (repositories.SessionRecord, error)
	Delete(ctx context.Context, refreshToken string) error
}

type accessClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

// TokenManager issues signed access tokens paired with opaque, store-backed
// refresh tokens.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration

	store SessionStore
	now   func() time.Time
}

// NewTokenManager constructs a TokenManager signing access tokens with secret
// and persisting refresh tokens in store.
func NewTokenManager(secret []byte, accessTTL, refreshTTL time.Duration, store SessionStore) *TokenManager {
	if store == nil {
		panic("auth: session store must not be nil")
	}
	if len(secret) == 0 {
		panic("auth: signing secret must not be empty")
	}
	return &TokenManager{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		store:      store,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Issue creates a new session for the provided user identifier.
func (m *TokenManager) Issue(ctx context.Context, userID string) (models.Session, error) {
	if userID == "" {
		return models.Session{}, errors.New("user id must be provided")
	}

	now := m.now()
	accessExpiry := now.Add(m.accessTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExpiry),
		},
		UserID: userID,
	})

	accessToken, err := token.SignedString(m.secret)
	if err != nil {
		return models.Session{}, err
	}

	refreshToken, err := randomToken()
	if err != nil {
		return models.Session{}, err
	}

	session := models.Session{
		UserID:           userID,
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExpiry,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: now.Add(m.refreshTTL),
	}

	if err := m.store.Save(ctx, repositories.SessionRecord{
		RefreshToken: refreshToken,
		UserID:       userID,
		ExpiresAt:    session.RefreshExpiresAt,
	}); err != nil {
		return models.Session{}, err
	}

	return session, nil
}

// Refresh exchanges a refresh token for a new session, rotating the stored token.
func (m *TokenManager) Refresh(ctx context.Context, refreshToken string) (models.Session, error) {
	if refreshToken == "" {
		return models.Session{}, ErrSessionNotFound
	}

	stored, err := m.store.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Session{}, ErrSessionNotFound
		}
		return models.Session{}, err
	}

	if m.now().After(stored.ExpiresAt) {
		_ = m.store.Delete(ctx, refreshToken)
		return models.Session{}, ErrRefreshTokenExpired
	}

	if err := m.store.Delete(ctx, refreshToken); err != nil {
		// The token was rotated out from under us by a concurrent refresh.
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Session{}, ErrSessionNotFound
		}
		return models.Session{}, err
	}

	return m.Issue(ctx, stored.UserID)
}

// Revoke removes the provided refresh token from the active session store.
func (m *TokenManager) Revoke(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}
	_ = m.store.Delete(ctx, refreshToken)
}

// Verify validates an access token and returns the user identifier it was
// issued to.
func (m *TokenManager) Verify(accessToken string) (string, error) {
	claims := &accessClaims{}

	token, err := jwt.ParseWithClaims(accessToken, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", ErrInvalidAccessToken
	}

	if !token.Valid || claims.UserID == "" {
		return "", ErrInvalidAccessToken
	}

	return claims.UserID, nil
}

func randomToken() (string, error) {
	const size = 32
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
