// Package sessions issues and validates opaque bearer tokens.
package sessions

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"techstore/internal/users"
)

var (
	// ErrTokenNotFound indicates the token was never issued or was revoked.
	ErrTokenNotFound = errors.New("session token not found")
	// ErrSessionExpired indicates the session exists but its expiry has passed.
	ErrSessionExpired = errors.New("session expired")
)

// Store is the persistence contract for sessions, keyed by token.
type Store interface {
	CreateSession(ctx context.Context, s Session) (Session, error)
	GetSessionByToken(ctx context.Context, token string) (Session, error)
	DeleteSession(ctx context.Context, token string) (bool, error)
}

type Conf struct {
	store Store
	users *users.Conf
}

func NewConf(store Store, users *users.Conf) (*Conf, error) {
	if store == nil || users == nil {
		return nil, fmt.Errorf("store or users conf is nil")
	}
	return &Conf{store: store, users: users}, nil
}

// CreateSession issues a fresh token for the user, valid for ttl.
func (c *Conf) CreateSession(ctx context.Context, userID string, ttl time.Duration) (Session, error) {
	token, err := generateToken()
	if err != nil {
		return Session{}, fmt.Errorf("generating session token: %w", err)
	}
	now := time.Now().UTC()
	return c.store.CreateSession(ctx, Session{
		UserID:    userID,
		Token:     token,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	})
}

// ResolveSession returns the user owning the token. Unknown tokens fail with
// ErrTokenNotFound, expired ones with ErrSessionExpired. Expired rows are not
// deleted; expiry is purely a function of time.
func (c *Conf) ResolveSession(ctx context.Context, token string) (users.User, error) {
	s, err := c.store.GetSessionByToken(ctx, token)
	if err != nil {
		return users.User{}, err
	}
	if time.Now().After(s.ExpiresAt) {
		return users.User{}, ErrSessionExpired
	}
	return c.users.GetUserByID(ctx, s.UserID)
}

// DestroySession revokes a token. Idempotent; reports whether a row existed.
func (c *Conf) DestroySession(ctx context.Context, token string) (bool, error) {
	return c.store.DeleteSession(ctx, token)
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
