// Package users owns user records and their credentials.
package users

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates no user matches the lookup key.
	ErrNotFound = errors.New("user not found")
	// ErrAlreadyExists indicates the username or email is already taken.
	ErrAlreadyExists = errors.New("user already exists")
)

// Store is the persistence contract for users. Uniqueness of username and
// email is checked at creation time; lookups report absence with ErrNotFound.
type Store interface {
	CreateUser(ctx context.Context, nu NewUser) (User, error)
	GetUserByID(ctx context.Context, id string) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
}

type Conf struct {
	store Store
}

func NewConf(store Store) (*Conf, error) {
	if store == nil {
		return nil, fmt.Errorf("store is nil")
	}
	return &Conf{store: store}, nil
}

// CreateUser inserts a new user. Fails with ErrAlreadyExists when the
// username or email is taken.
func (c *Conf) CreateUser(ctx context.Context, nu NewUser) (User, error) {
	if nu.Username == "" || nu.Email == "" || nu.PasswordHash == "" {
		return User{}, fmt.Errorf("username, email and password hash are required")
	}
	return c.store.CreateUser(ctx, nu)
}

func (c *Conf) GetUserByID(ctx context.Context, id string) (User, error) {
	return c.store.GetUserByID(ctx, id)
}

func (c *Conf) GetUserByUsername(ctx context.Context, username string) (User, error) {
	return c.store.GetUserByUsername(ctx, username)
}

func (c *Conf) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return c.store.GetUserByEmail(ctx, email)
}
