// Package auth checks credentials against the record store and issues the
// session tokens carried by admins and display clients.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/Nixie-Tech-LLC/loopboard/internal/db"
	"github.com/Nixie-Tech-LLC/loopboard/internal/model"
)

// is returned when username/password don't match any account.
var ErrInvalidCredentials = errors.New("invalid username or password")

var hashCost = bcrypt.DefaultCost

// uses bcrypt to hash a plaintext password.
func HashPassword(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), hashCost)
	return string(bytes), err
}

// compares a bcrypt hash with the plaintext.
func CheckPassword(hash, plain string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	return err == nil
}

var (
	dummyOnce sync.Once
	dummyHash []byte
)

// burnCompare spends the same bcrypt work as a real check so an unknown
// username answers no faster than a wrong password.
func burnCompare(plain string) {
	dummyOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("loopboard-unknown-account"), hashCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(plain))
}

type Authenticator struct {
	store db.Store
}

func NewAuthenticator(store db.Store) *Authenticator {
	return &Authenticator{store: store}
}

// Authenticate tries the admin accounts first and the display users second.
// Unknown usernames and wrong passwords both yield ErrInvalidCredentials.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (model.Identity, error) {
	admin, err := a.store.GetAdminByUsername(ctx, username)
	switch {
	case err == nil:
		if CheckPassword(admin.PasswordHash, password) {
			return model.AdminIdentity(admin), nil
		}
	case !errors.Is(err, db.ErrNotFound):
		return model.Identity{}, fmt.Errorf("admin lookup: %w", err)
	}

	user, err := a.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			burnCompare(password)
			return model.Identity{}, ErrInvalidCredentials
		}
		return model.Identity{}, fmt.Errorf("user lookup: %w", err)
	}
	if !CheckPassword(user.PasswordHash, password) {
		return model.Identity{}, ErrInvalidCredentials
	}
	return model.UserIdentity(user), nil
}

// Resolve turns verified token claims back into an identity. Display users
// are re-read so a deleted account loses its session.
func (a *Authenticator) Resolve(ctx context.Context, claims Claims) (model.Identity, error) {
	if claims.Role == model.RoleAdmin {
		return model.Identity{AccountID: claims.Subject, Username: claims.Username, IsAdmin: true}, nil
	}
	user, err := a.store.GetUserByID(ctx, claims.Subject)
	if err != nil {
		return model.Identity{}, err
	}
	return model.UserIdentity(user), nil
}

// EnsureAdmin seeds the admin account when none exists yet.
func (a *Authenticator) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	n, err := a.store.CountAdmins(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	hash, err := HashPassword(password)
	if err != nil {
		return false, err
	}
	if _, err := a.store.CreateAdmin(ctx, username, hash); err != nil {
		return false, err
	}
	return true, nil
}
