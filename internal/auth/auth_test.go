package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Nixie-Tech-LLC/loopboard/internal/db"
	"github.com/Nixie-Tech-LLC/loopboard/internal/model"
)

func init() {
	hashCost = bcrypt.MinCost
}

func seed(t *testing.T) (*db.MemoryStore, model.UserAccount) {
	t.Helper()
	ctx := context.Background()
	store := db.NewMemoryStore()

	adminHash, err := HashPassword("admin#pass")
	require.NoError(t, err)
	_, err = store.CreateAdmin(ctx, "root", adminHash)
	require.NoError(t, err)

	userHash, err := HashPassword("lobby#pass")
	require.NoError(t, err)
	u, err := store.CreateUser(ctx, "lobby", userHash, nil)
	require.NoError(t, err)
	return store, u
}

func TestAuthenticate(t *testing.T) {
	store, user := seed(t)
	a := NewAuthenticator(store)
	ctx := context.Background()

	id, err := a.Authenticate(ctx, "root", "admin#pass")
	require.NoError(t, err)
	assert.True(t, id.IsAdmin)
	assert.Equal(t, model.RoleAdmin, id.Role())

	id, err = a.Authenticate(ctx, "lobby", "lobby#pass")
	require.NoError(t, err)
	assert.False(t, id.IsAdmin)
	assert.Equal(t, user.ID, id.AccountID)
	assert.Equal(t, model.StatusDisconnect, id.Status)
}

func TestAuthenticate_FailuresAreIndistinguishable(t *testing.T) {
	store, _ := seed(t)
	a := NewAuthenticator(store)
	ctx := context.Background()

	_, errUnknown := a.Authenticate(ctx, "nobody", "whatever#1")
	_, errWrong := a.Authenticate(ctx, "lobby", "wrong#pass")
	_, errAdminWrong := a.Authenticate(ctx, "root", "wrong#pass")

	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrong, ErrInvalidCredentials)
	assert.ErrorIs(t, errAdminWrong, ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
}

func TestAuthenticate_StoreFailure(t *testing.T) {
	store := new(db.MockStore)
	store.On("GetAdminByUsername", mock.Anything, "lobby").
		Return(model.AdminAccount{}, errors.New("connection refused"))

	_, err := NewAuthenticator(store).Authenticate(context.Background(), "lobby", "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	store.AssertExpectations(t)
}

func TestTokenRoundTrip(t *testing.T) {
	id := model.Identity{AccountID: "u1", Username: "lobby"}
	token, err := GenerateJWT(id, "secret")
	require.NoError(t, err)

	claims, err := ParseToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, Claims{Subject: "u1", Username: "lobby", Role: model.RoleUser}, claims)

	_, err = ParseToken(token, "other-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = ParseToken("garbage", "secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolve(t *testing.T) {
	store, user := seed(t)
	a := NewAuthenticator(store)
	ctx := context.Background()

	id, err := a.Resolve(ctx, Claims{Subject: user.ID, Role: model.RoleUser})
	require.NoError(t, err)
	assert.Equal(t, "lobby", id.Username)

	require.NoError(t, store.DeleteUser(ctx, user.ID))
	_, err = a.Resolve(ctx, Claims{Subject: user.ID, Role: model.RoleUser})
	assert.ErrorIs(t, err, db.ErrNotFound)

	id, err = a.Resolve(ctx, Claims{Subject: "a1", Username: "root", Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.True(t, id.IsAdmin)
}

func TestEnsureAdmin(t *testing.T) {
	store := db.NewMemoryStore()
	a := NewAuthenticator(store)
	ctx := context.Background()

	created, err := a.EnsureAdmin(ctx, "root", "admin#pass")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = a.EnsureAdmin(ctx, "root2", "admin#pass")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestAuthenticate_UnknownUserPaysBcrypt(t *testing.T) {
	store, _ := seed(t)
	a := NewAuthenticator(store)

	_, err := a.Authenticate(context.Background(), "ghost", "whatever#1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	require.NotNil(t, dummyHash)
	cost, err := bcrypt.Cost(dummyHash)
	require.NoError(t, err)
	assert.Equal(t, hashCost, cost)
}
