package service

import (
	"context"
	"testing"

	"gifboard/internal/models"
	"gifboard/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuth(t *testing.T) (*AuthService, *store.Store, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	st := store.New(rdb)
	st.Initialize(context.Background())

	svc := NewAuthService(st, rdb, AdminAccount{Username: "admin", Password: "12345678"})
	return svc, st, rdb
}

func TestLoginAdmin(t *testing.T) {
	svc, st, _ := setupAuth(t)

	user, err := svc.Login(context.Background(), "admin", "12345678")
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)
	assert.Equal(t, "System Admin", user.DisplayName)

	cur := st.CurrentUser()
	require.NotNil(t, cur)
	assert.True(t, cur.IsAdmin)
}

func TestLoginSeedUser(t *testing.T) {
	svc, _, _ := setupAuth(t)

	user, err := svc.Login(context.Background(), "giphy-pro", "password")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.True(t, user.IsAdmin)

	user, err = svc.Login(context.Background(), "animator99", "password")
	require.NoError(t, err)
	assert.Equal(t, "u2", user.ID)
	assert.False(t, user.IsAdmin)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, st, _ := setupAuth(t)

	// Establish a session, then fail a login; the session must survive.
	_, err := svc.Login(context.Background(), "animator99", "password")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "animator99", "wrong")
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "UNAUTHORIZED", appErr.Code)

	cur := st.CurrentUser()
	require.NotNil(t, cur)
	assert.Equal(t, "animator99", cur.Username)
}

func TestSignupThenRelogin(t *testing.T) {
	svc, st, _ := setupAuth(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, "newcomer", "hunter2-hunter2")
	require.NoError(t, err)
	assert.Equal(t, "Newcomer", user.DisplayName)
	assert.False(t, user.IsAdmin)
	assert.NotEmpty(t, user.ID)

	svc.Logout(ctx)
	assert.Nil(t, st.CurrentUser())

	again, err := svc.Login(ctx, "newcomer", "hunter2-hunter2")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)

	_, err = svc.Login(ctx, "newcomer", "wrong-password")
	assert.Error(t, err)
}

func TestSignupRejectsTakenUsernames(t *testing.T) {
	svc, _, _ := setupAuth(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "giphy-pro", "some-password")
	assert.Error(t, err)

	_, err = svc.Signup(ctx, "someone", "some-password")
	require.NoError(t, err)
	_, err = svc.Signup(ctx, "someone", "other-password")
	assert.Error(t, err)
}

func TestSignupValidation(t *testing.T) {
	svc, _, _ := setupAuth(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "ab", "long-enough-password")
	assert.Error(t, err)

	_, err = svc.Signup(ctx, "validname", "short")
	assert.Error(t, err)
}
