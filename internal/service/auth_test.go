package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	jwthelp "github.com/Skotchmaster/storefront/pkg/jwt"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

func TestAuth_SignupLoginRefreshLogout(t *testing.T) {
	svc, mr := newAuthService(t)
	ctx := context.Background()

	res, err := svc.Signup(ctx, "Ana", "  Ana@Example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", res.User.Email)
	assert.Equal(t, models.RoleCustomer, res.User.Role)

	stored, err := mr.Get("refresh_token:" + res.User.ID.String())
	require.NoError(t, err)
	assert.Equal(t, jwthelp.Sha256Hex(res.RefreshToken), stored)

	claims, err := tokens.AccessClaimsFromToken(res.AccessToken, svc.AccessSecret)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID.String(), claims.Subject)
	assert.Equal(t, models.RoleCustomer, claims.Role)

	login, err := svc.Login(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)

	refreshed, err := svc.RefreshAccess(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Empty(t, refreshed.RefreshToken)

	// the first session's refresh token was replaced by the login
	_, err = svc.RefreshAccess(ctx, res.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)

	require.NoError(t, svc.Logout(ctx, login.RefreshToken))
	_, err = svc.RefreshAccess(ctx, login.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestAuth_SignupValidation(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	cases := []struct {
		name, user, email, password string
	}{
		{"missing name", "", "a@example.com", "secret1"},
		{"bad email", "A", "not-an-email", "secret1"},
		{"short password", "A", "a@example.com", "12345"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, tc.user, tc.email, tc.password)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAuth_SignupDuplicate(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Ana", "ana@example.com", "secret1")
	require.NoError(t, err)

	_, err = svc.Signup(ctx, "Other", "ANA@example.com", "secret2")
	require.ErrorIs(t, err, ErrConflict)
}

func TestAuth_LoginFailures(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Ana", "ana@example.com", "secret1")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "ana@example.com", "wrong-password")
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Login(ctx, "nobody@example.com", "secret1")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuth_RotateReplacesRefreshToken(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	res, err := svc.Signup(ctx, "Ana", "ana@example.com", "secret1")
	require.NoError(t, err)

	rotated, err := svc.Rotate(ctx, res.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, res.RefreshToken, rotated.RefreshToken)

	_, err = svc.Rotate(ctx, res.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)

	_, err = svc.Rotate(ctx, rotated.RefreshToken)
	require.NoError(t, err)
}

func TestAuth_Profile(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	res, err := svc.Signup(ctx, "Ana", "ana@example.com", "secret1")
	require.NoError(t, err)

	u, err := svc.Profile(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", u.Name)

	_, err = svc.Profile(ctx, uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}
