package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentcare/rentcare-gobackend/internal/models"
	"github.com/rentcare/rentcare-gobackend/internal/repositories"
)

func TestLoginOwner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.owner(t, "owner@example.com", "secret")

	res, err := f.auth.Login(ctx, "OWNER@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, res.Role)
	assert.Equal(t, owner.ID, res.OwnerID)
	assert.Equal(t, "/OwnerDashboard/"+owner.ID, res.Redirect)

	claims, err := f.auth.Verify(ctx, res.Token)
	require.NoError(t, err)
	assert.True(t, claims.IsOwner())
	assert.Equal(t, owner.ID, claims.OwnerID)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture(t)
	f.owner(t, "owner@example.com", "secret")

	_, err := f.auth.Login(context.Background(), "owner@example.com", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginMissingCredentials(t *testing.T) {
	f := newFixture(t)
	_, err := f.auth.Login(context.Background(), "  ", "secret")
	assert.ErrorIs(t, err, ErrMissingCredentials)
	_, err = f.auth.Login(context.Background(), "owner", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestLoginTenantByFlatNo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.owner(t, "owner@example.com", "secret")
	p := f.property(t, owner.ID, models.Tenant{FlatNo: "101", Password: "p1", RentAmount: 5000})

	res, err := f.auth.Login(ctx, "101", "p1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleTenant, res.Role)
	assert.Equal(t, "/TenantDashboard/"+p.ID+"/101", res.Redirect)

	claims, err := f.auth.Verify(ctx, res.Token)
	require.NoError(t, err)
	assert.True(t, claims.IsTenantOf(p.ID, "101"))
	assert.False(t, claims.IsOwner())
}

func TestLoginTenantByUsernameFirstMatchWins(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.owner(t, "owner@example.com", "secret")
	first := f.property(t, owner.ID, models.Tenant{FlatNo: "101", Username: "tara", Password: "same"})
	f.property(t, owner.ID, models.Tenant{FlatNo: "202", Username: "TARA", Password: "same"})

	res, err := f.auth.Login(ctx, "Tara", "same")
	require.NoError(t, err)
	assert.Equal(t, first.ID, res.PropertyID)
	assert.Equal(t, "101", res.FlatNo)
}

func TestVerifyRejectsRevokedAndForeignTokens(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.owner(t, "owner@example.com", "secret")

	res, err := f.auth.Login(ctx, "owner@example.com", "secret")
	require.NoError(t, err)

	claims, err := f.auth.Verify(ctx, res.Token)
	require.NoError(t, err)
	require.NoError(t, f.auth.Logout(ctx, claims))

	_, err = f.auth.Verify(ctx, res.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Role:    models.RoleOwner,
		OwnerID: "x",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "sid",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := forged.SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = f.auth.Verify(ctx, signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = f.auth.Verify(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	u, err := f.userService.CreateUser(ctx, &models.User{Email: "a@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, u.Role)
	assert.Empty(t, u.Password)
	assert.True(t, CheckPassword(u.PasswordHash, "pw"))

	_, err = f.userService.CreateUser(ctx, &models.User{Email: "b@example.com"})
	assert.ErrorIs(t, err, ErrInvalidUser)

	for _, role := range []string{"admin", models.RoleTenant} {
		_, err = f.userService.CreateUser(ctx, &models.User{Email: role + "@example.com", Password: "pw", Role: role})
		assert.ErrorIs(t, err, ErrInvalidUser, role)
	}

	got, err := f.userService.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", got.Email)
	assert.Empty(t, got.PasswordHash)
	_, err = f.userService.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)

	users, err := f.userService.UserList(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Empty(t, users[0].PasswordHash)
}
