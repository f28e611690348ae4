package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rentcare/rentcare-gobackend/internal/models"
	"github.com/rentcare/rentcare-gobackend/internal/repositories"
)

func init() {
	PasswordCost = bcrypt.MinCost
}

type fixture struct {
	users      *repositories.InMemoryUserStore
	properties *repositories.InMemoryPropertyStore
	sessions   *repositories.InMemorySessionStore

	userService     *UserService
	propertyService *PropertyService
	auth            *AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:      repositories.NewInMemoryUserStore(),
		properties: repositories.NewInMemoryPropertyStore(),
		sessions:   repositories.NewInMemorySessionStore(),
	}
	f.userService = NewUserService(f.users)
	f.propertyService = NewPropertyService(f.properties)
	f.propertyService.now = func() time.Time { return time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC) }
	f.auth = NewAuthService(f.users, f.properties, f.sessions, "test-secret", time.Hour)
	return f
}

func (f *fixture) owner(t *testing.T, email, password string) *models.User {
	t.Helper()
	u, err := f.userService.CreateUser(context.Background(), &models.User{Email: email, Username: email, Password: password})
	require.NoError(t, err)
	return u
}

func (f *fixture) property(t *testing.T, ownerID string, tenants ...models.Tenant) *models.Property {
	t.Helper()
	ctx := context.Background()
	p, err := f.propertyService.Create(ctx, ownerID, "Sunrise Apartments", "Pune")
	require.NoError(t, err)
	for _, tenant := range tenants {
		_, err := f.propertyService.AddTenant(ctx, p.ID, tenant)
		require.NoError(t, err)
	}
	p, err = f.propertyService.Get(ctx, p.ID)
	require.NoError(t, err)
	return p
}
