package pages

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rentcare/rentcare-gobackend/internal/client"
	"github.com/rentcare/rentcare-gobackend/internal/handlers"
	"github.com/rentcare/rentcare-gobackend/internal/models"
	"github.com/rentcare/rentcare-gobackend/internal/repositories"
	"github.com/rentcare/rentcare-gobackend/internal/services"
)

const testPublishableKey = "pk_test_123"

type fakeCheckout struct{}

func (fakeCheckout) CreateSession(ctx context.Context, p services.CheckoutParams) (*services.CheckoutSession, error) {
	return &services.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.example/cs_test_1"}, nil
}

func (fakeCheckout) ParseWebhook(payload []byte, signature string) (*services.CompletedCheckout, error) {
	return nil, nil
}

// backend is a running API over in-memory stores, with a switch that makes
// every request after it is flipped fail with 500.
type backend struct {
	srv        *httptest.Server
	properties *services.PropertyService
	calls      atomic.Int64
	failing    atomic.Bool

	ownerID    string
	propertyID string
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	services.PasswordCost = bcrypt.MinCost
	ctx := context.Background()

	userStore := repositories.NewInMemoryUserStore()
	propertyStore := repositories.NewInMemoryPropertyStore()
	users := services.NewUserService(userStore)
	properties := services.NewPropertyService(propertyStore)

	router := handlers.NewRouter(handlers.Services{
		Auth:       services.NewAuthService(userStore, propertyStore, repositories.NewInMemorySessionStore(), "test-secret", time.Hour),
		Users:      users,
		Properties: properties,
		Payments:   services.NewPaymentService(properties, fakeCheckout{}, "http://localhost:3000", "inr"),
	}, handlers.RouterConfig{ClientURL: "http://localhost:3000"})

	b := &backend{properties: properties}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.calls.Add(1)
		if b.failing.Load() {
			http.Error(w, "store unavailable", http.StatusInternalServerError)
			return
		}
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(b.srv.Close)

	owner, err := users.CreateUser(ctx, &models.User{Email: "owner@example.com", Username: "owner", Password: "secret"})
	require.NoError(t, err)
	p, err := properties.Create(ctx, owner.ID, "Sunrise Apartments", "Pune")
	require.NoError(t, err)
	_, err = properties.AddTenant(ctx, p.ID, models.Tenant{FlatNo: "101", Name: "Tara", Username: "tara", Password: "p1", RentAmount: 5000})
	require.NoError(t, err)
	_, err = properties.AddTenant(ctx, p.ID, models.Tenant{FlatNo: "102", Name: "Ravi", Password: "p2", RentAmount: 4000})
	require.NoError(t, err)

	b.ownerID = owner.ID
	b.propertyID = p.ID
	return b
}

// client returns an API client logged in as identifier.
func (b *backend) client(t *testing.T, identifier, password string) *client.Client {
	t.Helper()
	c, err := client.New(b.srv.URL, b.srv.Client())
	require.NoError(t, err)
	_, err = c.Login(context.Background(), identifier, password)
	require.NoError(t, err)
	return c
}

func always(string) bool { return true }

func never(string) bool { return false }
