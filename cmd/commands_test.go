package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rentcare/rentcare-gobackend/internal/client"
	"github.com/rentcare/rentcare-gobackend/internal/handlers"
	"github.com/rentcare/rentcare-gobackend/internal/models"
	"github.com/rentcare/rentcare-gobackend/internal/repositories"
	"github.com/rentcare/rentcare-gobackend/internal/services"
)

type apiFixture struct {
	url        string
	properties *services.PropertyService
	propertyID string
}

func newAPIFixture(t *testing.T) *apiFixture {
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
		Payments:   services.NewPaymentService(properties, nil, "http://localhost:3000", "inr"),
	}, handlers.RouterConfig{ClientURL: "http://localhost:3000"})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	owner, err := users.CreateUser(ctx, &models.User{Email: "owner@example.com", Name: "Asha", Password: "secret"})
	require.NoError(t, err)
	p, err := properties.Create(ctx, owner.ID, "Sunrise Apartments", "Pune")
	require.NoError(t, err)
	_, err = properties.AddTenant(ctx, p.ID, models.Tenant{FlatNo: "101", Name: "Tara", Password: "p1", RentAmount: 5000})
	require.NoError(t, err)

	return &apiFixture{url: srv.URL, properties: properties, propertyID: p.ID}
}

func (f *apiFixture) token(t *testing.T, identifier, password string) string {
	t.Helper()
	c, err := client.New(f.url, nil)
	require.NoError(t, err)
	res, err := c.Login(context.Background(), identifier, password)
	require.NoError(t, err)
	return res.Token
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestPingAndLoginCommands(t *testing.T) {
	f := newAPIFixture(t)

	out, err := run(t, "ping", "--api", f.url)
	require.NoError(t, err)
	assert.Contains(t, out, "Backend pong!")

	out, err = run(t, "login", "101", "-p", "p1", "--api", f.url)
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome, Tenant!")
	assert.Contains(t, out, "redirect: /TenantDashboard/"+f.propertyID+"/101")

	_, err = run(t, "login", "101", "-p", "wrong", "--api", f.url)
	assert.EqualError(t, err, "Invalid email/username or password.")
}

func TestSessionAndLogoutCommands(t *testing.T) {
	f := newAPIFixture(t)
	token := f.token(t, "owner@example.com", "secret")

	out, err := run(t, "session", "--api", f.url, "--token", token)
	require.NoError(t, err)
	assert.Contains(t, out, "(Asha)")

	out, err = run(t, "logout", "--api", f.url, "--token", token)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")

	_, err = run(t, "session", "--api", f.url, "--token", token)
	require.Error(t, err)
	assert.Equal(t, 401, client.StatusOf(err))

	t.Setenv(tokenEnv, "")
	_, err = run(t, "logout", "--api", f.url)
	assert.ErrorIs(t, err, errNoToken)
}

func TestOwnerCommands(t *testing.T) {
	ctx := context.Background()
	f := newAPIFixture(t)
	t.Setenv(tokenEnv, f.token(t, "owner@example.com", "secret"))
	pid := f.propertyID

	out, err := run(t, "property", "rename", pid, "--name", "Sunset Apartments", "--location", "Pune East", "--api", f.url)
	require.NoError(t, err)
	assert.Contains(t, out, `"Sunset Apartments"`)

	out, err = run(t, "tenant", "add", pid, "--flat", "102", "--name", "Ravi", "-p", "p2", "--rent", "4000", "--api", f.url)
	require.NoError(t, err)
	assert.Contains(t, out, "Tenant Ravi added to flat 102, rent 4000.00")

	out, err = run(t, "tenant", "notify", pid, "101", "Water", "off", "tomorrow", "--api", f.url)
	require.NoError(t, err)
	assert.Contains(t, out, "sent to flat 101")

	req, err := f.properties.RaiseRequest(ctx, pid, "101", "Leaky tap")
	require.NoError(t, err)
	_, err = run(t, "request", "update", pid, req.ID, "--status", "Done", "--api", f.url)
	assert.ErrorContains(t, err, "invalid status")
	out, err = run(t, "request", "update", pid, req.ID, "--status", "In Progress", "--remarks", "plumber booked", "--api", f.url)
	require.NoError(t, err)
	assert.Contains(t, out, "is now In Progress")

	out, err = run(t, "tenant", "remove", pid, "102", "--api", f.url)
	require.NoError(t, err)
	assert.Contains(t, out, "flat 102 removed")

	p, err := f.properties.Get(ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, "Sunset Apartments", p.Name)
	assert.Equal(t, "Pune East", p.Location)
	assert.Nil(t, p.FindTenant("102"))
	tara := p.FindTenant("101")
	require.Len(t, tara.NotifiedMessages, 1)
	assert.Equal(t, "Water off tomorrow", tara.NotifiedMessages[0].Message)
	got := p.FindRequest(req.ID)
	assert.Equal(t, models.RequestInProgress, got.Status)
	assert.Equal(t, "plumber booked", got.Remarks)

	// tenants cannot run owner commands
	t.Setenv(tokenEnv, f.token(t, "101", "p1"))
	_, err = run(t, "tenant", "remove", pid, "101", "--api", f.url)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "403"), err.Error())
}
