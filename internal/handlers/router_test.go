package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rentcare/rentcare-gobackend/internal/models"
	"github.com/rentcare/rentcare-gobackend/internal/repositories"
	"github.com/rentcare/rentcare-gobackend/internal/services"
)

const clientURL = "http://localhost:3000"

type fakeCheckout struct {
	completed *services.CompletedCheckout
}

func (f *fakeCheckout) CreateSession(ctx context.Context, p services.CheckoutParams) (*services.CheckoutSession, error) {
	return &services.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.example/cs_test_1"}, nil
}

func (f *fakeCheckout) ParseWebhook(payload []byte, signature string) (*services.CompletedCheckout, error) {
	if signature != "good" {
		return nil, services.ErrInvalidSignature
	}
	return f.completed, nil
}

type testServer struct {
	handler    http.Handler
	users      *services.UserService
	properties *services.PropertyService
	provider   *fakeCheckout
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	services.PasswordCost = bcrypt.MinCost

	userStore := repositories.NewInMemoryUserStore()
	propertyStore := repositories.NewInMemoryPropertyStore()
	sessions := repositories.NewInMemorySessionStore()

	users := services.NewUserService(userStore)
	properties := services.NewPropertyService(propertyStore)
	provider := &fakeCheckout{}
	svc := Services{
		Auth:       services.NewAuthService(userStore, propertyStore, sessions, "test-secret", time.Hour),
		Users:      users,
		Properties: properties,
		Payments:   services.NewPaymentService(properties, provider, clientURL, "inr"),
	}
	return &testServer{
		handler:    NewRouter(svc, RouterConfig{ClientURL: clientURL}),
		users:      users,
		properties: properties,
		provider:   provider,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T, identifier, password string) services.LoginResult {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/login", "", map[string]string{"identifier": identifier, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res services.LoginResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

// setup creates an owner with one property holding tenant 101.
func (s *testServer) setup(t *testing.T) (owner services.LoginResult, propertyID string) {
	t.Helper()
	ctx := context.Background()
	u, err := s.users.CreateUser(ctx, &models.User{Email: "owner@example.com", Username: "owner", Password: "secret"})
	require.NoError(t, err)
	p, err := s.properties.Create(ctx, u.ID, "Sunrise Apartments", "Pune")
	require.NoError(t, err)
	_, err = s.properties.AddTenant(ctx, p.ID, models.Tenant{FlatNo: "101", Name: "Tara", Username: "tara", Password: "p1", RentAmount: 5000})
	require.NoError(t, err)
	_, err = s.properties.AddTenant(ctx, p.ID, models.Tenant{FlatNo: "102", Name: "Ravi", Password: "p2", RentAmount: 4000})
	require.NoError(t, err)
	return s.login(t, "owner@example.com", "secret"), p.ID
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestPing(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/ping", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "Backend pong!", body["message"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestCORSAllowsOnlyClientOrigin(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set("Origin", clientURL)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, clientURL, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestLoginResponses(t *testing.T) {
	s := newTestServer(t)
	owner, propertyID := s.setup(t)
	assert.Equal(t, models.RoleOwner, owner.Role)
	assert.Equal(t, "/OwnerDashboard/"+owner.OwnerID, owner.Redirect)

	tenant := s.login(t, "101", "p1")
	assert.Equal(t, "/TenantDashboard/"+propertyID+"/101", tenant.Redirect)

	rec := s.do(t, http.MethodPost, "/api/login", "", map[string]string{"identifier": "owner@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/login", "", map[string]string{"identifier": "", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid request body\n", rr.Body.String())
}

func TestProtectedRoutesNeedSession(t *testing.T) {
	s := newTestServer(t)
	owner, propertyID := s.setup(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/properties", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/properties", "garbage", nil).Code)

	rec := s.do(t, http.MethodGet, "/api/session", owner.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	session := decode[map[string]interface{}](t, rec)
	assert.Equal(t, models.RoleOwner, session["role"])
	profile, ok := session["user"].(map[string]interface{})
	require.True(t, ok, rec.Body.String())
	assert.Equal(t, "owner@example.com", profile["email"])
	assert.Equal(t, owner.OwnerID, profile["id"])
	assert.NotContains(t, rec.Body.String(), "passwordHash")

	tenant := s.login(t, "101", "p1")
	rec = s.do(t, http.MethodGet, "/api/session", tenant.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	session = decode[map[string]interface{}](t, rec)
	assert.Equal(t, "101", session["flatNo"])
	assert.Nil(t, session["user"])

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodPost, "/api/logout", owner.Token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/properties/"+propertyID, owner.Token, nil).Code)
}

func TestOwnerPropertyCRUD(t *testing.T) {
	s := newTestServer(t)
	owner, propertyID := s.setup(t)

	rec := s.do(t, http.MethodPost, "/properties", owner.Token, map[string]string{"name": "Lake View", "location": "Nashik"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.Property](t, rec)
	assert.Equal(t, owner.OwnerID, created.OwnerID)
	assert.Empty(t, created.Tenants)

	rec = s.do(t, http.MethodPost, "/properties", owner.Token, map[string]string{"name": "No location"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/properties?ownerId="+owner.OwnerID, owner.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Property](t, rec), 2)

	rec = s.do(t, http.MethodGet, "/properties?ownerId=someone-else", owner.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/properties/"+propertyID, owner.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	before := decode[models.Property](t, rec)
	require.Len(t, before.Tenants, 2)
	assert.NotContains(t, rec.Body.String(), "passwordHash")

	rec = s.do(t, http.MethodPatch, "/properties/"+propertyID, owner.Token, map[string]string{"name": "Sunset", "location": "Pune"})
	require.Equal(t, http.StatusOK, rec.Code)
	after := decode[models.Property](t, rec)
	assert.Equal(t, "Sunset", after.Name)
	assert.Equal(t, before.Tenants, after.Tenants)
	assert.Equal(t, before.MaintenanceRequests, after.MaintenanceRequests)

	rec = s.do(t, http.MethodDelete, "/properties/"+created.ID, owner.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Property deleted successfully", decode[map[string]string](t, rec)["message"])
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/properties/"+created.ID, owner.Token, nil).Code)
}

func TestWholeDocumentPutKeepsTenantLogins(t *testing.T) {
	s := newTestServer(t)
	owner, propertyID := s.setup(t)

	rec := s.do(t, http.MethodGet, "/properties/"+propertyID, owner.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode[models.Property](t, rec)
	p.Name = "Renamed"

	rec = s.do(t, http.MethodPut, "/properties/"+propertyID, owner.Token, p)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	tenant := s.login(t, "tara", "p1")
	assert.Equal(t, propertyID, tenant.PropertyID)

	p.Tenants = append(p.Tenants, models.Tenant{FlatNo: "101"})
	rec = s.do(t, http.MethodPut, "/properties/"+propertyID, owner.Token, p)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestOtherOwnerIsForbidden(t *testing.T) {
	s := newTestServer(t)
	_, propertyID := s.setup(t)
	_, err := s.users.CreateUser(context.Background(), &models.User{Email: "other@example.com", Password: "pw"})
	require.NoError(t, err)
	other := s.login(t, "other@example.com", "pw")

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/properties/"+propertyID, other.Token, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodDelete, "/properties/"+propertyID, other.Token, nil).Code)
}

func TestTenantSeesOnlyOwnRecord(t *testing.T) {
	s := newTestServer(t)
	owner, propertyID := s.setup(t)
	tenant := s.login(t, "101", "p1")

	rec := s.do(t, http.MethodPost, "/properties/"+propertyID+"/maintenance-requests", owner.Token,
		map[string]string{"flatNo": "102", "description": "Broken window"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/properties/"+propertyID, tenant.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[models.Property](t, rec)
	require.Len(t, view.Tenants, 1)
	assert.Equal(t, "101", view.Tenants[0].FlatNo)
	assert.Empty(t, view.MaintenanceRequests)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/properties", tenant.Token, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPut, "/properties/"+propertyID, tenant.Token, view).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/users", tenant.Token, nil).Code)
}

func TestTenantMaintenanceFlow(t *testing.T) {
	s := newTestServer(t)
	owner, propertyID := s.setup(t)
	tenant := s.login(t, "101", "p1")
	base := "/properties/" + propertyID + "/maintenance-requests"

	rec := s.do(t, http.MethodPost, base, tenant.Token, map[string]string{"description": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, base, tenant.Token, map[string]string{"flatNo": "102", "description": "Not mine"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, base, tenant.Token, map[string]string{"description": "Leaky tap"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	req := decode[models.MaintenanceRequest](t, rec)
	assert.Equal(t, "101", req.FlatNo)
	assert.Equal(t, models.RequestPending, req.Status)

	rec = s.do(t, http.MethodPatch, base+"/"+req.ID, tenant.Token, map[string]string{"status": models.RequestResolved})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPatch, base+"/"+req.ID, owner.Token, map[string]string{"status": "Done"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPatch, base+"/"+req.ID, owner.Token, map[string]string{"status": models.RequestInProgress, "remarks": "plumber booked"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	// no longer Pending, so the tenant may not delete it
	rec = s.do(t, http.MethodDelete, base+"/"+req.ID, tenant.Token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodDelete, base+"/"+req.ID, owner.Token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodDelete, base+"/"+req.ID, owner.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTenantManagementRoutes(t *testing.T) {
	s := newTestServer(t)
	owner, propertyID := s.setup(t)
	base := "/properties/" + propertyID + "/tenants"

	rec := s.do(t, http.MethodPost, base, owner.Token, models.Tenant{FlatNo: "103", Name: "Mina", Password: "p3", RentAmount: 3000})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "p3")

	rec = s.do(t, http.MethodPost, base, owner.Token, models.Tenant{FlatNo: "103"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, base+"/103/notifications", owner.Token, map[string]string{"message": "Rent due"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodDelete, base+"/103", owner.Token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodDelete, base+"/103", owner.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPaymentRoutes(t *testing.T) {
	s := newTestServer(t)
	owner, propertyID := s.setup(t)
	tenant := s.login(t, "101", "p1")

	checkout := map[string]interface{}{
		"tenant":       map[string]interface{}{"flatNo": "101", "rentAmount": 5000, "name": "Tara"},
		"propertyId":   propertyID,
		"propertyName": "Sunrise Apartments",
	}
	rec := s.do(t, http.MethodPost, "/api/payment/create-checkout-session", tenant.Token, checkout)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "cs_test_1", decode[map[string]string](t, rec)["id"])

	rec = s.do(t, http.MethodPost, "/api/payment/create-checkout-session", owner.Token, checkout)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	success := "/properties/" + propertyID + "/tenants/101/payment-success"
	rec = s.do(t, http.MethodPut, "/properties/"+propertyID+"/tenants/102/payment-success", tenant.Token, map[string]float64{"rentAmount": 4000})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPut, success, tenant.Token, map[string]float64{"rentAmount": 5000})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	p, err := s.properties.Get(context.Background(), propertyID)
	require.NoError(t, err)
	paid := p.FindTenant("101")
	assert.Equal(t, models.PaymentPaid, paid.PaymentStatus)
	require.Len(t, paid.PaymentHistory, 1)
	assert.Equal(t, 5000.0, paid.PaymentHistory[0].Amount)

	// owners may record a payment for their tenants too
	rec = s.do(t, http.MethodPut, "/properties/"+propertyID+"/tenants/102/payment-success", owner.Token, map[string]float64{"rentAmount": 4000})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebhook(t *testing.T) {
	s := newTestServer(t)
	_, propertyID := s.setup(t)
	s.provider.completed = &services.CompletedCheckout{
		SessionID: "cs_test_1", PropertyID: propertyID, FlatNo: "102", Amount: 4000, Paid: true,
	}

	post := func(sig string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/payment/webhook", strings.NewReader(`{"type":"checkout.session.completed"}`))
		req.Header.Set("Stripe-Signature", sig)
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusBadRequest, post("bad").Code)
	p, err := s.properties.Get(context.Background(), propertyID)
	require.NoError(t, err)
	assert.Empty(t, p.FindTenant("102").PaymentHistory)

	assert.Equal(t, http.StatusOK, post("good").Code)
	assert.Equal(t, http.StatusOK, post("good").Code)
	p, err = s.properties.Get(context.Background(), propertyID)
	require.NoError(t, err)
	assert.Len(t, p.FindTenant("102").PaymentHistory, 1)
}

func postWebhook(s *testServer, sig string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/payment/webhook", strings.NewReader(`{"type":"checkout.session.completed"}`))
	req.Header.Set("Stripe-Signature", sig)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func TestWebhookThenRedirectRecordsOnePayment(t *testing.T) {
	s := newTestServer(t)
	_, propertyID := s.setup(t)
	tenant := s.login(t, "101", "p1")
	s.provider.completed = &services.CompletedCheckout{
		SessionID: "cs_test_1", PropertyID: propertyID, FlatNo: "101", Amount: 5000, Paid: true,
	}

	require.Equal(t, http.StatusOK, postWebhook(s, "good").Code)

	success := "/properties/" + propertyID + "/tenants/101/payment-success"
	body := map[string]interface{}{"rentAmount": 5000, "sessionId": "cs_test_1"}
	rec := s.do(t, http.MethodPut, success, tenant.Token, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	p, err := s.properties.Get(context.Background(), propertyID)
	require.NoError(t, err)
	history := p.FindTenant("101").PaymentHistory
	require.Len(t, history, 1)
	assert.Equal(t, "cs_test_1", history[0].SessionID)
}

func TestWebhookForRemovedTenantIsAcknowledged(t *testing.T) {
	s := newTestServer(t)
	_, propertyID := s.setup(t)
	require.NoError(t, s.properties.RemoveTenant(context.Background(), propertyID, "102"))
	s.provider.completed = &services.CompletedCheckout{
		SessionID: "cs_test_2", PropertyID: propertyID, FlatNo: "102", Amount: 4000, Paid: true,
	}
	assert.Equal(t, http.StatusOK, postWebhook(s, "good").Code)

	s.provider.completed.PropertyID = "gone"
	assert.Equal(t, http.StatusOK, postWebhook(s, "good").Code)
}

func TestRecoverReturns500(t *testing.T) {
	h := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "boom\n", rec.Body.String())
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(repositories.ErrNotFound))
	assert.Equal(t, http.StatusConflict, statusFor(services.ErrRequestNotPending))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(services.ErrPaymentDisabled))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
