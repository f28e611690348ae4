// Package client is a typed client for the RentCare REST API, used by the
// page controllers and the CLI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rentcare/rentcare-gobackend/internal/models"
)

var ErrAPIURLNotConfigured = errors.New("API base URL is not configured")

// APIError is a non-2xx answer from the API. Message is the plain-text body
// the server sent.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0 when err is not an
// API error.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// New returns a client for the API at baseURL. A nil httpClient gets a
// default one with a 10 second timeout.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrAPIURLNotConfigured
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, http: httpClient}, nil
}

func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) Token() string { return c.token }

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(resp.Body)
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func propertyPath(id string) string {
	return "/properties/" + url.PathEscape(id)
}

type PingResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func (c *Client) Ping(ctx context.Context) (*PingResponse, error) {
	var out PingResponse
	if err := c.do(ctx, http.MethodGet, "/api/ping", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type LoginResult struct {
	Token      string    `json:"token"`
	Role       string    `json:"role"`
	OwnerID    string    `json:"ownerId,omitempty"`
	PropertyID string    `json:"propertyId,omitempty"`
	FlatNo     string    `json:"flatNo,omitempty"`
	Redirect   string    `json:"redirect"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// Login authenticates and keeps the returned token for later calls.
func (c *Client) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	in := map[string]string{"identifier": identifier, "password": password}
	var out LoginResult
	if err := c.do(ctx, http.MethodPost, "/api/login", in, &out); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/api/logout", nil, nil); err != nil {
		return err
	}
	c.token = ""
	return nil
}

// SessionInfo describes the caller's session. User is set for owners.
type SessionInfo struct {
	Role       string       `json:"role"`
	OwnerID    string       `json:"ownerId,omitempty"`
	PropertyID string       `json:"propertyId,omitempty"`
	FlatNo     string       `json:"flatNo,omitempty"`
	ExpiresAt  *time.Time   `json:"expiresAt,omitempty"`
	User       *models.User `json:"user,omitempty"`
}

func (c *Client) Session(ctx context.Context) (*SessionInfo, error) {
	var out SessionInfo
	if err := c.do(ctx, http.MethodGet, "/api/session", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListProperties(ctx context.Context, ownerID string) ([]models.Property, error) {
	path := "/properties"
	if ownerID != "" {
		path += "?ownerId=" + url.QueryEscape(ownerID)
	}
	var out []models.Property
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	var out models.Property
	if err := c.do(ctx, http.MethodGet, propertyPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProperty(ctx context.Context, name, location string) (*models.Property, error) {
	in := map[string]string{"name": name, "location": location}
	var out models.Property
	if err := c.do(ctx, http.MethodPost, "/properties", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReplaceProperty sends the whole document back. Tenants without a password
// keep the one already stored.
func (c *Client) ReplaceProperty(ctx context.Context, p *models.Property) (*models.Property, error) {
	var out models.Property
	if err := c.do(ctx, http.MethodPut, propertyPath(p.ID), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateDetails(ctx context.Context, id, name, location string) (*models.Property, error) {
	in := map[string]string{"name": name, "location": location}
	var out models.Property
	if err := c.do(ctx, http.MethodPatch, propertyPath(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProperty(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, propertyPath(id), nil, nil)
}

func (c *Client) AddTenant(ctx context.Context, propertyID string, t models.Tenant) (*models.Tenant, error) {
	var out models.Tenant
	if err := c.do(ctx, http.MethodPost, propertyPath(propertyID)+"/tenants", t, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RemoveTenant(ctx context.Context, propertyID, flatNo string) error {
	return c.do(ctx, http.MethodDelete, propertyPath(propertyID)+"/tenants/"+url.PathEscape(flatNo), nil, nil)
}

func (c *Client) NotifyTenant(ctx context.Context, propertyID, flatNo, message string) (*models.Notification, error) {
	in := map[string]string{"message": message}
	var out models.Notification
	path := propertyPath(propertyID) + "/tenants/" + url.PathEscape(flatNo) + "/notifications"
	if err := c.do(ctx, http.MethodPost, path, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RaiseMaintenanceRequest(ctx context.Context, propertyID, flatNo, description string) (*models.MaintenanceRequest, error) {
	in := map[string]string{"flatNo": flatNo, "description": description}
	var out models.MaintenanceRequest
	if err := c.do(ctx, http.MethodPost, propertyPath(propertyID)+"/maintenance-requests", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateMaintenanceRequest(ctx context.Context, propertyID, requestID, status, remarks string) error {
	in := map[string]string{"status": status, "remarks": remarks}
	path := propertyPath(propertyID) + "/maintenance-requests/" + url.PathEscape(requestID)
	return c.do(ctx, http.MethodPatch, path, in, nil)
}

func (c *Client) DeleteMaintenanceRequest(ctx context.Context, propertyID, requestID string) error {
	path := propertyPath(propertyID) + "/maintenance-requests/" + url.PathEscape(requestID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

type paymentSuccessRequest struct {
	RentAmount float64 `json:"rentAmount"`
	SessionID  string  `json:"sessionId,omitempty"`
}

// MarkPaymentSuccess tells the API the tenant came back from checkout
// session sessionID.
func (c *Client) MarkPaymentSuccess(ctx context.Context, propertyID, flatNo string, rentAmount float64, sessionID string) (*models.PaymentEntry, error) {
	in := paymentSuccessRequest{RentAmount: rentAmount, SessionID: sessionID}
	var out struct {
		Message string               `json:"message"`
		Entry   *models.PaymentEntry `json:"entry"`
	}
	path := propertyPath(propertyID) + "/tenants/" + url.PathEscape(flatNo) + "/payment-success"
	if err := c.do(ctx, http.MethodPut, path, in, &out); err != nil {
		return nil, err
	}
	return out.Entry, nil
}

type CheckoutTenant struct {
	FlatNo     string  `json:"flatNo"`
	RentAmount float64 `json:"rentAmount"`
	Name       string  `json:"name"`
	Email      string  `json:"email,omitempty"`
}

type CheckoutRequest struct {
	Tenant       CheckoutTenant `json:"tenant"`
	PropertyID   string         `json:"propertyId"`
	PropertyName string         `json:"propertyName"`
}

type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (c *Client) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	var out CheckoutSession
	if err := c.do(ctx, http.MethodPost, "/api/payment/create-checkout-session", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
