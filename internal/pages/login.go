package pages

import (
	"context"
	"net/http"
	"strings"

	"github.com/rentcare/rentcare-gobackend/internal/client"
	"github.com/rentcare/rentcare-gobackend/internal/models"
)

type LoginState int

const (
	LoginIdle LoginState = iota
	LoginSubmitting
	LoginSuccessOwner
	LoginSuccessTenant
	LoginError
)

func (s LoginState) String() string {
	switch s {
	case LoginIdle:
		return "idle"
	case LoginSubmitting:
		return "submitting"
	case LoginSuccessOwner:
		return "success-owner"
	case LoginSuccessTenant:
		return "success-tenant"
	case LoginError:
		return "error"
	}
	return "unknown"
}

const (
	msgMissingCredentials = "Please enter both email/username and password."
	msgInvalidCredentials = "Invalid email/username or password."
	msgAPINotConfigured   = "Error: API URL is not configured."
)

type LoginPage struct {
	api *client.Client

	State    LoginState
	Message  string
	Redirect string
	Result   *client.LoginResult
}

// NewLoginPage returns the login page. A nil api means the API base URL is
// not configured.
func NewLoginPage(api *client.Client) *LoginPage {
	return &LoginPage{api: api}
}

// Submit runs one login attempt and returns the state it ends in. Missing
// fields are rejected without calling the API.
func (p *LoginPage) Submit(ctx context.Context, identifier, password string) LoginState {
	p.State = LoginSubmitting
	p.Message = ""
	p.Redirect = ""
	p.Result = nil

	if strings.TrimSpace(identifier) == "" || password == "" {
		return p.fail(msgMissingCredentials)
	}
	if p.api == nil {
		return p.fail(msgAPINotConfigured)
	}

	result, err := p.api.Login(ctx, identifier, password)
	if err != nil {
		if client.StatusOf(err) == http.StatusUnauthorized {
			return p.fail(msgInvalidCredentials)
		}
		return p.fail("Login failed: " + errorText(err))
	}

	p.Result = result
	switch result.Role {
	case models.RoleOwner:
		p.State = LoginSuccessOwner
		p.Message = "Welcome, Owner!"
		p.Redirect = models.OwnerDashboardPath(result.OwnerID)
	case models.RoleTenant:
		p.State = LoginSuccessTenant
		p.Message = "Welcome, Tenant!"
		p.Redirect = models.TenantDashboardPath(result.PropertyID, result.FlatNo)
	default:
		return p.fail("Login failed: unknown role " + result.Role)
	}
	return p.State
}

// Reset returns the form to idle, as when the user edits a field after an
// error.
func (p *LoginPage) Reset() {
	p.State = LoginIdle
	p.Message = ""
}

func (p *LoginPage) fail(msg string) LoginState {
	p.State = LoginError
	p.Message = msg
	return p.State
}
