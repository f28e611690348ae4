package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rentcare/rentcare-gobackend/internal/models"
	"github.com/rentcare/rentcare-gobackend/internal/repositories"
)

// Claims identify who a token was issued to. Owners carry OwnerID, tenants
// carry PropertyID and FlatNo. RegisteredClaims.ID is the session id.
type Claims struct {
	Role       string `json:"role"`
	OwnerID    string `json:"ownerId,omitempty"`
	PropertyID string `json:"propertyId,omitempty"`
	FlatNo     string `json:"flatNo,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) IsOwner() bool {
	return c.Role == models.RoleOwner && c.OwnerID != ""
}

func (c *Claims) IsTenantOf(propertyID, flatNo string) bool {
	return c.Role == models.RoleTenant && c.PropertyID == propertyID && c.FlatNo == flatNo
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

type AuthService struct {
	users      repositories.UserStore
	properties repositories.PropertyStore
	sessions   repositories.SessionStore
	secret     []byte
	ttl        time.Duration
}

func NewAuthService(users repositories.UserStore, properties repositories.PropertyStore, sessions repositories.SessionStore, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		users:      users,
		properties: properties,
		sessions:   sessions,
		secret:     []byte(secret),
		ttl:        ttl,
	}
}

// Login checks owners first, then every tenant of every property. The first
// account whose password matches wins.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	owners, err := s.users.FindOwners(ctx, identifier)
	if err != nil {
		return nil, err
	}
	for _, owner := range owners {
		if CheckPassword(owner.PasswordHash, password) {
			claims := &Claims{Role: models.RoleOwner, OwnerID: owner.ID}
			return s.issue(ctx, claims, owner.ID, models.OwnerDashboardPath(owner.ID))
		}
	}

	tenants, err := s.properties.FindTenantLogins(ctx, identifier)
	if err != nil {
		return nil, err
	}
	for _, match := range tenants {
		if CheckPassword(match.Tenant.PasswordHash, password) {
			claims := &Claims{Role: models.RoleTenant, PropertyID: match.PropertyID, FlatNo: match.Tenant.FlatNo}
			subject := match.PropertyID + "/" + match.Tenant.FlatNo
			return s.issue(ctx, claims, subject, models.TenantDashboardPath(match.PropertyID, match.Tenant.FlatNo))
		}
	}

	log.Printf("Failed login for %q", identifier)
	return nil, ErrInvalidCredentials
}

func (s *AuthService) issue(ctx context.Context, claims *Claims, subject, redirect string) (*LoginResult, error) {
	now := time.Now()
	expires := now.Add(s.ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	if err := s.sessions.Create(ctx, claims.ID, s.ttl); err != nil {
		return nil, err
	}

	log.Printf("Login successful: role=%s subject=%s", claims.Role, subject)
	return &LoginResult{
		Token:      token,
		Role:       claims.Role,
		OwnerID:    claims.OwnerID,
		PropertyID: claims.PropertyID,
		FlatNo:     claims.FlatNo,
		Redirect:   redirect,
		ExpiresAt:  expires,
	}, nil
}

// Verify parses the token and checks that its session is still live.
func (s *AuthService) Verify(ctx context.Context, token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	active, err := s.sessions.Active(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) Logout(ctx context.Context, claims *Claims) error {
	return s.sessions.Revoke(ctx, claims.ID)
}
