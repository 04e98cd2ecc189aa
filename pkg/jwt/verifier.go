package jwt

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/johnquangdev/meeting-agent/errors"
)

// Policy holds the authorization rules applied after signature checks
type Policy struct {
	// AllowedAppIDs restricts calling applications when non-empty
	AllowedAppIDs []string

	// RequiredRoles requires any one of these roles when non-empty
	RequiredRoles []string

	// RequiredScopes requires any one of these delegated scopes when non-empty
	RequiredScopes []string

	// RoleSatisfiesScope lets an app-only token pass the scope check with a
	// role instead: any required role, or any role at all when RequiredRoles
	// is empty
	RoleSatisfiesScope bool
}

// Check applies the policy to verified claims
func (p Policy) Check(c *Claims) error {
	if len(p.AllowedAppIDs) > 0 {
		appID := c.ClientAppID()
		if appID == "" || !slices.Contains(p.AllowedAppIDs, appID) {
			return apperrors.ErrForbidden(fmt.Sprintf("Application ID not allowed: %s", appID))
		}
	}

	hasRequiredRole := containsAny(c.Roles, p.RequiredRoles)
	if len(p.RequiredRoles) > 0 && !hasRequiredRole {
		return apperrors.ErrForbidden(fmt.Sprintf("Missing required role. Required: %s",
			strings.Join(p.RequiredRoles, ", ")))
	}

	if len(p.RequiredScopes) > 0 && !containsAny(c.Scopes(), p.RequiredScopes) {
		roleFallback := p.RoleSatisfiesScope &&
			((len(p.RequiredRoles) > 0 && hasRequiredRole) || (len(p.RequiredRoles) == 0 && len(c.Roles) > 0))
		if !roleFallback {
			return apperrors.ErrForbidden(fmt.Sprintf("Missing required scope. Required: %s",
				strings.Join(p.RequiredScopes, ", ")))
		}
	}
	return nil
}

func containsAny(have, want []string) bool {
	for _, w := range want {
		if slices.Contains(have, w) {
			return true
		}
	}
	return false
}

// VerifierConfig configures a Verifier
type VerifierConfig struct {
	Issuer    string
	Audiences []string
	Leeway    time.Duration
	Policy    Policy
}

// Verifier validates Entra ID bearer tokens against a tenant key set
type Verifier struct {
	keys *KeySet
	cfg  VerifierConfig
}

// NewVerifier creates a Verifier
func NewVerifier(keys *KeySet, cfg VerifierConfig) *Verifier {
	return &Verifier{keys: keys, cfg: cfg}
}

// Verify checks signature, issuer, audience and lifetime, then the policy.
// Authentication failures map to 401 errors and policy failures to 403.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, v.keys.Keyfunc(ctx),
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(v.cfg.Issuer),
		jwt.WithLeeway(v.cfg.Leeway),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired()
		}
		return nil, apperrors.ErrInvalidToken(err)
	}

	if !v.audienceAllowed(claims.Audience) {
		return nil, apperrors.ErrInvalidToken(fmt.Errorf("invalid audience %v", []string(claims.Audience)))
	}

	if err := v.cfg.Policy.Check(claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (v *Verifier) audienceAllowed(aud jwt.ClaimStrings) bool {
	for _, a := range aud {
		if slices.Contains(v.cfg.Audiences, a) {
			return true
		}
	}
	return false
}
