package jwt

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the Entra ID access token claims the service relies on
type Claims struct {
	AppID    string   `json:"appid,omitempty"`
	AZP      string   `json:"azp,omitempty"`
	TenantID string   `json:"tid,omitempty"`
	Scope    string   `json:"scp,omitempty"`
	Roles    []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Scopes splits the space separated scp claim
func (c *Claims) Scopes() []string {
	return strings.Fields(c.Scope)
}

// ClientAppID returns the calling application id from appid (v1 tokens)
// or azp (v2 tokens)
func (c *Claims) ClientAppID() string {
	if c.AppID != "" {
		return c.AppID
	}
	return c.AZP
}
