package oauth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/johnquangdev/meeting-agent/pkg/config"
)

// GraphScope requests every application permission granted to the app
const GraphScope = "https://graph.microsoft.com/.default"

// TokenURL returns the Entra ID v2 token endpoint of a tenant
func TokenURL(tenantID string) string {
	return fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", tenantID)
}

// NewGraphCredentials builds the client credentials flow for Microsoft Graph
func NewGraphCredentials(cfg config.GraphConfig) *clientcredentials.Config {
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = TokenURL(cfg.TenantID)
	}
	return &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
		Scopes:       []string{GraphScope},
		AuthStyle:    oauth2.AuthStyleInParams,
	}
}

// NewGraphHTTPClient returns an HTTP client that attaches a cached, auto
// refreshed app-only bearer token to every request
func NewGraphHTTPClient(ctx context.Context, cfg config.GraphConfig, timeout time.Duration) *http.Client {
	client := NewGraphCredentials(cfg).Client(ctx)
	client.Timeout = timeout
	return client
}
