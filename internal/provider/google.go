package provider

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/masahif/seodash/internal/config"
)

// Scopes requested for the refresh token
var googleScopes = []string{
	"https://www.googleapis.com/auth/business.manage",
	"https://www.googleapis.com/auth/webmasters.readonly",
}

// GoogleConfigured reports whether OAuth credentials are present
func GoogleConfigured(cfg config.GoogleConfig) bool {
	return cfg.ClientID != "" && cfg.ClientSecret != "" && cfg.RefreshToken != ""
}

// NewGoogleHTTPClient returns an HTTP client that exchanges the refresh token
// for access tokens and attaches them to every request.
// ctx governs token refreshes and should outlive the client.
func NewGoogleHTTPClient(ctx context.Context, cfg config.GoogleConfig) *http.Client {
	oc := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: googleScopes,
	}
	return oc.Client(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
}
