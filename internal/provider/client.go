// Copyright 2026 The RuleGate Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Config is the static delegated-provider configuration. Immutable for the
// process lifetime; mode selection derives from it alone.
type Config struct {
	// Domain is the provider tenant domain, e.g. "rulegate.eu.auth0.com".
	Domain string

	// ClientID identifies this application at the provider.
	ClientID string

	// Audience is the API identifier requested for access tokens.
	Audience string

	// RolesClaim is the namespaced claim carrying application roles,
	// e.g. "https://rulegate.io/roles". Falls back to "roles".
	RolesClaim string

	// CallbackURL is where the provider redirects after login.
	CallbackURL string

	// ForceLocal pins the resolver to local mode even when Domain and
	// ClientID are configured.
	ForceLocal bool

	// AutomationMode disables delegated mode for E2E/automation runs.
	// Injected through configuration, never mutated as hidden state.
	AutomationMode bool
}

// Client is the HTTP-backed Provider implementation.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient creates a provider client. httpClient may be nil.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{cfg: cfg, http: httpClient}
}

// IsEnabled reports whether delegated mode is active: a provider domain and
// client id are configured and no local-mode override is set.
func (c *Client) IsEnabled() bool {
	return c.cfg.Domain != "" && c.cfg.ClientID != "" && !c.cfg.ForceLocal && !c.cfg.AutomationMode
}

// LoginWithRedirect builds the authorize URL for the provider login flow.
func (c *Client) LoginWithRedirect(_ context.Context, returnTo string) (string, error) {
	if !c.IsEnabled() {
		return "", &CallError{Message: "delegated provider is not configured"}
	}

	q := url.Values{}
	q.Set("client_id", c.cfg.ClientID)
	q.Set("response_type", "code")
	q.Set("scope", "openid profile email")
	if c.cfg.Audience != "" {
		q.Set("audience", c.cfg.Audience)
	}
	if c.cfg.CallbackURL != "" {
		q.Set("redirect_uri", c.cfg.CallbackURL)
	}
	if returnTo != "" {
		q.Set("state", returnTo)
	}
	return fmt.Sprintf("https://%s/authorize?%s", c.cfg.Domain, q.Encode()), nil
}

// Logout builds the provider logout redirect URL.
func (c *Client) Logout(_ context.Context) (string, error) {
	if !c.IsEnabled() {
		return "", &CallError{Message: "delegated provider is not configured"}
	}
	q := url.Values{}
	q.Set("client_id", c.cfg.ClientID)
	return fmt.Sprintf("https://%s/v2/logout?%s", c.cfg.Domain, q.Encode()), nil
}

// IsAuthenticated reports whether the request context carries a live token.
func (c *Client) IsAuthenticated(ctx context.Context) (bool, error) {
	raw := TokenFromContext(ctx)
	if raw == "" {
		return false, nil
	}
	claims, err := parseClaims(raw)
	if err != nil {
		return false, err
	}
	return !tokenExpired(claims), nil
}

// GetUserProfile fetches the provider profile for the current token.
// Returns nil with no error when no token is present.
func (c *Client) GetUserProfile(ctx context.Context) (*Profile, error) {
	raw := TokenFromContext(ctx)
	if raw == "" {
		return nil, nil
	}

	endpoint := fmt.Sprintf("https://%s/userinfo", c.cfg.Domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &CallError{Message: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+raw)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &CallError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &CallError{Status: resp.StatusCode, Message: "userinfo request rejected"}
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, &CallError{Message: "decode userinfo response: " + err.Error()}
	}

	// Role claims may ride on the access token rather than the profile.
	if len(profile.Roles) == 0 {
		if claims, err := parseClaims(raw); err == nil {
			profile.Roles = rolesFromClaims(claims, c.cfg.RolesClaim)
		}
	}
	return &profile, nil
}

// GetAppRoles returns the raw role claim values from the current token.
func (c *Client) GetAppRoles(ctx context.Context) ([]string, error) {
	raw := TokenFromContext(ctx)
	if raw == "" {
		return nil, nil
	}
	claims, err := parseClaims(raw)
	if err != nil {
		return nil, err
	}
	return rolesFromClaims(claims, c.cfg.RolesClaim), nil
}

// GetAccessTokenScopes returns the scopes granted to the current token.
func (c *Client) GetAccessTokenScopes(ctx context.Context) ([]string, error) {
	raw := TokenFromContext(ctx)
	if raw == "" {
		return nil, nil
	}
	claims, err := parseClaims(raw)
	if err != nil {
		return nil, err
	}
	return scopesFromClaims(claims), nil
}
