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

// Package provider consumes the externally observable capability surface of
// the delegated identity provider. The provider's internal protocol (token
// exchange, redirect handling) is out of scope; this package only builds
// redirect URLs, reads the bearer token the transport layer captured, and
// fetches the profile endpoint.
package provider

import (
	"context"
	"fmt"
)

// Provider is the capability surface this core consumes in delegated mode.
type Provider interface {
	// IsEnabled reports whether delegated mode is active. Pure function
	// of static configuration.
	IsEnabled() bool

	// LoginWithRedirect returns the provider authorize URL to redirect
	// the caller to. returnTo is carried through the flow when set.
	LoginWithRedirect(ctx context.Context, returnTo string) (string, error)

	// Logout returns the provider logout redirect URL.
	Logout(ctx context.Context) (string, error)

	// IsAuthenticated reports whether the current request carries a live
	// provider token.
	IsAuthenticated(ctx context.Context) (bool, error)

	// GetUserProfile fetches the provider profile for the current token,
	// or nil when there is none.
	GetUserProfile(ctx context.Context) (*Profile, error)

	// GetAppRoles returns the raw role claim values for the current token.
	GetAppRoles(ctx context.Context) ([]string, error)

	// GetAccessTokenScopes returns the scopes granted to the current token.
	GetAccessTokenScopes(ctx context.Context) ([]string, error)
}

// Profile is the provider's view of the signed-in user. Field availability
// varies by provider; consumers apply fallback chains.
type Profile struct {
	Subject           string   `json:"sub"`
	Email             string   `json:"email"`
	Name              string   `json:"name"`
	Nickname          string   `json:"nickname"`
	PreferredUsername string   `json:"preferred_username"`
	Roles             []string `json:"roles"`
}

// CallError is the typed variant produced at the provider HTTP boundary.
// Status is the HTTP status of the failed call, zero when the failure was
// not an HTTP response (network error, bad token).
type CallError struct {
	Status  int
	Message string
}

func (e *CallError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("provider call failed: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("provider call failed: %s", e.Message)
}

// HTTPStatus returns the originating HTTP status, zero when unknown.
func (e *CallError) HTTPStatus() int { return e.Status }
