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

// Package identity resolves who the caller is and what roles they hold,
// uniformly across local dev sessions and the delegated identity provider.
// No method here lets an error escape: every public operation returns a
// result envelope and degrades to the unauthenticated state on failure.
package identity

import (
	"context"

	"github.com/rulegate/rulegate/internal/audit"
	"github.com/rulegate/rulegate/internal/principal"
	"github.com/rulegate/rulegate/internal/provider"
	"github.com/rulegate/rulegate/internal/session"
)

// LoginPath is where unauthenticated callers are redirected.
const LoginPath = "/login"

// LoginInput is the login request. Roles nil means "not supplied" and
// defaults; a supplied list that filters to nothing is a validation error.
type LoginInput struct {
	Username string   `json:"username" validate:"required"`
	Roles    []string `json:"roles,omitempty"`
	ReturnTo string   `json:"return_to,omitempty"`
}

// Result is the outcome envelope for login and logout.
type Result struct {
	Success    bool   `json:"success"`
	RedirectTo string `json:"redirect_to,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CheckResult is the outcome envelope for authentication checks. Logout
// instructs the caller to also clear any local auth side-channels.
type CheckResult struct {
	Authenticated bool   `json:"authenticated"`
	RedirectTo    string `json:"redirect_to,omitempty"`
	Logout        bool   `json:"logout,omitempty"`
}

// Authenticator is one identity-resolution strategy. Two implementations
// exist: local dev sessions and the delegated provider. Call sites are
// mode-agnostic; the strategy is fixed at construction.
type Authenticator interface {
	Login(ctx context.Context, in LoginInput) Result
	Logout(ctx context.Context) Result
	Check(ctx context.Context) CheckResult
	Identity(ctx context.Context) *principal.Principal
	Permissions(ctx context.Context) []principal.Role
}

// Resolver exposes the uniform identity surface. Mode selection happens
// once here, derived from the immutable provider configuration.
type Resolver struct {
	auth Authenticator
}

// NewResolver picks the strategy: delegated when the provider is enabled,
// local otherwise.
func NewResolver(
	prov provider.Provider,
	sessions *session.Store,
	activeRole *session.ActiveRole,
	auditLogger audit.Logger,
) *Resolver {
	if prov != nil && prov.IsEnabled() {
		return &Resolver{auth: newDelegatedAuthenticator(prov, auditLogger)}
	}
	return &Resolver{auth: newLocalAuthenticator(sessions, activeRole, auditLogger)}
}

// NewResolverWith wires an explicit strategy. Used by tests and by callers
// composing their own authenticator.
func NewResolverWith(auth Authenticator) *Resolver {
	return &Resolver{auth: auth}
}

// Login establishes a session (local) or starts the provider redirect flow
// (delegated).
func (r *Resolver) Login(ctx context.Context, in LoginInput) Result {
	return r.auth.Login(ctx, in)
}

// Logout ends the session or starts the provider logout redirect.
func (r *Resolver) Logout(ctx context.Context) Result {
	return r.auth.Logout(ctx)
}

// Check reports whether the caller is authenticated.
func (r *Resolver) Check(ctx context.Context) CheckResult {
	return r.auth.Check(ctx)
}

// Identity returns the current principal, or nil when unauthenticated.
func (r *Resolver) Identity(ctx context.Context) *principal.Principal {
	return r.auth.Identity(ctx)
}

// Permissions returns the current roles, or nil when unauthenticated or
// when the provider reports none.
func (r *Resolver) Permissions(ctx context.Context) []principal.Role {
	return r.auth.Permissions(ctx)
}
