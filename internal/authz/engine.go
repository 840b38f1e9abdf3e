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

package authz

import (
	"context"
	"fmt"

	"github.com/rulegate/rulegate/internal/audit"
	"github.com/rulegate/rulegate/internal/principal"
	"github.com/rulegate/rulegate/internal/session"
)

// IdentitySource supplies the current principal's roles. Implemented by
// identity.Resolver; nil/empty roles deny every action.
type IdentitySource interface {
	Permissions(ctx context.Context) []principal.Role
}

// ScopeSource supplies delegated-mode token scopes. Implemented by
// provider.Client.
type ScopeSource interface {
	IsEnabled() bool
	GetAccessTokenScopes(ctx context.Context) ([]string, error)
}

// SessionReader exposes the local session for the dev-mode scope bypass.
type SessionReader interface {
	Read(ctx context.Context) *session.Record
}

// Input is one authorization question: may the current principal perform
// Action on Resource. Params carries resource state relevant to overrides
// (currently the entity status); Origin is the request origin host, used
// only for the loopback dev bypass.
type Input struct {
	Resource string         `json:"resource"`
	Action   string         `json:"action"`
	Params   map[string]any `json:"params,omitempty"`
	Origin   string         `json:"-"`
}

// Decision is the answer. Ephemeral: recomputed on every call, never
// cached or persisted.
type Decision struct {
	Can    bool   `json:"can"`
	Reason string `json:"reason,omitempty"`
}

// Engine evaluates access decisions from the permission matrix, the
// resource override table, and (in delegated mode) token scopes.
type Engine struct {
	identity IdentitySource
	scopes   ScopeSource
	sessions SessionReader
	audit    audit.Logger
}

// NewEngine creates a decision engine. scopes and sessions may be nil in
// pure local deployments; audit may be nil.
func NewEngine(identity IdentitySource, scopes ScopeSource, sessions SessionReader, auditLogger audit.Logger) *Engine {
	return &Engine{
		identity: identity,
		scopes:   scopes,
		sessions: sessions,
		audit:    auditLogger,
	}
}

// Can decides whether the current principal may perform in.Action on
// in.Resource. It never returns an error and never panics: every internal
// failure, provider failures included, degrades to a plain deny.
func (e *Engine) Can(ctx context.Context, in Input) (decision Decision) {
	defer func() {
		if r := recover(); r != nil {
			decision = Decision{Can: false}
		}
	}()

	decision = e.evaluate(ctx, in)
	if !decision.Can && e.audit != nil {
		e.audit.Log(ctx, audit.Event{
			Type:     audit.TypeAccessDenied,
			Resource: in.Resource,
			Action:   in.Action,
			Metadata: map[string]any{audit.AttrReason: decision.Reason},
		})
	}
	return decision
}

func (e *Engine) evaluate(ctx context.Context, in Input) Decision {
	roles := e.identity.Permissions(ctx)
	if len(roles) == 0 {
		return Decision{Can: false}
	}

	// Admin bypasses overrides and scope checks entirely.
	for _, r := range roles {
		if r == principal.RolePlatformAdmin {
			return Decision{Can: true}
		}
	}

	grant := Merge(roles)
	if grant.HasWildcard() {
		return Decision{Can: true}
	}

	// Explicit deny wins over any grant from another role.
	if grant.Denies(in.Action) {
		return Decision{
			Can:    false,
			Reason: fmt.Sprintf("role cannot perform '%s'", in.Action),
		}
	}

	// Default deny: no role granted the action.
	if !grant.Allows(in.Action) {
		return Decision{Can: false}
	}

	if d := e.applyOverrides(roles, in); d != nil {
		return *d
	}

	if d := e.enforceScopes(ctx, in); d != nil {
		return *d
	}

	return Decision{Can: true}
}

// applyOverrides evaluates the resource-specific override table. Only
// reached after the base grant passed; returns nil when no override fires.
func (e *Engine) applyOverrides(roles []principal.Role, in Input) *Decision {
	if in.Resource == "approvals" {
		switch in.Action {
		case CapApprove, CapReject:
			if !hasRole(roles, principal.RoleRuleChecker) {
				return &Decision{
					Can:    false,
					Reason: fmt.Sprintf("'%s' on approvals requires the checker role", in.Action),
				}
			}
		case CapSubmit:
			if !hasRole(roles, principal.RoleRuleMaker) {
				return &Decision{
					Can:    false,
					Reason: "'submit' on approvals requires the maker role",
				}
			}
		}
	}

	// Approved entities are terminal: nobody below admin edits them.
	if in.Action == CapEdit {
		if status, ok := in.Params["status"].(string); ok && status == "APPROVED" {
			return &Decision{Can: false, Reason: "cannot edit approved entities"}
		}
	}

	return nil
}

// enforceScopes checks the delegated-mode token scope for the request.
// Skipped entirely when delegated mode is off, or when a valid local dev
// session exists on a loopback origin (local testing against delegated-mode
// UI without a real token). Fails closed on any scope-fetch error.
func (e *Engine) enforceScopes(ctx context.Context, in Input) *Decision {
	if e.scopes == nil || !e.scopes.IsEnabled() {
		return nil
	}

	if e.sessions != nil && isLoopbackOrigin(in.Origin) && e.sessions.Read(ctx) != nil {
		return nil
	}

	required := RequiredScope(in.Resource, in.Action)
	if required == "" {
		return nil
	}

	scopes, err := e.scopes.GetAccessTokenScopes(ctx)
	if err != nil {
		return &Decision{Can: false}
	}
	if !containsScope(scopes, required) {
		return &Decision{
			Can:    false,
			Reason: fmt.Sprintf("missing required scope '%s'", required),
		}
	}
	return nil
}

func hasRole(roles []principal.Role, want principal.Role) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}
