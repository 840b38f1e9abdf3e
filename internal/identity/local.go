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

package identity

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/rulegate/rulegate/internal/audit"
	"github.com/rulegate/rulegate/internal/principal"
	"github.com/rulegate/rulegate/internal/session"
)

// Validation messages surfaced to the caller verbatim.
const (
	msgUsernameRequired = "Username is required"
	msgNoValidRole      = "At least one valid role is required"
)

// localAuthenticator resolves identity from the local session store.
// Development mode only: there is no credential check here by design.
type localAuthenticator struct {
	sessions   *session.Store
	activeRole *session.ActiveRole
	validate   *validator.Validate
	audit      audit.Logger
}

func newLocalAuthenticator(sessions *session.Store, activeRole *session.ActiveRole, auditLogger audit.Logger) *localAuthenticator {
	return &localAuthenticator{
		sessions:   sessions,
		activeRole: activeRole,
		validate:   validator.New(),
		audit:      auditLogger,
	}
}

// Login validates the input, builds a principal, and creates the session.
// Roles omitted entirely default to the baseline role; roles supplied but
// all invalid fail validation rather than silently defaulting.
func (a *localAuthenticator) Login(ctx context.Context, in LoginInput) Result {
	in.Username = strings.TrimSpace(in.Username)
	if err := a.validate.Struct(in); err != nil {
		a.auditFailure(ctx, in.Username, "invalid_username")
		return Result{Error: msgUsernameRequired}
	}

	var roles []principal.Role
	if len(in.Roles) == 0 {
		roles = []principal.Role{principal.RoleDefault}
	} else {
		roles = principal.NormalizeRoles(in.Roles)
		if len(roles) == 0 {
			a.auditFailure(ctx, in.Username, "no_valid_role")
			return Result{Error: msgNoValidRole}
		}
	}

	p := principal.Principal{
		ID:          uuid.NewString(),
		Username:    in.Username,
		DisplayName: in.Username,
		Roles:       roles,
		Email:       in.Username + "@rulegate.dev",
	}

	if err := a.sessions.Create(ctx, p); err != nil {
		return Result{Error: err.Error()}
	}
	if err := a.activeRole.Set(ctx, roles[0]); err != nil {
		// The session is live; a missing preference is recoverable.
		a.activeRole.Clear(ctx)
	}

	if a.audit != nil {
		a.audit.Log(ctx, audit.Event{
			Type:    audit.TypeLoginSuccess,
			ActorID: p.ID,
			Metadata: map[string]any{
				audit.AttrMode:  "local",
				audit.AttrRoles: roles,
			},
		})
	}

	redirect := in.ReturnTo
	if redirect == "" {
		redirect = "/"
	}
	return Result{Success: true, RedirectTo: redirect}
}

func (a *localAuthenticator) Logout(ctx context.Context) Result {
	rec := a.sessions.Read(ctx)
	a.sessions.Clear(ctx)
	a.activeRole.Clear(ctx)

	if a.audit != nil && rec != nil {
		a.audit.Log(ctx, audit.Event{
			Type:     audit.TypeLogout,
			ActorID:  rec.User.ID,
			Metadata: map[string]any{audit.AttrMode: "local"},
		})
	}
	return Result{Success: true, RedirectTo: LoginPath}
}

// Check reports authenticated iff a valid session exists. The Logout flag
// tells callers to clear their own auth side-channels too.
func (a *localAuthenticator) Check(ctx context.Context) CheckResult {
	if a.sessions.Read(ctx) != nil {
		return CheckResult{Authenticated: true}
	}
	return CheckResult{Authenticated: false, RedirectTo: LoginPath, Logout: true}
}

func (a *localAuthenticator) Identity(ctx context.Context) *principal.Principal {
	rec := a.sessions.Read(ctx)
	if rec == nil {
		return nil
	}
	return &rec.User
}

func (a *localAuthenticator) Permissions(ctx context.Context) []principal.Role {
	rec := a.sessions.Read(ctx)
	if rec == nil {
		return nil
	}
	return rec.User.Roles
}

func (a *localAuthenticator) auditFailure(ctx context.Context, username, reason string) {
	if a.audit == nil {
		return
	}
	a.audit.Log(ctx, audit.Event{
		Type:     audit.TypeLoginFailed,
		Resource: username,
		Metadata: map[string]any{
			audit.AttrMode:   "local",
			audit.AttrReason: reason,
		},
	})
}
