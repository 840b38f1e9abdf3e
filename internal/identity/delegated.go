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

	"github.com/rulegate/rulegate/internal/audit"
	"github.com/rulegate/rulegate/internal/principal"
	"github.com/rulegate/rulegate/internal/provider"
)

// delegatedAuthenticator resolves identity through the delegated provider.
// Every provider failure is caught here and degrades to the safest state;
// nothing propagates.
type delegatedAuthenticator struct {
	prov  provider.Provider
	audit audit.Logger
}

func newDelegatedAuthenticator(prov provider.Provider, auditLogger audit.Logger) *delegatedAuthenticator {
	return &delegatedAuthenticator{prov: prov, audit: auditLogger}
}

// Login starts the provider redirect flow. Failures to initiate surface as
// a failed result with the underlying message.
func (a *delegatedAuthenticator) Login(ctx context.Context, in LoginInput) Result {
	target, err := a.prov.LoginWithRedirect(ctx, in.ReturnTo)
	if err != nil {
		if a.audit != nil {
			a.audit.Log(ctx, audit.Event{
				Type: audit.TypeLoginFailed,
				Metadata: map[string]any{
					audit.AttrMode:   "delegated",
					audit.AttrReason: err.Error(),
				},
			})
		}
		return Result{Error: err.Error()}
	}
	return Result{Success: true, RedirectTo: target}
}

func (a *delegatedAuthenticator) Logout(ctx context.Context) Result {
	target, err := a.prov.Logout(ctx)
	if err != nil {
		return Result{Error: err.Error()}
	}
	if a.audit != nil {
		a.audit.Log(ctx, audit.Event{
			Type:     audit.TypeLogout,
			Metadata: map[string]any{audit.AttrMode: "delegated"},
		})
	}
	return Result{Success: true, RedirectTo: target}
}

// Check delegates to the provider. Provider errors degrade to
// unauthenticated with no Logout flag: there is no local state to clear.
func (a *delegatedAuthenticator) Check(ctx context.Context) CheckResult {
	ok, err := a.prov.IsAuthenticated(ctx)
	if err != nil || !ok {
		return CheckResult{Authenticated: false, RedirectTo: LoginPath, Logout: false}
	}
	return CheckResult{Authenticated: true}
}

// Identity maps the provider profile to a Principal using per-field
// fallback chains, filtering the role claim through the closed role set.
func (a *delegatedAuthenticator) Identity(ctx context.Context) *principal.Principal {
	profile, err := a.prov.GetUserProfile(ctx)
	if err != nil || profile == nil {
		return nil
	}

	username := firstNonEmpty(
		profile.Nickname,
		profile.PreferredUsername,
		emailLocalPart(profile.Email),
		"user",
	)
	display := firstNonEmpty(profile.Name, profile.Nickname, "User")

	roles := principal.NormalizeRoles(profile.Roles)
	if len(roles) == 0 {
		roles = []principal.Role{principal.RoleDefault}
	}

	return &principal.Principal{
		ID:          profile.Subject,
		Username:    username,
		DisplayName: display,
		Roles:       roles,
		Email:       profile.Email,
	}
}

// Permissions returns the filtered provider role claim, nil when the claim
// is empty or the call fails.
func (a *delegatedAuthenticator) Permissions(ctx context.Context) []principal.Role {
	raw, err := a.prov.GetAppRoles(ctx)
	if err != nil || len(raw) == 0 {
		return nil
	}
	roles := principal.NormalizeRoles(raw)
	if len(roles) == 0 {
		return nil
	}
	return roles
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func emailLocalPart(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return ""
}
