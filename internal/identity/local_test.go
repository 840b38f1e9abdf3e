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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulegate/rulegate/internal/principal"
	"github.com/rulegate/rulegate/internal/session"
)

func newLocalResolver(t *testing.T) (*Resolver, *session.ActiveRole) {
	t.Helper()
	storage := session.NewMemoryStorage()
	sessions := session.NewStore(storage, session.DefaultLifetime)
	activeRole := session.NewActiveRole(storage)
	return NewResolver(nil, sessions, activeRole, nil), activeRole
}

func TestLocalLogin_Validation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		input   LoginInput
		wantErr string
	}{
		{"empty input", LoginInput{}, "Username is required"},
		{"whitespace username", LoginInput{Username: "   "}, "Username is required"},
		{"all roles invalid", LoginInput{Username: "tom", Roles: []string{"INVALID"}}, "At least one valid role is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newLocalResolver(t)
			res := r.Login(ctx, tt.input)
			assert.False(t, res.Success)
			assert.Equal(t, tt.wantErr, res.Error)
			assert.False(t, r.Check(ctx).Authenticated, "failed login must not create a session")
		})
	}
}

func TestLocalLogin_NormalizesLowercaseRoles(t *testing.T) {
	ctx := context.Background()
	r, _ := newLocalResolver(t)

	res := r.Login(ctx, LoginInput{Username: "alice", Roles: []string{"rule_maker"}})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "/", res.RedirectTo)

	p := r.Identity(ctx)
	require.NotNil(t, p)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, []principal.Role{principal.RoleRuleMaker}, p.Roles)
	assert.NotEmpty(t, p.ID)
}

func TestLocalLogin_OmittedRolesDefault(t *testing.T) {
	ctx := context.Background()
	r, _ := newLocalResolver(t)

	res := r.Login(ctx, LoginInput{Username: "bob"})
	require.True(t, res.Success)

	roles := r.Permissions(ctx)
	assert.Equal(t, []principal.Role{principal.RoleDefault}, roles)
}

func TestLocalLogin_SetsActiveRoleToFirstRole(t *testing.T) {
	ctx := context.Background()
	r, activeRole := newLocalResolver(t)

	res := r.Login(ctx, LoginInput{Username: "carol", Roles: []string{"RULE_CHECKER", "RULE_VIEWER"}})
	require.True(t, res.Success)

	role, ok := activeRole.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, principal.RoleRuleChecker, role)
}

func TestLocalLogin_InvalidRolesFilteredFromMix(t *testing.T) {
	ctx := context.Background()
	r, _ := newLocalResolver(t)

	res := r.Login(ctx, LoginInput{Username: "dave", Roles: []string{"BOGUS", "fraud_analyst"}})
	require.True(t, res.Success)
	assert.Equal(t, []principal.Role{principal.RoleFraudAnalyst}, r.Permissions(ctx))
}

func TestLocalLogin_ReturnToHonored(t *testing.T) {
	ctx := context.Background()
	r, _ := newLocalResolver(t)

	res := r.Login(ctx, LoginInput{Username: "erin", ReturnTo: "/rules/42"})
	require.True(t, res.Success)
	assert.Equal(t, "/rules/42", res.RedirectTo)
}

func TestLocalCheck_Unauthenticated(t *testing.T) {
	r, _ := newLocalResolver(t)
	res := r.Check(context.Background())
	assert.False(t, res.Authenticated)
	assert.Equal(t, LoginPath, res.RedirectTo)
	assert.True(t, res.Logout, "callers must clear their own auth side-channels")
}

func TestLocalLogout_ClearsSessionAndPreference(t *testing.T) {
	ctx := context.Background()
	r, activeRole := newLocalResolver(t)

	require.True(t, r.Login(ctx, LoginInput{Username: "frank"}).Success)
	require.True(t, r.Check(ctx).Authenticated)

	res := r.Logout(ctx)
	assert.True(t, res.Success)
	assert.Equal(t, LoginPath, res.RedirectTo)
	assert.False(t, r.Check(ctx).Authenticated)
	assert.Nil(t, r.Identity(ctx))
	assert.Nil(t, r.Permissions(ctx))
	_, ok := activeRole.Get(ctx)
	assert.False(t, ok)

	// Logout without a session is still a success.
	assert.True(t, r.Logout(ctx).Success)
}
