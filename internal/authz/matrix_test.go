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
	"testing"

	"github.com/rulegate/rulegate/internal/principal"
)

func TestMatrix_ExhaustiveOverRoleSet(t *testing.T) {
	for _, role := range principal.AllRoles() {
		if _, ok := matrix[role]; !ok {
			t.Errorf("matrix has no policy for %s", role)
		}
	}
	if len(matrix) != len(principal.AllRoles()) {
		t.Errorf("matrix has %d entries, role set has %d", len(matrix), len(principal.AllRoles()))
	}
}

func TestMerge_UnionsAreCommutative(t *testing.T) {
	a := Merge([]principal.Role{principal.RoleRuleMaker, principal.RoleRuleChecker})
	b := Merge([]principal.Role{principal.RoleRuleChecker, principal.RoleRuleMaker})

	for _, action := range []string{CapCreate, CapApprove, CapList, CapDelete} {
		if a.Allows(action) != b.Allows(action) || a.Denies(action) != b.Denies(action) {
			t.Errorf("merge not commutative for %q", action)
		}
	}
}

// TestPurpose: Validates the explicit-deny-wins invariant of the merged
// grant. A maker+checker principal holds create via maker and approve via
// checker, but each role's cannot-set blocks the other's grant.
// Scope: Unit Test
// Expected: both create and approve appear in can AND cannot after merge.
func TestMerge_ExplicitDenySurvivesMerge(t *testing.T) {
	g := Merge([]principal.Role{principal.RoleRuleMaker, principal.RoleRuleChecker})

	if !g.Allows(CapCreate) || !g.Denies(CapCreate) {
		t.Error("create should be granted by maker and denied by checker")
	}
	if !g.Allows(CapApprove) || !g.Denies(CapApprove) {
		t.Error("approve should be granted by checker and denied by maker")
	}
}

func TestMerge_Wildcard(t *testing.T) {
	if !Merge([]principal.Role{principal.RolePlatformAdmin}).HasWildcard() {
		t.Error("platform admin must carry the wildcard")
	}
	if Merge([]principal.Role{principal.RoleRuleViewer}).HasWildcard() {
		t.Error("viewer must not carry the wildcard")
	}
	if Merge(nil).HasWildcard() || Merge(nil).Allows(CapList) {
		t.Error("empty merge must grant nothing")
	}
}

func TestPolicyFor_UnknownRoleDeniesByDefault(t *testing.T) {
	p := PolicyFor(principal.Role("BOGUS"))
	if len(p.Can) != 0 || len(p.Cannot) != 0 {
		t.Error("unknown role must map to the empty policy")
	}
}
