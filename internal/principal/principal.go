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

package principal

import "strings"

// Role is one label from the fixed, closed role set. Anything outside this
// set is discarded during normalization; role strings are compared in their
// canonical uppercase form.
type Role string

const (
	// RolePlatformAdmin carries the wildcard capability and bypasses all
	// resource overrides and scope checks.
	RolePlatformAdmin Role = "PLATFORM_ADMIN"

	// RoleRuleMaker proposes rule changes (maker side of maker-checker).
	RoleRuleMaker Role = "RULE_MAKER"

	// RoleRuleChecker approves or rejects proposed changes (checker side).
	RoleRuleChecker Role = "RULE_CHECKER"

	// RoleRuleViewer has read-only access to rule resources.
	RoleRuleViewer Role = "RULE_VIEWER"

	// RoleFraudAnalyst works fraud cases and drafts rules.
	RoleFraudAnalyst Role = "FRAUD_ANALYST"

	// RoleFraudSupervisor reviews analyst work and decides escalations.
	RoleFraudSupervisor Role = "FRAUD_SUPERVISOR"
)

// RoleDefault is assigned when a dev-mode login omits roles entirely, and
// when the delegated provider returns a profile with no usable role claim.
const RoleDefault = RoleRuleMaker

var knownRoles = map[Role]struct{}{
	RolePlatformAdmin:   {},
	RoleRuleMaker:       {},
	RoleRuleChecker:     {},
	RoleRuleViewer:      {},
	RoleFraudAnalyst:    {},
	RoleFraudSupervisor: {},
}

// Valid reports whether r belongs to the closed role set.
func (r Role) Valid() bool {
	_, ok := knownRoles[r]
	return ok
}

// AllRoles returns the closed role set in a stable order.
func AllRoles() []Role {
	return []Role{
		RolePlatformAdmin,
		RoleRuleMaker,
		RoleRuleChecker,
		RoleRuleViewer,
		RoleFraudAnalyst,
		RoleFraudSupervisor,
	}
}

// Principal is the authenticated identity making requests. It is built once
// at login and immutable for the lifetime of its session.
type Principal struct {
	ID          string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Roles       []Role `json:"roles"`
	Email       string `json:"email"`
}

// HasRole reports whether the principal holds the given role.
func (p *Principal) HasRole(role Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// NormalizeRoles uppercases the supplied values and filters them to the
// closed role set, preserving input order and dropping duplicates. Unknown
// values are discarded silently; the caller decides whether an empty result
// is an error (roles were supplied) or a default case (roles were omitted).
func NormalizeRoles(raw []string) []Role {
	var out []Role
	seen := make(map[Role]struct{}, len(raw))
	for _, v := range raw {
		role := Role(strings.ToUpper(strings.TrimSpace(v)))
		if !role.Valid() {
			continue
		}
		if _, dup := seen[role]; dup {
			continue
		}
		seen[role] = struct{}{}
		out = append(out, role)
	}
	return out
}
