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

import "github.com/rulegate/rulegate/internal/principal"

// Capability names. Capabilities are action classes, not REST verbs; the
// same capability can gate several endpoints.
const (
	CapWildcard = "*"
	CapList     = "list"
	CapShow     = "show"
	CapCreate   = "create"
	CapEdit     = "edit"
	CapDelete   = "delete"
	CapSubmit   = "submit"
	CapApprove  = "approve"
	CapReject   = "reject"
	CapAssign   = "assign"
	CapExport   = "export"
)

// Policy pairs the capabilities a role grants with the ones it explicitly
// denies. Both sets feed Merge; an explicit deny from any held role beats a
// grant from another (wildcard excepted).
type Policy struct {
	Can    []string
	Cannot []string
}

// matrix is the static role→policy table, exhaustive over the closed role
// set. Never mutated at runtime. The maker-checker split is encoded here:
// makers cannot approve what they submitted, checkers cannot author what
// they approve.
var matrix = map[principal.Role]Policy{
	principal.RolePlatformAdmin: {
		Can: []string{CapWildcard},
	},
	principal.RoleRuleMaker: {
		Can:    []string{CapList, CapShow, CapCreate, CapEdit, CapDelete, CapSubmit, CapExport},
		Cannot: []string{CapApprove, CapReject},
	},
	principal.RoleRuleChecker: {
		Can:    []string{CapList, CapShow, CapApprove, CapReject, CapExport},
		Cannot: []string{CapCreate, CapEdit, CapDelete, CapSubmit},
	},
	principal.RoleRuleViewer: {
		Can:    []string{CapList, CapShow},
		Cannot: []string{CapCreate, CapEdit, CapDelete, CapSubmit, CapApprove, CapReject},
	},
	principal.RoleFraudAnalyst: {
		Can:    []string{CapList, CapShow, CapCreate, CapEdit, CapSubmit, CapAssign},
		Cannot: []string{CapApprove, CapReject},
	},
	principal.RoleFraudSupervisor: {
		Can:    []string{CapList, CapShow, CapApprove, CapReject, CapAssign, CapExport},
		Cannot: []string{CapCreate, CapEdit, CapDelete},
	},
}

// PolicyFor returns the static policy for a role. Unknown roles get an
// empty policy, which denies everything by default.
func PolicyFor(role principal.Role) Policy {
	return matrix[role]
}

// Grant is the merged capability view across a principal's roles.
type Grant struct {
	can    map[string]struct{}
	cannot map[string]struct{}
}

// Merge unions the can and cannot sets across the supplied roles. Unions
// are commutative; there is no role-priority ordering.
func Merge(roles []principal.Role) Grant {
	g := Grant{
		can:    make(map[string]struct{}),
		cannot: make(map[string]struct{}),
	}
	for _, role := range roles {
		policy := matrix[role]
		for _, c := range policy.Can {
			g.can[c] = struct{}{}
		}
		for _, c := range policy.Cannot {
			g.cannot[c] = struct{}{}
		}
	}
	return g
}

// HasWildcard reports whether the merged can-set contains the wildcard
// capability. Checked before the explicit-deny rule: the wildcard
// short-circuits evaluation entirely.
func (g Grant) HasWildcard() bool {
	_, ok := g.can[CapWildcard]
	return ok
}

// Allows reports whether the action is in the merged can-set.
func (g Grant) Allows(action string) bool {
	_, ok := g.can[action]
	return ok
}

// Denies reports whether the action is in the merged cannot-set.
func (g Grant) Denies(action string) bool {
	_, ok := g.cannot[action]
	return ok
}
