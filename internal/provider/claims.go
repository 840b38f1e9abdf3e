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
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Scope claims appear under different names depending on the provider:
// "scope" as a space-separated string (RFC 8693), "scp" as an array
// (Azure AD), "permissions" as an array (Auth0 RBAC).
var scopeClaimNames = []string{"scope", "scp", "permissions"}

// parseClaims decodes the token's claim set. Signature verification is the
// provider edge's job; this core consumes the claim surface of a token the
// provider already vetted, the same way it trusts the profile endpoint.
func parseClaims(raw string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, &CallError{Message: "malformed access token: " + err.Error()}
	}
	return claims, nil
}

// tokenExpired reports whether the claim set carries an exp in the past.
// A token without exp is treated as live; the provider decides its policy.
func tokenExpired(claims jwt.MapClaims) bool {
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

// scopesFromClaims extracts token scopes, accepting a space-separated
// string or an array under any of the known claim names.
func scopesFromClaims(claims jwt.MapClaims) []string {
	for _, name := range scopeClaimNames {
		v, ok := claims[name]
		if !ok {
			continue
		}
		if scopes := stringList(v); len(scopes) > 0 {
			return scopes
		}
	}
	return nil
}

// rolesFromClaims extracts the application role claim, trying the
// configured claim name first, then the plain "roles" claim.
func rolesFromClaims(claims jwt.MapClaims, claimName string) []string {
	names := []string{"roles"}
	if claimName != "" {
		names = []string{claimName, "roles"}
	}
	for _, name := range names {
		if v, ok := claims[name]; ok {
			if roles := stringList(v); len(roles) > 0 {
				return roles
			}
		}
	}
	return nil
}

// stringList coerces a claim value into a string slice: either an array of
// strings or a single space-separated string.
func stringList(v any) []string {
	switch val := v.(type) {
	case string:
		return strings.Fields(val)
	case []string:
		return val
	case []any:
		var out []string
		for _, item := range val {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
