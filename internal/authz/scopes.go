package authz

import (
	"net"
	"net/url"
	"strings"
)

// scopeTable maps (resource, action) to the token scope required in
// delegated mode. This is an explicit allowlist of sensitive resource
// families; resources not listed here require no scope. Keep the gap
// visible here rather than inventing scopes for every resource.
var scopeTable = map[string]map[string]string{
	"rules": {
		CapList:    "read:rules",
		CapShow:    "read:rules",
		CapCreate:  "write:rules",
		CapEdit:    "write:rules",
		CapDelete:  "write:rules",
		CapSubmit:  "write:rules",
		CapApprove: "approve:rules",
		CapReject:  "approve:rules",
	},
	"rulesets": {
		CapList:    "read:rulesets",
		CapShow:    "read:rulesets",
		CapCreate:  "write:rulesets",
		CapEdit:    "write:rulesets",
		CapDelete:  "write:rulesets",
		CapSubmit:  "write:rulesets",
		CapApprove: "approve:rulesets",
		CapReject:  "approve:rulesets",
	},
	"approvals": {
		CapList:    "read:approvals",
		CapShow:    "read:approvals",
		CapSubmit:  "write:approvals",
		CapApprove: "approve:approvals",
		CapReject:  "approve:approvals",
	},
}

// RequiredScope returns the scope the (resource, action) pair needs in
// delegated mode, or "" when the resource is unmapped.
func RequiredScope(resource, action string) string {
	actions, ok := scopeTable[resource]
	if !ok {
		return ""
	}
	return actions[action]
}

func containsScope(scopes []string, target string) bool {
	for _, s := range scopes {
		if s == target {
			return true
		}
	}
	return false
}

// isLoopbackOrigin reports whether the request origin resolves to a
// loopback host. Gates the local-dev bypass of scope enforcement; accepts
// a full origin URL or a bare host[:port].
func isLoopbackOrigin(origin string) bool {
	if origin == "" {
		return false
	}
	host := origin
	if strings.Contains(origin, "://") {
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		host = u.Host
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	if strings.EqualFold(host, "localhost") {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	return false
}
