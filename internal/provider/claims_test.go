package provider

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopesFromClaims(t *testing.T) {
	tests := []struct {
		name   string
		claims jwt.MapClaims
		want   []string
	}{
		{
			"space separated scope string",
			jwt.MapClaims{"scope": "read:rules write:rules"},
			[]string{"read:rules", "write:rules"},
		},
		{
			"scp array",
			jwt.MapClaims{"scp": []any{"read:rules", "approve:rules"}},
			[]string{"read:rules", "approve:rules"},
		},
		{
			"permissions array",
			jwt.MapClaims{"permissions": []any{"write:rules"}},
			[]string{"write:rules"},
		},
		{
			"scope preferred over scp",
			jwt.MapClaims{"scope": "read:rules", "scp": []any{"write:rules"}},
			[]string{"read:rules"},
		},
		{
			"no scope claim",
			jwt.MapClaims{"sub": "user-1"},
			nil,
		},
		{
			"empty scope string",
			jwt.MapClaims{"scope": ""},
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scopesFromClaims(tt.claims))
		})
	}
}

func TestRolesFromClaims(t *testing.T) {
	claims := jwt.MapClaims{
		"https://rulegate.io/roles": []any{"RULE_CHECKER"},
		"roles":                     []any{"RULE_MAKER"},
	}

	assert.Equal(t, []string{"RULE_CHECKER"}, rolesFromClaims(claims, "https://rulegate.io/roles"))
	assert.Equal(t, []string{"RULE_MAKER"}, rolesFromClaims(claims, ""))
	assert.Equal(t, []string{"RULE_MAKER"}, rolesFromClaims(claims, "missing_claim"))
	assert.Nil(t, rolesFromClaims(jwt.MapClaims{}, ""))
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	raw, err := tok.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return raw
}

func TestClient_GetAccessTokenScopes(t *testing.T) {
	c := NewClient(Config{Domain: "idp.example.com", ClientID: "client-1"}, nil)

	ctx := WithToken(context.Background(), signedToken(t, jwt.MapClaims{
		"scope": "read:rules approve:rules",
	}))
	scopes, err := c.GetAccessTokenScopes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"read:rules", "approve:rules"}, scopes)

	// No token: no scopes, no error.
	scopes, err = c.GetAccessTokenScopes(context.Background())
	require.NoError(t, err)
	assert.Nil(t, scopes)

	// Garbage token: typed provider error.
	_, err = c.GetAccessTokenScopes(WithToken(context.Background(), "not-a-jwt"))
	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
}

func TestClient_IsEnabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{"configured", Config{Domain: "idp.example.com", ClientID: "c1"}, true},
		{"missing domain", Config{ClientID: "c1"}, false},
		{"missing client id", Config{Domain: "idp.example.com"}, false},
		{"force local", Config{Domain: "idp.example.com", ClientID: "c1", ForceLocal: true}, false},
		{"automation mode", Config{Domain: "idp.example.com", ClientID: "c1", AutomationMode: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewClient(tt.cfg, nil).IsEnabled())
		})
	}
}

func TestClient_LoginWithRedirect(t *testing.T) {
	c := NewClient(Config{
		Domain:      "idp.example.com",
		ClientID:    "client-1",
		Audience:    "https://api.rulegate.io",
		CallbackURL: "https://app.rulegate.io/callback",
	}, nil)

	u, err := c.LoginWithRedirect(context.Background(), "/rules")
	require.NoError(t, err)
	assert.Contains(t, u, "https://idp.example.com/authorize?")
	assert.Contains(t, u, "client_id=client-1")
	assert.Contains(t, u, "state=%2Frules")

	disabled := NewClient(Config{}, nil)
	_, err = disabled.LoginWithRedirect(context.Background(), "")
	assert.Error(t, err)
}

func TestClient_IsAuthenticated(t *testing.T) {
	c := NewClient(Config{Domain: "idp.example.com", ClientID: "c1"}, nil)

	ok, err := c.IsAuthenticated(context.Background())
	require.NoError(t, err)
	assert.False(t, ok, "no token means not authenticated")

	live := WithToken(context.Background(), signedToken(t, jwt.MapClaims{"sub": "u1"}))
	ok, err = c.IsAuthenticated(live)
	require.NoError(t, err)
	assert.True(t, ok)

	expired := WithToken(context.Background(), signedToken(t, jwt.MapClaims{"exp": 1000}))
	ok, err = c.IsAuthenticated(expired)
	require.NoError(t, err)
	assert.False(t, ok)
}
