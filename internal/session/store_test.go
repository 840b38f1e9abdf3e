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

package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulegate/rulegate/internal/principal"
)

func testPrincipal() principal.Principal {
	return principal.Principal{
		ID:          "u-100",
		Username:    "alice",
		DisplayName: "Alice",
		Roles:       []principal.Role{principal.RoleRuleMaker, principal.RoleRuleViewer},
		Email:       "alice@rulegate.dev",
	}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	store := NewStore(storage, DefaultLifetime)

	p := testPrincipal()
	require.NoError(t, store.Create(ctx, p))

	rec := store.Read(ctx)
	require.NotNil(t, rec)
	assert.Equal(t, p, rec.User)
	assert.NotEmpty(t, rec.Token)
	assert.NotEmpty(t, rec.Checksum)
	assert.Greater(t, rec.ExpiresAt, time.Now().UnixMilli())

	// Read is side-effect free for a valid record.
	assert.NotNil(t, store.Read(ctx))
}

func TestStore_TokenBoundToPrincipal(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryStorage(), DefaultLifetime)

	require.NoError(t, store.Create(ctx, testPrincipal()))
	rec := store.Read(ctx)
	require.NotNil(t, rec)
	assert.Contains(t, rec.Token, "u-100")
}

// TestPurpose: Validates tamper sensitivity of the session record.
// Scope: Unit Test
// Expected: Mutating any single persisted field invalidates the record on
// the next read and deletes the stored entry.
func TestStore_TamperInvalidatesRecord(t *testing.T) {
	mutations := []struct {
		name   string
		mutate func(r *Record)
	}{
		{"token", func(r *Record) { r.Token += "x" }},
		{"username", func(r *Record) { r.User.Username = "mallory" }},
		{"roles", func(r *Record) { r.User.Roles = append(r.User.Roles, principal.RolePlatformAdmin) }},
		{"email", func(r *Record) { r.User.Email = "mallory@rulegate.dev" }},
		{"expiresAt", func(r *Record) { r.ExpiresAt += int64(time.Hour / time.Millisecond) }},
		{"checksum", func(r *Record) { r.Checksum = "deadbeef" }},
	}

	for _, tt := range mutations {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			storage := NewMemoryStorage()
			store := NewStore(storage, DefaultLifetime)
			require.NoError(t, store.Create(ctx, testPrincipal()))

			raw, ok, err := storage.Get(ctx, StorageKeySession)
			require.NoError(t, err)
			require.True(t, ok)

			var rec Record
			require.NoError(t, json.Unmarshal([]byte(raw), &rec))
			tt.mutate(&rec)
			tampered, err := json.Marshal(rec)
			require.NoError(t, err)
			require.NoError(t, storage.Set(ctx, StorageKeySession, string(tampered)))

			assert.Nil(t, store.Read(ctx))

			_, ok, err = storage.Get(ctx, StorageKeySession)
			require.NoError(t, err)
			assert.False(t, ok, "tampered record must be deleted on read")
		})
	}
}

func TestStore_MalformedJSONDeletedOnRead(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	store := NewStore(storage, DefaultLifetime)

	require.NoError(t, storage.Set(ctx, StorageKeySession, "{not json"))
	assert.Nil(t, store.Read(ctx))

	_, ok, err := storage.Get(ctx, StorageKeySession)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_ExpiredRecordRemovedOnRead(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	store := NewStore(storage, DefaultLifetime)
	require.NoError(t, store.Create(ctx, testPrincipal()))

	// Shift the clock past expiry; the record itself stays untouched.
	store.now = func() time.Time { return time.Now().Add(DefaultLifetime + time.Minute) }

	assert.Nil(t, store.Read(ctx))

	_, ok, err := storage.Get(ctx, StorageKeySession)
	require.NoError(t, err)
	assert.False(t, ok, "expired record must be deleted on read")
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryStorage(), DefaultLifetime)
	require.NoError(t, store.Create(ctx, testPrincipal()))

	store.Clear(ctx)
	store.Clear(ctx)
	assert.Nil(t, store.Read(ctx))
}

func TestStore_ReadWithoutSession(t *testing.T) {
	store := NewStore(NewMemoryStorage(), DefaultLifetime)
	assert.Nil(t, store.Read(context.Background()))
}
