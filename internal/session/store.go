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
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rulegate/rulegate/internal/principal"
)

// Store creates, reads, and invalidates session records. It knows nothing
// about roles or policy; every failure mode on the read path (malformed
// JSON, checksum mismatch, expiry, storage error) collapses to "no session"
// with the stored entry deleted. Read never surfaces an error to callers.
type Store struct {
	storage  Storage
	lifetime time.Duration
	now      func() time.Time
}

// NewStore creates a session store on top of the given storage backend.
// A non-positive lifetime falls back to DefaultLifetime.
func NewStore(storage Storage, lifetime time.Duration) *Store {
	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	return &Store{
		storage:  storage,
		lifetime: lifetime,
		now:      time.Now,
	}
}

// Create builds a new record for the principal and persists it, replacing
// any existing session. The token is bound to the principal id; the
// checksum covers the canonical JSON of {token, user, expiresAt}.
func (s *Store) Create(ctx context.Context, p principal.Principal) error {
	body := payload{
		Token:     fmt.Sprintf("%s.%s", p.ID, uuid.NewString()),
		User:      p,
		ExpiresAt: s.now().Add(s.lifetime).UnixMilli(),
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode session payload: %w", err)
	}

	rec := Record{
		Token:     body.Token,
		User:      body.User,
		ExpiresAt: body.ExpiresAt,
		Checksum:  IntegrityHash(string(raw)),
	}

	encoded, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session record: %w", err)
	}

	if err := s.storage.Set(ctx, StorageKeySession, string(encoded)); err != nil {
		return fmt.Errorf("persist session record: %w", err)
	}
	return nil
}

// Read returns the current session record, or nil when there is none.
// An invalid record (unparseable, tampered, or expired) is deleted before
// nil is returned, so repeated reads are idempotent.
func (s *Store) Read(ctx context.Context) *Record {
	raw, ok, err := s.storage.Get(ctx, StorageKeySession)
	if err != nil || !ok {
		return nil
	}

	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		s.Clear(ctx)
		return nil
	}

	// Recompute the integrity hash from the parsed fields, not the raw
	// bytes, so formatting-only edits don't mask a field-level change.
	check, err := json.Marshal(payload{
		Token:     rec.Token,
		User:      rec.User,
		ExpiresAt: rec.ExpiresAt,
	})
	if err != nil {
		s.Clear(ctx)
		return nil
	}
	if IntegrityHash(string(check)) != rec.Checksum {
		s.Clear(ctx)
		return nil
	}

	if rec.IsExpired(s.now()) {
		s.Clear(ctx)
		return nil
	}

	return &rec
}

// Clear deletes the stored session unconditionally. Idempotent.
func (s *Store) Clear(ctx context.Context) {
	_ = s.storage.Delete(ctx, StorageKeySession)
}
