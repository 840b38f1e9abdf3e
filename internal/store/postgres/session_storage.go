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

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// SessionStorage implements session.Storage on top of the session_blobs
// table. Values are opaque strings; integrity checking stays with the
// session store that wrote them.
type SessionStorage struct {
	db *DB
}

// NewSessionStorage creates a new durable session storage
func NewSessionStorage(db *DB) *SessionStorage {
	return &SessionStorage{db: db}
}

// Get retrieves the value stored under key
func (s *SessionStorage) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.pool.QueryRow(ctx, `
		SELECT value FROM session_blobs WHERE key = $1
	`, key).Scan(&value)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get session blob: %w", err)
	}

	return value, true, nil
}

// Set stores value under key, replacing any previous value
func (s *SessionStorage) Set(ctx context.Context, key, value string) error {
	_, err := s.db.pool.Exec(ctx, `
		INSERT INTO session_blobs (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = $3
	`, key, value, time.Now())

	if err != nil {
		return fmt.Errorf("failed to set session blob: %w", err)
	}

	return nil
}

// Delete removes the value stored under key. Deleting a missing key is
// not an error.
func (s *SessionStorage) Delete(ctx context.Context, key string) error {
	_, err := s.db.pool.Exec(ctx, `
		DELETE FROM session_blobs WHERE key = $1
	`, key)

	if err != nil {
		return fmt.Errorf("failed to delete session blob: %w", err)
	}

	return nil
}
