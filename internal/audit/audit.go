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

package audit

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Event types
const (
	TypeLoginSuccess       = "login_success"
	TypeLoginFailed        = "login_failed"
	TypeLogout             = "logout"
	TypeAccessGranted      = "access_granted"
	TypeAccessDenied       = "access_denied"
	TypeRoleSwitched       = "role_switched"
	TypeSessionInvalidated = "session_invalidated"
)

// Metadata keys
const (
	AttrReason = "reason"
	AttrRoles  = "roles"
	AttrScope  = "scope"
	AttrMode   = "mode"
)

// Event represents an auditable action
type Event struct {
	Type      string
	ActorID   string
	Resource  string
	Action    string
	Metadata  map[string]any
	Timestamp time.Time
}

// Logger defines the interface for audit logging
type Logger interface {
	Log(ctx context.Context, event Event)
}

// Store persists audit events durably. The postgres implementation lives
// in internal/store/postgres.
type Store interface {
	Insert(ctx context.Context, event Event) error
}

// SlogLogger implements Logger using slog
type SlogLogger struct{}

// NewSlogLogger creates a new audit logger
func NewSlogLogger() *SlogLogger {
	return &SlogLogger{}
}

// Log records an audit event
func (l *SlogLogger) Log(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	attrs := []any{
		slog.String("audit_type", event.Type),
		slog.String("actor_id", event.ActorID),
		slog.String("resource", event.Resource),
		slog.Time("timestamp", event.Timestamp),
	}
	if event.Action != "" {
		attrs = append(attrs, slog.String("action", event.Action))
	}

	if len(event.Metadata) > 0 {
		group := []any{}
		for k, v := range redact(event.Metadata) {
			group = append(group, slog.Any(k, v))
		}
		attrs = append(attrs, slog.Group("metadata", group...))
	}

	slog.InfoContext(ctx, "AUDIT_EVENT", append(attrs, slog.String("component", "audit"))...)
}

// PersistentLogger writes events to slog and to a durable store. Store
// failures are logged, never surfaced: audit must not break the flow it
// observes.
type PersistentLogger struct {
	slog  *SlogLogger
	store Store
}

// NewPersistentLogger creates an audit logger backed by a durable store.
func NewPersistentLogger(store Store) *PersistentLogger {
	return &PersistentLogger{slog: NewSlogLogger(), store: store}
}

// Log records an audit event to slog and the store. Metadata is
// redacted up front so secrets reach neither sink.
func (l *PersistentLogger) Log(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Metadata = redact(event.Metadata)
	l.slog.Log(ctx, event)
	if err := l.store.Insert(ctx, event); err != nil {
		slog.ErrorContext(ctx, "failed to persist audit event",
			slog.String("audit_type", event.Type),
			slog.String("error", err.Error()),
		)
	}
}

// redact returns a copy of metadata with secret-bearing values masked.
// The caller's map is never mutated.
func redact(metadata map[string]any) map[string]any {
	if len(metadata) == 0 {
		return metadata
	}
	out := make(map[string]any, len(metadata))
	for k, v := range metadata {
		if isSecret(k) {
			v = "[REDACTED]"
		}
		out[k] = v
	}
	return out
}

// isSecret checks if a key likely contains a secret
func isSecret(key string) bool {
	k := strings.ToLower(key)
	secrets := []string{"password", "secret", "token", "key", "authorization", "credential", "hash"}
	for _, s := range secrets {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}
