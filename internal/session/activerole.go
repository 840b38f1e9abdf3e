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
	"sync"

	"github.com/rulegate/rulegate/internal/principal"
)

// ActiveRole tracks which role a multi-role principal is currently acting
// as. It is a UI preference only: access decisions always evaluate against
// the principal's full role list. Subscribers are notified after every
// write, so a subscriber reading storage on notification observes the new
// value. Notification is fire-and-forget; slow subscribers miss updates
// rather than block the writer.
type ActiveRole struct {
	storage Storage

	mu   sync.Mutex
	subs map[int]chan principal.Role
	next int
}

// NewActiveRole creates the active-role preference on the given storage.
func NewActiveRole(storage Storage) *ActiveRole {
	return &ActiveRole{
		storage: storage,
		subs:    make(map[int]chan principal.Role),
	}
}

// Get returns the stored preference, or false when unset.
func (a *ActiveRole) Get(ctx context.Context) (principal.Role, bool) {
	raw, ok, err := a.storage.Get(ctx, StorageKeyActiveRole)
	if err != nil || !ok {
		return "", false
	}
	return principal.Role(raw), true
}

// Set writes the preference and then notifies subscribers.
func (a *ActiveRole) Set(ctx context.Context, role principal.Role) error {
	if err := a.storage.Set(ctx, StorageKeyActiveRole, string(role)); err != nil {
		return err
	}
	a.notify(role)
	return nil
}

// Clear removes the preference without notifying subscribers.
func (a *ActiveRole) Clear(ctx context.Context) {
	_ = a.storage.Delete(ctx, StorageKeyActiveRole)
}

// Subscribe registers for change notifications. The returned cancel func
// must be called when the subscriber is done.
func (a *ActiveRole) Subscribe() (<-chan principal.Role, func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.next
	a.next++
	ch := make(chan principal.Role, 1)
	a.subs[id] = ch

	cancel := func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		if _, ok := a.subs[id]; ok {
			delete(a.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

func (a *ActiveRole) notify(role principal.Role) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, ch := range a.subs {
		select {
		case ch <- role:
		default:
		}
	}
}
