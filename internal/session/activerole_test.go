package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulegate/rulegate/internal/principal"
)

func TestActiveRole_SetAndGet(t *testing.T) {
	ctx := context.Background()
	ar := NewActiveRole(NewMemoryStorage())

	_, ok := ar.Get(ctx)
	assert.False(t, ok)

	require.NoError(t, ar.Set(ctx, principal.RoleRuleChecker))
	role, ok := ar.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, principal.RoleRuleChecker, role)

	ar.Clear(ctx)
	_, ok = ar.Get(ctx)
	assert.False(t, ok)
}

func TestActiveRole_SubscriberNotifiedAfterWrite(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	ar := NewActiveRole(storage)

	ch, cancel := ar.Subscribe()
	defer cancel()

	require.NoError(t, ar.Set(ctx, principal.RoleFraudAnalyst))

	select {
	case got := <-ch:
		assert.Equal(t, principal.RoleFraudAnalyst, got)
		// The write happens before the notification: storage already
		// holds the new value when the subscriber wakes up.
		raw, ok, err := storage.Get(ctx, StorageKeyActiveRole)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, string(principal.RoleFraudAnalyst), raw)
	case <-time.After(time.Second):
		t.Fatal("subscriber was not notified")
	}
}

func TestActiveRole_CancelStopsNotifications(t *testing.T) {
	ctx := context.Background()
	ar := NewActiveRole(NewMemoryStorage())

	ch, cancel := ar.Subscribe()
	cancel()
	cancel() // idempotent

	require.NoError(t, ar.Set(ctx, principal.RoleRuleMaker))
	_, open := <-ch
	assert.False(t, open)
}
