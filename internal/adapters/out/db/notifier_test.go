package db

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNotifier_DispatchByChannelAndKey(t *testing.T) {
	n := newNotifier(zap.NewNop())

	var a, b int
	unsubA := n.Subscribe("profiles", "u1", func() { a++ })
	n.Subscribe("profiles", "u2", func() { b++ })

	n.dispatch(&pq.Notification{Channel: "profiles", Extra: "u1"})
	n.dispatch(&pq.Notification{Channel: "addresses", Extra: "u1"})
	assert.Equal(t, 1, a)
	assert.Equal(t, 0, b)

	// reconnect
	n.dispatch(nil)
	assert.Equal(t, 2, a)
	assert.Equal(t, 1, b)

	unsubA()
	unsubA()
	n.dispatch(&pq.Notification{Channel: "profiles", Extra: "u1"})
	assert.Equal(t, 2, a)
	assert.NotContains(t, n.subs["profiles"], "u1")
}

func TestWatch_LoadsInitiallyAndOnNotify(t *testing.T) {
	n := newNotifier(zap.NewNop())

	var loads atomic.Int32
	stop, err := watch(context.Background(), n, "profiles", "u1", func(context.Context) {
		loads.Add(1)
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return loads.Load() == 1 }, time.Second, 5*time.Millisecond)

	n.dispatch(&pq.Notification{Channel: "profiles", Extra: "u1"})
	require.Eventually(t, func() bool { return loads.Load() == 2 }, time.Second, 5*time.Millisecond)

	stop()
	require.Eventually(t, func() bool {
		n.mu.Lock()
		defer n.mu.Unlock()
		return len(n.subs["profiles"]) == 0
	}, time.Second, 5*time.Millisecond)

	n.dispatch(&pq.Notification{Channel: "profiles", Extra: "u1"})
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(2), loads.Load())
}

func TestWatch_RequiresNotifier(t *testing.T) {
	_, err := watch(context.Background(), nil, "profiles", "u1", func(context.Context) {})
	assert.Error(t, err)
}

func TestNullable(t *testing.T) {
	assert.False(t, nullable(nil).Valid)
	s := ""
	ns := nullable(&s)
	assert.True(t, ns.Valid)
	assert.Equal(t, "", ns.String)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isUniqueViolation(assert.AnError))
}
