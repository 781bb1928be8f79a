package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/trivia-arena/internal/storage"
)

func TestManager_CreateAndGet(t *testing.T) {
	t.Parallel()

	m := NewManager(nil)
	s := m.Create("p1", "Alice")

	require.NotNil(t, s)
	assert.Equal(t, "p1", s.PlayerID)
	assert.Len(t, s.ReconnectToken, 32) // 16 random bytes, hex encoded
	assert.True(t, s.IsOnline)

	assert.Same(t, s, m.Get("p1"))
	assert.Nil(t, m.Get("unknown"))
}

func TestManager_TokensAreUnique(t *testing.T) {
	t.Parallel()

	m := NewManager(nil)
	s1 := m.Create("p1", "Alice")
	s2 := m.Create("p2", "Bob")

	assert.NotEqual(t, s1.ReconnectToken, s2.ReconnectToken)
}

func TestManager_Validate(t *testing.T) {
	t.Parallel()

	m := NewManager(nil)
	s := m.Create("p1", "Alice")
	m.SetOffline("p1")

	// Valid token for an offline player within the window
	assert.Same(t, s, m.Validate(s.ReconnectToken, "p1"))

	// Token bound to a different player
	assert.Nil(t, m.Validate(s.ReconnectToken, "p2"))

	// Unknown token
	assert.Nil(t, m.Validate("bogus", "p1"))
}

func TestManager_Validate_RejectsOnlineSession(t *testing.T) {
	t.Parallel()

	m := NewManager(nil)
	s := m.Create("p1", "Alice")

	// A second connection must not adopt a live identity
	assert.Nil(t, m.Validate(s.ReconnectToken, "p1"))

	// Once the original connection drops, the token works again
	m.SetOffline("p1")
	assert.Same(t, s, m.Validate(s.ReconnectToken, "p1"))
}

func TestManager_Validate_ExpiredDisconnect(t *testing.T) {
	t.Parallel()

	m := NewManager(nil)
	s := m.Create("p1", "Alice")

	// Simulate a disconnect beyond the reconnect window
	s.mu.Lock()
	s.IsOnline = false
	s.DisconnectedAt = time.Now().Add(-3 * time.Minute)
	s.mu.Unlock()

	assert.Nil(t, m.Validate(s.ReconnectToken, "p1"))
}

func TestManager_OfflineOnlineRoundTrip(t *testing.T) {
	t.Parallel()

	m := NewManager(nil)
	s := m.Create("p1", "Alice")

	m.SetOffline("p1")
	assert.False(t, s.IsOnline)
	assert.False(t, s.DisconnectedAt.IsZero())

	m.SetOnline("p1")
	assert.True(t, s.IsOnline)
	assert.True(t, s.DisconnectedAt.IsZero())
}

func TestManager_SetRoomAndName(t *testing.T) {
	t.Parallel()

	m := NewManager(nil)
	s := m.Create("p1", "")

	m.SetName("p1", "Alice")
	m.SetRoom("p1", "ABC123")

	assert.Equal(t, "Alice", s.PlayerName)
	assert.Equal(t, "ABC123", s.Room())

	m.SetRoom("p1", "")
	assert.Empty(t, s.Room())

	// Missing player is a no-op, not a panic
	m.SetRoom("ghost", "X")
	m.SetName("ghost", "X")
}

func TestManager_Delete(t *testing.T) {
	t.Parallel()

	m := NewManager(nil)
	s := m.Create("p1", "Alice")
	m.SetOffline("p1")

	m.Delete("p1")
	assert.Nil(t, m.Get("p1"))
	assert.Nil(t, m.Validate(s.ReconnectToken, "p1"))
}

func TestManager_CleanupExpiredSessions(t *testing.T) {
	t.Parallel()

	m := NewManager(nil)
	stale := m.Create("p1", "Alice")
	fresh := m.Create("p2", "Bob")
	m.SetOffline("p2")

	stale.mu.Lock()
	stale.IsOnline = false
	stale.DisconnectedAt = time.Now().Add(-11 * time.Minute)
	stale.mu.Unlock()

	m.cleanup()

	assert.Nil(t, m.Get("p1"))
	assert.NotNil(t, m.Get("p2"))
	assert.Nil(t, m.Validate(stale.ReconnectToken, "p1"))
	assert.NotNil(t, m.Validate(fresh.ReconnectToken, "p2"))
}

func TestManager_MirrorsSessionsToRedis(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	store := storage.NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	m := NewManager(store)
	s := m.Create("p1", "Alice")

	// Mirror writes are async, poll until the snapshot lands
	require.Eventually(t, func() bool {
		data, err := store.LoadSession(ctx, "p1")
		return err == nil && data != nil && data.IsOnline
	}, 2*time.Second, 5*time.Millisecond)

	data, err := store.LoadSession(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", data.PlayerName)
	assert.Equal(t, s.ReconnectToken, data.ReconnectToken)

	m.SetRoom("p1", "ABC123")
	m.SetOffline("p1")
	require.Eventually(t, func() bool {
		data, err := store.LoadSession(ctx, "p1")
		return err == nil && data != nil && !data.IsOnline && data.RoomCode == "ABC123"
	}, 2*time.Second, 5*time.Millisecond)

	m.Delete("p1")
	require.Eventually(t, func() bool {
		data, err := store.LoadSession(ctx, "p1")
		return err == nil && data == nil
	}, 2*time.Second, 5*time.Millisecond)
}
