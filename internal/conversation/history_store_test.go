package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHistoryStore(t *testing.T) (*RedisHistoryStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisHistoryStore(client, time.Hour), mr
}

func TestRedisHistoryStoreAppendAndLoad(t *testing.T) {
	store, _ := newHistoryStore(t)
	ctx := context.Background()

	history, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)

	require.NoError(t, store.Append(ctx, "s1",
		ChatMessage{Role: ChatRoleUser, Content: "hi"},
		ChatMessage{Role: ChatRoleAssistant, Content: "hello"},
	))
	require.NoError(t, store.Append(ctx, "s1",
		ChatMessage{Role: ChatRoleUser, Content: "thanks"},
	))

	history, err = store.Load(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "hi", history[0].Content)
	assert.Equal(t, ChatRoleAssistant, history[1].Role)
	assert.Equal(t, "thanks", history[2].Content)
}

func TestRedisHistoryStoreSessionsAreIsolated(t *testing.T) {
	store, _ := newHistoryStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1", ChatMessage{Role: ChatRoleUser, Content: "one"}))
	require.NoError(t, store.Append(ctx, "s2", ChatMessage{Role: ChatRoleUser, Content: "two"}))

	h1, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	h2, err := store.Load(ctx, "s2")
	require.NoError(t, err)
	require.Len(t, h1, 1)
	require.Len(t, h2, 1)
	assert.Equal(t, "one", h1[0].Content)
	assert.Equal(t, "two", h2[0].Content)
}

func TestRedisHistoryStoreTTL(t *testing.T) {
	store, mr := newHistoryStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1", ChatMessage{Role: ChatRoleUser, Content: "hi"}))
	assert.Greater(t, mr.TTL("history:s1"), time.Duration(0))

	mr.FastForward(2 * time.Hour)
	history, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestRedisHistoryStoreClear(t *testing.T) {
	store, _ := newHistoryStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1", ChatMessage{Role: ChatRoleUser, Content: "hi"}))
	require.NoError(t, store.Clear(ctx, "s1"))

	history, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)
}
