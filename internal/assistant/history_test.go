package assistant

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestRedisHistory_AppendAndLoad(t *testing.T) {
	_, client := setupTestRedis(t)
	store := NewRedisHistory(client)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1",
		Turn{Role: "user", Content: "mi perro no come"},
		Turn{Role: "assistant", Content: "prueba con comida húmeda"},
	))

	turns, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []Turn{
		{Role: "user", Content: "mi perro no come"},
		{Role: "assistant", Content: "prueba con comida húmeda"},
	}, turns)
}

func TestRedisHistory_SlidingWindow(t *testing.T) {
	_, client := setupTestRedis(t)
	store := NewRedisHistory(client)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		require.NoError(t, store.Append(ctx, "s1", Turn{Role: "user", Content: fmt.Sprintf("m%d", i)}))
	}

	turns, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, turns, historyMaxTurns)
	assert.Equal(t, "m5", turns[0].Content)
	assert.Equal(t, "m24", turns[historyMaxTurns-1].Content)
}

func TestRedisHistory_Expires(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewRedisHistory(client)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1", Turn{Role: "user", Content: "hola"}))
	assert.Equal(t, historyTTL, mr.TTL(historyKey("s1")))

	mr.FastForward(historyTTL + time.Minute)

	turns, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestRedisHistory_SkipsCorruptEntries(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewRedisHistory(client)

	_, err := mr.RPush(historyKey("s1"), "not json", `{"role":"user","content":"ok"}`)
	require.NoError(t, err)

	turns, err := store.Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, []Turn{{Role: "user", Content: "ok"}}, turns)
}

func TestRedisHistory_Unavailable(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewRedisHistory(client)
	mr.Close()

	_, err := store.Load(context.Background(), "s1")
	assert.ErrorContains(t, err, "load history")

	err = store.Append(context.Background(), "s1", Turn{Role: "user", Content: "hola"})
	assert.ErrorContains(t, err, "append history")
}
