package conversation

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client)
}

func storeImplementations(t *testing.T) map[string]Store {
	return map[string]Store{
		"redis":  newTestRedisStore(t),
		"memory": NewMemoryStore(),
	}
}

func TestStoreRecentWindowKeepsArrivalOrder(t *testing.T) {
	ctx := context.Background()
	for name, store := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 7; i++ {
				require.NoError(t, store.Append(ctx, "user-1", Record{
					UserInput:         fmt.Sprintf("question %d", i),
					AssistantResponse: fmt.Sprintf("answer %d", i),
					Sentiment:         "NEUTRAL",
				}))
			}

			window, err := store.RecentWindow(ctx, "user-1", 5)
			require.NoError(t, err)
			require.Len(t, window, 5)
			for i, rec := range window {
				require.Equal(t, fmt.Sprintf("question %d", i+2), rec.UserInput)
				require.Equal(t, fmt.Sprintf("answer %d", i+2), rec.AssistantResponse)
			}
		})
	}
}

func TestStoreRecentWindowShorterLog(t *testing.T) {
	ctx := context.Background()
	for name, store := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Append(ctx, "user-1", Record{UserInput: "hi", AssistantResponse: "hello"}))

			window, err := store.RecentWindow(ctx, "user-1", 5)
			require.NoError(t, err)
			require.Len(t, window, 1)
		})
	}
}

func TestStoreRecentWindowEmptyForUnknownUser(t *testing.T) {
	ctx := context.Background()
	for name, store := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			window, err := store.RecentWindow(ctx, "never-seen", 5)
			require.NoError(t, err)
			require.Empty(t, window)
		})
	}
}

func TestStoreResetDeletesLog(t *testing.T) {
	ctx := context.Background()
	for name, store := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Append(ctx, "user-1", Record{UserInput: "hi", AssistantResponse: "hello"}))
			require.NoError(t, store.Reset(ctx, "user-1"))

			window, err := store.RecentWindow(ctx, "user-1", 5)
			require.NoError(t, err)
			require.Empty(t, window)
		})
	}
}

func TestStoreResetMissingLogIsNoOp(t *testing.T) {
	ctx := context.Background()
	for name, store := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Reset(ctx, "never-seen"))
		})
	}
}

func TestStoreIsolatesUsers(t *testing.T) {
	ctx := context.Background()
	for name, store := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Append(ctx, "user-a", Record{UserInput: "a"}))
			require.NoError(t, store.Append(ctx, "user-b", Record{UserInput: "b"}))
			require.NoError(t, store.Reset(ctx, "user-a"))

			window, err := store.RecentWindow(ctx, "user-b", 5)
			require.NoError(t, err)
			require.Len(t, window, 1)
			require.Equal(t, "b", window[0].UserInput)
		})
	}
}
