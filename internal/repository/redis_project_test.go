package repository

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// Set WBS_TEST_REDIS_URL to run against a real server, e.g.
// redis://localhost:6379/15
func newRedisRepo(t *testing.T) *RedisProjectRepo {
	t.Helper()
	url := os.Getenv("WBS_TEST_REDIS_URL")
	if url == "" {
		t.Skip("WBS_TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())

	prefix := "wbstest:" + uuid.NewString() + ":"
	t.Cleanup(func() {
		ctx := context.Background()
		iter := client.Scan(ctx, 0, prefix+"*", 100).Iterator()
		for iter.Next(ctx) {
			client.Del(ctx, iter.Val())
		}
	})
	return NewRedisProjectRepo(client, prefix)
}

func TestRedisProjectRepo_Contract(t *testing.T) {
	runProjectRepoContract(t, func(t *testing.T) ProjectRepo { return newRedisRepo(t) })
}
