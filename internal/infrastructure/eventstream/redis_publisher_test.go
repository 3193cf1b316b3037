package eventstream

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/baseball-stats/internal/usecase"
)

func TestRedisPublisher_ReportsUnreachableRedis(t *testing.T) {
	t.Parallel()

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 100 * time.Millisecond,
	})
	defer client.Close()

	publisher := NewRedisPublisher(client, "playerstats", 0)
	assert.Equal(t, int64(defaultMaxLength), publisher.maxLen)

	err := publisher.PublishRefresh(context.Background(), usecase.RefreshEvent{RunID: "run-1", PlayersSaved: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xadd stream=playerstats")
}
