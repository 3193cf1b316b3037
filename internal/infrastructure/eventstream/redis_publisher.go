package eventstream

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/riskibarqy/baseball-stats/internal/usecase"
)

const (
	EventRefreshed   = "playerstats.refreshed"
	defaultMaxLength = 1000
)

// RedisPublisher appends refresh events to a Redis stream, trimmed to about
// maxLen entries.
type RedisPublisher struct {
	client redis.UniversalClient
	stream string
	maxLen int64
}

func NewRedisPublisher(client redis.UniversalClient, stream string, maxLen int64) *RedisPublisher {
	if maxLen <= 0 {
		maxLen = defaultMaxLength
	}
	return &RedisPublisher{client: client, stream: stream, maxLen: maxLen}
}

func (p *RedisPublisher) PublishRefresh(ctx context.Context, event usecase.RefreshEvent) error {
	data, err := sonic.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal refresh event: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"type":          EventRefreshed,
			"run_id":        event.RunID,
			"players_saved": strconv.Itoa(event.PlayersSaved),
			"completed_at":  event.CompletedAt.Format(time.RFC3339Nano),
			"data":          string(data),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd stream=%s: %w", p.stream, err)
	}
	return nil
}
