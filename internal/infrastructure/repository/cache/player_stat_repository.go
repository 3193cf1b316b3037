package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/bytedance/sonic"

	"github.com/riskibarqy/baseball-stats/internal/domain/playerstat"
	basecache "github.com/riskibarqy/baseball-stats/internal/platform/cache"
	"github.com/riskibarqy/baseball-stats/internal/platform/logging"
)

const (
	playerStatKeyPrefix     = "playerstat:"
	playerStatListKeyPrefix = playerStatKeyPrefix + "list:"
	playerStatIDKeyPrefix   = playerStatKeyPrefix + "id:"
)

// PlayerStatRepository is a read-through decorator. Every successful write
// drops all cached pages and records. When that drop fails, reads bypass the
// cache until a later invalidation goes through.
type PlayerStatRepository struct {
	next   playerstat.Repository
	cache  basecache.Backend
	logger *logging.Logger
	stale  atomic.Bool
}

func NewPlayerStatRepository(next playerstat.Repository, cache basecache.Backend, logger *logging.Logger) *PlayerStatRepository {
	if logger == nil {
		logger = logging.Default()
	}
	return &PlayerStatRepository{next: next, cache: cache, logger: logger}
}

func (r *PlayerStatRepository) Upsert(ctx context.Context, rec playerstat.Record) (playerstat.Record, error) {
	out, err := r.next.Upsert(ctx, rec)
	if err != nil {
		return playerstat.Record{}, err
	}
	r.invalidate(ctx)
	return out, nil
}

func (r *PlayerStatRepository) UpsertMany(ctx context.Context, recs []playerstat.Record) error {
	if err := r.next.UpsertMany(ctx, recs); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *PlayerStatRepository) UpdateFields(ctx context.Context, id int64, values map[playerstat.Field]any) (bool, error) {
	ok, err := r.next.UpdateFields(ctx, id, values)
	if err != nil {
		return false, err
	}
	if ok {
		r.invalidate(ctx)
	}
	return ok, nil
}

func (r *PlayerStatRepository) List(ctx context.Context, query playerstat.ListQuery) (playerstat.Page, error) {
	key := playerStatListKeyPrefix + query.Ordering.String() + ":" + strconv.Itoa(query.Offset) + ":" + strconv.Itoa(query.Limit)
	raw, err := r.load(ctx, key, func(ctx context.Context) ([]byte, error) {
		page, err := r.next.List(ctx, query)
		if err != nil {
			return nil, err
		}
		return sonic.Marshal(cachedPage{Records: page.Records, Total: page.Total})
	})
	if err != nil {
		return playerstat.Page{}, err
	}

	var cached cachedPage
	if err := sonic.Unmarshal(raw, &cached); err != nil {
		return playerstat.Page{}, fmt.Errorf("decode cached player stat page: %w", err)
	}
	if cached.Records == nil {
		cached.Records = []playerstat.Record{}
	}
	return playerstat.Page{Records: cached.Records, Total: cached.Total}, nil
}

func (r *PlayerStatRepository) GetByID(ctx context.Context, id int64) (playerstat.Record, bool, error) {
	key := playerStatIDKeyPrefix + strconv.FormatInt(id, 10)
	raw, err := r.load(ctx, key, func(ctx context.Context) ([]byte, error) {
		rec, exists, err := r.next.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return sonic.Marshal(cachedRecord{Record: rec, Exists: exists})
	})
	if err != nil {
		return playerstat.Record{}, false, err
	}

	var cached cachedRecord
	if err := sonic.Unmarshal(raw, &cached); err != nil {
		return playerstat.Record{}, false, fmt.Errorf("decode cached player stat: %w", err)
	}
	return cached.Record, cached.Exists, nil
}

func (r *PlayerStatRepository) load(ctx context.Context, key string, loader func(context.Context) ([]byte, error)) ([]byte, error) {
	if r.stale.Load() && !r.retryInvalidation(ctx) {
		return loader(ctx)
	}
	return r.cache.GetOrLoad(ctx, key, loader)
}

func (r *PlayerStatRepository) invalidate(ctx context.Context) {
	if err := r.cache.DeletePrefix(ctx, playerStatKeyPrefix); err != nil {
		r.stale.Store(true)
		r.logger.WarnContext(ctx, "invalidate player stat cache failed, bypassing cache", "error", err)
	}
}

// retryInvalidation retries the pending invalidation and reports whether the cache is
// safe to read again.
func (r *PlayerStatRepository) retryInvalidation(ctx context.Context) bool {
	if err := r.cache.DeletePrefix(ctx, playerStatKeyPrefix); err != nil {
		return false
	}
	r.stale.Store(false)
	r.logger.InfoContext(ctx, "player stat cache invalidation recovered")
	return true
}

type cachedPage struct {
	Records []playerstat.Record `json:"records"`
	Total   int                 `json:"total"`
}

type cachedRecord struct {
	Record playerstat.Record `json:"record"`
	Exists bool              `json:"exists"`
}
