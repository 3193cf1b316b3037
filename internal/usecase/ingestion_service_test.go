package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/baseball-stats/internal/domain/playerstat"
	"github.com/riskibarqy/baseball-stats/internal/infrastructure/repository/memory"
	playerstatmock "github.com/riskibarqy/baseball-stats/internal/mocks/domain/playerstat"
	"github.com/riskibarqy/baseball-stats/internal/platform/id"
	"github.com/riskibarqy/baseball-stats/internal/platform/logging"
	"github.com/riskibarqy/baseball-stats/internal/platform/resilience"
)

type fetcherStub struct {
	raws []map[string]any
	err  error
	wait bool
}

func (f *fetcherStub) FetchPlayerStats(ctx context.Context) ([]map[string]any, error) {
	if f.wait {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.raws, f.err
}

type publisherStub struct {
	mu     sync.Mutex
	events []RefreshEvent
	err    error
}

func (p *publisherStub) PublishRefresh(_ context.Context, event RefreshEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func newTestIngestionService(repo playerstat.Repository, fetcher StatsFetcher, publisher RefreshPublisher) *IngestionService {
	return NewIngestionService(repo, fetcher, publisher, id.Static("run-1"), logging.NewNop(), IngestionConfig{
		Workers:      4,
		FetchTimeout: time.Second,
	})
}

func TestIngestionService_IngestEndToEndSample(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := memory.NewPlayerStatRepository()
	service := newTestIngestionService(repo, nil, nil)

	result, err := service.Ingest(ctx, []map[string]any{
		{"Player name": "A", "Games": float64(10), "Caught stealing": "--"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.SavedCount)
	assert.Equal(t, "run-1", result.RunID)

	page, err := repo.List(ctx, playerstat.ListQuery{})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	got := page.Records[0]
	assert.Equal(t, "A", got.PlayerName)
	assert.Equal(t, int64(10), got.Games)
	assert.Equal(t, int64(0), got.CaughtStealing)
	assert.Equal(t, "", got.Position)
	assert.Equal(t, 0.0, got.Avg)
}

func TestIngestionService_IngestIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := memory.NewPlayerStatRepository()
	service := newTestIngestionService(repo, nil, nil)

	batch := []map[string]any{
		{"Player name": "A", "Hits": float64(3)},
		{"Player name": "B", "Hits": float64(5)},
	}
	for i := 0; i < 2; i++ {
		result, err := service.Ingest(ctx, batch)
		require.NoError(t, err)
		assert.Equal(t, 2, result.SavedCount)
	}

	page, err := repo.List(ctx, playerstat.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
}

func TestIngestionService_IngestCountsDuplicatesAndLastWins(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := memory.NewPlayerStatRepository()
	service := newTestIngestionService(repo, nil, nil)

	result, err := service.Ingest(ctx, []map[string]any{
		{"Player name": "A", "Runs": float64(1)},
		{"Player name": "A", "Runs": float64(2)},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.SavedCount)

	page, err := repo.List(ctx, playerstat.ListQuery{})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, int64(2), page.Records[0].Runs)
}

func TestIngestionService_IngestPreservesInputOrder(t *testing.T) {
	t.Parallel()

	raws := make([]map[string]any, 0, 50)
	want := make([]playerstat.Record, 0, 50)
	for i := 0; i < 50; i++ {
		name := fmt.Sprintf("player-%02d", i)
		raws = append(raws, map[string]any{"Player name": name, "Games": float64(i)})
		want = append(want, playerstat.Record{PlayerName: name, Games: int64(i)})
	}

	repo := playerstatmock.NewRepository(t)
	repo.On("UpsertMany", mock.Anything, want).Return(nil).Once()

	result, err := newTestIngestionService(repo, nil, nil).Ingest(context.Background(), raws)
	require.NoError(t, err)
	assert.Equal(t, 50, result.SavedCount)
}

func TestIngestionService_NormalizationFailureAbortsBeforeWrite(t *testing.T) {
	t.Parallel()

	repo := playerstatmock.NewRepository(t)
	service := newTestIngestionService(repo, nil, nil)

	_, err := service.Ingest(context.Background(), []map[string]any{
		{"Player name": "A"},
		{"Player name": "B", "Games": "many"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNormalization)
	assert.ErrorIs(t, err, playerstat.ErrCoercion)
	assert.Contains(t, err.Error(), "raw record 1")
	repo.AssertNotCalled(t, "UpsertMany", mock.Anything, mock.Anything)
}

func TestIngestionService_UpsertFailureSavesNothing(t *testing.T) {
	t.Parallel()

	repo := playerstatmock.NewRepository(t)
	repo.On("UpsertMany", mock.Anything, mock.Anything).Return(errors.New("connection reset")).Once()

	result, err := newTestIngestionService(repo, nil, nil).Ingest(context.Background(), []map[string]any{{"Player name": "A"}})
	require.Error(t, err)
	assert.Zero(t, result.SavedCount)
}

func TestIngestionService_EmptyBatch(t *testing.T) {
	t.Parallel()

	repo := playerstatmock.NewRepository(t)
	result, err := newTestIngestionService(repo, nil, nil).Ingest(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, result.SavedCount)
}

func TestIngestionService_Refresh(t *testing.T) {
	t.Parallel()

	t.Run("saves and publishes", func(t *testing.T) {
		repo := memory.NewPlayerStatRepository()
		publisher := &publisherStub{}
		fetcher := &fetcherStub{raws: []map[string]any{{"Player name": "A"}, {"Player name": "B"}}}

		result, err := newTestIngestionService(repo, fetcher, publisher).Refresh(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, result.SavedCount)
		require.Len(t, publisher.events, 1)
		assert.Equal(t, "run-1", publisher.events[0].RunID)
		assert.Equal(t, 2, publisher.events[0].PlayersSaved)
	})

	t.Run("publish failure does not fail refresh", func(t *testing.T) {
		repo := memory.NewPlayerStatRepository()
		publisher := &publisherStub{err: errors.New("redis down")}
		fetcher := &fetcherStub{raws: []map[string]any{{"Player name": "A"}}}

		result, err := newTestIngestionService(repo, fetcher, publisher).Refresh(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, result.SavedCount)
	})

	t.Run("upstream error", func(t *testing.T) {
		repo := playerstatmock.NewRepository(t)
		fetcher := &fetcherStub{err: errors.New("status 500")}

		_, err := newTestIngestionService(repo, fetcher, nil).Refresh(context.Background())
		assert.ErrorIs(t, err, ErrUpstream)
	})

	t.Run("open circuit", func(t *testing.T) {
		repo := playerstatmock.NewRepository(t)
		fetcher := &fetcherStub{err: resilience.ErrCircuitOpen}

		_, err := newTestIngestionService(repo, fetcher, nil).Refresh(context.Background())
		assert.ErrorIs(t, err, ErrDependencyUnavailable)
	})

	t.Run("fetch timeout", func(t *testing.T) {
		repo := playerstatmock.NewRepository(t)
		service := NewIngestionService(repo, &fetcherStub{wait: true}, nil, id.Static("run-1"), logging.NewNop(), IngestionConfig{
			FetchTimeout: 20 * time.Millisecond,
		})

		_, err := service.Refresh(context.Background())
		assert.ErrorIs(t, err, ErrUpstream)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("no fetcher", func(t *testing.T) {
		repo := playerstatmock.NewRepository(t)
		_, err := newTestIngestionService(repo, nil, nil).Refresh(context.Background())
		assert.ErrorIs(t, err, ErrDependencyUnavailable)
	})
}
