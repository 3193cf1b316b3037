package usecase

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/baseball-stats/internal/domain/playerstat"
	"github.com/riskibarqy/baseball-stats/internal/platform/id"
	"github.com/riskibarqy/baseball-stats/internal/platform/logging"
)

const defaultFetchTimeout = 30 * time.Second

// StatsFetcher pulls raw player records from the upstream source.
type StatsFetcher interface {
	FetchPlayerStats(ctx context.Context) ([]map[string]any, error)
}

// RefreshPublisher announces a completed refresh to downstream consumers.
type RefreshPublisher interface {
	PublishRefresh(ctx context.Context, event RefreshEvent) error
}

type RefreshEvent struct {
	RunID        string    `json:"run_id"`
	PlayersSaved int       `json:"players_saved"`
	CompletedAt  time.Time `json:"completed_at"`
}

type IngestResult struct {
	RunID      string
	SavedCount int
}

type IngestionConfig struct {
	Workers      int
	FetchTimeout time.Duration
}

type IngestionService struct {
	repo      playerstat.Repository
	fetcher   StatsFetcher
	publisher RefreshPublisher
	ids       id.Generator
	logger    *logging.Logger
	cfg       IngestionConfig
	now       func() time.Time
}

// NewIngestionService wires the ingestion pipeline. fetcher may be nil for
// callers that only use Ingest; publisher may be nil to skip refresh events.
func NewIngestionService(
	repo playerstat.Repository,
	fetcher StatsFetcher,
	publisher RefreshPublisher,
	ids id.Generator,
	logger *logging.Logger,
	cfg IngestionConfig,
) *IngestionService {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &IngestionService{
		repo:      repo,
		fetcher:   fetcher,
		publisher: publisher,
		ids:       ids,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Ingest normalizes the whole batch before writing anything, then upserts it
// in input order as one atomic unit. Duplicated names count once per
// occurrence; the last occurrence wins.
func (s *IngestionService) Ingest(ctx context.Context, raws []map[string]any) (IngestResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.Ingest")
	defer span.End()

	runID, err := s.ids.NewID()
	if err != nil {
		return IngestResult{}, fmt.Errorf("generate ingestion run id: %w", err)
	}
	result := IngestResult{RunID: runID}
	if len(raws) == 0 {
		s.logger.InfoContext(ctx, "ingestion finished with empty batch", "run_id", runID)
		return result, nil
	}

	records, err := s.normalizeAll(ctx, raws)
	if err != nil {
		s.logger.WarnContext(ctx, "ingestion aborted before write", "run_id", runID, "error", err)
		return IngestResult{}, err
	}

	if err := s.repo.UpsertMany(ctx, records); err != nil {
		return IngestResult{}, fmt.Errorf("upsert player stats run_id=%s: %w", runID, err)
	}

	result.SavedCount = len(raws)
	s.logger.InfoContext(ctx, "ingestion finished", "run_id", runID, "players_saved", result.SavedCount)
	return result, nil
}

func (s *IngestionService) normalizeAll(ctx context.Context, raws []map[string]any) ([]playerstat.Record, error) {
	records := make([]playerstat.Record, len(raws))
	errs := make([]error, len(raws))

	workerCount := min(s.cfg.Workers, len(raws))
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for idx := range raws {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			records[idx], errs[idx] = playerstat.Normalize(raws[idx])
		}); err != nil {
			workers.Done()
			workers.Wait()
			return nil, fmt.Errorf("submit normalize task to worker pool: %w", err)
		}
	}
	workers.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Report the first failure by input position so the error is stable.
	for idx, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("%w: raw record %d: %w", ErrNormalization, idx, err)
		}
	}
	return records, nil
}

// Refresh fetches the upstream batch under the fetch timeout and ingests it.
// No store lock or transaction is held while fetching.
func (s *IngestionService) Refresh(ctx context.Context) (IngestResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.Refresh")
	defer span.End()

	if s.fetcher == nil {
		return IngestResult{}, fmt.Errorf("%w: upstream source is not configured", ErrDependencyUnavailable)
	}

	raws, err := s.fetch(ctx)
	if err != nil {
		return IngestResult{}, err
	}

	result, err := s.Ingest(ctx, raws)
	if err != nil {
		return IngestResult{}, err
	}

	if s.publisher != nil {
		event := RefreshEvent{RunID: result.RunID, PlayersSaved: result.SavedCount, CompletedAt: s.now().UTC()}
		if err := s.publisher.PublishRefresh(ctx, event); err != nil {
			s.logger.WarnContext(ctx, "publish refresh event failed", "run_id", result.RunID, "error", err)
		}
	}
	return result, nil
}

func (s *IngestionService) fetch(ctx context.Context) ([]map[string]any, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	start := time.Now()
	raws, err := s.fetcher.FetchPlayerStats(fetchCtx)
	if err != nil {
		s.logger.WarnContext(ctx, "fetch upstream player stats failed",
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return nil, wrapDependencyError("fetch upstream player stats", err)
	}
	s.logger.DebugContext(ctx, "fetched upstream player stats",
		"records", len(raws),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return raws, nil
}
