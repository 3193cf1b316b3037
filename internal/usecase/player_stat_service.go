package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/riskibarqy/baseball-stats/internal/domain/playerstat"
	"github.com/riskibarqy/baseball-stats/internal/platform/logging"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

type QueryInput struct {
	Ordering string
	Page     int
	PageSize int
}

type QueryResult struct {
	Results []playerstat.Record
	Total   int
}

type PlayerStatService struct {
	repo   playerstat.Repository
	logger *logging.Logger
}

func NewPlayerStatService(repo playerstat.Repository, logger *logging.Logger) *PlayerStatService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PlayerStatService{repo: repo, logger: logger}
}

// Query returns one page of records plus the full store count. There is no
// page size cap here; transports that want one enforce it themselves.
func (s *PlayerStatService) Query(ctx context.Context, input QueryInput) (QueryResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerStatService.Query")
	defer span.End()

	if input.Page < 0 {
		return QueryResult{}, fmt.Errorf("%w: page must not be negative", ErrInvalidInput)
	}
	if input.PageSize < 0 {
		return QueryResult{}, fmt.Errorf("%w: page_size must not be negative", ErrInvalidInput)
	}
	if input.Page == 0 {
		input.Page = DefaultPage
	}
	if input.PageSize == 0 {
		input.PageSize = DefaultPageSize
	}

	ordering, err := playerstat.ParseOrdering(input.Ordering)
	if err != nil {
		return QueryResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	page, err := s.repo.List(ctx, playerstat.ListQuery{
		Ordering: ordering,
		Offset:   pageOffset(input.Page, input.PageSize),
		Limit:    input.PageSize,
	})
	if err != nil {
		return QueryResult{}, fmt.Errorf("list player stats: %w", err)
	}

	results := page.Records
	if results == nil {
		results = []playerstat.Record{}
	}
	return QueryResult{Results: results, Total: page.Total}, nil
}

// pageOffset computes (page-1)*size, saturating at MaxInt so a huge page
// yields an empty result instead of wrapping around.
func pageOffset(page, size int) int {
	n := page - 1
	if n > 0 && size > math.MaxInt/n {
		return math.MaxInt
	}
	return n * size
}

func (s *PlayerStatService) Get(ctx context.Context, id int64) (playerstat.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerStatService.Get")
	defer span.End()

	rec, exists, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return playerstat.Record{}, fmt.Errorf("get player stat: %w", err)
	}
	if !exists {
		return playerstat.Record{}, fmt.Errorf("%w: player id=%d", ErrNotFound, id)
	}
	return rec, nil
}

// Edit updates the canonical fields present in values. Keys outside the
// canonical schema, id included, are ignored.
func (s *PlayerStatService) Edit(ctx context.Context, id int64, values map[string]any) (int64, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerStatService.Edit")
	defer span.End()

	changes := make(map[playerstat.Field]any, len(values))
	var ignored []string
	for key, raw := range values {
		field, _, ok := playerstat.LookupField(key)
		if !ok {
			ignored = append(ignored, key)
			continue
		}
		v, err := playerstat.Coerce(field, raw)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		changes[field] = v
	}
	if len(ignored) > 0 {
		sort.Strings(ignored)
		s.logger.DebugContext(ctx, "edit ignored unknown fields", "player_id", id, "fields", ignored)
	}

	ok, err := s.repo.UpdateFields(ctx, id, changes)
	if err != nil {
		if errors.Is(err, playerstat.ErrDuplicatePlayerName) {
			return 0, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return 0, fmt.Errorf("update player stat: %w", err)
	}
	if !ok {
		return 0, fmt.Errorf("%w: player id=%d", ErrNotFound, id)
	}

	s.logger.InfoContext(ctx, "player stat edited", "player_id", id, "fields", len(changes))
	return id, nil
}
