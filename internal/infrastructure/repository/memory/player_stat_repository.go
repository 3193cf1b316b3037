package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/riskibarqy/baseball-stats/internal/domain/playerstat"
)

// PlayerStatRepository keeps records in insertion order behind one RWMutex.
type PlayerStatRepository struct {
	mu      sync.RWMutex
	records []playerstat.Record
	byName  map[string]int
	byID    map[int64]int
	nextID  int64
}

func NewPlayerStatRepository(seed ...playerstat.Record) *PlayerStatRepository {
	r := &PlayerStatRepository{
		byName: make(map[string]int),
		byID:   make(map[int64]int),
		nextID: 1,
	}
	for _, rec := range seed {
		r.upsertLocked(rec)
	}
	return r
}

func (r *PlayerStatRepository) Upsert(ctx context.Context, rec playerstat.Record) (playerstat.Record, error) {
	if err := ctx.Err(); err != nil {
		return playerstat.Record{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.upsertLocked(rec), nil
}

func (r *PlayerStatRepository) UpsertMany(ctx context.Context, recs []playerstat.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range recs {
		r.upsertLocked(rec)
	}
	return nil
}

func (r *PlayerStatRepository) upsertLocked(rec playerstat.Record) playerstat.Record {
	if idx, ok := r.byName[rec.PlayerName]; ok {
		rec.ID = r.records[idx].ID
		r.records[idx] = rec
		return rec
	}

	rec.ID = r.nextID
	r.nextID++
	r.records = append(r.records, rec)
	idx := len(r.records) - 1
	r.byName[rec.PlayerName] = idx
	r.byID[rec.ID] = idx
	return rec
}

func (r *PlayerStatRepository) List(ctx context.Context, query playerstat.ListQuery) (playerstat.Page, error) {
	if err := ctx.Err(); err != nil {
		return playerstat.Page{}, err
	}

	r.mu.RLock()
	snapshot := slices.Clone(r.records)
	r.mu.RUnlock()

	if len(query.Ordering) > 0 {
		slices.SortStableFunc(snapshot, query.Ordering.Compare)
	}

	total := len(snapshot)
	start := min(max(query.Offset, 0), total)
	end := total
	if query.Limit > 0 && query.Limit < total-start {
		end = start + query.Limit
	}

	out := make([]playerstat.Record, end-start)
	copy(out, snapshot[start:end])
	return playerstat.Page{Records: out, Total: total}, nil
}

func (r *PlayerStatRepository) GetByID(ctx context.Context, id int64) (playerstat.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return playerstat.Record{}, false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.byID[id]
	if !ok {
		return playerstat.Record{}, false, nil
	}
	return r.records[idx], true, nil
}

func (r *PlayerStatRepository) UpdateFields(ctx context.Context, id int64, values map[playerstat.Field]any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.byID[id]
	if !ok {
		return false, nil
	}

	// Unknown field names are dropped, matching the Postgres store.
	known := make(map[playerstat.Field]any, len(values))
	for f, v := range values {
		if _, _, ok := playerstat.LookupField(string(f)); ok {
			known[f] = v
		}
	}

	current := r.records[idx]
	updated, err := current.Apply(known)
	if err != nil {
		return false, err
	}
	updated.ID = current.ID

	if updated.PlayerName != current.PlayerName {
		if _, taken := r.byName[updated.PlayerName]; taken {
			return false, playerstat.ErrDuplicatePlayerName
		}
		delete(r.byName, current.PlayerName)
		r.byName[updated.PlayerName] = idx
	}

	r.records[idx] = updated
	return true, nil
}
