package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/baseball-stats/internal/domain/playerstat"
)

func TestPlayerStatRepository_UpsertReplacesByName(t *testing.T) {
	ctx := context.Background()
	repo := NewPlayerStatRepository()

	first, err := repo.Upsert(ctx, playerstat.Record{PlayerName: "A", Position: "C", Games: 10, HomeRun: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)

	second, err := repo.Upsert(ctx, playerstat.Record{PlayerName: "A", Games: 12})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	got, exists, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.True(t, exists)
	assert.Equal(t, playerstat.Record{ID: 1, PlayerName: "A", Games: 12}, got, "re-ingestion replaces rather than merges")

	page, err := repo.List(ctx, playerstat.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
}

func TestPlayerStatRepository_ListPaginationAndTotal(t *testing.T) {
	ctx := context.Background()
	repo := NewPlayerStatRepository()

	// insert in reverse name order so ordering is observable
	batch := make([]playerstat.Record, 0, 25)
	for i := 25; i >= 1; i-- {
		batch = append(batch, playerstat.Record{PlayerName: fmt.Sprintf("player-%02d", i)})
	}
	require.NoError(t, repo.UpsertMany(ctx, batch))

	ordering, err := playerstat.ParseOrdering("player_name")
	require.NoError(t, err)

	page, err := repo.List(ctx, playerstat.ListQuery{Ordering: ordering, Offset: 10, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 25, page.Total)
	require.Len(t, page.Records, 10)
	for i, rec := range page.Records {
		assert.Equal(t, fmt.Sprintf("player-%02d", i+11), rec.PlayerName)
	}

	tail, err := repo.List(ctx, playerstat.ListQuery{Ordering: ordering, Offset: 20, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, tail.Records, 5)
	assert.Equal(t, 25, tail.Total)

	beyond, err := repo.List(ctx, playerstat.ListQuery{Offset: 100, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, beyond.Records)
	assert.Equal(t, 25, beyond.Total)

	natural, err := repo.List(ctx, playerstat.ListQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, natural.Records, 2)
	assert.Equal(t, "player-25", natural.Records[0].PlayerName, "no ordering keeps insertion order")

	all, err := repo.List(ctx, playerstat.ListQuery{})
	require.NoError(t, err)
	assert.Len(t, all.Records, 25)
}

func TestPlayerStatRepository_UpdateFields(t *testing.T) {
	ctx := context.Background()
	repo := NewPlayerStatRepository(
		playerstat.Record{PlayerName: "A"},
		playerstat.Record{PlayerName: "B"},
	)

	ok, err := repo.UpdateFields(ctx, 1, map[playerstat.Field]any{playerstat.FieldHomeRun: int64(42)})
	require.NoError(t, err)
	assert.True(t, ok)

	got, _, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.HomeRun)

	ok, err = repo.UpdateFields(ctx, 99, map[playerstat.Field]any{playerstat.FieldHomeRun: int64(1)})
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.UpdateFields(ctx, 1, map[playerstat.Field]any{playerstat.FieldPlayerName: "B"})
	assert.True(t, errors.Is(err, playerstat.ErrDuplicatePlayerName))

	ok, err = repo.UpdateFields(ctx, 1, map[playerstat.Field]any{playerstat.FieldPlayerName: "A2"})
	require.NoError(t, err)
	assert.True(t, ok)

	renamed, err := repo.Upsert(ctx, playerstat.Record{PlayerName: "A2", Games: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(1), renamed.ID, "renamed record is found by its new name")
}

func TestPlayerStatRepository_UpdateFieldsIgnoresUnknownFields(t *testing.T) {
	ctx := context.Background()
	repo := NewPlayerStatRepository(playerstat.Record{PlayerName: "A"})

	ok, err := repo.UpdateFields(ctx, 1, map[playerstat.Field]any{
		playerstat.FieldHomeRun: int64(42),
		"bogus_field":           "x",
	})
	require.NoError(t, err)
	assert.True(t, ok)

	got, _, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.HomeRun)

	ok, err = repo.UpdateFields(ctx, 1, map[playerstat.Field]any{"bogus_field": "x"})
	require.NoError(t, err)
	assert.True(t, ok, "only unknown fields leaves the record untouched")
}

func TestPlayerStatRepository_ConcurrentUpsertsSameKey(t *testing.T) {
	ctx := context.Background()
	repo := NewPlayerStatRepository()

	const writers = 32
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(n int64) {
			defer wg.Done()
			_, _ = repo.Upsert(ctx, playerstat.Record{PlayerName: "same", Games: n, Runs: n, Hits: n})
		}(int64(i))
	}

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for i := 0; i < 100; i++ {
			page, err := repo.List(ctx, playerstat.ListQuery{})
			if err != nil {
				t.Errorf("list: %v", err)
				return
			}
			for _, rec := range page.Records {
				if rec.Games != rec.Runs || rec.Runs != rec.Hits {
					t.Errorf("observed torn record: %+v", rec)
				}
			}
		}
	}()

	wg.Wait()
	<-readerDone

	page, err := repo.List(ctx, playerstat.ListQuery{})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	rec := page.Records[0]
	assert.Equal(t, rec.Games, rec.Runs)
	assert.Equal(t, rec.Runs, rec.Hits)
}

func TestPlayerStatRepository_RespectsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := NewPlayerStatRepository()
	err := repo.UpsertMany(ctx, []playerstat.Record{{PlayerName: "A"}})
	assert.ErrorIs(t, err, context.Canceled)
}
