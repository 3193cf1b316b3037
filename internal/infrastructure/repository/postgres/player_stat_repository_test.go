package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/baseball-stats/internal/domain/playerstat"
)

func setupMockDB(t *testing.T) (*PlayerStatRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})

	return NewPlayerStatRepository(sqlx.NewDb(db, "postgres")), mock
}

func selectColumnsSQL() string {
	return strings.Join(playerStatSelectColumns, ", ")
}

func playerStatRow(id int64, name, position string, homeRun int64) []driver.Value {
	return []driver.Value{
		id, name, position,
		int64(0), int64(0), int64(0), int64(0), int64(0), int64(0),
		homeRun,
		int64(0), int64(0), int64(0), int64(0), int64(0),
		0.0, 0.0, 0.0, 0.0,
	}
}

var upsertSQLPattern = regexp.QuoteMeta("INSERT INTO player (player_name, position, games") +
	".*" + regexp.QuoteMeta("ON CONFLICT (player_name) DO UPDATE SET position = EXCLUDED.position") +
	".*" + regexp.QuoteMeta("on_base_plus_slugging = EXCLUDED.on_base_plus_slugging RETURNING id")

func TestPlayerStatRepository_Upsert(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectQuery(upsertSQLPattern).
		WithArgs("A", "", int64(10), int64(0), int64(0), int64(0), int64(0), int64(0), int64(0), int64(0),
			int64(0), int64(0), int64(0), int64(0), 0.0, 0.0, 0.0, 0.0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))

	got, err := repo.Upsert(context.Background(), playerstat.Record{PlayerName: "A", Games: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.ID)
	assert.Equal(t, int64(10), got.Games)
}

func TestPlayerStatRepository_UpsertManyRunsInOneTransaction(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(upsertSQLPattern).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery(upsertSQLPattern).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(2)))
	mock.ExpectCommit()

	err := repo.UpsertMany(context.Background(), []playerstat.Record{{PlayerName: "A"}, {PlayerName: "B"}})
	require.NoError(t, err)
}

func TestPlayerStatRepository_UpsertManyRollsBackOnFailure(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(upsertSQLPattern).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery(upsertSQLPattern).WillReturnError(errors.New("value too long for type character varying(100)"))
	mock.ExpectRollback()

	err := repo.UpsertMany(context.Background(), []playerstat.Record{{PlayerName: "A"}, {PlayerName: strings.Repeat("x", 101)}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 1")
}

func TestPlayerStatRepository_UpsertManyEmptyIsNoop(t *testing.T) {
	repo, _ := setupMockDB(t)
	require.NoError(t, repo.UpsertMany(context.Background(), nil))
}

func TestPlayerStatRepository_ListUsesSnapshotTransaction(t *testing.T) {
	repo, mock := setupMockDB(t)

	ordering, err := playerstat.ParseOrdering("position,-home_run")
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM player")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+selectColumnsSQL()+" FROM player ORDER BY position ASC, home_run DESC, id ASC LIMIT $1 OFFSET $2")).
		WithArgs(int64(10), int64(10)).
		WillReturnRows(sqlmock.NewRows(playerStatSelectColumns).
			AddRow(playerStatRow(11, "K", "1B", 30)...).
			AddRow(playerStatRow(12, "L", "1B", 12)...))
	mock.ExpectCommit()

	page, err := repo.List(context.Background(), playerstat.ListQuery{Ordering: ordering, Offset: 10, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 25, page.Total)
	require.Len(t, page.Records, 2)
	assert.Equal(t, playerstat.Record{ID: 11, PlayerName: "K", Position: "1B", HomeRun: 30}, page.Records[0])
}

func TestPlayerStatRepository_ListNaturalOrderUnbounded(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM player")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + selectColumnsSQL() + " FROM player ORDER BY id ASC")).
		WillReturnRows(sqlmock.NewRows(playerStatSelectColumns))
	mock.ExpectCommit()

	page, err := repo.List(context.Background(), playerstat.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
	assert.Empty(t, page.Records)
}

func TestPlayerStatRepository_GetByID(t *testing.T) {
	repo, mock := setupMockDB(t)
	query := regexp.QuoteMeta("SELECT " + selectColumnsSQL() + " FROM player WHERE id = $1 LIMIT $2")

	mock.ExpectQuery(query).WithArgs(int64(7), int64(1)).
		WillReturnRows(sqlmock.NewRows(playerStatSelectColumns).AddRow(playerStatRow(7, "A", "C", 4)...))
	mock.ExpectQuery(query).WithArgs(int64(8), int64(1)).
		WillReturnRows(sqlmock.NewRows(playerStatSelectColumns))

	got, exists, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "A", got.PlayerName)
	assert.Equal(t, int64(4), got.HomeRun)

	_, exists, err = repo.GetByID(context.Background(), 8)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPlayerStatRepository_UpdateFields(t *testing.T) {
	t.Run("updates known columns", func(t *testing.T) {
		repo, mock := setupMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE player SET position = $1, home_run = $2 WHERE id = $3 RETURNING id")).
			WithArgs("CF", int64(42), int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

		ok, err := repo.UpdateFields(context.Background(), 7, map[playerstat.Field]any{
			playerstat.FieldHomeRun:  int64(42),
			playerstat.FieldPosition: "CF",
		})
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("missing id", func(t *testing.T) {
		repo, mock := setupMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE player SET home_run = $1 WHERE id = $2 RETURNING id")).
			WithArgs(int64(42), int64(99)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		ok, err := repo.UpdateFields(context.Background(), 99, map[playerstat.Field]any{playerstat.FieldHomeRun: int64(42)})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("rename onto existing name", func(t *testing.T) {
		repo, mock := setupMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE player SET player_name = $1 WHERE id = $2 RETURNING id")).
			WithArgs("B", int64(1)).
			WillReturnError(&pq.Error{Code: "23505"})

		_, err := repo.UpdateFields(context.Background(), 1, map[playerstat.Field]any{playerstat.FieldPlayerName: "B"})
		assert.ErrorIs(t, err, playerstat.ErrDuplicatePlayerName)
	})

	t.Run("no known fields checks existence", func(t *testing.T) {
		repo, mock := setupMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT " + selectColumnsSQL() + " FROM player WHERE id = $1 LIMIT $2")).
			WithArgs(int64(3), int64(1)).
			WillReturnRows(sqlmock.NewRows(playerStatSelectColumns).AddRow(playerStatRow(3, "C", "P", 0)...))

		ok, err := repo.UpdateFields(context.Background(), 3, nil)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
