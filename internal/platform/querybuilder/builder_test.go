package querybuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sqlBuilder interface {
	ToSQL() (string, []any, error)
}

func TestToSQL(t *testing.T) {
	tests := []struct {
		name      string
		builder   sqlBuilder
		wantQuery string
		wantArgs  []any
	}{
		{
			name: "select with filters and paging",
			builder: Select("id", "player_name").
				From("player").
				Where(Eq("position", "SS"), Eq("games", 10)).
				OrderBy(Order{Column: "home_run", Desc: true}, Order{Column: "id"}).
				Limit(10).
				Offset(20),
			wantQuery: "SELECT id, player_name FROM player WHERE position = $1 AND games = $2 ORDER BY home_run DESC, id ASC LIMIT $3 OFFSET $4",
			wantArgs:  []any{"SS", 10, 10, 20},
		},
		{
			name:      "select unbounded",
			builder:   Select("COUNT(*)").From("player"),
			wantQuery: "SELECT COUNT(*) FROM player",
		},
		{
			name: "insert on conflict",
			builder: InsertInto("player").
				Columns("player_name", "games").
				Values("A", 10).
				OnConflictUpdate([]string{"player_name"}, "games").
				Suffix("RETURNING id"),
			wantQuery: "INSERT INTO player (player_name, games) VALUES ($1, $2) ON CONFLICT (player_name) DO UPDATE SET games = EXCLUDED.games RETURNING id",
			wantArgs:  []any{"A", 10},
		},
		{
			name: "insert several rows",
			builder: InsertInto("player").
				Columns("player_name", "games").
				Values("A", 1).
				Values("B", 2),
			wantQuery: "INSERT INTO player (player_name, games) VALUES ($1, $2), ($3, $4)",
			wantArgs:  []any{"A", 1, "B", 2},
		},
		{
			name: "update",
			builder: Update("player").
				Set("home_run", int64(42)).
				Set("position", "CF").
				Where(Eq("id", int64(7))).
				Suffix("RETURNING id"),
			wantQuery: "UPDATE player SET home_run = $1, position = $2 WHERE id = $3 RETURNING id",
			wantArgs:  []any{int64(42), "CF", int64(7)},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			query, args, err := tc.builder.ToSQL()
			require.NoError(t, err)
			assert.Equal(t, tc.wantQuery, query)
			assert.Equal(t, tc.wantArgs, args)
		})
	}
}

func TestToSQL_Errors(t *testing.T) {
	tests := map[string]sqlBuilder{
		"select without columns": Select().From("player"),
		"select without table":   Select("id"),
		"negative offset":        Select("id").From("player").Offset(-1),
		"insert short row":       InsertInto("player").Columns("player_name", "games").Values("A"),
		"insert without rows":    InsertInto("player").Columns("player_name"),
		"conflict without sets":  InsertInto("player").Columns("id").Values(1).OnConflictUpdate([]string{"id"}),
		"update without sets":    Update("player").Where(Eq("id", 1)),
	}

	for name, b := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := b.ToSQL()
			assert.Error(t, err)
		})
	}
}

func TestUpsertModel(t *testing.T) {
	type row struct {
		PlayerName string  `db:"player_name"`
		Games      int64   `db:"games"`
		AVG        float64 `db:"avg,omitempty"`
		internal   string
		Skipped    string `db:"-"`
		Untagged   string
	}

	query, args, err := UpsertModel("player", &row{PlayerName: "A", Games: 3, AVG: 0.25}, []string{"player_name"}, "RETURNING id")
	require.NoError(t, err)
	assert.Equal(t,
		"INSERT INTO player (player_name, games, avg) VALUES ($1, $2, $3) ON CONFLICT (player_name) DO UPDATE SET games = EXCLUDED.games, avg = EXCLUDED.avg RETURNING id",
		query,
	)
	assert.Equal(t, []any{"A", int64(3), 0.25}, args)
}

func TestUpsertModel_RejectsNonStruct(t *testing.T) {
	var nilPtr *struct{}
	for _, model := range []any{42, nilPtr, struct{ X int }{}} {
		_, _, err := UpsertModel("player", model, nil, "")
		assert.Error(t, err)
	}
}
