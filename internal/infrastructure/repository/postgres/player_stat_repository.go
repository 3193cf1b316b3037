package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/baseball-stats/internal/domain/playerstat"
	qb "github.com/riskibarqy/baseball-stats/internal/platform/querybuilder"
)

type PlayerStatRepository struct {
	db *sqlx.DB
}

// Canonical field names double as column names.
var playerStatSelectColumns = func() []string {
	cols := []string{string(playerstat.FieldID)}
	for _, f := range playerstat.Fields() {
		cols = append(cols, string(f))
	}
	return cols
}()

func NewPlayerStatRepository(db *sqlx.DB) *PlayerStatRepository {
	return &PlayerStatRepository{db: db}
}

func (r *PlayerStatRepository) Upsert(ctx context.Context, rec playerstat.Record) (playerstat.Record, error) {
	id, err := upsertPlayerStat(ctx, r.db, rec)
	if err != nil {
		return playerstat.Record{}, err
	}
	rec.ID = id
	return rec, nil
}

func (r *PlayerStatRepository) UpsertMany(ctx context.Context, recs []playerstat.Record) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert player stats: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i, rec := range recs {
		if _, err := upsertPlayerStat(ctx, tx, rec); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert player stats tx: %w", err)
	}
	return nil
}

func upsertPlayerStat(ctx context.Context, q sqlx.QueryerContext, rec playerstat.Record) (int64, error) {
	query, args, err := qb.UpsertModel(playerStatTable, newPlayerStatInsertModel(rec), playerStatConflictTarget, "RETURNING id")
	if err != nil {
		return 0, fmt.Errorf("build upsert player stat query: %w", err)
	}

	var id int64
	if err := sqlx.GetContext(ctx, q, &id, query, args...); err != nil {
		return 0, fmt.Errorf("upsert player stat player_name=%q: %w", rec.PlayerName, err)
	}
	return id, nil
}

// List reads the count and the page inside one REPEATABLE READ transaction so
// both come from the same snapshot.
func (r *PlayerStatRepository) List(ctx context.Context, query playerstat.ListQuery) (playerstat.Page, error) {
	countQuery, countArgs, err := qb.Select("COUNT(*)").From(playerStatTable).ToSQL()
	if err != nil {
		return playerstat.Page{}, fmt.Errorf("build count player stats query: %w", err)
	}

	pageQuery, pageArgs, err := qb.Select(playerStatSelectColumns...).
		From(playerStatTable).
		OrderBy(sqlOrdering(query.Ordering)...).
		Limit(query.Limit).
		Offset(max(query.Offset, 0)).
		ToSQL()
	if err != nil {
		return playerstat.Page{}, fmt.Errorf("build list player stats query: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return playerstat.Page{}, fmt.Errorf("begin tx list player stats: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var total int
	if err := tx.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return playerstat.Page{}, fmt.Errorf("count player stats: %w", err)
	}

	var rows []playerStatTableModel
	if err := tx.SelectContext(ctx, &rows, pageQuery, pageArgs...); err != nil {
		return playerstat.Page{}, fmt.Errorf("select player stats: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return playerstat.Page{}, fmt.Errorf("commit list player stats tx: %w", err)
	}

	out := make([]playerstat.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return playerstat.Page{Records: out, Total: total}, nil
}

// sqlOrdering appends id as the final key so pages are deterministic and
// unordered reads follow insertion order.
func sqlOrdering(ordering playerstat.Ordering) []qb.Order {
	out := make([]qb.Order, 0, len(ordering)+1)
	hasID := false
	for _, term := range ordering {
		if term.Field == playerstat.FieldID {
			hasID = true
		}
		out = append(out, qb.Order{Column: string(term.Field), Desc: term.Desc})
	}
	if !hasID {
		out = append(out, qb.Order{Column: string(playerstat.FieldID)})
	}
	return out
}

func (r *PlayerStatRepository) GetByID(ctx context.Context, id int64) (playerstat.Record, bool, error) {
	query, args, err := qb.Select(playerStatSelectColumns...).
		From(playerStatTable).
		Where(qb.Eq("id", id)).
		Limit(1).
		ToSQL()
	if err != nil {
		return playerstat.Record{}, false, fmt.Errorf("build get player stat query: %w", err)
	}

	var row playerStatTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return playerstat.Record{}, false, nil
		}
		return playerstat.Record{}, false, fmt.Errorf("get player stat id=%d: %w", id, err)
	}
	return row.toDomain(), true, nil
}

func (r *PlayerStatRepository) UpdateFields(ctx context.Context, id int64, values map[playerstat.Field]any) (bool, error) {
	builder := qb.Update(playerStatTable)
	sets := 0
	// Column order follows the schema so the statement text is stable.
	for _, f := range playerstat.Fields() {
		if v, ok := values[f]; ok {
			builder.Set(string(f), v)
			sets++
		}
	}
	if sets == 0 {
		_, exists, err := r.GetByID(ctx, id)
		return exists, err
	}

	query, args, err := builder.Where(qb.Eq("id", id)).Suffix("RETURNING id").ToSQL()
	if err != nil {
		return false, fmt.Errorf("build update player stat query: %w", err)
	}

	var updatedID int64
	if err := r.db.GetContext(ctx, &updatedID, query, args...); err != nil {
		switch {
		case isNotFound(err):
			return false, nil
		case isUniqueViolation(err):
			return false, playerstat.ErrDuplicatePlayerName
		default:
			return false, fmt.Errorf("update player stat id=%d: %w", id, err)
		}
	}
	return true, nil
}
