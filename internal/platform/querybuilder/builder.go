// Package querybuilder renders the handful of Postgres statements the player
// store needs, with $n placeholders numbered in argument order. Table and
// column names are written verbatim and must come from trusted code.
package querybuilder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Condition is one WHERE term. Terms are joined with AND.
type Condition struct {
	column string
	value  any
}

// Eq matches column = value.
func Eq(column string, value any) Condition {
	return Condition{column: column, value: value}
}

// Order is one ORDER BY term.
type Order struct {
	Column string
	Desc   bool
}

func (o Order) String() string {
	if o.Desc {
		return o.Column + " DESC"
	}
	return o.Column + " ASC"
}

// writer accumulates statement text and its bound arguments.
type writer struct {
	sb   strings.Builder
	args []any
}

func (w *writer) raw(parts ...string) {
	for _, p := range parts {
		w.sb.WriteString(p)
	}
}

// bind appends v to the argument list and writes its placeholder.
func (w *writer) bind(v any) {
	w.args = append(w.args, v)
	w.sb.WriteString("$" + strconv.Itoa(len(w.args)))
}

func (w *writer) list(n int, item func(i int)) {
	for i := range n {
		if i > 0 {
			w.sb.WriteString(", ")
		}
		item(i)
	}
}

func (w *writer) where(conds []Condition) {
	for i, c := range conds {
		if i == 0 {
			w.raw(" WHERE ")
		} else {
			w.raw(" AND ")
		}
		w.raw(c.column, " = ")
		w.bind(c.value)
	}
}

func (w *writer) suffix(s string) {
	if s = strings.TrimSpace(s); s != "" {
		w.raw(" ", s)
	}
}

func (w *writer) done() (string, []any, error) {
	return w.sb.String(), w.args, nil
}

type SelectBuilder struct {
	columns []string
	table   string
	conds   []Condition
	orderBy []Order
	limit   int
	offset  int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: columns}
}

func (b *SelectBuilder) From(table string) *SelectBuilder { b.table = table; return b }

func (b *SelectBuilder) Where(conds ...Condition) *SelectBuilder {
	b.conds = append(b.conds, conds...)
	return b
}

func (b *SelectBuilder) OrderBy(orders ...Order) *SelectBuilder {
	b.orderBy = append(b.orderBy, orders...)
	return b
}

// Limit sets LIMIT; values <= 0 leave the result unbounded.
func (b *SelectBuilder) Limit(n int) *SelectBuilder { b.limit = n; return b }

func (b *SelectBuilder) Offset(n int) *SelectBuilder { b.offset = n; return b }

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	switch {
	case len(b.columns) == 0:
		return "", nil, errors.New("select: no columns")
	case strings.TrimSpace(b.table) == "":
		return "", nil, errors.New("select: no table")
	case b.offset < 0:
		return "", nil, fmt.Errorf("select: negative offset %d", b.offset)
	}

	var w writer
	w.raw("SELECT ", strings.Join(b.columns, ", "), " FROM ", b.table)
	w.where(b.conds)
	if len(b.orderBy) > 0 {
		w.raw(" ORDER BY ")
		w.list(len(b.orderBy), func(i int) { w.raw(b.orderBy[i].String()) })
	}
	if b.limit > 0 {
		w.raw(" LIMIT ")
		w.bind(b.limit)
	}
	if b.offset > 0 {
		w.raw(" OFFSET ")
		w.bind(b.offset)
	}
	return w.done()
}

type InsertBuilder struct {
	table      string
	columns    []string
	rows       [][]any
	conflict   []string
	updateCols []string
	suffix     string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = columns
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, values)
	return b
}

// OnConflictUpdate renders ON CONFLICT (target) DO UPDATE SET col = EXCLUDED.col
// for every given column.
func (b *InsertBuilder) OnConflictUpdate(target []string, columns ...string) *InsertBuilder {
	b.conflict, b.updateCols = target, columns
	return b
}

func (b *InsertBuilder) Suffix(sql string) *InsertBuilder { b.suffix = sql; return b }

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	switch {
	case strings.TrimSpace(b.table) == "":
		return "", nil, errors.New("insert: no table")
	case len(b.columns) == 0:
		return "", nil, errors.New("insert: no columns")
	case len(b.rows) == 0:
		return "", nil, errors.New("insert: no rows")
	case len(b.conflict) > 0 && len(b.updateCols) == 0:
		return "", nil, errors.New("insert: conflict target without update columns")
	}
	for i, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert: row %d has %d values, want %d", i, len(row), len(b.columns))
		}
	}

	var w writer
	w.raw("INSERT INTO ", b.table, " (", strings.Join(b.columns, ", "), ") VALUES ")
	w.list(len(b.rows), func(i int) {
		row := b.rows[i]
		w.raw("(")
		w.list(len(row), func(j int) { w.bind(row[j]) })
		w.raw(")")
	})
	if len(b.conflict) > 0 {
		w.raw(" ON CONFLICT (", strings.Join(b.conflict, ", "), ") DO UPDATE SET ")
		w.list(len(b.updateCols), func(i int) {
			col := b.updateCols[i]
			w.raw(col, " = EXCLUDED.", col)
		})
	}
	w.suffix(b.suffix)
	return w.done()
}

type UpdateBuilder struct {
	table  string
	sets   []Condition
	conds  []Condition
	suffix string
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, Condition{column: column, value: value})
	return b
}

func (b *UpdateBuilder) Where(conds ...Condition) *UpdateBuilder {
	b.conds = append(b.conds, conds...)
	return b
}

func (b *UpdateBuilder) Suffix(sql string) *UpdateBuilder { b.suffix = sql; return b }

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	switch {
	case strings.TrimSpace(b.table) == "":
		return "", nil, errors.New("update: no table")
	case len(b.sets) == 0:
		return "", nil, errors.New("update: nothing to set")
	}

	var w writer
	w.raw("UPDATE ", b.table, " SET ")
	w.list(len(b.sets), func(i int) {
		w.raw(b.sets[i].column, " = ")
		w.bind(b.sets[i].value)
	})
	w.where(b.conds)
	w.suffix(b.suffix)
	return w.done()
}
