package playerstat

import (
	"context"
	"errors"
)

// ErrDuplicatePlayerName is returned when an edit renames a record onto a
// player name that another record already holds.
var ErrDuplicatePlayerName = errors.New("player name already exists")

// ListQuery selects a window of the ordered store. Limit <= 0 is unbounded.
type ListQuery struct {
	Ordering Ordering
	Offset   int
	Limit    int
}

// Page is one window plus the cardinality of the whole store.
type Page struct {
	Records []Record
	Total   int
}

// Repository describes player stat persistence needs from use cases.
//
// Upsert and UpsertMany key on PlayerName and replace every non-key field.
// List reads Records and Total from the same snapshot.
type Repository interface {
	Upsert(ctx context.Context, rec Record) (Record, error)
	UpsertMany(ctx context.Context, recs []Record) error
	List(ctx context.Context, query ListQuery) (Page, error)
	GetByID(ctx context.Context, id int64) (Record, bool, error)
	UpdateFields(ctx context.Context, id int64, values map[Field]any) (bool, error)
}
