// Package database opens the traced Postgres handle shared by the API and the
// migration tool, and owns the DSN tweaks both of them apply.
package database

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const (
	driverName = "postgres"

	binaryResultParam = "disable_prepared_binary_result"

	// MaxTracedQueryLength caps db.statement attributes.
	MaxTracedQueryLength = 512
)

type Options struct {
	URL                  string
	DisableBinaryResults bool
	MaxOpenConns         int
	MaxIdleConns         int
}

// Open connects, pings and returns a handle whose queries are traced.
func Open(ctx context.Context, opts Options) (*sqlx.DB, error) {
	dsn := opts.URL
	if opts.DisableBinaryResults {
		dsn = DisableBinaryResults(dsn)
	}

	db, err := otelsqlx.Open(driverName, dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(Name(dsn)),
		otelsql.WithQueryFormatter(FormatQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// DisableBinaryResults adds disable_prepared_binary_result=yes to URL style
// DSNs unless the caller already chose a value. Anything unparsable is
// returned untouched and left for the driver to reject.
func DisableBinaryResults(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return raw
	}

	q := u.Query()
	if q.Get(binaryResultParam) != "" {
		return raw
	}
	q.Set(binaryResultParam, "yes")
	u.RawQuery = q.Encode()
	return u.String()
}

// Name extracts the database name from either a URL or a key=value DSN.
func Name(raw string) string {
	raw = strings.TrimSpace(raw)

	if u, err := url.Parse(raw); err == nil && u.Scheme != "" {
		return strings.TrimSpace(strings.TrimPrefix(u.Path, "/"))
	}

	for _, field := range strings.Fields(raw) {
		key, value, ok := strings.Cut(field, "=")
		if ok && key == "dbname" {
			return strings.Trim(value, `"'`)
		}
	}
	return ""
}

// FormatQuery collapses whitespace and truncates long statements.
func FormatQuery(query string) string {
	query = strings.Join(strings.Fields(query), " ")
	if len(query) <= MaxTracedQueryLength {
		return query
	}
	return query[:MaxTracedQueryLength] + "..."
}
