package store

import (
	"context"
	"fmt"
)

// New builds the configured backend: "postgres" (default) dials dsn with
// pgxpool; "sqlite" opens path with database/sql + mattn/go-sqlite3.
func New(ctx context.Context, backend, dsn, path string) (Store, error) {
	switch backend {
	case "", "postgres":
		return NewPostgres(ctx, dsn)
	case "sqlite":
		return NewSQLite(path)
	default:
		return nil, fmt.Errorf("store: unsupported DB_BACKEND %q", backend)
	}
}
