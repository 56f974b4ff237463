package catalog

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// OpenStore picks the catalog backend. The returned func releases it and is
// never nil.
func OpenStore(driver string, pool *pgxpool.Pool, sqlitePath string) (Repository, func() error, error) {
	noop := func() error { return nil }

	switch driver {
	case "", DriverPostgres:
		if pool == nil {
			return nil, noop, fmt.Errorf("postgres catalog needs a database pool")
		}
		return NewPostgresRepository(pool), noop, nil
	case DriverSQLite:
		r, err := NewSQLiteRepository(sqlitePath)
		if err != nil {
			return nil, noop, err
		}
		return r, r.Close, nil
	case DriverMemory:
		return NewMemoryRepository(), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown CATALOG_DRIVER %q", driver)
	}
}
