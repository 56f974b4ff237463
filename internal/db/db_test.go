package db

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
)

func TestConnectPostgres(t *testing.T) {
	t.Run("missing DATABASE_URL", func(t *testing.T) {
		if _, err := ConnectPostgres(context.Background(), ""); !errors.Is(err, ErrMissingDSN) {
			t.Fatalf("expected ErrMissingDSN, got %v", err)
		}
	})

	t.Run("malformed DATABASE_URL", func(t *testing.T) {
		if _, err := ConnectPostgres(context.Background(), "postgres://%zz"); err == nil {
			t.Fatal("expected parse error")
		}
	})

	t.Run("valid DATABASE_URL should connect", func(t *testing.T) {
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			t.Skip("DATABASE_URL not set, skipping integration test")
		}

		pool, err := ConnectPostgres(context.Background(), dsn)
		if err != nil {
			t.Fatalf("connect: %v", err)
		}
		defer pool.Close()

		// a second run must be a no-op
		if err := InitSchema(context.Background(), pool); err != nil {
			t.Fatalf("re-init schema: %v", err)
		}
	})
}

func TestSchemaIsIdempotent(t *testing.T) {
	for _, stmt := range schema {
		if !strings.Contains(stmt.sql, "IF NOT EXISTS") {
			t.Errorf("statement %s is not idempotent", stmt.name)
		}
	}
}
