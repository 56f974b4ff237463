package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrMissingDSN = errors.New("DATABASE_URL not set")

// ConnectPostgres opens a pool, checks it with a ping and makes sure the
// schema exists.
func ConnectPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, ErrMissingDSN
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	db, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres connection failed: %w", err)
	}

	log.Println("[DB] connected to PostgreSQL")

	if err := InitSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return db, nil
}

// schema is applied in order on every start; each statement is idempotent.
var schema = []struct {
	name string
	sql  string
}{
	{"users", `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			password VARCHAR(255) NOT NULL,
			role VARCHAR(50) NOT NULL DEFAULT 'PARENT',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`},
	{"families", `
		CREATE TABLE IF NOT EXISTS families (
			id TEXT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			owner_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			digest_email VARCHAR(255) NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`},
	{"family_members", `
		CREATE TABLE IF NOT EXISTS family_members (
			id TEXT PRIMARY KEY,
			family_id TEXT NOT NULL REFERENCES families(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			birth_date DATE NULL,
			conditions JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`},
	{"ingredients", `
		CREATE TABLE IF NOT EXISTS ingredients (
			id TEXT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			unit VARCHAR(50) NOT NULL,
			unit_price DOUBLE PRECISION NOT NULL DEFAULT 0,
			photo_url VARCHAR(500) NULL,
			allergens TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`},
	{"ingredients_name_idx", `
		CREATE INDEX IF NOT EXISTS ingredients_lower_name_idx ON ingredients (lower(name))
	`},
	{"dishes", `
		CREATE TABLE IF NOT EXISTS dishes (
			id TEXT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`},
	{"dish_items", `
		CREATE TABLE IF NOT EXISTS dish_items (
			dish_id TEXT NOT NULL REFERENCES dishes(id) ON DELETE CASCADE,
			position INT NOT NULL,
			ingredient_id TEXT NOT NULL,
			quantity DOUBLE PRECISION NOT NULL,
			name VARCHAR(255) NOT NULL DEFAULT '',
			unit VARCHAR(50) NOT NULL DEFAULT '',
			PRIMARY KEY (dish_id, position)
		)
	`},
	{"stock_items", `
		CREATE TABLE IF NOT EXISTS stock_items (
			family_id TEXT NOT NULL REFERENCES families(id) ON DELETE CASCADE,
			ingredient_id TEXT NOT NULL,
			quantity DOUBLE PRECISION NOT NULL CHECK (quantity >= 0),
			unit VARCHAR(50) NOT NULL DEFAULT '',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (family_id, ingredient_id)
		)
	`},
	{"meal_plan_entries", `
		CREATE TABLE IF NOT EXISTS meal_plan_entries (
			id TEXT PRIMARY KEY,
			family_id TEXT NOT NULL REFERENCES families(id) ON DELETE CASCADE,
			plan_date DATE NOT NULL,
			slot VARCHAR(20) NOT NULL CHECK (slot IN ('breakfast', 'lunch', 'dinner', 'snack')),
			dish_id TEXT NOT NULL,
			note TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`},
	{"meal_plan_entries_idx", `
		CREATE INDEX IF NOT EXISTS meal_plan_entries_family_date_idx
		ON meal_plan_entries (family_id, plan_date)
	`},
}

// InitSchema creates or updates the database schema.
func InitSchema(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt.sql); err != nil {
			return fmt.Errorf("%s: %w", stmt.name, err)
		}
	}

	log.Println("[DB] schema initialized")
	return nil
}
