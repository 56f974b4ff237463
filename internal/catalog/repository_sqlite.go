package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

var _ Repository = (*SQLiteRepository)(nil)

// SQLiteRepository is a single-file catalog used for local development and
// small self-hosted installs (CATALOG_DRIVER=sqlite).
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (or creates) the catalog database at path.
func NewSQLiteRepository(path string) (*SQLiteRepository, error) {
	if path == "" {
		path = "familymeal.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer at a time keeps sqlite from returning SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if err := initSQLiteSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteRepository{db: db}, nil
}

func initSQLiteSchema(db *sql.DB) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON`,
		`CREATE TABLE IF NOT EXISTS ingredients (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			name_key TEXT NOT NULL,
			unit TEXT NOT NULL,
			unit_price REAL NOT NULL DEFAULT 0,
			photo_url TEXT NOT NULL DEFAULT '',
			allergens TEXT NOT NULL DEFAULT '[]',
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS ingredients_name_key ON ingredients (name_key)`,
		`CREATE TABLE IF NOT EXISTS dishes (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS dish_items (
			dish_id TEXT NOT NULL REFERENCES dishes(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			ingredient_id TEXT NOT NULL,
			quantity REAL NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			unit TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (dish_id, position)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("init sqlite schema: %w", err)
		}
	}
	return nil
}

// Close releases the underlying database handle.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteIngredient(row rowScanner) (*Ingredient, error) {
	var (
		ing       Ingredient
		allergens string
		created   int64
	)
	err := row.Scan(&ing.ID, &ing.Name, &ing.Unit, &ing.UnitPrice, &ing.PhotoURL, &allergens, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(allergens), &ing.Allergens); err != nil {
		return nil, fmt.Errorf("decode allergens: %w", err)
	}
	ing.CreatedAt = time.Unix(0, created)
	return &ing, nil
}

func encodeAllergens(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	return string(b), err
}

const sqliteIngredientColumns = `id, name, unit, unit_price, photo_url, allergens, created_at`

func (r *SQLiteRepository) CreateIngredient(ctx context.Context, ing *Ingredient) error {
	if ing.ID == "" {
		ing.ID = uuid.New().String()
	}
	if ing.CreatedAt.IsZero() {
		ing.CreatedAt = time.Now()
	}

	allergens, err := encodeAllergens(ing.Allergens)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO ingredients (id, name, name_key, unit, unit_price, photo_url, allergens, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, ing.ID, ing.Name, NormalizeName(ing.Name), ing.Unit, ing.UnitPrice, ing.PhotoURL, allergens, ing.CreatedAt.UnixNano())
	return err
}

func (r *SQLiteRepository) UpdateIngredient(ctx context.Context, ing *Ingredient) error {
	allergens, err := encodeAllergens(ing.Allergens)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE ingredients
		SET name = ?, name_key = ?, unit = ?, unit_price = ?, allergens = ?
		WHERE id = ?
	`, ing.Name, NormalizeName(ing.Name), ing.Unit, ing.UnitPrice, allergens, ing.ID)
	return affectedOrNotFound(res, err)
}

func (r *SQLiteRepository) DeleteIngredient(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ingredients WHERE id = ?`, id)
	return affectedOrNotFound(res, err)
}

func (r *SQLiteRepository) GetIngredient(ctx context.Context, id string) (*Ingredient, error) {
	return scanSQLiteIngredient(r.db.QueryRowContext(ctx,
		`SELECT `+sqliteIngredientColumns+` FROM ingredients WHERE id = ?`, id))
}

func (r *SQLiteRepository) FindIngredientByName(ctx context.Context, name string) (*Ingredient, error) {
	return scanSQLiteIngredient(r.db.QueryRowContext(ctx, `
		SELECT `+sqliteIngredientColumns+`
		FROM ingredients
		WHERE name_key = ?
		ORDER BY created_at ASC
		LIMIT 1
	`, NormalizeName(name)))
}

func (r *SQLiteRepository) ListIngredients(ctx context.Context) ([]*Ingredient, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sqliteIngredientColumns+` FROM ingredients ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*Ingredient
	for rows.Next() {
		ing, err := scanSQLiteIngredient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ing)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) SetIngredientPhoto(ctx context.Context, id string, url string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE ingredients SET photo_url = ? WHERE id = ?`, url, id)
	return affectedOrNotFound(res, err)
}

func (r *SQLiteRepository) CreateDish(ctx context.Context, dish *Dish) error {
	if dish.ID == "" {
		dish.ID = uuid.New().String()
	}
	if dish.CreatedAt.IsZero() {
		dish.CreatedAt = time.Now()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO dishes (id, name, created_at) VALUES (?, ?, ?)`,
		dish.ID, dish.Name, dish.CreatedAt.UnixNano(),
	); err != nil {
		return err
	}

	for i, item := range dish.Items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO dish_items (dish_id, position, ingredient_id, quantity, name, unit)
			VALUES (?, ?, ?, ?, ?, ?)
		`, dish.ID, i, item.IngredientID, item.Quantity, item.Name, item.Unit); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *SQLiteRepository) GetDish(ctx context.Context, id string) (*Dish, error) {
	var (
		d       Dish
		created int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM dishes WHERE id = ?`, id,
	).Scan(&d.ID, &d.Name, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	d.CreatedAt = time.Unix(0, created)

	items, err := r.dishItems(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Items = items
	return &d, nil
}

func (r *SQLiteRepository) dishItems(ctx context.Context, dishID string) ([]DishItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ingredient_id, quantity, name, unit
		FROM dish_items
		WHERE dish_id = ?
		ORDER BY position ASC
	`, dishID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []DishItem
	for rows.Next() {
		var item DishItem
		if err := rows.Scan(&item.IngredientID, &item.Quantity, &item.Name, &item.Unit); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *SQLiteRepository) ListDishes(ctx context.Context) ([]*Dish, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM dishes ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, err
	}

	var out []*Dish
	for rows.Next() {
		var (
			d       Dish
			created int64
		)
		if err := rows.Scan(&d.ID, &d.Name, &created); err != nil {
			_ = rows.Close()
			return nil, err
		}
		d.CreatedAt = time.Unix(0, created)
		out = append(out, &d)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	// close before issuing item queries: the pool holds a single connection
	_ = rows.Close()

	for _, d := range out {
		items, err := r.dishItems(ctx, d.ID)
		if err != nil {
			return nil, err
		}
		d.Items = items
	}
	return out, nil
}

func (r *SQLiteRepository) DeleteDish(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM dishes WHERE id = ?`, id)
	return affectedOrNotFound(res, err)
}

func affectedOrNotFound(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
