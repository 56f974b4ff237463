package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, item *Item) error {
	query := `
		INSERT INTO stock_items (family_id, ingredient_id, quantity, unit, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (family_id, ingredient_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, unit = EXCLUDED.unit, updated_at = NOW()
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		item.FamilyID, item.IngredientID, item.Quantity, item.Unit,
	).Scan(&item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Adjust(ctx context.Context, familyID, ingredientID string, delta float64, unit string) (*Item, error) {
	query := `
		INSERT INTO stock_items (family_id, ingredient_id, quantity, unit, updated_at)
		VALUES ($1, $2, GREATEST($3::double precision, 0), $4, NOW())
		ON CONFLICT (family_id, ingredient_id)
		DO UPDATE SET quantity = GREATEST(stock_items.quantity + $3::double precision, 0), updated_at = NOW()
		RETURNING family_id, ingredient_id, quantity, unit, updated_at
	`
	it := &Item{}
	err := r.db.QueryRow(ctx, query, familyID, ingredientID, delta, unit).Scan(
		&it.FamilyID, &it.IngredientID, &it.Quantity, &it.Unit, &it.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("adjust stock: %w", err)
	}
	return it, nil
}

func (r *PostgresRepository) Get(ctx context.Context, familyID, ingredientID string) (*Item, error) {
	query := `
		SELECT family_id, ingredient_id, quantity, unit, updated_at
		FROM stock_items WHERE family_id = $1 AND ingredient_id = $2
	`
	it := &Item{}
	err := r.db.QueryRow(ctx, query, familyID, ingredientID).Scan(
		&it.FamilyID, &it.IngredientID, &it.Quantity, &it.Unit, &it.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return it, nil
}

func (r *PostgresRepository) List(ctx context.Context, familyID string) ([]*Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT s.family_id, s.ingredient_id, COALESCE(i.name, ''), s.quantity, s.unit, s.updated_at
		FROM stock_items s
		LEFT JOIN ingredients i ON i.id = s.ingredient_id
		WHERE s.family_id = $1
		ORDER BY s.ingredient_id
	`, familyID)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()

	var out []*Item
	for rows.Next() {
		it := &Item{}
		if err := rows.Scan(&it.FamilyID, &it.IngredientID, &it.Name, &it.Quantity, &it.Unit, &it.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Delete(ctx context.Context, familyID, ingredientID string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM stock_items WHERE family_id = $1 AND ingredient_id = $2`,
		familyID, ingredientID,
	)
	if err != nil {
		return fmt.Errorf("delete stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
