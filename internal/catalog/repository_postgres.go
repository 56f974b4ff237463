package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ Repository = (*PostgresRepository)(nil)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const ingredientColumns = `id, name, unit, unit_price, COALESCE(photo_url, ''), allergens, created_at`

func scanIngredient(row pgx.Row) (*Ingredient, error) {
	var ing Ingredient
	err := row.Scan(
		&ing.ID,
		&ing.Name,
		&ing.Unit,
		&ing.UnitPrice,
		&ing.PhotoURL,
		&ing.Allergens,
		&ing.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ing, nil
}

// --------------------------------------------------
// Ingredients
// --------------------------------------------------

func (r *PostgresRepository) CreateIngredient(ctx context.Context, ing *Ingredient) error {
	if ing.ID == "" {
		ing.ID = uuid.New().String()
	}
	if ing.Allergens == nil {
		ing.Allergens = []string{}
	}

	return r.db.QueryRow(ctx, `
		INSERT INTO ingredients (id, name, unit, unit_price, photo_url, allergens)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
		RETURNING created_at
	`,
		ing.ID,
		ing.Name,
		ing.Unit,
		ing.UnitPrice,
		ing.PhotoURL,
		ing.Allergens,
	).Scan(&ing.CreatedAt)
}

func (r *PostgresRepository) UpdateIngredient(ctx context.Context, ing *Ingredient) error {
	if ing.Allergens == nil {
		ing.Allergens = []string{}
	}

	cmd, err := r.db.Exec(ctx, `
		UPDATE ingredients
		SET name = $2,
		    unit = $3,
		    unit_price = $4,
		    allergens = $5
		WHERE id = $1
	`, ing.ID, ing.Name, ing.Unit, ing.UnitPrice, ing.Allergens)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteIngredient(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM ingredients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) GetIngredient(ctx context.Context, id string) (*Ingredient, error) {
	return scanIngredient(r.db.QueryRow(ctx, `
		SELECT `+ingredientColumns+`
		FROM ingredients
		WHERE id = $1
	`, id))
}

func (r *PostgresRepository) FindIngredientByName(ctx context.Context, name string) (*Ingredient, error) {
	return scanIngredient(r.db.QueryRow(ctx, `
		SELECT `+ingredientColumns+`
		FROM ingredients
		WHERE lower(name) = $1
		ORDER BY created_at ASC
		LIMIT 1
	`, NormalizeName(name)))
}

func (r *PostgresRepository) ListIngredients(ctx context.Context) ([]*Ingredient, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+ingredientColumns+`
		FROM ingredients
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Ingredient
	for rows.Next() {
		ing, err := scanIngredient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ing)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) SetIngredientPhoto(ctx context.Context, id string, url string) error {
	cmd, err := r.db.Exec(ctx, `
		UPDATE ingredients
		SET photo_url = $2
		WHERE id = $1
	`, id, url)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --------------------------------------------------
// Dishes
// --------------------------------------------------

func (r *PostgresRepository) CreateDish(ctx context.Context, dish *Dish) error {
	if dish.ID == "" {
		dish.ID = uuid.New().String()
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO dishes (id, name)
		VALUES ($1, $2)
		RETURNING created_at
	`, dish.ID, dish.Name).Scan(&dish.CreatedAt)
	if err != nil {
		return err
	}

	for i, item := range dish.Items {
		_, err := tx.Exec(ctx, `
			INSERT INTO dish_items (dish_id, position, ingredient_id, quantity, name, unit)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, dish.ID, i, item.IngredientID, item.Quantity, item.Name, item.Unit)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PostgresRepository) GetDish(ctx context.Context, id string) (*Dish, error) {
	var d Dish
	err := r.db.QueryRow(ctx, `
		SELECT id, name, created_at
		FROM dishes
		WHERE id = $1
	`, id).Scan(&d.ID, &d.Name, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT ingredient_id, quantity, name, unit
		FROM dish_items
		WHERE dish_id = $1
		ORDER BY position ASC
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item DishItem
		if err := rows.Scan(&item.IngredientID, &item.Quantity, &item.Name, &item.Unit); err != nil {
			return nil, err
		}
		d.Items = append(d.Items, item)
	}

	return &d, rows.Err()
}

func (r *PostgresRepository) ListDishes(ctx context.Context) ([]*Dish, error) {
	rows, err := r.db.Query(ctx, `
		SELECT
			d.id,
			d.name,
			d.created_at,
			di.ingredient_id,
			di.quantity,
			di.name,
			di.unit
		FROM dishes d
		LEFT JOIN dish_items di
		  ON di.dish_id = d.id
		ORDER BY d.name ASC, d.id ASC, di.position ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		out     []*Dish
		current *Dish
	)

	for rows.Next() {
		var (
			d          Dish
			ingID      *string
			quantity   *float64
			name, unit *string
		)
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedAt, &ingID, &quantity, &name, &unit); err != nil {
			return nil, err
		}

		if current == nil || current.ID != d.ID {
			current = &Dish{ID: d.ID, Name: d.Name, CreatedAt: d.CreatedAt}
			out = append(out, current)
		}

		// LEFT JOIN yields NULLs for dishes without items
		if ingID != nil {
			current.Items = append(current.Items, DishItem{
				IngredientID: *ingID,
				Quantity:     deref(quantity),
				Name:         derefString(name),
				Unit:         derefString(unit),
			})
		}
	}

	return out, rows.Err()
}

func (r *PostgresRepository) DeleteDish(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM dishes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
