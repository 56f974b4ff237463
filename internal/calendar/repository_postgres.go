package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const entryColumns = `
	e.id, e.family_id, e.plan_date, e.slot, e.dish_id, COALESCE(d.name, ''), e.note, e.created_at
`

func scanEntry(row pgx.Row) (*Entry, error) {
	e := &Entry{}
	var slot string
	if err := row.Scan(&e.ID, &e.FamilyID, &e.Date, &slot, &e.DishID, &e.DishName, &e.Note, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Slot = Slot(slot)
	e.Date = DayOf(e.Date)
	return e, nil
}

func (r *PostgresRepository) Create(ctx context.Context, e *Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}

	query := `
		INSERT INTO meal_plan_entries (id, family_id, plan_date, slot, dish_id, note)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		e.ID, e.FamilyID, DayOf(e.Date), string(e.Slot), e.DishID, e.Note,
	).Scan(&e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert plan entry: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*Entry, error) {
	query := `SELECT ` + entryColumns + `
		FROM meal_plan_entries e
		LEFT JOIN dishes d ON d.id = e.dish_id
		WHERE e.id = $1
	`
	e, err := scanEntry(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get plan entry: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM meal_plan_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete plan entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ListRange(ctx context.Context, familyID string, from, to time.Time) ([]Entry, error) {
	query := `SELECT ` + entryColumns + `
		FROM meal_plan_entries e
		LEFT JOIN dishes d ON d.id = e.dish_id
		WHERE e.family_id = $1 AND e.plan_date BETWEEN $2 AND $3
		ORDER BY e.plan_date,
			array_position(ARRAY['breakfast','lunch','dinner','snack'], e.slot),
			e.created_at
	`
	rows, err := r.db.Query(ctx, query, familyID, DayOf(from), DayOf(to))
	if err != nil {
		return nil, fmt.Errorf("list plan entries: %w", err)
	}
	defer rows.Close()

	out := make([]Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}
