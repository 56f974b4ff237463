package family

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

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

// --------------------------------------------------
// Families
// --------------------------------------------------

func (r *PostgresRepository) CreateFamily(ctx context.Context, f *Family) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}

	query := `
		INSERT INTO families (id, name, owner_id, digest_email)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		RETURNING created_at
	`
	if err := r.db.QueryRow(ctx, query, f.ID, f.Name, f.OwnerID, f.DigestEmail).Scan(&f.CreatedAt); err != nil {
		return fmt.Errorf("insert family: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetFamily(ctx context.Context, id string) (*Family, error) {
	query := `
		SELECT id, name, owner_id, COALESCE(digest_email, ''), created_at
		FROM families WHERE id = $1
	`
	f := &Family{}
	err := r.db.QueryRow(ctx, query, id).Scan(&f.ID, &f.Name, &f.OwnerID, &f.DigestEmail, &f.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get family: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) UpdateFamily(ctx context.Context, f *Family) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE families SET name = $2, digest_email = NULLIF($3, '')
		WHERE id = $1
	`, f.ID, f.Name, f.DigestEmail)
	if err != nil {
		return fmt.Errorf("update family: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*Family, error) {
	return r.listFamilies(ctx, `
		SELECT id, name, owner_id, COALESCE(digest_email, ''), created_at
		FROM families WHERE owner_id = $1
		ORDER BY created_at
	`, ownerID)
}

func (r *PostgresRepository) ListWithDigest(ctx context.Context) ([]*Family, error) {
	return r.listFamilies(ctx, `
		SELECT id, name, owner_id, digest_email, created_at
		FROM families WHERE digest_email IS NOT NULL
		ORDER BY created_at
	`)
}

func (r *PostgresRepository) listFamilies(ctx context.Context, query string, args ...any) ([]*Family, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list families: %w", err)
	}
	defer rows.Close()

	var out []*Family
	for rows.Next() {
		f := &Family{}
		if err := rows.Scan(&f.ID, &f.Name, &f.OwnerID, &f.DigestEmail, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) IsOwner(ctx context.Context, familyID string, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM families WHERE id = $1 AND owner_id = $2
		)
	`, familyID, userID).Scan(&exists)
	return exists, err
}

// --------------------------------------------------
// Members
// --------------------------------------------------

func (r *PostgresRepository) AddMember(ctx context.Context, m *Member) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}

	conditions, err := json.Marshal(m.Conditions)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO family_members (id, family_id, name, birth_date, conditions)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	if err := r.db.QueryRow(ctx, query, m.ID, m.FamilyID, m.Name, m.BirthDate, conditions).Scan(&m.CreatedAt); err != nil {
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetMember(ctx context.Context, id string) (*Member, error) {
	query := `
		SELECT id, family_id, name, birth_date, conditions, created_at
		FROM family_members WHERE id = $1
	`
	m, err := scanMember(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

func (r *PostgresRepository) UpdateMember(ctx context.Context, m *Member) error {
	conditions, err := json.Marshal(m.Conditions)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE family_members SET name = $2, birth_date = $3, conditions = $4
		WHERE id = $1
	`, m.ID, m.Name, m.BirthDate, conditions)
	if err != nil {
		return fmt.Errorf("update member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteMember(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM family_members WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ListMembers(ctx context.Context, familyID string) ([]*Member, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, family_id, name, birth_date, conditions, created_at
		FROM family_members WHERE family_id = $1
		ORDER BY created_at
	`, familyID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var out []*Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMember(row pgx.Row) (*Member, error) {
	m := &Member{}
	var raw []byte
	if err := row.Scan(&m.ID, &m.FamilyID, &m.Name, &m.BirthDate, &raw, &m.CreatedAt); err != nil {
		return nil, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &m.Conditions); err != nil {
			return nil, fmt.Errorf("decode conditions: %w", err)
		}
	}
	return m, nil
}
