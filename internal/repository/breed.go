package repository

import (
	"context"
	"errors"
	"fmt"

	"petmarket/catalog/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the repository needs
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type BreedRepository interface {
	EnsureSchema(ctx context.Context) error
	ListBreeds(ctx context.Context) ([]domain.Breed, error)
	GetBreedByCode(ctx context.Context, code string) (*domain.Breed, error)
	SaveBreeds(ctx context.Context, breeds []domain.Breed) error
}

type breedRepository struct {
	db DB
}

func NewBreedRepository(db DB) BreedRepository {
	return &breedRepository{
		db: db,
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS animal_category (
	id           SERIAL PRIMARY KEY,
	code         TEXT NOT NULL UNIQUE,
	display_name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS animal_breed (
	id           SERIAL PRIMARY KEY,
	code         TEXT NOT NULL UNIQUE,
	display_name TEXT NOT NULL,
	category_id  INTEGER NOT NULL REFERENCES animal_category(id)
);

CREATE INDEX IF NOT EXISTS idx_animal_breed_category_id ON animal_breed(category_id);`

const selectBreeds = `
	SELECT b.code, b.display_name, c.code, c.display_name
	FROM animal_breed b
	JOIN animal_category c ON c.id = b.category_id`

func (r *breedRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create breed schema: %w", err)
	}
	return nil
}

func (r *breedRepository) ListBreeds(ctx context.Context) ([]domain.Breed, error) {
	rows, err := r.db.Query(ctx, selectBreeds+` ORDER BY c.id, b.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query breeds: %w", err)
	}

	breeds, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Breed, error) {
		return scanBreed(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan breeds: %w", err)
	}

	return breeds, nil
}

// GetBreedByCode returns nil without error when no breed has the code
func (r *breedRepository) GetBreedByCode(ctx context.Context, code string) (*domain.Breed, error) {
	row := r.db.QueryRow(ctx, selectBreeds+` WHERE b.code = $1`, code)

	breed, err := scanBreed(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get breed %s: %w", code, err)
	}

	return &breed, nil
}

// SaveBreeds upserts the categories and breeds in one transaction. The first
// breed of a category decides its display name.
func (r *breedRepository) SaveBreeds(ctx context.Context, breeds []domain.Breed) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	categories, _ := domain.GroupByCategory(breeds)
	for _, category := range categories {
		_, err := tx.Exec(ctx, `
		INSERT INTO animal_category (code, display_name)
		VALUES ($1, $2)
		ON CONFLICT (code)
		DO UPDATE SET display_name = $2`, category.Code, category.DisplayName)
		if err != nil {
			return fmt.Errorf("failed to save category %s: %w", category.Code, err)
		}
	}

	for _, breed := range breeds {
		_, err := tx.Exec(ctx, `
		INSERT INTO animal_breed (code, display_name, category_id)
		SELECT $1, $2, id FROM animal_category WHERE code = $3
		ON CONFLICT (code)
		DO UPDATE SET display_name = $2, category_id = EXCLUDED.category_id`,
			breed.Code, breed.DisplayName, breed.CategoryCode)
		if err != nil {
			return fmt.Errorf("failed to save breed %s: %w", breed.Code, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit breeds: %w", err)
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBreed(row scanner) (domain.Breed, error) {
	var breed domain.Breed
	err := row.Scan(&breed.Code, &breed.DisplayName, &breed.CategoryCode, &breed.CategoryDisplayName)
	return breed, err
}
