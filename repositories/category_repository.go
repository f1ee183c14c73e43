package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/tennis-clubs/models"
)

var ErrCategoryNotFound = errors.New("category not found")

// CategoryRepository keeps one row per (type, age limit, sex limit).
type CategoryRepository interface {
	WithTx(exec SQLExecutor) CategoryRepository
	FindOrCreate(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id int) (*models.Category, error)
	DeleteIfOrphaned(ctx context.Context, id int) (bool, error)
}

type postgresCategoryRepository struct {
	db   *sql.DB
	exec SQLExecutor
}

func NewPostgresCategoryRepository(db *sql.DB) CategoryRepository {
	return &postgresCategoryRepository{db: db}
}

func (r *postgresCategoryRepository) WithTx(exec SQLExecutor) CategoryRepository {
	return &postgresCategoryRepository{db: r.db, exec: exec}
}

func (r *postgresCategoryRepository) getExecutor() SQLExecutor {
	if r.exec != nil {
		return r.exec
	}
	return r.db
}

// FindOrCreate sets category.ID to the existing row for the triple, inserting it when missing.
func (r *postgresCategoryRepository) FindOrCreate(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (type, age_limit, sex_limit)
		VALUES ($1, $2, $3)
		ON CONFLICT ON CONSTRAINT categories_type_age_limit_sex_limit_key
		DO UPDATE SET type = EXCLUDED.type
		RETURNING id`
	return r.getExecutor().QueryRowContext(ctx, query, category.Type, category.AgeLimit, category.SexLimit).Scan(&category.ID)
}

func (r *postgresCategoryRepository) GetByID(ctx context.Context, id int) (*models.Category, error) {
	query := `SELECT id, type, age_limit, sex_limit FROM categories WHERE id = $1`

	var c models.Category
	err := r.getExecutor().QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Type, &c.AgeLimit, &c.SexLimit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &c, nil
}

// DeleteIfOrphaned removes the category when no tournament uses it and reports whether it did.
func (r *postgresCategoryRepository) DeleteIfOrphaned(ctx context.Context, id int) (bool, error) {
	query := `
		DELETE FROM categories c
		WHERE c.id = $1 AND NOT EXISTS (SELECT 1 FROM tournaments t WHERE t.category_id = c.id)`
	result, err := r.getExecutor().ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
