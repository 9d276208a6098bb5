package repository

import (
	"context"
	"database/sql"

	"evreserve/internal/models"
)

// ResourceRepository handles persistence of bookable charging resources.
type ResourceRepository struct {
	db *sql.DB
}

// NewResourceRepository returns repository.
func NewResourceRepository(db *sql.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// EnsureSeed creates the base resources 1..len(names) if they do not exist
// yet. Existing rows are never modified.
func (r *ResourceRepository) EnsureSeed(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}

	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM resources`).Scan(&count); err != nil {
		return err
	}
	if count >= len(names) {
		return nil
	}

	const query = `
		INSERT INTO resources (id, name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`
	for idx, name := range names {
		if _, err := r.db.ExecContext(ctx, query, int64(idx+1), name); err != nil {
			return err
		}
	}
	return nil
}

// List returns all resources ordered by id.
func (r *ResourceRepository) List(ctx context.Context) ([]models.Resource, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM resources ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resources []models.Resource
	for rows.Next() {
		var res models.Resource
		if err := rows.Scan(&res.ID, &res.Name); err != nil {
			return nil, err
		}
		resources = append(resources, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return resources, nil
}
