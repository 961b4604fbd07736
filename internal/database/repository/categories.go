package repository

import (
	"context"
	"strings"
)

// CategoryRepo handles categories.
type CategoryRepo struct {
	db DBTX
}

func NewCategoryRepo(db DBTX) *CategoryRepo {
	return &CategoryRepo{db: db}
}

func (r *CategoryRepo) Insert(ctx context.Context, c Category) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO categories(id, name, created_at) VALUES (?, ?, CURRENT_TIMESTAMP)`, c.ID, c.Name)
	return err
}

func (r *CategoryRepo) Get(ctx context.Context, id string) (Category, error) {
	var c Category
	if err := r.db.QueryRowContext(ctx, `SELECT id, name FROM categories WHERE id = ?`, id).Scan(&c.ID, &c.Name); err != nil {
		return Category{}, notFound(err)
	}
	return c, nil
}

func (r *CategoryRepo) FindByName(ctx context.Context, name string) (Category, error) {
	var c Category
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM categories WHERE name = ? COLLATE NOCASE`, strings.TrimSpace(name)).
		Scan(&c.ID, &c.Name)
	if err != nil {
		return Category{}, notFound(err)
	}
	return c, nil
}

func (r *CategoryRepo) List(ctx context.Context) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
