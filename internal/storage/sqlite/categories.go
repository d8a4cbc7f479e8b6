package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

// CreateCategory persists a category. Names are unique per owner, ignoring case.
func (s *SQLiteStore) CreateCategory(ctx context.Context, category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	if category.CreatedAt == 0 {
		category.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (id, name, description, created_by, created_at) VALUES (?, ?, ?, ?, ?)",
		category.ID, category.Name, category.Description, category.CreatedBy, category.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("category %q: %w", category.Name, storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

// GetCategory retrieves a category by ID.
func (s *SQLiteStore) GetCategory(ctx context.Context, categoryID string) (*models.Category, error) {
	c := &models.Category{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, description, created_by, created_at FROM categories WHERE id = ?",
		categoryID,
	).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedBy, &c.CreatedAt)
	if isNoRows(err) {
		return nil, notFound("category", categoryID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

// ListCategoriesByUser returns the user's categories ordered by name.
func (s *SQLiteStore) ListCategoriesByUser(ctx context.Context, userID string) ([]*models.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, created_by, created_at
		 FROM categories WHERE created_by = ? ORDER BY lower(name)`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		c := &models.Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedBy, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return categories, nil
}

// UpdateCategory renames or redescribes a category.
func (s *SQLiteStore) UpdateCategory(ctx context.Context, category *models.Category) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE categories SET name = ?, description = ? WHERE id = ?",
		category.Name, category.Description, category.ID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("category %q: %w", category.Name, storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	return checkAffected(res, "category", category.ID)
}

// DeleteCategory removes a category. Expenses that used it become uncategorized.
func (s *SQLiteStore) DeleteCategory(ctx context.Context, categoryID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", categoryID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return checkAffected(res, "category", categoryID)
}
