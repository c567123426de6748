package database

import (
	"context"
	"database/sql"
	"fmt"
)

type categoryRepository struct {
	db *DB
}

func NewCategoryRepository(db *DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, name, description, emoji string) (*Category, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO semantic_categories (name, description, emoji)
		VALUES (?, ?, ?)
		RETURNING id, name, COALESCE(description, ''), COALESCE(emoji, ''), created_at
	`, name, nullableString(description), nullableString(emoji))

	category, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return category, nil
}

func (r *categoryRepository) GetAll(ctx context.Context) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(description, ''), COALESCE(emoji, ''), created_at
		FROM semantic_categories
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, *category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}

	return categories, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*Category, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(description, ''), COALESCE(emoji, ''), created_at
		FROM semantic_categories
		WHERE id = ?
	`, id)

	category, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return category, nil
}

// GetAllWithCounts keeps zero-count categories via the LEFT JOIN;
// busiest first, ties broken by name.
func (r *categoryRepository) GetAllWithCounts(ctx context.Context) ([]CategoryWithCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.name, COALESCE(c.description, ''), COALESCE(c.emoji, ''), c.created_at,
		       COUNT(p.id) AS post_count
		FROM semantic_categories c
		LEFT JOIN posts p ON p.category_id = c.id
		GROUP BY c.id
		ORDER BY post_count DESC, c.name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories with counts: %w", err)
	}
	defer rows.Close()

	var categories []CategoryWithCount
	for rows.Next() {
		var category CategoryWithCount
		var createdAt string
		err := rows.Scan(&category.ID, &category.Name, &category.Description,
			&category.Emoji, &createdAt, &category.PostCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		category.CreatedAt = parseTime(createdAt)
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}

	return categories, nil
}

func (r *categoryRepository) GetPostCount(ctx context.Context, categoryID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE category_id = ?`, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count posts for category: %w", err)
	}
	return count, nil
}

func (r *categoryRepository) GetUnclassifiedCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE category_id IS NULL`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unclassified posts: %w", err)
	}
	return count, nil
}

func (r *categoryRepository) DeleteAll(ctx context.Context) error {
	if err := r.ClearAssignments(ctx); err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM semantic_categories`); err != nil {
		return fmt.Errorf("failed to delete categories: %w", err)
	}

	return nil
}

func (r *categoryRepository) ClearAssignments(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `UPDATE posts SET category_id = NULL, classified_at = NULL`)
	if err != nil {
		return fmt.Errorf("failed to clear assignments: %w", err)
	}
	return nil
}

func (r *categoryRepository) Assign(ctx context.Context, postID string, categoryID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE posts SET category_id = ?, classified_at = ? WHERE id = ?
	`, categoryID, formatTime(timeNow()), postID)
	if err != nil {
		return fmt.Errorf("failed to assign category: %w", err)
	}
	return nil
}

func scanCategory(row rowScanner) (*Category, error) {
	var category Category
	var createdAt string

	err := row.Scan(&category.ID, &category.Name, &category.Description, &category.Emoji, &createdAt)
	if err != nil {
		return nil, err
	}

	category.CreatedAt = parseTime(createdAt)
	return &category, nil
}
