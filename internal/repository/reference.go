package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/foodgram/foodgram/internal/model"
)

// CreateTag inserts a tag and fills in its ID.
func (r *Repository) CreateTag(ctx context.Context, tag *model.Tag) error {
	query := `INSERT INTO tags (name, color, slug) VALUES ($1, $2, $3) RETURNING id`

	err := r.pool.QueryRow(ctx, query, tag.Name, tag.Color, tag.Slug).Scan(&tag.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrTagExists
		}
		return fmt.Errorf("failed to create tag: %w", err)
	}
	return nil
}

// GetTagByID retrieves a tag by ID.
func (r *Repository) GetTagByID(ctx context.Context, id int64) (*model.Tag, error) {
	var tag model.Tag
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, color, slug FROM tags WHERE id = $1`, id,
	).Scan(&tag.ID, &tag.Name, &tag.Color, &tag.Slug)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	return &tag, nil
}

// ListTags returns all tags ordered by name.
func (r *Repository) ListTags(ctx context.Context) ([]*model.Tag, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, color, slug FROM tags ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	tags := []*model.Tag{}
	for rows.Next() {
		var tag model.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Color, &tag.Slug); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, &tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}
	return tags, nil
}

// CreateIngredient inserts an ingredient and fills in its ID.
func (r *Repository) CreateIngredient(ctx context.Context, ing *model.Ingredient) error {
	query := `INSERT INTO ingredients (name, measurement_unit) VALUES ($1, $2) RETURNING id`

	err := r.pool.QueryRow(ctx, query, ing.Name, ing.MeasurementUnit).Scan(&ing.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrIngredientExists
		}
		return fmt.Errorf("failed to create ingredient: %w", err)
	}
	return nil
}

// GetIngredientByID retrieves an ingredient by ID.
func (r *Repository) GetIngredientByID(ctx context.Context, id int64) (*model.Ingredient, error) {
	var ing model.Ingredient
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, measurement_unit FROM ingredients WHERE id = $1`, id,
	).Scan(&ing.ID, &ing.Name, &ing.MeasurementUnit)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIngredientNotFound
		}
		return nil, fmt.Errorf("failed to get ingredient: %w", err)
	}
	return &ing, nil
}

// ListIngredients returns ingredients whose name starts with namePrefix,
// case-insensitively. An empty prefix returns everything.
func (r *Repository) ListIngredients(ctx context.Context, namePrefix string) ([]*model.Ingredient, error) {
	query := `SELECT id, name, measurement_unit FROM ingredients`
	var args []any
	if namePrefix != "" {
		query += ` WHERE lower(name) LIKE $1`
		args = append(args, escapeLike(strings.ToLower(namePrefix))+"%")
	}
	query += ` ORDER BY name, measurement_unit, id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	defer rows.Close()

	ingredients := []*model.Ingredient{}
	for rows.Next() {
		var ing model.Ingredient
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.MeasurementUnit); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		ingredients = append(ingredients, &ing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ingredients: %w", err)
	}
	return ingredients, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
