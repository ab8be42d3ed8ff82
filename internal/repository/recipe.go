package repository

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"

	"github.com/foodgram/foodgram/internal/model"
)

const recipeColumns = `r.id, r.author_id, r.name, r.text, r.image, r.cooking_time, r.pub_date`

// CreateRecipe inserts a recipe with its tags and ingredient lines in one
// transaction. ID and PubDate are filled in from the database.
func (r *Repository) CreateRecipe(ctx context.Context, recipe *model.Recipe, comp model.Composition) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO recipes (author_id, name, text, image, cooking_time)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, pub_date
		`
		err := tx.QueryRow(ctx, query,
			recipe.AuthorID,
			recipe.Name,
			recipe.Text,
			recipe.Image,
			recipe.CookingTime,
		).Scan(&recipe.ID, &recipe.PubDate)
		if err != nil {
			if isForeignKeyViolation(err) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to create recipe: %w", err)
		}

		if err := insertRecipeTags(ctx, tx, recipe.ID, comp.Tags); err != nil {
			return err
		}
		return insertRecipeLines(ctx, tx, recipe.ID, comp.Ingredients)
	})
}

// UpdateRecipe writes the scalar fields of recipe. A nil Tags or Ingredients
// slice in comp leaves that part untouched; a non-nil one replaces it.
func (r *Repository) UpdateRecipe(ctx context.Context, recipe *model.Recipe, comp model.Composition) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		query := `
			UPDATE recipes
			SET name = $2, text = $3, image = $4, cooking_time = $5
			WHERE id = $1
		`
		result, err := tx.Exec(ctx, query,
			recipe.ID,
			recipe.Name,
			recipe.Text,
			recipe.Image,
			recipe.CookingTime,
		)
		if err != nil {
			return fmt.Errorf("failed to update recipe: %w", err)
		}
		if result.RowsAffected() == 0 {
			return ErrRecipeNotFound
		}

		if comp.Tags != nil {
			if _, err := tx.Exec(ctx, `DELETE FROM recipe_tags WHERE recipe_id = $1`, recipe.ID); err != nil {
				return fmt.Errorf("failed to clear recipe tags: %w", err)
			}
			if err := insertRecipeTags(ctx, tx, recipe.ID, comp.Tags); err != nil {
				return err
			}
		}

		if comp.Ingredients != nil {
			if _, err := tx.Exec(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = $1`, recipe.ID); err != nil {
				return fmt.Errorf("failed to clear recipe ingredients: %w", err)
			}
			if err := insertRecipeLines(ctx, tx, recipe.ID, comp.Ingredients); err != nil {
				return err
			}
		}

		return nil
	})
}

func insertRecipeTags(ctx context.Context, tx pgx.Tx, recipeID int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO recipe_tags (recipe_id, tag_id)
		SELECT $1, unnest($2::bigint[])
	`, recipeID, tagIDs)

	return mapLineError(err, "tags")
}

func insertRecipeLines(ctx context.Context, tx pgx.Tx, recipeID int64, lines []model.IngredientLine) error {
	if len(lines) == 0 {
		return nil
	}

	ids := make([]int64, len(lines))
	amounts := make([]int32, len(lines))
	for i, line := range lines {
		if line.Amount < math.MinInt32 || line.Amount > math.MaxInt32 {
			return fmt.Errorf("ingredient %d amount %d: %w", line.IngredientID, line.Amount, ErrValueOutOfRange)
		}
		ids[i] = line.IngredientID
		amounts[i] = int32(line.Amount)
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO recipe_ingredients (recipe_id, ingredient_id, amount)
		SELECT $1, unnest($2::bigint[]), unnest($3::integer[])
	`, recipeID, ids, amounts)

	return mapLineError(err, "ingredients")
}

func mapLineError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return ErrDuplicateLine
	case isForeignKeyViolation(err):
		return ErrReferenceNotFound
	default:
		return fmt.Errorf("failed to insert recipe %s: %w", what, err)
	}
}

// DeleteRecipe removes a recipe. Lines, tag links, favorites and cart entries cascade.
func (r *Repository) DeleteRecipe(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrRecipeNotFound
	}

	return nil
}

// GetRecipeByID retrieves a recipe row by ID.
func (r *Repository) GetRecipeByID(ctx context.Context, id int64) (*model.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes r WHERE r.id = $1`

	recipe, err := scanRecipe(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	return recipe, nil
}

// ListRecipes returns a page of recipes matching filter, newest first.
func (r *Repository) ListRecipes(ctx context.Context, filter model.RecipeFilter, cursor string, limit int) ([]*model.Recipe, string, error) {
	b := &queryBuilder{}
	if err := applyRecipeFilter(b, filter); err != nil {
		return nil, "", err
	}

	if cursor != "" {
		var cursorData recipeCursor
		if err := decodeCursor(cursor, &cursorData); err != nil {
			return nil, "", err
		}
		b.where("(r.pub_date, r.id) < (%s, %s)", cursorData.PubDate, cursorData.ID)
	}

	query := `SELECT ` + recipeColumns + ` FROM recipes r` + b.whereClause()
	query += ` ORDER BY r.pub_date DESC, r.id DESC LIMIT ` + b.arg(limit+1)

	rows, err := r.pool.Query(ctx, query, b.args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []*model.Recipe
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, "", fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, recipe)
	}

	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("error iterating recipes: %w", err)
	}

	var nextCursor string
	if len(recipes) > limit {
		recipes = recipes[:limit]
		last := recipes[len(recipes)-1]
		nextCursor = encodeCursor(recipeCursor{PubDate: last.PubDate, ID: last.ID})
	}

	return recipes, nextCursor, nil
}

// LoadRecipeTags returns the tags of each recipe keyed by recipe ID.
func (r *Repository) LoadRecipeTags(ctx context.Context, recipeIDs []int64) (map[int64][]model.Tag, error) {
	out := make(map[int64][]model.Tag, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return out, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT rt.recipe_id, t.id, t.name, t.color, t.slug
		FROM recipe_tags rt
		JOIN tags t ON t.id = rt.tag_id
		WHERE rt.recipe_id = ANY($1)
		ORDER BY t.name, t.id
	`, recipeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recipeID int64
		var tag model.Tag
		if err := rows.Scan(&recipeID, &tag.ID, &tag.Name, &tag.Color, &tag.Slug); err != nil {
			return nil, fmt.Errorf("failed to scan recipe tag: %w", err)
		}
		out[recipeID] = append(out[recipeID], tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipe tags: %w", err)
	}
	return out, nil
}

// LoadRecipeIngredients returns the ingredient lines of each recipe keyed by recipe ID.
func (r *Repository) LoadRecipeIngredients(ctx context.Context, recipeIDs []int64) (map[int64][]model.RecipeIngredient, error) {
	out := make(map[int64][]model.RecipeIngredient, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return out, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT ri.recipe_id, i.id, i.name, i.measurement_unit, ri.amount
		FROM recipe_ingredients ri
		JOIN ingredients i ON i.id = ri.ingredient_id
		WHERE ri.recipe_id = ANY($1)
		ORDER BY ri.id
	`, recipeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe ingredients: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recipeID int64
		var line model.RecipeIngredient
		if err := rows.Scan(&recipeID, &line.ID, &line.Name, &line.MeasurementUnit, &line.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan recipe ingredient: %w", err)
		}
		out[recipeID] = append(out[recipeID], line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipe ingredients: %w", err)
	}
	return out, nil
}

// CountFavorites returns how many users favorited each recipe.
func (r *Repository) CountFavorites(ctx context.Context, recipeIDs []int64) (map[int64]int64, error) {
	query := `
		SELECT recipe_id, COUNT(*)
		FROM favorites
		WHERE recipe_id = ANY($1)
		GROUP BY recipe_id
	`
	return r.countBy(ctx, query, recipeIDs)
}

func scanRecipe(row pgx.Row) (*model.Recipe, error) {
	var recipe model.Recipe
	err := row.Scan(
		&recipe.ID,
		&recipe.AuthorID,
		&recipe.Name,
		&recipe.Text,
		&recipe.Image,
		&recipe.CookingTime,
		&recipe.PubDate,
	)
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}
