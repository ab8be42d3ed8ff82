package repository

import (
	"context"
	"fmt"

	"github.com/foodgram/foodgram/internal/model"
)

// relationTable describes the join table backing a relation kind.
type relationTable struct {
	name         string
	targetColumn string
	targetErr    error
}

var relationTables = map[model.RelationKind]relationTable{
	model.RelationFavorite: {name: "favorites", targetColumn: "recipe_id", targetErr: ErrRecipeNotFound},
	model.RelationCart:     {name: "shopping_cart", targetColumn: "recipe_id", targetErr: ErrRecipeNotFound},
	model.RelationFollow:   {name: "follows", targetColumn: "author_id", targetErr: ErrUserNotFound},
}

func tableFor(kind model.RelationKind) (relationTable, error) {
	t, ok := relationTables[kind]
	if !ok {
		return relationTable{}, fmt.Errorf("%w: %q", ErrUnknownRelation, kind)
	}
	return t, nil
}

// AddRelation records (userID, targetID) for kind. The unique constraint on
// the pair makes concurrent duplicates fail with ErrRelationExists.
func (r *Repository) AddRelation(ctx context.Context, kind model.RelationKind, userID, targetID int64) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`INSERT INTO %s (user_id, %s) VALUES ($1, $2)`, t.name, t.targetColumn)
	_, err = r.pool.Exec(ctx, query, userID, targetID)

	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return ErrRelationExists
	case isCheckViolation(err):
		return ErrSelfRelation
	case isForeignKeyViolation(err):
		if violatedConstraint(err) == t.name+"_user_id_fkey" {
			return ErrUserNotFound
		}
		return t.targetErr
	default:
		return fmt.Errorf("failed to add %s: %w", kind, err)
	}
}

// RemoveRelation deletes (userID, targetID) for kind.
func (r *Repository) RemoveRelation(ctx context.Context, kind model.RelationKind, userID, targetID int64) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1 AND %s = $2`, t.name, t.targetColumn)
	result, err := r.pool.Exec(ctx, query, userID, targetID)
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", kind, err)
	}

	if result.RowsAffected() == 0 {
		return ErrRelationNotFound
	}
	return nil
}

// RelationExists reports whether (userID, targetID) is recorded for kind.
func (r *Repository) RelationExists(ctx context.Context, kind model.RelationKind, userID, targetID int64) (bool, error) {
	t, err := tableFor(kind)
	if err != nil {
		return false, err
	}

	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE user_id = $1 AND %s = $2)`, t.name, t.targetColumn)

	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, targetID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check %s: %w", kind, err)
	}
	return exists, nil
}

// RelatedAmong returns the subset of targetIDs userID has a kind relation with.
func (r *Repository) RelatedAmong(ctx context.Context, kind model.RelationKind, userID int64, targetIDs []int64) (map[int64]bool, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	out := make(map[int64]bool)
	if userID == 0 || len(targetIDs) == 0 {
		return out, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE user_id = $1 AND %s = ANY($2)`, t.targetColumn, t.name, t.targetColumn)
	rows, err := r.pool.Query(ctx, query, userID, targetIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s relations: %w", kind, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan %s relation: %w", kind, err)
		}
		out[id] = true
	}

	return out, rows.Err()
}
