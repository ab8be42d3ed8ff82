package repository

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/foodgram/foodgram/internal/model"
)

// queryBuilder accumulates WHERE conditions and their positional args.
type queryBuilder struct {
	conds []string
	args  []any
}

// arg appends v and returns its placeholder.
func (b *queryBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

// where adds a condition. Each %s in format is replaced by a placeholder
// for the matching value.
func (b *queryBuilder) where(format string, values ...any) {
	placeholders := make([]any, len(values))
	for i, v := range values {
		placeholders[i] = b.arg(v)
	}
	b.conds = append(b.conds, fmt.Sprintf(format, placeholders...))
}

func (b *queryBuilder) whereClause() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}

// recipePredicate adds one named filter condition for recipe alias r.
type recipePredicate func(b *queryBuilder, f model.RecipeFilter)

var recipePredicates = map[string]recipePredicate{
	model.FilterTags: func(b *queryBuilder, f model.RecipeFilter) {
		b.where(`EXISTS (
			SELECT 1 FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id
			WHERE rt.recipe_id = r.id AND t.slug = ANY(%s))`, pq.Array(f.Tags))
	},
	model.FilterAuthor: func(b *queryBuilder, f model.RecipeFilter) {
		b.where("r.author_id = %s", f.AuthorID)
	},
	model.FilterFavorited: func(b *queryBuilder, f model.RecipeFilter) {
		b.where(`EXISTS (
			SELECT 1 FROM favorites fv
			WHERE fv.recipe_id = r.id AND fv.user_id = %s)`, f.Viewer.UserID)
	},
	model.FilterInShoppingCart: func(b *queryBuilder, f model.RecipeFilter) {
		b.where(`EXISTS (
			SELECT 1 FROM shopping_cart sc
			WHERE sc.recipe_id = r.id AND sc.user_id = %s)`, f.Viewer.UserID)
	},
}

// applyRecipeFilter adds a condition for every active predicate of f.
func applyRecipeFilter(b *queryBuilder, f model.RecipeFilter) error {
	for _, name := range f.ActiveFilters() {
		pred, ok := recipePredicates[name]
		if !ok {
			return fmt.Errorf("unsupported recipe filter %q", name)
		}
		pred(b, f)
	}
	return nil
}
