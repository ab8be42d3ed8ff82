package model

import "time"

// RelationKind names one of the user-owned join tables.
type RelationKind string

const (
	RelationFavorite RelationKind = "favorite"
	RelationCart     RelationKind = "cart"
	RelationFollow   RelationKind = "follow"
)

// IsValid reports whether k is a known relation kind.
func (k RelationKind) IsValid() bool {
	switch k {
	case RelationFavorite, RelationCart, RelationFollow:
		return true
	}
	return false
}

// TargetsRecipe reports whether the relation points at a recipe
// rather than at another user.
func (k RelationKind) TargetsRecipe() bool {
	return k == RelationFavorite || k == RelationCart
}

// Relation is a (user, target) record of some kind.
// For RelationFollow the target is the followed author.
type Relation struct {
	Kind      RelationKind `json:"kind"`
	UserID    int64        `json:"user_id"`
	TargetID  int64        `json:"target_id"`
	CreatedAt time.Time    `json:"created_at"`
}
