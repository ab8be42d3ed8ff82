package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Store errors shared by every entity. Services translate these into
// their own sentinels.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameExists     = errors.New("username already exists")
	ErrEmailExists        = errors.New("email already exists")
	ErrTagNotFound        = errors.New("tag not found")
	ErrTagExists          = errors.New("tag already exists")
	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrIngredientExists   = errors.New("ingredient already exists")
	ErrRecipeNotFound     = errors.New("recipe not found")
	ErrReferenceNotFound  = errors.New("referenced tag or ingredient not found")
	ErrDuplicateLine      = errors.New("duplicate recipe line")
	ErrRelationExists     = errors.New("relation already exists")
	ErrRelationNotFound   = errors.New("relation not found")
	ErrSelfRelation       = errors.New("user cannot relate to themselves")
	ErrUnknownRelation    = errors.New("unknown relation kind")
	ErrInvalidCursor      = errors.New("invalid cursor")
	ErrValueOutOfRange    = errors.New("value out of integer column range")
)

// SQLSTATE codes handled by the store.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

func pgErrorCode(err error) (code, constraint string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}

// isUniqueViolation checks if the error is a unique constraint violation.
func isUniqueViolation(err error) bool {
	code, _ := pgErrorCode(err)
	return code == codeUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	code, _ := pgErrorCode(err)
	return code == codeForeignKeyViolation
}

func isCheckViolation(err error) bool {
	code, _ := pgErrorCode(err)
	return code == codeCheckViolation
}

// violatedConstraint returns the constraint name carried by a Postgres error.
func violatedConstraint(err error) string {
	_, name := pgErrorCode(err)
	return name
}
