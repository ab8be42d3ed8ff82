package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/foodgram/foodgram/internal/model"
)

const userColumns = `id, username, email, first_name, last_name, created_at`

// CreateUser inserts a new user and fills in its ID and CreatedAt.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	return createUser(ctx, r.pool, user)
}

// CreateUserWithAPIKey inserts a user and their first API key atomically.
// key.UserID is set from the new user.
func (r *Repository) CreateUserWithAPIKey(ctx context.Context, user *model.User, key *model.APIKey) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if err := createUser(ctx, tx, user); err != nil {
			return err
		}
		key.UserID = user.ID
		return createAPIKey(ctx, tx, key)
	})
}

func createUser(ctx context.Context, q querier, user *model.User) error {
	query := `
		INSERT INTO users (username, email, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			if violatedConstraint(err) == "users_email_key" {
				return ErrEmailExists
			}
			return ErrUsernameExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// GetUsersByIDs loads the given users keyed by ID. Missing IDs are absent from the map.
func (r *Repository) GetUsersByIDs(ctx context.Context, ids []int64) (map[int64]*model.User, error) {
	out := make(map[int64]*model.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1)`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		out[user.ID] = user
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return out, nil
}

// ListUsers returns a page of users ordered by username.
func (r *Repository) ListUsers(ctx context.Context, cursor string, limit int) ([]*model.User, string, error) {
	query := `SELECT ` + userColumns + ` FROM users u`
	return r.listUsersPage(ctx, query, nil, cursor, limit)
}

// ListFollowedAuthors returns a page of the authors followerID follows,
// ordered by username.
func (r *Repository) ListFollowedAuthors(ctx context.Context, followerID int64, cursor string, limit int) ([]*model.User, string, error) {
	query := `
		SELECT u.id, u.username, u.email, u.first_name, u.last_name, u.created_at
		FROM users u
		JOIN follows f ON f.author_id = u.id AND f.user_id = $1
	`
	return r.listUsersPage(ctx, query, []any{followerID}, cursor, limit)
}

func (r *Repository) listUsersPage(ctx context.Context, query string, args []any, cursor string, limit int) ([]*model.User, string, error) {
	var cursorData userCursor
	if cursor != "" {
		if err := decodeCursor(cursor, &cursorData); err != nil {
			return nil, "", err
		}
	}

	argIndex := len(args) + 1
	if cursor != "" {
		query += fmt.Sprintf(" WHERE (u.username, u.id) > ($%d, $%d)", argIndex, argIndex+1)
		args = append(args, cursorData.Username, cursorData.ID)
		argIndex += 2
	}

	query += fmt.Sprintf(" ORDER BY u.username, u.id LIMIT $%d", argIndex)
	args = append(args, limit+1) // Fetch one extra to determine hasMore

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, "", fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("error iterating users: %w", err)
	}

	var nextCursor string
	if len(users) > limit {
		users = users[:limit]
		last := users[len(users)-1]
		nextCursor = encodeCursor(userCursor{Username: last.Username, ID: last.ID})
	}

	return users, nextCursor, nil
}

// DeleteUser removes a user. Their recipes, keys and relations cascade.
func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// CountRecipesByAuthors returns recipe counts keyed by author ID.
func (r *Repository) CountRecipesByAuthors(ctx context.Context, authorIDs []int64) (map[int64]int64, error) {
	query := `
		SELECT author_id, COUNT(*)
		FROM recipes
		WHERE author_id = ANY($1)
		GROUP BY author_id
	`
	return r.countBy(ctx, query, authorIDs)
}

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// countBy runs a two-column (id, count) query over ids.
func (r *Repository) countBy(ctx context.Context, query string, ids []int64) (map[int64]int64, error) {
	out := make(map[int64]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, n int64
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		out[id] = n
	}

	return out, rows.Err()
}
