package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/blogdb/server/types"
)

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByName(ctx context.Context, name string) (types.User, error) {
	const query = `
		SELECT user_id, name, password, created_at
		FROM users
		WHERE name = $1`
	var user types.User
	err := r.db.QueryRowContext(ctx, query, name).Scan(
		&user.ID,
		&user.Name,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

// Create inserts the user and returns it with the generated id.
// A name that already exists yields ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	const query = `
		INSERT INTO users (name, password)
		VALUES ($1, $2)
		RETURNING user_id, created_at`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		user.Name,
		user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return types.User{}, ErrDuplicate
		}
		return types.User{}, err
	}
	return user, nil
}
