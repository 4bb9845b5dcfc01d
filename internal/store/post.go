package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/blogdb/server/types"
)

// PostRepository handles persistence for blog posts.
type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

// List returns every post, newest first.
func (r *PostRepository) List(ctx context.Context) ([]types.Post, error) {
	const query = `
		SELECT blog_id, creator_name, creator_user_id, title, body, date_created
		FROM blogs
		ORDER BY date_created DESC, blog_id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]types.Post, 0)
	for rows.Next() {
		var post types.Post
		if err := rows.Scan(
			&post.ID,
			&post.CreatorName,
			&post.CreatorUserID,
			&post.Title,
			&post.Body,
			&post.DateCreated,
		); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}

func (r *PostRepository) Get(ctx context.Context, id int) (types.Post, error) {
	const query = `
		SELECT blog_id, creator_name, creator_user_id, title, body, date_created
		FROM blogs
		WHERE blog_id = $1`
	var post types.Post
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&post.ID,
		&post.CreatorName,
		&post.CreatorUserID,
		&post.Title,
		&post.Body,
		&post.DateCreated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Post{}, ErrNotFound
		}
		return types.Post{}, err
	}
	return post, nil
}

// Create inserts the post. The id and creation time come from the database.
func (r *PostRepository) Create(ctx context.Context, post types.Post) (types.Post, error) {
	const query = `
		INSERT INTO blogs (creator_name, creator_user_id, title, body)
		VALUES ($1, $2, $3, $4)
		RETURNING blog_id, date_created`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		post.CreatorName,
		post.CreatorUserID,
		post.Title,
		post.Body,
	).Scan(&post.ID, &post.DateCreated); err != nil {
		return types.Post{}, err
	}
	return post, nil
}

// Update overwrites title and body and reports how many rows changed.
// Zero rows is not an error.
func (r *PostRepository) Update(ctx context.Context, id int, title, body string) (int64, error) {
	const query = `
		UPDATE blogs
		SET title = $1,
			body = $2
		WHERE blog_id = $3`
	result, err := r.db.ExecContext(ctx, query, title, body, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Delete removes the post and reports how many rows were removed.
// Zero rows is not an error.
func (r *PostRepository) Delete(ctx context.Context, id int) (int64, error) {
	const query = `DELETE FROM blogs WHERE blog_id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
