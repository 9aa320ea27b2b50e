package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/spacesedan/sentisocial/internal/models"
)

const commentColumns = `c.comment_id, c.post_id, c.user_id, u.user_name, c.content, c.parent_comment_id, c.created_at,
	c.sentiment_label, c.sentiment_confidence, c.is_sarcastic, c.sarcasm_confidence, c.analyzed_at`

func scanComment(row pgx.Row) (*models.Comment, error) {
	var c models.Comment
	targets := append([]any{&c.CommentID, &c.PostID, &c.UserID, &c.UserName, &c.Content, &c.ParentCommentID, &c.CreatedAt},
		aiFieldTargets(&c.AIFields)...)
	if err := row.Scan(targets...); err != nil {
		return nil, err
	}
	return &c, nil
}

func collectComments(rows pgx.Rows) ([]models.Comment, error) {
	defer rows.Close()

	comments := make([]models.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

// CreateComment inserts an unanalyzed comment on a live post. A parent comment
// must belong to the same post.
func (r *Repository) CreateComment(ctx context.Context, postID, userID int64, content string, parentID *int64) (*models.Comment, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM posts WHERE post_id = $1 AND NOT is_deleted)`, postID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("[DB] failed to check post %d: %w", postID, err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	if parentID != nil {
		err := r.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM comments WHERE comment_id = $1 AND post_id = $2)`, *parentID, postID).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("[DB] failed to check parent comment %d: %w", *parentID, err)
		}
		if !exists {
			return nil, ErrNotFound
		}
	}

	query := `
		WITH c AS (
			INSERT INTO comments (post_id, user_id, content, parent_comment_id)
			VALUES ($1, $2, $3, $4)
			RETURNING *
		)
		SELECT ` + commentColumns + `
		FROM c JOIN users u ON u.user_id = c.user_id`

	comment, err := scanComment(r.pool.QueryRow(ctx, query, postID, userID, content, parentID))
	if err != nil {
		return nil, fmt.Errorf("[DB] failed to create comment: %w", notFound(err))
	}
	return comment, nil
}

func (r *Repository) ListComments(ctx context.Context, postID int64) ([]models.Comment, error) {
	query := `SELECT ` + commentColumns + `
		FROM comments c JOIN users u ON u.user_id = c.user_id
		WHERE c.post_id = $1
		ORDER BY c.created_at ASC`

	rows, err := r.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("[DB] failed to list comments for post %d: %w", postID, err)
	}
	return collectComments(rows)
}

func (r *Repository) getComment(ctx context.Context, postID, commentID int64) (*models.Comment, error) {
	query := `SELECT ` + commentColumns + `
		FROM comments c JOIN users u ON u.user_id = c.user_id
		WHERE c.comment_id = $1 AND c.post_id = $2`

	comment, err := scanComment(r.pool.QueryRow(ctx, query, commentID, postID))
	if err != nil {
		return nil, notFound(err)
	}
	return comment, nil
}

// UpdateComment replaces the content of a comment owned by userID and resets
// its AI fields when the content changed.
func (r *Repository) UpdateComment(ctx context.Context, postID, commentID, userID int64, content *string) (comment *models.Comment, contentChanged bool, err error) {
	current, err := r.getComment(ctx, postID, commentID)
	if err != nil {
		return nil, false, err
	}
	if current.UserID != userID {
		return nil, false, ErrForbidden
	}
	if content == nil || *content == current.Content {
		return current, false, nil
	}

	query := `
		WITH c AS (
			UPDATE comments SET
				content = $3,
				sentiment_label = NULL,
				sentiment_confidence = NULL,
				is_sarcastic = NULL,
				sarcasm_confidence = NULL,
				analyzed_at = NULL
			WHERE comment_id = $1 AND post_id = $2
			RETURNING *
		)
		SELECT ` + commentColumns + `
		FROM c JOIN users u ON u.user_id = c.user_id`

	comment, err = scanComment(r.pool.QueryRow(ctx, query, commentID, postID, *content))
	if err != nil {
		return nil, false, notFound(err)
	}
	return comment, true, nil
}

func (r *Repository) DeleteComment(ctx context.Context, postID, commentID, userID int64) error {
	var owner int64
	err := r.pool.QueryRow(ctx,
		`SELECT user_id FROM comments WHERE comment_id = $1 AND post_id = $2`, commentID, postID).Scan(&owner)
	if err != nil {
		return notFound(err)
	}
	if owner != userID {
		return ErrForbidden
	}

	if _, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE comment_id = $1`, commentID); err != nil {
		return fmt.Errorf("[DB] failed to delete comment %d: %w", commentID, err)
	}
	return nil
}
