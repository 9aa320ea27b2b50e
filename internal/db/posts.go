package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/spacesedan/sentisocial/internal/models"
)

const postColumns = `p.post_id, p.user_id, u.user_name, p.title, p.content, p.created_at,
	p.sentiment_label, p.sentiment_confidence, p.is_sarcastic, p.sarcasm_confidence, p.analyzed_at`

func scanPost(row pgx.Row) (*models.Post, error) {
	var p models.Post
	targets := append([]any{&p.PostID, &p.UserID, &p.UserName, &p.Title, &p.Content, &p.CreatedAt},
		aiFieldTargets(&p.AIFields)...)
	if err := row.Scan(targets...); err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPosts(rows pgx.Rows) ([]models.Post, error) {
	defer rows.Close()

	posts := make([]models.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// CreatePost inserts an unanalyzed post.
func (r *Repository) CreatePost(ctx context.Context, userID int64, title, content string) (*models.Post, error) {
	query := `
		WITH p AS (
			INSERT INTO posts (user_id, title, content)
			VALUES ($1, $2, $3)
			RETURNING *
		)
		SELECT ` + postColumns + `
		FROM p JOIN users u ON u.user_id = p.user_id`

	post, err := scanPost(r.pool.QueryRow(ctx, query, userID, title, content))
	if err != nil {
		return nil, fmt.Errorf("[DB] failed to create post: %w", notFound(err))
	}
	return post, nil
}

func (r *Repository) GetPost(ctx context.Context, postID int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + `
		FROM posts p JOIN users u ON u.user_id = p.user_id
		WHERE p.post_id = $1 AND NOT p.is_deleted`

	post, err := scanPost(r.pool.QueryRow(ctx, query, postID))
	if err != nil {
		return nil, notFound(err)
	}
	return post, nil
}

// ListPosts returns live posts newest first. Unanalyzed posts are kept when
// sarcastic posts are excluded; they only drop out under a label filter.
func (r *Repository) ListPosts(ctx context.Context, filter models.PostFilter) ([]models.Post, error) {
	skip, limit := clampPage(filter.Skip, filter.Limit)

	var (
		where = []string{"NOT p.is_deleted"}
		args  []any
	)
	if filter.SentimentLabel != "" {
		args = append(args, strings.ToLower(filter.SentimentLabel))
		where = append(where, fmt.Sprintf("p.sentiment_label = $%d", len(args)))
	}
	if !filter.IncludeSarcastic {
		where = append(where, "p.is_sarcastic IS NOT TRUE")
	}
	args = append(args, limit, skip)

	query := fmt.Sprintf(`SELECT %s
		FROM posts p JOIN users u ON u.user_id = p.user_id
		WHERE %s
		ORDER BY p.created_at DESC
		LIMIT $%d OFFSET $%d`, postColumns, strings.Join(where, " AND "), len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("[DB] failed to list posts: %w", err)
	}
	return collectPosts(rows)
}

func (r *Repository) ListPostsByUser(ctx context.Context, userID int64, skip, limit int) ([]models.Post, error) {
	skip, limit = clampPage(skip, limit)
	query := `SELECT ` + postColumns + `
		FROM posts p JOIN users u ON u.user_id = p.user_id
		WHERE p.user_id = $1 AND NOT p.is_deleted
		ORDER BY p.created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("[DB] failed to list posts for user %d: %w", userID, err)
	}
	return collectPosts(rows)
}

// UpdatePost changes the title and/or content of a live post owned by userID.
// A content change resets the AI fields so the row reads as unanalyzed until the
// new analysis lands. contentChanged reports whether a reanalysis is due.
func (r *Repository) UpdatePost(ctx context.Context, postID, userID int64, title, content *string) (post *models.Post, contentChanged bool, err error) {
	current, err := r.GetPost(ctx, postID)
	if err != nil {
		return nil, false, err
	}
	if current.UserID != userID {
		return nil, false, ErrForbidden
	}

	contentChanged = content != nil && *content != current.Content
	query := `
		WITH p AS (
			UPDATE posts SET
				title = COALESCE($2, title),
				content = COALESCE($3, content),
				sentiment_label = CASE WHEN $4 THEN NULL ELSE sentiment_label END,
				sentiment_confidence = CASE WHEN $4 THEN NULL ELSE sentiment_confidence END,
				is_sarcastic = CASE WHEN $4 THEN NULL ELSE is_sarcastic END,
				sarcasm_confidence = CASE WHEN $4 THEN NULL ELSE sarcasm_confidence END,
				analyzed_at = CASE WHEN $4 THEN NULL ELSE analyzed_at END
			WHERE post_id = $1 AND NOT is_deleted
			RETURNING *
		)
		SELECT ` + postColumns + `
		FROM p JOIN users u ON u.user_id = p.user_id`

	post, err = scanPost(r.pool.QueryRow(ctx, query, postID, title, content, contentChanged))
	if err != nil {
		return nil, false, notFound(err)
	}
	return post, contentChanged, nil
}

// DeletePost soft deletes a post. A zero userID skips the owner check.
func (r *Repository) DeletePost(ctx context.Context, postID, userID int64) error {
	var owner int64
	err := r.pool.QueryRow(ctx, `SELECT user_id FROM posts WHERE post_id = $1`, postID).Scan(&owner)
	if err != nil {
		return notFound(err)
	}
	if userID != 0 && owner != userID {
		return ErrForbidden
	}

	if _, err := r.pool.Exec(ctx, `UPDATE posts SET is_deleted = TRUE WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("[DB] failed to delete post %d: %w", postID, err)
	}
	return nil
}
