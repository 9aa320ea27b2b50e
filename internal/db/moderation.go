package db

import (
	"context"
	"fmt"
	"math"

	"github.com/spacesedan/sentisocial/internal/analysis"
	"github.com/spacesedan/sentisocial/internal/models"
)

// Flagged rows use the same label and threshold as analysis.NeedsReview.
const flaggedCondition = `sentiment_label = $1 AND sentiment_confidence > $2`

func flaggedArgs() []any {
	return []any{string(analysis.FlaggedSentimentLabel), analysis.FlaggedConfidenceThreshold}
}

func (r *Repository) ListFlaggedPosts(ctx context.Context, skip, limit int) ([]models.Post, error) {
	skip, limit = clampPage(skip, limit)
	query := `SELECT ` + postColumns + `
		FROM posts p JOIN users u ON u.user_id = p.user_id
		WHERE p.sentiment_label = $1 AND p.sentiment_confidence > $2 AND NOT p.is_deleted
		ORDER BY p.created_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, append(flaggedArgs(), limit, skip)...)
	if err != nil {
		return nil, fmt.Errorf("[DB] failed to list flagged posts: %w", err)
	}
	return collectPosts(rows)
}

func (r *Repository) ListFlaggedComments(ctx context.Context, skip, limit int) ([]models.Comment, error) {
	skip, limit = clampPage(skip, limit)
	query := `SELECT ` + commentColumns + `
		FROM comments c JOIN users u ON u.user_id = c.user_id
		WHERE c.sentiment_label = $1 AND c.sentiment_confidence > $2
		ORDER BY c.created_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, append(flaggedArgs(), limit, skip)...)
	if err != nil {
		return nil, fmt.Errorf("[DB] failed to list flagged comments: %w", err)
	}
	return collectComments(rows)
}

func (r *Repository) AdminStats(ctx context.Context) (models.AdminStats, error) {
	query := `SELECT
		(SELECT COUNT(*) FROM users),
		(SELECT COUNT(*) FROM posts WHERE NOT is_deleted),
		(SELECT COUNT(*) FROM comments),
		(SELECT COUNT(*) FROM posts WHERE ` + flaggedCondition + ` AND NOT is_deleted)`

	var stats models.AdminStats
	err := r.pool.QueryRow(ctx, query, flaggedArgs()...).Scan(
		&stats.TotalUsers, &stats.TotalPosts, &stats.TotalComments, &stats.PostsNeedingReview)
	if err != nil {
		return models.AdminStats{}, fmt.Errorf("[DB] failed to load admin stats: %w", err)
	}
	return stats, nil
}

// SentimentAnalytics summarizes analyzed posts: label distribution and the share
// of sarcastic posts, as a percentage rounded to two decimals.
func (r *Repository) SentimentAnalytics(ctx context.Context) (models.SentimentAnalytics, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT sentiment_label, COUNT(*)
		FROM posts
		WHERE sentiment_label IS NOT NULL
		GROUP BY sentiment_label
		ORDER BY sentiment_label`)
	if err != nil {
		return models.SentimentAnalytics{}, fmt.Errorf("[DB] failed to load sentiment distribution: %w", err)
	}
	defer rows.Close()

	out := models.SentimentAnalytics{SentimentDistribution: make([]models.SentimentCount, 0)}
	for rows.Next() {
		var c models.SentimentCount
		if err := rows.Scan(&c.Sentiment, &c.Count); err != nil {
			return models.SentimentAnalytics{}, err
		}
		out.SentimentDistribution = append(out.SentimentDistribution, c)
	}
	if err := rows.Err(); err != nil {
		return models.SentimentAnalytics{}, err
	}

	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE is_sarcastic IS NOT NULL),
		       COUNT(*) FILTER (WHERE is_sarcastic)
		FROM posts`).Scan(&out.SarcasmStats.TotalAnalyzed, &out.SarcasmStats.SarcasticCount)
	if err != nil {
		return models.SentimentAnalytics{}, fmt.Errorf("[DB] failed to load sarcasm stats: %w", err)
	}
	out.SarcasmStats.SarcasmPercentage = sarcasmPercentage(out.SarcasmStats.SarcasticCount, out.SarcasmStats.TotalAnalyzed)
	return out, nil
}

func sarcasmPercentage(sarcastic, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(sarcastic)/float64(total)*100*100) / 100
}
