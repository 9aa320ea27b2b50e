package db

import (
	"context"
	"fmt"
	"time"

	"github.com/spacesedan/sentisocial/internal/models"
)

// contentTables maps a content kind onto its table and key column. Table names
// never come from input.
var contentTables = map[models.ContentKind]struct{ table, key string }{
	models.ContentKindPost:    {"posts", "post_id"},
	models.ContentKindComment: {"comments", "comment_id"},
}

func contentTable(kind models.ContentKind) (string, string, error) {
	t, ok := contentTables[kind]
	if !ok {
		return "", "", fmt.Errorf("[DB] unknown content kind %q", kind)
	}
	return t.table, t.key, nil
}

// GetContent loads the current text of a post or comment. Deleted posts read as
// not found so their analysis is dropped.
func (r *Repository) GetContent(ctx context.Context, kind models.ContentKind, id int64) (models.ContentRow, error) {
	table, key, err := contentTable(kind)
	if err != nil {
		return models.ContentRow{}, err
	}

	query := fmt.Sprintf(`SELECT content FROM %s WHERE %s = $1`, table, key)
	if kind == models.ContentKindPost {
		query += ` AND NOT is_deleted`
	}

	row := models.ContentRow{Kind: kind, ID: id}
	if err := r.pool.QueryRow(ctx, query, id).Scan(&row.Content); err != nil {
		return models.ContentRow{}, notFound(err)
	}
	return row, nil
}

// UpdateAIFields writes an analysis back onto its row, but only while the row
// still holds analyzedText. It reports ErrNotFound when the row is gone or has
// been edited since, in which case a newer analysis is already on its way.
func (r *Repository) UpdateAIFields(ctx context.Context, kind models.ContentKind, id int64, analyzedText string, fields models.AIFields) error {
	table, key, err := contentTable(kind)
	if err != nil {
		return err
	}

	analyzedAt := time.Now().UTC()
	if fields.AnalyzedAt != nil {
		analyzedAt = *fields.AnalyzedAt
	}

	query := fmt.Sprintf(`
		UPDATE %s SET
			sentiment_label = $3,
			sentiment_confidence = $4,
			is_sarcastic = $5,
			sarcasm_confidence = $6,
			analyzed_at = $7
		WHERE %s = $1 AND content = $2`, table, key)

	tag, err := r.pool.Exec(ctx, query, id, analyzedText,
		fields.SentimentLabel, fields.SentimentConfidence, fields.IsSarcastic, fields.SarcasmConfidence, analyzedAt)
	if err != nil {
		return fmt.Errorf("[DB] failed to update AI fields on %s %d: %w", kind, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
