package db

import (
	"context"
	"regexp"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/spacesedan/sentisocial/internal/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlaggedPostsUseReviewThreshold(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("p.sentiment_label = $1 AND p.sentiment_confidence > $2")).
		WithArgs("negative", analysis.FlaggedConfidenceThreshold, 20, 0).
		WillReturnRows(pgxmock.NewRows(postRowColumns).
			AddRow(int64(1), int64(2), "bob", "t", "c", createdAt,
				ptr("negative"), ptr(0.95), ptr(false), ptr(0.6), ptr(createdAt)))

	posts, err := repo.ListFlaggedPosts(context.Background(), 0, 20)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "bob", posts[0].UserName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFlaggedComments(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("c.sentiment_label = $1 AND c.sentiment_confidence > $2")).
		WithArgs("negative", 0.8, 5, 5).
		WillReturnRows(pgxmock.NewRows(commentRowColumns).
			AddRow(int64(3), int64(1), int64(2), "bob", "ugh", ptr(int64(2)), createdAt,
				ptr("negative"), ptr(0.85), ptr(true), ptr(0.9), ptr(createdAt)))

	comments, err := repo.ListFlaggedComments(context.Background(), 5, 5)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	require.NotNil(t, comments[0].ParentCommentID)
	assert.Equal(t, int64(2), *comments[0].ParentCommentID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminStats(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users")).
		WithArgs("negative", 0.8).
		WillReturnRows(pgxmock.NewRows([]string{"users", "posts", "comments", "review"}).
			AddRow(int64(10), int64(25), int64(40), int64(3)))

	stats, err := repo.AdminStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(10), stats.TotalUsers)
	assert.Equal(t, int64(25), stats.TotalPosts)
	assert.Equal(t, int64(40), stats.TotalComments)
	assert.Equal(t, int64(3), stats.PostsNeedingReview)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSentimentAnalytics(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY sentiment_label")).
		WillReturnRows(pgxmock.NewRows([]string{"sentiment_label", "count"}).
			AddRow("negative", int64(1)).
			AddRow("positive", int64(2)))
	mock.ExpectQuery(regexp.QuoteMeta("COUNT(*) FILTER")).
		WillReturnRows(pgxmock.NewRows([]string{"total", "sarcastic"}).AddRow(int64(3), int64(1)))

	out, err := repo.SentimentAnalytics(context.Background())
	require.NoError(t, err)
	require.Len(t, out.SentimentDistribution, 2)
	assert.Equal(t, "positive", out.SentimentDistribution[1].Sentiment)
	assert.Equal(t, int64(3), out.SarcasmStats.TotalAnalyzed)
	assert.Equal(t, 33.33, out.SarcasmStats.SarcasmPercentage)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSarcasmPercentage(t *testing.T) {
	assert.Equal(t, 0.0, sarcasmPercentage(0, 0))
	assert.Equal(t, 50.0, sarcasmPercentage(1, 2))
	assert.Equal(t, 66.67, sarcasmPercentage(2, 3))
}
