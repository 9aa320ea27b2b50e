package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spacesedan/sentisocial/internal/db"
	"github.com/spacesedan/sentisocial/internal/models"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeStore struct {
	Store

	posts    map[int64]*models.Post
	comments map[int64]*models.Comment
	nextID   int64

	lastFilter models.PostFilter
	stats      models.AdminStats
	analytics  models.SentimentAnalytics
	flagged    []models.Post
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		posts:    map[int64]*models.Post{},
		comments: map[int64]*models.Comment{},
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) CreatePost(_ context.Context, userID int64, title, content string) (*models.Post, error) {
	p := &models.Post{PostID: f.id(), UserID: userID, UserName: "user" + strconv.FormatInt(userID, 10), Title: title, Content: content}
	f.posts[p.PostID] = p
	return p, nil
}

func (f *fakeStore) GetPost(_ context.Context, postID int64) (*models.Post, error) {
	p, ok := f.posts[postID]
	if !ok || p.IsDeleted {
		return nil, db.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) ListPosts(_ context.Context, filter models.PostFilter) ([]models.Post, error) {
	f.lastFilter = filter
	out := []models.Post{}
	for _, p := range f.posts {
		if !p.IsDeleted {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdatePost(ctx context.Context, postID, userID int64, title, content *string) (*models.Post, bool, error) {
	p, err := f.GetPost(ctx, postID)
	if err != nil {
		return nil, false, err
	}
	if p.UserID != userID {
		return nil, false, db.ErrForbidden
	}
	if title != nil {
		p.Title = *title
	}
	changed := content != nil && *content != p.Content
	if changed {
		p.Content = *content
		p.AIFields = models.AIFields{}
	}
	return p, changed, nil
}

func (f *fakeStore) DeletePost(_ context.Context, postID, userID int64) error {
	p, ok := f.posts[postID]
	if !ok {
		return db.ErrNotFound
	}
	if userID != 0 && p.UserID != userID {
		return db.ErrForbidden
	}
	p.IsDeleted = true
	return nil
}

func (f *fakeStore) SentimentAnalytics(context.Context) (models.SentimentAnalytics, error) {
	return f.analytics, nil
}

func (f *fakeStore) CreateComment(ctx context.Context, postID, userID int64, content string, parentID *int64) (*models.Comment, error) {
	if _, err := f.GetPost(ctx, postID); err != nil {
		return nil, err
	}
	c := &models.Comment{CommentID: f.id(), PostID: postID, UserID: userID, Content: content, ParentCommentID: parentID}
	f.comments[c.CommentID] = c
	return c, nil
}

func (f *fakeStore) ListComments(_ context.Context, postID int64) ([]models.Comment, error) {
	out := []models.Comment{}
	for _, c := range f.comments {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateComment(_ context.Context, postID, commentID, userID int64, content *string) (*models.Comment, bool, error) {
	c, ok := f.comments[commentID]
	if !ok || c.PostID != postID {
		return nil, false, db.ErrNotFound
	}
	if c.UserID != userID {
		return nil, false, db.ErrForbidden
	}
	if content == nil || *content == c.Content {
		return c, false, nil
	}
	c.Content = *content
	return c, true, nil
}

func (f *fakeStore) DeleteComment(_ context.Context, postID, commentID, userID int64) error {
	c, ok := f.comments[commentID]
	if !ok || c.PostID != postID {
		return db.ErrNotFound
	}
	if c.UserID != userID {
		return db.ErrForbidden
	}
	delete(f.comments, commentID)
	return nil
}

func (f *fakeStore) ListFlaggedPosts(context.Context, int, int) ([]models.Post, error) {
	return f.flagged, nil
}

func (f *fakeStore) AdminStats(context.Context) (models.AdminStats, error) {
	return f.stats, nil
}

type fakeDispatcher struct {
	mu    sync.Mutex
	tasks []models.AnalysisTask
	err   error
}

func (d *fakeDispatcher) Submit(task models.AnalysisTask) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.tasks = append(d.tasks, task)
	return nil
}

func (d *fakeDispatcher) Shutdown(context.Context) error { return nil }

func (d *fakeDispatcher) submitted() []models.AnalysisTask {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.AnalysisTask(nil), d.tasks...)
}

type fakeAnalyzer struct {
	texts []string
}

func (a *fakeAnalyzer) AnalyzeTextComplete(_ context.Context, text string) models.AnalysisResult {
	a.texts = append(a.texts, text)
	return models.AnalysisResult{
		Text: text,
		Sentiment: models.SentimentResult{
			SentimentLabel: models.SentimentNegative,
			Confidence:     0.9,
			IsNegative:     true,
		},
		Sarcasm:     models.SarcasmResult{Confidence: 0.7},
		NeedsReview: true,
	}
}

type harness struct {
	store      *fakeStore
	dispatcher *fakeDispatcher
	analyzer   *fakeAnalyzer
	server     *Server
}

func newHarness() *harness {
	h := &harness{
		store:      newFakeStore(),
		dispatcher: &fakeDispatcher{},
		analyzer:   &fakeAnalyzer{},
	}
	auth, err := NewAuthenticator(testSecret)
	if err != nil {
		panic(err)
	}
	h.server = NewServer(h.store, h.analyzer, h.dispatcher, auth)
	return h
}

func (h *harness) do(t *testing.T, method, target, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.server.Handler().ServeHTTP(rec, req)
	return rec
}

func signToken(t *testing.T, secret string, userID int64, admin bool) string {
	t.Helper()

	claims := Claims{
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}
