package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spacesedan/sentisocial/internal/dispatch"
	"github.com/spacesedan/sentisocial/internal/models"
)

type Store interface {
	CreatePost(ctx context.Context, userID int64, title, content string) (*models.Post, error)
	GetPost(ctx context.Context, postID int64) (*models.Post, error)
	ListPosts(ctx context.Context, filter models.PostFilter) ([]models.Post, error)
	ListPostsByUser(ctx context.Context, userID int64, skip, limit int) ([]models.Post, error)
	UpdatePost(ctx context.Context, postID, userID int64, title, content *string) (*models.Post, bool, error)
	DeletePost(ctx context.Context, postID, userID int64) error
	SentimentAnalytics(ctx context.Context) (models.SentimentAnalytics, error)

	CreateComment(ctx context.Context, postID, userID int64, content string, parentID *int64) (*models.Comment, error)
	ListComments(ctx context.Context, postID int64) ([]models.Comment, error)
	UpdateComment(ctx context.Context, postID, commentID, userID int64, content *string) (*models.Comment, bool, error)
	DeleteComment(ctx context.Context, postID, commentID, userID int64) error

	ListFlaggedPosts(ctx context.Context, skip, limit int) ([]models.Post, error)
	ListFlaggedComments(ctx context.Context, skip, limit int) ([]models.Comment, error)
	AdminStats(ctx context.Context) (models.AdminStats, error)
}

type TextAnalyzer interface {
	AnalyzeTextComplete(ctx context.Context, text string) models.AnalysisResult
}

type Server struct {
	echo       *echo.Echo
	store      Store
	analyzer   TextAnalyzer
	dispatcher dispatch.Dispatcher
	auth       *Authenticator
	inference  *atomic.Bool
}

func NewServer(store Store, analyzer TextAnalyzer, dispatcher dispatch.Dispatcher, auth *Authenticator) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewRequestValidator()
	e.HTTPErrorHandler = errorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			slog.Info("[API] Request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.CORS())

	s := &Server{
		echo:       e,
		store:      store,
		analyzer:   analyzer,
		dispatcher: dispatcher,
		auth:       auth,
	}

	s.routes()

	return s
}

func (s *Server) routes() {
	s.echo.GET("/health", s.health)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")

	posts := v1.Group("/posts")
	posts.GET("", s.listPosts)
	posts.POST("", s.createPost, s.auth.RequireUser)
	posts.POST("/analyze", s.analyzeText)
	posts.GET("/analytics/sentiment", s.sentimentAnalytics)
	posts.GET("/user/:user_id", s.listUserPosts)
	posts.GET("/:id", s.getPost)
	posts.PUT("/:id", s.updatePost, s.auth.RequireUser)
	posts.DELETE("/:id", s.deletePost, s.auth.RequireUser)
	posts.GET("/:id/analysis", s.postAnalysis)

	posts.GET("/:id/comments", s.listComments)
	posts.POST("/:id/comments", s.createComment, s.auth.RequireUser)
	posts.PUT("/:id/comments/:comment_id", s.updateComment, s.auth.RequireUser)
	posts.DELETE("/:id/comments/:comment_id", s.deleteComment, s.auth.RequireUser)

	admin := v1.Group("/admin", s.auth.RequireUser, s.auth.RequireAdmin)
	admin.GET("/stats", s.adminStats)
	admin.GET("/flagged-posts", s.flaggedPosts)
	admin.GET("/flagged-comments", s.flaggedComments)
	admin.DELETE("/posts/:id", s.adminDeletePost)
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(addr string) error {
	slog.Info("[API] Listening", slog.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// WithInferenceHealth reports the given backend flag on /health.
func (s *Server) WithInferenceHealth(healthy *atomic.Bool) *Server {
	s.inference = healthy
	return s
}

// health stays 200 while inference is down; reads and writes still work and
// analyses fall back.
func (s *Server) health(c echo.Context) error {
	if s.inference != nil && !s.inference.Load() {
		return c.JSON(http.StatusOK, map[string]string{"status": "degraded", "inference": "unhealthy"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// scheduleAnalysis hands new or edited content to the dispatcher. A rejected
// task is logged and the row stays unanalyzed.
func (s *Server) scheduleAnalysis(kind models.ContentKind, id int64, content string) {
	task := dispatch.NewTask(kind, id, content)
	if err := s.dispatcher.Submit(task); err != nil {
		slog.Error("[API] Failed to schedule analysis",
			slog.String("kind", string(kind)),
			slog.Int64("content_id", id),
			slog.String("error", err.Error()))
	}
}
