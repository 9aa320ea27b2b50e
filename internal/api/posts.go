package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/spacesedan/sentisocial/internal/models"
)

type createPostRequest struct {
	Title   string `json:"title" validate:"required,max=255"`
	Content string `json:"content" validate:"required"`
}

type updatePostRequest struct {
	Title   *string `json:"title" validate:"omitempty,max=255"`
	Content *string `json:"content" validate:"omitempty,min=1"`
}

type analyzeRequest struct {
	Text string `json:"text"`
}

func (s *Server) createPost(c echo.Context) error {
	identity, _ := identityFrom(c)

	var req createPostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := s.store.CreatePost(c.Request().Context(), identity.UserID, req.Title, req.Content)
	if err != nil {
		return storeError(err, "user not found")
	}

	if err := c.JSON(http.StatusOK, post); err != nil {
		return err
	}
	s.scheduleAnalysis(models.ContentKindPost, post.PostID, post.Content)
	return nil
}

func (s *Server) listPosts(c echo.Context) error {
	skip, limit, err := page(c)
	if err != nil {
		return err
	}

	filter := models.PostFilter{IncludeSarcastic: true, Skip: skip, Limit: limit}
	if err := echo.QueryParamsBinder(c).
		String("sentiment_filter", &filter.SentimentLabel).
		Bool("include_sarcastic", &filter.IncludeSarcastic).
		BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid filter parameters")
	}
	filter.SentimentLabel = strings.ToLower(filter.SentimentLabel)

	posts, err := s.store.ListPosts(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

func (s *Server) listUserPosts(c echo.Context) error {
	userID, err := pathID(c, "user_id")
	if err != nil {
		return err
	}
	skip, limit, err := page(c)
	if err != nil {
		return err
	}

	posts, err := s.store.ListPostsByUser(c.Request().Context(), userID, skip, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

func (s *Server) getPost(c echo.Context) error {
	postID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	post, err := s.store.GetPost(c.Request().Context(), postID)
	if err != nil {
		return storeError(err, "post not found")
	}
	return c.JSON(http.StatusOK, post)
}

func (s *Server) updatePost(c echo.Context) error {
	identity, _ := identityFrom(c)
	postID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req updatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, contentChanged, err := s.store.UpdatePost(c.Request().Context(), postID, identity.UserID, req.Title, req.Content)
	if err != nil {
		return storeError(err, "post not found")
	}

	if err := c.JSON(http.StatusOK, post); err != nil {
		return err
	}
	if contentChanged {
		s.scheduleAnalysis(models.ContentKindPost, post.PostID, post.Content)
	}
	return nil
}

func (s *Server) deletePost(c echo.Context) error {
	identity, _ := identityFrom(c)
	postID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := s.store.DeletePost(c.Request().Context(), postID, identity.UserID); err != nil {
		return storeError(err, "post not found")
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Post deleted successfully"})
}

// postAnalysis runs the pipeline inline over the stored post. Nothing is persisted.
func (s *Server) postAnalysis(c echo.Context) error {
	postID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	post, err := s.store.GetPost(c.Request().Context(), postID)
	if err != nil {
		return storeError(err, "post not found")
	}

	return c.JSON(http.StatusOK, s.analyzer.AnalyzeTextComplete(c.Request().Context(), post.Content))
}

func (s *Server) analyzeText(c echo.Context) error {
	text := c.QueryParam("text")
	if text == "" && c.Request().ContentLength != 0 {
		var req analyzeRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		text = req.Text
	}
	if text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Text cannot be empty")
	}

	return c.JSON(http.StatusOK, s.analyzer.AnalyzeTextComplete(c.Request().Context(), text))
}

func (s *Server) sentimentAnalytics(c echo.Context) error {
	analytics, err := s.store.SentimentAnalytics(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, analytics)
}
