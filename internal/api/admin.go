package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) adminStats(c echo.Context) error {
	stats, err := s.store.AdminStats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (s *Server) flaggedPosts(c echo.Context) error {
	skip, limit, err := page(c)
	if err != nil {
		return err
	}

	posts, err := s.store.ListFlaggedPosts(c.Request().Context(), skip, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

func (s *Server) flaggedComments(c echo.Context) error {
	skip, limit, err := page(c)
	if err != nil {
		return err
	}

	comments, err := s.store.ListFlaggedComments(c.Request().Context(), skip, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comments)
}

// adminDeletePost soft deletes any post regardless of owner.
func (s *Server) adminDeletePost(c echo.Context) error {
	postID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := s.store.DeletePost(c.Request().Context(), postID, 0); err != nil {
		return storeError(err, "post not found")
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Post deleted successfully"})
}
