package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/spacesedan/sentisocial/internal/models"
)

type createCommentRequest struct {
	Content         string `json:"content" validate:"required"`
	ParentCommentID *int64 `json:"parent_comment_id" validate:"omitempty,gt=0"`
}

type updateCommentRequest struct {
	Content *string `json:"content" validate:"required,min=1"`
}

func (s *Server) createComment(c echo.Context) error {
	identity, _ := identityFrom(c)
	postID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req createCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := s.store.CreateComment(c.Request().Context(), postID, identity.UserID, req.Content, req.ParentCommentID)
	if err != nil {
		return storeError(err, "post or parent comment not found")
	}

	if err := c.JSON(http.StatusOK, comment); err != nil {
		return err
	}
	s.scheduleAnalysis(models.ContentKindComment, comment.CommentID, comment.Content)
	return nil
}

func (s *Server) listComments(c echo.Context) error {
	postID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	comments, err := s.store.ListComments(c.Request().Context(), postID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comments)
}

func (s *Server) updateComment(c echo.Context) error {
	identity, _ := identityFrom(c)
	postID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	commentID, err := pathID(c, "comment_id")
	if err != nil {
		return err
	}

	var req updateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, contentChanged, err := s.store.UpdateComment(c.Request().Context(), postID, commentID, identity.UserID, req.Content)
	if err != nil {
		return storeError(err, "comment not found")
	}

	if err := c.JSON(http.StatusOK, comment); err != nil {
		return err
	}
	if contentChanged {
		s.scheduleAnalysis(models.ContentKindComment, comment.CommentID, comment.Content)
	}
	return nil
}

func (s *Server) deleteComment(c echo.Context) error {
	identity, _ := identityFrom(c)
	postID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	commentID, err := pathID(c, "comment_id")
	if err != nil {
		return err
	}

	if err := s.store.DeleteComment(c.Request().Context(), postID, commentID, identity.UserID); err != nil {
		return storeError(err, "comment not found")
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Comment deleted successfully"})
}
