package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-catalog/internal/middleware"
	"github.com/iliyamo/movie-catalog/internal/model"
	"github.com/iliyamo/movie-catalog/internal/queue"
	"github.com/iliyamo/movie-catalog/internal/repository"
	queuepublisher "github.com/iliyamo/movie-catalog/internal/service"
)

// CommentsHandler serves the comment stream of a movie. Reading is
// public, writing requires an authenticated principal.
type CommentsHandler struct {
	Comments *repository.CommentRepo
}

func NewCommentsHandler(cm *repository.CommentRepo) *CommentsHandler {
	return &CommentsHandler{Comments: cm}
}

type addCommentReq struct {
	MovieID string `json:"movie_id"`
	Text    string `json:"text"`
}

type commentResp struct {
	ID      string    `json:"id"`
	MovieID string    `json:"movie_id"`
	UserID  string    `json:"user_id,omitempty"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Text    string    `json:"text"`
	Date    time.Time `json:"date"`
}

func toCommentResp(c model.Comment) commentResp {
	return commentResp{
		ID:      c.ID,
		MovieID: c.MovieID,
		UserID:  c.UserID,
		Name:    c.Name,
		Email:   c.Email,
		Text:    c.Text,
		Date:    c.CreatedAt,
	}
}

// Add appends a comment attributed to the current principal. The author's
// display name and email are stamped onto the record at write time, so the
// comment keeps its attribution even if the profile changes later. A
// comment.created event is published best-effort; a broker outage never
// fails the request.
func (h *CommentsHandler) Add(c echo.Context) error {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req addCommentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing required comment data"})
	}
	movieID := strings.TrimSpace(req.MovieID)
	text := strings.TrimSpace(req.Text)
	if movieID == "" || text == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing required comment data"})
	}
	if _, err := uuid.Parse(movieID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id format"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Comments.Create(ctx, movieID, p.ID, p.Name, p.Email, text)
	if err != nil {
		c.Logger().Errorf("comment insert failed for movie %s by %s: %v", movieID, p.ID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database operation failed"})
	}

	_ = queuepublisher.PublishCommentCreated(ctx, queue.CommentCreatedEvent{
		CommentID: id,
		MovieID:   movieID,
		UserID:    p.ID,
		Name:      p.Name,
		Email:     p.Email,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, echo.Map{"message": "comment added successfully", "comment_id": id})
}

// List returns all comments for a movie, newest first. Public.
func (h *CommentsHandler) List(c echo.Context) error {
	movieID := strings.TrimSpace(c.QueryParam("movieId"))
	if movieID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie id is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	comments, err := h.Comments.ListByMovie(ctx, movieID)
	if err != nil {
		if err == repository.ErrInvalidID {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id format"})
		}
		c.Logger().Errorf("comment listing failed for movie %s: %v", movieID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database operation failed"})
	}

	out := make([]commentResp, 0, len(comments))
	for _, cm := range comments {
		out = append(out, toCommentResp(cm))
	}
	return c.JSON(http.StatusOK, echo.Map{"comments": out})
}
