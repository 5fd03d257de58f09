// This file implements the saved-movie list endpoints. The list is a set:
// adding is idempotent and reports 200 whether or not the movie was already
// present, while removing a movie that is not in the set is a 404. That
// asymmetry mirrors the product behavior and is covered by tests; do not
// "fix" one side to match the other.

package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-catalog/internal/middleware"
	"github.com/iliyamo/movie-catalog/internal/repository"
)

// SavedMoviesHandler manages the per-user saved-movie set.
type SavedMoviesHandler struct {
	Users  *repository.UserRepo
	Movies *repository.MovieRepo
}

func NewSavedMoviesHandler(u *repository.UserRepo, m *repository.MovieRepo) *SavedMoviesHandler {
	return &SavedMoviesHandler{Users: u, Movies: m}
}

type saveMovieReq struct {
	MovieID string `json:"movie_id"`
}

// List returns the movies in the principal's saved set. Saved ids whose
// movie no longer exists in the catalog are silently dropped; ids that are
// not even structurally valid were already skipped (and logged) by the
// repository read.
func (h *SavedMoviesHandler) List(c echo.Context) error {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// The principal was resolved at the start of the request; the row can
	// disappear between then and now, which callers see as 404 rather
	// than an empty list.
	exists, err := h.Users.Exists(ctx, p.ID)
	if err != nil {
		c.Logger().Errorf("saved list: user check failed for %s: %v", p.ID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database operation failed"})
	}
	if !exists {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user data not found"})
	}

	ids, err := h.Users.GetSavedMovieIDs(ctx, p.ID)
	if err != nil {
		c.Logger().Errorf("saved list: fetch ids failed for %s: %v", p.ID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database operation failed"})
	}

	movies, err := h.Movies.GetByIDs(ctx, ids)
	if err != nil {
		c.Logger().Errorf("saved list: resolve movies failed for %s: %v", p.ID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database operation failed"})
	}

	out := make([]movieResp, 0, len(movies))
	for _, m := range movies {
		out = append(out, toMovieResp(m))
	}
	return c.JSON(http.StatusOK, echo.Map{"movies": out})
}

// Add performs a set-insert. Both "newly added" and "was already there"
// are 200s; the body tells them apart.
func (h *SavedMoviesHandler) Add(c echo.Context) error {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req saveMovieReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie id is required"})
	}
	movieID := strings.TrimSpace(req.MovieID)
	if movieID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie id is required"})
	}
	if _, err := uuid.Parse(movieID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id format"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	alreadyPresent, err := h.Users.AddSavedMovie(ctx, p.ID, movieID)
	if err != nil {
		c.Logger().Errorf("saved list: add %s for %s failed: %v", movieID, p.ID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database operation failed"})
	}

	msg := "movie added successfully"
	if alreadyPresent {
		msg = "movie already in saved list"
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg, "already_present": alreadyPresent})
}

// Remove performs a set-remove; absence is reported as 404, not as an
// idempotent success.
func (h *SavedMoviesHandler) Remove(c echo.Context) error {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	movieID := strings.TrimSpace(c.Param("movieID"))
	if _, err := uuid.Parse(movieID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id format"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	removed, err := h.Users.RemoveSavedMovie(ctx, p.ID, movieID)
	if err != nil {
		c.Logger().Errorf("saved list: remove %s for %s failed: %v", movieID, p.ID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database operation failed"})
	}
	if !removed {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found in saved list"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "movie removed successfully"})
}
