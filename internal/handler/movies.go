// Package handler exposes HTTP handlers for both authenticated and public
// endpoints. This file defines the public catalog browse API: a paginated,
// filterable movie listing and a movie detail view with its comments.
// These routes require no authentication and sit behind the Redis response
// cache.

package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-catalog/internal/model"
	"github.com/iliyamo/movie-catalog/internal/repository"
)

// moviesPerPageDefault is the listing page size when the client does not
// ask for one.
const moviesPerPageDefault = 20

// MoviesHandler serves the read-only movie catalog.
type MoviesHandler struct {
	Movies   *repository.MovieRepo
	Comments *repository.CommentRepo
}

func NewMoviesHandler(m *repository.MovieRepo, cm *repository.CommentRepo) *MoviesHandler {
	return &MoviesHandler{Movies: m, Comments: cm}
}

// movieResp is a movie as exposed over the API. Genres is split from the
// stored comma-separated form into a list.
type movieResp struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Plot   string   `json:"plot,omitempty"`
	Genres []string `json:"genres"`
	Year   int      `json:"year,omitempty"`
	Poster string   `json:"poster,omitempty"`
}

func toMovieResp(m model.Movie) movieResp {
	genres := make([]string, 0, 4)
	for _, g := range strings.Split(m.Genres, ",") {
		if g = strings.TrimSpace(g); g != "" {
			genres = append(genres, g)
		}
	}
	return movieResp{ID: m.ID, Title: m.Title, Plot: m.Plot, Genres: genres, Year: m.Year, Poster: m.Poster}
}

// List returns one page of the catalog. Bad page/limit values fall back to
// defaults rather than erroring, and limit is capped at 100; a junk page
// number should degrade a browse, not break it.
func (h *MoviesHandler) List(c echo.Context) error {
	search := strings.TrimSpace(c.QueryParam("search"))
	category := strings.TrimSpace(c.QueryParam("category"))

	page := 1
	if n, err := strconv.Atoi(c.QueryParam("page")); err == nil && n > 0 {
		page = n
	}
	limit := moviesPerPageDefault
	if n, err := strconv.Atoi(c.QueryParam("limit")); err == nil && n > 0 {
		limit = n
	}
	if limit > 100 {
		limit = 100
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	movies, total, err := h.Movies.Search(ctx, search, category, limit, (page-1)*limit)
	if err != nil {
		c.Logger().Errorf("movie listing failed (search=%q category=%q): %v", search, category, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database operation failed"})
	}

	out := make([]movieResp, 0, len(movies))
	for _, m := range movies {
		out = append(out, toMovieResp(m))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"movies":      out,
		"total_count": total,
		"page":        page,
		"limit":       limit,
	})
}

// Get returns one movie together with its comments, newest first.
func (h *MoviesHandler) Get(c echo.Context) error {
	id := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		switch err {
		case repository.ErrInvalidID:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id format"})
		case repository.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		default:
			c.Logger().Errorf("movie %s lookup failed: %v", id, err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database operation failed"})
		}
	}

	comments, err := h.Comments.ListByMovie(ctx, id)
	if err != nil {
		c.Logger().Errorf("comments for movie %s failed: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database operation failed"})
	}

	out := make([]commentResp, 0, len(comments))
	for _, cm := range comments {
		out = append(out, toCommentResp(cm))
	}
	return c.JSON(http.StatusOK, echo.Map{"movie": toMovieResp(m), "comments": out})
}
