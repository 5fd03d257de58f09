package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/movie-catalog/internal/model"
)

// MovieRepo reads the movie catalog. The catalog is maintained out of
// band (imports, admin tooling); this service only queries it.
type MovieRepo struct{ DB *sql.DB }

func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{DB: db} }

const movieColumns = "id,title,plot,genres,year,poster,created_at"

func scanMovie(row interface{ Scan(...any) error }) (model.Movie, error) {
	var m model.Movie
	err := row.Scan(&m.ID, &m.Title, &m.Plot, &m.Genres, &m.Year, &m.Poster, &m.CreatedAt)
	return m, err
}

// Search returns one page of movies matching an optional title substring
// and an optional genre, plus the total count of matching rows so the
// client can render pagination. Both filters are combined with AND when
// present.
func (r *MovieRepo) Search(ctx context.Context, term, genre string, limit, offset int) ([]model.Movie, int, error) {
	where := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if term != "" {
		where = append(where, "title LIKE ?")
		args = append(args, "%"+term+"%")
	}
	if genre != "" {
		// genres is a comma separated list; FIND_IN_SET does exact
		// element matching without the false positives of LIKE.
		where = append(where, "FIND_IN_SET(?, genres) > 0")
		args = append(args, genre)
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM movies"+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+movieColumns+" FROM movies"+cond+" ORDER BY title LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Movie, 0, limit)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}

// GetByID fetches a single movie. Malformed ids are rejected as
// ErrInvalidID and unknown ones as ErrNotFound.
func (r *MovieRepo) GetByID(ctx context.Context, id string) (model.Movie, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.Movie{}, ErrInvalidID
	}
	m, err := scanMovie(r.DB.QueryRowContext(ctx,
		"SELECT "+movieColumns+" FROM movies WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return model.Movie{}, ErrNotFound
	}
	return m, err
}

// GetByIDs resolves a batch of movie ids in one IN query. Ids with no
// matching row are simply absent from the result; the caller decides
// whether that matters. An empty input returns an empty slice without
// touching the database.
func (r *MovieRepo) GetByIDs(ctx context.Context, ids []string) ([]model.Movie, error) {
	if len(ids) == 0 {
		return []model.Movie{}, nil
	}
	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+movieColumns+" FROM movies WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Movie, 0, len(ids))
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
