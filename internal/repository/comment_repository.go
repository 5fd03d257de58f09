package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/movie-catalog/internal/model"
)

// CommentRepo appends to and reads the append-only 'comments' table.
// Comments are immutable: there is no update or delete path.
type CommentRepo struct{ DB *sql.DB }

func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{DB: db} }

// Create inserts a comment stamped with the author snapshot and
// returns the generated comment id. UserID may be empty when the
// author id could not be resolved; the name/email snapshot still
// attributes the comment.
func (r *CommentRepo) Create(ctx context.Context, movieID, userID, name, email, text string) (string, error) {
	id := uuid.NewString()
	var uid any
	if userID != "" {
		uid = userID
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO comments (id, movie_id, user_id, name, email, text, created_at) VALUES (?,?,?,?,?,?,?)",
		id, movieID, uid, name, email, text, time.Now().UTC())
	if err != nil {
		return "", err
	}
	return id, nil
}

// ListByMovie returns all comments for a movie, newest first. The id
// tiebreak keeps the order stable when two comments share a timestamp.
func (r *CommentRepo) ListByMovie(ctx context.Context, movieID string) ([]model.Comment, error) {
	if _, err := uuid.Parse(movieID); err != nil {
		return nil, ErrInvalidID
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,movie_id,user_id,name,email,text,created_at FROM comments WHERE movie_id=? ORDER BY created_at DESC, id DESC",
		movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Comment, 0)
	for rows.Next() {
		var (
			c   model.Comment
			uid sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.MovieID, &uid, &c.Name, &c.Email, &c.Text, &c.CreatedAt); err != nil {
			return nil, err
		}
		if uid.Valid {
			c.UserID = uid.String
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
