package repository

import (
	"context"
	"database/sql"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/movie-catalog/internal/model"
	"github.com/iliyamo/movie-catalog/internal/utils"
)

// UserRepo is the credential store: it owns the 'users' table and the
// 'saved_movies' set table. Saved-list mutations are single-statement
// writes, so concurrent updates to the same user's set serialize at
// the database without any in-process locking.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create hashes the password and inserts a new user with an empty
// saved set, returning the generated UUID. A duplicate email is
// reported as ErrEmailExists regardless of who wins the race: the
// unique index on users.email is the source of truth.
func (r *UserRepo) Create(ctx context.Context, email, password, name, username string, cost int) (string, error) {
	email = strings.TrimSpace(email)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash, name, username, created_at) VALUES (?,?,?,?,?,?)",
		id, email, hash, name, username, time.Now().UTC())
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return "", ErrEmailExists
		}
		return "", err
	}
	return id, nil
}

// GetByEmail fetches a user by email. Emails are stored as given at
// registration; lookup is case-sensitive to match.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.TrimSpace(email)
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,name,username,created_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Username, &u.CreatedAt)
	return u, err
}

// GetByID fetches a user by UUID. A malformed id can never match a
// row, so it is rejected up front as ErrInvalidID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.User{}, ErrInvalidID
	}
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,name,username,created_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Username, &u.CreatedAt)
	return u, err
}

// Exists reports whether a user row with the given id is present.
func (r *UserRepo) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM users WHERE id=? LIMIT 1", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// AddSavedMovie performs an idempotent set-insert of movieID into the
// user's saved set. INSERT IGNORE against the composite primary key
// leaves the set untouched when the element is already a member; zero
// affected rows therefore means "already present", which is a success
// outcome for callers, not an error.
func (r *UserRepo) AddSavedMovie(ctx context.Context, userID, movieID string) (alreadyPresent bool, err error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO saved_movies (user_id, movie_id, created_at) VALUES (?,?,?)",
		userID, movieID, time.Now().UTC())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// RemoveSavedMovie performs a set-remove and reports whether an
// element was actually deleted. Unlike AddSavedMovie the caller
// treats "nothing removed" as a distinct not-found outcome.
func (r *UserRepo) RemoveSavedMovie(ctx context.Context, userID, movieID string) (removed bool, err error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM saved_movies WHERE user_id=? AND movie_id=?",
		userID, movieID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetSavedMovieIDs returns the user's saved set, newest first. Only
// structurally valid UUIDs are surfaced; legacy rows holding malformed
// ids are logged and skipped rather than failing the whole read.
func (r *UserRepo) GetSavedMovieIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT movie_id FROM saved_movies WHERE user_id=? ORDER BY created_at DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		if _, err := uuid.Parse(id); err != nil {
			log.Printf("user %s: skipping malformed saved movie id %q", userID, id)
			continue
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
