package model

import "time"

// Comment is an immutable attributed record on a movie. Name and
// Email are captured from the principal at authoring time; they are a
// snapshot, not a live reference, so later profile edits do not
// rewrite comment history. UserID may be empty for legacy rows whose
// author id was malformed when written.
type Comment struct {
	ID        string    // comments.id
	MovieID   string    // comments.movie_id
	UserID    string    // comments.user_id (may be empty)
	Name      string    // comments.name, snapshot of the author display name
	Email     string    // comments.email, snapshot of the author email
	Text      string    // comments.text
	CreatedAt time.Time // comments.created_at
}
