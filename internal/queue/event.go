// Package queue defines message payloads exchanged over the message broker.
package queue

// CommentCreatedEvent is published when a comment is successfully stored.
// It carries enough information for downstream consumers to log, notify or
// feed moderation tooling without querying the primary database.
type CommentCreatedEvent struct {
	CommentID string `json:"comment_id"`
	MovieID   string `json:"movie_id"`
	UserID    string `json:"user_id,omitempty"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}
