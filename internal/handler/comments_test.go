package handler

import (
	"database/sql"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/iliyamo/movie-catalog/internal/repository"
)

const listCommentsSQL = "SELECT id,movie_id,user_id,name,email,text,created_at FROM comments WHERE movie_id=? ORDER BY created_at DESC, id DESC"

func newCommentsHandler(db *sql.DB) *CommentsHandler {
	return NewCommentsHandler(repository.NewCommentRepo(db))
}

func TestCommentsAdd_RequiresPrincipal(t *testing.T) {
	db, _ := newMockDB(t)
	defer db.Close()

	c, rec := newTestContext(t, http.MethodPost, "/api/comments",
		fmt.Sprintf(`{"movie_id":%q,"text":"hi"}`, uuid.NewString()))
	if err := newCommentsHandler(db).Add(c); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d want 401", rec.Code)
	}
}

func TestCommentsAdd_ValidatesInput(t *testing.T) {
	db, _ := newMockDB(t)
	defer db.Close()

	h := newCommentsHandler(db)
	for _, tc := range []struct {
		body string
		want string
	}{
		{fmt.Sprintf(`{"movie_id":%q,"text":"   "}`, uuid.NewString()), "missing required comment data"},
		{`{"text":"hello"}`, "missing required comment data"},
		{`{"movie_id":"abc","text":"hello"}`, "invalid movie id format"},
	} {
		c, rec := newTestContext(t, http.MethodPost, "/api/comments", tc.body)
		withPrincipal(c, uuid.NewString())
		if err := h.Add(c); err != nil {
			t.Fatalf("Add error: %v", err)
		}
		if rec.Code != http.StatusBadRequest || decodeJSON(t, rec)["error"] != tc.want {
			t.Fatalf("body %s: got %d %s", tc.body, rec.Code, rec.Body.String())
		}
	}
}

func TestCommentsAdd_StampsPrincipalSnapshot(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	uid := uuid.NewString()
	movieID := uuid.NewString()

	// The author's name and email come from the principal, not the body.
	mock.ExpectExec("INSERT INTO comments (id, movie_id, user_id, name, email, text, created_at) VALUES (?,?,?,?,?,?,?)").
		WithArgs(sqlmock.AnyArg(), movieID, uid, "Alice", "alice@example.com", "loved it", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	c, rec := newTestContext(t, http.MethodPost, "/api/comments",
		fmt.Sprintf(`{"movie_id":%q,"text":"loved it"}`, movieID))
	withPrincipal(c, uid)
	if err := newCommentsHandler(db).Add(c); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d want 201\n%s", rec.Code, rec.Body.String())
	}
	body := decodeJSON(t, rec)
	if _, err := uuid.Parse(body["comment_id"].(string)); err != nil {
		t.Fatalf("comment_id is not a UUID: %v", body["comment_id"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestCommentsList_ValidatesMovieID(t *testing.T) {
	db, _ := newMockDB(t)
	defer db.Close()

	h := newCommentsHandler(db)

	c, rec := newTestContext(t, http.MethodGet, "/api/comments", "")
	if err := h.List(c); err != nil {
		t.Fatalf("List error: %v", err)
	}
	if rec.Code != http.StatusBadRequest || decodeJSON(t, rec)["error"] != "movie id is required" {
		t.Fatalf("missing movieId: %d %s", rec.Code, rec.Body.String())
	}

	c, rec = newTestContext(t, http.MethodGet, "/api/comments?movieId=abc", "")
	if err := h.List(c); err != nil {
		t.Fatalf("List error: %v", err)
	}
	if rec.Code != http.StatusBadRequest || decodeJSON(t, rec)["error"] != "invalid movie id format" {
		t.Fatalf("malformed movieId: %d %s", rec.Code, rec.Body.String())
	}
}

func TestCommentsList_NewestFirst(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	movieID := uuid.NewString()
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "movie_id", "user_id", "name", "email", "text", "created_at"}).
		AddRow(uuid.NewString(), movieID, uuid.NewString(), "Alice", "alice@example.com", "second", now).
		AddRow(uuid.NewString(), movieID, nil, "Bob", "bob@example.com", "first", now.Add(-time.Hour))
	mock.ExpectQuery(listCommentsSQL).WithArgs(movieID).WillReturnRows(rows)

	c, rec := newTestContext(t, http.MethodGet, "/api/comments?movieId="+movieID, "")
	if err := newCommentsHandler(db).List(c); err != nil {
		t.Fatalf("List error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d want 200\n%s", rec.Code, rec.Body.String())
	}

	comments := decodeJSON(t, rec)["comments"].([]any)
	if len(comments) != 2 {
		t.Fatalf("want 2 comments, got %d", len(comments))
	}
	first := comments[0].(map[string]any)
	second := comments[1].(map[string]any)
	if first["text"] != "second" || second["text"] != "first" {
		t.Fatalf("order wrong: %v then %v", first["text"], second["text"])
	}
	// NULL author id is omitted from the payload, not rendered as "".
	if _, present := second["user_id"]; present {
		t.Fatalf("anonymous comment leaked a user_id: %v", second)
	}
}
