package handler

import (
	"database/sql"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/movie-catalog/internal/config"
	"github.com/iliyamo/movie-catalog/internal/repository"
	"github.com/iliyamo/movie-catalog/internal/utils"
)

const (
	userByEmailSQL = "SELECT id,email,password_hash,name,username,created_at FROM users WHERE email=? LIMIT 1"
	userByIDSQL    = "SELECT id,email,password_hash,name,username,created_at FROM users WHERE id=? LIMIT 1"
	insertUserSQL  = "INSERT INTO users (id, email, password_hash, name, username, created_at) VALUES (?,?,?,?,?,?)"
	insertTokenSQL = "INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)"
	tokenLookupSQL = "SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash=? LIMIT 1"
)

func testCfg() config.Config {
	return config.Config{
		JWTSecret:      "test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		BcryptCost:     bcrypt.MinCost,
	}
}

func newAuthHandler(db *sql.DB) *AuthHandler {
	return NewAuthHandler(testCfg(), repository.NewUserRepo(db), repository.NewTokenRepo(db))
}

func userRow(id, email, hash, name, username string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "username", "created_at"}).
		AddRow(id, email, hash, name, username, time.Now().UTC())
}

func TestRegister_CreatesUserAndSession(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	mock.ExpectQuery(userByEmailSQL).WithArgs("new@example.com").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(insertUserSQL).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(insertTokenSQL).WillReturnResult(sqlmock.NewResult(1, 1))

	c, rec := newTestContext(t, http.MethodPost, "/api/register",
		`{"email":"new@example.com","password":"secret123"}`)
	if err := newAuthHandler(db).Register(c); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d want 201\n%s", rec.Code, rec.Body.String())
	}

	body := decodeJSON(t, rec)
	user := body["user"].(map[string]any)
	if user["email"] != "new@example.com" {
		t.Fatalf("user email: %v", user["email"])
	}
	// No username in the request: it defaults to the email.
	if user["username"] != "new@example.com" {
		t.Fatalf("username default: %v", user["username"])
	}
	if _, err := uuid.Parse(user["id"].(string)); err != nil {
		t.Fatalf("user id is not a UUID: %v", user["id"])
	}
	access := body["access"].(map[string]any)
	if access["token"] == "" {
		t.Fatalf("missing access token")
	}
	refresh := body["refresh"].(map[string]any)
	if len(refresh["token"].(string)) != 96 {
		t.Fatalf("refresh token length: %d", len(refresh["token"].(string)))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestRegister_MissingFields(t *testing.T) {
	db, _ := newMockDB(t)
	defer db.Close()

	for _, body := range []string{
		`{"email":"a@b.c"}`,
		`{"password":"pw"}`,
		`{"email":"  ","password":"pw"}`,
	} {
		c, rec := newTestContext(t, http.MethodPost, "/api/register", body)
		if err := newAuthHandler(db).Register(c); err != nil {
			t.Fatalf("Register error: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: status %d want 400", body, rec.Code)
		}
		if decodeJSON(t, rec)["error"] != "email and password required" {
			t.Fatalf("body %s: unexpected error %s", body, rec.Body.String())
		}
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	mock.ExpectQuery(userByEmailSQL).WithArgs("taken@example.com").
		WillReturnRows(userRow(uuid.NewString(), "taken@example.com", "$2a$10$x", "Bob", "bob"))

	c, rec := newTestContext(t, http.MethodPost, "/api/register",
		`{"email":"taken@example.com","password":"pw"}`)
	if err := newAuthHandler(db).Register(c); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("status: got %d want 409", rec.Code)
	}
	if decodeJSON(t, rec)["error"] != "user with this email already exists" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

// Unknown email and wrong password must be indistinguishable to the caller.
func TestLogin_FailureResponsesAreIdentical(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	hash, err := utils.HashPassword("correct-horse", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	mock.ExpectQuery(userByEmailSQL).WithArgs("ghost@example.com").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(userByEmailSQL).WithArgs("alice@example.com").
		WillReturnRows(userRow(uuid.NewString(), "alice@example.com", hash, "Alice", "alice"))

	h := newAuthHandler(db)

	c1, rec1 := newTestContext(t, http.MethodPost, "/api/login",
		`{"email":"ghost@example.com","password":"whatever"}`)
	if err := h.Login(c1); err != nil {
		t.Fatalf("Login error: %v", err)
	}
	c2, rec2 := newTestContext(t, http.MethodPost, "/api/login",
		`{"email":"alice@example.com","password":"wrong-horse"}`)
	if err := h.Login(c2); err != nil {
		t.Fatalf("Login error: %v", err)
	}

	if rec1.Code != http.StatusUnauthorized || rec2.Code != http.StatusUnauthorized {
		t.Fatalf("status: %d and %d, want 401 for both", rec1.Code, rec2.Code)
	}
	if rec1.Body.String() != rec2.Body.String() {
		t.Fatalf("unknown-email and wrong-password bodies differ:\n%s\n%s",
			rec1.Body.String(), rec2.Body.String())
	}
}

func TestLogin_Success(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	uid := uuid.NewString()
	hash, err := utils.HashPassword("secret123", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	mock.ExpectQuery(userByEmailSQL).WithArgs("alice@example.com").
		WillReturnRows(userRow(uid, "alice@example.com", hash, "", "alice"))
	mock.ExpectExec(insertTokenSQL).WillReturnResult(sqlmock.NewResult(1, 1))

	c, rec := newTestContext(t, http.MethodPost, "/api/login",
		`{"email":"alice@example.com","password":"secret123"}`)
	if err := newAuthHandler(db).Login(c); err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d want 200\n%s", rec.Code, rec.Body.String())
	}

	body := decodeJSON(t, rec)
	user := body["user"].(map[string]any)
	if user["id"] != uid {
		t.Fatalf("user id: got %v want %s", user["id"], uid)
	}
	// Empty display name falls back to the username.
	if user["name"] != "alice" {
		t.Fatalf("name fallback: %v", user["name"])
	}
}

func TestRefresh_RotatesToken(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	uid := uuid.NewString()
	raw, err := utils.NewRefreshToken(7)
	if err != nil {
		t.Fatalf("NewRefreshToken error: %v", err)
	}
	hash := utils.HashRefreshRaw(raw.Raw)

	mock.ExpectQuery(tokenLookupSQL).WithArgs(hash).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow(uid, time.Now().UTC().Add(time.Hour), nil))
	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at=NOW() WHERE token_hash=? AND revoked_at IS NULL").
		WithArgs(hash).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(userByIDSQL).WithArgs(uid).
		WillReturnRows(userRow(uid, "alice@example.com", "$2a$10$x", "Alice", "alice"))
	mock.ExpectExec(insertTokenSQL).WillReturnResult(sqlmock.NewResult(2, 1))

	c, rec := newTestContext(t, http.MethodPost, "/api/refresh",
		fmt.Sprintf(`{"refresh_token":%q}`, raw.Raw))
	if err := newAuthHandler(db).Refresh(c); err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d want 200\n%s", rec.Code, rec.Body.String())
	}
	body := decodeJSON(t, rec)
	next := body["refresh"].(map[string]any)["token"].(string)
	if next == raw.Raw {
		t.Fatalf("refresh token was not rotated")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestRefresh_UnknownToken(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	mock.ExpectQuery(tokenLookupSQL).WillReturnError(sql.ErrNoRows)

	c, rec := newTestContext(t, http.MethodPost, "/api/refresh",
		`{"refresh_token":"deadbeef"}`)
	if err := newAuthHandler(db).Refresh(c); err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d want 401", rec.Code)
	}
	if decodeJSON(t, rec)["error"] != "invalid refresh token" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestLogout_RevokesAllSessions(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	uid := uuid.NewString()
	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at=NOW() WHERE user_id=? AND revoked_at IS NULL").
		WithArgs(uid).
		WillReturnResult(sqlmock.NewResult(0, 2))

	c, rec := newTestContext(t, http.MethodPost, "/api/logout", "")
	withPrincipal(c, uid)
	if err := newAuthHandler(db).Logout(c); err != nil {
		t.Fatalf("Logout error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d want 200", rec.Code)
	}
	if decodeJSON(t, rec)["message"] != "logout successful" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestMe_ReturnsPrincipal(t *testing.T) {
	db, _ := newMockDB(t)
	defer db.Close()

	uid := uuid.NewString()
	c, rec := newTestContext(t, http.MethodGet, "/api/me", "")
	withPrincipal(c, uid)
	if err := newAuthHandler(db).Me(c); err != nil {
		t.Fatalf("Me error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d want 200", rec.Code)
	}
	user := decodeJSON(t, rec)["user"].(map[string]any)
	if user["id"] != uid || user["email"] != "alice@example.com" {
		t.Fatalf("unexpected principal: %v", user)
	}
}
