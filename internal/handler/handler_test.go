package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-catalog/internal/model"
)

// newMockDB returns a sqlmock-backed *sql.DB with exact query matching, so
// a test fails loudly when a handler issues SQL it did not declare.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err, "sqlmock.New")
	return db, mock
}

// newTestContext builds an Echo context around an in-memory request. A
// non-empty body is sent as JSON.
func newTestContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// withPrincipal injects a resolved principal the way LoadPrincipal would.
func withPrincipal(c echo.Context, id string) {
	c.Set("principal", model.Principal{ID: id, Name: "Alice", Email: "alice@example.com"})
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out),
		"response is not JSON: %s", rec.Body.String())
	return out
}

func mockMovieRows(ids ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "title", "plot", "genres", "year", "poster", "created_at"})
	for i, id := range ids {
		rows.AddRow(id, "Title "+id[:8], "plot", "Drama,Sci-Fi", 2000+i, "", time.Now().UTC())
	}
	return rows
}
