package middleware

// principal.go resolves the session principal for authenticated routes. It
// runs after JWTAuth: the token has already been verified and its subject
// stored as "user_id". This middleware re-derives the principal from the
// users table on every request, so a deleted account stops authenticating
// the moment its row is gone even if its access token has not expired yet.

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-catalog/internal/model"
	"github.com/iliyamo/movie-catalog/internal/repository"
)

const principalKey = "principal"

// LoadPrincipal looks up the authenticated user and stores a
// model.Principal in the context. Every failure mode (malformed id,
// missing user, database error) collapses into the same 401; the
// request never proceeds with a partial identity.
func LoadPrincipal(users *repository.UserRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid, _ := c.Get("user_id").(string)
			if uid == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			u, err := users.GetByID(ctx, uid)
			if err != nil {
				c.Logger().Errorf("principal lookup failed for %s: %v", uid, err)
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			name := u.Name
			if name == "" {
				name = u.Username
			}
			c.Set(principalKey, model.Principal{ID: u.ID, Name: name, Email: u.Email})
			return next(c)
		}
	}
}

// CurrentPrincipal returns the principal resolved by LoadPrincipal. The
// second return is false on public routes or when resolution was skipped.
func CurrentPrincipal(c echo.Context) (model.Principal, bool) {
	p, ok := c.Get(principalKey).(model.Principal)
	return p, ok
}
