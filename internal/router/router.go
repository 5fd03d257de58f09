// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/movie-catalog/internal/config"
	"github.com/iliyamo/movie-catalog/internal/handler"
	"github.com/iliyamo/movie-catalog/internal/middleware"
	"github.com/iliyamo/movie-catalog/internal/repository"
)

// RegisterRoutes registers routes that do not belong to the /api surface.
// Currently it exposes only a health check, used by load balancers and
// monitoring systems to verify that the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAPI wires the whole /api surface. The token-bucket rate limiter
// covers every route; the Redis response cache fronts only the public
// catalog reads, which are identical for all callers. Protected routes run
// JWTAuth (token validation) followed by LoadPrincipal (identity
// resolution against the users table); handlers behind that pair can rely
// on a fully populated principal. rdb may be nil, in which case both the
// limiter and the cache silently disable themselves.
func RegisterAPI(
	e *echo.Echo,
	cfg config.Config,
	a *handler.AuthHandler,
	mv *handler.MoviesHandler,
	sm *handler.SavedMoviesHandler,
	cm *handler.CommentsHandler,
	users *repository.UserRepo,
	rdb *redis.Client,
) {
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	api := e.Group("/api")

	// Session establishment endpoints; no prior authentication.
	api.POST("/register", a.Register)
	api.POST("/login", a.Login)
	api.POST("/refresh", a.Refresh)

	// Public catalog reads, served through the response cache.
	cached := api.Group("", middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	cached.GET("/movies", mv.List)
	cached.GET("/movies/:id", mv.Get)

	// Comment reads are public but not cached: a fresh comment should be
	// visible on the next page load.
	api.GET("/comments", cm.List)

	// Everything below requires a resolved principal.
	auth := api.Group("", middleware.JWTAuth(cfg.JWTSecret), middleware.LoadPrincipal(users))
	auth.POST("/logout", a.Logout)
	auth.GET("/me", a.Me)
	auth.GET("/users/me/movies", sm.List)
	auth.POST("/users/me/movies", sm.Add)
	auth.DELETE("/users/me/movies/:movieID", sm.Remove)
	auth.POST("/comments", cm.Add)
}
