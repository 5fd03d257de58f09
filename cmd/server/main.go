package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // loads .env into the process environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/movie-catalog/internal/config"
	"github.com/iliyamo/movie-catalog/internal/database"
	"github.com/iliyamo/movie-catalog/internal/handler"
	"github.com/iliyamo/movie-catalog/internal/queue"
	"github.com/iliyamo/movie-catalog/internal/repository"
	"github.com/iliyamo/movie-catalog/internal/router"
)

func main() {
	// A missing .env is fine in production where variables come from the
	// environment itself.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Nil when Redis is unreachable; cache and rate limiting degrade off.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; response cache and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	movies := repository.NewMovieRepo(db)
	comments := repository.NewCommentRepo(db)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	moviesH := handler.NewMoviesHandler(movies, comments)
	savedH := handler.NewSavedMoviesHandler(users, movies)
	commentsH := handler.NewCommentsHandler(comments)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAPI(e, cfg, authH, moviesH, savedH, commentsH, users, rdb)

	// Background consumer for comment.created events; reconnects on its own.
	go func() {
		if err := queue.StartCommentConsumer(); err != nil {
			log.Printf("comment consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
