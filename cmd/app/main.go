package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"playground_server/internal/config"
	"playground_server/internal/db"
	"playground_server/internal/game"
	"playground_server/internal/game/codenames"
	"playground_server/internal/game/snake"
	"playground_server/internal/game/tictactoe"
	httpServer "playground_server/internal/http"
	"playground_server/internal/http/middleware"
	"playground_server/internal/logger"
	"playground_server/internal/migrations"
	"playground_server/internal/repository"
	"playground_server/internal/service"
	"playground_server/internal/words"
	"playground_server/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	corpus, err := words.Load(cfg.WordsCardsFile, cfg.WordsDictionaryFile)
	if err != nil {
		logger.Fatal("failed to load word lists", "error", err)
	}
	logger.Info("word lists loaded", "cards", corpus.Len(), "dictionary", corpus.DictionarySize())

	tokens, err := service.NewJWTService(cfg.JWTSecret, 24*time.Hour)
	if err != nil {
		logger.Fatal("failed to init jwt", "error", err)
	}

	factory := game.NewFactory(
		game.Options{TurnTimeout: cfg.TurnTimeout, Logger: logger.With("component", "game")},
		codenames.Definition(corpus, codenames.DefaultParameters()),
		tictactoe.Definition(),
		snake.Definition(),
	)

	deps := httpServer.Deps{
		Version:        cfg.AppVersion,
		AllowedOrigin:  cfg.AllowedOrigin,
		Factory:        factory,
		Tokens:         tokens,
		APIRateLimit:   cfg.APIRateLimit,
		APIRateWindow:  cfg.APIRateWindow,
		GameRateLimit:  cfg.GameRateLimit,
		GameRateWindow: cfg.GameRateWindow,
	}

	var results ws.ResultStore
	if cfg.PersistenceEnabled() {
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("failed to connect database", "error", err)
		}
		defer pool.Close()

		applied, err := migrations.Apply(ctx, pool)
		if err != nil {
			logger.Fatal("failed to apply migrations", "error", err)
		}
		logger.Info("migrations applied", "files", applied)

		repo := repository.NewGameResultRepository(pool)
		results = repo
		deps.DB = pool
		deps.Results = repo
	} else {
		logger.Warn("DATABASE_URL not set, results will not be persisted")
	}

	if cfg.RedisAddr != "" {
		limiter, err := middleware.NewRedisLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("redis unavailable, using in-process rate limits", "error", err)
		} else {
			defer limiter.Close()
			deps.Limiter = limiter
		}
	}

	hub := ws.NewHub(factory, results)
	hub.StartCleanup(ctx, 30*time.Second)
	deps.Hub = hub

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics(), cors(cfg.AllowedOrigin))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	httpServer.RegisterRoutes(r, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", cfg.AppVersion)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	hub.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	logger.Info("server exited")
}

// cors allows the configured origin, or echoes any origin when none is set.
func cors(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (allowedOrigin == "" || origin == allowedOrigin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
