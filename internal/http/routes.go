package http

import (
	"time"

	"playground_server/internal/game"
	"playground_server/internal/http/handlers"
	"playground_server/internal/http/middleware"
	"playground_server/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Deps are the services routes are built on. DB, Results and Limiter are
// optional.
type Deps struct {
	Version       string
	AllowedOrigin string

	Hub     *ws.Hub
	Factory *game.Factory
	Tokens  middleware.TokenParser

	DB      *pgxpool.Pool
	Results handlers.ResultReader
	Limiter *middleware.RedisLimiter

	APIRateLimit   int
	APIRateWindow  time.Duration
	GameRateLimit  int
	GameRateWindow time.Duration
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	h := handlers.NewHandler(d.Hub, d.Factory, d.Results, d.AllowedOrigin)

	deps := map[string]handlers.Pinger{"database": nil, "redis": nil}
	if d.DB != nil {
		deps["database"] = d.DB
	}
	if d.Limiter != nil {
		deps["redis"] = d.Limiter
	}
	var load handlers.LoadReporter
	if d.Hub != nil {
		load = d.Hub
	}
	healthHandler := handlers.NewHealthHandler(d.Version, load, deps)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	apiRL := middleware.SimpleRateLimit(d.APIRateLimit, d.APIRateWindow, nil)
	gameRL := middleware.SimpleRateLimit(d.GameRateLimit, d.GameRateWindow, middleware.UserKey)
	if d.Limiter != nil {
		apiRL = d.Limiter.ByIP(d.APIRateLimit, d.APIRateWindow)
		gameRL = d.Limiter.ByUser(d.GameRateLimit, d.GameRateWindow)
	}
	auth := middleware.JWT(d.Tokens)

	v1 := r.Group("/api/v1")
	v1.Use(apiRL)
	{
		v1.GET("/games", h.ListGames)
		v1.GET("/lobby", h.Lobby)
		v1.GET("/rooms/:id", h.GetRoom)
		v1.GET("/me/results", auth, h.MyResults)
	}

	// game connections are limited per user, not per IP
	r.GET("/ws", auth, gameRL, h.WS)
}
