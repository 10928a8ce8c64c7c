package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/stigscousin/millerlite-leaderboard/internal/api/handlers"
	"github.com/stigscousin/millerlite-leaderboard/internal/api/middleware"
	"github.com/stigscousin/millerlite-leaderboard/internal/models"
)

// NewRouter builds the HTTP router with probes, metrics and the API routes
func NewRouter(cache handlers.TournamentCache, members []models.Membership, corsOrigins []string, logger *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(corsOrigins))

	healthHandler := handlers.NewHealthHandler(cache)
	router.GET("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	SetupRoutes(router.Group("/api"), cache, members, logger)
	return router
}

// SetupRoutes configures all API routes on the given router group
func SetupRoutes(group *gin.RouterGroup, cache handlers.TournamentCache, members []models.Membership, logger *logrus.Logger) {
	leagueHandler := handlers.NewLeagueHandler(cache, members, logger)

	group.GET("/tournaments/current", leagueHandler.GetCurrentTournament)
	group.GET("/leaderboard", leagueHandler.GetLeaderboard)
	group.GET("/league/members", leagueHandler.GetMembers)
}
