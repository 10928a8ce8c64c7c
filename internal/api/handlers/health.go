package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const serviceName = "millerlite-leaderboard"

type HealthHandler struct {
	cache TournamentCache
}

func NewHealthHandler(cache TournamentCache) *HealthHandler {
	return &HealthHandler{
		cache: cache,
	}
}

// GetHealth returns 200 whenever the server is running
func (h *HealthHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"time":    time.Now().UTC(),
		"service": serviceName,
	})
}

// GetReady returns 200 once a tournament snapshot has been cached
func (h *HealthHandler) GetReady(c *gin.Context) {
	snapshot, fetchedAt, ok := h.cache.Peek()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "ready",
		"tournament_id": snapshot.Tournament.ID,
		"round":         snapshot.Tournament.Round,
		"fetched_at":    fetchedAt.UTC(),
	})
}
