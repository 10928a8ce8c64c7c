package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stigscousin/millerlite-leaderboard/internal/models"
	"github.com/stigscousin/millerlite-leaderboard/internal/services"
	"github.com/stigscousin/millerlite-leaderboard/pkg/utils"
)

const unavailableMessage = "Unable to fetch tournament data"

// TournamentCache serves the current tournament snapshot
type TournamentCache interface {
	Get(ctx context.Context) (*models.TournamentSnapshot, error)
	Peek() (*models.TournamentSnapshot, time.Time, bool)
}

// LeagueHandler serves the pool endpoints
type LeagueHandler struct {
	cache   TournamentCache
	members []models.Membership
	logger  *logrus.Logger
}

// NewLeagueHandler creates a new league handler
func NewLeagueHandler(cache TournamentCache, members []models.Membership, logger *logrus.Logger) *LeagueHandler {
	return &LeagueHandler{
		cache:   cache,
		members: members,
		logger:  logger,
	}
}

// GetCurrentTournament returns the followed tournament with its current round
func (h *LeagueHandler) GetCurrentTournament(c *gin.Context) {
	snapshot, err := h.cache.Get(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get current tournament")
		utils.SendUnavailable(c, unavailableMessage)
		return
	}

	utils.SendSuccess(c, snapshot.Tournament)
}

// GetLeaderboard returns the league board sorted by tournament position
func (h *LeagueHandler) GetLeaderboard(c *gin.Context) {
	snapshot, err := h.cache.Get(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get leaderboard")
		utils.SendUnavailable(c, unavailableMessage)
		return
	}

	standings := services.MergeRoster(h.members, snapshot.Leaderboard)

	h.logger.WithFields(logrus.Fields{
		"tournament_id": snapshot.Tournament.ID,
		"round":         snapshot.Tournament.Round,
		"standings":     len(standings),
	}).Debug("Serving league leaderboard")

	utils.SendSuccessWithTournament(c, snapshot.Tournament, standings)
}

// GetMembers returns the membership table in pool order
func (h *LeagueHandler) GetMembers(c *gin.Context) {
	members := h.members
	if members == nil {
		members = []models.Membership{}
	}
	utils.SendSuccess(c, members)
}
