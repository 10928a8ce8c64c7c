package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/stigscousin/millerlite-leaderboard/internal/models"
	"github.com/stigscousin/millerlite-leaderboard/internal/providers"
)

// LeaderboardProvider fetches a decoded tournament leaderboard
type LeaderboardProvider interface {
	GetLeaderboard(ctx context.Context, year int, tournamentID string) (*providers.LeaderboardData, error)
}

// TournamentDefinition is the fixed tournament this deployment follows.
// It changes only together with the membership and payout tables.
type TournamentDefinition struct {
	ID        string
	Name      string
	Year      int
	StartDate string
	EndDate   string
	VenueName string
}

// LeaderboardSnapshotSource builds snapshots by fetching the configured
// tournament's leaderboard and normalizing it
type LeaderboardSnapshotSource struct {
	provider   LeaderboardProvider
	normalizer *LeaderboardNormalizer
	breaker    *CircuitBreakerService
	tournament TournamentDefinition
	logger     *logrus.Logger
}

// NewLeaderboardSnapshotSource creates a snapshot source. breaker may be nil.
func NewLeaderboardSnapshotSource(
	provider LeaderboardProvider,
	normalizer *LeaderboardNormalizer,
	breaker *CircuitBreakerService,
	tournament TournamentDefinition,
	logger *logrus.Logger,
) *LeaderboardSnapshotSource {
	return &LeaderboardSnapshotSource{
		provider:   provider,
		normalizer: normalizer,
		breaker:    breaker,
		tournament: tournament,
		logger:     logger,
	}
}

// TournamentID returns the id of the followed tournament
func (s *LeaderboardSnapshotSource) TournamentID() string {
	return s.tournament.ID
}

// FetchSnapshot fetches and normalizes a fresh snapshot. The tournament round
// in the snapshot is the round used to derive every today/thru value.
func (s *LeaderboardSnapshotSource) FetchSnapshot(ctx context.Context) (*models.TournamentSnapshot, error) {
	result, err := s.breaker.Execute(ctx, func() (interface{}, error) {
		return s.provider.GetLeaderboard(ctx, s.tournament.Year, s.tournament.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to refresh tournament %s: %w", s.tournament.ID, err)
	}

	data, ok := result.(*providers.LeaderboardData)
	if !ok || data == nil {
		return nil, fmt.Errorf("failed to refresh tournament %s: empty leaderboard response", s.tournament.ID)
	}

	round := data.Round
	if round <= 0 {
		round = models.DefaultRound
	}

	snapshot := &models.TournamentSnapshot{
		Tournament: models.TournamentInfo{
			ID:        s.tournament.ID,
			Name:      s.tournament.Name,
			StartDate: s.tournament.StartDate,
			EndDate:   s.tournament.EndDate,
			Venue:     models.Venue{Name: s.tournament.VenueName},
			Round:     round,
		},
		Leaderboard: s.normalizer.Normalize(data.Players, round),
	}

	s.logger.WithFields(logrus.Fields{
		"tournament_id": s.tournament.ID,
		"round":         round,
		"players":       len(snapshot.Leaderboard),
		"round_policy":  s.normalizer.Policy(),
	}).Info("Built tournament snapshot")

	return snapshot, nil
}
