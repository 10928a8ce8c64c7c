package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/stigscousin/millerlite-leaderboard/internal/metrics"
	"github.com/stigscousin/millerlite-leaderboard/internal/models"
)

// Fetcher performs a decoded GET against the provider
type Fetcher interface {
	Fetch(ctx context.Context, endpoint string, query url.Values, dest interface{}) error
}

// SportradarGolfClient reads PGA tournament data from the Sportradar Golf v3 API
type SportradarGolfClient struct {
	fetcher Fetcher
	logger  *logrus.Logger
}

// NewSportradarGolfClient creates a new client on top of a fetcher
func NewSportradarGolfClient(fetcher Fetcher, logger *logrus.Logger) *SportradarGolfClient {
	return &SportradarGolfClient{
		fetcher: fetcher,
		logger:  logger,
	}
}

// GetLeaderboard fetches and decodes a tournament leaderboard. Player entries
// that cannot be decoded are skipped; the rest of the board is kept.
func (c *SportradarGolfClient) GetLeaderboard(ctx context.Context, year int, tournamentID string) (*LeaderboardData, error) {
	c.logger.WithFields(logrus.Fields{
		"tournament_id": tournamentID,
		"year":          year,
	}).Info("Fetching tournament leaderboard")

	var response sportradarLeaderboardResponse
	if err := c.fetcher.Fetch(ctx, leaderboardEndpoint(year, tournamentID), nil, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}

	round := models.DefaultRound
	switch {
	case response.Round.Valid && response.Round.Value > 0:
		round = response.Round.Value
	case response.CurrentRound.Valid && response.CurrentRound.Value > 0:
		round = response.CurrentRound.Value
	}

	data := &LeaderboardData{
		TournamentID: response.ID,
		Name:         response.Name,
		Status:       response.Status,
		Round:        round,
		Players:      make([]models.RawPlayerRecord, 0, len(response.Leaderboard)),
	}
	if data.TournamentID == "" {
		data.TournamentID = tournamentID
	}

	for i, raw := range response.Leaderboard {
		var player models.RawPlayerRecord
		if err := json.Unmarshal(raw, &player); err != nil {
			data.Skipped++
			metrics.SkippedRecords.Inc()
			c.logger.WithError(err).WithField("index", i).Warn("Skipping undecodable leaderboard entry")
			continue
		}
		data.Players = append(data.Players, player)
	}

	c.logger.WithFields(logrus.Fields{
		"tournament_id": data.TournamentID,
		"round":         data.Round,
		"players":       len(data.Players),
		"skipped":       data.Skipped,
	}).Debug("Decoded tournament leaderboard")

	return data, nil
}

// GetRawLeaderboard returns the leaderboard body as delivered by the provider
func (c *SportradarGolfClient) GetRawLeaderboard(ctx context.Context, year int, tournamentID string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.fetcher.Fetch(ctx, leaderboardEndpoint(year, tournamentID), nil, &raw); err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}
	return raw, nil
}

// GetTournamentSchedule fetches the season schedule
func (c *SportradarGolfClient) GetTournamentSchedule(ctx context.Context, year int) ([]models.TournamentSummary, error) {
	c.logger.WithField("year", year).Info("Fetching tournament schedule")

	var response sportradarScheduleResponse
	endpoint := fmt.Sprintf("%d/tournaments/schedule.json", year)
	if err := c.fetcher.Fetch(ctx, endpoint, nil, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch schedule: %w", err)
	}

	schedule := make([]models.TournamentSummary, 0, len(response.Tournaments))
	for _, t := range response.Tournaments {
		schedule = append(schedule, t.toSummary())
	}
	return schedule, nil
}

// GetTournamentSummary fetches tournament details
func (c *SportradarGolfClient) GetTournamentSummary(ctx context.Context, year int, tournamentID string) (*models.TournamentSummary, error) {
	c.logger.WithField("tournament_id", tournamentID).Info("Fetching tournament summary")

	var response sportradarTournament
	endpoint := fmt.Sprintf("%d/tournaments/%s/summary.json", year, tournamentID)
	if err := c.fetcher.Fetch(ctx, endpoint, nil, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch tournament summary: %w", err)
	}

	summary := response.toSummary()
	return &summary, nil
}

// FindTournament returns the first tournament of the season whose name
// contains the given text, ignoring case
func (c *SportradarGolfClient) FindTournament(ctx context.Context, year int, name string) (*models.TournamentSummary, error) {
	schedule, err := c.GetTournamentSchedule(ctx, year)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(name))
	for i := range schedule {
		if strings.Contains(strings.ToLower(schedule[i].Name), needle) {
			return &schedule[i], nil
		}
	}
	return nil, fmt.Errorf("no tournament matching %q in %d schedule", name, year)
}

func leaderboardEndpoint(year int, tournamentID string) string {
	return fmt.Sprintf("%d/tournaments/%s/leaderboard.json", year, tournamentID)
}
