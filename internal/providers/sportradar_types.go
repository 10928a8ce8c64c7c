package providers

import (
	"encoding/json"

	"github.com/stigscousin/millerlite-leaderboard/internal/models"
)

// Sportradar Golf v3 response structures

type sportradarVenue struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	City string `json:"city"`
}

type sportradarTournament struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date"`
	Status    string          `json:"status"`
	Venue     sportradarVenue `json:"venue"`
}

type sportradarScheduleResponse struct {
	Season struct {
		Year int `json:"year"`
	} `json:"season"`
	Tournaments []sportradarTournament `json:"tournaments"`
}

type sportradarLeaderboardResponse struct {
	sportradarTournament
	Round        models.FlexInt    `json:"round"`
	CurrentRound models.FlexInt    `json:"current_round"`
	Leaderboard  []json.RawMessage `json:"leaderboard"`
}

// LeaderboardData is a decoded provider leaderboard
type LeaderboardData struct {
	TournamentID string
	Name         string
	Status       string
	Round        int
	Players      []models.RawPlayerRecord
	// Skipped is the number of player entries that could not be decoded
	Skipped int
}

func (t sportradarTournament) toSummary() models.TournamentSummary {
	return models.TournamentSummary{
		ID:        t.ID,
		Name:      t.Name,
		StartDate: t.StartDate,
		EndDate:   t.EndDate,
		Status:    t.Status,
		Venue:     models.Venue{Name: t.Venue.Name},
	}
}
