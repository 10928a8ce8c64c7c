package services

import (
	"sort"

	"github.com/stigscousin/millerlite-leaderboard/internal/models"
)

// MergeRoster joins the membership table against a normalized leaderboard.
// Rows are ordered by rank; equal ranks keep membership order, and players
// missing from the leaderboard get an N/A row that sorts last.
func MergeRoster(members []models.Membership, board map[string]models.DisplayRecord) []models.LeagueStanding {
	standings := make([]models.LeagueStanding, 0, len(members))
	for _, m := range members {
		record, ok := board[m.Player]
		if !ok {
			record = models.NotFoundRecord()
		}
		standings = append(standings, models.LeagueStanding{
			Member:        m.Member,
			Player:        m.Player,
			DisplayRecord: record,
		})
	}

	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].PositionNumber.Less(standings[j].PositionNumber)
	})
	return standings
}
