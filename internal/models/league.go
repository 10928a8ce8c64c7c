package models

// Membership binds one league member to the golfer they own for the
// current tournament
type Membership struct {
	Member string `json:"member" mapstructure:"member"`
	Player string `json:"player" mapstructure:"player"`
}

// LeagueStanding is one row of the league board
type LeagueStanding struct {
	Member string `json:"member"`
	Player string `json:"player"`
	DisplayRecord
}

// LeagueBoard is the league leaderboard served to the frontend
type LeagueBoard struct {
	Tournament TournamentInfo   `json:"tournament"`
	Standings  []LeagueStanding `json:"standings"`
}
