package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// Placeholder values used in display records
const (
	Placeholder  = "-"
	NotAvailable = "N/A"
	EvenPar      = "E"
	Finished     = "F"
	StatusCut    = "CUT"
	HolesInRound = 18
	DefaultRound = 1
)

// FlexString accepts either a JSON string or a JSON number. Sportradar sends
// positions as integers while other feeds send "T3" or "CUT".
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = FlexString(n.String())
	return nil
}

// FlexInt accepts a JSON number or a numeric string. Anything else decodes
// to an absent value instead of failing the whole record.
type FlexInt struct {
	Value int
	Valid bool
}

func (i *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*i = FlexInt{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return nil
		}
		n, err := strconv.Atoi(str)
		if err != nil {
			return nil
		}
		*i = FlexInt{Value: n, Valid: true}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return nil
	}
	*i = FlexInt{Value: int(f), Valid: true}
	return nil
}

func (i FlexInt) MarshalJSON() ([]byte, error) {
	if !i.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(i.Value)), nil
}

// IntPtr returns the value as a pointer, nil when absent
func (i FlexInt) IntPtr() *int {
	if !i.Valid {
		return nil
	}
	v := i.Value
	return &v
}

// RawRound is one round entry of a player on the provider leaderboard
type RawRound struct {
	Sequence FlexInt `json:"sequence"`
	Thru     FlexInt `json:"thru"`
	Score    FlexInt `json:"score"`
	Strokes  FlexInt `json:"strokes"`
}

// RawPlayerRecord is a player as returned by the provider leaderboard
type RawPlayerRecord struct {
	ID        string     `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Country   string     `json:"country"`
	Position  FlexString `json:"position"`
	Tied      bool       `json:"tied"`
	Status    string     `json:"status"`
	Score     FlexInt    `json:"score"`
	Strokes   FlexInt    `json:"strokes"`
	Rounds    []RawRound `json:"rounds"`
}

// DisplayRecord is the normalized, display-ready view of a player
type DisplayRecord struct {
	Position       string `json:"position"`
	PositionNumber Rank   `json:"position_number"`
	Tied           bool   `json:"tied"`
	Score          string `json:"score"`
	Today          string `json:"today"`
	Thru           string `json:"thru"`
	Payout         string `json:"payout"`
}

// NotFoundRecord is used for roster players missing from the leaderboard
func NotFoundRecord() DisplayRecord {
	return DisplayRecord{
		Position:       NotAvailable,
		PositionNumber: Unranked(),
		Tied:           false,
		Score:          NotAvailable,
		Today:          NotAvailable,
		Thru:           NotAvailable,
		Payout:         Placeholder,
	}
}

// Venue describes where a tournament is played
type Venue struct {
	Name string `json:"name"`
}

// TournamentInfo is the "current tournament" read served to the frontend
type TournamentInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Venue     Venue  `json:"venue"`
	Round     int    `json:"round"`
}

// TournamentSnapshot is one refresh worth of data. It is replaced as a whole
// on refresh and never mutated afterwards.
type TournamentSnapshot struct {
	Tournament  TournamentInfo           `json:"tournament"`
	Leaderboard map[string]DisplayRecord `json:"leaderboard"`
}

// StoredSnapshot is a snapshot together with the time it was fetched
type StoredSnapshot struct {
	Snapshot  *TournamentSnapshot `json:"snapshot"`
	FetchedAt time.Time           `json:"fetched_at"`
}

// TournamentSummary is an entry of the season schedule
type TournamentSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Status    string `json:"status"`
	Venue     Venue  `json:"venue"`
}
