package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// UnrankedWireValue is what an unranked Rank serializes to. The frontend sorts
// and renders on this number, so it stays stable.
const UnrankedWireValue = 9999

// Rank is a finishing position used for ordering. Players without a real
// placement (cut with no position, not found, "WD", empty) are unranked and
// always order after every ranked player.
type Rank struct {
	Number int
	Ranked bool
}

// Unranked returns the rank used for players without a placement
func Unranked() Rank {
	return Rank{}
}

// RankOf returns a ranked position
func RankOf(n int) Rank {
	return Rank{Number: n, Ranked: true}
}

// ParseRank parses a raw position string. One leading "T" (tie marker) is
// stripped; the remainder must be all digits.
func ParseRank(position string) Rank {
	digits := strings.TrimPrefix(strings.TrimSpace(position), "T")
	if digits == "" {
		return Unranked()
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return Unranked()
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return Unranked()
	}
	return RankOf(n)
}

// Less reports whether r sorts strictly before other
func (r Rank) Less(other Rank) bool {
	switch {
	case r.Ranked && !other.Ranked:
		return true
	case !r.Ranked:
		return false
	default:
		return r.Number < other.Number
	}
}

// Int returns the wire representation of the rank
func (r Rank) Int() int {
	if !r.Ranked {
		return UnrankedWireValue
	}
	return r.Number
}

func (r Rank) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Int())
}

func (r *Rank) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if n == UnrankedWireValue {
		*r = Unranked()
		return nil
	}
	*r = RankOf(n)
	return nil
}
