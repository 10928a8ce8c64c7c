package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stigscousin/millerlite-leaderboard/internal/models"
)

func TestLoadPool_Default(t *testing.T) {
	pool, err := LoadPool("")
	require.NoError(t, err)

	assert.Equal(t, PoolTournament{
		ID:        "2cba1945-dc1c-4131-92f4-cfdac8c45060",
		Name:      "The Masters Tournament",
		Year:      2025,
		StartDate: "2025-04-10",
		EndDate:   "2025-04-13",
		Venue:     "Augusta National Golf Club",
	}, pool.Tournament)

	require.Len(t, pool.Members, 19)
	assert.Equal(t, models.Membership{Member: "Charlie Burns", Player: "Collin Morikawa"}, pool.Members[0])
	assert.Equal(t, models.Membership{Member: "Kyle O'Dowd", Player: "Bryson DeChambeau"}, pool.Members[9])
	assert.Equal(t, models.Membership{Member: "Zach Schafer", Player: "Rory McIlroy"}, pool.Members[18])

	assert.Len(t, pool.Payouts, 20)
	assert.Equal(t, int64(4200000), pool.Payouts[1])
	assert.Equal(t, int64(703500), pool.Payouts[7])
	assert.NotContains(t, pool.Payouts, 21)
}

func TestLoadPool_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.yaml")
	bundle := `
tournament:
  id: open-2025
  name: The Open
  year: 2025
  venue: Royal Portrush
members:
  - member: Sam Girouard
    player: Scottie Scheffler
payouts:
  "1": 3100000
  "2": 1759000
`
	require.NoError(t, os.WriteFile(path, []byte(bundle), 0o600))

	pool, err := LoadPool(path)
	require.NoError(t, err)

	assert.Equal(t, "open-2025", pool.Tournament.ID)
	assert.Equal(t, []models.Membership{{Member: "Sam Girouard", Player: "Scottie Scheffler"}}, pool.Members)
	assert.Equal(t, map[int]int64{1: 3100000, 2: 1759000}, pool.Payouts)
}

func TestLoadPool_MissingFile(t *testing.T) {
	_, err := LoadPool(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParsePool_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		bundle string
	}{
		{"missing id", "tournament:\n  year: 2025\n"},
		{"missing year", "tournament:\n  id: abc\n"},
		{"bad payout position", "tournament:\n  id: abc\n  year: 2025\npayouts:\n  first: 100\n"},
		{"zero payout position", "tournament:\n  id: abc\n  year: 2025\npayouts:\n  \"0\": 100\n"},
		{"member without player", "tournament:\n  id: abc\n  year: 2025\nmembers:\n  - member: Alone\n"},
		{"duplicate member", "tournament:\n  id: abc\n  year: 2025\nmembers:\n  - {member: A, player: X}\n  - {member: A, player: Y}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePool([]byte(tt.bundle))
			assert.Error(t, err)
		})
	}
}
