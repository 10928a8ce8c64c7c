package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/stigscousin/millerlite-leaderboard/internal/models"
)

//go:embed pool.default.yaml
var defaultPoolBundle []byte

// PoolTournament identifies the tournament a pool is played on
type PoolTournament struct {
	ID        string `mapstructure:"id"`
	Name      string `mapstructure:"name"`
	Year      int    `mapstructure:"year"`
	StartDate string `mapstructure:"start_date"`
	EndDate   string `mapstructure:"end_date"`
	Venue     string `mapstructure:"venue"`
}

// Pool is the tournament, membership table and payout table of one pool.
// The three are deployed together.
type Pool struct {
	Tournament PoolTournament
	Members    []models.Membership
	Payouts    map[int]int64
}

type poolBundle struct {
	Tournament PoolTournament      `mapstructure:"tournament"`
	Members    []models.Membership `mapstructure:"members"`
	Payouts    map[string]int64    `mapstructure:"payouts"`
}

// LoadPool reads the pool bundle at path, or the embedded default bundle when
// path is empty
func LoadPool(path string) (*Pool, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if path == "" {
		if err := v.ReadConfig(bytes.NewReader(defaultPoolBundle)); err != nil {
			return nil, fmt.Errorf("error reading default pool bundle: %w", err)
		}
	} else {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading pool bundle %s: %w", path, err)
		}
	}

	return decodePool(v)
}

// ParsePool reads a pool bundle from YAML bytes
func ParsePool(data []byte) (*Pool, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("error reading pool bundle: %w", err)
	}
	return decodePool(v)
}

func decodePool(v *viper.Viper) (*Pool, error) {
	var bundle poolBundle
	if err := v.Unmarshal(&bundle); err != nil {
		return nil, fmt.Errorf("unable to decode pool bundle: %w", err)
	}

	pool := &Pool{
		Tournament: bundle.Tournament,
		Members:    bundle.Members,
		Payouts:    make(map[int]int64, len(bundle.Payouts)),
	}

	for key, amount := range bundle.Payouts {
		position, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || position < 1 {
			return nil, fmt.Errorf("invalid payout position %q", key)
		}
		pool.Payouts[position] = amount
	}

	if err := pool.Validate(); err != nil {
		return nil, err
	}
	return pool, nil
}

// Validate checks that the bundle names a tournament and a usable roster
func (p *Pool) Validate() error {
	if p.Tournament.ID == "" {
		return fmt.Errorf("pool bundle is missing tournament.id")
	}
	if p.Tournament.Year <= 0 {
		return fmt.Errorf("pool bundle is missing tournament.year")
	}

	seen := make(map[string]bool, len(p.Members))
	for i, m := range p.Members {
		if m.Member == "" || m.Player == "" {
			return fmt.Errorf("pool member %d needs both member and player", i)
		}
		if seen[m.Member] {
			return fmt.Errorf("duplicate pool member %q", m.Member)
		}
		seen[m.Member] = true
	}
	return nil
}
