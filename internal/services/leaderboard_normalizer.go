package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stigscousin/millerlite-leaderboard/internal/models"
)

// RoundPolicy decides which of a player's round records supplies the
// today/thru columns
type RoundPolicy string

const (
	// RoundPolicyExact uses only the round whose sequence equals the
	// tournament's current round
	RoundPolicyExact RoundPolicy = "exact"
	// RoundPolicyLatest uses the round with the highest sequence
	RoundPolicyLatest RoundPolicy = "latest"
)

// ParseRoundPolicy validates a configured policy name. Empty means exact.
func ParseRoundPolicy(s string) (RoundPolicy, error) {
	switch RoundPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", RoundPolicyExact:
		return RoundPolicyExact, nil
	case RoundPolicyLatest:
		return RoundPolicyLatest, nil
	default:
		return "", fmt.Errorf("unknown round policy %q (want exact or latest)", s)
	}
}

// LeaderboardNormalizer turns provider player records into display records
type LeaderboardNormalizer struct {
	payouts PayoutTable
	policy  RoundPolicy
}

// NewLeaderboardNormalizer creates a normalizer using one round policy for
// every player
func NewLeaderboardNormalizer(payouts PayoutTable, policy RoundPolicy) *LeaderboardNormalizer {
	if policy == "" {
		policy = RoundPolicyExact
	}
	return &LeaderboardNormalizer{
		payouts: payouts,
		policy:  policy,
	}
}

// Policy returns the round policy in use
func (n *LeaderboardNormalizer) Policy() RoundPolicy {
	return n.policy
}

// Normalize maps "First Last" to the player's display record
func (n *LeaderboardNormalizer) Normalize(players []models.RawPlayerRecord, currentRound int) map[string]models.DisplayRecord {
	board := make(map[string]models.DisplayRecord, len(players))
	for _, p := range players {
		name, record := n.NormalizePlayer(p, currentRound)
		board[name] = record
	}
	return board
}

// NormalizePlayer converts a single provider record
func (n *LeaderboardNormalizer) NormalizePlayer(p models.RawPlayerRecord, currentRound int) (string, models.DisplayRecord) {
	name := p.FirstName + " " + p.LastName
	rawPosition := strings.TrimSpace(string(p.Position))
	score := FormatScore(p.Score.IntPtr())

	if isCut(p) {
		return name, models.DisplayRecord{
			Position:       models.StatusCut,
			PositionNumber: models.ParseRank(rawPosition),
			Tied:           false,
			Score:          score,
			Today:          models.Placeholder,
			Thru:           models.Placeholder,
			Payout:         models.Placeholder,
		}
	}

	position, tied := displayPosition(rawPosition, p.Tied)
	today, thru := n.roundColumns(p.Rounds, currentRound)

	return name, models.DisplayRecord{
		Position:       position,
		PositionNumber: models.ParseRank(rawPosition),
		Tied:           tied,
		Score:          score,
		Today:          today,
		Thru:           thru,
		Payout:         n.payouts.Display(rawPosition),
	}
}

// roundColumns returns today/thru for the selected round. A round with zero
// holes played has not started, so neither column is reported.
func (n *LeaderboardNormalizer) roundColumns(rounds []models.RawRound, currentRound int) (string, string) {
	round := n.selectRound(rounds, currentRound)
	if round == nil {
		return models.Placeholder, models.Placeholder
	}

	if !round.Thru.Valid {
		// Completed rounds are sometimes sent without a hole count
		if round.Score.Valid {
			return FormatScore(round.Score.IntPtr()), models.Finished
		}
		return models.Placeholder, models.Placeholder
	}

	switch thru := round.Thru.Value; {
	case thru <= 0:
		return models.Placeholder, models.Placeholder
	case thru >= models.HolesInRound:
		return FormatScore(round.Score.IntPtr()), models.Finished
	default:
		return FormatScore(round.Score.IntPtr()), strconv.Itoa(thru)
	}
}

func (n *LeaderboardNormalizer) selectRound(rounds []models.RawRound, currentRound int) *models.RawRound {
	var selected *models.RawRound
	for i := range rounds {
		r := &rounds[i]
		if !r.Sequence.Valid {
			continue
		}
		switch n.policy {
		case RoundPolicyLatest:
			if selected == nil || r.Sequence.Value > selected.Sequence.Value {
				selected = r
			}
		default:
			if r.Sequence.Value == currentRound {
				return r
			}
		}
	}
	return selected
}

// FormatScore renders a to-par score: 0 is "E", positives carry a "+",
// absent scores are "-"
func FormatScore(score *int) string {
	switch {
	case score == nil:
		return models.Placeholder
	case *score == 0:
		return models.EvenPar
	case *score > 0:
		return "+" + strconv.Itoa(*score)
	default:
		return strconv.Itoa(*score)
	}
}

func isCut(p models.RawPlayerRecord) bool {
	return strings.EqualFold(strings.TrimSpace(p.Status), models.StatusCut) ||
		strings.EqualFold(strings.TrimSpace(string(p.Position)), models.StatusCut)
}

// displayPosition folds a "T" prefix into the tied flag so positions are
// always rendered as plain numbers
func displayPosition(raw string, tied bool) (string, bool) {
	if raw == "" {
		return models.Placeholder, tied
	}
	if rank := models.ParseRank(raw); rank.Ranked {
		return strconv.Itoa(rank.Number), tied || strings.HasPrefix(raw, "T")
	}
	return raw, tied
}
