package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/stigscousin/millerlite-leaderboard/internal/app"
	"github.com/stigscousin/millerlite-leaderboard/internal/models"
	"github.com/stigscousin/millerlite-leaderboard/internal/providers"
)

var (
	leaderboardTournamentID string
	leaderboardName         string
	leaderboardRoundPolicy  string
)

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Print a normalized tournament leaderboard",
	Long: `Fetch a tournament leaderboard and print it the way the dashboard sees
it: position, score, today's score, holes completed and payout.

The tournament is the pool's unless --tournament-id or --name is given.
--name matches against the season schedule, ignoring case.`,
	RunE: runLeaderboard,
}

var rawCmd = &cobra.Command{
	Use:   "raw",
	Short: "Print the provider's leaderboard response unchanged",
	RunE:  runRaw,
}

func init() {
	for _, c := range []*cobra.Command{leaderboardCmd, rawCmd} {
		c.Flags().StringVar(&leaderboardTournamentID, "tournament-id", "", "Provider tournament id")
		c.Flags().StringVar(&leaderboardName, "name", "", "Find the tournament by name in the season schedule")
		rootCmd.AddCommand(c)
	}
	leaderboardCmd.Flags().StringVar(&leaderboardRoundPolicy, "round-policy", "", "Round selection (exact|latest), default from ROUND_POLICY")
}

type leaderboardRow struct {
	Player string `json:"player"`
	models.DisplayRecord
}

func runLeaderboard(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	client := app.NewGolfClient(cfg, log)
	tournamentID, err := resolveTournament(ctx, client)
	if err != nil {
		return err
	}

	if leaderboardRoundPolicy != "" {
		cfg.RoundPolicy = leaderboardRoundPolicy
	}
	normalizer, err := app.NewNormalizer(cfg, pool)
	if err != nil {
		return err
	}

	data, err := client.GetLeaderboard(ctx, flagYear, tournamentID)
	if err != nil {
		return err
	}

	rows := sortedRows(normalizer.Normalize(data.Players, data.Round))
	if flagJSON {
		return writeJSON(os.Stdout, rows)
	}

	fmt.Printf("%s - round %d\n\n", data.Name, data.Round)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "POS\tPLAYER\tSCORE\tTODAY\tTHRU\tPAYOUT")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", positionLabel(r.DisplayRecord), r.Player, r.Score, r.Today, r.Thru, r.Payout)
	}
	return w.Flush()
}

func runRaw(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	client := app.NewGolfClient(cfg, log)
	tournamentID, err := resolveTournament(ctx, client)
	if err != nil {
		return err
	}

	raw, err := client.GetRawLeaderboard(ctx, flagYear, tournamentID)
	if err != nil {
		return err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return fmt.Errorf("failed to format response: %w", err)
	}
	out.WriteByte('\n')
	_, err = out.WriteTo(os.Stdout)
	return err
}

func resolveTournament(ctx context.Context, client *providers.SportradarGolfClient) (string, error) {
	switch {
	case leaderboardTournamentID != "":
		return leaderboardTournamentID, nil
	case leaderboardName != "":
		t, err := client.FindTournament(ctx, flagYear, leaderboardName)
		if err != nil {
			return "", err
		}
		log.WithField("tournament_id", t.ID).Infof("Using %s", t.Name)
		return t.ID, nil
	default:
		return pool.Tournament.ID, nil
	}
}

func sortedRows(board map[string]models.DisplayRecord) []leaderboardRow {
	rows := make([]leaderboardRow, 0, len(board))
	for name, record := range board {
		rows = append(rows, leaderboardRow{Player: name, DisplayRecord: record})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i].PositionNumber, rows[j].PositionNumber
		if a != b {
			return a.Less(b)
		}
		return rows[i].Player < rows[j].Player
	})
	return rows
}

func positionLabel(r models.DisplayRecord) string {
	if r.Tied {
		return "T" + r.Position
	}
	return r.Position
}
