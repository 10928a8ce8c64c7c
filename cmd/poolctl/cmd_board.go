package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/stigscousin/millerlite-leaderboard/internal/app"
	"github.com/stigscousin/millerlite-leaderboard/internal/models"
	"github.com/stigscousin/millerlite-leaderboard/internal/services"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Print the league board for the pool's tournament",
	RunE:  runBoard,
}

func init() {
	rootCmd.AddCommand(boardCmd)
}

func runBoard(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	source, err := app.NewSnapshotSource(cfg, pool, app.NewGolfClient(cfg, log), log)
	if err != nil {
		return err
	}

	snapshot, err := source.FetchSnapshot(ctx)
	if err != nil {
		return err
	}

	board := models.LeagueBoard{
		Tournament: snapshot.Tournament,
		Standings:  services.MergeRoster(pool.Members, snapshot.Leaderboard),
	}
	if flagJSON {
		return writeJSON(os.Stdout, board)
	}

	fmt.Printf("%s - %s - round %d\n\n", board.Tournament.Name, board.Tournament.Venue.Name, board.Tournament.Round)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MEMBER\tPLAYER\tPOS\tSCORE\tTODAY\tTHRU\tPAYOUT")
	for _, s := range board.Standings {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", s.Member, s.Player, positionLabel(s.DisplayRecord), s.Score, s.Today, s.Thru, s.Payout)
	}
	return w.Flush()
}
