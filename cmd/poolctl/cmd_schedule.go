package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/stigscousin/millerlite-leaderboard/internal/app"
	"github.com/stigscousin/millerlite-leaderboard/internal/models"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "List the season's tournaments",
	RunE:  runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	client := app.NewGolfClient(cfg, log)
	schedule, err := client.GetTournamentSchedule(ctx, flagYear)
	if err != nil {
		return err
	}

	if flagJSON {
		return writeJSON(os.Stdout, schedule)
	}
	return printSchedule(schedule)
}

func printSchedule(schedule []models.TournamentSummary) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTART\tEND\tSTATUS\tVENUE")
	for _, t := range schedule {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.Name, t.StartDate, t.EndDate, t.Status, t.Venue.Name)
	}
	return w.Flush()
}
