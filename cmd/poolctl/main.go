package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/stigscousin/millerlite-leaderboard/pkg/config"
	"github.com/stigscousin/millerlite-leaderboard/pkg/logger"
)

var (
	flagTimeout  time.Duration
	flagJSON     bool
	flagYear     int
	flagPoolFile string

	cfg  *config.Config
	pool *config.Pool
	log  *logrus.Logger
)

// rootCmd is the base command for the pool operator CLI
var rootCmd = &cobra.Command{
	Use:   "poolctl",
	Short: "Inspect tournament data behind the golf pool",
	Long: `poolctl queries the tournament data provider directly, without the
server's cache. Use it to find tournament ids for a new pool bundle, to check
what the provider currently reports, and to preview the league board.

Examples:
  poolctl schedule --year 2025
  poolctl leaderboard --name masters
  poolctl raw --tournament-id 2cba1945-dc1c-4131-92f4-cfdac8c45060
  poolctl board --json`,
	SilenceUsage:      true,
	PersistentPreRunE: loadEnvironment,
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", time.Minute, "Overall timeout for provider calls")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print JSON instead of a table")
	rootCmd.PersistentFlags().IntVar(&flagYear, "year", 0, "Season year (default: the pool's tournament year)")
	rootCmd.PersistentFlags().StringVar(&flagPoolFile, "pool", "", "Pool bundle file (default: POOL_FILE or the built-in bundle)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadEnvironment(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.LoadConfig()
	if err != nil {
		return err
	}

	log = logger.InitLogger(logger.Options{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
		Format:      cfg.LogFormat,
		Output:      os.Stderr,
	})

	if cfg.SportradarAPIKey == "" {
		return errors.New("SPORTRADAR_API_KEY is not set; add it to the environment or a .env file")
	}

	poolFile := flagPoolFile
	if poolFile == "" {
		poolFile = cfg.PoolFile
	}
	pool, err = config.LoadPool(poolFile)
	if err != nil {
		return err
	}

	if flagYear == 0 {
		flagYear = pool.Tournament.Year
	}
	return nil
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), flagTimeout)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
