package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Options configures the process logger
type Options struct {
	Level       string
	Development bool
	// Format is "json" or "text". Empty picks text in development and json
	// everywhere else.
	Format string
	// Output defaults to stdout
	Output io.Writer
}

// InitLogger builds the process logger. An empty level resolves to debug in
// development and info otherwise; an unknown level falls back to info.
func InitLogger(opts Options) *logrus.Logger {
	log := logrus.New()

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	log.SetOutput(out)

	if useJSON(opts) {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	levelName := opts.Level
	if levelName == "" {
		levelName = "info"
		if opts.Development {
			levelName = "debug"
		}
	}
	level, err := logrus.ParseLevel(strings.ToLower(levelName))
	if err != nil {
		log.SetLevel(logrus.InfoLevel)
		log.WithField("invalid_level", levelName).Warn("Invalid LOG_LEVEL, using INFO")
		return log
	}
	log.SetLevel(level)
	return log
}

func useJSON(opts Options) bool {
	switch strings.ToLower(opts.Format) {
	case "json":
		return true
	case "text":
		return false
	}
	return !opts.Development
}

// WithTournamentContext tags entries with the followed tournament. Empty
// values are left out.
func WithTournamentContext(log logrus.FieldLogger, tournamentID string, round int) *logrus.Entry {
	fields := logrus.Fields{}
	if tournamentID != "" {
		fields["tournament_id"] = tournamentID
	}
	if round > 0 {
		fields["round"] = round
	}
	return log.WithFields(fields)
}
