package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is usable before InitLogger runs so packages and tests can log freely.
var Log = logrus.New()

// Options configure the global logger.
type Options struct {
	Level      string // logrus level name, "info" when empty
	File       string // optional rotating log file
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func InitLogger(opts Options) {
	Log = logrus.New()

	// Output to stdout instead of the default stderr
	var out io.Writer = os.Stdout
	if opts.File != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    orDefault(opts.MaxSizeMB, 50),
			MaxBackups: orDefault(opts.MaxBackups, 5),
			MaxAge:     orDefault(opts.MaxAgeDays, 28),
			Compress:   true,
		})
	}
	Log.SetOutput(out)

	// Set JSON formatter for structured logging
	Log.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
