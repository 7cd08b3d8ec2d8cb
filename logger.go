package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// logger carries warnings and progress to stderr so they never mix with
// match output on stdout.
var logger = newLogger(os.Stderr)

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	l.SetLevel(logrus.WarnLevel)
	return l
}

// setupLogger points the package logger at w. verbose forces debug level.
func setupLogger(w io.Writer, level string, verbose bool) error {
	lvl := logrus.WarnLevel
	if level != "" {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("%w: log level %q: %v", ErrArgument, level, err)
		}
		lvl = parsed
	}
	if verbose {
		lvl = logrus.DebugLevel
	}
	logger.SetOutput(w)
	logger.SetLevel(lvl)
	return nil
}
