package main

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// setupLog routes logging to the file named by NOTEVOX_LOGFILE, or
// discards it. The returned closer flushes the file at exit.
func setupLog() (func() error, error) {
	log.SetOutput(io.Discard)

	if os.Getenv("DEBUG") != "" {
		log.SetLevel(log.DebugLevel)
	}

	logFile := os.Getenv("NOTEVOX_LOGFILE")
	if logFile == "" {
		// Keep warnings and errors visible on stderr when not logging
		// to a file; the interactive player owns stdout.
		log.SetOutput(os.Stderr)
		return func() error { return nil }, nil
	}

	f, err := os.OpenFile(logFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600) //nolint:gosec
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)
	log.SetReportTimestamp(true)
	return f.Close, nil
}
