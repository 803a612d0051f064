package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/tochemey/goakt/v3/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log file rotation.
const (
	logMaxSizeMB  = 10
	logMaxBackups = 3
	logMaxAgeDays = 28
)

// ParseLevel maps a level name to a log level.
func ParseLevel(name string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return log.DebugLevel, nil
	case "", "info":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarningLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return log.InfoLevel, fmt.Errorf("unknown log level %q", name)
	}
}

// NewLogger creates a logger writing to console and, when file is set, to a
// rotated log file. The returned func closes the file.
func NewLogger(level, file string, console io.Writer) (log.Logger, func() error, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}

	writers := []io.Writer{console}
	closeFn := func() error { return nil }
	if file != "" {
		path, err := homedir.Expand(file)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to expand log file path: %w", err)
		}
		// lumberjack handles rotation and is safe for concurrent writes.
		lj := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    logMaxSizeMB,
			MaxBackups: logMaxBackups,
			MaxAge:     logMaxAgeDays,
		}
		writers = append(writers, lj)
		closeFn = lj.Close
	}
	return log.New(lvl, writers...), closeFn, nil
}
