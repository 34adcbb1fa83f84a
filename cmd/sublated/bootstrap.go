package main

import (
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"sublate/internal/config"
	"sublate/internal/logging"
)

const logFileName = "sublate.log"

// loggerOptions derives logger settings from config. The "auto" format
// resolves to human-readable lines on interactive terminals and JSON
// otherwise, so journald and file capture stay machine-parseable.
func loggerOptions(cfg *config.Config) logging.Options {
	format := cfg.Logging.Format
	if format == "" || format == "auto" {
		format = "json"
		if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			format = "console"
		}
	}
	return logging.Options{
		Level:       cfg.Logging.Level,
		Format:      format,
		OutputPaths: []string{filepath.Join(cfg.Paths.LogDir, logFileName), "stdout"},
	}
}
