package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/dataexpr/internal/app"
	"github.com/specialistvlad/dataexpr/internal/hcl_adapter"
	"github.com/specialistvlad/dataexpr/internal/watcher"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// pathList collects a repeatable path flag.
type pathList []string

func (p *pathList) String() string { return strings.Join(*p, ",") }

func (p *pathList) Set(v string) error {
	*p = append(*p, v)
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("dataexpr", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
dataexpr - Resolve a value against a keyed collection of records.

Usage:
  dataexpr [options] [CONFIG_PATH...]

Arguments:
  CONFIG_PATH
    Path to an option file (.hcl, .toml, .yaml, .yml) or a directory of them.
    Files are merged in order; later files override earlier ones.

Options:
`)
		flagSet.PrintDefaults()
	}

	var configPaths pathList
	flagSet.Var(&configPaths, "config", "Path to an option file or directory. May be repeated.")
	flagSet.Var(&configPaths, "c", "Path to an option file or directory (shorthand).")
	valueFlag := flagSet.String("value", "", "Value to resolve, as an HCL or JSON literal. Overrides the files' value.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	watchFlag := flagSet.Bool("watch", false, "Keep running and resolve again whenever the option files change.")
	debounceFlag := flagSet.Duration("debounce", watcher.DefaultDebounce, "Quiet period before a batch of file changes is applied.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	paths := append([]string(nil), configPaths...)
	paths = append(paths, flagSet.Args()...)
	slog.Debug("Configuration paths determined.", "paths", paths)

	if len(paths) == 0 {
		slog.Debug("No configuration path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat, err := app.ParseLogFormat(*logFormatFlag)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if _, err := app.ParseLogLevel(*logLevelFlag); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	logLevel := strings.ToLower(*logLevelFlag)

	if *debounceFlag <= 0 {
		return nil, false, &ExitError{Code: 2, Message: "invalid debounce: must be positive"}
	}

	var value any
	hasValue := false
	flagSet.Visit(func(f *flag.Flag) {
		if f.Name == "value" {
			hasValue = true
		}
	})
	if hasValue {
		value = parseValue(*valueFlag)
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ConfigPaths: paths,
		Value:       value,
		HasValue:    hasValue,
		LogFormat:   logFormat,
		LogLevel:    logLevel,
		Watch:       *watchFlag,
		Debounce:    *debounceFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

// parseValue reads a literal. Anything that is not a valid literal, such as
// a bare word, is taken as a string.
func parseValue(raw string) any {
	v, err := hcl_adapter.ParseValue(raw)
	if err != nil {
		return raw
	}
	return v
}
