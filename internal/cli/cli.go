package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/specialistvlad/hclgraph/internal/app"
	"golang.org/x/term"
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

// isTerminal reports whether logs go to an interactive terminal.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("hclgraph", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
hclgraph - Builds an object graph from a declarative HCL document.

Usage:
  hclgraph [options] [DOC_PATH]

Arguments:
  DOC_PATH
    Path to a .hcl document, or a directory containing exactly one.

Options:
`)
		flagSet.PrintDefaults()
	}

	docFlag := flagSet.String("doc", "", "Path to the document file or directory.")
	dFlag := flagSet.String("d", "", "Path to the document file or directory (shorthand).")
	strictFlag := flagSet.Bool("strict", false, "Fail when a referenced name is never defined instead of assigning null.")
	outputFlag := flagSet.String("output", "hcl", "Output format. Options: 'hcl', 'yaml' or 'json'.")
	selectFlag := flagSet.String("select", "", "Object path of the subtree to print, e.g. 'content.items[0]'.")
	watchFlag := flagSet.Bool("watch", false, "Rebuild and print the document whenever it changes.")
	logFormatFlag := flagSet.String("log-format", "", "Log output format. Options: 'text' or 'json'. Defaults to text on a terminal, json otherwise.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *docFlag != "" {
		path = *docFlag
	} else if *dFlag != "" {
		path = *dFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Document path determined.", "path", path)

	if path == "" {
		slog.Debug("No document path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat == "" {
		logFormat = "json"
		if isTerminal() {
			logFormat = "text"
		}
	}
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		DocPath:   path,
		Strict:    *strictFlag,
		Output:    *outputFlag,
		Select:    *selectFlag,
		Watch:     *watchFlag,
		LogFormat: logFormat,
		LogLevel:  logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
