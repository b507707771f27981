package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/hclgraph/internal/objpath"
	"github.com/specialistvlad/hclgraph/internal/render"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	DocPath string // .hcl file, or a directory holding exactly one
	Strict  bool   // unresolved names fail the build
	Output  string // hcl, yaml or json
	Select  string // object path of the subtree to print
	Watch   bool

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.DocPath == "" {
		return nil, errors.New("DocPath is a required configuration field and cannot be empty")
	}

	if cfg.Output == "" {
		cfg.Output = string(render.FormatHCL)
	}
	format, err := render.ParseFormat(cfg.Output)
	if err != nil {
		return nil, err
	}
	cfg.Output = string(format)

	if cfg.Select != "" {
		if _, err := objpath.Parse(cfg.Select); err != nil {
			return nil, fmt.Errorf("invalid select path: %w", err)
		}
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	switch cfg.LogLevel {
	case "":
		cfg.LogLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q", cfg.LogLevel)
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.LogFormat)
	}

	return &cfg, nil
}
