// Package cli wires configuration, model loading and the scoring pipeline
// into the credit-score command line.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	urfave "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"credit-score/config"
	"credit-score/logging"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	version = "v0.0.1-default"
	commit  = ""

	configFlag = &urfave.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to the YAML config file (optional)",
		Sources: urfave.EnvVars("CREDIT_CONFIG"),
	}

	logLevelFlag = &urfave.StringFlag{
		Name:  "log-level",
		Usage: "Overrides log.level [debug, info, warn, error]",
	}

	formatFlag = &urfave.StringFlag{
		Name:  "format",
		Usage: "Output format [json, yaml]",
		Value: formatJSON,
	}
)

type configKey struct{}

// Execute creates and runs the CLI application.
func Execute() {
	logging.SetDefault("info", config.FormatText, os.Stderr)

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func newApp() *urfave.Command {
	return &urfave.Command{
		Name:    "credit-score",
		Version: fmt.Sprintf("%s (%s)", version, commit),
		Usage:   "Credit scoring service with explained decisions",
		Flags: []urfave.Flag{
			configFlag,
			logLevelFlag,
			formatFlag,
		},
		Commands: []*urfave.Command{
			serveCmd,
			scoreCmd,
			trainCmd,
		},
		Before: func(ctx context.Context, cmd *urfave.Command) (context.Context, error) {
			cfg, err := config.Load(cmd.String(configFlag.Name))
			if err != nil {
				return ctx, fmt.Errorf("loading config: %w", err)
			}
			if lvl := cmd.String(logLevelFlag.Name); lvl != "" {
				cfg.Log.Level = lvl
			}
			logging.SetDefault(cfg.Log.Level, cfg.Log.Format, os.Stderr)
			return context.WithValue(ctx, configKey{}, cfg), nil
		},
	}
}

// configFrom returns the config loaded by the root Before hook.
func configFrom(ctx context.Context) (*config.Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*config.Config)
	if !ok {
		return nil, errors.New("config not loaded")
	}
	return cfg, nil
}

func encode(w io.Writer, format string, v any) error {
	if format == formatYAML || format == "yml" {
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(v)
	}
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(v)
}
