// Command runefront lexes, parses, formats and checks rune sources, and
// computes the dispatch fingerprints of protocol and instance functions.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/malphas-lang/runefront/internal/config"
)

var (
	Version   = "0.1.0"
	BuildTime = "dev"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	configPath string
	logLevel   string
	noColor    bool

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "runefront",
		Short: "Front end for rune sources",
		Long: `Runefront lexes and parses rune sources into syntax trees.

It provides:
- token dumps and syntax tree outlines in JSON or YAML
- canonical formatting
- whole-project checks with diagnostics, file watching and metrics
- the protocol catalogue and dispatch fingerprints`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Manifest path (default: nearest Rune.toml or runefront.yaml)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored diagnostics")

	cmd.AddCommand(
		newTokensCmd(a),
		newParseCmd(a),
		newFmtCmd(a),
		newCheckCmd(a),
		newProtocolsCmd(a),
		newHashCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "runefront version %s (build: %s)\n", Version, BuildTime)
			},
		},
	)
	return cmd
}

// setup loads the manifest and builds the logger. Without --config the
// nearest manifest above the working directory is used, and the defaults
// when there is none.
func (a *app) setup(stderr io.Writer) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.noColor {
		cfg.Output.Color = false
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	logger, err := newLogger(cfg.Log, stderr)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) loadConfig() (*config.Config, error) {
	if a.configPath != "" {
		return config.Load(a.configPath)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "get working directory")
	}
	path, err := config.Find(wd)
	if err != nil {
		return config.DefaultConfig(), nil
	}
	return config.Load(path)
}

// newLogger builds the configured handler. Every record carries the run id
// so concurrent invocations can be told apart in shared logs.
func newLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With("run", uuid.New().String()[:8]), nil
}
