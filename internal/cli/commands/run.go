package commands

import (
	"bufio"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/multiquery/internal/cli/config"
	"github.com/leapstack-labs/multiquery/pkg/output"
)

// RunOptions holds the root command's own flags.
type RunOptions struct {
	QueryFile      string
	GenerateConfig bool
	ConfigFile     string
}

// RunQuery executes the query on every configured target and writes one
// JSON object per row to stdout.
func RunQuery(cmd *cobra.Command, opts *RunOptions) error {
	if opts.GenerateConfig {
		return GenerateConfig(cmd, opts.ConfigFile)
	}

	cctx := NewCommandContext(cmd)
	if err := cctx.Cfg.Validate(); err != nil {
		return err
	}

	query, err := readQuery(cmd.InOrStdin(), opts.QueryFile)
	if err != nil {
		return err
	}

	targets := cctx.Cfg.Targets()
	cctx.Logger.Debug("starting fan-out",
		slog.Int("targets", len(targets)),
		slog.Int("max_concurrency", cctx.Cfg.MaxConcurrency),
		slog.Duration("timeout", cctx.Cfg.Timeout))

	w := bufio.NewWriter(cmd.OutOrStdout())
	emitter := output.NewJSONLines(w)
	err = cctx.NewRunner(emitter).Run(cmd.Context(), query, targets)
	if flushErr := w.Flush(); err == nil && flushErr != nil {
		err = fmt.Errorf("failed to flush output: %w", flushErr)
	}

	cctx.Logger.Debug("fan-out done", slog.Int64("rows", emitter.Count()))
	return err
}

// GenerateConfig writes the example config to path, or to the default
// location when path is empty.
func GenerateConfig(cmd *cobra.Command, path string) error {
	if path == "" {
		var err error
		if path, err = config.DefaultConfigPath(); err != nil {
			return err
		}
	}
	if err := config.Generate(path); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Config file generated at: %s\n", path)
	return nil
}
