package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/multiquery/internal/cli/config"
	"github.com/leapstack-labs/multiquery/pkg/adapter"
	"github.com/leapstack-labs/multiquery/pkg/fanout"
)

// CommandContext holds common dependencies for command execution.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Registry *adapter.Registry
}

// NewCommandContext collects the config and logger stored on the command's
// context by the root command.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	return &CommandContext{
		Cfg:      config.GetConfig(cmd.Context()),
		Logger:   config.GetLogger(cmd.Context()),
		Registry: adapter.Default(),
	}
}

// NewRunner builds a fan-out runner writing rows to emitter.
func (c *CommandContext) NewRunner(emitter fanout.Emitter) *fanout.Runner {
	return fanout.New(c.Registry, emitter, c.Logger,
		fanout.WithMaxConcurrency(c.Cfg.MaxConcurrency),
		fanout.WithTimeout(c.Cfg.Timeout),
	)
}
