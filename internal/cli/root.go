// Package cli provides the command-line interface for multiquery.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/multiquery/internal/cli/commands"
	"github.com/leapstack-labs/multiquery/internal/cli/config"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	opts := &commands.RunOptions{}

	rootCmd := &cobra.Command{
		Use:   "multiquery",
		Short: "Run one SQL query against many databases",
		Long: `multiquery executes one SQL statement against every configured database
concurrently and streams each row to stdout as one JSON object per line.

Every object carries a "db_name" key naming the connection it came from.
Supported backends: PostgreSQL, MySQL, SQLite and DuckDB.`,
		Example: `  # Query two databases
  multiquery -q query.sql -c prod,postgresql://user:pass@db/app -c local,sqlite://./app.db

  # Read the query from stdin, targets from ~/.multi-query/config.yaml
  echo 'SELECT count(*) AS n FROM users' | multiquery

  # Write an example config file
  multiquery --generate-config`,
		Version: Version,
		Args:    cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for commands that need none
			switch cmd.Name() {
			case "help", "completion", "__complete", "version":
				return nil
			}
			if opts.GenerateConfig {
				return nil
			}

			cfg, err := config.LoadConfig(opts.ConfigFile, cmd.Flags())
			if err != nil {
				return err
			}
			logger, err := config.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			if cfg.ConfigFound {
				logger.Debug("using config file", "path", cfg.ConfigFile)
			}

			ctx := context.WithValue(cmd.Context(), config.ConfigKey(), cfg)
			ctx = context.WithValue(ctx, config.LoggerKey(), logger)
			cmd.SetContext(ctx)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return commands.RunQuery(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default: ~/.multi-query/config.yaml)")
	rootCmd.PersistentFlags().StringArrayP("connection-string", "c", nil,
		"Database connection in format <name>,<uri>; repeat for more databases (replaces the config file list)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level for stderr diagnostics (debug|info|warn|error); empty disables logging")
	rootCmd.PersistentFlags().String("log-format", config.DefaultLogFormat, "Log format (text|json)")
	rootCmd.PersistentFlags().Int("max-concurrency", 0, "Maximum databases queried at once (0 = all)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Abort the whole run after this duration (0 = no limit)")

	// Root-only flags
	rootCmd.Flags().StringVarP(&opts.QueryFile, "query", "q", "", "Path to SQL query file, or - for stdin")
	rootCmd.Flags().BoolVar(&opts.GenerateConfig, "generate-config", false, "Generate an example config file at the config path")

	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.MarkFlagFilename("query", "sql")

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewTargetsCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command. Interrupts cancel in-flight queries.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for multiquery.

To load completions:

Bash:
  $ source <(multiquery completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ multiquery completion bash > /etc/bash_completion.d/multiquery
  # macOS:
  $ multiquery completion bash > $(brew --prefix)/etc/bash_completion.d/multiquery

Zsh:
  $ multiquery completion zsh > "${fpath[1]}/_multiquery"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ multiquery completion fish > ~/.config/fish/completions/multiquery.fish

PowerShell:
  PS> multiquery completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
