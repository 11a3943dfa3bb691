package commands

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/multiquery/pkg/core"
	"github.com/leapstack-labs/multiquery/pkg/fanout"
)

// TargetsOptions holds options for the targets command.
type TargetsOptions struct {
	Ping bool
}

// NewTargetsCommand creates the targets command.
func NewTargetsCommand() *cobra.Command {
	opts := &TargetsOptions{}

	cmd := &cobra.Command{
		Use:   "targets",
		Short: "List configured connection targets",
		Long: `List the connection targets from the config file and -c flags.

Passwords are redacted. With --ping every target is connected once and
closed again, without running any query.`,
		Example: `  # Show targets from ~/.multi-query/config.yaml
  multiquery targets

  # Check connectivity
  multiquery targets --ping -c local,sqlite://./app.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTargets(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Ping, "ping", false, "Connect to every target and report the result")
	return cmd
}

func runTargets(cmd *cobra.Command, opts *TargetsOptions) error {
	cctx := NewCommandContext(cmd)
	if err := cctx.Cfg.Validate(); err != nil {
		return err
	}
	targets := cctx.Cfg.Targets()

	if !opts.Ping {
		renderTargets(cmd.OutOrStdout(), targets, nil)
		return nil
	}

	results := cctx.NewRunner(nil).Ping(cmd.Context(), targets)
	renderTargets(cmd.OutOrStdout(), targets, results)

	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d targets unreachable", failed, len(results))
	}
	return nil
}

func renderTargets(w io.Writer, targets []core.Target, results []fanout.PingResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := table.Row{"NAME", "DIALECT", "URI"}
	if results != nil {
		header = append(header, "STATUS")
	}
	t.AppendHeader(header)

	for i, tgt := range targets {
		dialect := tgt.Dialect.String()
		if dialect == "" {
			dialect = "unsupported"
		}
		row := table.Row{tgt.Name, dialect, RedactURI(tgt.URI)}
		if results != nil {
			row = append(row, pingStatus(results[i]))
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d targets)\n", len(targets))
}

func pingStatus(r fanout.PingResult) string {
	if r.OK() {
		return fmt.Sprintf("ok (%s)", r.Latency.Round(time.Millisecond))
	}
	msg := r.Err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return "error: " + msg
}

// RedactURI hides the password of a URI's userinfo. URIs with credentials
// that do not parse are reduced to their scheme.
func RedactURI(uri string) string {
	if !strings.Contains(uri, "@") {
		return uri
	}
	u, err := url.Parse(uri)
	if err != nil {
		if i := strings.Index(uri, "://"); i >= 0 {
			return uri[:i+3] + "..."
		}
		return "..."
	}
	return u.Redacted()
}
