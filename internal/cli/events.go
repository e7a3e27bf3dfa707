package cli

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/actionroute/internal/analytics"
	"github.com/roach88/actionroute/internal/store"
)

// EventsOptions holds flags for the events command.
type EventsOptions struct {
	*RootOptions
	Database   string
	Action     string
	Decision   string
	Resolution string
	AfterSeq   int64
	Limit      int
	Counts     bool
}

// EventsResult is the JSON payload of the events command.
type EventsResult struct {
	Events []analytics.Event `json:"events,omitempty"`
	Counts map[string]int    `json:"counts,omitempty"`
	MaxSeq int64             `json:"max_seq"`
}

// NewEventsCommand creates the events command.
func NewEventsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EventsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Query the analytics event log",
		Long: `Query the analytics events recorded by resolve.

Events are listed in seq order. --counts prints per-decision totals instead,
optionally for one action.

Examples:
  actionroute events --db ./events.db
  actionroute events --db ./events.db --action track_package --decision simulated
  actionroute events --db ./events.db --counts --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvents(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "events database (overrides ACTIONROUTE_EVENTS_DB)")
	cmd.Flags().StringVar(&opts.Action, "action", "", "filter by action id")
	cmd.Flags().StringVar(&opts.Decision, "decision", "", "filter by decision")
	cmd.Flags().StringVar(&opts.Resolution, "resolution", "", "filter by resolution id")
	cmd.Flags().Int64Var(&opts.AfterSeq, "after", 0, "only events with seq greater than this")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of events (0 = all)")
	cmd.Flags().BoolVar(&opts.Counts, "counts", false, "print decision counts instead of events")

	return cmd
}

func runEvents(ctx context.Context, opts *EventsOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Decision != "" && !analytics.ValidDecisions[analytics.Decision(opts.Decision)] {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown decision %q", opts.Decision))
	}

	path := opts.Database
	if path == "" {
		cfg, err := opts.Config()
		if err != nil {
			return err
		}
		path = cfg.EventsDB
	}
	if path == "" {
		return NewExitError(ExitCommandError, "no events database: pass --db or set ACTIONROUTE_EVENTS_DB")
	}

	st, err := store.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	maxSeq, err := st.MaxSeq(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read events", err)
	}
	result := EventsResult{MaxSeq: maxSeq}

	if opts.Counts {
		counts, err := st.CountDecisions(ctx, opts.Action)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to count decisions", err)
		}
		result.Counts = make(map[string]int, len(counts))
		for d, n := range counts {
			result.Counts[string(d)] = n
		}
	} else {
		events, err := st.ReadEvents(ctx, store.Filter{
			ActionID:     opts.Action,
			Decision:     analytics.Decision(opts.Decision),
			ResolutionID: opts.Resolution,
			AfterSeq:     opts.AfterSeq,
			Limit:        opts.Limit,
		})
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read events", err)
		}
		result.Events = events
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	if opts.Counts {
		writeCountsText(formatter.Writer, result.Counts)
		return nil
	}
	writeEventsText(formatter.Writer, result.Events)
	return nil
}

func writeEventsText(w io.Writer, events []analytics.Event) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No events found.")
		return
	}
	for _, e := range events {
		line := fmt.Sprintf("[%d] %s %s -> %s", e.Seq, e.ActionID, e.Decision, e.EffectKind)
		if e.URLSource != "" {
			line += " via " + e.URLSource
		}
		if e.Simulated {
			line += fmt.Sprintf(" (filled %v)", e.FilledKeys)
		}
		if len(e.MissingKeys) > 0 && !e.Simulated {
			line += fmt.Sprintf(" (missing %v)", e.MissingKeys)
		}
		fmt.Fprintln(w, line)
	}
}

func writeCountsText(w io.Writer, counts map[string]int) {
	if len(counts) == 0 {
		fmt.Fprintln(w, "No events found.")
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%-18s %d\n", k, counts[k])
	}
}
