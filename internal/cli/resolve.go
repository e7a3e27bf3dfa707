package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/actionroute/internal/effect"
	"github.com/roach88/actionroute/internal/engine"
	"github.com/roach88/actionroute/internal/ir"
)

// ResolveOptions holds flags for the resolve command.
type ResolveOptions struct {
	*RootOptions

	ActionFile string
	CardFile   string
	Registry   string
	UIDir      string
	Database   string

	ID        string
	Kind      string
	Context   map[string]string
	Compound  bool
	Steps     []string
	Mode      string
	Confirmed bool
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "resolve [action-id]",
		Short: "Resolve one action against the registry",
		Long: `Resolve one suggested action into an effect.

The action comes from --action (a JSON or YAML file, "-" for stdin) or from
the action id argument with --kind and --ctx flags. The card comes from
--card; without one the card is empty and its mode is taken from --mode.

Exit codes:
  0 - The action resolved to a navigation, UI, preview or compound flow
  1 - The action was rejected (ShowError)
  2 - Command error (registry not found, unreadable input, etc.)

Examples:
  actionroute resolve track_package --ctx trackingNumber=1Z999 --ctx carrier=UPS --card card.yaml
  actionroute resolve --action action.json --card card.json --confirmed
  actionroute resolve order_followup --compound --mode mail --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.ID = args[0]
			}
			return runResolve(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ActionFile, "action", "", "action file (JSON or YAML, - for stdin)")
	cmd.Flags().StringVar(&opts.CardFile, "card", "", "card file (JSON or YAML)")
	cmd.Flags().StringVar(&opts.Registry, "registry", "", "registry directory (overrides ACTIONROUTE_REGISTRY_DIR)")
	cmd.Flags().StringVar(&opts.UIDir, "ui-dir", "", "UI definition directory (overrides ACTIONROUTE_UI_DIR)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "events database (overrides ACTIONROUTE_EVENTS_DB)")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "action kind (goto|in_app)")
	cmd.Flags().StringToStringVar(&opts.Context, "ctx", nil, "context entry key=value (repeatable)")
	cmd.Flags().BoolVar(&opts.Compound, "compound", false, "treat the action as a compound")
	cmd.Flags().StringSliceVar(&opts.Steps, "steps", nil, "compound step ids")
	cmd.Flags().StringVar(&opts.Mode, "mode", "", "current mode (mail|ads); default is the card mode")
	cmd.Flags().BoolVar(&opts.Confirmed, "confirmed", false, "confirm a previewed action")

	return cmd
}

func runResolve(ctx context.Context, opts *ResolveOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	action, err := opts.action(cmd.InOrStdin())
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid action", err)
	}
	card := &ir.Card{Mode: ir.Mode(opts.Mode)}
	if opts.CardFile != "" {
		card, err = readCard(opts.CardFile)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid card", err)
		}
	}

	cfg, err := opts.Config()
	if err != nil {
		return err
	}
	local := *cfg
	if opts.Registry != "" {
		local.RegistryDir = opts.Registry
	}
	if opts.UIDir != "" {
		local.UIDir = opts.UIDir
	}
	if opts.Database != "" {
		local.EventsDB = opts.Database
	}

	// The CLI is its own presentation layer: effects go through the
	// channel to a presenter drained on a separate goroutine.
	channel := effect.NewChannel(1)
	presenter := effect.NewPresenter(effect.WithDismissAfter(local.ErrorDismiss))
	drained := make(chan error, 1)
	go func() { drained <- channel.Drain(context.Background(), presenter) }()

	rt, err := newRuntime(ctx, &local, channel)
	if err != nil {
		channel.Close()
		<-drained
		return formatter.SetupFailure(err)
	}
	defer rt.Close()

	formatter.VerboseLog("Registry %s (schema %s): %d action(s)",
		local.RegistryDir, rt.registry.Current().SchemaVersion(), len(rt.registry.Current().ActionIDs()))

	res := rt.engine.Resolve(ctx, engine.Request{
		Action:    action,
		Card:      card,
		Mode:      ir.Mode(opts.Mode),
		Confirmed: opts.Confirmed,
	})
	channel.Close()
	if err := <-drained; err != nil {
		return fmt.Errorf("presenting effect: %w", err)
	}

	banner, _ := presenter.Banner()
	return formatter.Resolution(res, banner)
}

// action builds the inbound action from --action or from flags. Flags
// given alongside a file override its fields.
func (o *ResolveOptions) action(stdin io.Reader) (ir.Action, error) {
	var a ir.Action
	if o.ActionFile != "" {
		var data []byte
		var err error
		if o.ActionFile == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(o.ActionFile)
		}
		if err != nil {
			return a, fmt.Errorf("read action: %w", err)
		}
		if err := decodeStrict(data, &a); err != nil {
			return a, fmt.Errorf("decode action: %w", err)
		}
	}

	if o.ID != "" {
		a.ID = o.ID
	}
	if o.Kind != "" {
		kind, err := ir.ParseActionKind(o.Kind)
		if err != nil {
			return a, err
		}
		a.Kind = kind
	}
	if len(o.Context) > 0 {
		keys := make([]string, 0, len(o.Context))
		for k := range o.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			a.Context = a.Context.With(k, o.Context[k])
		}
	}
	if o.Compound || len(o.Steps) > 0 {
		a.IsCompound = true
		a.CompoundSteps = append(a.CompoundSteps, o.Steps...)
	}

	if a.ID == "" {
		return a, fmt.Errorf("action id is required (argument or --action file)")
	}
	return a, nil
}

func readCard(path string) (*ir.Card, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read card: %w", err)
	}
	var card ir.Card
	if err := decodeStrict(data, &card); err != nil {
		return nil, fmt.Errorf("decode card: %w", err)
	}
	return &card, nil
}

// decodeStrict decodes JSON or YAML, rejecting unknown fields.
func decodeStrict(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(v)
}
