package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/actionroute/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// EnvFile is the .env file read before the process environment.
	EnvFile string

	cfg *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Config loads the runtime configuration once per invocation.
func (o *RootOptions) Config() (*config.Config, error) {
	if o.cfg != nil {
		return o.cfg, nil
	}
	var files []string
	if o.EnvFile != "" {
		files = append(files, o.EnvFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	o.cfg = cfg
	return cfg, nil
}

// NewRootCommand creates the root command for the actionroute CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "actionroute",
		Short: "actionroute - resolve suggested email actions",
		Long: `Resolve machine-suggested email actions into effects.

Every action attached to a card is checked against the action registry,
gated by mode, filled with placeholder data when context is missing, and
turned into exactly one effect: a navigation, an in-app flow, a preview,
a compound flow, or a transient error.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			cfg, err := opts.Config()
			if err != nil {
				return err
			}
			level := cfg.LogLevel
			if opts.Verbose {
				level = slog.LevelDebug
			}
			configureLogging(cmd.ErrOrStderr(), level)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "dotenv file to load (default .env)")

	cmd.AddCommand(NewResolveCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewEventsCommand(opts))

	return cmd
}

// configureLogging routes slog to w so JSON output on stdout stays clean.
func configureLogging(w io.Writer, level slog.Level) {
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
