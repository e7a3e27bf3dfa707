package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"cuelang.org/go/cue/token"
	"github.com/spf13/cobra"

	"github.com/roach88/actionroute/internal/registry"
	"github.com/roach88/actionroute/internal/uidef"
)

// UI definition error codes (E300-E399).
const (
	ErrCodeUIDefinition = "E301" // definition file fails to load or validate
	ErrCodeUIMissing    = "E302" // generic_ui names a definition that does not exist
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	UIDir string
}

// ValidationError is one problem reported by validate.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid         bool              `json:"valid"`
	SchemaVersion string            `json:"schema_version,omitempty"`
	Actions       int               `json:"actions"`
	Compounds     int               `json:"compounds"`
	Definitions   int               `json:"definitions"`
	Errors        []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate [registry-dir]",
		Short: "Validate the action registry and UI definitions",
		Long: `Validate the CUE action registry without resolving anything.

Compiles every action and compound, then reports all semantic problems at
once: unknown modes, kinds and placeholder policies, duplicate required keys,
compound steps that reference unknown actions. With a UI definition
directory, every definition is checked against the schema and every
generic_ui reference must name an existing definition.

The registry directory defaults to ACTIONROUTE_REGISTRY_DIR.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runValidate(opts, dir, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.UIDir, "ui-dir", "", "UI definition directory (overrides ACTIONROUTE_UI_DIR)")

	return cmd
}

func runValidate(opts *ValidateOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	uiDir := opts.UIDir
	if dir == "" || uiDir == "" {
		cfg, err := opts.Config()
		if err != nil {
			return err
		}
		if dir == "" {
			dir = cfg.RegistryDir
		}
		if uiDir == "" {
			uiDir = cfg.UIDir
		}
	}

	value, fileCount, err := registry.LoadValue(dir)
	if err != nil {
		return formatter.SetupFailure(err)
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", fileCount, dir)

	snap, err := registry.Compile(value)
	if err != nil {
		return outputValidationErrors(formatter, []ValidationError{compileProblem(err)})
	}

	result := ValidationResult{
		SchemaVersion: snap.SchemaVersion(),
		Actions:       len(snap.ActionIDs()),
		Compounds:     len(snap.CompoundIDs()),
	}
	for _, p := range registry.Check(snap) {
		result.Errors = append(result.Errors, ValidationError{Field: p.Field, Message: p.Message, Code: p.Code})
	}

	if uiDir != "" {
		count, problems := validateDefinitions(snap, uiDir, formatter)
		result.Definitions = count
		result.Errors = append(result.Errors, problems...)
	}

	if len(result.Errors) > 0 {
		return outputValidationErrors(formatter, result.Errors)
	}
	result.Valid = true
	return outputValidateSuccess(formatter, result)
}

// compileProblem converts a compile failure, keeping its line when known.
func compileProblem(err error) ValidationError {
	var cErr *registry.CompileError
	if errors.As(err, &cErr) {
		return ValidationError{
			Field:   cErr.Field,
			Message: cErr.Message,
			Code:    registry.ErrCodeGeneric,
			Line:    lineOf(cErr.Pos),
		}
	}
	return ValidationError{Field: "registry", Message: err.Error(), Code: registry.ErrCodeGeneric}
}

func lineOf(pos token.Pos) int {
	if pos.IsValid() {
		return pos.Line()
	}
	return 0
}

// validateDefinitions loads every definition file in dir and checks that
// generic_ui references resolve.
func validateDefinitions(snap *registry.Snapshot, dir string, formatter *OutputFormatter) (int, []ValidationError) {
	loader, err := uidef.NewDirLoader(dir, 0)
	if err != nil {
		return 0, []ValidationError{{Field: "ui", Message: err.Error(), Code: ErrCodeUIDefinition}}
	}

	names, err := definitionNames(dir)
	if err != nil {
		return 0, []ValidationError{{Field: "ui", Message: err.Error(), Code: ErrCodeUIDefinition}}
	}

	var problems []ValidationError
	loaded := 0
	for _, name := range names {
		formatter.VerboseLog("Validating UI definition: %s", name)
		if _, err := loader.Load(name); err != nil {
			problems = append(problems, ValidationError{Field: "ui." + name, Message: err.Error(), Code: ErrCodeUIDefinition})
			continue
		}
		loaded++
	}

	for _, id := range snap.ActionIDs() {
		cfg, _ := snap.ActionConfig(id)
		ref := cfg.DataDrivenUIRef
		if ref == "" || slices.Contains(names, ref) {
			continue
		}
		problems = append(problems, ValidationError{
			Field:   "action." + id + ".generic_ui",
			Message: fmt.Sprintf("UI definition %q not found in %s", ref, dir),
			Code:    ErrCodeUIMissing,
		})
	}
	return loaded, problems
}

// definitionNames lists definition names (file names without extension) in dir.
func definitionNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read ui definition directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		switch ext {
		case ".json", ".yaml", ".yml":
		default:
			continue
		}
		name := strings.TrimSuffix(e.Name(), ext)
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Registry valid (schema %s): %d action(s), %d compound(s)",
		result.SchemaVersion, result.Actions, result.Compounds)
	if result.Definitions > 0 {
		fmt.Fprintf(formatter.Writer, ", %d UI definition(s)", result.Definitions)
	}
	fmt.Fprintln(formatter.Writer)
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:  false,
				Errors: errs,
			},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}
		if err := formatter.JSON(response); err != nil {
			return err
		}
		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
