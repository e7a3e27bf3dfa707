package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/roach88/actionroute/internal/effect"
	"github.com/roach88/actionroute/internal/engine"
	"github.com/roach88/actionroute/internal/registry"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Effect other than ShowError, valid registry, passing scenarios
	ExitFailure      = 1 // ShowError effect, invalid registry, failed scenarios
	ExitCommandError = 2 // Bad flags, unreadable files, unloadable registry, missing database
)

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code    int    // ExitFailure or ExitCommandError
	Message string // printed after "Error:" by main
	Err     error  // optional cause
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode maps a command error onto a process exit code. An explicit
// ExitError wins; a bare registry load failure is a command error; a
// rejected resolution or anything else is a failure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	var loadErr *registry.LoadError
	if errors.As(err, &loadErr) {
		return ExitCommandError
	}
	return ExitFailure
}

// OutputFormatter writes command results as JSON envelopes or text.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // verbose diagnostics; defaults to Writer
	Verbose   bool
}

// CLIResponse is the JSON envelope of every command.
type CLIResponse struct {
	Status  string      `json:"status"`             // "ok" or "error"
	Data    interface{} `json:"data,omitempty"`     // success payload
	Error   *CLIError   `json:"error,omitempty"`    // error details
	TraceID string      `json:"trace_id,omitempty"` // resolution id when one exists
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`              // "E005", "MODE_MISMATCH", etc.
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // additional context
}

// ResolveOutput is the JSON payload of one resolution.
type ResolveOutput struct {
	ResolutionID string         `json:"resolution_id"`
	ActionID     string         `json:"action_id"`
	Decision     string         `json:"decision"`
	Terminal     bool           `json:"terminal"`
	Simulated    bool           `json:"simulated,omitempty"`
	MissingKeys  []string       `json:"missing_keys,omitempty"`
	FilledKeys   []string       `json:"filled_keys,omitempty"`
	Effect       map[string]any `json:"effect"`
	Banner       string         `json:"banner,omitempty"`
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return f.JSON(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// JSON writes v as indented JSON without HTML escaping, so URLs print as
// they are.
func (f *OutputFormatter) JSON(v interface{}) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		return f.JSON(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// SetupFailure reports a registry or runtime setup failure under its
// registry error code and returns the command error to exit with.
func (f *OutputFormatter) SetupFailure(err error) error {
	code, msg := setupErrorCode(err)
	_ = f.Error(code, msg, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, msg))
}

// Resolution writes one resolution. A ShowError effect is reported as an
// error envelope carrying the resolution error's details, and yields an
// ExitFailure so scripts can branch on rejected actions.
func (f *OutputFormatter) Resolution(res engine.Resolution, banner string) error {
	out := ResolveOutput{
		ResolutionID: res.ID,
		ActionID:     res.ActionID,
		Decision:     string(res.Decision),
		Terminal:     res.Terminal,
		Simulated:    res.Simulated,
		MissingKeys:  res.MissingKeys,
		FilledKeys:   res.FilledKeys,
		Effect:       effect.Canonical(res.Effect),
		Banner:       banner,
	}
	cliErr := resolutionError(res)

	if f.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: out, TraceID: res.ID}
		if cliErr != nil {
			resp.Status = "error"
			resp.Error = cliErr
		}
		if err := f.JSON(resp); err != nil {
			return err
		}
	} else {
		writeResolveText(f.Writer, out)
	}

	if cliErr != nil {
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", cliErr.Code, res.Err))
	}
	return nil
}

// resolutionError is the CLIError of a ShowError resolution, or nil.
func resolutionError(res engine.Resolution) *CLIError {
	se, ok := res.Effect.(effect.ShowError)
	if !ok {
		return nil
	}
	cliErr := &CLIError{Code: se.Code, Message: se.Message}
	var re *engine.ResolutionError
	if errors.As(res.Err, &re) && len(re.Details) > 0 {
		cliErr.Details = re.Details
	}
	return cliErr
}

func writeResolveText(w io.Writer, out ResolveOutput) {
	fmt.Fprintf(w, "%s -> %s (%s)\n", out.ActionID, out.Effect["kind"], out.Decision)
	switch out.Effect["kind"] {
	case string(effect.KindNavigate):
		fmt.Fprintf(w, "  url: %s\n", out.Effect["url"])
		fmt.Fprintf(w, "  source: %s\n", out.Effect["source"])
	case string(effect.KindPresentUI), string(effect.KindPreview):
		if p, ok := out.Effect["payload"].(map[string]any); ok {
			fmt.Fprintf(w, "  variant: %s\n", p["variant"])
			if fields, ok := p["fields"].(map[string]string); ok {
				keys := make([]string, 0, len(fields))
				for k := range fields {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					fmt.Fprintf(w, "  %s: %s\n", k, fields[k])
				}
			}
		}
		if !out.Terminal {
			fmt.Fprintln(w, "  (preview: rerun with --confirmed to continue)")
		}
	case string(effect.KindCompoundFlow):
		fmt.Fprintf(w, "  steps: %v\n", out.Effect["steps"])
	case string(effect.KindShowError):
		fmt.Fprintf(w, "  %s: %s\n", out.Effect["code"], out.Effect["message"])
	}
	if out.Simulated {
		fmt.Fprintf(w, "  simulated: filled %v\n", out.FilledKeys)
	}
	if out.Banner != "" {
		fmt.Fprintf(w, "  banner: %s\n", out.Banner)
	}
	fmt.Fprintf(w, "  resolution: %s\n", out.ResolutionID)
}

// setupErrorCode maps registry load failures onto CLI error codes; anything
// else is the generic registry code.
func setupErrorCode(err error) (string, string) {
	var loadErr *registry.LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	var checkErr *registry.CheckError
	if errors.As(err, &checkErr) && len(checkErr.Problems) > 0 {
		return checkErr.Problems[0].Code, checkErr.Error()
	}
	return registry.ErrCodeGeneric, err.Error()
}

// VerboseLog writes a diagnostic line when verbose mode is on. It goes to
// ErrWriter when set so JSON on Writer stays parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// newFormatter builds the formatter for one command run. Diagnostics go to
// stderr.
func newFormatter(opts *RootOptions, cmd interface {
	OutOrStdout() io.Writer
	ErrOrStderr() io.Writer
}) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
