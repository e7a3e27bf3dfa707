package registry

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/actionroute/internal/ir"
)

// Check error codes (E200-E299).
const (
	ErrUnknownMode        = "E201" // mode is not mail/ads
	ErrUnknownKind        = "E202" // kind is not goto/in_app
	ErrUnknownPolicy      = "E203" // placeholder policy unknown
	ErrDuplicateKey       = "E204" // requires lists a key twice
	ErrEmptyKey           = "E205" // requires has an empty key
	ErrInvalidUIRef       = "E206" // generic_ui is not a safe definition name
	ErrEmptySteps         = "E210" // compound has no steps
	ErrUnknownStep        = "E211" // compound step is not a registered action
	ErrNestedCompound     = "E212" // compound step refers to another compound
	ErrUnknownEndBehavior = "E213" // end_behavior.type unknown
)

// definitionName matches names accepted by the UI definition loader.
var definitionName = regexp.MustCompile(`^[a-z0-9][a-z0-9_\-]*$`)

// Problem is one semantic registry problem.
type Problem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (p Problem) Error() string {
	return fmt.Sprintf("[%s] %s: %s", p.Code, p.Field, p.Message)
}

// CheckError wraps every problem Check found.
type CheckError struct {
	Problems []Problem
}

func (e *CheckError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Error()
	}
	return fmt.Sprintf("registry has %d problem(s): %s", len(e.Problems), strings.Join(msgs, "; "))
}

// Check validates a compiled snapshot. Returns all problems (not fail-fast).
func Check(s *Snapshot) []Problem {
	var problems []Problem

	for _, id := range s.ActionIDs() {
		cfg := s.actions[id]
		field := "action." + id

		if !ir.ValidModes[cfg.RequiredMode] {
			problems = append(problems, Problem{
				Field:   field + ".mode",
				Message: fmt.Sprintf("unknown mode %q, must be one of: mail, ads", cfg.RequiredMode),
				Code:    ErrUnknownMode,
			})
		}
		if cfg.Kind != "" && cfg.Kind != ir.KindGoTo && cfg.Kind != ir.KindInApp {
			problems = append(problems, Problem{
				Field:   field + ".kind",
				Message: fmt.Sprintf("unknown kind %q", cfg.Kind),
				Code:    ErrUnknownKind,
			})
		}
		if cfg.Placeholder != "" && !ir.ValidPlaceholderPolicies[cfg.Placeholder] {
			problems = append(problems, Problem{
				Field:   field + ".placeholder",
				Message: fmt.Sprintf("unknown placeholder policy %q, must be one of: full, structural, none", cfg.Placeholder),
				Code:    ErrUnknownPolicy,
			})
		}

		seen := make(map[string]bool)
		for i, key := range cfg.RequiredContextKeys {
			if strings.TrimSpace(key) == "" {
				problems = append(problems, Problem{
					Field:   fmt.Sprintf("%s.requires[%d]", field, i),
					Message: "required context key must be non-empty",
					Code:    ErrEmptyKey,
				})
				continue
			}
			if seen[key] {
				problems = append(problems, Problem{
					Field:   fmt.Sprintf("%s.requires[%d]", field, i),
					Message: fmt.Sprintf("duplicate required context key %q", key),
					Code:    ErrDuplicateKey,
				})
			}
			seen[key] = true
		}

		if cfg.DataDrivenUIRef != "" && !definitionName.MatchString(cfg.DataDrivenUIRef) {
			problems = append(problems, Problem{
				Field:   field + ".generic_ui",
				Message: fmt.Sprintf("invalid UI definition name %q", cfg.DataDrivenUIRef),
				Code:    ErrInvalidUIRef,
			})
		}
	}

	for _, id := range s.CompoundIDs() {
		c := s.compounds[id]
		field := "compound." + id

		if len(c.Steps) == 0 {
			problems = append(problems, Problem{
				Field:   field + ".steps",
				Message: "compound action must have at least one step",
				Code:    ErrEmptySteps,
			})
		}
		for i, step := range c.Steps {
			if _, ok := s.compounds[step]; ok {
				problems = append(problems, Problem{
					Field:   fmt.Sprintf("%s.steps[%d]", field, i),
					Message: fmt.Sprintf("step %q is itself a compound action", step),
					Code:    ErrNestedCompound,
				})
				continue
			}
			if _, ok := s.actions[step]; !ok {
				problems = append(problems, Problem{
					Field:   fmt.Sprintf("%s.steps[%d]", field, i),
					Message: fmt.Sprintf("step %q is not a registered action", step),
					Code:    ErrUnknownStep,
				})
			}
		}
		if c.EndBehavior != nil && !ir.ValidEndBehaviors[c.EndBehavior.Type] {
			problems = append(problems, Problem{
				Field:   field + ".end_behavior.type",
				Message: fmt.Sprintf("unknown end behavior %q", c.EndBehavior.Type),
				Code:    ErrUnknownEndBehavior,
			})
		}
	}

	return problems
}
