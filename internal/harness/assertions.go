package harness

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/roach88/actionroute/internal/analytics"
	"github.com/roach88/actionroute/internal/effect"
	"github.com/roach88/actionroute/internal/engine"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceStep
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, s := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s -> %s (%s)\n", s.Step+1, s.ActionID, s.Effect.Kind(), s.Decision)
	}
	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		var err error
		switch a.Type {
		case AssertEventCount:
			err = assertEventCount(result, a)
		case AssertEventOrder:
			err = assertEventOrder(result, a)
		case AssertEffectCount:
			err = assertEffectCount(result, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func assertEventCount(result *Result, a Assertion) error {
	count := 0
	for _, e := range result.Events {
		if a.Action != "" && e.ActionID != a.Action {
			continue
		}
		if a.Decision != "" && string(e.Decision) != a.Decision {
			continue
		}
		count++
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertEventCount,
			Expected: fmt.Sprintf("%d events%s", a.Count, describeFilter(a)),
			Actual:   fmt.Sprintf("%d events", count),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertEventOrder checks that actions first appear in the recorded events
// in the given order. Intervening events are allowed.
func assertEventOrder(result *Result, a Assertion) error {
	positions := make(map[string]int)
	for i, e := range result.Events {
		if _, seen := positions[e.ActionID]; !seen {
			positions[e.ActionID] = i + 1
		}
	}

	for _, action := range a.Actions {
		if positions[action] == 0 {
			return &AssertionError{
				Type:     AssertEventOrder,
				Expected: fmt.Sprintf("all actions recorded: %v", a.Actions),
				Actual:   fmt.Sprintf("missing action: %s", action),
				Trace:    result.Trace,
			}
		}
	}
	for i := 1; i < len(a.Actions); i++ {
		prev, curr := a.Actions[i-1], a.Actions[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertEventOrder,
				Expected: fmt.Sprintf("actions in order: %v", a.Actions),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: result.Trace,
			}
		}
	}
	return nil
}

func assertEffectCount(result *Result, a Assertion) error {
	count := 0
	for _, s := range result.Trace {
		if a.Action != "" && s.ActionID != a.Action {
			continue
		}
		if string(s.Effect.Kind()) == a.Effect {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertEffectCount,
			Expected: fmt.Sprintf("%d %s effects%s", a.Count, a.Effect, describeFilter(a)),
			Actual:   fmt.Sprintf("%d effects", count),
			Trace:    result.Trace,
		}
	}
	return nil
}

func describeFilter(a Assertion) string {
	var parts []string
	if a.Action != "" {
		parts = append(parts, "action="+a.Action)
	}
	if a.Decision != "" {
		parts = append(parts, "decision="+a.Decision)
	}
	if len(parts) == 0 {
		return ""
	}
	return " with " + strings.Join(parts, ", ")
}

// checkExpect compares one resolution against its expect clause.
func checkExpect(step int, want *Expect, res engine.Resolution) []string {
	var errs []string
	fail := func(field string, want, got any) {
		errs = append(errs, fmt.Sprintf("steps[%d]: %s = %v, want %v", step, field, got, want))
	}

	if got := string(res.Effect.Kind()); got != want.Effect {
		fail("effect", want.Effect, got)
		return errs
	}
	if want.Decision != "" && string(res.Decision) != want.Decision {
		fail("decision", want.Decision, res.Decision)
	}
	if want.Simulated != nil && res.Simulated != *want.Simulated {
		fail("simulated", *want.Simulated, res.Simulated)
	}

	var payload *effect.Payload
	switch e := res.Effect.(type) {
	case effect.Navigate:
		if want.URL != "" && e.URL != want.URL {
			fail("url", want.URL, e.URL)
		}
		if want.URLSource != "" && string(e.Source) != want.URLSource {
			fail("url_source", want.URLSource, e.Source)
		}
	case effect.PresentUI:
		payload = &e.Payload
	case effect.PresentPreview:
		payload = &e.Payload
	case effect.PresentCompoundFlow:
		if want.Steps != nil && !slices.Equal(e.Steps, want.Steps) {
			fail("steps", want.Steps, e.Steps)
		}
	case effect.ShowError:
		if want.ErrorCode != "" && e.Code != want.ErrorCode {
			fail("error_code", want.ErrorCode, e.Code)
		}
	}

	if payload != nil {
		if want.Variant != "" && string(payload.Variant) != want.Variant {
			fail("variant", want.Variant, payload.Variant)
		}
		for _, k := range slices.Sorted(maps.Keys(want.Fields)) {
			if got := payload.Fields[k]; got != want.Fields[k] {
				fail("fields."+k, want.Fields[k], got)
			}
		}
	}
	return errs
}

// decisionCounts tallies events per decision.
func decisionCounts(events []analytics.Event) map[string]int {
	out := make(map[string]int)
	for _, e := range events {
		out[string(e.Decision)]++
	}
	return out
}
