package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/actionroute/internal/effect"
	"github.com/roach88/actionroute/internal/ir"
)

// Snapshot renders a result as canonical JSON for golden comparison. Event
// IDs are left out; seq numbers and decisions pin the recorded events.
func Snapshot(name string, result *Result) ([]byte, error) {
	steps := make([]any, len(result.Trace))
	for i, s := range result.Trace {
		m := map[string]any{
			"step":      s.Step,
			"action_id": s.ActionID,
			"decision":  string(s.Decision),
			"effect":    effect.Canonical(s.Effect),
			"terminal":  s.Terminal,
		}
		if s.Simulated {
			m["simulated"] = true
		}
		if s.Seq != 0 {
			m["seq"] = s.Seq
		}
		steps[i] = m
	}

	counts := make(map[string]any)
	for d, n := range decisionCounts(result.Events) {
		counts[d] = n
	}

	return ir.MarshalCanonical(map[string]any{
		"scenario_name": name,
		"trace":         steps,
		"decisions":     counts,
	})
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := Snapshot(name, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
