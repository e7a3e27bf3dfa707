package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/actionroute/internal/effect"
	"github.com/roach88/actionroute/internal/ir"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Registry is the CUE registry directory, relative to the scenario file.
	Registry string `yaml:"registry"`

	// UIDir is an optional data-driven UI definition directory.
	UIDir string `yaml:"ui_dir,omitempty"`

	// Card is the card every step resolves against unless the step
	// overrides it.
	Card ir.Card `yaml:"card"`

	Steps      []Step      `yaml:"steps"`
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one Resolve call.
type Step struct {
	Action    ir.Action `yaml:"action"`
	Mode      ir.Mode   `yaml:"mode,omitempty"`
	Confirmed bool      `yaml:"confirmed,omitempty"`
	Card      *ir.Card  `yaml:"card,omitempty"`

	// ReloadRegistry, when set, swaps the engine's registry for this
	// directory (relative to the scenario file) before the step resolves.
	ReloadRegistry string `yaml:"reload_registry,omitempty"`

	// Expect validates the step's effect. If nil, no validation is performed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect is a subset match on one resolution. Empty fields are not checked.
type Expect struct {
	Effect    string            `yaml:"effect"`
	Decision  string            `yaml:"decision,omitempty"`
	URL       string            `yaml:"url,omitempty"`
	URLSource string            `yaml:"url_source,omitempty"`
	Variant   string            `yaml:"variant,omitempty"`
	ErrorCode string            `yaml:"error_code,omitempty"`
	Simulated *bool             `yaml:"simulated,omitempty"`
	Fields    map[string]string `yaml:"fields,omitempty"`
	Steps     []string          `yaml:"steps,omitempty"`
}

// Assertion validates the whole run.
type Assertion struct {
	// Type specifies the assertion type:
	// - "event_count": recorded events matching action/decision == count
	// - "event_order": recorded events mention actions in this order
	// - "effect_count": trace steps with this effect (and action) == count
	Type string `yaml:"type"`

	Action   string   `yaml:"action,omitempty"`
	Decision string   `yaml:"decision,omitempty"`
	Effect   string   `yaml:"effect,omitempty"`
	Count    int      `yaml:"count,omitempty"`
	Actions  []string `yaml:"actions,omitempty"`
}

// Assertion type constants.
const (
	AssertEventCount  = "event_count"
	AssertEventOrder  = "event_order"
	AssertEffectCount = "effect_count"
)

var effectKinds = map[string]bool{
	string(effect.KindNavigate):     true,
	string(effect.KindPresentUI):    true,
	string(effect.KindCompoundFlow): true,
	string(effect.KindPreview):      true,
	string(effect.KindShowError):    true,
}

// LoadScenario reads and parses a scenario YAML file. Registry and UI
// directories are resolved relative to the file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data, filepath.Dir(path))
}

// ParseScenario parses scenario YAML, resolving relative directories against
// baseDir.
func ParseScenario(data []byte, baseDir string) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	scenario.Registry = resolvePath(baseDir, scenario.Registry)
	scenario.UIDir = resolvePath(baseDir, scenario.UIDir)
	for i := range scenario.Steps {
		scenario.Steps[i].ReloadRegistry = resolvePath(baseDir, scenario.Steps[i].ReloadRegistry)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) || base == "" {
		return p
	}
	return filepath.Join(base, p)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Registry == "" {
		return fmt.Errorf("registry is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Action.ID == "" {
			return fmt.Errorf("steps[%d]: action.id is required", i)
		}
		if step.Expect != nil && !effectKinds[step.Expect.Effect] {
			return fmt.Errorf("steps[%d].expect: unknown effect %q", i, step.Expect.Effect)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertEventCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for event_count", index)
		}
	case AssertEventOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("assertions[%d]: actions list is required for event_order", index)
		}
	case AssertEffectCount:
		if !effectKinds[a.Effect] {
			return fmt.Errorf("assertions[%d]: unknown effect %q for effect_count", index, a.Effect)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for effect_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
