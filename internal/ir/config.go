package ir

// PlaceholderPolicy controls which placeholder tiers may fill missing context.
type PlaceholderPolicy string

const (
	// PlaceholderFull allows the structural and content-synthesis tiers.
	PlaceholderFull PlaceholderPolicy = "full"

	// PlaceholderStructural allows only the structural tier.
	PlaceholderStructural PlaceholderPolicy = "structural"

	// PlaceholderNone disables placeholder fill; missing context is fatal.
	PlaceholderNone PlaceholderPolicy = "none"
)

// ValidPlaceholderPolicies defines the allowed policy strings.
var ValidPlaceholderPolicies = map[PlaceholderPolicy]bool{
	PlaceholderFull:       true,
	PlaceholderStructural: true,
	PlaceholderNone:       true,
}

// ActionConfig is the registry record for one action id.
// It is immutable for the duration of a resolution.
type ActionConfig struct {
	ID                  string            `json:"id"`
	RequiredMode        Mode              `json:"required_mode"`
	Kind                ActionKind        `json:"kind,omitempty"`
	RequiredContextKeys []string          `json:"required_context_keys"`
	TerminalUIID        string            `json:"terminal_ui_id,omitempty"`
	DataDrivenUIRef     string            `json:"data_driven_ui_ref,omitempty"`
	Priority            int               `json:"priority"`
	Placeholder         PlaceholderPolicy `json:"placeholder,omitempty"`
}

// Policy returns the effective placeholder policy, defaulting to full.
func (c ActionConfig) Policy() PlaceholderPolicy {
	if c.Placeholder == "" {
		return PlaceholderFull
	}
	return c.Placeholder
}

// ValidationResult is the outcome of checking a context against a config.
type ValidationResult struct {
	IsValid     bool     `json:"is_valid"`
	MissingKeys []string `json:"missing_keys,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// EndBehaviorType is what happens when a compound flow finishes.
type EndBehaviorType string

const (
	EndDismiss     EndBehaviorType = "dismiss"
	EndArchive     EndBehaviorType = "archive"
	EndOpenURL     EndBehaviorType = "open_url"
	EndShowMessage EndBehaviorType = "show_message"
)

// ValidEndBehaviors defines the allowed end behavior types.
var ValidEndBehaviors = map[EndBehaviorType]bool{
	EndDismiss:     true,
	EndArchive:     true,
	EndOpenURL:     true,
	EndShowMessage: true,
}

// EndBehavior describes the terminal behavior of a compound flow.
type EndBehavior struct {
	Type  EndBehaviorType `json:"type"`
	Value string          `json:"value,omitempty"`
}

// CompoundAction is the compound registry record for one compound id.
// EndBehavior is nil when the flow has no special terminal behavior.
type CompoundAction struct {
	ID          string       `json:"id"`
	Steps       []string     `json:"steps"`
	EndBehavior *EndBehavior `json:"end_behavior,omitempty"`
}
