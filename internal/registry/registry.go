package registry

import (
	"slices"
	"strings"

	"github.com/roach88/actionroute/internal/ir"
)

// ActionRegistry is the read-only lookup from action id to its metadata.
// Any implementation must honor these three operations.
type ActionRegistry interface {
	// ActionConfig returns the config for id, or false when unknown.
	ActionConfig(id string) (ir.ActionConfig, bool)

	// IsValidForMode reports whether cfg applies to the current mode.
	IsValidForMode(cfg ir.ActionConfig, current ir.Mode) bool

	// Validate checks ctx against the required context keys of cfg.
	Validate(cfg ir.ActionConfig, ctx ir.Context) ir.ValidationResult
}

// CompoundRegistry maps a compound action id to its definition.
type CompoundRegistry interface {
	CompoundAction(id string) (ir.CompoundAction, bool)
}

// Pinner is implemented by registries whose contents can change between
// calls. Pin returns a view that stays fixed for the rest of a resolution.
type Pinner interface {
	Pin() ActionRegistry
}

// Snapshot is an immutable compiled registry.
// Safe for concurrent use; nothing mutates it after construction.
type Snapshot struct {
	schemaVersion string
	actions       map[string]ir.ActionConfig
	compounds     map[string]ir.CompoundAction
}

// NewSnapshot builds a snapshot from configs and compound definitions.
// Inputs are copied. Later entries win on duplicate ids.
func NewSnapshot(schemaVersion string, actions []ir.ActionConfig, compounds []ir.CompoundAction) *Snapshot {
	s := &Snapshot{
		schemaVersion: schemaVersion,
		actions:       make(map[string]ir.ActionConfig, len(actions)),
		compounds:     make(map[string]ir.CompoundAction, len(compounds)),
	}
	for _, a := range actions {
		a.RequiredContextKeys = slices.Clone(a.RequiredContextKeys)
		s.actions[a.ID] = a
	}
	for _, c := range compounds {
		c.Steps = slices.Clone(c.Steps)
		if c.EndBehavior != nil {
			eb := *c.EndBehavior
			c.EndBehavior = &eb
		}
		s.compounds[c.ID] = c
	}
	return s
}

// SchemaVersion returns the schema_version the snapshot was compiled from.
func (s *Snapshot) SchemaVersion() string {
	return s.schemaVersion
}

// ActionConfig implements ActionRegistry.
func (s *Snapshot) ActionConfig(id string) (ir.ActionConfig, bool) {
	if s == nil {
		return ir.ActionConfig{}, false
	}
	cfg, ok := s.actions[id]
	if !ok {
		return ir.ActionConfig{}, false
	}
	cfg.RequiredContextKeys = slices.Clone(cfg.RequiredContextKeys)
	return cfg, true
}

// IsValidForMode implements ActionRegistry. Modes must match exactly.
func (s *Snapshot) IsValidForMode(cfg ir.ActionConfig, current ir.Mode) bool {
	return IsValidForMode(cfg, current)
}

// Validate implements ActionRegistry.
func (s *Snapshot) Validate(cfg ir.ActionConfig, ctx ir.Context) ir.ValidationResult {
	return Validate(cfg, ctx)
}

// CompoundAction implements CompoundRegistry.
func (s *Snapshot) CompoundAction(id string) (ir.CompoundAction, bool) {
	if s == nil {
		return ir.CompoundAction{}, false
	}
	c, ok := s.compounds[id]
	if !ok {
		return ir.CompoundAction{}, false
	}
	c.Steps = slices.Clone(c.Steps)
	return c, true
}

// Pin implements Pinner. A snapshot is already fixed.
func (s *Snapshot) Pin() ActionRegistry {
	return s
}

// ActionIDs returns all action ids, sorted.
func (s *Snapshot) ActionIDs() []string {
	ids := make([]string, 0, len(s.actions))
	for id := range s.actions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// CompoundIDs returns all compound ids, sorted.
func (s *Snapshot) CompoundIDs() []string {
	ids := make([]string, 0, len(s.compounds))
	for id := range s.compounds {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// IsValidForMode is the default mode gate: exact match.
func IsValidForMode(cfg ir.ActionConfig, current ir.Mode) bool {
	return cfg.RequiredMode == current
}

// Validate is the default context validation. missingKeys keeps the
// declaration order of cfg.RequiredContextKeys; a key counts as present only
// with a non-empty value.
func Validate(cfg ir.ActionConfig, ctx ir.Context) ir.ValidationResult {
	var missing []string
	for _, key := range cfg.RequiredContextKeys {
		if _, ok := ctx.Lookup(key); !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return ir.ValidationResult{IsValid: true}
	}
	return ir.ValidationResult{
		IsValid:     false,
		MissingKeys: missing,
		Error:       "missing required context: " + strings.Join(missing, ", "),
	}
}
