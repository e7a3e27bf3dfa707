package registry

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"github.com/Masterminds/semver/v3"

	"github.com/roach88/actionroute/internal/ir"
)

// CompileError is a registry compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError converts a CUE error into a CompileError carrying the first
// reported position.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	var pos token.Pos
	if positions := errors.Positions(err); len(positions) > 0 {
		pos = positions[0]
	}
	return &CompileError{
		Field:   "cue",
		Message: errors.Details(err, nil),
		Pos:     pos,
	}
}

// Compile parses a whole registry value (schema_version, action, compound)
// into a Snapshot. The first error aborts compilation; use Check for a full
// list of semantic problems.
//
//	ctx := cuecontext.New()
//	snap, err := Compile(ctx.CompileString(src))
func Compile(v cue.Value) (*Snapshot, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	version, err := compileSchemaVersion(v)
	if err != nil {
		return nil, err
	}

	var actions []ir.ActionConfig
	actionsVal := v.LookupPath(cue.ParsePath("action"))
	if actionsVal.Exists() {
		iter, err := actionsVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			cfg, err := CompileAction(iter.Label(), iter.Value())
			if err != nil {
				return nil, err
			}
			actions = append(actions, *cfg)
		}
	}

	var compounds []ir.CompoundAction
	compoundsVal := v.LookupPath(cue.ParsePath("compound"))
	if compoundsVal.Exists() {
		iter, err := compoundsVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			c, err := CompileCompound(iter.Label(), iter.Value())
			if err != nil {
				return nil, err
			}
			compounds = append(compounds, *c)
		}
	}

	return NewSnapshot(version, actions, compounds), nil
}

// compileSchemaVersion reads schema_version and checks it against the range
// this engine understands.
func compileSchemaVersion(v cue.Value) (string, error) {
	versionVal := v.LookupPath(cue.ParsePath("schema_version"))
	if !versionVal.Exists() {
		return "", &CompileError{Field: "schema_version", Message: "schema_version is required", Pos: v.Pos()}
	}
	raw, err := versionVal.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	version, err := semver.NewVersion(raw)
	if err != nil {
		return "", &CompileError{Field: "schema_version", Message: fmt.Sprintf("invalid version %q: %v", raw, err), Pos: versionVal.Pos()}
	}
	constraint, err := semver.NewConstraint(ir.SchemaVersionConstraint)
	if err != nil {
		return "", fmt.Errorf("schema version constraint: %w", err)
	}
	if !constraint.Check(version) {
		return "", &CompileError{
			Field:   "schema_version",
			Message: fmt.Sprintf("unsupported schema version %s (want %s)", version, ir.SchemaVersionConstraint),
			Pos:     versionVal.Pos(),
		}
	}
	return version.String(), nil
}

// CompileAction parses one action struct into an ActionConfig.
//
// Recognized fields: mode (required), kind, requires, ui, generic_ui,
// priority, placeholder.
func CompileAction(id string, v cue.Value) (*ir.ActionConfig, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	cfg := &ir.ActionConfig{ID: id}

	modeVal := v.LookupPath(cue.ParsePath("mode"))
	if !modeVal.Exists() {
		return nil, &CompileError{Field: "action." + id + ".mode", Message: "mode is required", Pos: v.Pos()}
	}
	mode, err := modeVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	cfg.RequiredMode = ir.Mode(mode)

	if kindVal := v.LookupPath(cue.ParsePath("kind")); kindVal.Exists() {
		raw, err := kindVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		kind, err := ir.ParseActionKind(raw)
		if err != nil {
			return nil, &CompileError{Field: "action." + id + ".kind", Message: err.Error(), Pos: kindVal.Pos()}
		}
		cfg.Kind = kind
	}

	if reqVal := v.LookupPath(cue.ParsePath("requires")); reqVal.Exists() {
		keys, err := stringList(reqVal)
		if err != nil {
			return nil, err
		}
		cfg.RequiredContextKeys = keys
	}

	if cfg.TerminalUIID, err = optionalString(v, "ui"); err != nil {
		return nil, err
	}
	if cfg.DataDrivenUIRef, err = optionalString(v, "generic_ui"); err != nil {
		return nil, err
	}

	if prioVal := v.LookupPath(cue.ParsePath("priority")); prioVal.Exists() {
		prio, err := prioVal.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		cfg.Priority = int(prio)
	}

	policy, err := optionalString(v, "placeholder")
	if err != nil {
		return nil, err
	}
	cfg.Placeholder = ir.PlaceholderPolicy(policy)

	return cfg, nil
}

// CompileCompound parses one compound struct into a CompoundAction.
func CompileCompound(id string, v cue.Value) (*ir.CompoundAction, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	c := &ir.CompoundAction{ID: id}

	if stepsVal := v.LookupPath(cue.ParsePath("steps")); stepsVal.Exists() {
		steps, err := stringList(stepsVal)
		if err != nil {
			return nil, err
		}
		c.Steps = steps
	}

	endVal := v.LookupPath(cue.ParsePath("end_behavior"))
	if endVal.Exists() {
		typ, err := optionalString(endVal, "type")
		if err != nil {
			return nil, err
		}
		if typ == "" {
			return nil, &CompileError{Field: "compound." + id + ".end_behavior.type", Message: "type is required", Pos: endVal.Pos()}
		}
		value, err := optionalString(endVal, "value")
		if err != nil {
			return nil, err
		}
		c.EndBehavior = &ir.EndBehavior{Type: ir.EndBehaviorType(typ), Value: value}
	}

	return c, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func stringList(v cue.Value) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}
