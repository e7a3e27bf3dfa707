package registry

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/roach88/actionroute/internal/ir"
)

// Reloadable is a registry whose snapshot can be replaced at runtime.
//
// Thread-safety: all methods are safe for concurrent use. Readers see either
// the old or the new snapshot, never a mix.
type Reloadable struct {
	mu      sync.Mutex // serializes reloads and guards dir
	dir     string
	current atomic.Pointer[Snapshot]
}

// NewReloadable wraps an initial snapshot.
func NewReloadable(initial *Snapshot) *Reloadable {
	r := &Reloadable{}
	if initial == nil {
		initial = NewSnapshot("", nil, nil)
	}
	r.current.Store(initial)
	return r
}

// OpenReloadable loads dir and returns a Reloadable that Reload re-reads.
func OpenReloadable(dir string) (*Reloadable, error) {
	snap, err := Load(dir)
	if err != nil {
		return nil, err
	}
	r := NewReloadable(snap)
	r.dir = dir
	return r, nil
}

// Current returns the active snapshot.
func (r *Reloadable) Current() *Snapshot {
	return r.current.Load()
}

// Swap installs snap and returns the previous snapshot.
func (r *Reloadable) Swap(snap *Snapshot) *Snapshot {
	if snap == nil {
		snap = NewSnapshot("", nil, nil)
	}
	return r.current.Swap(snap)
}

// Reload recompiles the directory given to OpenReloadable, or the one last
// installed by ReloadFrom. On error the active snapshot is kept.
func (r *Reloadable) Reload() error {
	r.mu.Lock()
	dir := r.dir
	r.mu.Unlock()
	if dir == "" {
		return fmt.Errorf("reload: registry has no source directory")
	}
	return r.ReloadFrom(dir)
}

// ReloadFrom compiles dir and, on success, installs it as the active
// snapshot and as the directory later Reload calls re-read. On error both
// the snapshot and the directory are kept.
func (r *Reloadable) ReloadFrom(dir string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap, err := Load(dir)
	if err != nil {
		slog.Warn("registry reload failed, keeping current snapshot", "dir", dir, "error", err)
		return fmt.Errorf("reload: %w", err)
	}
	prev := r.Swap(snap)
	r.dir = dir
	slog.Info("registry reloaded",
		"dir", dir,
		"schema_version", snap.SchemaVersion(),
		"actions", len(snap.actions),
		"previous_actions", len(prev.actions),
	)
	return nil
}

// Pin implements Pinner.
func (r *Reloadable) Pin() ActionRegistry {
	return r.Current()
}

// ActionConfig implements ActionRegistry against the active snapshot.
func (r *Reloadable) ActionConfig(id string) (ir.ActionConfig, bool) {
	return r.Current().ActionConfig(id)
}

// IsValidForMode implements ActionRegistry.
func (r *Reloadable) IsValidForMode(cfg ir.ActionConfig, current ir.Mode) bool {
	return IsValidForMode(cfg, current)
}

// Validate implements ActionRegistry.
func (r *Reloadable) Validate(cfg ir.ActionConfig, ctx ir.Context) ir.ValidationResult {
	return Validate(cfg, ctx)
}

// CompoundAction implements CompoundRegistry against the active snapshot.
func (r *Reloadable) CompoundAction(id string) (ir.CompoundAction, bool) {
	return r.Current().CompoundAction(id)
}
