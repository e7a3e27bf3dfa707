// Package ir provides the shared types for action resolution.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This keeps ir the foundational
// layer with no circular dependencies.
//
// Key design constraints:
//   - Context is an immutable value; mutation goes through With (copy-on-write)
//   - Empty context values are treated as absent
//   - Context keys are case-sensitive and open-ended (extension map)
//   - All JSON tags use snake_case except context keys, which are passed through verbatim
package ir
