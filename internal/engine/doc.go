// Package engine resolves suggested actions into exactly one effect.
//
// ARCHITECTURE:
//
// Resolve is the single entry point. Each call runs a fresh state machine:
//
//	Idle -> Validating -> Valid | RecoverableInvalid -> PlaceholderFill -> Valid | FatalInvalid
//	     -> Dispatching{Navigate | InApp | Compound | Preview}
//	     -> Terminal(EffectEmitted | ErrorShown)
//
// Pipeline, in order:
//  1. Compound actions with steps route straight to PresentCompoundFlow.
//  2. Lookup: unknown action ids end in ShowError(ACTION_NOT_FOUND).
//  3. Mode gate: config.RequiredMode must equal the request mode.
//  4. Validation: missing required keys go to the placeholder resolver;
//     keys still missing after fill end in ShowError(MISSING_CONTEXT).
//  5. Dispatch: GoTo actions walk the URL ladder (after the preview gate),
//     InApp actions map their terminal UI id to a variant.
//
// CRITICAL PATTERNS:
//
// One effect per call. Terminal decisions emit exactly one analytics event;
// previews emit none and are followed later by a confirmed call.
//
// No shared mutable state. The engine pins one registry snapshot per call
// and is safe for concurrent use; presentation is handed to a Publisher
// rather than performed inline.
package engine
