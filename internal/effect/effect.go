// Package effect defines what a resolution hands off to the presentation
// layer: the tagged Effect variants, the closed UI variant table, the Sink
// contract, and the channel that funnels effects onto one presentation
// goroutine.
package effect

import (
	"github.com/roach88/actionroute/internal/ir"
	"github.com/roach88/actionroute/internal/uidef"
)

// Kind names an effect class.
type Kind string

const (
	KindNavigate     Kind = "navigate"
	KindPresentUI    Kind = "present_ui"
	KindCompoundFlow Kind = "present_compound_flow"
	KindPreview      Kind = "present_preview"
	KindShowError    Kind = "show_error"
)

// Effect is the single externally observable outcome of a resolution.
// The set of implementations is closed.
type Effect interface {
	Kind() Kind
	isEffect()
}

// URLSource records which rung of the URL ladder produced a navigation.
type URLSource string

const (
	SourceGeneric    URLSource = "generic"
	SourceSemantic   URLSource = "semantic"
	SourceGenerator  URLSource = "generator"
	SourceStructural URLSource = "structural"
	SourceFallback   URLSource = "fallback"
)

// Navigate opens an external URL.
type Navigate struct {
	URL    string    `json:"url"`
	Source URLSource `json:"source"`
}

// Payload is what a UI variant renders.
type Payload struct {
	Variant Variant           `json:"variant"`
	CardID  string            `json:"card_id,omitempty"`
	Fields  map[string]string `json:"fields"`

	// Simulated marks payloads built from placeholder-filled context.
	Simulated   bool                   `json:"simulated,omitempty"`
	Placeholder *ir.PlaceholderContent `json:"placeholder,omitempty"`

	// View is set for VariantGeneric.
	View *uidef.View `json:"view,omitempty"`
}

// PresentUI presents a terminal UI variant.
type PresentUI struct {
	Payload Payload `json:"payload"`
}

// PresentPreview presents a preview ahead of a gated navigation. The
// navigation itself happens on a later, confirmed resolution.
type PresentPreview struct {
	ActionID string  `json:"action_id"`
	Payload  Payload `json:"payload"`
}

// PresentCompoundFlow unfolds a multi-step action as one guided flow.
type PresentCompoundFlow struct {
	ActionID    string          `json:"action_id"`
	Steps       []string        `json:"steps"`
	Context     ir.Context      `json:"context"`
	EndBehavior *ir.EndBehavior `json:"end_behavior,omitempty"`
}

// ShowError is a transient user-visible error.
type ShowError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (Navigate) Kind() Kind            { return KindNavigate }
func (PresentUI) Kind() Kind           { return KindPresentUI }
func (PresentPreview) Kind() Kind      { return KindPreview }
func (PresentCompoundFlow) Kind() Kind { return KindCompoundFlow }
func (ShowError) Kind() Kind           { return KindShowError }

func (Navigate) isEffect() {}
func (PresentUI) isEffect() {}
func (PresentPreview) isEffect() {}
func (PresentCompoundFlow) isEffect() {}
func (ShowError) isEffect() {}

// IsTerminal reports whether e ends the resolution of its action. Previews
// are not terminal.
func IsTerminal(e Effect) bool {
	return e != nil && e.Kind() != KindPreview
}
