package effect

import "github.com/roach88/actionroute/internal/ir"

// Canonical returns e as a canonical-JSON-ready map (see ir.MarshalCanonical).
// Optional members are omitted when empty. A nil effect yields nil.
func Canonical(e Effect) map[string]any {
	if e == nil {
		return nil
	}
	m := map[string]any{"kind": string(e.Kind())}
	switch v := e.(type) {
	case Navigate:
		m["url"] = v.URL
		m["source"] = string(v.Source)
	case PresentUI:
		m["payload"] = canonicalPayload(v.Payload)
	case PresentPreview:
		m["action_id"] = v.ActionID
		m["payload"] = canonicalPayload(v.Payload)
	case PresentCompoundFlow:
		m["action_id"] = v.ActionID
		m["steps"] = v.Steps
		m["context"] = v.Context.Map()
		if v.EndBehavior != nil {
			end := map[string]any{"type": string(v.EndBehavior.Type)}
			if v.EndBehavior.Value != "" {
				end["value"] = v.EndBehavior.Value
			}
			m["end_behavior"] = end
		}
	case ShowError:
		m["code"] = v.Code
		m["message"] = v.Message
	}
	return m
}

func canonicalPayload(p Payload) map[string]any {
	fields := p.Fields
	if fields == nil {
		fields = map[string]string{}
	}
	m := map[string]any{
		"variant": string(p.Variant),
		"fields":  fields,
	}
	if p.CardID != "" {
		m["card_id"] = p.CardID
	}
	if p.Simulated {
		m["simulated"] = true
	}
	if p.Placeholder != nil {
		m["placeholder"] = canonicalPlaceholder(*p.Placeholder)
	}
	if p.View != nil {
		view := map[string]any{
			"name":    p.View.Name,
			"version": p.View.Version,
		}
		if len(p.View.Missing) > 0 {
			view["missing"] = p.View.Missing
		}
		m["view"] = view
	}
	return m
}

func canonicalPlaceholder(c ir.PlaceholderContent) map[string]any {
	m := map[string]any{
		"title":    c.Title,
		"subtitle": c.Subtitle,
		"body":     c.Body,
		"icon_ref": c.IconRef,
	}
	if len(c.ContextFields) > 0 {
		m["context_fields"] = c.ContextFields
	}
	return m
}
