package effect

import "fmt"

// Sink performs effects. Implementations are called from a single
// presentation goroutine.
type Sink interface {
	PresentNavigation(url string)
	PresentUI(p Payload)
	PresentCompoundFlow(f PresentCompoundFlow)
	ShowTransientError(message string)
}

// PreviewSink is implemented by sinks that present previews distinctly from
// terminal UI. Sinks without it receive previews through PresentUI.
type PreviewSink interface {
	PresentPreview(p PresentPreview)
}

// Dispatch hands e to the matching Sink method.
func Dispatch(sink Sink, e Effect) error {
	switch v := e.(type) {
	case Navigate:
		sink.PresentNavigation(v.URL)
	case PresentUI:
		sink.PresentUI(v.Payload)
	case PresentPreview:
		presentPreview(sink, v)
	case PresentCompoundFlow:
		sink.PresentCompoundFlow(v)
	case ShowError:
		sink.ShowTransientError(v.Message)
	default:
		return fmt.Errorf("unknown effect type %T", e)
	}
	return nil
}

func presentPreview(sink Sink, p PresentPreview) {
	if ps, ok := sink.(PreviewSink); ok {
		ps.PresentPreview(p)
		return
	}
	sink.PresentUI(p.Payload)
}
