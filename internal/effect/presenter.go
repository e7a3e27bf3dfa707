package effect

import (
	"sync"
	"time"
)

// DefaultErrorDismiss is how long a transient error stays visible.
const DefaultErrorDismiss = 3 * time.Second

// Timer is the part of *time.Timer the Presenter uses.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d.
type AfterFunc func(d time.Duration, f func()) Timer

func stdAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Presenter is a Sink that keeps the currently shown effect. A newer effect
// always replaces the older one. Errors show in a banner that clears itself
// after the dismiss interval and never replaces the current effect.
type Presenter struct {
	mu           sync.Mutex
	next         Sink
	current      Effect
	banner       string
	bannerSeq    uint64
	bannerTimer  Timer
	dismissAfter time.Duration
	afterFunc    AfterFunc
}

// PresenterOption configures a Presenter.
type PresenterOption func(*Presenter)

// WithDismissAfter overrides the banner dismiss interval.
func WithDismissAfter(d time.Duration) PresenterOption {
	return func(p *Presenter) {
		p.dismissAfter = d
	}
}

// WithAfterFunc replaces the timer used for banner dismissal.
func WithAfterFunc(f AfterFunc) PresenterOption {
	return func(p *Presenter) {
		p.afterFunc = f
	}
}

// WithNext forwards every effect to another sink after recording it.
func WithNext(s Sink) PresenterOption {
	return func(p *Presenter) {
		p.next = s
	}
}

// NewPresenter creates a Presenter.
func NewPresenter(opts ...PresenterOption) *Presenter {
	p := &Presenter{
		dismissAfter: DefaultErrorDismiss,
		afterFunc:    stdAfterFunc,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Presenter) show(e Effect) {
	p.mu.Lock()
	p.current = e
	p.mu.Unlock()
}

// PresentNavigation implements Sink.
func (p *Presenter) PresentNavigation(url string) {
	p.show(Navigate{URL: url})
	if p.next != nil {
		p.next.PresentNavigation(url)
	}
}

// PresentUI implements Sink.
func (p *Presenter) PresentUI(payload Payload) {
	p.show(PresentUI{Payload: payload})
	if p.next != nil {
		p.next.PresentUI(payload)
	}
}

// PresentPreview implements PreviewSink. The preview stays the current
// effect, distinct from a terminal PresentUI, until the confirmed follow-up
// replaces it.
func (p *Presenter) PresentPreview(pv PresentPreview) {
	p.show(pv)
	if p.next != nil {
		presentPreview(p.next, pv)
	}
}

// PresentCompoundFlow implements Sink.
func (p *Presenter) PresentCompoundFlow(f PresentCompoundFlow) {
	p.show(f)
	if p.next != nil {
		p.next.PresentCompoundFlow(f)
	}
}

// ShowTransientError implements Sink.
func (p *Presenter) ShowTransientError(message string) {
	p.mu.Lock()
	p.bannerSeq++
	seq := p.bannerSeq
	p.banner = message
	if p.bannerTimer != nil {
		p.bannerTimer.Stop()
	}
	p.bannerTimer = p.afterFunc(p.dismissAfter, func() { p.dismiss(seq) })
	p.mu.Unlock()

	if p.next != nil {
		p.next.ShowTransientError(message)
	}
}

// dismiss clears the banner only if no newer error replaced it.
func (p *Presenter) dismiss(seq uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bannerSeq == seq {
		p.banner = ""
		p.bannerTimer = nil
	}
}

// Current returns the effect currently shown, or nil.
func (p *Presenter) Current() Effect {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Banner returns the visible error message, if any.
func (p *Presenter) Banner() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.banner, p.banner != ""
}
