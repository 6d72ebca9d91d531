// Package presenter connects the login and favorite protocols to whatever
// displays their outcome.
package presenter

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/punchamoorthee/favoritemovies/internal/domain"
)

// Presenter receives the final state produced by the protocols.
type Presenter interface {
	ShowMessage(text string)
	SetControlVisible(control domain.Control, visible bool)
	NavigateToAuthenticatedScreen()
}

// ShowFavorited sets both detail view controls for the given membership.
func ShowFavorited(p Presenter, favorited bool) {
	p.SetControlVisible(domain.ControlFavorite, !favorited)
	p.SetControlVisible(domain.ControlUnfavorite, favorited)
}

// Loop runs presenter effects one at a time on a single goroutine.
type Loop struct {
	tasks chan func()
	done  chan struct{}
}

func NewLoop(buffer int) *Loop {
	return &Loop{tasks: make(chan func(), buffer), done: make(chan struct{})}
}

// Run executes posted effects until ctx is cancelled, then drains what is
// already queued.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case fn := <-l.tasks:
			fn()
		case <-ctx.Done():
			for {
				select {
				case fn := <-l.tasks:
					fn()
				default:
					return
				}
			}
		}
	}
}

// Post queues fn. It blocks while the queue is full. Once Run has returned,
// fn is dropped.
func (l *Loop) Post(fn func()) {
	select {
	case l.tasks <- fn:
	case <-l.done:
	}
}

// Flush waits until every effect posted before the call has run, or until
// Run has returned.
func (l *Loop) Flush() {
	ran := make(chan struct{})
	l.Post(func() { close(ran) })
	select {
	case <-ran:
	case <-l.done:
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} { return l.done }

// On returns a Presenter that forwards every call to target through l.
func On(l *Loop, target Presenter) Presenter {
	return &looped{loop: l, target: target}
}

type looped struct {
	loop   *Loop
	target Presenter
}

func (p *looped) ShowMessage(text string) {
	p.loop.Post(func() { p.target.ShowMessage(text) })
}

func (p *looped) SetControlVisible(control domain.Control, visible bool) {
	p.loop.Post(func() { p.target.SetControlVisible(control, visible) })
}

func (p *looped) NavigateToAuthenticatedScreen() {
	p.loop.Post(p.target.NavigateToAuthenticatedScreen)
}

// Guard drops effects aimed at a view that is no longer displayed.
type Guard struct {
	target Presenter
	active atomic.Bool
}

// NewGuard returns an active guard in front of target.
func NewGuard(target Presenter) *Guard {
	g := &Guard{target: target}
	g.active.Store(true)
	return g
}

// Deactivate makes every later effect a no-op.
func (g *Guard) Deactivate() { g.active.Store(false) }

func (g *Guard) Active() bool { return g.active.Load() }

func (g *Guard) ShowMessage(text string) {
	if g.Active() {
		g.target.ShowMessage(text)
	}
}

func (g *Guard) SetControlVisible(control domain.Control, visible bool) {
	if g.Active() {
		g.target.SetControlVisible(control, visible)
	}
}

func (g *Guard) NavigateToAuthenticatedScreen() {
	if g.Active() {
		g.target.NavigateToAuthenticatedScreen()
	}
}

// Recorder keeps the latest state it was given. The status message is
// overwritten, never accumulated.
type Recorder struct {
	mu        sync.Mutex
	message   string
	controls  map[domain.Control]bool
	navigated bool
}

func NewRecorder() *Recorder {
	return &Recorder{controls: make(map[domain.Control]bool)}
}

func (r *Recorder) ShowMessage(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.message = text
}

func (r *Recorder) SetControlVisible(control domain.Control, visible bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.controls[control] = visible
}

func (r *Recorder) NavigateToAuthenticatedScreen() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.navigated = true
}

func (r *Recorder) Message() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.message
}

// Controls returns a copy of the visibility of every control set so far.
func (r *Recorder) Controls() map[string]bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]bool, len(r.controls))
	for c, v := range r.controls {
		out[string(c)] = v
	}
	return out
}

func (r *Recorder) Navigated() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.navigated
}

// Terminal prints effects as lines of text.
type Terminal struct {
	w io.Writer
}

func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

func (t *Terminal) ShowMessage(text string) {
	if text != "" {
		fmt.Fprintln(t.w, text)
	}
}

func (t *Terminal) SetControlVisible(control domain.Control, visible bool) {
	state := "hidden"
	if visible {
		state = "visible"
	}
	fmt.Fprintf(t.w, "[%s] %s\n", control, state)
}

func (t *Terminal) NavigateToAuthenticatedScreen() {
	fmt.Fprintln(t.w, "-> movies")
}
