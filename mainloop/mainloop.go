// Package mainloop implements the cooperative driver the flow runtime
// executes under: one goroutine calls Run and becomes the mainloop
// thread, and every timer tick, subprocess completion, and external
// event reaches the graph as a callback posted onto that thread. Nodes
// never call dispatch from a goroutine of their own; they hand the loop
// a closure instead, which is what keeps the single-threaded dispatch
// model honest while still using ordinary Go timers and readers
// underneath.
package mainloop

import (
	"sync"
	"time"
)

// Loop is a run-to-completion callback queue. Post is safe from any
// goroutine; the callbacks themselves execute one at a time on the
// goroutine that called Run.
type Loop struct {
	work     chan func()
	quit     chan struct{}
	stopOnce sync.Once
}

// New builds a Loop. The work queue is buffered so producers (ticker
// pumps, subprocess readers) rarely stall even when a callback runs
// long.
func New() *Loop {
	return &Loop{work: make(chan func(), 256), quit: make(chan struct{})}
}

// Run executes posted callbacks on the calling goroutine until Stop,
// then drains whatever was already queued and returns. The calling
// goroutine is the mainloop thread: every packet send and process in
// the process happens inside one of these callbacks (or before Run, on
// the same goroutine, while the graph is being constructed).
func (l *Loop) Run() {
	for {
		select {
		case <-l.quit:
			for {
				select {
				case fn := <-l.work:
					fn()
				default:
					return
				}
			}
		case fn := <-l.work:
			fn()
		}
	}
}

// Post enqueues fn for the loop thread. Posts racing a Stop may be
// dropped; by then the graph is tearing down and has no use for them.
func (l *Loop) Post(fn func()) {
	select {
	case l.work <- fn:
	case <-l.quit:
	}
}

// Stop makes Run return. Idempotent, safe from any goroutine.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.quit) })
}

// Ticker arranges for fn to run on the loop thread every interval until
// the returned cancel function is called (or the loop stops). The
// underlying time.Ticker fires on the Go runtime's own timer goroutine,
// which only ever posts; fn itself always executes on the loop thread.
func (l *Loop) Ticker(interval time.Duration, fn func()) (cancel func()) {
	t := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-l.quit:
				return
			case <-t.C:
				l.Post(fn)
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

// active is the process-wide loop nodes register against, installed by
// the embedder (cmd/flowrun) before the graph is constructed — the same
// set-once-before-running discipline inspect.Install follows.
var active *Loop

// Install publishes l as the process-wide driver. Call before building
// the graph; node Open hooks that need timers or completion callbacks
// resolve it through Current.
func Install(l *Loop) { active = l }

// Current returns the installed Loop, or nil if none is installed.
func Current() *Loop { return active }
