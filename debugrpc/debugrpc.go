// Package debugrpc implements the optional JSON-RPC introspection server
// mentioned in C12: a small HTTP bridge exposing the live trace stream and
// a snapshot of a running container's children, for external tooling that
// would rather poll/subscribe over the network than parse flowrun's own
// stdout.
package debugrpc

import (
	"context"
	"net/http"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"

	"github.com/solcore/flowrt/inspect"
)

// NodeSnapshot is one entry of the Nodes RPC's result.
type NodeSnapshot struct {
	ID    string `json:"id"`
	Depth int    `json:"depth"`
}

// Server exposes a Tracer's live trace lines and a caller-supplied node
// snapshot function over JSON-RPC 2.0 via HTTP.
type Server struct {
	tracer   *inspect.Tracer
	lines    chan string
	snapshot func() []NodeSnapshot
}

// NewServer builds a Server and attaches it to tracer's line stream.
// snapshot is called once per Nodes RPC request; a typical embedder closes
// over its root container. Close detaches the subscription.
func NewServer(tracer *inspect.Tracer, snapshot func() []NodeSnapshot) *Server {
	return &Server{tracer: tracer, lines: tracer.Subscribe(), snapshot: snapshot}
}

// Close detaches the Server from its Tracer.
func (s *Server) Close() {
	s.tracer.Unsubscribe(s.lines)
}

// Handler returns the http.Handler to mount (commonly at "/debugrpc").
func (s *Server) Handler() http.Handler {
	bridge := jhttp.NewBridge(handler.Map{
		"Nodes": handler.New(s.nodes),
		"Trace": handler.New(s.trace),
	}, &jhttp.BridgeOptions{
		Server: &jrpc2.ServerOptions{},
	})
	mux := http.NewServeMux()
	mux.Handle("/debugrpc", bridge)
	return mux
}

func (s *Server) nodes(_ context.Context) ([]NodeSnapshot, error) {
	return s.snapshot(), nil
}

// trace drains every line buffered on the Server's standing subscription
// since the previous call, without blocking, so a single RPC round-trip
// returns a best-effort window; a client that wants a live feed polls.
// Lines emitted while the buffer was full were dropped at emit time, never
// queued against the dispatch path.
func (s *Server) trace(_ context.Context) ([]string, error) {
	var lines []string
	for {
		select {
		case line := <-s.lines:
			lines = append(lines, line)
		default:
			return lines, nil
		}
	}
}
