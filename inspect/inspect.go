// Package inspect implements the inspector hook set (C8): a process-wide,
// optional observer invoked at node open/close, port connect/disconnect,
// and packet send/deliver, plus a built-in implementation that renders
// the canonical textual trace format used in debug logs and golden tests.
package inspect

import (
	"github.com/solcore/flowrt/options"
	"github.com/solcore/flowrt/packet"
	"github.com/solcore/flowrt/port"
)

// NodeHandle is the minimal view of a node instance an inspector hook
// needs: its display id and its depth (ancestor container count), used to
// render the tilde-prefix of the textual trace format. Kept narrow so
// this package does not need to import node or container.
type NodeHandle interface {
	DisplayID() string
	Depth() int
}

// Hooks is the process-wide inspector singleton: six optional callbacks,
// each skipped with a single nil check when absent, so there is no
// indirect-call or allocation cost when no inspector is installed. Per
// §4.7/§9, Hooks is set once before the first Send call and never
// reassigned afterward — no concurrency semantics beyond that single
// publish is promised or required.
type Hooks struct {
	DidOpenNode        func(n NodeHandle, opts *options.Values)
	WillCloseNode      func(n NodeHandle)
	DidConnectPort     func(src NodeHandle, srcPort port.Type, outConnID int, dst NodeHandle, dstPort port.Type, inConnID int)
	WillDisconnectPort func(src NodeHandle, srcPort port.Type, outConnID int, dst NodeHandle, dstPort port.Type, inConnID int)
	WillSendPacket     func(src NodeHandle, p port.Type, pkt *packet.Packet)
	WillDeliverPacket  func(dst NodeHandle, p port.Type, connID int, pkt *packet.Packet)
}

var active *Hooks

// Install publishes h as the process-wide inspector. Must be called
// before the first Send of the process's lifetime; calling it again
// replaces the singleton, which is only safe to do before any dispatch
// has started (see the package doc and §9's open question).
func Install(h *Hooks) { active = h }

// Current returns the installed Hooks, or nil if none is installed. Call
// sites treat a nil return (or a nil field on a non-nil Hooks) as "do
// nothing" — the hot path is exactly one nil check.
func Current() *Hooks { return active }

// Uninstall clears the singleton, primarily for test isolation between
// cases that each install their own Tracer.
func Uninstall() { active = nil }
