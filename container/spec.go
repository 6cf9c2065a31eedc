// Package container implements the container / static-flow node type
// (C6): a node type that owns a fixed set of child nodes and a sorted
// connection table, dispatches packets between them, and may export
// specific child ports as its own.
package container

import (
	"github.com/solcore/flowrt/flowerr"
	"github.com/solcore/flowrt/node"
	"github.com/solcore/flowrt/options"
)

// ChildSpec describes one child of a container: the node type to
// instantiate, its instance name, and its textual option overrides.
type ChildSpec struct {
	Name    string
	Type    *node.Type
	Options []string // "name=value" entries, parsed against Type.Options
}

// ConnSpec is one entry of the container's connection table. SrcPort/
// DstPort may be node.Type.ErrorPortIndex() to address a child's implicit
// ERROR port.
type ConnSpec struct {
	SrcIdx, SrcPort int
	DstIdx, DstPort int
}

// ExportSpec maps one of the container's own ports to a specific child's
// port, so the container can act as a node with its own port surface.
type ExportSpec struct {
	Name      string
	InnerIdx  int
	InnerPort int
}

// ChildOptsSetFunc rewrites a child's resolved options at instance-
// creation time, e.g. to inject a parent-assigned identifier.
type ChildOptsSetFunc func(childIdx int, base *options.Values) (*options.Values, error)

// Spec is the static specification a container node type is built from.
// Connections must already be sorted lexicographically by (SrcIdx,
// SrcPort, DstIdx, DstPort); NewType rejects an unsorted spec rather than
// silently sorting it, so a hand-written spec with a bad sort is caught
// at type-construction time instead of producing subtly wrong dispatch.
// (The specfile loader always produces pre-sorted arrays itself.)
type Spec struct {
	Children     []ChildSpec
	Connections  []ConnSpec
	ExportedIn   []ExportSpec
	ExportedOut  []ExportSpec
	ChildOptsSet ChildOptsSetFunc
	Dispose      func()
}

func (s *Spec) validateSorted() error {
	for i := 1; i < len(s.Connections); i++ {
		a, b := s.Connections[i-1], s.Connections[i]
		ka, kb := connKey(a), connKey(b)
		if ka == kb {
			return flowerr.New(flowerr.AlreadyConnected, "duplicate connection at index %d: %+v", i, b)
		}
		if lessConnKey(kb, ka) {
			return flowerr.New(flowerr.InvalidPort, "connection spec is not sorted at index %d: %+v precedes %+v", i, a, b)
		}
	}
	return nil
}

func connKey(c ConnSpec) [4]int {
	return [4]int{c.SrcIdx, c.SrcPort, c.DstIdx, c.DstPort}
}

func lessConnKey(a, b [4]int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
