// Package node implements the node type and node instance abstractions
// (C4, C5): the descriptor for a class of node (private storage shape,
// options schema, ports, lifecycle hooks) and the bookkeeping for one
// running instance of that class.
package node

import (
	"sync"

	"github.com/google/uuid"

	"github.com/solcore/flowrt/flowerr"
	"github.com/solcore/flowrt/options"
	"github.com/solcore/flowrt/packet"
	"github.com/solcore/flowrt/port"
)

// FlagContainer marks a Type as a container: its Open is expected to
// populate the instance's Private with something implementing Sender
// (almost always *container.Container), and its port callbacks may be
// driven by the container package rather than node-authored code.
const FlagContainer uint16 = 1 << 0

// OpenFunc constructs a node instance's private storage from resolved
// options. The returned value becomes Instance.Private and is what every
// port callback and Close receives.
type OpenFunc func(inst *Instance, opts *options.Values) (any, error)

// CloseFunc tears down a node instance's private storage.
type CloseFunc func(inst *Instance, priv any) error

// Type describes a class of node: name, category, version, options
// schema, port arrays, and lifecycle hooks. DataSize/OptionsSize are
// carried only for the bit-exact external descriptor of §6 (debug
// dumps/introspection); Go node authors use Open's returned value for
// actual storage rather than a raw sized block.
type Type struct {
	Name        string
	Category    string
	Version     int
	DataSize    uint16
	OptionsSize uint16
	Options     options.Schema
	PortsIn     []port.Type
	PortsOut    []port.Type
	Flags       uint16

	InitType func() error // one-shot, guarded by initOnce
	Open     OpenFunc
	// Activate runs once per instance, after every connection in the
	// owning container has been wired (so a node whose first action is to
	// emit unprompted, like a const node's initial value, has somewhere
	// for that packet to go instead of being dropped as unconnected).
	// Optional; root instances with no parent container never have it
	// invoked automatically.
	Activate    func(inst *Instance, priv any) error
	Close       CloseFunc
	DisposeType func()

	initOnce sync.Once
	initErr  error
}

// IsContainer reports whether t is a container node type.
func (t *Type) IsContainer() bool { return t.Flags&FlagContainer != 0 }

// EnsureInit runs t.InitType at most once for the type's lifetime,
// matching the "guarded by a first-use flag" requirement; subsequent
// calls return the first call's result without re-running InitType.
func (t *Type) EnsureInit() error {
	if t.InitType == nil {
		return nil
	}
	t.initOnce.Do(func() { t.initErr = t.InitType() })
	return t.initErr
}

// PortIn/PortOut return the i'th declared port, or (zero, false) if i is
// out of range.
func (t *Type) PortIn(i int) (port.Type, bool) {
	if i < 0 || i >= len(t.PortsIn) {
		return port.Type{}, false
	}
	return t.PortsIn[i], true
}

func (t *Type) PortOut(i int) (port.Type, bool) {
	if i < 0 || i >= len(t.PortsOut) {
		return port.Type{}, false
	}
	return t.PortsOut[i], true
}

// ErrorPortIndex is the reserved index of the implicit ERROR output port:
// one past every declared output port.
func (t *Type) ErrorPortIndex() int { return len(t.PortsOut) }

// Sender is the capability a node instance's parent must provide: routing
// a packet sent by child at (parentSlot) on portIdx. Implemented by
// *container.Container; kept as a narrow interface here so this package
// does not need to import container (which itself imports node).
type Sender interface {
	Send(childSlot int, portIdx int, pkt *packet.Packet) error
}

// Instance is one running node: its type, a non-owning back-reference to
// its parent (nil iff this is the root), a stable display id, its
// private storage (whatever Open returned), and the slot its parent
// indexes it at.
type Instance struct {
	Type       *Type
	Parent     Sender
	ID         string
	Private    any
	ParentSlot int
	Level      int // ancestor-container count; 0 for the root
}

// Depth implements inspect.NodeHandle: the number of ancestor containers,
// used to render the tilde-prefix of the canonical trace format.
func (inst *Instance) Depth() int { return inst.Level }

// New constructs and opens one node instance. id may be empty, in which
// case a generated UUID is used as Instance.ID (Go has no stable object
// address to fall back on the way the original C runtime did; a UUID is
// the idiomatic stand-in for "something to show a human").
//
// The inspector's DidOpenNode hook (if any) fires before Open is called,
// matching the construction sequence of C5: allocate/identify, notify,
// construct, and unwind on failure.
func New(t *Type, id string, parentSlot, level int, parent Sender, opts *options.Values, didOpen func(inst *Instance, opts *options.Values)) (*Instance, error) {
	if err := t.EnsureInit(); err != nil {
		return nil, flowerr.New(flowerr.OutOfMemory, "init_type for %s: %v", t.Name, err)
	}
	if id == "" {
		id = uuid.NewString()
	}
	inst := &Instance{Type: t, Parent: parent, ID: id, ParentSlot: parentSlot, Level: level}

	if didOpen != nil {
		didOpen(inst, opts)
	}

	if t.Open == nil {
		return inst, nil
	}
	priv, err := t.Open(inst, opts)
	if err != nil {
		return nil, err
	}
	inst.Private = priv
	return inst, nil
}

// Close tears down inst, calling its type's Close hook if any. willClose
// (the inspector's WillCloseNode hook) is invoked first, matching the
// destruction order of C5.
func (inst *Instance) Close(willClose func(inst *Instance)) error {
	if willClose != nil {
		willClose(inst)
	}
	if inst.Type.Close == nil {
		return nil
	}
	return inst.Type.Close(inst, inst.Private)
}

// DisplayID returns the id used in debug traces: the explicit ID, or the
// node type's name if ID is somehow empty (defensive; New never leaves it
// empty).
func (inst *Instance) DisplayID() string {
	if inst.ID != "" {
		return inst.ID
	}
	return inst.Type.Name
}
