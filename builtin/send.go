package builtin

import (
	"github.com/solcore/flowrt/dispatch"
	"github.com/solcore/flowrt/node"
	"github.com/solcore/flowrt/packet"
)

// sendFunc closes over inst so every built-in node type's handlers can
// call a short `send(port, pkt)` instead of threading inst through every
// callback signature.
func sendFunc(inst *node.Instance) func(portIdx int, pkt *packet.Packet) error {
	return func(portIdx int, pkt *packet.Packet) error {
		return dispatch.Send(inst, portIdx, pkt)
	}
}

// emitErrorf sends a packet on inst's implicit ERROR port. Failures here
// are deliberately swallowed: a node that cannot even report an error has
// nothing further to do.
func emitErrorf(inst *node.Instance, code int, format string, args ...any) {
	_ = dispatch.Send(inst, inst.Type.ErrorPortIndex(), packet.NewErrorf(code, format, args...))
}
