// Package port implements the port type abstraction (C3): direction,
// accepted packet type, and the connect/disconnect/process callbacks a
// node type declares per port.
package port

import (
	"github.com/solcore/flowrt/packet"
	"github.com/solcore/flowrt/pkttype"
)

// Direction distinguishes input from output ports.
type Direction int

const (
	In Direction = iota
	Out
)

func (d Direction) String() string {
	if d == In {
		return "IN"
	}
	return "OUT"
}

// ProcessFunc is invoked on an input port when a packet is delivered to it.
// priv is the destination node instance's private storage (whatever its
// Open returned); portIdx is the declared port index; connID is the dense,
// 0-based incoming conn-id identifying which edge delivered the packet;
// pkt is borrowed for the duration of the call.
type ProcessFunc func(priv any, portIdx int, connID int, pkt *packet.Packet) error

// ConnectFunc/DisconnectFunc are optional per-port callbacks invoked around
// connection bookkeeping. A ConnectFunc failure aborts the connect
// operation and rolls back state as though it had never been attempted.
type ConnectFunc func(priv any, connID int) error
type DisconnectFunc func(priv any, connID int) error

// Type declares one port of a node type.
type Type struct {
	Name       string
	Dir        Direction
	PacketType *pkttype.Type
	Process    ProcessFunc    // required for In ports, ignored for Out
	Connect    ConnectFunc    // optional
	Disconnect DisconnectFunc // optional
}

// ERRORPortName is the reserved name of the implicit error output port
// every node carries in addition to its declared output ports.
const ERRORPortName = "ERROR"

// ErrorPort builds the implicit ERROR output port type shared by every
// node instance.
func ErrorPort() Type {
	return Type{Name: ERRORPortName, Dir: Out, PacketType: pkttype.Error}
}
