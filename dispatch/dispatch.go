// Package dispatch implements the send/deliver protocol (C7): the only
// legal way a node produces output. Send validates the port and packet
// type, fires the WillSendPacket inspector hook, then delegates actual
// routing to the source node's parent container.
package dispatch

import (
	"github.com/sirupsen/logrus"

	"github.com/solcore/flowrt/flowerr"
	"github.com/solcore/flowrt/inspect"
	"github.com/solcore/flowrt/node"
	"github.com/solcore/flowrt/packet"
	"github.com/solcore/flowrt/port"
)

// Send takes ownership of pkt and routes it from src's portIdx output
// port. Returns nil once every reachable destination has been enqueued
// (synchronously delivered, per §5), or a flowerr on invalid port or type
// mismatch — in which case pkt is not delivered anywhere and remains
// owned by the caller, who must Release it. When a destination's process
// callback fails, its error (the first one, if several fail) is returned
// after every delivery has run; pkt has then already been consumed.
func Send(src *node.Instance, portIdx int, pkt *packet.Packet) error {
	p, err := resolveOutPort(src, portIdx)
	if err != nil {
		// a bad port index is a programming error in the sending node, not
		// a routing condition; make it visible even when the caller drops err
		logrus.Warn(err)
		return err
	}
	if !p.PacketType.Accepts(pkt.Type) {
		err := flowerr.New(flowerr.TypeMismatch, "port %s.%s accepts %s, got %s", src.DisplayID(), p.Name, p.PacketType, pkt.Type)
		logrus.Warn(err)
		return err
	}

	if h := inspect.Current(); h != nil && h.WillSendPacket != nil {
		h.WillSendPacket(src, p, pkt)
	}

	if src.Parent == nil {
		// Root node with nowhere to route: matches the "unconnected ERROR
		// port is silently dropped" rule, generalised to any port with no
		// parent container to deliver through.
		pkt.Release()
		return nil
	}
	return src.Parent.Send(src.ParentSlot, portIdx, pkt)
}

// resolveOutPort looks up the port.Type for portIdx on src's type,
// including the implicit ERROR port at index len(PortsOut).
func resolveOutPort(src *node.Instance, portIdx int) (port.Type, error) {
	if portIdx == src.Type.ErrorPortIndex() {
		return port.ErrorPort(), nil
	}
	p, ok := src.Type.PortOut(portIdx)
	if !ok {
		return port.Type{}, flowerr.New(flowerr.InvalidPort, "node %s has no output port %d", src.DisplayID(), portIdx)
	}
	return p, nil
}
