package inspect

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/solcore/flowrt/options"
	"github.com/solcore/flowrt/packet"
	"github.com/solcore/flowrt/port"
	"github.com/solcore/flowrt/syncx"
)

// Tracer is the built-in Hooks implementation that renders the canonical
// "DEBUG:<sec>.<nsec10>:<event>:<depth-tildes> <payload>" trace format.
// Any embedder can Install(t.Hooks()); Tracer additionally lets any number
// of subscribers (a `flowrun trace` follower, a debugrpc client) attach
// via Subscribe without being able to slow down dispatch: delivery to
// subscribers is best-effort (TryEmit drops on a full buffer).
type Tracer struct {
	Out     io.Writer // if non-nil, every rendered line is also written here
	lines   *syncx.Broadcaster[string]
	nowFunc func() time.Time
}

// NewTracer builds a Tracer. out may be nil to disable direct writing
// (subscribers, if any, still receive every line).
func NewTracer(out io.Writer) *Tracer {
	return &Tracer{Out: out, lines: syncx.NewBroadcaster[string](), nowFunc: time.Now}
}

// Subscribe attaches a new live trace-line follower.
func (t *Tracer) Subscribe() chan string { return t.lines.Subscribe() }

// Unsubscribe detaches a follower previously returned by Subscribe.
func (t *Tracer) Unsubscribe(ch chan string) { t.lines.Unsubscribe(ch) }

// Hooks returns the Hooks value wired to this Tracer's emit methods, ready
// to pass to inspect.Install.
func (t *Tracer) Hooks() *Hooks {
	return &Hooks{
		DidOpenNode:        t.didOpenNode,
		WillCloseNode:      t.willCloseNode,
		DidConnectPort:     t.didConnectPort,
		WillDisconnectPort: t.willDisconnectPort,
		WillSendPacket:     t.willSendPacket,
		WillDeliverPacket:  t.willDeliverPacket,
	}
}

func (t *Tracer) emit(depth int, event, payload string) {
	now := t.nowFunc()
	line := fmt.Sprintf("DEBUG:%d.%010d:%s:%s %s\n",
		now.Unix(), now.Nanosecond(), event, strings.Repeat("~", depth), payload)
	if t.Out != nil {
		_, _ = io.WriteString(t.Out, line)
	}
	t.lines.TryEmit(line)
}

func (t *Tracer) didOpenNode(n NodeHandle, _ *options.Values) {
	t.emit(n.Depth(), "+node", n.DisplayID())
}

func (t *Tracer) willCloseNode(n NodeHandle) {
	t.emit(n.Depth(), "-node", n.DisplayID())
}

func (t *Tracer) didConnectPort(src NodeHandle, srcPort port.Type, outConnID int, dst NodeHandle, dstPort port.Type, inConnID int) {
	t.emit(src.Depth(), "+conn", fmt.Sprintf("%s %s(%s) %d->%d %s(%s) %s",
		src.DisplayID(), srcPort.Name, srcPort.PacketType, outConnID, inConnID, dstPort.Name, dstPort.PacketType, dst.DisplayID()))
}

func (t *Tracer) willDisconnectPort(src NodeHandle, srcPort port.Type, outConnID int, dst NodeHandle, dstPort port.Type, inConnID int) {
	t.emit(src.Depth(), "-conn", fmt.Sprintf("%s %s(%s) %d->%d %s(%s) %s",
		src.DisplayID(), srcPort.Name, srcPort.PacketType, outConnID, inConnID, dstPort.Name, dstPort.PacketType, dst.DisplayID()))
}

func (t *Tracer) willSendPacket(src NodeHandle, p port.Type, pkt *packet.Packet) {
	t.emit(src.Depth(), ">send", fmt.Sprintf("%s %s(%s) -> %s", src.DisplayID(), p.Name, p.PacketType, pkt.Render()))
}

func (t *Tracer) willDeliverPacket(dst NodeHandle, p port.Type, connID int, pkt *packet.Packet) {
	t.emit(dst.Depth(), "<recv", fmt.Sprintf("%s ->%d %s(%s) %s", pkt.Render(), connID, p.Name, p.PacketType, dst.DisplayID()))
}
