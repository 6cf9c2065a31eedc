package inspect

import (
	"bytes"
	"testing"
	"time"

	"github.com/solcore/flowrt/packet"
	"github.com/solcore/flowrt/pkttype"
	"github.com/solcore/flowrt/port"
)

type fakeHandle struct {
	id    string
	depth int
}

func (f fakeHandle) DisplayID() string { return f.id }
func (f fakeHandle) Depth() int        { return f.depth }

func pinnedTracer(out *bytes.Buffer) *Tracer {
	t := NewTracer(out)
	t.nowFunc = func() time.Time { return time.Unix(12, 345).UTC() }
	return t
}

func TestTracerLineFormat(t *testing.T) {
	var buf bytes.Buffer
	tr := pinnedTracer(&buf)

	outPort := port.Type{Name: "OUT", Dir: port.Out, PacketType: pkttype.IRange}
	inPort := port.Type{Name: "IN", Dir: port.In, PacketType: pkttype.IRange}
	src := fakeHandle{id: "src", depth: 0}
	dst := fakeHandle{id: "sink", depth: 1}

	tr.didOpenNode(src, nil)
	tr.didConnectPort(src, outPort, 0, dst, inPort, 0)
	pkt := packet.NewIRange(packet.IRangeValue{Val: 7, Min: 0, Max: 100, Step: 1})
	tr.willSendPacket(src, outPort, pkt)
	tr.willDeliverPacket(dst, inPort, 0, pkt)
	tr.willCloseNode(dst)

	want := "DEBUG:12.0000000345:+node: src\n" +
		"DEBUG:12.0000000345:+conn: src OUT(IRANGE) 0->0 IN(IRANGE) sink\n" +
		"DEBUG:12.0000000345:>send: src OUT(IRANGE) -> <val:7|min:0|max:100|step:1>\n" +
		"DEBUG:12.0000000345:<recv:~ <val:7|min:0|max:100|step:1> ->0 IN(IRANGE) sink\n" +
		"DEBUG:12.0000000345:-node:~ sink\n"
	if got := buf.String(); got != want {
		t.Fatalf("trace mismatch:\ngot:\n%swant:\n%s", got, want)
	}
}

func TestTracerSubscribersDoNotBlockEmit(t *testing.T) {
	var buf bytes.Buffer
	tr := pinnedTracer(&buf)

	ch := tr.Subscribe()
	defer tr.Unsubscribe(ch)

	// fill the subscriber's buffer well past capacity; emit must not stall
	for i := 0; i < 1000; i++ {
		tr.didOpenNode(fakeHandle{id: "n", depth: 0}, nil)
	}
	if len(ch) == 0 {
		t.Fatal("expected the subscriber to have received at least one line")
	}
}
