package container

import (
	"strings"
	"testing"

	"github.com/solcore/flowrt/dispatch"
	"github.com/solcore/flowrt/flowerr"
	"github.com/solcore/flowrt/inspect"
	"github.com/solcore/flowrt/node"
	"github.com/solcore/flowrt/options"
	"github.com/solcore/flowrt/packet"
	"github.com/solcore/flowrt/pkttype"
	"github.com/solcore/flowrt/port"
)

// recordingState is the private storage for a test sink node: every
// packet it receives is appended, in delivery order, to received.
type recordingState struct {
	received []*packet.Packet
}

func sinkType(name string, pt *pkttype.Type) *node.Type {
	return &node.Type{
		Name: name,
		PortsIn: []port.Type{
			{Name: "IN", Dir: port.In, PacketType: pt, Process: func(priv any, _ int, _ int, pkt *packet.Packet) error {
				s := priv.(*recordingState)
				s.received = append(s.received, pkt.Clone())
				return nil
			}},
		},
		Open: func(_ *node.Instance, _ *options.Values) (any, error) { return &recordingState{}, nil },
	}
}

// emitOnceType builds a source node type that sends one IRANGE packet
// with the given value on OUT as soon as the container activates it
// (post-connect), matching Scenario A/B's int-src.
func emitOnceType(name string, value int32) *node.Type {
	return &node.Type{
		Name: name,
		PortsOut: []port.Type{
			{Name: "OUT", Dir: port.Out, PacketType: pkttype.IRange},
		},
		Open: func(_ *node.Instance, _ *options.Values) (any, error) { return nil, nil },
		Activate: func(inst *node.Instance, _ any) error {
			return dispatch.Send(inst, 0, packet.NewIRange(packet.IRangeValue{Val: value, Min: 0, Max: 100, Step: 1}))
		},
	}
}

func buildSpec(src, dst *node.Type, extraConns ...ConnSpec) *Spec {
	conns := append([]ConnSpec{{SrcIdx: 0, SrcPort: 0, DstIdx: 1, DstPort: 0}}, extraConns...)
	return &Spec{
		Children: []ChildSpec{
			{Name: "src", Type: src},
			{Name: "dst", Type: dst},
		},
		Connections: conns,
	}
}

func TestSingleEdgeDelivery(t *testing.T) {
	src := emitOnceType("int-src", 7)
	dst := sinkType("int-sink", pkttype.IRange)
	spec := buildSpec(src, dst)

	ct, err := NewType("root", "test", spec)
	if err != nil {
		t.Fatal(err)
	}
	root, err := node.New(ct, "", 0, 0, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer root.Close(nil)

	c := root.Private.(*Container)
	recv := c.children[1].Private.(*recordingState)
	if len(recv.received) != 1 {
		t.Fatalf("expected 1 delivered packet, got %d", len(recv.received))
	}
	v, ok := recv.received[0].IRange()
	if !ok || v.Val != 7 {
		t.Fatalf("expected IRANGE val 7, got %+v (ok=%v)", v, ok)
	}
}

func TestFanOutOfTwo(t *testing.T) {
	src := emitOnceType("int-src", 3)
	dst1 := sinkType("sink1", pkttype.IRange)
	dst2 := sinkType("sink2", pkttype.IRange)

	spec := &Spec{
		Children: []ChildSpec{
			{Name: "src", Type: src},
			{Name: "a", Type: dst1},
			{Name: "b", Type: dst2},
		},
		Connections: []ConnSpec{
			{SrcIdx: 0, SrcPort: 0, DstIdx: 1, DstPort: 0},
			{SrcIdx: 0, SrcPort: 0, DstIdx: 2, DstPort: 0},
		},
	}

	var delivered int
	inspect.Install(&inspect.Hooks{
		WillDeliverPacket: func(_ inspect.NodeHandle, _ port.Type, _ int, _ *packet.Packet) { delivered++ },
	})
	defer inspect.Uninstall()

	ct, err := NewType("root", "test", spec)
	if err != nil {
		t.Fatal(err)
	}
	root, err := node.New(ct, "", 0, 0, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer root.Close(nil)

	if delivered != 2 {
		t.Fatalf("expected 2 WillDeliverPacket calls, got %d", delivered)
	}
	c := root.Private.(*Container)
	a := c.children[1].Private.(*recordingState)
	b := c.children[2].Private.(*recordingState)
	if len(a.received) != 1 || len(b.received) != 1 {
		t.Fatalf("expected both fan-out destinations to receive exactly one packet, got a=%d b=%d", len(a.received), len(b.received))
	}
}

func TestComposedPacketDelivery(t *testing.T) {
	ct2, err := pkttype.Compose("key-value", []pkttype.Member{
		{Name: "KEY", Type: "string"},
		{Name: "VALUE", Type: "int"},
	})
	if err != nil {
		t.Fatal(err)
	}

	src := &node.Type{
		Name:     "kv-src",
		PortsOut: []port.Type{{Name: "OUT", Dir: port.Out, PacketType: ct2}},
		Open:     func(_ *node.Instance, _ *options.Values) (any, error) { return nil, nil },
		Activate: func(inst *node.Instance, _ any) error {
			kv, err := packet.NewComposed(ct2, []*packet.Packet{
				packet.NewString("k"),
				packet.NewIRange(packet.IRangeValue{Val: 42, Min: 0, Max: 100, Step: 1}),
			})
			if err != nil {
				return err
			}
			return dispatch.Send(inst, 0, kv)
		},
	}
	dst := sinkType("kv-sink", ct2)
	spec := buildSpec(src, dst)

	compiled, err := NewType("root", "test", spec)
	if err != nil {
		t.Fatal(err)
	}
	root, err := node.New(compiled, "", 0, 0, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer root.Close(nil)

	c := root.Private.(*Container)
	recv := c.children[1].Private.(*recordingState)
	if len(recv.received) != 1 {
		t.Fatalf("expected 1 delivered composed packet, got %d", len(recv.received))
	}
	rendered := recv.received[0].Render()
	if !strings.Contains(rendered, `<"k">`) || !strings.Contains(rendered, "val:42") {
		t.Fatalf("unexpected composed packet rendering: %s", rendered)
	}
}

// failingOpenType's Open fails on every call; used as the second child to
// exercise Scenario D (open failure unwinds everything built so far).
func failingOpenType() *node.Type {
	return &node.Type{
		Name: "always-fails",
		Open: func(_ *node.Instance, _ *options.Values) (any, error) {
			return nil, flowerr.New(flowerr.OutOfMemory, "simulated allocation failure")
		},
	}
}

func TestOpenFailureRollsBack(t *testing.T) {
	var opened, closed []string
	inspect.Install(&inspect.Hooks{
		DidOpenNode:   func(n inspect.NodeHandle, _ *options.Values) { opened = append(opened, n.DisplayID()) },
		WillCloseNode: func(n inspect.NodeHandle) { closed = append(closed, n.DisplayID()) },
		DidConnectPort: func(_ inspect.NodeHandle, _ port.Type, _ int, _ inspect.NodeHandle, _ port.Type, _ int) {
			t.Fatal("no connection should ever be made when a later child fails to open")
		},
	})
	defer inspect.Uninstall()

	ok := sinkType("child0", pkttype.Any)
	bad := failingOpenType()
	spec := &Spec{
		Children: []ChildSpec{
			{Name: "child0", Type: ok},
			{Name: "child1", Type: bad},
		},
	}

	ct, err := NewType("root", "test", spec)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := node.New(ct, "", 0, 0, nil, nil, nil); err == nil {
		t.Fatal("expected container open to fail")
	}
	if len(opened) != 2 {
		t.Fatalf("expected DidOpenNode for both children (child1's Open itself fails after the hook fires), got %v", opened)
	}
	if len(closed) != 1 || closed[0] != opened[0] {
		t.Fatalf("expected only the successfully-opened child0 to be closed during rollback, got %v", closed)
	}
}

func TestRejectsUnsortedSpec(t *testing.T) {
	src := emitOnceType("int-src", 1)
	dst := sinkType("int-sink", pkttype.IRange)
	spec := &Spec{
		Children: []ChildSpec{
			{Name: "a", Type: src},
			{Name: "b", Type: dst},
			{Name: "c", Type: dst},
		},
		Connections: []ConnSpec{
			{SrcIdx: 0, SrcPort: 0, DstIdx: 2, DstPort: 0},
			{SrcIdx: 0, SrcPort: 0, DstIdx: 1, DstPort: 0},
		},
	}
	if _, err := NewType("root", "test", spec); !flowerr.Is(err, flowerr.InvalidPort) {
		t.Fatalf("expected InvalidPort for an unsorted connection table, got %v", err)
	}

	spec.Connections = []ConnSpec{
		{SrcIdx: 0, SrcPort: 0, DstIdx: 1, DstPort: 0},
		{SrcIdx: 0, SrcPort: 0, DstIdx: 1, DstPort: 0},
	}
	if _, err := NewType("root", "test", spec); !flowerr.Is(err, flowerr.AlreadyConnected) {
		t.Fatalf("expected AlreadyConnected for a duplicate edge, got %v", err)
	}
}

func TestNestedContainerReExport(t *testing.T) {
	inner := &Spec{
		Children: []ChildSpec{
			{Name: "x", Type: sinkType("x-sink", pkttype.IRange)},
		},
		ExportedIn: []ExportSpec{
			{Name: "IN", InnerIdx: 0, InnerPort: 0},
		},
	}
	innerType, err := NewType("inner", "test", inner)
	if err != nil {
		t.Fatal(err)
	}

	var deepest inspect.NodeHandle
	var deepestConnID = -1
	inspect.Install(&inspect.Hooks{
		WillDeliverPacket: func(dst inspect.NodeHandle, _ port.Type, connID int, _ *packet.Packet) {
			if deepest == nil || dst.Depth() > deepest.Depth() {
				deepest, deepestConnID = dst, connID
			}
		},
	})
	defer inspect.Uninstall()

	outer := &Spec{
		Children: []ChildSpec{
			{Name: "y", Type: emitOnceType("int-src", 9)},
			{Name: "a", Type: innerType},
		},
		Connections: []ConnSpec{
			{SrcIdx: 0, SrcPort: 0, DstIdx: 1, DstPort: 0},
		},
	}
	rootType, err := NewType("root", "test", outer)
	if err != nil {
		t.Fatal(err)
	}
	root, err := node.New(rootType, "", 0, 0, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer root.Close(nil)

	a := root.Private.(*Container).children[1].Private.(*Container)
	x := a.children[0].Private.(*recordingState)
	if len(x.received) != 1 {
		t.Fatalf("expected the inner child to receive 1 packet through the exported port, got %d", len(x.received))
	}
	v, ok := x.received[0].IRange()
	if !ok || v.Val != 9 {
		t.Fatalf("expected IRANGE val 9 at the inner child, got %+v (ok=%v)", v, ok)
	}
	if deepest == nil || deepest.Depth() != 2 {
		t.Fatalf("expected the deepest delivery two containers down, got %v", deepest)
	}
	if deepestConnID < 0 {
		t.Fatalf("expected a valid incoming conn-id at the inner child, got %d", deepestConnID)
	}
}

func TestConnectedErrorPortDelivers(t *testing.T) {
	errSrc := &node.Type{
		Name: "err-src",
		Open: func(_ *node.Instance, _ *options.Values) (any, error) { return nil, nil },
		Activate: func(inst *node.Instance, _ any) error {
			return dispatch.Send(inst, inst.Type.ErrorPortIndex(), packet.NewError(5, "boom"))
		},
	}
	spec := &Spec{
		Children: []ChildSpec{
			{Name: "solo", Type: errSrc},
			{Name: "sink", Type: sinkType("err-sink", pkttype.Error)},
		},
		Connections: []ConnSpec{
			{SrcIdx: 0, SrcPort: errSrc.ErrorPortIndex(), DstIdx: 1, DstPort: 0},
		},
	}

	ct, err := NewType("root", "test", spec)
	if err != nil {
		t.Fatal(err)
	}
	root, err := node.New(ct, "", 0, 0, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer root.Close(nil)

	recv := root.Private.(*Container).children[1].Private.(*recordingState)
	if len(recv.received) != 1 {
		t.Fatalf("expected 1 error packet, got %d", len(recv.received))
	}
	ev, ok := recv.received[0].Error()
	if !ok || ev.Code != 5 || ev.Message != "boom" {
		t.Fatalf("expected error (5, boom), got %+v (ok=%v)", ev, ok)
	}
}

func TestUnconnectedErrorPortIsSilentlyDropped(t *testing.T) {
	var delivered int
	inspect.Install(&inspect.Hooks{
		WillDeliverPacket: func(_ inspect.NodeHandle, _ port.Type, _ int, _ *packet.Packet) { delivered++ },
	})
	defer inspect.Uninstall()

	errSrc := &node.Type{
		Name: "err-src",
		Open: func(_ *node.Instance, _ *options.Values) (any, error) { return nil, nil },
		Activate: func(inst *node.Instance, _ any) error {
			return dispatch.Send(inst, inst.Type.ErrorPortIndex(), packet.NewError(5, "boom"))
		},
	}
	spec := &Spec{Children: []ChildSpec{{Name: "solo", Type: errSrc}}}

	ct, err := NewType("root", "test", spec)
	if err != nil {
		t.Fatal(err)
	}
	root, err := node.New(ct, "", 0, 0, nil, nil, nil)
	if err != nil {
		t.Fatalf("expected Ok from sending on an unconnected ERROR port, got %v", err)
	}
	defer root.Close(nil)

	if delivered != 0 {
		t.Fatalf("expected no WillDeliverPacket calls for an unconnected ERROR port, got %d", delivered)
	}
}
