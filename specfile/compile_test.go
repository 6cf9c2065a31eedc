package specfile

import (
	"strings"
	"testing"

	"github.com/solcore/flowrt/builtin"
	"github.com/solcore/flowrt/inspect"
	"github.com/solcore/flowrt/node"
	"github.com/solcore/flowrt/packet"
	"github.com/solcore/flowrt/port"
)

const blinkDemo = `
name: blink-demo
nodes:
  - name: src
    type: int-src
    options: { value: "7" }
  - name: sink
    type: int-sink
connections:
  - { from: src.OUT, to: sink.IN }
`

func TestLoadAndCompile(t *testing.T) {
	doc, err := Load(strings.NewReader(blinkDemo))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Name != "blink-demo" || len(doc.Nodes) != 2 || len(doc.Connections) != 1 {
		t.Fatalf("unexpected document shape: %+v", doc)
	}

	ct, err := Compile(doc, builtin.Registry)
	if err != nil {
		t.Fatal(err)
	}

	// Not t.Parallel(): this case installs the process-wide inspector
	// singleton, which would race against any other test doing the same.
	var delivered []*packet.Packet
	inspect.Install(&inspect.Hooks{
		WillDeliverPacket: func(_ inspect.NodeHandle, _ port.Type, _ int, pkt *packet.Packet) {
			delivered = append(delivered, pkt)
		},
	})
	defer inspect.Uninstall()

	root, err := node.New(ct, "", 0, 0, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer root.Close(nil)

	// int-src emits its configured value=7 once the container activates
	// it (every connection already wired); int-sink's IN port is the
	// connection's only destination, so exactly one delivery is expected.
	if len(delivered) != 1 {
		t.Fatalf("expected int-sink to receive exactly 1 packet from int-src, got %d", len(delivered))
	}
	v, ok := delivered[0].IRange()
	if !ok || v.Val != 7 {
		t.Fatalf("expected IRANGE val 7 delivered to int-sink, got %+v (ok=%v)", v, ok)
	}
}

func TestCompileUnknownNodeType(t *testing.T) {
	t.Parallel()

	doc, err := Load(strings.NewReader(`
name: bad
nodes:
  - name: a
    type: does-not-exist
`))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Compile(doc, builtin.Registry); err == nil {
		t.Fatal("expected Compile to fail on an unregistered node type")
	}
}

func TestCompileUnknownPort(t *testing.T) {
	t.Parallel()

	doc, err := Load(strings.NewReader(`
name: bad
nodes:
  - name: src
    type: int-src
  - name: sink
    type: int-sink
connections:
  - { from: src.NOPE, to: sink.IN }
`))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Compile(doc, builtin.Registry); err == nil {
		t.Fatal("expected Compile to fail on an unknown port name")
	}
}
