package specfile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/solcore/flowrt/container"
	"github.com/solcore/flowrt/flowerr"
	"github.com/solcore/flowrt/node"
)

// Compile resolves doc against registry (node type names -> node.Type) and
// builds the node.Type implementing it as a container, ready to
// node.New. The type is named doc.Name and always gets the category
// "specfile".
func Compile(doc *Document, registry *node.Registry) (*node.Type, error) {
	index := make(map[string]int, len(doc.Nodes))
	children := make([]container.ChildSpec, len(doc.Nodes))
	for i, nd := range doc.Nodes {
		if _, dup := index[nd.Name]; dup {
			return nil, flowerr.New(flowerr.AlreadyExists, "duplicate node name %q", nd.Name)
		}
		t, ok := registry.Lookup(nd.Type)
		if !ok {
			return nil, flowerr.New(flowerr.NotFound, "node %q: unknown type %q", nd.Name, nd.Type)
		}
		index[nd.Name] = i
		children[i] = container.ChildSpec{Name: nd.Name, Type: t, Options: optionEntries(nd.Options)}
	}

	conns := make([]container.ConnSpec, len(doc.Connections))
	for i, cd := range doc.Connections {
		srcIdx, srcPort, err := resolveEndpoint(cd.From, index, children, findPortOut)
		if err != nil {
			return nil, fmt.Errorf("connection %d: %w", i, err)
		}
		dstIdx, dstPort, err := resolveEndpoint(cd.To, index, children, findPortIn)
		if err != nil {
			return nil, fmt.Errorf("connection %d: %w", i, err)
		}
		conns[i] = container.ConnSpec{SrcIdx: srcIdx, SrcPort: srcPort, DstIdx: dstIdx, DstPort: dstPort}
	}
	sort.Slice(conns, func(a, b int) bool {
		return connLess(conns[a], conns[b])
	})

	exportedIn := make([]container.ExportSpec, len(doc.Exports.In))
	for i, e := range doc.Exports.In {
		idx, ok := index[e.Node]
		if !ok {
			return nil, flowerr.New(flowerr.NotFound, "export %q: unknown node %q", e.Name, e.Node)
		}
		portIdx, err := findPortIn(children[idx], e.Port)
		if err != nil {
			return nil, fmt.Errorf("export %q: %w", e.Name, err)
		}
		exportedIn[i] = container.ExportSpec{Name: e.Name, InnerIdx: idx, InnerPort: portIdx}
	}

	exportedOut := make([]container.ExportSpec, len(doc.Exports.Out))
	for i, e := range doc.Exports.Out {
		idx, ok := index[e.Node]
		if !ok {
			return nil, flowerr.New(flowerr.NotFound, "export %q: unknown node %q", e.Name, e.Node)
		}
		portIdx, err := findPortOut(children[idx], e.Port)
		if err != nil {
			return nil, fmt.Errorf("export %q: %w", e.Name, err)
		}
		exportedOut[i] = container.ExportSpec{Name: e.Name, InnerIdx: idx, InnerPort: portIdx}
	}

	spec := &container.Spec{
		Children:    children,
		Connections: conns,
		ExportedIn:  exportedIn,
		ExportedOut: exportedOut,
	}
	return container.NewType(doc.Name, "specfile", spec)
}

func optionEntries(m map[string]any) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, fmt.Sprintf("%s=%v", k, v))
	}
	sort.Strings(out) // deterministic order, for reproducible error messages
	return out
}

type portLookup func(cs container.ChildSpec, name string) (int, error)

func resolveEndpoint(ref string, index map[string]int, children []container.ChildSpec, lookup portLookup) (int, int, error) {
	nodeName, portName, ok := strings.Cut(ref, ".")
	if !ok {
		return 0, 0, flowerr.New(flowerr.InvalidPort, "malformed endpoint %q, want node.port", ref)
	}
	idx, ok := index[nodeName]
	if !ok {
		return 0, 0, flowerr.New(flowerr.NotFound, "unknown node %q", nodeName)
	}
	portIdx, err := lookup(children[idx], portName)
	if err != nil {
		return 0, 0, err
	}
	return idx, portIdx, nil
}

func findPortOut(cs container.ChildSpec, name string) (int, error) {
	if name == "ERROR" {
		return cs.Type.ErrorPortIndex(), nil
	}
	for i, p := range cs.Type.PortsOut {
		if p.Name == name {
			return i, nil
		}
	}
	return 0, flowerr.New(flowerr.InvalidPort, "node %q has no output port %q", cs.Name, name)
}

func findPortIn(cs container.ChildSpec, name string) (int, error) {
	for i, p := range cs.Type.PortsIn {
		if p.Name == name {
			return i, nil
		}
	}
	return 0, flowerr.New(flowerr.InvalidPort, "node %q has no input port %q", cs.Name, name)
}

func connLess(a, b container.ConnSpec) bool {
	ak := [4]int{a.SrcIdx, a.SrcPort, a.DstIdx, a.DstPort}
	bk := [4]int{b.SrcIdx, b.SrcPort, b.DstIdx, b.DstPort}
	for i := range ak {
		if ak[i] != bk[i] {
			return ak[i] < bk[i]
		}
	}
	return false
}
