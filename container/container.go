package container

import (
	"fmt"
	"sort"
	"sync"

	"github.com/alitto/pond"
	deadlock "github.com/sasha-s/go-deadlock"
	"github.com/sirupsen/logrus"

	"github.com/solcore/flowrt/dispatch"
	"github.com/solcore/flowrt/flowerr"
	"github.com/solcore/flowrt/inspect"
	"github.com/solcore/flowrt/node"
	"github.com/solcore/flowrt/options"
	"github.com/solcore/flowrt/packet"
	"github.com/solcore/flowrt/port"
)

// maxSyncFanout bounds how many destinations a single Send delivers to on
// the calling goroutine before spilling the rest to fanoutPool. A normal
// flow graph rarely fans one output to more than a handful of edges; this
// only matters for pathological graphs (a hub node wired to hundreds of
// siblings) where recursing into every destination on the sender's own
// stack would grow it without bound.
const maxSyncFanout = 8

// fanoutPool drains overflow deliveries from Send. It is shared by every
// container instance in the process: deliveries are short (a handful of
// Process/Connect calls), so one small pool is enough headroom rather than
// one pool per container.
var fanoutPool = pond.New(4, 256, pond.MinWorkers(1))

type resolvedConn struct {
	ConnSpec
	OutConnID int
	InConnID  int
}

// Container is the private storage a container-flagged node.Type's Open
// installs: the live, connected set of child instances plus the resolved
// connection table. It implements node.Sender so it can be addressed as
// any other child's Parent.
type Container struct {
	spec *Spec
	self *node.Instance

	mu       deadlock.Mutex
	children []*node.Instance
	conns    []resolvedConn
	closed   []bool // per-connection: already disconnected

	exportedOutByChild map[[2]int]int // (childIdx, childPort) -> outer port index
	exportedInByOuter  map[int]innerTarget
}

type innerTarget struct {
	Inner     int
	InnerPort int
}

// NewType builds a node.Type implementing spec as a container: its Open
// constructs a Container and runs the full instantiation/connection
// sequence, its Close tears it down, and its declared ports are derived
// from spec's exported-port list.
func NewType(name, category string, spec *Spec) (*node.Type, error) {
	if err := spec.validateSorted(); err != nil {
		return nil, err
	}

	portsIn, err := buildExportedIn(spec)
	if err != nil {
		return nil, err
	}
	portsOut, err := buildExportedOut(spec)
	if err != nil {
		return nil, err
	}

	t := &node.Type{
		Name:     name,
		Category: category,
		Flags:    node.FlagContainer,
		PortsIn:  portsIn,
		PortsOut: portsOut,
	}
	t.Open = func(inst *node.Instance, _ *options.Values) (any, error) {
		c := &Container{spec: spec, self: inst}
		if err := c.open(); err != nil {
			return nil, err
		}
		return c, nil
	}
	t.Close = func(_ *node.Instance, priv any) error {
		c, ok := priv.(*Container)
		if !ok {
			return flowerr.New(flowerr.InvalidPort, "container Close called with non-container private storage")
		}
		return c.close()
	}
	return t, nil
}

func buildExportedIn(spec *Spec) ([]port.Type, error) {
	out := make([]port.Type, len(spec.ExportedIn))
	for i, e := range spec.ExportedIn {
		child, err := resolveChildPortIn(spec, e)
		if err != nil {
			return nil, err
		}
		out[i] = port.Type{
			Name:       e.Name,
			Dir:        port.In,
			PacketType: child.PacketType,
			Process: func(priv any, portIdx, connID int, pkt *packet.Packet) error {
				c := priv.(*Container)
				return c.deliverExportedIn(portIdx, pkt)
			},
		}
	}
	return out, nil
}

func buildExportedOut(spec *Spec) ([]port.Type, error) {
	out := make([]port.Type, len(spec.ExportedOut))
	for i, e := range spec.ExportedOut {
		child, err := resolveChildPortOut(spec, e)
		if err != nil {
			return nil, err
		}
		out[i] = port.Type{Name: e.Name, Dir: port.Out, PacketType: child.PacketType}
	}
	return out, nil
}

func resolveChildPortIn(spec *Spec, e ExportSpec) (port.Type, error) {
	if e.InnerIdx < 0 || e.InnerIdx >= len(spec.Children) {
		return port.Type{}, flowerr.New(flowerr.InvalidPort, "export %q: child index %d out of range", e.Name, e.InnerIdx)
	}
	ct := spec.Children[e.InnerIdx].Type
	p, ok := ct.PortIn(e.InnerPort)
	if !ok {
		return port.Type{}, flowerr.New(flowerr.InvalidPort, "export %q: child %s has no input port %d", e.Name, ct.Name, e.InnerPort)
	}
	return p, nil
}

func resolveChildPortOut(spec *Spec, e ExportSpec) (port.Type, error) {
	if e.InnerIdx < 0 || e.InnerIdx >= len(spec.Children) {
		return port.Type{}, flowerr.New(flowerr.InvalidPort, "export %q: child index %d out of range", e.Name, e.InnerIdx)
	}
	ct := spec.Children[e.InnerIdx].Type
	if e.InnerPort == ct.ErrorPortIndex() {
		return port.ErrorPort(), nil
	}
	p, ok := ct.PortOut(e.InnerPort)
	if !ok {
		return port.Type{}, flowerr.New(flowerr.InvalidPort, "export %q: child %s has no output port %d", e.Name, ct.Name, e.InnerPort)
	}
	return p, nil
}

// open runs the construction sequence: resolve options, instantiate every
// child in order, then — only once every child exists — walk the sorted
// connection table assigning dense conn-ids and invoking connect
// callbacks. Any failure unwinds everything built so far in reverse order.
func (c *Container) open() error {
	c.children = make([]*node.Instance, 0, len(c.spec.Children))
	c.exportedOutByChild = make(map[[2]int]int, len(c.spec.ExportedOut))
	c.exportedInByOuter = make(map[int]innerTarget, len(c.spec.ExportedIn))

	for i, e := range c.spec.ExportedOut {
		c.exportedOutByChild[[2]int{e.InnerIdx, e.InnerPort}] = i
	}
	for i, e := range c.spec.ExportedIn {
		c.exportedInByOuter[i] = innerTarget{Inner: e.InnerIdx, InnerPort: e.InnerPort}
	}

	for i, cs := range c.spec.Children {
		inst, err := c.instantiateChild(i, cs)
		if err != nil {
			c.unwindChildren(len(c.children))
			return err
		}
		c.add(inst)
	}

	c.conns = make([]resolvedConn, len(c.spec.Connections))
	c.closed = make([]bool, len(c.spec.Connections))
	assignConnIDs(c.spec.Connections, c.conns)

	connected := 0
	for i := range c.conns {
		if err := c.connectOne(i); err != nil {
			c.unwindConns(connected)
			c.unwindChildren(len(c.children))
			return err
		}
		connected = i + 1
	}

	for _, inst := range c.children {
		if inst.Type.Activate == nil {
			continue
		}
		if err := inst.Type.Activate(inst, inst.Private); err != nil {
			c.unwindConns(len(c.conns))
			c.unwindChildren(len(c.children))
			return err
		}
	}
	return nil
}

func assignConnIDs(specs []ConnSpec, out []resolvedConn) {
	outCounters := map[[2]int]int{}
	inCounters := map[[2]int]int{}
	for i, cs := range specs {
		srcKey := [2]int{cs.SrcIdx, cs.SrcPort}
		dstKey := [2]int{cs.DstIdx, cs.DstPort}
		out[i] = resolvedConn{
			ConnSpec:  cs,
			OutConnID: outCounters[srcKey],
			InConnID:  inCounters[dstKey],
		}
		outCounters[srcKey]++
		inCounters[dstKey]++
	}
}

func (c *Container) instantiateChild(idx int, cs ChildSpec) (*node.Instance, error) {
	base, err := options.Parse(cs.Type.Options, cs.Options)
	if err != nil {
		return nil, fmt.Errorf("child %d (%s): %w", idx, cs.Name, err)
	}
	opts := base
	if c.spec.ChildOptsSet != nil {
		opts, err = c.spec.ChildOptsSet(idx, base)
		if err != nil {
			return nil, fmt.Errorf("child %d (%s): option override: %w", idx, cs.Name, err)
		}
	}

	var didOpen func(inst *node.Instance, opts *options.Values)
	if h := inspect.Current(); h != nil && h.DidOpenNode != nil {
		didOpen = func(inst *node.Instance, opts *options.Values) { h.DidOpenNode(inst, opts) }
	}
	return node.New(cs.Type, cs.Name, idx, c.self.Level+1, c, opts, didOpen)
}

func (c *Container) connectOne(i int) error {
	conn := c.conns[i]
	src, dst := c.children[conn.SrcIdx], c.children[conn.DstIdx]
	srcPort, err := outPort(src, conn.SrcPort)
	if err != nil {
		return err
	}
	dstPort, ok := dst.Type.PortIn(conn.DstPort)
	if !ok {
		return flowerr.New(flowerr.InvalidPort, "connection %d: %s has no input port %d", i, dst.DisplayID(), conn.DstPort)
	}

	if dstPort.Connect != nil {
		if err := dstPort.Connect(dst.Private, conn.InConnID); err != nil {
			return fmt.Errorf("connection %d: destination connect: %w", i, err)
		}
	}
	if srcPort.Connect != nil {
		if err := srcPort.Connect(src.Private, conn.OutConnID); err != nil {
			if dstPort.Disconnect != nil {
				dstPort.Disconnect(dst.Private, conn.InConnID)
			}
			return fmt.Errorf("connection %d: source connect: %w", i, err)
		}
	}
	if h := inspect.Current(); h != nil && h.DidConnectPort != nil {
		h.DidConnectPort(src, srcPort, conn.OutConnID, dst, dstPort, conn.InConnID)
	}
	return nil
}

func outPort(inst *node.Instance, idx int) (port.Type, error) {
	if idx == inst.Type.ErrorPortIndex() {
		return port.ErrorPort(), nil
	}
	p, ok := inst.Type.PortOut(idx)
	if !ok {
		return port.Type{}, flowerr.New(flowerr.InvalidPort, "%s has no output port %d", inst.DisplayID(), idx)
	}
	return p, nil
}

// unwindConns disconnects connections [0, n) in reverse order, used for
// open-failure rollback. Child teardown goes through disconnectIncident,
// which calls disconnect directly.
func (c *Container) unwindConns(n int) {
	for i := n - 1; i >= 0; i-- {
		c.disconnect(i)
	}
}

func (c *Container) disconnect(i int) {
	if c.closed[i] {
		return
	}
	c.closed[i] = true
	conn := c.conns[i]
	src, dst := c.children[conn.SrcIdx], c.children[conn.DstIdx]
	srcPort, err := outPort(src, conn.SrcPort)
	if err != nil {
		return
	}
	dstPort, ok := dst.Type.PortIn(conn.DstPort)
	if !ok {
		return
	}
	if h := inspect.Current(); h != nil && h.WillDisconnectPort != nil {
		h.WillDisconnectPort(src, srcPort, conn.OutConnID, dst, dstPort, conn.InConnID)
	}
	if srcPort.Disconnect != nil {
		srcPort.Disconnect(src.Private, conn.OutConnID)
	}
	if dstPort.Disconnect != nil {
		dstPort.Disconnect(dst.Private, conn.InConnID)
	}
}

func (c *Container) unwindChildren(n int) {
	var willClose func(inst *node.Instance)
	if h := inspect.Current(); h != nil && h.WillCloseNode != nil {
		willClose = func(inst *node.Instance) { h.WillCloseNode(inst) }
	}
	for i := n - 1; i >= 0; i-- {
		if err := c.children[i].Close(willClose); err != nil {
			logrus.WithError(err).Warnf("closing %s during rollback", c.children[i].DisplayID())
		}
	}
}

// add is the post-construction notification for a freshly opened child:
// it takes the slot its ParentSlot already names.
func (c *Container) add(inst *node.Instance) {
	c.children = append(c.children, inst)
}

// remove is the pre-destruction notification for child idx, delivered
// before the child's own Close completes: every still-live edge incident
// on it is disconnected first.
func (c *Container) remove(idx int) {
	c.disconnectIncident(idx)
}

// disconnectIncident removes every still-live edge touching child idx,
// descending by each edge's conn-id on the endpoint idx occupies, before
// idx itself is closed.
func (c *Container) disconnectIncident(idx int) {
	var asSrc, asDst []int
	for i, conn := range c.conns {
		if c.closed[i] {
			continue
		}
		if conn.SrcIdx == idx {
			asSrc = append(asSrc, i)
		}
		if conn.DstIdx == idx {
			asDst = append(asDst, i)
		}
	}
	sort.Slice(asSrc, func(a, b int) bool { return c.conns[asSrc[a]].OutConnID > c.conns[asSrc[b]].OutConnID })
	sort.Slice(asDst, func(a, b int) bool { return c.conns[asDst[a]].InConnID > c.conns[asDst[b]].InConnID })
	for _, i := range asSrc {
		c.disconnect(i)
	}
	for _, i := range asDst {
		c.disconnect(i)
	}
}

// close tears every child down in reverse instantiation order, first
// disconnecting each child's incident edges, then disposes the spec's
// shared resources.
func (c *Container) close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var willClose func(inst *node.Instance)
	if h := inspect.Current(); h != nil && h.WillCloseNode != nil {
		willClose = func(inst *node.Instance) { h.WillCloseNode(inst) }
	}
	for i := len(c.children) - 1; i >= 0; i-- {
		c.remove(i)
		if err := c.children[i].Close(willClose); err != nil {
			logrus.WithError(err).Warnf("closing %s", c.children[i].DisplayID())
		}
	}
	if c.spec.Dispose != nil {
		c.spec.Dispose()
	}
	return nil
}

// deliverExportedIn is the Process callback behind every exported input
// port. pkt is borrowed (the parent container's dispatch loop owns and
// releases it), so forwarding into deliverToChild — which consumes its
// packet — goes through Clone: a refcount bump for blobs, a shallow
// wrapper copy for everything else, never a payload copy.
func (c *Container) deliverExportedIn(outerPort int, pkt *packet.Packet) error {
	c.mu.Lock()
	target, ok := c.exportedInByOuter[outerPort]
	c.mu.Unlock()
	if !ok {
		return nil
	}
	return c.deliverToChild(target.Inner, target.InnerPort, 0, pkt.Clone())
}

func (c *Container) deliverToChild(childIdx, portIdx, connID int, pkt *packet.Packet) error {
	dst := c.children[childIdx]
	p, ok := dst.Type.PortIn(portIdx)
	if !ok {
		pkt.Release()
		return flowerr.New(flowerr.InvalidPort, "%s has no input port %d", dst.DisplayID(), portIdx)
	}
	if h := inspect.Current(); h != nil && h.WillDeliverPacket != nil {
		h.WillDeliverPacket(dst, p, connID, pkt)
	}
	err := p.Process(dst.Private, portIdx, connID, pkt)
	pkt.Release()
	return err
}

// Send implements node.Sender: routes a packet a child sent on
// (childSlot, portIdx) to every sibling wired to it and, if that port is
// exported, to the container's own parent. pkt is released exactly once
// per delivery (a clone per destination but the last, which takes the
// caller's reference); an unconnected, unexported port silently drops pkt.
func (c *Container) Send(childSlot, portIdx int, pkt *packet.Packet) error {
	c.mu.Lock()
	start := sort.Search(len(c.conns), func(i int) bool {
		cc := c.conns[i]
		if cc.SrcIdx != childSlot {
			return cc.SrcIdx >= childSlot
		}
		return cc.SrcPort >= portIdx
	})
	var matches []int
	for i := start; i < len(c.conns) && c.conns[i].SrcIdx == childSlot && c.conns[i].SrcPort == portIdx; i++ {
		if !c.closed[i] {
			matches = append(matches, i)
		}
	}
	exportedOuter, isExported := c.exportedOutByChild[[2]int{childSlot, portIdx}]
	c.mu.Unlock()

	type delivery func(p *packet.Packet) error
	items := make([]delivery, 0, len(matches)+1)
	for _, mi := range matches {
		mi := mi
		items = append(items, func(p *packet.Packet) error {
			conn := c.conns[mi]
			return c.deliverToChild(conn.DstIdx, conn.DstPort, conn.InConnID, p)
		})
	}
	if isExported {
		items = append(items, func(p *packet.Packet) error {
			// the outer port's packet type is the child port's own, so
			// Send's validation cannot fail here; an error it returns comes
			// from a delivery that has already consumed p, so p is not
			// released a second time
			return dispatch.Send(c.self, exportedOuter, p)
		})
	}

	if len(items) == 0 {
		pkt.Release()
		return nil
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	var firstErr error
	for i, item := range items {
		var p *packet.Packet
		if i == len(items)-1 {
			p = pkt
		} else {
			p = pkt.Clone()
		}
		if i < maxSyncFanout {
			if err := item(p); err != nil && firstErr == nil {
				firstErr = err
			}
			continue
		}
		wg.Add(1)
		item, p := item, p
		fanoutPool.Submit(func() {
			defer wg.Done()
			if err := item(p); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		})
	}
	wg.Wait()
	return firstErr
}
