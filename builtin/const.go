// Package builtin implements the built-in node library (C11): a handful
// of generally useful node types (const, timer, console, exec,
// blob-source) registered against the node and pkttype registries so a
// specfile document can reference them by name without a program having
// to hand-write Go node types of its own.
package builtin

import (
	"github.com/solcore/flowrt/flowerr"
	"github.com/solcore/flowrt/node"
	"github.com/solcore/flowrt/options"
	"github.com/solcore/flowrt/packet"
	"github.com/solcore/flowrt/pkttype"
	"github.com/solcore/flowrt/port"
)

// constOptions is the options schema shared by Const and its "int-src"/
// "int-sink" fixed-type aliases: "value" is parsed according to
// "packet_type" (default "irange"), and re-emitted whenever IN receives a
// trigger packet (payload ignored — this is a pure EMPTY trigger port,
// accepting ANY so any upstream node can drive it).
func constOptions(defaultType, defaultValue string) options.Schema {
	return options.Schema{
		{Name: "packet_type", Type: "string", Default: defaultType},
		{Name: "value", Type: "string", Default: defaultValue},
	}
}

// Const is registered under the category "builtin.const". Its OUT port is
// declared ANY because the emitted packet's concrete type is chosen per
// instance by the "packet_type" option (default "irange", matching the
// distilled spec's int-src/int-sink scenarios); it emits that value once
// its owning container has activated it (every connection wired) and
// again every time it receives a trigger packet on IN.
var Const = &node.Type{
	Name:     "const",
	Category: "builtin.const",
	Options:  constOptions("irange", "0"),
	PortsIn: []port.Type{
		{Name: "IN", Dir: port.In, PacketType: pkttype.Any, Process: constTrigger},
	},
	PortsOut: []port.Type{
		{Name: "OUT", Dir: port.Out, PacketType: pkttype.Any},
	},
	Open:     constOpen,
	Activate: constActivate,
}

// IntSrc ("int-src") is Const fixed to packet_type=irange, the alias the
// distilled spec's Scenario A/B traces name directly (`int-src(value=7)`).
var IntSrc = &node.Type{
	Name:     "int-src",
	Category: "builtin.const",
	Options:  constOptions("irange", "0"),
	PortsIn: []port.Type{
		{Name: "IN", Dir: port.In, PacketType: pkttype.Any, Process: constTrigger},
	},
	PortsOut: []port.Type{
		{Name: "OUT", Dir: port.Out, PacketType: pkttype.IRange},
	},
	Open:     constOpen,
	Activate: constActivate,
}

// IntSink ("int-sink") accepts an IRANGE packet on IN and drops it,
// existing purely so Scenario A/B's traces have somewhere to route to
// without pulling in the console node's logging side-effect.
var IntSink = &node.Type{
	Name:     "int-sink",
	Category: "builtin.const",
	PortsIn: []port.Type{
		{Name: "IN", Dir: port.In, PacketType: pkttype.IRange, Process: sinkProcess},
	},
}

func sinkProcess(_ any, _ int, _ int, _ *packet.Packet) error {
	return nil
}

type constState struct {
	send  func(portIdx int, pkt *packet.Packet) error
	build func() (*packet.Packet, error)
}

func constOpen(inst *node.Instance, opts *options.Values) (any, error) {
	typ, _ := opts.Get("packet_type")
	value, _ := opts.Get("value")
	build, err := constBuilder(typ.(string), value.(string))
	if err != nil {
		return nil, err
	}
	return &constState{send: sendFunc(inst), build: build}, nil
}

// constActivate emits the configured value once the owning container has
// finished wiring every connection (node.Type.Activate's contract) rather
// than from Open, whose container has not yet built its connection table
// (see node/node.go's Activate doc and DESIGN.md's Open Question #2
// resolution) — sending from Open would find no destinations and the
// initial value would be silently dropped.
func constActivate(_ *node.Instance, priv any) error {
	s := priv.(*constState)
	pkt, err := s.build()
	if err != nil {
		return err
	}
	return s.send(0, pkt)
}

func constTrigger(priv any, _ int, _ int, _ *packet.Packet) error {
	s := priv.(*constState)
	out, err := s.build()
	if err != nil {
		return err
	}
	return s.send(0, out)
}

// constBuilder resolves the "packet_type" option to a closure building a
// fresh packet of that type from "value" each time it's called, reusing
// the options schema's textual parsing rules. Only "irange", "drange",
// "bool"/"boolean" and "string" are supported; any other packet_type
// fails with UnknownOption.
func constBuilder(packetType, value string) (func() (*packet.Packet, error), error) {
	schema := options.Schema{{Name: "value", Type: memberOptionType(packetType), Default: value}}
	switch packetType {
	case "irange":
		return func() (*packet.Packet, error) {
			v, err := options.Parse(schema, nil)
			if err != nil {
				return nil, err
			}
			spec, _ := v.Get("value")
			s := spec.(options.IRangeSpec)
			return packet.NewIRange(packet.IRangeValue{Val: int32(s.Val), Min: int32(s.Min), Max: int32(s.Max), Step: int32(s.Step)}), nil
		}, nil
	case "drange":
		return func() (*packet.Packet, error) {
			v, err := options.Parse(schema, nil)
			if err != nil {
				return nil, err
			}
			spec, _ := v.Get("value")
			s := spec.(options.DRangeSpec)
			return packet.NewDRange(packet.DRangeValue{Val: s.Val, Min: s.Min, Max: s.Max, Step: s.Step}), nil
		}, nil
	case "bool", "boolean":
		return func() (*packet.Packet, error) {
			v, err := options.Parse(schema, nil)
			if err != nil {
				return nil, err
			}
			b, _ := v.Get("value")
			return packet.NewBoolean(b.(bool)), nil
		}, nil
	case "string":
		return func() (*packet.Packet, error) { return packet.NewString(value), nil }, nil
	default:
		return nil, flowerr.New(flowerr.UnknownOption, "const: unsupported packet_type %q", packetType)
	}
}

func memberOptionType(packetType string) string {
	switch packetType {
	case "irange":
		return "irange-spec"
	case "drange":
		return "drange-spec"
	default:
		return packetType
	}
}
