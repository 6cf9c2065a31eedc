package packet

import (
	"github.com/solcore/flowrt/flowerr"
	"github.com/solcore/flowrt/pkttype"
)

// NewComposed builds a composed packet from an owned sequence of child
// packets. children must positionally match t.Members' textual types (via
// each member's corresponding built-in packet type, inferred from its
// declared textual type name); otherwise fails with TypeMismatch.
func NewComposed(t *pkttype.Type, children []*Packet) (*Packet, error) {
	if !t.Composed {
		return nil, flowerr.New(flowerr.TypeMismatch, "%s is not a composed type", t)
	}
	if len(children) != len(t.Members) {
		return nil, flowerr.New(flowerr.TypeMismatch, "composed type %s wants %d members, got %d", t, len(t.Members), len(children))
	}
	for i, m := range t.Members {
		want, ok := pkttype.Lookup(memberPacketTypeName(m.Type))
		if ok && !want.Accepts(children[i].Type) {
			return nil, flowerr.New(flowerr.TypeMismatch, "composed type %s member %d (%s): expected %s, got %s", t, i, m.Name, want, children[i].Type)
		}
	}
	return &Packet{Type: t, value: children}, nil
}

// Members returns the borrowed child packet sequence of a composed packet;
// ok is false if p is not composed.
func (p *Packet) Members() ([]*Packet, bool) {
	v, ok := p.value.([]*Packet)
	return v, ok
}

// memberPacketTypeName maps a composed-member textual type name (as used
// in the options/member schema, e.g. "int", "string") to the built-in
// packet type registry name it corresponds to. Unknown names are treated
// as opaque and are not type-checked at composition time.
func memberPacketTypeName(textual string) string {
	switch textual {
	case "int", "int32", "irange-spec":
		return pkttype.IRange.Name
	case "float", "float64", "drange-spec":
		return pkttype.DRange.Name
	case "string":
		return pkttype.String.Name
	case "bool", "boolean":
		return pkttype.Boolean.Name
	case "byte":
		return pkttype.Byte.Name
	case "blob":
		return pkttype.Blob.Name
	case "rgb":
		return pkttype.RGB.Name
	case "direction-vector":
		return pkttype.DirectionVector.Name
	default:
		return textual
	}
}
