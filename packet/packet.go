// Package packet implements the packet value abstraction (C2): an
// immutable, reference-counted carrier of exactly one typed value, with
// constructors per built-in packet type and for composed (tuple) packets.
package packet

import (
	"time"

	"github.com/solcore/flowrt/pkttype"
)

// IRangeValue is the payload of an IRANGE packet.
type IRangeValue struct{ Val, Min, Max, Step int32 }

// DRangeValue is the payload of a DRANGE packet.
type DRangeValue struct{ Val, Min, Max, Step float64 }

// RGBValue is the payload of an RGB packet.
type RGBValue struct{ Red, Green, Blue uint32 }

// VectorValue is the payload of a DIRECTION_VECTOR packet.
type VectorValue struct{ X, Y, Z, W float64 }

// LocationValue is the payload of a LOCATION packet.
type LocationValue struct{ Lat, Lon, Alt float64 }

// HTTPResponseValue is the payload of an HTTP_RESPONSE packet.
type HTTPResponseValue struct {
	Code        int32
	ContentType string
	Content     *Blob
}

// ErrorValue is the payload sent on every node's implicit ERROR port.
type ErrorValue struct {
	Code    int
	Message string
}

// Packet is an owned typed value. Once constructed its value is logically
// immutable (BLOB payloads are the one exception, via refcounting rather
// than mutation). Sending a packet transfers ownership to the dispatcher,
// which lends it to each destination's process callback for the duration
// of the call and releases it afterwards; on fan-out it clones non-blob
// packets and bumps the refcount of blob packets instead of copying their
// bytes.
type Packet struct {
	Type  *pkttype.Type
	value any
}

func newSimple(t *pkttype.Type, value any) *Packet {
	return &Packet{Type: t, value: value}
}

// NewEmpty builds an EMPTY packet.
func NewEmpty() *Packet { return newSimple(pkttype.Empty, nil) }

// NewAny wraps an arbitrary value as an ANY packet, for polymorphic ports
// that only forward packets without inspecting them.
func NewAny(v any) *Packet { return newSimple(pkttype.Any, v) }

// NewBoolean builds a BOOLEAN packet.
func NewBoolean(v bool) *Packet { return newSimple(pkttype.Boolean, v) }

// Boolean returns the stored value; ok is false if p is not BOOLEAN.
func (p *Packet) Boolean() (bool, bool) {
	v, ok := p.value.(bool)
	return v, ok && p.Type == pkttype.Boolean
}

// NewByte builds a BYTE packet.
func NewByte(v byte) *Packet { return newSimple(pkttype.Byte, v) }

// Byte returns the stored value; ok is false if p is not BYTE.
func (p *Packet) Byte() (byte, bool) {
	v, ok := p.value.(byte)
	return v, ok && p.Type == pkttype.Byte
}

// NewIRange builds an IRANGE packet.
func NewIRange(v IRangeValue) *Packet { return newSimple(pkttype.IRange, v) }

// IRange returns the stored value; ok is false if p is not IRANGE.
func (p *Packet) IRange() (IRangeValue, bool) {
	v, ok := p.value.(IRangeValue)
	return v, ok
}

// NewDRange builds a DRANGE packet.
func NewDRange(v DRangeValue) *Packet { return newSimple(pkttype.DRange, v) }

// DRange returns the stored value; ok is false if p is not DRANGE.
func (p *Packet) DRange() (DRangeValue, bool) {
	v, ok := p.value.(DRangeValue)
	return v, ok
}

// NewString builds a STRING packet. The returned packet borrows the Go
// string (strings are immutable in Go, so this is safe without a copy).
func NewString(v string) *Packet { return newSimple(pkttype.String, v) }

// String returns the borrowed string view; ok is false if p is not STRING.
func (p *Packet) String() (string, bool) {
	v, ok := p.value.(string)
	return v, ok && p.Type == pkttype.String
}

// NewRGB builds an RGB packet.
func NewRGB(v RGBValue) *Packet { return newSimple(pkttype.RGB, v) }

// RGB returns the stored value; ok is false if p is not RGB.
func (p *Packet) RGB() (RGBValue, bool) {
	v, ok := p.value.(RGBValue)
	return v, ok
}

// NewDirectionVector builds a DIRECTION_VECTOR packet.
func NewDirectionVector(v VectorValue) *Packet { return newSimple(pkttype.DirectionVector, v) }

// DirectionVector returns the stored value; ok is false if p is not
// DIRECTION_VECTOR.
func (p *Packet) DirectionVector() (VectorValue, bool) {
	v, ok := p.value.(VectorValue)
	return v, ok
}

// NewLocation builds a LOCATION packet.
func NewLocation(v LocationValue) *Packet { return newSimple(pkttype.Location, v) }

// Location returns the stored value; ok is false if p is not LOCATION.
func (p *Packet) Location() (LocationValue, bool) {
	v, ok := p.value.(LocationValue)
	return v, ok
}

// NewTimestamp builds a TIMESTAMP packet.
func NewTimestamp(v time.Time) *Packet { return newSimple(pkttype.Timestamp, v) }

// Timestamp returns the stored value; ok is false if p is not TIMESTAMP.
func (p *Packet) Timestamp() (time.Time, bool) {
	v, ok := p.value.(time.Time)
	return v, ok
}

// NewHTTPResponse builds an HTTP_RESPONSE packet. Content's refcount is
// incremented; the new packet holds its own reference.
func NewHTTPResponse(v HTTPResponseValue) *Packet {
	if v.Content != nil {
		v.Content.Ref()
	}
	return newSimple(pkttype.HTTPResponse, v)
}

// HTTPResponse returns the stored value; ok is false if p is not
// HTTP_RESPONSE.
func (p *Packet) HTTPResponse() (HTTPResponseValue, bool) {
	v, ok := p.value.(HTTPResponseValue)
	return v, ok
}

// NewJSONObject builds a JSON_OBJECT packet carrying raw JSON text.
func NewJSONObject(raw string) *Packet { return newSimple(pkttype.JSONObject, raw) }

// NewJSONArray builds a JSON_ARRAY packet carrying raw JSON text.
func NewJSONArray(raw string) *Packet { return newSimple(pkttype.JSONArray, raw) }

// JSONRaw returns the borrowed raw JSON text; ok is false if p is not a
// JSON_OBJECT or JSON_ARRAY.
func (p *Packet) JSONRaw() (string, bool) {
	if p.Type != pkttype.JSONObject && p.Type != pkttype.JSONArray {
		return "", false
	}
	v, ok := p.value.(string)
	return v, ok
}

// Clone returns an independent packet carrying the same logical value,
// for fan-out to multiple destinations. Blob packets are not deep-copied:
// Clone adds a reference instead, matching the spec's fan-out policy
// (clone for non-blob, refcount bump for blob).
func (p *Packet) Clone() *Packet {
	if b, ok := p.value.(*Blob); ok {
		b.Ref()
		return &Packet{Type: p.Type, value: b}
	}
	if hr, ok := p.value.(HTTPResponseValue); ok {
		if hr.Content != nil {
			hr.Content.Ref()
		}
		return &Packet{Type: p.Type, value: hr}
	}
	if children, ok := p.value.([]*Packet); ok {
		clones := make([]*Packet, len(children))
		for i, c := range children {
			clones[i] = c.Clone()
		}
		return &Packet{Type: p.Type, value: clones}
	}
	// every other built-in value type is a Go value type (or an immutable
	// string), so a shallow copy of the wrapper is a correct deep copy.
	return &Packet{Type: p.Type, value: p.value}
}

// Release drops whatever reference this packet holds (a blob's refcount,
// a composed packet's children, nothing for value types). Call exactly
// once per packet a node does not forward, to keep blob refcounts honest;
// the dispatcher calls this automatically once the last delivery of a
// fan-out completes.
func (p *Packet) Release() {
	switch v := p.value.(type) {
	case *Blob:
		v.Unref()
	case HTTPResponseValue:
		if v.Content != nil {
			v.Content.Unref()
		}
	case []*Packet:
		for _, c := range v {
			c.Release()
		}
	}
}
