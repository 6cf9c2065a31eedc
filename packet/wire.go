package packet

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/solcore/flowrt/flowerr"
	"github.com/solcore/flowrt/pkttype"
)

// WireMember is the binary representation of one composed- or blob-packet
// member, independent of Go's own field layout, so the encoding is stable
// across platforms and Go versions: a length-prefixed name, a
// length-prefixed type-kind tag, and the member's already-serialised raw
// bytes. The packet type's member offsets and sizes are not used.
type WireMember struct {
	Name string
	Kind string
	Raw  []byte
}

// WireComposed is the on-wire shape of a composed packet: its type name
// followed by an ordered list of WireMember, each carrying its own
// already-serialised raw bytes.
type WireComposed struct {
	TypeName string
	Members  []WireMember
}

// MarshalBinary renders p to a deterministic length-prefixed binary
// encoding (type name, member count, then each WireMember), for debug
// dumps and round-trip tests. Only composed and BLOB packets carry a meaningful
// binary form; every other built-in type returns TypeMismatch, since their
// canonical representation is the textual §6 format, not a wire format.
//
// The encoding is hand-rolled (length-prefixed fields, see DESIGN.md)
// rather than reused from the teacher's buildbarn/go-xdr dependency: that
// library ships generated per-protocol bindings (see
// vmgr/conf/nfsmnt/kapi.go's darwin_nfs_sys_prot package) for a fixed RFC
// wire format, not a reflective encoder for arbitrary Go structs, so it has
// no entry point that fits a packet type whose member layout is only known
// at runtime.
func (p *Packet) MarshalBinary() ([]byte, error) {
	switch {
	case p.Type.Composed:
		children, _ := p.Members()
		w := WireComposed{TypeName: p.Type.Name}
		for i, c := range children {
			raw, err := c.MarshalBinary()
			if err != nil {
				raw = []byte(renderScalar(c))
			}
			w.Members = append(w.Members, WireMember{
				Name: p.Type.Members[i].Name,
				Kind: p.Type.Members[i].Type,
				Raw:  raw,
			})
		}
		return marshalComposed(&w), nil

	case p.Type == pkttype.Blob:
		b, _ := p.Blob()
		return marshalComposed(&WireComposed{
			TypeName: pkttype.Blob.Name,
			Members:  []WireMember{{Name: "blob", Kind: b.Type(), Raw: b.Mem()}},
		}), nil

	default:
		return nil, flowerr.New(flowerr.TypeMismatch, "%s has no binary wire form", p.Type)
	}
}

func marshalComposed(w *WireComposed) []byte {
	var buf bytes.Buffer
	writeField(&buf, []byte(w.TypeName))
	var countBuf [4]byte
	binary.BigEndian.PutUint32(countBuf[:], uint32(len(w.Members)))
	buf.Write(countBuf[:])
	for _, m := range w.Members {
		writeField(&buf, []byte(m.Name))
		writeField(&buf, []byte(m.Kind))
		writeField(&buf, m.Raw)
	}
	return buf.Bytes()
}

func writeField(buf *bytes.Buffer, data []byte) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	buf.Write(lenBuf[:])
	buf.Write(data)
}

// UnmarshalComposed decodes bytes produced by MarshalBinary back into a
// WireComposed shell; the caller is responsible for rebuilding typed child
// packets from WireMember.Raw, since the registry (not this package) knows
// how to resolve a composed type's member packet types. Exported member
// raw bytes alias data; copy before mutating.
func UnmarshalComposed(data []byte) (*WireComposed, error) {
	r := bytes.NewReader(data)
	typeName, err := readField(r)
	if err != nil {
		return nil, flowerr.New(flowerr.TypeMismatch, "unmarshal composed packet: %v", err)
	}
	var countBuf [4]byte
	if _, err := readFull(r, countBuf[:]); err != nil {
		return nil, flowerr.New(flowerr.TypeMismatch, "unmarshal composed packet: %v", err)
	}
	count := binary.BigEndian.Uint32(countBuf[:])
	w := &WireComposed{TypeName: string(typeName), Members: make([]WireMember, count)}
	for i := range w.Members {
		name, err := readField(r)
		if err != nil {
			return nil, flowerr.New(flowerr.TypeMismatch, "unmarshal composed packet: member %d name: %v", i, err)
		}
		kind, err := readField(r)
		if err != nil {
			return nil, flowerr.New(flowerr.TypeMismatch, "unmarshal composed packet: member %d kind: %v", i, err)
		}
		raw, err := readField(r)
		if err != nil {
			return nil, flowerr.New(flowerr.TypeMismatch, "unmarshal composed packet: member %d raw: %v", i, err)
		}
		w.Members[i] = WireMember{Name: string(name), Kind: string(kind), Raw: raw}
	}
	return w, nil
}

func readField(r *bytes.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := readFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	data := make([]byte, n)
	if _, err := readFull(r, data); err != nil {
		return nil, err
	}
	return data, nil
}

func readFull(r *bytes.Reader, p []byte) (int, error) {
	if len(p) == 0 {
		// bytes.Reader reports io.EOF for any read at end of data, even an
		// empty one; an empty trailing field is still a complete field
		return 0, nil
	}
	n, err := r.Read(p)
	if err == nil && n < len(p) {
		return n, fmt.Errorf("short read: wanted %d, got %d", len(p), n)
	}
	return n, err
}

func renderScalar(p *Packet) string {
	return fmt.Sprintf("%v", p.value)
}
