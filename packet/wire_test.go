package packet

import (
	"bytes"
	"testing"

	"github.com/solcore/flowrt/pkttype"
)

func TestBlobWireRoundTrip(t *testing.T) {
	t.Parallel()

	payload := []byte{0x00, 0x01, 0xFE, 0xFF}
	b := NewBlob(payload, nil, "raw")
	p := NewBlobPacket(b)
	defer p.Release()
	defer b.Unref()

	data, err := p.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	w, err := UnmarshalComposed(data)
	if err != nil {
		t.Fatal(err)
	}
	if w.TypeName != pkttype.Blob.Name || len(w.Members) != 1 {
		t.Fatalf("unexpected wire shape: %+v", w)
	}
	if w.Members[0].Kind != "raw" || !bytes.Equal(w.Members[0].Raw, payload) {
		t.Fatalf("blob bytes did not round-trip: %+v", w.Members[0])
	}
}

func TestComposedWireRoundTrip(t *testing.T) {
	t.Parallel()

	ct, err := pkttype.Compose("tagged", []pkttype.Member{
		{Name: "tag", Type: "string"},
		{Name: "payload", Type: "blob"},
	})
	if err != nil {
		t.Fatal(err)
	}
	b := NewBlob([]byte("inner"), nil, "raw")
	comp, err := NewComposed(ct, []*Packet{NewString("k"), NewBlobPacket(b)})
	if err != nil {
		t.Fatal(err)
	}
	defer comp.Release()
	defer b.Unref()

	data, err := comp.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	w, err := UnmarshalComposed(data)
	if err != nil {
		t.Fatal(err)
	}
	if w.TypeName != "tagged" || len(w.Members) != 2 {
		t.Fatalf("unexpected wire shape: %+v", w)
	}
	if w.Members[0].Name != "tag" || string(w.Members[0].Raw) != "k" {
		t.Fatalf("string member did not round-trip: %+v", w.Members[0])
	}
	if w.Members[1].Name != "payload" {
		t.Fatalf("blob member name did not round-trip: %+v", w.Members[1])
	}
	// the blob member's raw bytes are themselves a nested wire encoding
	nested, err := UnmarshalComposed(w.Members[1].Raw)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(nested.Members[0].Raw, []byte("inner")) {
		t.Fatalf("nested blob bytes did not round-trip: %+v", nested.Members[0])
	}
}

func TestScalarHasNoWireForm(t *testing.T) {
	t.Parallel()

	if _, err := NewBoolean(true).MarshalBinary(); err == nil {
		t.Fatal("expected scalar packets to reject MarshalBinary")
	}
}
