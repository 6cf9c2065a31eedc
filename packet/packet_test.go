package packet

import (
	"testing"

	"github.com/solcore/flowrt/pkttype"
)

func TestStringPacketRoundTrip(t *testing.T) {
	t.Parallel()

	p := NewString("hello")
	v, ok := p.String()
	if !ok || v != "hello" {
		t.Fatalf("expected (hello, true), got (%q, %v)", v, ok)
	}
	if _, ok := p.Boolean(); ok {
		t.Fatal("expected Boolean accessor to fail on a STRING packet")
	}
}

func TestCloneIndependence(t *testing.T) {
	t.Parallel()

	p := NewIRange(IRangeValue{Val: 5, Min: 0, Max: 10, Step: 1})
	c := p.Clone()
	if c == p {
		t.Fatal("expected Clone to return a distinct packet")
	}
	cv, _ := c.IRange()
	if cv.Val != 5 {
		t.Errorf("expected cloned value 5, got %d", cv.Val)
	}
}

func TestBlobCloneRefsInsteadOfCopies(t *testing.T) {
	t.Parallel()

	b := NewBlob([]byte("payload"), nil, "raw")
	p := NewBlobPacket(b)
	if b.RefCount() != 2 {
		t.Fatalf("expected refcount 2 (caller + packet), got %d", b.RefCount())
	}

	clone := p.Clone()
	if b.RefCount() != 3 {
		t.Fatalf("expected refcount 3 after Clone, got %d", b.RefCount())
	}

	clone.Release()
	if b.RefCount() != 2 {
		t.Fatalf("expected refcount 2 after releasing the clone, got %d", b.RefCount())
	}

	p.Release()
	if b.RefCount() != 1 {
		t.Fatalf("expected refcount 1 after releasing the original packet, got %d", b.RefCount())
	}
}

func TestComposedPacketMembersAndRelease(t *testing.T) {
	t.Parallel()

	b := NewBlob([]byte("x"), nil, "raw")
	blobPkt := NewBlobPacket(b)
	b.Unref() // caller's own ref; blobPkt still holds one

	str := NewString("tag")
	ct, err := pkttype.Compose("blob-and-tag", []pkttype.Member{
		{Name: "payload", Type: "blob"},
		{Name: "tag", Type: "string"},
	})
	if err != nil {
		t.Fatal(err)
	}
	comp, err := NewComposed(ct, []*Packet{blobPkt, str})
	if err != nil {
		t.Fatal(err)
	}
	members, ok := comp.Members()
	if !ok || len(members) != 2 {
		t.Fatalf("expected 2 members, got %d (ok=%v)", len(members), ok)
	}

	comp.Release()
	if b.RefCount() != 0 {
		t.Fatalf("expected blob refcount 0 after releasing composed packet, got %d", b.RefCount())
	}
}
