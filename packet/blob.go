package packet

import (
	"runtime"
	"sync/atomic"

	"github.com/solcore/flowrt/pkttype"

	// The BLOB refcounting scheme below hands raw memory to finalizer-driven
	// release while other goroutines may still hold a *Blob pointing at the
	// same backing array; assume-no-moving-gc documents (and, on the
	// toolchains that support it, enforces) that Go's collector never
	// relocates that backing array out from under an in-flight borrow.
	_ "go4.org/unsafe/assume-no-moving-gc"
)

// Blob is the opaque, reference-counted payload backing a BLOB packet.
// A child blob holds a strong reference to its Parent, whose lifetime
// strictly dominates the child's: Parent is only released once every
// child blob derived from it has itself reached a zero refcount.
type Blob struct {
	mem      []byte
	blobType string
	parent   *Blob
	refcount int32
}

// NewBlob constructs a Blob wrapping mem (not copied — ownership of the
// backing array transfers to the Blob) with an optional parent and a
// caller-defined blob type tag (e.g. "image/png", "raw"). The returned
// Blob starts with a refcount of 1, held by the caller.
func NewBlob(mem []byte, parent *Blob, blobType string) *Blob {
	if parent != nil {
		parent.Ref()
	}
	b := &Blob{mem: mem, blobType: blobType, parent: parent}
	atomic.StoreInt32(&b.refcount, 1)
	runtime.SetFinalizer(b, (*Blob).finalize)
	return b
}

// NewBlobPacket wraps b in a BLOB packet. The packet holds its own
// reference, independent of whatever reference the caller already held.
func NewBlobPacket(b *Blob) *Packet {
	b.Ref()
	return newSimple(pkttype.Blob, b)
}

// Blob returns the stored *Blob view; ok is false if p is not BLOB. The
// returned Blob is borrowed for the packet's lifetime; call Ref on it to
// retain a reference beyond that.
func (p *Packet) Blob() (*Blob, bool) {
	b, ok := p.value.(*Blob)
	return b, ok
}

// Mem returns the borrowed backing bytes. Callers must not retain mem
// past the packet's (or an explicitly Ref'd Blob's) lifetime.
func (b *Blob) Mem() []byte { return b.mem }

// Size returns len(Mem()).
func (b *Blob) Size() int { return len(b.mem) }

// Type returns the caller-defined blob type tag.
func (b *Blob) Type() string { return b.blobType }

// Parent returns the parent blob, or nil if this blob has none.
func (b *Blob) Parent() *Blob { return b.parent }

// RefCount returns the current reference count, for the invariant checks
// in the testable-properties section and for the debug render format.
func (b *Blob) RefCount() int32 { return atomic.LoadInt32(&b.refcount) }

// Ref increments the reference count. Safe to call concurrently, though
// the runtime otherwise assumes single-threaded flow execution.
func (b *Blob) Ref() {
	atomic.AddInt32(&b.refcount, 1)
}

// Unref decrements the reference count and releases the parent chain once
// it reaches zero.
func (b *Blob) Unref() {
	if atomic.AddInt32(&b.refcount, -1) == 0 {
		runtime.SetFinalizer(b, nil)
		b.finalize()
	}
}

func (b *Blob) finalize() {
	b.mem = nil
	if b.parent != nil {
		b.parent.Unref()
		b.parent = nil
	}
}
