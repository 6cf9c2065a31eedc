package pkttype

import (
	"sync"

	"github.com/armon/go-radix"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/solcore/flowrt/flowerr"
)

// Registry owns every known packet type: the built-ins, anything registered
// by name, and composed (tuple) types built on demand. Composed-type
// construction deduplicates structurally identical tuples through a bounded
// LRU keyed by the tuple's structural key, so long-running processes that
// assemble many transient composed types (one per RPC call, say) don't
// leak descriptors. Composed types live only in that LRU, never in the
// by-name table, and Shutdown purges the LRU.
type Registry struct {
	mu       sync.RWMutex
	byName   map[string]*Type
	byCat    *radix.Tree
	composed *lru.Cache[string, *Type]
}

var global = newRegistry()

func newRegistry() *Registry {
	c, err := lru.New[string, *Type](256)
	if err != nil {
		// fixed, compile-time-constant size; only invalid (<=0) sizes error
		panic(err)
	}
	return &Registry{
		byName:   make(map[string]*Type),
		byCat:    radix.New(),
		composed: c,
	}
}

// Register adds a new named, non-composed type to the global registry.
// Fails with AlreadyExists if name is already registered with a different
// layout; re-registering an identical layout is a no-op success.
func Register(t *Type) error {
	return global.register(t)
}

func mustRegister(t *Type) {
	if err := Register(t); err != nil {
		panic(err)
	}
}

func (r *Registry) register(t *Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byName[t.Name]; ok {
		if existing.Key() == t.Key() {
			return nil
		}
		return flowerr.New(flowerr.AlreadyExists, "packet type %q already registered with a different layout", t.Name)
	}
	r.byName[t.Name] = t
	r.byCat.Insert(t.Category+"/"+t.Name, t)
	return nil
}

// Lookup finds a registered type by exact name.
func Lookup(name string) (*Type, bool) {
	global.mu.RLock()
	defer global.mu.RUnlock()
	t, ok := global.byName[name]
	return t, ok
}

// ByCategoryPrefix lists every registered (non-composed) type whose
// registry key starts with prefix, e.g. ByCategoryPrefix("data/") lists
// every numeric/string/blob/etc type. Used by the `flowrun types` CLI
// subcommand and by node-type category listings.
func ByCategoryPrefix(prefix string) []*Type {
	global.mu.RLock()
	defer global.mu.RUnlock()

	var out []*Type
	global.byCat.WalkPrefix(prefix, func(_ string, v interface{}) bool {
		out = append(out, v.(*Type))
		return false
	})
	return out
}

// Compose returns (creating if necessary) the composed packet type whose
// ordered members are exactly members. Two calls with the same ordered
// (name, type) pairs return the identical *Type, even if members itself
// is a freshly built slice each time, as long as that type is still in
// the 256-entry LRU cache (and Shutdown has not purged it); after an
// eviction a new, structurally equal *Type is built, which Accepts still
// treats as the same type.
func Compose(name string, members []Member) (*Type, error) {
	return global.compose(name, members)
}

func (r *Registry) compose(name string, members []Member) (*Type, error) {
	candidate := &Type{Name: name, Composed: true, Members: members}
	key := candidate.Key()

	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.composed.Get(key); ok {
		return cached, nil
	}

	var offset uint16
	for i := range members {
		members[i].Offset = offset
		offset += members[i].Size
	}
	candidate.DataSize = offset

	r.composed.Add(key, candidate)
	return candidate, nil
}

// Shutdown releases every composed descriptor owned by the registry. Only
// meaningful for tests that want a clean slate between cases; built-in and
// explicitly Register-ed types are process lifetime and unaffected.
func Shutdown() {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.composed.Purge()
}
