package node

import (
	"sync"

	"github.com/armon/go-radix"

	"github.com/solcore/flowrt/flowerr"
)

// Registry is a process-wide table of node types, looked up by name for
// instantiation and by category path for the `flowrun types` listing.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Type
	byCat  *radix.Tree
}

// NewRegistry builds an empty registry. Built-in node types live in their
// own registry, builtin.Registry, filled by that package's init();
// embedders that want isolation from the built-ins construct their own
// Registry instead of using builtin.Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Type), byCat: radix.New()}
}

// Register adds t to r. Fails with AlreadyExists if a different type is
// already registered under the same name.
func (r *Registry) Register(t *Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byName[t.Name]; ok && existing != t {
		return flowerr.New(flowerr.AlreadyExists, "node type %q already registered", t.Name)
	}
	r.byName[t.Name] = t
	r.byCat.Insert(t.Category+"/"+t.Name, t)
	return nil
}

// Lookup finds a node type by exact name.
func (r *Registry) Lookup(name string) (*Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[name]
	return t, ok
}

// Dispose runs every registered type's DisposeType hook, for types that
// carry class-level state set up by InitType. Called once at process
// shutdown; the registry stays usable afterwards for lookup, but
// re-instantiating a disposed type is the embedder's own mistake.
func (r *Registry) Dispose() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.byName {
		if t.DisposeType != nil {
			t.DisposeType()
		}
	}
}

// ByCategoryPrefix lists every node type whose category path is prefixed
// by prefix, e.g. "ctl/" or "io/".
func (r *Registry) ByCategoryPrefix(prefix string) []*Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Type
	r.byCat.WalkPrefix(prefix, func(_ string, v interface{}) bool {
		out = append(out, v.(*Type))
		return false
	})
	return out
}
