package builtin

import "github.com/solcore/flowrt/node"

// Registry holds every node type this package defines, populated by
// init. specfile and cmd/flowrun use it as the base registry, typically
// wrapped or extended with embedder-specific node types.
var Registry = node.NewRegistry()

func init() {
	for _, t := range []*node.Type{Const, IntSrc, IntSink, Timer, Console, Exec, BlobSource} {
		if err := Registry.Register(t); err != nil {
			panic(err)
		}
	}
}
