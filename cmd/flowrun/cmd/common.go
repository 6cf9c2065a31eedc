package cmd

import (
	"fmt"
	"os"

	"github.com/solcore/flowrt/builtin"
	"github.com/solcore/flowrt/node"
	"github.com/solcore/flowrt/specfile"
)

// loadGraph reads and compiles the specfile at path against the built-in
// node registry, returning a node.Type ready to node.New as the program's
// root container.
func loadGraph(path string) (*node.Type, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := specfile.Load(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	t, err := specfile.Compile(doc, builtin.Registry)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", path, err)
	}
	return t, nil
}
