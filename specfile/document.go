// Package specfile implements the YAML flow-graph loader (C12): parsing a
// declarative document of nodes, connections, and exported ports into a
// container.Spec, the same static shape a hand-written Go program would
// build by literal.
package specfile

import (
	"io"

	"gopkg.in/yaml.v3"
)

// Document is the on-disk shape of a flow graph.
type Document struct {
	Name        string     `yaml:"name"`
	Nodes       []NodeDoc  `yaml:"nodes"`
	Connections []ConnDoc  `yaml:"connections"`
	Exports     ExportsDoc `yaml:"exports"`
}

// NodeDoc declares one child node: an instance name, the registered node
// type to instantiate it from, and textual option overrides.
type NodeDoc struct {
	Name    string         `yaml:"name"`
	Type    string         `yaml:"type"`
	Options map[string]any `yaml:"options"`
}

// ConnDoc is one edge, addressed as "nodeName.portName" on each side.
// portName "ERROR" addresses a node's implicit error output.
type ConnDoc struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// ExportsDoc lists the graph's own input and output ports, each aliasing
// one child's port.
type ExportsDoc struct {
	In  []PortExportDoc `yaml:"in"`
	Out []PortExportDoc `yaml:"out"`
}

// PortExportDoc names an exported port and the child port it aliases.
type PortExportDoc struct {
	Name string `yaml:"name"`
	Node string `yaml:"node"`
	Port string `yaml:"port"`
}

// Load decodes a single YAML document from r.
func Load(r io.Reader) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
