// Package options implements the options parser (C10): building a typed
// options record from an ordered sequence of key=value textual entries,
// or from a parsed YAML mapping, against a node type's declared schema.
package options

// Member describes one named option: its textual type and default value
// (itself textual, parsed the same way an override value would be).
type Member struct {
	Name    string
	Type    string // "bool", "byte", "int", "float", "irange-spec", "drange-spec", "string", "rgb", "direction-vector"
	Default string
}

// Schema is an ordered list of option members, declared by a node type.
type Schema []Member

func (s Schema) find(name string) (Member, bool) {
	for _, m := range s {
		if m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}

// Values is a fully-resolved options record: every schema member has a
// value, either from an override or its schema default. Values is owned
// by whoever called Parse; a node's Open must copy out whatever it wants
// to retain past the call.
type Values struct {
	schema Schema
	raw    map[string]any
}

// Get returns the raw parsed value for name (one of bool, byte, int64,
// float64, string, IRangeSpec, DRangeSpec, RGBSpec, VectorSpec) and
// whether name is a known schema member.
func (v *Values) Get(name string) (any, bool) {
	val, ok := v.raw[name]
	return val, ok
}

// IRangeSpec is the parsed form of an "irange-spec" option, e.g.
// "min:0|max:100|step:1" plus a starting value.
type IRangeSpec struct{ Val, Min, Max, Step int64 }

// DRangeSpec is the parsed form of a "drange-spec" option.
type DRangeSpec struct{ Val, Min, Max, Step float64 }

// RGBSpec is the parsed form of an "rgb" option ("R,G,B" or "#RRGGBB").
type RGBSpec struct{ Red, Green, Blue uint32 }

// VectorSpec is the parsed form of a "direction-vector" option
// ("x,y,z[,w]").
type VectorSpec struct{ X, Y, Z, W float64 }
