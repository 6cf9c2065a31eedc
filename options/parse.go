package options

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/solcore/flowrt/flowerr"
)

// Parse builds a Values record from an ordered sequence of "name=value"
// textual entries against schema. Every schema member not named in
// entries receives its declared default. Unknown names fail with
// UnknownOption; duplicate names fail with DuplicateOption; values
// outside a declared range are clamped with a logged WARN, not a failure.
func Parse(schema Schema, entries []string) (*Values, error) {
	seen := make(map[string]bool, len(entries))
	overrides := make(map[string]string, len(entries))
	for _, e := range entries {
		name, value, ok := strings.Cut(e, "=")
		if !ok {
			return nil, flowerr.New(flowerr.UnknownOption, "malformed option entry %q, want name=value", e)
		}
		if _, ok := schema.find(name); !ok {
			return nil, flowerr.New(flowerr.UnknownOption, "unknown option %q", name)
		}
		if seen[name] {
			return nil, flowerr.New(flowerr.DuplicateOption, "duplicate option %q", name)
		}
		seen[name] = true
		overrides[name] = value
	}
	return build(schema, overrides)
}

// ParseMap builds a Values record from a parsed YAML/JSON mapping (string
// keys, scalar-ish values rendered via fmt.Sprint), using the same
// per-member parsing and clamping rules as Parse. specfile does not call
// it: it renders a node's YAML `options:` block into "name=value" entries
// that the container hands to Parse.
func ParseMap(schema Schema, m map[string]any) (*Values, error) {
	overrides := make(map[string]string, len(m))
	for name, v := range m {
		if _, ok := schema.find(name); !ok {
			return nil, flowerr.New(flowerr.UnknownOption, "unknown option %q", name)
		}
		overrides[name] = fmt.Sprint(v)
	}
	return build(schema, overrides)
}

func build(schema Schema, overrides map[string]string) (*Values, error) {
	v := &Values{schema: schema, raw: make(map[string]any, len(schema))}
	for _, m := range schema {
		text, ok := overrides[m.Name]
		if !ok {
			text = m.Default
		}
		parsed, err := parseOne(m, text)
		if err != nil {
			return nil, err
		}
		v.raw[m.Name] = parsed
	}
	return v, nil
}

func parseOne(m Member, text string) (any, error) {
	switch m.Type {
	case "bool", "boolean":
		return strconv.ParseBool(text)
	case "byte":
		n, err := strconv.ParseUint(text, 0, 8)
		return byte(n), err
	case "int":
		return strconv.ParseInt(text, 10, 64)
	case "float":
		return strconv.ParseFloat(text, 64)
	case "string":
		return text, nil
	case "irange-spec":
		return parseIRangeSpec(m.Name, text)
	case "drange-spec":
		return parseDRangeSpec(m.Name, text)
	case "rgb":
		return parseRGBSpec(text)
	case "direction-vector":
		return parseVectorSpec(text)
	default:
		return nil, flowerr.New(flowerr.UnknownOption, "option %q has unknown textual type %q", m.Name, m.Type)
	}
}

// parseIRangeSpec parses "VAL|min:M|max:X|step:S" (any field after the
// leading value may be omitted), clamping VAL into [M, X] with a logged
// warning rather than failing.
func parseIRangeSpec(name, text string) (IRangeSpec, error) {
	spec := IRangeSpec{Min: -1 << 31, Max: 1<<31 - 1, Step: 1}
	parts := strings.Split(text, "|")
	if len(parts) == 0 {
		return spec, flowerr.New(flowerr.UnknownOption, "empty irange-spec for %q", name)
	}
	val, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return spec, flowerr.New(flowerr.UnknownOption, "irange-spec %q: %v", name, err)
	}
	spec.Val = val
	for _, kv := range parts[1:] {
		k, v, ok := strings.Cut(kv, ":")
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		switch k {
		case "min":
			spec.Min = n
		case "max":
			spec.Max = n
		case "step":
			spec.Step = n
		}
	}
	if spec.Val < spec.Min {
		logrus.Warnf("option %q: value %d below min %d, clamping", name, spec.Val, spec.Min)
		spec.Val = spec.Min
	}
	if spec.Val > spec.Max {
		logrus.Warnf("option %q: value %d above max %d, clamping", name, spec.Val, spec.Max)
		spec.Val = spec.Max
	}
	return spec, nil
}

func parseDRangeSpec(name, text string) (DRangeSpec, error) {
	spec := DRangeSpec{Min: -1e308, Max: 1e308, Step: 1}
	parts := strings.Split(text, "|")
	if len(parts) == 0 {
		return spec, flowerr.New(flowerr.UnknownOption, "empty drange-spec for %q", name)
	}
	val, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return spec, flowerr.New(flowerr.UnknownOption, "drange-spec %q: %v", name, err)
	}
	spec.Val = val
	for _, kv := range parts[1:] {
		k, v, ok := strings.Cut(kv, ":")
		if !ok {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			continue
		}
		switch k {
		case "min":
			spec.Min = n
		case "max":
			spec.Max = n
		case "step":
			spec.Step = n
		}
	}
	if spec.Val < spec.Min {
		logrus.Warnf("option %q: value %g below min %g, clamping", name, spec.Val, spec.Min)
		spec.Val = spec.Min
	}
	if spec.Val > spec.Max {
		logrus.Warnf("option %q: value %g above max %g, clamping", name, spec.Val, spec.Max)
		spec.Val = spec.Max
	}
	return spec, nil
}

func parseRGBSpec(text string) (RGBSpec, error) {
	if strings.HasPrefix(text, "#") {
		n, err := strconv.ParseUint(text[1:], 16, 32)
		if err != nil {
			return RGBSpec{}, err
		}
		return RGBSpec{Red: uint32(n >> 16 & 0xFF), Green: uint32(n >> 8 & 0xFF), Blue: uint32(n & 0xFF)}, nil
	}
	parts := strings.Split(text, ",")
	if len(parts) != 3 {
		return RGBSpec{}, flowerr.New(flowerr.UnknownOption, "rgb spec %q wants R,G,B or #RRGGBB", text)
	}
	var out [3]uint32
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return RGBSpec{}, err
		}
		out[i] = uint32(n)
	}
	return RGBSpec{Red: out[0], Green: out[1], Blue: out[2]}, nil
}

func parseVectorSpec(text string) (VectorSpec, error) {
	parts := strings.Split(text, ",")
	if len(parts) < 3 || len(parts) > 4 {
		return VectorSpec{}, flowerr.New(flowerr.UnknownOption, "direction-vector spec %q wants x,y,z[,w]", text)
	}
	var out [4]float64
	for i, p := range parts {
		n, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return VectorSpec{}, err
		}
		out[i] = n
	}
	return VectorSpec{X: out[0], Y: out[1], Z: out[2], W: out[3]}, nil
}
