package options

import (
	"fmt"
	"strconv"
)

// Entries renders v back to the textual "name=value" form Parse accepts,
// one entry per schema member in declaration order. Parse(schema,
// v.Entries()) reproduces v exactly, which is what the round-trip test
// in parse_test.go relies on.
func (v *Values) Entries() []string {
	out := make([]string, 0, len(v.schema))
	for _, m := range v.schema {
		out = append(out, m.Name+"="+renderValue(v.raw[m.Name]))
	}
	return out
}

func renderValue(val any) string {
	switch t := val.(type) {
	case bool:
		return strconv.FormatBool(t)
	case byte:
		return strconv.FormatUint(uint64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case string:
		return t
	case IRangeSpec:
		return fmt.Sprintf("%d|min:%d|max:%d|step:%d", t.Val, t.Min, t.Max, t.Step)
	case DRangeSpec:
		return fmt.Sprintf("%g|min:%g|max:%g|step:%g", t.Val, t.Min, t.Max, t.Step)
	case RGBSpec:
		return fmt.Sprintf("%d,%d,%d", t.Red, t.Green, t.Blue)
	case VectorSpec:
		return fmt.Sprintf("%g,%g,%g,%g", t.X, t.Y, t.Z, t.W)
	default:
		return fmt.Sprint(t)
	}
}
