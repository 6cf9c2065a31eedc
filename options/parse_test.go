package options

import "testing"

var testSchema = Schema{
	{Name: "name", Type: "string", Default: "node"},
	{Name: "count", Type: "irange-spec", Default: "5|min:0|max:10"},
	{Name: "enabled", Type: "bool", Default: "true"},
}

func TestParseDefaults(t *testing.T) {
	t.Parallel()

	v, err := Parse(testSchema, nil)
	if err != nil {
		t.Fatal(err)
	}
	name, _ := v.Get("name")
	if name != "node" {
		t.Errorf("expected default name, got %v", name)
	}
	count, _ := v.Get("count")
	spec := count.(IRangeSpec)
	if spec.Val != 5 {
		t.Errorf("expected default count 5, got %d", spec.Val)
	}
}

func TestParseOverridesAndErrors(t *testing.T) {
	t.Parallel()

	v, err := Parse(testSchema, []string{"name=widget", "enabled=false"})
	if err != nil {
		t.Fatal(err)
	}
	name, _ := v.Get("name")
	if name != "widget" {
		t.Errorf("expected overridden name, got %v", name)
	}

	if _, err := Parse(testSchema, []string{"bogus=1"}); err == nil {
		t.Fatal("expected UnknownOption error")
	}
	if _, err := Parse(testSchema, []string{"name=a", "name=b"}); err == nil {
		t.Fatal("expected DuplicateOption error")
	}
	if _, err := Parse(testSchema, []string{"noequals"}); err == nil {
		t.Fatal("expected malformed-entry error")
	}
}

func TestIRangeSpecClamps(t *testing.T) {
	t.Parallel()

	v, err := Parse(testSchema, []string{"count=99|min:0|max:10"})
	if err != nil {
		t.Fatal(err)
	}
	count, _ := v.Get("count")
	spec := count.(IRangeSpec)
	if spec.Val != 10 {
		t.Errorf("expected value clamped to max 10, got %d", spec.Val)
	}
}

func TestEntriesRoundTrip(t *testing.T) {
	t.Parallel()

	v, err := Parse(testSchema, []string{"name=widget", "count=7|min:0|max:10"})
	if err != nil {
		t.Fatal(err)
	}
	v2, err := Parse(testSchema, v.Entries())
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range testSchema {
		a, _ := v.Get(m.Name)
		b, _ := v2.Get(m.Name)
		if a != b {
			t.Errorf("member %q did not round-trip: %v != %v", m.Name, a, b)
		}
	}
}

func TestParseRGBSpec(t *testing.T) {
	t.Parallel()

	hex, err := parseRGBSpec("#FF8000")
	if err != nil {
		t.Fatal(err)
	}
	if hex.Red != 0xFF || hex.Green != 0x80 || hex.Blue != 0x00 {
		t.Errorf("unexpected hex decode: %+v", hex)
	}

	dec, err := parseRGBSpec("1,2,3")
	if err != nil {
		t.Fatal(err)
	}
	if dec.Red != 1 || dec.Green != 2 || dec.Blue != 3 {
		t.Errorf("unexpected decimal decode: %+v", dec)
	}
}

func TestParseVectorSpec(t *testing.T) {
	t.Parallel()

	v, err := parseVectorSpec("1,2,3")
	if err != nil {
		t.Fatal(err)
	}
	if v.X != 1 || v.Y != 2 || v.Z != 3 || v.W != 0 {
		t.Errorf("unexpected 3-component decode: %+v", v)
	}

	v4, err := parseVectorSpec("1,2,3,4")
	if err != nil {
		t.Fatal(err)
	}
	if v4.W != 4 {
		t.Errorf("expected w=4, got %v", v4.W)
	}

	if _, err := parseVectorSpec("1,2"); err == nil {
		t.Fatal("expected error for too few components")
	}
}
