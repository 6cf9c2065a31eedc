package pkttype

import "testing"

func TestBuiltinLookup(t *testing.T) {
	t.Parallel()

	tp, ok := Lookup("STRING")
	if !ok || tp != String {
		t.Fatal("expected STRING to resolve to the built-in String type")
	}
	if _, ok := Lookup("NOPE"); ok {
		t.Fatal("expected unknown type name to miss")
	}
}

func TestAnyAcceptsEverything(t *testing.T) {
	t.Parallel()

	if !Any.Accepts(String) {
		t.Error("ANY should accept STRING")
	}
	if !Any.Accepts(Blob) {
		t.Error("ANY should accept BLOB")
	}
	if String.Accepts(Any) {
		t.Error("a port declared STRING should not accept a packet whose actual type is ANY")
	}
	if String.Accepts(Byte) {
		t.Error("STRING should not accept BYTE")
	}
}

func TestComposeDedup(t *testing.T) {
	t.Parallel()
	defer Shutdown()

	members := []Member{
		{Name: "a", Type: "int32", Size: 4},
		{Name: "b", Type: "float64", Size: 8},
	}
	t1, err := Compose("pair", members)
	if err != nil {
		t.Fatal(err)
	}
	t2, err := Compose("pair", []Member{
		{Name: "a", Type: "int32", Size: 4},
		{Name: "b", Type: "float64", Size: 8},
	})
	if err != nil {
		t.Fatal(err)
	}
	if t1 != t2 {
		t.Fatal("expected structurally identical composed types to dedup to the same *Type")
	}
	if t1.Members[1].Offset != 4 {
		t.Errorf("expected second member offset 4, got %d", t1.Members[1].Offset)
	}
}

func TestByCategoryPrefix(t *testing.T) {
	t.Parallel()

	found := ByCategoryPrefix("data/")
	if len(found) == 0 {
		t.Fatal("expected at least one data/* built-in type")
	}
	for _, tp := range found {
		if len(tp.Category) < 5 || tp.Category[:5] != "data/" {
			t.Errorf("ByCategoryPrefix returned %s outside data/ prefix", tp.Category)
		}
	}
}
