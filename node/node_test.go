package node

import (
	"testing"

	"github.com/solcore/flowrt/flowerr"
	"github.com/solcore/flowrt/options"
	"github.com/solcore/flowrt/port"
)

func TestEnsureInitRunsOnce(t *testing.T) {
	t.Parallel()

	calls := 0
	tp := &Type{Name: "counted", InitType: func() error { calls++; return nil }}
	for i := 0; i < 3; i++ {
		if err := tp.EnsureInit(); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected InitType to run exactly once, ran %d times", calls)
	}
}

func TestErrorPortIndexIsPastDeclaredOutputs(t *testing.T) {
	t.Parallel()

	tp := &Type{Name: "two-out", PortsOut: []port.Type{{Name: "A"}, {Name: "B"}}}
	if got := tp.ErrorPortIndex(); got != 2 {
		t.Fatalf("expected error port index 2, got %d", got)
	}
	if _, ok := tp.PortOut(2); ok {
		t.Fatal("the implicit error port must not appear among declared outputs")
	}
}

func TestNewGeneratesDisplayIDWhenEmpty(t *testing.T) {
	t.Parallel()

	tp := &Type{Name: "anon"}
	inst, err := New(tp, "", 0, 0, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if inst.ID == "" || inst.DisplayID() == "" {
		t.Fatal("expected a generated id for an anonymous instance")
	}

	named, err := New(tp, "explicit", 0, 0, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if named.DisplayID() != "explicit" {
		t.Fatalf("expected explicit id to win, got %q", named.DisplayID())
	}
}

func TestOpenFailurePropagates(t *testing.T) {
	t.Parallel()

	tp := &Type{
		Name: "bad",
		Open: func(_ *Instance, _ *options.Values) (any, error) {
			return nil, flowerr.New(flowerr.OutOfMemory, "nope")
		},
	}
	if _, err := New(tp, "x", 0, 0, nil, nil, nil); !flowerr.Is(err, flowerr.OutOfMemory) {
		t.Fatalf("expected OutOfMemory from Open, got %v", err)
	}
}
