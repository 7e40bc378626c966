package pkguid

import (
	"testing"

	"github.com/oklog/ulid/v2"
)

func TestULIDGenerateSorted(t *testing.T) {
	gen := NewULID()

	prev := gen.Generate()
	if _, err := ulid.Parse(prev); err != nil {
		t.Fatalf("expected valid ulid, got %q", prev)
	}

	for i := 0; i < 100; i++ {
		next := gen.Generate()
		if next <= prev {
			t.Fatalf("expected %q > %q", next, prev)
		}
		prev = next
	}
}
