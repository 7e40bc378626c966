package pkguid

import "testing"

func TestSnowflakeNodeIDRange(t *testing.T) {
	for _, device := range []string{"0", "1", "1023", "65535", ""} {
		id := snowflakeNodeID(NewFingerprint(device, 77))
		if id < 0 || id > 1023 {
			t.Fatalf("device %q: expected id within 0..1023, got %d", device, id)
		}
	}
}

func TestSnowflakeGenerateUnique(t *testing.T) {
	gen, err := NewSnowflake(NewFingerprint("3", 1))
	if err != nil {
		t.Fatalf("NewSnowflake: %v", err)
	}
	id1 := gen.Generate()
	id2 := gen.Generate()
	if id1 == id2 {
		t.Fatalf("expected unique ids, got %d and %d", id1, id2)
	}
}
