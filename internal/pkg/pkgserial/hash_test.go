package pkgserial

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestHashDeterministicForSameSalt(t *testing.T) {
	salt := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	data := []byte("invoice-2024-0001")

	for _, version := range []int{3, 5} {
		a, err := NewHash(version, salt)
		if err != nil {
			t.Fatalf("NewHash: %v", err)
		}
		b, err := NewHash(version, salt)
		if err != nil {
			t.Fatalf("NewHash: %v", err)
		}

		first, err := Oneshot(context.Background(), a.Serializer(), data)
		if err != nil {
			t.Fatalf("Oneshot: %v", err)
		}
		second, err := Oneshot(context.Background(), b.Serializer(), data)
		if err != nil {
			t.Fatalf("Oneshot: %v", err)
		}
		if first != second {
			t.Fatalf("v%d: expected identical output, got %q and %q", version, first, second)
		}

		parsed, err := uuid.Parse(first)
		if err != nil {
			t.Fatalf("expected uuid, got %q", first)
		}
		if int(parsed.Version()) != version {
			t.Fatalf("expected version %d, got %d", version, parsed.Version())
		}
		if parsed.Variant() != uuid.RFC4122 {
			t.Fatalf("unexpected variant %v", parsed.Variant())
		}
	}
}

func TestHashDiffersAcrossSalts(t *testing.T) {
	a, err := NewHash(5, uuid.Nil)
	if err != nil {
		t.Fatalf("NewHash: %v", err)
	}
	b, err := NewHash(5, uuid.Nil)
	if err != nil {
		t.Fatalf("NewHash: %v", err)
	}
	if a.Salt() == b.Salt() {
		t.Fatal("expected random salts to differ")
	}

	data := []byte("same bytes")
	first, err := Oneshot(context.Background(), a.Serializer(), data)
	if err != nil {
		t.Fatalf("Oneshot: %v", err)
	}
	second, err := Oneshot(context.Background(), b.Serializer(), data)
	if err != nil {
		t.Fatalf("Oneshot: %v", err)
	}
	if first == second {
		t.Fatalf("expected different output, got %q twice", first)
	}
}

func TestHashRequiresData(t *testing.T) {
	s, err := NewHash(3, uuid.Nil)
	if err != nil {
		t.Fatalf("NewHash: %v", err)
	}
	if _, err := Oneshot(context.Background(), s.Serializer()); !errors.Is(err, ErrDataNotEnough) {
		t.Fatalf("expected ErrDataNotEnough, got %v", err)
	}
}

func TestHashV4IgnoresData(t *testing.T) {
	s, err := NewHash(4, uuid.Nil)
	if err != nil {
		t.Fatalf("NewHash: %v", err)
	}
	got, err := Oneshot(context.Background(), s.Serializer())
	if err != nil {
		t.Fatalf("Oneshot: %v", err)
	}
	if parsed, err := uuid.Parse(got); err != nil || parsed.Version() != 4 {
		t.Fatalf("expected v4 uuid, got %q", got)
	}
	if s.Kind() != KindUUID4 {
		t.Fatalf("unexpected kind %q", s.Kind())
	}
}

func TestHashUnsupportedVersion(t *testing.T) {
	if _, err := NewHash(7, uuid.Nil); !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
}
