package pkgserial

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func plusOne(_ context.Context, current int64) (int64, error) {
	if current == Uninitialized {
		return Uninitialized, nil
	}
	return current + 1, nil
}

func TestCounterFormat(t *testing.T) {
	s := NewCounter(IncrementFunc(plusOne), WithPrefix("INV"), WithPadding(6), WithStart(41))

	got, err := Oneshot(context.Background(), s.Serializer())
	if err != nil {
		t.Fatalf("Oneshot: %v", err)
	}
	if !strings.HasPrefix(got, "INV000042") {
		t.Fatalf("expected INV000042 prefix, got %q", got)
	}
	if len(got) != len("INV000042")+2 {
		t.Fatalf("expected two digit suffix, got %q", got)
	}

	next, err := Oneshot(context.Background(), s.Serializer())
	if err != nil {
		t.Fatalf("Oneshot: %v", err)
	}
	if !strings.HasPrefix(next, "INV000043") {
		t.Fatalf("expected INV000043 prefix, got %q", next)
	}
}

func TestCounterUninitialized(t *testing.T) {
	s := NewCounter(IncrementFunc(plusOne))
	if _, err := Oneshot(context.Background(), s.Serializer()); !errors.Is(err, ErrUninitialized) {
		t.Fatalf("expected ErrUninitialized, got %v", err)
	}
}

func TestCounterNotIncreasing(t *testing.T) {
	s := NewCounter(IncrementFunc(func(_ context.Context, current int64) (int64, error) {
		return current, nil
	}), WithStart(5))
	if _, err := Oneshot(context.Background(), s.Serializer()); !errors.Is(err, ErrNotIncreasing) {
		t.Fatalf("expected ErrNotIncreasing, got %v", err)
	}
}

func TestCounterEngineError(t *testing.T) {
	errEngine := errors.New("engine down")
	s := NewCounter(IncrementFunc(func(context.Context, int64) (int64, error) {
		return 0, errEngine
	}), WithStart(0))
	if _, err := Oneshot(context.Background(), s.Serializer()); !errors.Is(err, errEngine) {
		t.Fatalf("expected engine error, got %v", err)
	}
}

func TestNextSuffixRotates(t *testing.T) {
	seen := map[uint8]struct{}{}
	for i := 0; i < 16; i++ {
		seen[nextSuffix()] = struct{}{}
	}
	if len(seen) < 2 {
		t.Fatalf("expected suffix to change, got %v", seen)
	}
}
