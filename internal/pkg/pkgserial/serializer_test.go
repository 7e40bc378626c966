package pkgserial

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/gosend/internal/pkg/pkguid"
)

type echoSerializer struct {
	buffer
	release chan struct{}
}

func newEcho() *echoSerializer {
	return &echoSerializer{release: make(chan struct{})}
}

func (e *echoSerializer) Build(ctx context.Context) *Task {
	return e.build(ctx, func(_ context.Context, data []byte) (string, error) {
		<-e.release
		return string(data), nil
	})
}

func TestFeedAfterBuildIsRejected(t *testing.T) {
	s := newEcho()
	close(s.release)

	if err := s.Feed([]byte("ab")); err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if _, err := s.Write([]byte("cd")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	task := s.Build(context.Background())

	if err := s.Feed([]byte("x")); !errors.Is(err, ErrConsumed) {
		t.Fatalf("expected ErrConsumed from Feed, got %v", err)
	}
	if n, err := s.Write([]byte("x")); n != 0 || !errors.Is(err, ErrConsumed) {
		t.Fatalf("expected ErrConsumed from Write, got %d, %v", n, err)
	}
	if _, err := s.Build(context.Background()).Result(); !errors.Is(err, ErrConsumed) {
		t.Fatalf("expected ErrConsumed from second Build, got %v", err)
	}

	got, err := task.Result()
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if got != "abcd" {
		t.Fatalf("expected abcd, got %q", got)
	}
}

func TestAwaitCancelledLeavesTaskIntact(t *testing.T) {
	s := newEcho()
	if err := s.Feed([]byte("data")); err != nil {
		t.Fatalf("Feed: %v", err)
	}
	task := s.Build(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := task.Await(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	close(s.release)

	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("task did not finish")
	}
	if got, err := task.Result(); err != nil || got != "data" {
		t.Fatalf("expected data, got %q, %v", got, err)
	}
}

func TestOneshotAndContribute(t *testing.T) {
	s := newEcho()
	close(s.release)

	tok := pkguid.Compose(1, 2, 3)
	if err := Contribute(s, tok); err != nil {
		t.Fatalf("Contribute: %v", err)
	}

	got, err := Oneshot(context.Background(), s, []byte("!"))
	if err != nil {
		t.Fatalf("Oneshot: %v", err)
	}

	b := tok.Bytes()
	if want := string(b[:]) + "!"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
