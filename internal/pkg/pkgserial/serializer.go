package pkgserial

import (
	"context"
	"errors"
	"io"
	"sync"
)

var (
	// ErrConsumed is returned when a serializer is fed or built after Build.
	ErrConsumed = errors.New("serializer already built")

	// ErrDataNotEnough is returned when the fed bytes cannot produce a serial.
	ErrDataNotEnough = errors.New("given data is not enough to build a serial")
)

// Serializer accumulates bytes and turns them into a serial exactly once.
type Serializer interface {
	io.Writer

	// Feed appends data. It never blocks on I/O.
	Feed(data []byte) error

	// Build consumes the serializer and starts producing the serial.
	Build(ctx context.Context) *Task
}

// Strategy hands out fresh serializers sharing one configuration.
type Strategy interface {
	Kind() string
	Serializer() Serializer
}

// Contribute writes the bytes of c into s.
func Contribute(s Serializer, c io.WriterTo) error {
	_, err := c.WriteTo(s)
	return err
}

// Oneshot feeds every chunk into s, builds it and waits for the result.
func Oneshot(ctx context.Context, s Serializer, chunks ...[]byte) (string, error) {
	for _, chunk := range chunks {
		if err := s.Feed(chunk); err != nil {
			return "", err
		}
	}

	return s.Build(ctx).Await(ctx)
}

// Task is the pending result of Build.
type Task struct {
	done  chan struct{}
	value string
	err   error
}

func spawn(ctx context.Context, fn func(ctx context.Context) (string, error)) *Task {
	t := &Task{done: make(chan struct{})}

	go func() {
		defer close(t.done)
		t.value, t.err = fn(ctx)
	}()

	return t
}

func failed(err error) *Task {
	t := &Task{done: make(chan struct{}), err: err}
	close(t.done)
	return t
}

// Done is closed once the result is available.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Await waits for the result or for ctx to end. Giving up on a task leaves it
// running to completion on its own; nothing else observes its result.
func (t *Task) Await(ctx context.Context) (string, error) {
	select {
	case <-t.done:
		return t.value, t.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Result blocks until the task finishes.
func (t *Task) Result() (string, error) {
	<-t.done
	return t.value, t.err
}

// buffer is the feed state every serializer embeds.
type buffer struct {
	mu    sync.Mutex
	data  []byte
	built bool
}

func (b *buffer) Feed(data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.built {
		return ErrConsumed
	}
	b.data = append(b.data, data...)

	return nil
}

func (b *buffer) Write(p []byte) (int, error) {
	if err := b.Feed(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// take marks the buffer as built and hands over its bytes.
func (b *buffer) take() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.built {
		return nil, ErrConsumed
	}
	b.built = true

	data := b.data
	b.data = nil

	return data, nil
}

func (b *buffer) build(ctx context.Context, fn func(ctx context.Context, data []byte) (string, error)) *Task {
	data, err := b.take()
	if err != nil {
		return failed(err)
	}

	return spawn(ctx, func(ctx context.Context) (string, error) {
		return fn(ctx, data)
	})
}
