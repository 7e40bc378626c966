package pkgserial

import (
	"context"
	"errors"
	"fmt"
	"math/bits"
	"sync"
	"sync/atomic"

	"github.com/shandysiswandi/gosend/internal/pkg/pkguid"
)

// KindCounter names the auto-increment strategy.
const KindCounter = "counter"

// Uninitialized is the counter value before any start was set. An engine
// returning it reports that it has nothing to continue from.
const Uninitialized int64 = -1

var (
	// ErrUninitialized is returned when the engine reports Uninitialized.
	ErrUninitialized = errors.New("counter is not initialized")

	// ErrNotIncreasing is returned when the engine does not move forward.
	ErrNotIncreasing = errors.New("counter engine did not increase the value")
)

// Incrementer produces the value following current.
type Incrementer interface {
	Incr(ctx context.Context, current int64) (int64, error)
}

// IncrementFunc adapts a function to Incrementer.
type IncrementFunc func(ctx context.Context, current int64) (int64, error)

func (f IncrementFunc) Incr(ctx context.Context, current int64) (int64, error) {
	return f(ctx, current)
}

// CounterOption configures a CounterStrategy.
type CounterOption func(*CounterStrategy)

// WithPrefix prepends prefix to every serial.
func WithPrefix(prefix string) CounterOption {
	return func(s *CounterStrategy) { s.prefix = prefix }
}

// WithPadding left pads the counter with zeros to n digits.
func WithPadding(n int) CounterOption {
	return func(s *CounterStrategy) {
		if n > 0 {
			s.padding = n
		}
	}
}

// WithStart sets the value handed to the engine on the first build.
func WithStart(v int64) CounterOption {
	return func(s *CounterStrategy) {
		if v >= 0 {
			s.last = v
		}
	}
}

// CounterStrategy produces {prefix}{counter}{suffix} serials. The two-digit
// suffix comes from a process-wide rotating byte, so consecutive serials keep
// increasing without exposing a plain count.
type CounterStrategy struct {
	engine  Incrementer
	prefix  string
	padding int

	mu   sync.Mutex
	last int64
}

// NewCounter returns a strategy driven by engine.
func NewCounter(engine Incrementer, opts ...CounterOption) *CounterStrategy {
	s := &CounterStrategy{engine: engine, last: Uninitialized}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CounterStrategy) Kind() string {
	return KindCounter
}

func (s *CounterStrategy) Serializer() Serializer {
	return &counterSerializer{strategy: s}
}

func (s *CounterStrategy) generate(ctx context.Context, _ []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.engine.Incr(ctx, s.last)
	if err != nil {
		return "", fmt.Errorf("increment counter: %w", err)
	}
	if next == Uninitialized {
		return "", ErrUninitialized
	}
	if next <= s.last {
		return "", ErrNotIncreasing
	}
	s.last = next

	return fmt.Sprintf("%s%0*d%02d", s.prefix, s.padding, next, nextSuffix()%100), nil
}

//nolint:gochecknoglobals // shared by every counter in the process
var (
	suffix     atomic.Uint32
	suffixOnce sync.Once
)

func nextSuffix() uint8 {
	suffixOnce.Do(func() {
		seed, _ := pkguid.BuildSeed()
		start := uint8(seed)
		if start == 0xFE {
			// fixed point of rotl1+1
			start = 0
		}
		suffix.Store(uint32(start))
	})

	for {
		old := suffix.Load()
		next := bits.RotateLeft8(uint8(old), 1) + 1
		if suffix.CompareAndSwap(old, uint32(next)) {
			return next
		}
	}
}

type counterSerializer struct {
	buffer
	strategy *CounterStrategy
}

func (c *counterSerializer) Build(ctx context.Context) *Task {
	return c.build(ctx, c.strategy.generate)
}
