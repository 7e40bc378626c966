package pkguid

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	// Timebase is the reference epoch for frames: 2021-12-10 12:27:33 UTC.
	Timebase int64 = 1639110453

	// MaxSequence is the largest sequence issued within one second.
	MaxSequence = 1<<16 - 1

	defaultPollInterval = 10 * time.Millisecond
)

// FrameOption configures a Frame.
type FrameOption func(*Frame)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(clock func() time.Time) FrameOption {
	return func(f *Frame) {
		if clock != nil {
			f.clock = clock
		}
	}
}

// WithPauseOnStart controls whether the first allocation waits for a second
// strictly later than the construction second. Enabled by default.
func WithPauseOnStart(enabled bool) FrameOption {
	return func(f *Frame) {
		f.pause = enabled
	}
}

// WithPollInterval caps how long a blocked allocation sleeps before it looks
// at the clock again.
func WithPollInterval(d time.Duration) FrameOption {
	return func(f *Frame) {
		if d > 0 {
			f.poll = d
		}
	}
}

// FrameStats is a point-in-time view of a Frame's counters.
type FrameStats struct {
	Epoch     uint32
	Allocated uint64
	Blocked   uint64
	Behind    uint64
}

// Frame is the shared per-second state that tokens are allocated from.
//
// Each second hands out at most MaxSequence+1 sequence numbers. Once a second
// is exhausted, Allocate blocks until the clock reaches a later second. The
// epoch never goes backward: when the clock reads earlier than the recorded
// epoch, the frame keeps serving the recorded second and then waits.
type Frame struct {
	mu     sync.Mutex
	clock  func() time.Time
	poll   time.Duration
	pause  bool
	epoch  uint32
	issued uint32

	allocated atomic.Uint64
	blocked   atomic.Uint64
	behind    atomic.Uint64
}

// NewFrame constructs a Frame anchored at the current second.
func NewFrame(opts ...FrameOption) *Frame {
	f := &Frame{
		clock: time.Now,
		poll:  defaultPollInterval,
		pause: true,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.epoch = f.second(f.clock())
	if f.pause {
		// the construction second counts as spent
		f.issued = MaxSequence + 1
	}

	return f
}

//nolint:gochecknoglobals // process-wide frame
var defaultFrame = sync.OnceValue(func() *Frame {
	return NewFrame()
})

// DefaultFrame returns the process-wide Frame, created on first use. Its
// first allocation waits for the next wall-clock second.
func DefaultFrame() *Frame {
	return defaultFrame()
}

func (f *Frame) second(t time.Time) uint32 {
	s := t.Unix() - Timebase
	if s < 0 {
		return 0
	}
	return uint32(s)
}

// Allocate returns a fresh (epoch, sequence) pair. No two calls on the same
// Frame return the same pair. It may block until the next second.
func (f *Frame) Allocate() (uint32, uint16) {
	waited, behind := false, false

	for {
		f.mu.Lock()
		now := f.clock()
		sec := f.second(now)

		switch {
		case sec > f.epoch:
			f.epoch = sec
			f.issued = 0
		case sec < f.epoch:
			behind = true
		}

		if f.issued <= MaxSequence {
			epoch, seq := f.epoch, uint16(f.issued)
			f.issued++
			f.mu.Unlock()

			f.allocated.Add(1)
			if waited {
				f.blocked.Add(1)
			}
			if behind {
				f.behind.Add(1)
			}
			return epoch, seq
		}
		f.mu.Unlock()

		waited = true
		f.wait(now)
	}
}

func (f *Frame) wait(now time.Time) {
	d := time.Unix(now.Unix()+1, 0).Sub(now)
	if d > f.poll || d <= 0 {
		d = f.poll
	}
	time.Sleep(d)
}

// Stats returns the frame counters.
func (f *Frame) Stats() FrameStats {
	f.mu.Lock()
	epoch := f.epoch
	f.mu.Unlock()

	return FrameStats{
		Epoch:     epoch,
		Allocated: f.allocated.Load(),
		Blocked:   f.blocked.Load(),
		Behind:    f.behind.Load(),
	}
}
