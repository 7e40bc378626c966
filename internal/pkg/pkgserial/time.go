package pkgserial

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shandysiswandi/gosend/internal/pkg/pkguid"
	"github.com/spaolacci/murmur3"
)

// KindTime names the time-based strategy.
const KindTime = "time"

// TimeOption configures a TimeStrategy.
type TimeOption func(*TimeStrategy)

// WithTimeLocation sets the zone used for the date part. Defaults to time.Local.
// The date is rendered at the zone's standard offset all year, so a repeated
// daylight-saving hour never maps two seconds to the same digits.
func WithTimeLocation(loc *time.Location) TimeOption {
	return func(s *TimeStrategy) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// TimeStrategy formats frame allocations as 28 digits:
// yyyyMMddHHmmss, fingerprint (5), sequence (5), digest of fed bytes (4).
type TimeStrategy struct {
	frame *pkguid.Frame
	fp    pkguid.Fingerprint
	loc   *time.Location
}

// NewTime returns a strategy allocating from frame.
func NewTime(frame *pkguid.Frame, fp pkguid.Fingerprint, opts ...TimeOption) *TimeStrategy {
	s := &TimeStrategy{frame: frame, fp: fp, loc: time.Local}
	for _, opt := range opts {
		opt(s)
	}
	s.loc = StandardZone(s.loc)
	return s
}

// StandardZone returns a fixed zone at loc's standard offset, the smaller of
// its January and July offsets this year.
func StandardZone(loc *time.Location) *time.Location {
	year := time.Now().In(loc).Year()
	janName, jan := time.Date(year, time.January, 1, 0, 0, 0, 0, loc).Zone()
	julName, jul := time.Date(year, time.July, 1, 0, 0, 0, 0, loc).Zone()

	if jul < jan {
		return time.FixedZone(julName, jul)
	}
	return time.FixedZone(janName, jan)
}

//nolint:gochecknoglobals // process-wide strategy
var defaultTime = sync.OnceValue(func() *TimeStrategy {
	return NewTime(pkguid.DefaultFrame(), pkguid.ResolveFingerprint())
})

// DefaultTime returns the strategy over pkguid.DefaultFrame.
func DefaultTime() *TimeStrategy {
	return defaultTime()
}

func (s *TimeStrategy) Kind() string {
	return KindTime
}

func (s *TimeStrategy) Serializer() Serializer {
	return &timeSerializer{strategy: s}
}

func (s *TimeStrategy) format(_ context.Context, data []byte) (string, error) {
	epoch, seq := s.frame.Allocate()
	at := time.Unix(pkguid.Timebase+int64(epoch), 0).In(s.loc)

	return fmt.Sprintf("%s%05d%05d%04d",
		at.Format("20060102150405"),
		s.fp.Value(),
		seq,
		murmur3.Sum32(data)%10000,
	), nil
}

type timeSerializer struct {
	buffer
	strategy *TimeStrategy
}

func (t *timeSerializer) Build(ctx context.Context) *Task {
	return t.build(ctx, t.strategy.format)
}
