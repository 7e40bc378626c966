package pkgserial

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
	"strings"
	"time"

	"github.com/shandysiswandi/gosend/internal/pkg/pkguid"
)

// KindTicket names the ticket strategy.
const KindTicket = "ticket"

// DefaultRetryTimes bounds how many codes a ticket build tries.
const DefaultRetryTimes = 10

const (
	ticketMinData  = 8
	ticketBaseYear = 1918
)

var (
	// ErrInspectFailed wraps an error returned by the Inspector.
	ErrInspectFailed = errors.New("an error occurs when inspecting new-generated ticket")

	// ErrMaxRetry is returned when every candidate code was a duplicate.
	ErrMaxRetry = errors.New("reach max retry times while generating ticket")
)

// Inspector reports whether a candidate ticket code is already taken.
type Inspector interface {
	Inspect(ctx context.Context, code string) (duplicate bool, err error)
}

// InspectorFunc adapts a function to Inspector.
type InspectorFunc func(ctx context.Context, code string) (bool, error)

func (f InspectorFunc) Inspect(ctx context.Context, code string) (bool, error) {
	return f(ctx, code)
}

// TicketConfig shapes ticket output.
type TicketConfig struct {
	// ShortRepr drops the middle number and the check code.
	ShortRepr bool
	// NoSeparator joins the parts without '-'.
	NoSeparator bool
	// Lowercase renders letters in lower case.
	Lowercase bool
	// Alphabet renders numbers as 4 base-36 characters instead of 5 digits.
	Alphabet bool
	// RetryTimes is the number of candidate codes tried. Defaults to DefaultRetryTimes.
	RetryTimes int
	// Location is the zone for the date parts. Defaults to time.Local.
	Location *time.Location
}

// TicketStrategy produces dated codes such as DZB9-C0R0X-00258-00772-AT.
//
// The first 4 fed bytes are big-endian seconds since pkguid.Timebase, the
// next 2 the middle number and the rest become the tail in 2-byte chunks, so a
// fed pkguid.Token yields its own second, fingerprint and sequence. When the
// Inspector reports a duplicate, the build moves one second forward and tries
// again.
type TicketStrategy struct {
	cfg     TicketConfig
	inspect Inspector
}

// NewTicket returns a strategy checking candidates with inspect. A nil
// inspect accepts every code.
func NewTicket(inspect Inspector, cfg TicketConfig) *TicketStrategy {
	if cfg.RetryTimes < 1 {
		cfg.RetryTimes = DefaultRetryTimes
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if inspect == nil {
		inspect = InspectorFunc(func(context.Context, string) (bool, error) { return false, nil })
	}

	return &TicketStrategy{cfg: cfg, inspect: inspect}
}

func (s *TicketStrategy) Kind() string {
	return KindTicket
}

func (s *TicketStrategy) Serializer() Serializer {
	return &ticketSerializer{strategy: s}
}

type ticketParts struct {
	at    time.Time
	part1 uint16
	part2 []uint16
	auth  uint8
}

func parseTicket(data []byte, loc *time.Location) ticketParts {
	auth := uint8(0xFF)
	for _, b := range data {
		auth = bits.RotateLeft8(auth, 5) ^ b
	}

	secs := binary.BigEndian.Uint32(data[:4])
	p := ticketParts{
		at:    time.Unix(pkguid.Timebase+int64(secs), 0).In(loc),
		part1: binary.BigEndian.Uint16(data[4:6]),
		auth:  auth,
	}

	rest := data[6:]
	for len(rest) > 0 {
		if len(rest) == 1 {
			p.part2 = append(p.part2, uint16(rest[0]))
			break
		}
		p.part2 = append(p.part2, binary.BigEndian.Uint16(rest[:2]))
		rest = rest[2:]
	}

	return p
}

func (s *TicketStrategy) number(n uint16) string {
	if s.cfg.Alphabet {
		return formatRadix(uint64(n), 36, 4, digitsFirst)
	}
	return fmt.Sprintf("%05d", n)
}

func (s *TicketStrategy) render(p ticketParts, borrow time.Duration) string {
	at := p.at.Add(borrow)

	head := formatRadix(uint64(at.Year()-ticketBaseYear), 26, 2, lettersFirst) +
		formatRadix(uint64(at.Month()-1), 12, 1, digitsFirst) +
		formatRadix(uint64(at.Day()-1), 31, 1, digitsFirst)

	left := formatRadix(uint64(at.Hour()), 24, 1, digitsFirst) +
		formatRadix(uint64(at.Minute()), 36, 2, digitsFirst) +
		formatRadix(uint64(at.Second()), 36, 2, digitsFirst)

	var tail strings.Builder
	for _, n := range p.part2 {
		tail.WriteString(s.number(n))
	}

	parts := []string{head, left, s.number(p.part1), tail.String(), formatRadix(uint64(p.auth%255), 26, 2, lettersFirst)}
	if s.cfg.ShortRepr {
		parts = []string{head, left, tail.String()}
	}

	sep := "-"
	if s.cfg.NoSeparator {
		sep = ""
	}

	out := strings.Join(parts, sep)
	if s.cfg.Lowercase {
		out = strings.ToLower(out)
	}

	return out
}

func (s *TicketStrategy) generate(ctx context.Context, data []byte) (string, error) {
	if len(data) < ticketMinData {
		return "", ErrDataNotEnough
	}

	p := parseTicket(data, s.cfg.Location)
	for attempt := 0; attempt < s.cfg.RetryTimes; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		code := s.render(p, time.Duration(attempt)*time.Second)

		dup, err := s.inspect.Inspect(ctx, code)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrInspectFailed, err)
		}
		if !dup {
			return code, nil
		}
	}

	return "", ErrMaxRetry
}

type ticketSerializer struct {
	buffer
	strategy *TicketStrategy
}

func (t *ticketSerializer) Build(ctx context.Context) *Task {
	return t.build(ctx, t.strategy.generate)
}
