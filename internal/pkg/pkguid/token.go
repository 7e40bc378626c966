package pkguid

import (
	"encoding/binary"
	"io"
	"strconv"
	"sync"
)

// Token is a 64-bit identifier laid out as
// epoch(32) | fingerprint(16) | sequence(16), most significant first.
type Token uint64

// Compose packs the token fields.
func Compose(epoch uint32, fingerprint, seq uint16) Token {
	return Token(uint64(epoch)<<32 | uint64(fingerprint)<<16 | uint64(seq))
}

// Uint64 returns the raw value.
func (t Token) Uint64() uint64 {
	return uint64(t)
}

// Bytes returns the big-endian encoding.
func (t Token) Bytes() [8]byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(t))
	return b
}

// WriteTo feeds the token's big-endian bytes into w. Serializers accept
// tokens this way.
func (t Token) WriteTo(w io.Writer) (int64, error) {
	b := t.Bytes()
	n, err := w.Write(b[:])
	return int64(n), err
}

func (t Token) String() string {
	return strconv.FormatUint(uint64(t), 10)
}

// Encoder issues tokens from a Frame and a Fingerprint.
type Encoder struct {
	frame       *Frame
	fingerprint uint16
}

// NewEncoder returns an Encoder over a shared frame.
func NewEncoder(frame *Frame, fp Fingerprint) *Encoder {
	return &Encoder{frame: frame, fingerprint: fp.Value()}
}

//nolint:gochecknoglobals // process-wide encoder
var defaultEncoder = sync.OnceValue(func() *Encoder {
	return NewEncoder(DefaultFrame(), ResolveFingerprint())
})

// DefaultEncoder returns the Encoder over DefaultFrame and ResolveFingerprint.
func DefaultEncoder() *Encoder {
	return defaultEncoder()
}

// Next returns a new token. It blocks only when the frame does.
func (e *Encoder) Next() Token {
	epoch, seq := e.frame.Allocate()
	return Compose(epoch, e.fingerprint, seq)
}

// Generate implements NumberID.
func (e *Encoder) Generate() uint64 {
	return uint64(e.Next())
}
