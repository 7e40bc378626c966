package pkguid

import (
	"crypto/rand"
	"encoding/binary"
	"math/bits"
	"os"
	"strconv"
	"strings"
	"sync"
)

// EnvDeviceID names the environment variable holding the runtime device id.
const EnvDeviceID = "FASTSEND_DEVICE_ID"

// RandomValue is the build-time seed used to obfuscate device ids. Set it with
//
//	-ldflags "-X github.com/shandysiswandi/gosend/internal/pkg/pkguid.RandomValue=<integer>"
//
//nolint:gochecknoglobals // injected by the linker
var RandomValue string

const mixMultiplier uint16 = 0x9E3B

//nolint:gochecknoglobals // resolved once per process
var buildSeed = sync.OnceValues(func() (uint64, bool) {
	if v, err := strconv.ParseUint(strings.TrimSpace(RandomValue), 0, 64); err == nil {
		return v, true
	}

	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return uint64(os.Getpid()), false
	}
	return binary.BigEndian.Uint64(b[:]), false
})

// BuildSeed returns the process seed and whether it came from the build. A
// random seed means the binary was not built for a multi-device deployment.
func BuildSeed() (uint64, bool) {
	return buildSeed()
}

// Fingerprint is the obfuscated per-process uniqueness source.
type Fingerprint struct {
	value      uint16
	fromDevice bool
}

// NewFingerprint derives a Fingerprint from a device id, falling back to the
// process id when deviceID is empty or not an unsigned integer.
//
// The fallback is only unique among processes of one host.
func NewFingerprint(deviceID string, seed uint64) Fingerprint {
	if raw, err := strconv.ParseUint(strings.TrimSpace(deviceID), 0, 64); err == nil {
		return Fingerprint{value: Mix(raw, seed), fromDevice: true}
	}

	return Fingerprint{value: Mix(uint64(os.Getpid()), seed)}
}

//nolint:gochecknoglobals // resolved once per process
var resolvedFingerprint = sync.OnceValue(func() Fingerprint {
	seed, _ := BuildSeed()
	return NewFingerprint(os.Getenv(EnvDeviceID), seed)
})

// ResolveFingerprint reads FASTSEND_DEVICE_ID on first use and caches the result.
func ResolveFingerprint() Fingerprint {
	return resolvedFingerprint()
}

// Value returns the obfuscated 16-bit value embedded in tokens.
func (f Fingerprint) Value() uint16 {
	return f.value
}

// FromDevice reports whether a configured device id was used.
func (f Fingerprint) FromDevice() bool {
	return f.fromDevice
}

// Mix scrambles raw with seed. For a fixed seed it is a bijection over
// 16-bit inputs, so distinct device ids below 65536 never collide.
func Mix(raw, seed uint64) uint16 {
	x := uint16(raw) ^ uint16(raw>>16) ^ uint16(raw>>32) ^ uint16(raw>>48)

	for i := 0; i < 3; i++ {
		x = bits.RotateLeft16(x, 3) ^ uint16(seed>>(16*i))
		x *= mixMultiplier
	}

	return x
}
