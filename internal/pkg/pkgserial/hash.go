package pkgserial

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const (
	KindUUID3 = "uuid3"
	KindUUID4 = "uuid4"
	KindUUID5 = "uuid5"
)

// ErrUnsupportedVersion is returned for UUID versions other than 3, 4 and 5.
var ErrUnsupportedVersion = errors.New("unsupported uuid version")

// HashStrategy produces UUID-shaped serials. Versions 3 (MD5) and 5 (SHA-1)
// hash the fed bytes under the strategy salt, so the same salt and bytes always
// give the same serial. Version 4 ignores fed bytes.
type HashStrategy struct {
	version int
	salt    uuid.UUID
}

// NewHash returns a strategy for the given version. A nil salt is replaced by
// a random one.
func NewHash(version int, salt uuid.UUID) (*HashStrategy, error) {
	if version != 3 && version != 4 && version != 5 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	if salt == uuid.Nil {
		salt = uuid.New()
	}

	return &HashStrategy{version: version, salt: salt}, nil
}

// Salt returns the namespace mixed into versions 3 and 5.
func (s *HashStrategy) Salt() uuid.UUID {
	return s.salt
}

func (s *HashStrategy) Kind() string {
	switch s.version {
	case 3:
		return KindUUID3
	case 5:
		return KindUUID5
	default:
		return KindUUID4
	}
}

func (s *HashStrategy) Serializer() Serializer {
	return &hashSerializer{strategy: s}
}

func (s *HashStrategy) generate(_ context.Context, data []byte) (string, error) {
	switch s.version {
	case 3:
		if len(data) == 0 {
			return "", ErrDataNotEnough
		}
		return uuid.NewMD5(s.salt, data).String(), nil
	case 5:
		if len(data) == 0 {
			return "", ErrDataNotEnough
		}
		return uuid.NewSHA1(s.salt, data).String(), nil
	default:
		id, err := uuid.NewRandom()
		if err != nil {
			return "", err
		}
		return id.String(), nil
	}
}

type hashSerializer struct {
	buffer
	strategy *HashStrategy
}

func (h *hashSerializer) Build(ctx context.Context) *Task {
	return h.build(ctx, h.strategy.generate)
}
