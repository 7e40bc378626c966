package usecase

import (
	"github.com/shandysiswandi/gosend/internal/issuer/entity"
	"github.com/shandysiswandi/gosend/internal/pkg/pkguid"
)

const (
	MaxTokenCount  = 1000
	MaxSerialCount = 100
	MaxJournal     = 500
)

type TokensResult struct {
	Tokens []pkguid.Token
}

type SnowflakesResult struct {
	IDs []uint64
}

// SerialInput describes one issuance request. Data is fed after the token
// when WithToken is set.
type SerialInput struct {
	Kind      string
	Data      []byte
	WithToken bool
	Count     int
}

type SerialsResult struct {
	Kind    entity.Kind
	Serials []string
}

type JournalResult struct {
	Entries []entity.IssuedEvent
}
