package store

import (
	"context"
	"fmt"

	"github.com/shandysiswandi/gosend/internal/issuer/entity"
)

const (
	DriverMemory = "memory"
	DriverPebble = "pebble"
)

// Ledger is the issuer's bookkeeping: ticket claims, named sequences and
// the journal of issued serials.
type Ledger interface {
	Claim(ctx context.Context, kind entity.Kind, code string) (duplicate bool, err error)
	Incr(ctx context.Context, name string, current int64) (int64, error)
	Record(ctx context.Context, event entity.IssuedEvent) error
	Recent(ctx context.Context, limit int) ([]entity.IssuedEvent, error)
	Close() error
}

var (
	_ Ledger = (*InMemoryLedger)(nil)
	_ Ledger = (*PebbleLedger)(nil)
)

// Open returns the ledger for driver. Pebble ignores journalSize.
func Open(driver string, opts PebbleOptions, journalSize int) (Ledger, error) {
	switch driver {
	case "", DriverMemory:
		return NewInMemoryLedger(journalSize), nil
	case DriverPebble:
		return OpenPebbleLedger(opts)
	default:
		return nil, fmt.Errorf("unknown ledger driver %q", driver)
	}
}
