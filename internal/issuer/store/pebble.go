package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/shandysiswandi/gosend/internal/issuer/entity"
)

var (
	prefixClaim   = []byte("claim/")
	prefixSeq     = []byte("seq/")
	prefixJournal = []byte("journal/")
	// '/' + 1, upper bound of the journal range
	endJournal = []byte("journal0")
)

// PebbleOptions configures OpenPebbleLedger.
type PebbleOptions struct {
	// Dir is the database directory.
	Dir string
	// Sync requests a WAL fsync on every write.
	Sync bool
}

// PebbleLedger persists claims, sequences and the journal in Pebble, so ticket
// dedupe and counter serials survive restarts.
type PebbleLedger struct {
	mu    sync.Mutex
	db    *pebble.DB
	write *pebble.WriteOptions
}

func OpenPebbleLedger(opts PebbleOptions) (*PebbleLedger, error) {
	if opts.Dir == "" {
		return nil, errors.New("pebble: PebbleOptions.Dir is required")
	}

	db, err := pebble.Open(opts.Dir, &pebble.Options{})
	if err != nil {
		return nil, err
	}

	write := pebble.NoSync
	if opts.Sync {
		write = pebble.Sync
	}

	return &PebbleLedger{db: db, write: write}, nil
}

func key(prefix []byte, parts ...string) []byte {
	k := append([]byte(nil), prefix...)
	for i, p := range parts {
		if i > 0 {
			k = append(k, '/')
		}
		k = append(k, p...)
	}
	return k
}

// get copies the value for k. A missing key returns nil, false.
func (l *PebbleLedger) get(k []byte) ([]byte, bool, error) {
	val, closer, err := l.db.Get(k)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer closer.Close()

	return append([]byte(nil), val...), true, nil
}

// Claim records code under kind and reports whether it was already taken.
func (l *PebbleLedger) Claim(ctx context.Context, kind entity.Kind, code string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	k := key(prefixClaim, string(kind), code)

	l.mu.Lock()
	defer l.mu.Unlock()

	_, found, err := l.get(k)
	if err != nil {
		return false, err
	}
	if found {
		return true, nil
	}

	var at [8]byte
	binary.BigEndian.PutUint64(at[:], uint64(time.Now().Unix()))

	return false, l.db.Set(k, at[:], l.write)
}

// Incr returns the value after max(stored, current) and stores it.
func (l *PebbleLedger) Incr(ctx context.Context, name string, current int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	k := key(prefixSeq, name)

	l.mu.Lock()
	defer l.mu.Unlock()

	raw, found, err := l.get(k)
	if err != nil {
		return 0, err
	}

	var stored int64
	if found && len(raw) == 8 {
		stored = int64(binary.BigEndian.Uint64(raw))
	}

	next := max(stored, current) + 1

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(next))
	if err := l.db.Set(k, buf[:], l.write); err != nil {
		return 0, err
	}

	return next, nil
}

// Record stores the event under its id. Event ids sort by time.
func (l *PebbleLedger) Record(ctx context.Context, event entity.IssuedEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	val, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return l.db.Set(key(prefixJournal, event.EventID), val, l.write)
}

// Recent returns up to limit journal entries, newest first.
func (l *PebbleLedger) Recent(ctx context.Context, limit int) ([]entity.IssuedEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	iter, err := l.db.NewIter(&pebble.IterOptions{LowerBound: prefixJournal, UpperBound: endJournal})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	out := make([]entity.IssuedEvent, 0, limit)
	for valid := iter.Last(); valid && len(out) < limit; valid = iter.Prev() {
		var ev entity.IssuedEvent
		if err := json.Unmarshal(iter.Value(), &ev); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}

	return out, iter.Error()
}

func (l *PebbleLedger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}
