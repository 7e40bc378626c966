package store

import (
	"context"
	"sync"

	"github.com/shandysiswandi/gosend/internal/issuer/entity"
)

const (
	// DefaultJournalSize bounds the in-memory journal.
	DefaultJournalSize = 1000
	// DefaultClaimCapacity bounds the in-memory claims.
	DefaultClaimCapacity = 1 << 20
)

// MemoryOption configures an InMemoryLedger.
type MemoryOption func(*InMemoryLedger)

// WithClaimCapacity sets how many claims are remembered. Past it the oldest
// claim is forgotten, so its code may be issued again.
func WithClaimCapacity(n int) MemoryOption {
	return func(l *InMemoryLedger) {
		if n > 0 {
			l.claimCap = n
		}
	}
}

// InMemoryLedger keeps claims, sequences and the journal in process memory.
// Claims and the journal are bounded; use the pebble driver for durable
// ticket dedupe.
type InMemoryLedger struct {
	mu       sync.RWMutex
	claims   map[string]struct{}
	order    []string
	next     int
	claimCap int
	seqs     map[string]int64
	journal  []entity.IssuedEvent
	size     int
}

func NewInMemoryLedger(journalSize int, opts ...MemoryOption) *InMemoryLedger {
	if journalSize < 1 {
		journalSize = DefaultJournalSize
	}

	l := &InMemoryLedger{
		claims:   make(map[string]struct{}),
		claimCap: DefaultClaimCapacity,
		seqs:     make(map[string]int64),
		size:     journalSize,
	}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Claim records code under kind and reports whether it was already taken.
func (l *InMemoryLedger) Claim(ctx context.Context, kind entity.Kind, code string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	key := claimKey(kind, code)

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.claims[key]; exists {
		return true, nil
	}
	l.remember(key)

	return false, nil
}

// Incr returns the value after max(stored, current) and stores it.
func (l *InMemoryLedger) Incr(ctx context.Context, name string, current int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	next := max(l.seqs[name], current) + 1
	l.seqs[name] = next

	return next, nil
}

func (l *InMemoryLedger) Record(ctx context.Context, event entity.IssuedEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.journal = append(l.journal, event)
	if over := len(l.journal) - l.size; over > 0 {
		l.journal = append(l.journal[:0:0], l.journal[over:]...)
	}

	return nil
}

// Recent returns up to limit journal entries, newest first.
func (l *InMemoryLedger) Recent(ctx context.Context, limit int) ([]entity.IssuedEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]entity.IssuedEvent, 0, min(limit, len(l.journal)))
	for i := len(l.journal) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, l.journal[i])
	}

	return out, nil
}

func (l *InMemoryLedger) Close() error {
	return nil
}

// remember adds key, dropping the oldest claim when at capacity.
func (l *InMemoryLedger) remember(key string) {
	if len(l.order) < l.claimCap {
		l.order = append(l.order, key)
	} else {
		delete(l.claims, l.order[l.next])
		l.order[l.next] = key
		l.next = (l.next + 1) % l.claimCap
	}
	l.claims[key] = struct{}{}
}

func claimKey(kind entity.Kind, code string) string {
	return string(kind) + "/" + code
}
