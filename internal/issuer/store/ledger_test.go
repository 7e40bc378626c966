package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/shandysiswandi/gosend/internal/issuer/entity"
)

func openLedgers(t *testing.T) map[string]Ledger {
	t.Helper()

	pl, err := OpenPebbleLedger(PebbleOptions{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("OpenPebbleLedger: %v", err)
	}
	t.Cleanup(func() { _ = pl.Close() })

	return map[string]Ledger{
		"memory": NewInMemoryLedger(0),
		"pebble": pl,
	}
}

func TestLedgerClaim(t *testing.T) {
	for name, l := range openLedgers(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			dup, err := l.Claim(ctx, entity.KindTicket, "DZB9-C0R0X")
			if err != nil {
				t.Fatalf("Claim() err = %v", err)
			}
			if dup {
				t.Fatal("Claim() first call reported duplicate")
			}

			dup, err = l.Claim(ctx, entity.KindTicket, "DZB9-C0R0X")
			if err != nil {
				t.Fatalf("Claim() err = %v", err)
			}
			if !dup {
				t.Fatal("Claim() second call should report duplicate")
			}

			dup, err = l.Claim(ctx, entity.KindCounter, "DZB9-C0R0X")
			if err != nil || dup {
				t.Fatalf("Claim() other kind = %v, %v; want false, nil", dup, err)
			}
		})
	}
}

func TestLedgerIncr(t *testing.T) {
	for name, l := range openLedgers(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			first, err := l.Incr(ctx, "counter", -1)
			if err != nil {
				t.Fatalf("Incr() err = %v", err)
			}
			if first != 1 {
				t.Fatalf("Incr() = %d, want 1", first)
			}

			jumped, err := l.Incr(ctx, "counter", 41)
			if err != nil {
				t.Fatalf("Incr() err = %v", err)
			}
			if jumped != 42 {
				t.Fatalf("Incr() = %d, want 42", jumped)
			}

			next, err := l.Incr(ctx, "counter", 0)
			if err != nil {
				t.Fatalf("Incr() err = %v", err)
			}
			if next != 43 {
				t.Fatalf("Incr() = %d, want 43", next)
			}
		})
	}
}

func TestLedgerRecent(t *testing.T) {
	for name, l := range openLedgers(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			for i := 1; i <= 5; i++ {
				ev := entity.IssuedEvent{EventID: fmt.Sprintf("evt-%02d", i), Kind: entity.KindTime, Value: fmt.Sprint(i)}
				if err := l.Record(ctx, ev); err != nil {
					t.Fatalf("Record() err = %v", err)
				}
			}

			got, err := l.Recent(ctx, 3)
			if err != nil {
				t.Fatalf("Recent() err = %v", err)
			}
			if len(got) != 3 {
				t.Fatalf("Recent() len = %d, want 3", len(got))
			}
			for i, want := range []string{"evt-05", "evt-04", "evt-03"} {
				if got[i].EventID != want {
					t.Fatalf("Recent()[%d] = %q, want %q", i, got[i].EventID, want)
				}
			}
		})
	}
}

func TestInMemoryLedgerJournalIsBounded(t *testing.T) {
	ctx := context.Background()
	l := NewInMemoryLedger(2)

	for i := 0; i < 5; i++ {
		if err := l.Record(ctx, entity.IssuedEvent{EventID: fmt.Sprint(i)}); err != nil {
			t.Fatalf("Record() err = %v", err)
		}
	}

	got, err := l.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() err = %v", err)
	}
	if len(got) != 2 || got[0].EventID != "4" || got[1].EventID != "3" {
		t.Fatalf("Recent() = %+v, want events 4 and 3", got)
	}
}

func TestInMemoryLedgerClaimsAreBounded(t *testing.T) {
	ctx := context.Background()
	l := NewInMemoryLedger(0, WithClaimCapacity(3))

	for i := 0; i < 5; i++ {
		dup, err := l.Claim(ctx, entity.KindTicket, fmt.Sprint("code-", i))
		if err != nil || dup {
			t.Fatalf("Claim(code-%d) = %v, %v, want fresh claim", i, dup, err)
		}
	}

	if len(l.claims) != 3 {
		t.Fatalf("claims len = %d, want 3", len(l.claims))
	}

	for i, want := range []bool{false, false, true, true, true} {
		_, ok := l.claims[claimKey(entity.KindTicket, fmt.Sprint("code-", i))]
		if ok != want {
			t.Fatalf("code-%d remembered = %v, want %v", i, ok, want)
		}
	}

	dup, err := l.Claim(ctx, entity.KindTicket, "code-4")
	if err != nil || !dup {
		t.Fatalf("Claim(code-4) = %v, %v, want duplicate", dup, err)
	}
}

func TestPebbleLedgerSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	l, err := OpenPebbleLedger(PebbleOptions{Dir: dir, Sync: true})
	if err != nil {
		t.Fatalf("OpenPebbleLedger: %v", err)
	}
	if _, err := l.Claim(ctx, entity.KindTicket, "AAAA"); err != nil {
		t.Fatalf("Claim() err = %v", err)
	}
	if _, err := l.Incr(ctx, "counter", 9); err != nil {
		t.Fatalf("Incr() err = %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close() err = %v", err)
	}

	l, err = OpenPebbleLedger(PebbleOptions{Dir: dir})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer l.Close()

	dup, err := l.Claim(ctx, entity.KindTicket, "AAAA")
	if err != nil || !dup {
		t.Fatalf("Claim() after reopen = %v, %v; want true, nil", dup, err)
	}
	next, err := l.Incr(ctx, "counter", -1)
	if err != nil || next != 11 {
		t.Fatalf("Incr() after reopen = %d, %v; want 11, nil", next, err)
	}
}

func TestLedgerHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for name, l := range openLedgers(t) {
		if _, err := l.Claim(ctx, entity.KindTicket, "x"); err == nil {
			t.Fatalf("%s: expected error for cancelled context", name)
		}
	}
}

func TestOpenPebbleLedgerRequiresDir(t *testing.T) {
	if _, err := OpenPebbleLedger(PebbleOptions{}); err == nil {
		t.Fatal("expected error without a directory")
	}
}

func TestOpenDrivers(t *testing.T) {
	l, err := Open(DriverMemory, PebbleOptions{}, 5)
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	if _, ok := l.(*InMemoryLedger); !ok {
		t.Fatalf("expected in-memory ledger, got %T", l)
	}

	l, err = Open(DriverPebble, PebbleOptions{Dir: t.TempDir()}, 0)
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	if _, ok := l.(*PebbleLedger); !ok {
		t.Fatalf("expected pebble ledger, got %T", l)
	}
	_ = l.Close()

	if _, err := Open("redis", PebbleOptions{}, 0); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}
