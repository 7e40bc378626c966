package issuer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shandysiswandi/gosend/internal/issuer/entity"
	"github.com/shandysiswandi/gosend/internal/issuer/event"
	"github.com/shandysiswandi/gosend/internal/issuer/inbound"
	"github.com/shandysiswandi/gosend/internal/issuer/store"
	"github.com/shandysiswandi/gosend/internal/issuer/usecase"
	"github.com/shandysiswandi/gosend/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/gosend/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/gosend/internal/pkg/pkgserial"
	"github.com/shandysiswandi/gosend/internal/pkg/pkguid"
)

// counterSequence is the ledger sequence backing the counter strategy.
const counterSequence = "counter"

type Dependency struct {
	Config      pkgconfig.Config
	Router      *pkgrouter.Router
	Frame       *pkguid.Frame
	Fingerprint pkguid.Fingerprint
	ID          pkguid.StringID
}

func New(dep Dependency) (func(context.Context) error, error) {
	ledger, err := store.Open(dep.Config.GetString("ledger.driver"), store.PebbleOptions{
		Dir:  dep.Config.GetString("ledger.path"),
		Sync: dep.Config.GetBool("ledger.sync"),
	}, 0)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	strategies, err := NewStrategies(dep.Config, ledger, dep.Frame, dep.Fingerprint)
	if err != nil {
		_ = ledger.Close()
		return nil, err
	}

	var snowflake pkguid.NumberID
	if dep.Config.GetBool("id.snowflake.enabled") {
		sf, err := pkguid.NewSnowflake(dep.Fingerprint)
		if err != nil {
			_ = ledger.Close()
			return nil, fmt.Errorf("snowflake: %w", err)
		}
		snowflake = sf
	}

	if dep.ID == nil {
		dep.ID = pkguid.NewULID()
	}

	bus := event.NewBus(512)
	consumer := event.NewJournalConsumer(bus, event.HandlerFunc(ledger.Record), event.ConsumerConfig{
		Workers:     2,
		MaxRetries:  3,
		BaseBackoff: 100 * time.Millisecond,
	})
	consumer.Start()

	uc := usecase.New(usecase.Dependency{
		Tokens:     pkguid.NewEncoder(dep.Frame, dep.Fingerprint),
		Snowflake:  snowflake,
		Strategies: strategies,
		Ledger:     ledger,
		Events:     bus,
		ID:         dep.ID,
		Timeout:    dep.Config.GetDuration("serial.timeout"),
		Parallel:   int(dep.Config.GetInt("goroutine.max")),
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	slog.Info("issuer module ready", "ledger", dep.Config.GetString("ledger.driver"), "strategies", len(strategies), "snowflake", snowflake != nil)

	return func(ctx context.Context) error {
		return errors.Join(consumer.Stop(ctx), ledger.Close())
	}, nil
}

// NewStrategies builds every serial strategy from configuration. Ticket
// dedupe and the counter sequence go through ledger.
func NewStrategies(cfg pkgconfig.Config, ledger store.Ledger, frame *pkguid.Frame, fp pkguid.Fingerprint) ([]pkgserial.Strategy, error) {
	loc, err := time.LoadLocation(cfg.GetString("tz"))
	if err != nil {
		return nil, fmt.Errorf("load tz: %w", err)
	}

	salt := uuid.Nil
	if raw := cfg.GetString("serial.hash.salt"); raw != "" {
		salt, err = uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("serial.hash.salt: %w", err)
		}
	}

	inspect := pkgserial.InspectorFunc(func(ctx context.Context, code string) (bool, error) {
		return ledger.Claim(ctx, entity.KindTicket, code)
	})
	engine := pkgserial.IncrementFunc(func(ctx context.Context, current int64) (int64, error) {
		return ledger.Incr(ctx, counterSequence, current)
	})

	strategies := []pkgserial.Strategy{
		pkgserial.NewTime(frame, fp, pkgserial.WithTimeLocation(loc)),
		pkgserial.NewTicket(inspect, pkgserial.TicketConfig{
			ShortRepr:   cfg.GetBool("serial.ticket.short"),
			NoSeparator: cfg.GetBool("serial.ticket.no_sep"),
			Lowercase:   cfg.GetBool("serial.ticket.lowercase"),
			Alphabet:    cfg.GetBool("serial.ticket.alphabet"),
			RetryTimes:  int(cfg.GetInt("serial.ticket.retry_times")),
			Location:    loc,
		}),
		pkgserial.NewRandom62(int(cfg.GetInt("serial.random62.length"))),
		pkgserial.NewCounter(engine,
			pkgserial.WithPrefix(cfg.GetString("serial.counter.prefix")),
			pkgserial.WithPadding(int(cfg.GetInt("serial.counter.padding"))),
		),
	}

	// v3 and v5 share one salt
	for _, version := range []int{3, 4, 5} {
		hash, err := pkgserial.NewHash(version, salt)
		if err != nil {
			return nil, err
		}
		if salt == uuid.Nil {
			salt = hash.Salt()
		}
		strategies = append(strategies, hash)
	}

	return strategies, nil
}
