package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shandysiswandi/gosend/internal/issuer/entity"
	"github.com/shandysiswandi/gosend/internal/pkg/pkgerror"
	"github.com/shandysiswandi/gosend/internal/pkg/pkglog"
	"github.com/shandysiswandi/gosend/internal/pkg/pkgmetric"
	"github.com/shandysiswandi/gosend/internal/pkg/pkgroutine"
	"github.com/shandysiswandi/gosend/internal/pkg/pkgserial"
	"github.com/shandysiswandi/gosend/internal/pkg/pkguid"
)

const (
	defaultTimeout = 5 * time.Second
	publishTimeout = 50 * time.Millisecond
)

var errIncompleteBatch = errors.New("serial batch incomplete")

type Ledger interface {
	Recent(ctx context.Context, limit int) ([]entity.IssuedEvent, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event entity.IssuedEvent) error
}

type TokenSource interface {
	Next() pkguid.Token
}

type Dependency struct {
	Tokens     TokenSource
	Snowflake  pkguid.NumberID
	Strategies []pkgserial.Strategy
	Ledger     Ledger
	Events     EventPublisher
	ID         pkguid.StringID
	Timeout    time.Duration
	Parallel   int
}

type Usecase struct {
	tokens     TokenSource
	snowflake  pkguid.NumberID
	strategies map[entity.Kind]pkgserial.Strategy
	ledger     Ledger
	events     EventPublisher
	id         pkguid.StringID
	timeout    time.Duration
	parallel   int
}

func New(dep Dependency) *Usecase {
	timeout := dep.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	strategies := make(map[entity.Kind]pkgserial.Strategy, len(dep.Strategies))
	for _, s := range dep.Strategies {
		strategies[entity.Kind(s.Kind())] = s
	}

	return &Usecase{
		tokens:     dep.Tokens,
		snowflake:  dep.Snowflake,
		strategies: strategies,
		ledger:     dep.Ledger,
		events:     dep.Events,
		id:         dep.ID,
		timeout:    timeout,
		parallel:   dep.Parallel,
	}
}

func (u *Usecase) NextTokens(ctx context.Context, count int) (TokensResult, error) {
	if err := checkCount(count, MaxTokenCount); err != nil {
		return TokensResult{}, err
	}

	tokens := make([]pkguid.Token, count)
	for i := range tokens {
		tokens[i] = u.tokens.Next()
	}
	pkgmetric.IDsIssuedTotal.WithLabelValues("token").Add(float64(count))

	slog.DebugContext(ctx, "tokens issued", "count", count)

	return TokensResult{Tokens: tokens}, nil
}

func (u *Usecase) NextSnowflakes(ctx context.Context, count int) (SnowflakesResult, error) {
	if u.snowflake == nil {
		return SnowflakesResult{}, pkgerror.NewBusiness("snowflake engine is disabled", pkgerror.CodeNotFound)
	}
	if err := checkCount(count, MaxTokenCount); err != nil {
		return SnowflakesResult{}, err
	}

	ids := make([]uint64, count)
	for i := range ids {
		ids[i] = u.snowflake.Generate()
	}
	pkgmetric.IDsIssuedTotal.WithLabelValues("snowflake").Add(float64(count))

	slog.DebugContext(ctx, "snowflake ids issued", "count", count)

	return SnowflakesResult{IDs: ids}, nil
}

// IssueSerials builds in.Count serials of one kind. Each serial gets its own
// serializer. A batch fans out over a bounded goroutine manager and fails as a
// whole on the first failed build.
func (u *Usecase) IssueSerials(ctx context.Context, in SerialInput) (SerialsResult, error) {
	kind, err := entity.ParseKind(in.Kind)
	if err != nil {
		return SerialsResult{}, pkgerror.NewInvalidInput(err)
	}

	strategy, ok := u.strategies[kind]
	if !ok {
		return SerialsResult{}, pkgerror.NewBusiness(fmt.Sprintf("serial kind %s is not enabled", kind), pkgerror.CodeNotFound)
	}

	count := in.Count
	if count == 0 {
		count = 1
	}
	if err := checkCount(count, MaxSerialCount); err != nil {
		return SerialsResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	serials := make([]string, count)
	if count == 1 {
		serials[0], err = u.issue(ctx, kind, strategy, in)
		if err != nil {
			return SerialsResult{}, mapSerialErr(err)
		}
	} else {
		runner, gctx := pkgroutine.WithContext(ctx, u.parallel)
		for i := range serials {
			i := i
			runner.Go(gctx, func(ctx context.Context) error {
				value, err := u.issue(ctx, kind, strategy, in)
				serials[i] = value
				return err
			})
		}
		if err := runner.Wait(); err != nil {
			return SerialsResult{}, mapSerialErr(err)
		}
		// tasks skipped after the deadline leave a hole
		for _, v := range serials {
			if v == "" {
				err := ctx.Err()
				if err == nil {
					err = errIncompleteBatch
				}
				return SerialsResult{}, mapSerialErr(err)
			}
		}
	}

	return SerialsResult{Kind: kind, Serials: serials}, nil
}

func (u *Usecase) issue(ctx context.Context, kind entity.Kind, strategy pkgserial.Strategy, in SerialInput) (string, error) {
	s := strategy.Serializer()

	if in.WithToken && u.tokens != nil {
		if err := pkgserial.Contribute(s, u.tokens.Next()); err != nil {
			return "", err
		}
	}
	if len(in.Data) > 0 {
		if err := s.Feed(in.Data); err != nil {
			return "", err
		}
	}

	start := time.Now()
	value, err := s.Build(ctx).Await(ctx)
	pkgmetric.ObserveBuild(string(kind), time.Since(start), err)
	if err != nil {
		slog.WarnContext(ctx, "serial build failed", "kind", kind, "error", err)
		return "", err
	}

	u.journal(ctx, kind, value)

	return value, nil
}

// journal publishes an issued event. Failing to journal never fails issuance,
// and a full bus holds the caller for at most publishTimeout.
func (u *Usecase) journal(ctx context.Context, kind entity.Kind, value string) {
	if u.events == nil || u.id == nil {
		return
	}

	event := entity.IssuedEvent{
		EventID:  u.id.Generate(),
		Kind:     kind,
		Value:    value,
		IssuedAt: time.Now().Unix(),
	}
	if cid, ok := pkglog.LookupCorrelationID(ctx); ok {
		event.CorrelationID = cid
	}

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := u.events.Publish(pctx, event); err != nil {
		slog.WarnContext(ctx, "failed to publish issued event", "kind", kind, "error", err)
	}
}

func (u *Usecase) Journal(ctx context.Context, limit int) (JournalResult, error) {
	if err := checkCount(limit, MaxJournal); err != nil {
		return JournalResult{}, err
	}
	if u.ledger == nil {
		return JournalResult{Entries: []entity.IssuedEvent{}}, nil
	}

	entries, err := u.ledger.Recent(ctx, limit)
	if err != nil {
		return JournalResult{}, normalizeErr(err)
	}

	return JournalResult{Entries: entries}, nil
}

func checkCount(count, limit int) error {
	if count < 1 || count > limit {
		return pkgerror.NewInvalidInput(fmt.Errorf("count must be between 1 and %d", limit))
	}
	return nil
}

func mapSerialErr(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return pkgerror.NewTimeout(err)
	case errors.Is(err, pkgserial.ErrDataNotEnough):
		return pkgerror.NewInvalidInput(err)
	case errors.Is(err, pkgserial.ErrMaxRetry):
		return pkgerror.NewConflict("no unique serial found, retry later")
	default:
		return normalizeErr(err)
	}
}

func normalizeErr(err error) error {
	var perr *pkgerror.Error
	if errors.As(err, &perr) {
		return perr
	}
	return pkgerror.NewServer(err)
}
