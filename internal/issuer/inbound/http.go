package inbound

import (
	"context"

	"github.com/shandysiswandi/gosend/internal/issuer/usecase"
	"github.com/shandysiswandi/gosend/internal/pkg/pkgrouter"
)

type uc interface {
	NextTokens(ctx context.Context, count int) (usecase.TokensResult, error)
	NextSnowflakes(ctx context.Context, count int) (usecase.SnowflakesResult, error)
	IssueSerials(ctx context.Context, in usecase.SerialInput) (usecase.SerialsResult, error)
	Journal(ctx context.Context, limit int) (usecase.JournalResult, error)
}

func RegisterHTTPEndpoint(r *pkgrouter.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.GET("/tokens", end.Tokens)         // ?count=
	r.GET("/snowflakes", end.Snowflakes) // ?count=

	r.POST("/serials/:kind", end.Serials)

	r.GET("/journal", end.Journal) // ?limit=
}
