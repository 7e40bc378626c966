package inbound

import (
	"net/http"
	"strconv"

	"github.com/mr-tron/base58"
	"github.com/shandysiswandi/gosend/internal/issuer/entity"
	"github.com/shandysiswandi/gosend/internal/pkg/pkguid"
)

// Token renders a token in its textual forms. ID is a decimal string so
// JavaScript clients keep all 64 bits.
type Token struct {
	ID     string `json:"id"`
	Hex    string `json:"hex"`
	Base58 string `json:"base58"`
}

func toHTTPToken(t pkguid.Token) Token {
	b := t.Bytes()
	return Token{
		ID:     t.String(),
		Hex:    strconv.FormatUint(t.Uint64(), 16),
		Base58: base58.Encode(b[:]),
	}
}

type TokensResponse struct {
	Tokens []Token `json:"tokens"`
}

func (r TokensResponse) Meta() map[string]any {
	return map[string]any{"count": len(r.Tokens)}
}

type SnowflakesResponse struct {
	IDs []string `json:"ids"`
}

type SerialRequest struct {
	Data         string `json:"data"`
	DataEncoding string `json:"data_encoding"`
	WithToken    *bool  `json:"with_token"`
	Count        int    `json:"count"`
}

type SerialsResponse struct {
	Kind    string   `json:"kind"`
	Serials []string `json:"serials"`
}

func (SerialsResponse) StatusCode() int {
	return http.StatusCreated
}

func (SerialsResponse) Message() string {
	return "serials issued"
}

type JournalResponse struct {
	Entries []entity.IssuedEvent `json:"entries"`
}
