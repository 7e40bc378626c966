package inbound

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/shandysiswandi/gosend/internal/issuer/usecase"
	"github.com/shandysiswandi/gosend/internal/pkg/pkgerror"
	"github.com/shandysiswandi/gosend/internal/pkg/pkgrouter"
)

const maxBodyBytes = 1 << 20

type HTTPEndpoint struct {
	uc uc
}

func (h *HTTPEndpoint) Tokens(ctx context.Context, r *http.Request) (any, error) {
	count, err := parsePositive(r.URL.Query().Get("count"), "count", 1)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.NextTokens(ctx, count)
	if err != nil {
		return nil, err
	}

	tokens := make([]Token, 0, len(result.Tokens))
	for _, tok := range result.Tokens {
		tokens = append(tokens, toHTTPToken(tok))
	}

	return TokensResponse{Tokens: tokens}, nil
}

func (h *HTTPEndpoint) Snowflakes(ctx context.Context, r *http.Request) (any, error) {
	count, err := parsePositive(r.URL.Query().Get("count"), "count", 1)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.NextSnowflakes(ctx, count)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(result.IDs))
	for _, id := range result.IDs {
		ids = append(ids, strconv.FormatUint(id, 10))
	}

	return SnowflakesResponse{IDs: ids}, nil
}

func (h *HTTPEndpoint) Serials(ctx context.Context, r *http.Request) (any, error) {
	req, err := decodeSerialRequest(r.Body)
	if err != nil {
		return nil, err
	}

	data, err := decodeData(req.Data, req.DataEncoding)
	if err != nil {
		return nil, err
	}

	withToken := true
	if req.WithToken != nil {
		withToken = *req.WithToken
	}

	result, err := h.uc.IssueSerials(ctx, usecase.SerialInput{
		Kind:      pkgrouter.GetParam(ctx, "kind"),
		Data:      data,
		WithToken: withToken,
		Count:     req.Count,
	})
	if err != nil {
		return nil, err
	}

	return SerialsResponse{Kind: string(result.Kind), Serials: result.Serials}, nil
}

func (h *HTTPEndpoint) Journal(ctx context.Context, r *http.Request) (any, error) {
	limit, err := parsePositive(r.URL.Query().Get("limit"), "limit", 20)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.Journal(ctx, limit)
	if err != nil {
		return nil, err
	}

	return JournalResponse{Entries: result.Entries}, nil
}

func parsePositive(raw, name string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerror.NewInvalidInput(errors.New("invalid " + name))
	}

	return value, nil
}

func decodeSerialRequest(body io.Reader) (SerialRequest, error) {
	var req SerialRequest
	if body == nil {
		return req, nil
	}

	dec := json.NewDecoder(io.LimitReader(body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return req, nil
		}
		return req, pkgerror.NewInvalidFormat()
	}

	return req, nil
}

func decodeData(data, encoding string) ([]byte, error) {
	if data == "" {
		return nil, nil
	}

	switch strings.ToLower(encoding) {
	case "", "text":
		return []byte(data), nil
	case "hex":
		b, err := hex.DecodeString(data)
		if err != nil {
			return nil, pkgerror.NewInvalidInput(errors.New("data is not valid hex"))
		}
		return b, nil
	case "base64":
		b, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return nil, pkgerror.NewInvalidInput(errors.New("data is not valid base64"))
		}
		return b, nil
	default:
		return nil, pkgerror.NewInvalidInput(errors.New("invalid data_encoding"))
	}
}
