package pkglog

import "context"

type chainIDContextKey struct{}

const missingCorrelationID = "[invalid_chain_id]"

// LookupCorrelationID returns the correlation ID stored in the context and
// whether one was set.
func LookupCorrelationID(ctx context.Context) (string, bool) {
	cid, ok := ctx.Value(chainIDContextKey{}).(string)
	if !ok || cid == "" {
		return "", false
	}
	return cid, true
}

// GetCorrelationID returns the correlation ID stored in the context, or a
// placeholder for contexts that never passed the correlation middleware.
func GetCorrelationID(ctx context.Context) string {
	if cid, ok := LookupCorrelationID(ctx); ok {
		return cid
	}
	return missingCorrelationID
}

// SetCorrelationID stores a correlation ID into the context.
func SetCorrelationID(ctx context.Context, cid string) context.Context {
	return context.WithValue(ctx, chainIDContextKey{}, cid)
}
