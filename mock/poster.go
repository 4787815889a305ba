package mock

import (
	"context"

	"github.com/kmichalik/embedtrace"
)

var _ embedtrace.Reposter = (*Reposter)(nil)

// Reposter is a mock implementation of embedtrace.Reposter.
type Reposter struct {
	PostQuoteFn func(ctx context.Context, req embedtrace.QuoteRequest) error
}

func (r *Reposter) PostQuote(ctx context.Context, req embedtrace.QuoteRequest) error {
	return r.PostQuoteFn(ctx, req)
}
