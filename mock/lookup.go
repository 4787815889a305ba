package mock

import (
	"context"

	"github.com/kmichalik/embedtrace"
)

var _ embedtrace.HandleResolver = (*HandleResolver)(nil)

// HandleResolver is a mock implementation of embedtrace.HandleResolver.
type HandleResolver struct {
	ResolveFn func(ctx context.Context, did string) (string, error)
}

func (r *HandleResolver) Resolve(ctx context.Context, did string) (string, error) {
	return r.ResolveFn(ctx, did)
}

var _ embedtrace.URLExpander = (*URLExpander)(nil)

// URLExpander is a mock implementation of embedtrace.URLExpander.
type URLExpander struct {
	ExpandFn func(ctx context.Context, shortURL string) (string, error)
}

func (e *URLExpander) Expand(ctx context.Context, shortURL string) (string, error) {
	return e.ExpandFn(ctx, shortURL)
}

var _ embedtrace.Cache = (*Cache)(nil)

// Cache is a mock implementation of embedtrace.Cache.
type Cache struct {
	GetFn func(key string) (string, bool)
	SetFn func(key string, value string)
}

func (c *Cache) Get(key string) (string, bool) {
	return c.GetFn(key)
}

func (c *Cache) Set(key string, value string) {
	c.SetFn(key, value)
}
