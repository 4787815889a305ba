package embedtrace

import "context"

// HandleResolver resolves a Bluesky DID (e.g. "did:plc:abc123") to a
// human-readable handle via a directory lookup. Resolution is advisory:
// callers fall back to the DID string on failure.
type HandleResolver interface {
	Resolve(ctx context.Context, did string) (handle string, err error)
}

// URLExpander expands a short link to its final destination by following
// redirects. Expansion is advisory: callers drop the candidate on failure.
type URLExpander interface {
	Expand(ctx context.Context, shortURL string) (finalURL string, err error)
}

// Cache is a bounded key/value cache for memoizing network lookups
// (DID resolution, short-link expansion). Implementations evict old
// entries; a miss after eviction simply repeats the lookup.
type Cache interface {
	Get(key string) (value string, ok bool)
	Set(key string, value string)
}
