package bluesky

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kmichalik/embedtrace"
)

const defaultDirectory = "https://plc.directory"

// DefaultResolveTimeout bounds a single directory lookup. Resolution is
// advisory, so a slow directory should not stall a scan.
const DefaultResolveTimeout = 10 * time.Second

// Ensure Resolver implements embedtrace.HandleResolver at compile time.
var _ embedtrace.HandleResolver = (*Resolver)(nil)

// Resolver resolves Bluesky DIDs to handles by querying the PLC directory.
// Results are memoized through an optional cache since articles often embed
// several posts by the same author.
type Resolver struct {
	directory string
	client    *http.Client
	cache     embedtrace.Cache
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithDirectory overrides the PLC directory host.
// Defaults to https://plc.directory.
func WithDirectory(directory string) ResolverOption {
	return func(r *Resolver) {
		r.directory = directory
	}
}

// WithResolveTimeout sets the timeout for directory lookups.
// Defaults to DefaultResolveTimeout (10s) if not specified.
func WithResolveTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.client.Timeout = d
	}
}

// WithResolveCache memoizes resolutions through the given cache.
func WithResolveCache(cache embedtrace.Cache) ResolverOption {
	return func(r *Resolver) {
		r.cache = cache
	}
}

// NewResolver creates a Resolver.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		directory: defaultDirectory,
		client: &http.Client{
			Timeout: DefaultResolveTimeout,
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve looks up a DID document and returns the handle from its first
// at:// alias. Callers fall back to the DID string on error.
func (r *Resolver) Resolve(ctx context.Context, did string) (string, error) {
	if r.cache != nil {
		if handle, ok := r.cache.Get(did); ok {
			return handle, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.directory+"/"+did, nil)
	if err != nil {
		return "", err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", embedtrace.Errorf(embedtrace.EUNAVAILABLE, "directory error (status %d) for %s", resp.StatusCode, did)
	}

	var doc didDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", err
	}

	for _, alias := range doc.AlsoKnownAs {
		if handle, ok := strings.CutPrefix(alias, "at://"); ok && handle != "" {
			if r.cache != nil {
				r.cache.Set(did, handle)
			}
			return handle, nil
		}
	}

	return "", embedtrace.Errorf(embedtrace.ENOTFOUND, "no handle alias in DID document for %s", did)
}

type didDocument struct {
	AlsoKnownAs []string `json:"alsoKnownAs"`
}
