package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kmichalik/embedtrace"
	embedhttp "github.com/kmichalik/embedtrace/http"
	"github.com/kmichalik/embedtrace/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time verification that Expander implements embedtrace.URLExpander
var _ embedtrace.URLExpander = (*embedhttp.Expander)(nil)

func TestExpander_Expand(t *testing.T) {
	t.Parallel()

	t.Run("follows redirects to the final URL", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		server := httptest.NewServer(mux)
		defer server.Close()

		mux.HandleFunc("/short", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, server.URL+"/final", http.StatusFound)
		})
		mux.HandleFunc("/final", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		expander := embedhttp.NewExpander()
		finalURL, err := expander.Expand(context.Background(), server.URL+"/short")

		require.NoError(t, err)
		assert.Equal(t, server.URL+"/final", finalURL)
	})

	t.Run("returns error for failing destinations", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		expander := embedhttp.NewExpander()
		_, err := expander.Expand(context.Background(), server.URL+"/gone")

		require.Error(t, err)
		assert.Equal(t, embedtrace.EUNAVAILABLE, embedtrace.ErrorCode(err))
	})

	t.Run("serves repeated expansions from the cache", func(t *testing.T) {
		t.Parallel()

		requests := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		store := map[string]string{}
		cache := &mock.Cache{
			GetFn: func(key string) (string, bool) {
				v, ok := store[key]
				return v, ok
			},
			SetFn: func(key, value string) { store[key] = value },
		}

		expander := embedhttp.NewExpander(embedhttp.WithExpandCache(cache))

		first, err := expander.Expand(context.Background(), server.URL+"/short")
		require.NoError(t, err)
		second, err := expander.Expand(context.Background(), server.URL+"/short")
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, requests)
	})
}
