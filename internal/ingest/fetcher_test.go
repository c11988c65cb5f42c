package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/flowsmith/mcp-node-catalog-go/internal/logger"
)

type fakeSource struct {
	revision string
	records  map[string]string
	requests atomic.Int64
}

func (s *fakeSource) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/revision", func(w http.ResponseWriter, _ *http.Request) {
		s.requests.Add(1)
		fmt.Fprintln(w, s.revision)
	})
	mux.HandleFunc("/index.json", func(w http.ResponseWriter, _ *http.Request) {
		s.requests.Add(1)
		names := make([]string, 0, len(s.records))
		for name := range s.records {
			names = append(names, name)
		}
		_ = json.NewEncoder(w).Encode(names)
	})
	mux.HandleFunc("/records/", func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		raw, ok := s.records[r.URL.Path[len("/records/"):]]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, raw)
	})
	return mux
}

// newTestFetcher bypasses the one-second request floor so tests run fast.
func newTestFetcher(t *testing.T, src *fakeSource) *Fetcher {
	t.Helper()
	srv := httptest.NewServer(src.handler())
	t.Cleanup(srv.Close)
	f := NewFetcher(srv.URL, time.Second, logger.Nop())
	f.limiter = rate.NewLimiter(rate.Inf, 1)
	return f
}

func TestFetcherPullsCatalog(t *testing.T) {
	src := &fakeSource{
		revision: "rev-1",
		records: map[string]string{
			"slack":    `displayName: 'Slack'` + "\n" + `name: 'slack'`,
			"postgres": `displayName: 'PostgreSQL'` + "\n" + `name: 'postgres'`,
		},
	}
	f := newTestFetcher(t, src)

	entities, revision, changed, err := f.Fetch(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "rev-1", revision)
	assert.Len(t, entities, 2)
}

func TestFetcherUnchangedRevisionServesCache(t *testing.T) {
	src := &fakeSource{
		revision: "rev-1",
		records:  map[string]string{"slack": `displayName: 'Slack'` + "\n" + `name: 'slack'`},
	}
	f := newTestFetcher(t, src)

	first, _, changed, err := f.Fetch(context.Background(), false)
	require.NoError(t, err)
	require.True(t, changed)
	afterFirst := src.requests.Load()

	second, _, changed, err := f.Fetch(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, first, second)
	// Only the revision probe hits the source on the unchanged path.
	assert.Equal(t, afterFirst+1, src.requests.Load())
}

func TestFetcherForceRefetches(t *testing.T) {
	src := &fakeSource{
		revision: "rev-1",
		records:  map[string]string{"slack": `displayName: 'Slack'` + "\n" + `name: 'slack'`},
	}
	f := newTestFetcher(t, src)

	_, _, _, err := f.Fetch(context.Background(), false)
	require.NoError(t, err)

	_, _, changed, err := f.Fetch(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestFetcherRevisionBumpRefetches(t *testing.T) {
	src := &fakeSource{
		revision: "rev-1",
		records:  map[string]string{"slack": `displayName: 'Slack'` + "\n" + `name: 'slack'`},
	}
	f := newTestFetcher(t, src)

	_, _, _, err := f.Fetch(context.Background(), false)
	require.NoError(t, err)

	src.revision = "rev-2"
	src.records["discord"] = `displayName: 'Discord'` + "\n" + `name: 'discord'`

	entities, revision, changed, err := f.Fetch(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "rev-2", revision)
	assert.Len(t, entities, 2)
}

func TestFetcherSkipsMalformedRecords(t *testing.T) {
	src := &fakeSource{
		revision: "rev-1",
		records: map[string]string{
			"slack":  `displayName: 'Slack'` + "\n" + `name: 'slack'`,
			"broken": `name: 'broken'`,
		},
	}
	f := newTestFetcher(t, src)

	entities, _, _, err := f.Fetch(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "slack", entities[0].Identifier)
}

func TestFetcherSourceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	f := NewFetcher(srv.URL, time.Second, logger.Nop())
	f.limiter = rate.NewLimiter(rate.Inf, 1)

	_, _, _, err := f.Fetch(context.Background(), false)
	assert.Error(t, err)
}

func TestNewFetcherEnforcesIntervalFloor(t *testing.T) {
	f := NewFetcher("http://example.invalid", 0, logger.Nop())
	assert.Equal(t, rate.Every(minRequestInterval), f.limiter.Limit())
}
