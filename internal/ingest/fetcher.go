package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/flowsmith/mcp-node-catalog-go/internal/apptype"
	"github.com/flowsmith/mcp-node-catalog-go/internal/logger"
	"github.com/flowsmith/mcp-node-catalog-go/internal/metrics"
)

// minRequestInterval is the floor on the inter-request delay toward the
// remote source. The source enforces a request budget; never go below it.
const minRequestInterval = time.Second

// Fetcher pulls catalog definitions from a remote HTTP source. Expected
// endpoints under the base URL:
//
//	GET {base}/revision       -> plain-text revision marker
//	GET {base}/index.json     -> JSON array of record names
//	GET {base}/records/{name} -> raw definition record
//
// Requests are issued sequentially through a token-bucket limiter.
type Fetcher struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	log     logger.Logger

	mu           sync.Mutex
	lastRevision string
	cached       []apptype.CatalogEntity
}

// NewFetcher creates a Fetcher. interval below one second is raised to the
// one-second floor.
func NewFetcher(baseURL string, interval time.Duration, log logger.Logger) *Fetcher {
	if interval < minRequestInterval {
		interval = minRequestInterval
	}
	return &Fetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		log:     log,
	}
}

// Fetch pulls the full catalog from the remote source. When the remote
// revision matches the last seen one and force is false, the cached
// snapshot is returned unmodified with changed=false. Individual records
// that fail to parse are logged and skipped, never fatal to the batch.
func (f *Fetcher) Fetch(ctx context.Context, force bool) (entities []apptype.CatalogEntity, revision string, changed bool, err error) {
	done := metrics.TimeOp("fetch")
	defer func() { done(err == nil) }()

	revision, err = f.fetchText(ctx, f.baseURL+"/revision")
	if err != nil {
		return nil, "", false, fmt.Errorf("fetch revision: %w", err)
	}
	revision = strings.TrimSpace(revision)

	f.mu.Lock()
	unchanged := revision != "" && revision == f.lastRevision && f.cached != nil
	cached := f.cached
	f.mu.Unlock()
	if unchanged && !force {
		f.log.Debug("catalog source unchanged", logger.String("revision", revision))
		return cached, revision, false, nil
	}

	names, err := f.fetchIndex(ctx)
	if err != nil {
		return nil, "", false, fmt.Errorf("fetch index: %w", err)
	}

	entities = make([]apptype.CatalogEntity, 0, len(names))
	skipped := 0
	for _, name := range names {
		raw, ferr := f.fetchText(ctx, f.baseURL+"/records/"+name)
		if ferr != nil {
			return nil, "", false, fmt.Errorf("fetch record %q: %w", name, ferr)
		}
		entity, perr := ParseRecord(name, raw)
		if perr != nil {
			var malformed *MalformedRecordError
			if errors.As(perr, &malformed) {
				skipped++
				f.log.Warn("skipping malformed record",
					logger.String("record", name), logger.Error(perr))
				continue
			}
			return nil, "", false, perr
		}
		entities = append(entities, entity)
	}
	if skipped > 0 {
		f.log.Info("catalog fetch completed with skips",
			logger.Int("parsed", len(entities)), logger.Int("skipped", skipped))
	}

	f.mu.Lock()
	f.lastRevision = revision
	f.cached = entities
	f.mu.Unlock()
	return entities, revision, true, nil
}

func (f *Fetcher) fetchIndex(ctx context.Context) ([]string, error) {
	body, err := f.fetchText(ctx, f.baseURL+"/index.json")
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal([]byte(body), &names); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	return names, nil
}

func (f *Fetcher) fetchText(ctx context.Context, url string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GET %s: unexpected status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
