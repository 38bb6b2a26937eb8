package wowhead

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wowprofile/pkg/logger"
	"wowprofile/pkg/raritycache"
)

const page = `<html><body><div class="infobox">Attained by 12% of profiles</div></body></html>`

func newScraper(t *testing.T, srv *httptest.Server, log logger.Logger, cache Cache) *Scraper {
	t.Helper()
	if log == nil {
		log = logger.NewNopLogger()
	}
	return New(Options{
		BaseURL:    srv.URL,
		RetryDelay: time.Millisecond,
		Timeout:    2 * time.Second,
		Cache:      cache,
		Logger:     log,
	})
}

func TestKindPath(t *testing.T) {
	assert.Equal(t, "/mount/6", KindMount.Path(6))
	assert.Equal(t, "/battle-pet/39", KindBattlePet.Path(39))
	assert.Equal(t, "/item=54452", KindItem.Path(54452))
	assert.Equal(t, "/title-mask/77", KindTitle.Path(77))
}

func TestScrapeFound(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.String()
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	rarity := newScraper(t, srv, nil, nil).Scrape(context.Background(), KindItem, 54452)

	require.NotNil(t, rarity)
	assert.Equal(t, 12, *rarity)
	assert.Equal(t, "/item=54452", gotPath)
}

func TestScrapeSucceedsOnFifthAttempt(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 5 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	rarity := newScraper(t, srv, nil, nil).Scrape(context.Background(), KindMount, 6)

	require.NotNil(t, rarity)
	assert.Equal(t, 12, *rarity)
	assert.Equal(t, int32(5), calls.Load())
}

func TestScrapeGivesUpAfterFiveAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	tl := logger.NewTestLogger()

	rarity := newScraper(t, srv, tl, nil).Scrape(context.Background(), KindMount, 6)

	assert.Nil(t, rarity)
	assert.Equal(t, int32(DefaultMaxAttempts), calls.Load())
	assert.True(t, tl.HasMessage("Rarity fetch failed"))
}

func TestScrapeNoMatch(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`<html><body>No data yet</body></html>`))
	}))
	defer srv.Close()

	rarity := newScraper(t, srv, nil, nil).Scrape(context.Background(), KindTitle, 77)

	assert.Nil(t, rarity)
	assert.Equal(t, int32(1), calls.Load(), "a page without the sentence is not retried")
}

func TestScrapeNotFoundIsNoMatch(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	cache := &memCache{entries: map[string]*int{}}
	s := newScraper(t, srv, nil, cache)

	assert.Nil(t, s.Scrape(context.Background(), KindTitle, 404))
	assert.Nil(t, s.Scrape(context.Background(), KindTitle, 404))
	assert.Equal(t, int32(1), calls.Load(), "a missing page is neither retried nor refetched")
	assert.Equal(t, 1, cache.puts)
}

func TestScrapeRejectsOutOfRange(t *testing.T) {
	for _, body := range []string{
		`Attained by 140% of profiles`,
		`Attained by 99999999999999999999999% of profiles`,
	} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))

		assert.Nil(t, newScraper(t, srv, nil, nil).Scrape(context.Background(), KindMount, 1), body)
		srv.Close()
	}
}

func TestScrapeReadsThroughInlineMarkup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>Attained by <b>7%</b>
			of profiles</p></body></html>`))
	}))
	defer srv.Close()

	rarity := newScraper(t, srv, nil, nil).Scrape(context.Background(), KindBattlePet, 39)

	require.NotNil(t, rarity)
	assert.Equal(t, 7, *rarity)
}

func TestScrapeStopsOnCancellation(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Nil(t, newScraper(t, srv, nil, nil).Scrape(ctx, KindMount, 6))
	assert.Equal(t, int32(0), calls.Load())
}

type memCache struct {
	mu      sync.Mutex
	entries map[string]*int
	puts    int
}

func (m *memCache) key(kind string, id int) string {
	return fmt.Sprintf("%s/%d", kind, id)
}

func (m *memCache) Get(ctx context.Context, kind string, id int) (*int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[m.key(kind, id)]
	return v, ok, nil
}

func (m *memCache) Put(ctx context.Context, kind string, id int, rarity *int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[m.key(kind, id)] = rarity
	m.puts++
	return nil
}

func TestScrapeUsesCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	cache := &memCache{entries: map[string]*int{}}
	s := newScraper(t, srv, nil, cache)

	first := s.Scrape(context.Background(), KindMount, 6)
	second := s.Scrape(context.Background(), KindMount, 6)

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, *first, *second)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, cache.puts)
}

func TestScrapeDoesNotCacheFetchFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	cache := &memCache{entries: map[string]*int{}}
	assert.Nil(t, newScraper(t, srv, nil, cache).Scrape(context.Background(), KindMount, 6))
	assert.Equal(t, 0, cache.puts)
}

func TestScrapeWithSQLiteCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`<html>nothing</html>`))
	}))
	defer srv.Close()

	cache, err := raritycache.Open(filepath.Join(t.TempDir(), "rarity.db"), time.Hour, logger.NewNopLogger())
	require.NoError(t, err)
	defer cache.Close()

	s := newScraper(t, srv, nil, cache)
	assert.Nil(t, s.Scrape(context.Background(), KindTitle, 77))
	assert.Nil(t, s.Scrape(context.Background(), KindTitle, 77))
	assert.Equal(t, int32(1), calls.Load(), "a remembered no-match skips the page load")
}
