package wowhead

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	errs "wowprofile/pkg/errors"
	"wowprofile/pkg/logger"
	"wowprofile/pkg/retry"
)

const (
	DefaultBaseURL     = "https://www.wowhead.com"
	DefaultMaxAttempts = 5
	DefaultRetryDelay  = 100 * time.Millisecond
)

var (
	rarityPattern = regexp.MustCompile(`Attained by ([0-9]+)% of profiles`)
	tracer        = otel.Tracer("wowprofile/wowhead")
)

// Kind selects the Wowhead page family an id belongs to.
type Kind string

const (
	KindMount     Kind = "mount"
	KindBattlePet Kind = "battle-pet"
	KindItem      Kind = "item"
	KindTitle     Kind = "title-mask"
)

// Path returns the page path for id.
func (k Kind) Path(id int) string {
	if k == KindItem {
		return fmt.Sprintf("/item=%d", id)
	}
	return fmt.Sprintf("/%s/%d", k, id)
}

// Rarity is the share of profiles owning something, 0 to 100. Nil means
// unknown.
type Rarity = *int

// Cache stores rarity between runs. A nil rarity with ok set is a
// remembered "no rarity on the page".
type Cache interface {
	Get(ctx context.Context, kind string, id int) (rarity *int, ok bool, err error)
	Put(ctx context.Context, kind string, id int, rarity *int) error
}

// Options configures a Scraper. Zero values take the defaults above.
type Options struct {
	BaseURL     string
	MaxAttempts int
	RetryDelay  time.Duration
	Timeout     time.Duration
	Cache       Cache
	Logger      logger.Logger
}

// Scraper reads rarity percentages off Wowhead pages.
type Scraper struct {
	client      *resty.Client
	maxAttempts int
	retryDelay  time.Duration
	cache       Cache
	logger      logger.Logger
}

type extraction struct {
	value int
	found bool
}

func New(opts Options) *Scraper {
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", "wowprofile/1.0").
		SetHeader("Accept", "text/html")

	return &Scraper{
		client:      client,
		maxAttempts: opts.MaxAttempts,
		retryDelay:  opts.RetryDelay,
		cache:       opts.Cache,
		logger:      log.WithField("component", "wowhead"),
	}
}

// Scrape returns the rarity of kind/id, or nil when it cannot be
// determined. It never fails: fetch errors are retried and then reported
// as unknown.
func (s *Scraper) Scrape(ctx context.Context, kind Kind, id int) Rarity {
	ctx, span := tracer.Start(ctx, "wowhead.scrape", trace.WithAttributes(
		attribute.String("wowhead.kind", string(kind)),
		attribute.Int("wowhead.id", id),
	))
	defer span.End()

	if rarity, ok := s.cached(ctx, kind, id); ok {
		span.SetAttributes(attribute.Bool("wowhead.cached", true))
		logger.LogRarity(s.logger, string(kind), id, logger.RarityCached)
		return rarity
	}

	path := kind.Path(id)
	result, err := retry.DoWithResult(func() (extraction, error) {
		return s.fetch(ctx, path)
	}, &retry.Config{
		MaxAttempts: s.maxAttempts,
		Backoff:     &retry.ConstantBackoff{Delay: s.retryDelay},
		RetryIf:     retry.RetryUnlessCanceled,
		Context:     ctx,
		Logger:      s.logger,
	})
	if err != nil {
		span.RecordError(err)
		s.logger.DebugWithFields("Rarity fetch failed", map[string]interface{}{
			"kind":  string(kind),
			"id":    id,
			"error": err.Error(),
		})
		logger.LogRarity(s.logger, string(kind), id, logger.RarityFetchFailed)
		return nil
	}

	var rarity Rarity
	switch {
	case !result.found:
		logger.LogRarity(s.logger, string(kind), id, logger.RarityNoMatch)
	case result.value < 0 || result.value > 100:
		logger.LogRarity(s.logger, string(kind), id, logger.RarityOutOfRange)
	default:
		v := result.value
		rarity = &v
		span.SetAttributes(attribute.Int("wowhead.rarity", v))
		logger.LogRarity(s.logger, string(kind), id, logger.RarityFound)
	}

	s.store(ctx, kind, id, rarity)
	return rarity
}

func (s *Scraper) fetch(ctx context.Context, path string) (extraction, error) {
	start := time.Now()
	resp, err := s.client.R().SetContext(ctx).Get(path)
	url := s.client.BaseURL + path
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return extraction{}, ctxErr
		}
		return extraction{}, errs.Network(url, err)
	}
	logger.LogRequest(s.logger, http.MethodGet, url, resp.StatusCode(), time.Since(start))

	// no page for this id; the not-found page is read like any other
	if resp.StatusCode() == http.StatusNotFound {
		return extract(resp.Body(), url)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		body := resp.String()
		if len(body) > 200 {
			body = body[:200]
		}
		return extraction{}, errs.FromStatus(resp.StatusCode(), body, url)
	}

	return extract(resp.Body(), url)
}

// extract looks for the rarity sentence in the raw page first, then in the
// page text so inline markup inside the sentence does not hide it.
func extract(page []byte, url string) (extraction, error) {
	if m := rarityPattern.FindSubmatch(page); m != nil {
		return parseValue(string(m[1])), nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return extraction{}, errs.Parsing(url, http.StatusOK, err)
	}
	text := strings.Join(strings.Fields(doc.Text()), " ")
	if m := rarityPattern.FindStringSubmatch(text); m != nil {
		return parseValue(m[1]), nil
	}
	return extraction{}, nil
}

func parseValue(digits string) extraction {
	v, err := strconv.Atoi(digits)
	if err != nil {
		// too many digits to be a percentage
		return extraction{value: -1, found: true}
	}
	return extraction{value: v, found: true}
}

func (s *Scraper) cached(ctx context.Context, kind Kind, id int) (Rarity, bool) {
	if s.cache == nil {
		return nil, false
	}
	rarity, ok, err := s.cache.Get(ctx, string(kind), id)
	if err != nil {
		s.logger.WithError(err).Warn("Rarity cache read failed")
		return nil, false
	}
	return rarity, ok
}

func (s *Scraper) store(ctx context.Context, kind Kind, id int, rarity Rarity) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Put(ctx, string(kind), id, rarity); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.WithError(err).Warn("Rarity cache write failed")
	}
}
