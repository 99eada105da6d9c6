package gridsite

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"

	"github.com/gridironlab/statline/internal/platform/logging"
	"github.com/gridironlab/statline/internal/usecase"
)

var defaultUserAgents = []string{
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/121.0",
}

type ScraperConfig struct {
	Client            *fasthttp.Client
	RequestTimeout    time.Duration
	RequestsPerSecond float64
	MaxRetries        int
	UserAgents        []string
	Logger            *logging.Logger
}

// Scraper fetches stat pages and extracts their HTML tables. Requests
// are paced by a shared limiter and rotate through a pool of browser
// user agents so the sites don't throttle the nightly run.
type Scraper struct {
	client         *fasthttp.Client
	requestTimeout time.Duration
	limiter        *rate.Limiter
	maxRetries     int
	userAgents     []string
	nextAgent      atomic.Uint64
	logger         *logging.Logger
}

func NewScraper(cfg ScraperConfig) *Scraper {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	client := cfg.Client
	if client == nil {
		client = &fasthttp.Client{
			MaxConnsPerHost: 4,
			ReadBufferSize:  64 << 10,
		}
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	perSecond := cfg.RequestsPerSecond
	if perSecond <= 0 {
		perSecond = 0.5
	}

	agents := cfg.UserAgents
	if len(agents) == 0 {
		agents = defaultUserAgents
	}

	return &Scraper{
		client:         client,
		requestTimeout: timeout,
		limiter:        rate.NewLimiter(rate.Limit(perSecond), 1),
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		userAgents:     agents,
		logger:         logger,
	}
}

// ScrapeTables fetches one page and returns every table it carries. A
// page that cannot be fetched after retries comes back as a failure
// result, not an error; errors are reserved for bad input.
func (s *Scraper) ScrapeTables(ctx context.Context, pageURL string) (usecase.ScrapeResult, error) {
	result := usecase.ScrapeResult{URL: pageURL}

	parsed, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return result, fmt.Errorf("invalid page url %q", pageURL)
	}

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return result, err
		}

		body, err := s.fetch(parsed.String())
		if err != nil {
			lastErr = err
			if attempt < s.maxRetries {
				backoff := time.Duration(attempt+1) * time.Second
				timer := time.NewTimer(backoff)
				select {
				case <-ctx.Done():
					timer.Stop()
					return result, ctx.Err()
				case <-timer.C:
				}
			}
			continue
		}

		tables, err := extractTables(body)
		if err != nil {
			lastErr = crerr.Wrap(err, "parse page html")
			break
		}

		result.Success = true
		result.Tables = tables
		result.TablesFound = len(tables)
		s.logger.InfoContext(ctx, "page scraped", "url", pageURL, "tables_found", result.TablesFound)
		return result, nil
	}

	if lastErr != nil {
		result.Error = lastErr.Error()
	} else {
		result.Error = "page fetch failed"
	}
	s.logger.WarnContext(ctx, "page scrape failed", "url", pageURL, "error", result.Error)
	return result, nil
}

func (s *Scraper) fetch(fullURL string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetUserAgent(s.rotateUserAgent())
	req.Header.Set("accept", "text/html,application/xhtml+xml")

	if err := s.client.DoDeadline(req, resp, time.Now().Add(s.requestTimeout)); err != nil {
		return nil, crerr.Wrapf(err, "fetch %s", fullURL)
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		return nil, crerr.Newf("page status=%d url=%s body=%s", status, fullURL, bodyPreview(resp.Body()))
	}

	return append([]byte(nil), resp.Body()...), nil
}

func (s *Scraper) rotateUserAgent() string {
	n := s.nextAgent.Add(1)
	return s.userAgents[int(n-1)%len(s.userAgents)]
}

func bodyPreview(body []byte) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	limit := len(body)
	if limit > 160 {
		limit = 160
	}
	_, _ = buf.Write(body[:limit])
	if len(body) > limit {
		_, _ = buf.WriteString("...")
	}
	return buf.String()
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}
