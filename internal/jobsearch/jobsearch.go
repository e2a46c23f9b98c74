package jobsearch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/spigell/skillbuddy/internal/ai"
)

const (
	apiURL    = "https://serpapi.com/search"
	userAgent = "spigell/skillbuddy"
	engine    = "google_jobs"

	defaultQuota      = 250
	defaultCacheTTL   = time.Hour
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 2
	defaultCount      = 10
	cacheEntries      = 128
)

// ErrTimeout marks a search attempt that ran past its deadline. It is a
// retryable backend failure.
var ErrTimeout = fmt.Errorf("job search timed out: %w", ai.ErrBackendInternal)

type Config struct {
	APIKey     string
	Endpoint   string
	Quota      int
	CacheTTL   time.Duration
	Timeout    time.Duration
	MaxRetries int
}

// Client searches Google Jobs through SerpAPI. Results are cached per query and
// every outbound attempt is charged against the request quota.
type Client struct {
	apiKey     string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string

	timeout    time.Duration
	maxRetries int
	quota      *Quota
	cache      *resultCache
	group      singleflight.Group
	newBackOff func() backoff.BackOff
}

func New(cfg Config, logger *zap.Logger) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("serpapi api key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = apiURL
	}
	quota := cfg.Quota
	if quota <= 0 {
		quota = defaultQuota
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = defaultMaxRetries
	}

	return &Client{
		apiKey: apiKey,
		logger: logger,
		HTTPClient: &http.Client{
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
		},
		UserAgent:  userAgent,
		APIURL:     endpoint,
		timeout:    timeout,
		maxRetries: retries,
		quota:      NewQuota(quota),
		cache:      newResultCache(ttl, cacheEntries),
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
	}, nil
}

// Search returns up to q.Count postings. Cached results are served unless q.Fresh is set.
func (c *Client) Search(ctx context.Context, q Query) ([]Posting, error) {
	q.Text = strings.TrimSpace(q.Text)
	q.Location = strings.TrimSpace(q.Location)
	if q.Text == "" {
		return nil, errors.New("search query is required")
	}
	if q.Count <= 0 {
		q.Count = defaultCount
	}

	key := q.cacheKey()
	if !q.Fresh {
		if postings, ok := c.cache.get(key); ok {
			c.logger.Debug("job search served from cache", zap.String("query", q.Text), zap.Int("postings", len(postings)))
			return postings, nil
		}
	}

	// The shared fetch outlives any single caller; each attempt is still
	// bounded by the per-request timeout.
	ch := c.group.DoChan(key, func() (any, error) {
		postings, err := c.fetch(context.WithoutCancel(ctx), q)
		if err != nil {
			return nil, err
		}
		c.cache.put(key, postings)
		return postings, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}

	postings := res.Val.([]Posting)
	shared := res.Shared
	c.logger.Info("job search finished",
		zap.String("query", q.Text),
		zap.String("location", q.Location),
		zap.Int("postings", len(postings)),
		zap.Bool("shared", shared),
		zap.Int("remaining_quota", c.quota.Remaining()),
	)

	return clonePostings(postings), nil
}

// Remaining reports how many requests are left in the current period.
func (c *Client) Remaining() int {
	return c.quota.Remaining()
}

// Close releases idle connections.
func (c *Client) Close() {
	c.HTTPClient.CloseIdleConnections()
}

func (c *Client) fetch(ctx context.Context, q Query) ([]Posting, error) {
	attempt := 0
	op := func() ([]Posting, error) {
		attempt++
		if err := c.quota.Reserve(); err != nil {
			return nil, backoff.Permanent(err)
		}

		postings, err := c.searchOnce(ctx, q)
		if err == nil {
			return postings, nil
		}
		if ctx.Err() != nil || !retryable(err) {
			return nil, backoff.Permanent(err)
		}

		c.logger.Warn("job search attempt failed", zap.Int("attempt", attempt), zap.Error(err))
		return nil, err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), uint64(c.maxRetries)), ctx)
	return backoff.RetryWithData(op, policy)
}

func retryable(err error) bool {
	return errors.Is(err, ai.ErrBackendInternal)
}
