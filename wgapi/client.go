package wgapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/s0up4200/wgapi/cache"
)

// Client owns the collaborators shared by every Result: the transport, the
// response cache and the retry policy.
type Client struct {
	transport Transport
	cache     cache.Cache
	retry     RetryPolicy
	flight    singleflight.Group
	logger    zerolog.Logger
}

// Option configures a Client
type Option func(*clientOptions)

type clientOptions struct {
	transport  Transport
	cache      cache.Cache
	retry      RetryPolicy
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
}

// WithTransport replaces the HTTP transport
func WithTransport(t Transport) Option {
	return func(o *clientOptions) {
		o.transport = t
	}
}

// WithCache sets the response cache. Defaults to the process-wide cache.
func WithCache(c cache.Cache) Option {
	return func(o *clientOptions) {
		o.cache = c
	}
}

// WithRetryPolicy sets the default retry policy
func WithRetryPolicy(p RetryPolicy) Option {
	return func(o *clientOptions) {
		o.retry = p
	}
}

// WithHTTPClient sets the http.Client used by the default transport
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = c
	}
}

// WithTimeout sets the HTTP client timeout of the default transport
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = timeout
	}
}

// WithUserAgent sets the User-Agent header of the default transport
func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		o.userAgent = userAgent
	}
}

// NewClient creates a Client
func NewClient(logger zerolog.Logger, opts ...Option) *Client {
	o := clientOptions{
		retry:     DefaultRetryPolicy(),
		timeout:   30 * time.Second,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.transport == nil {
		httpClient := o.httpClient
		if httpClient == nil {
			httpClient = &http.Client{Timeout: o.timeout}
		}
		o.transport = NewHTTPTransport(httpClient, o.userAgent)
	}
	if o.cache == nil {
		o.cache = cache.Default()
	}

	return &Client{
		transport: o.transport,
		cache:     o.cache,
		retry:     o.retry,
		logger:    logger,
	}
}

// ResultOption configures a Result
type ResultOption func(*Result)

// WithPagination makes the Result iterate transparently across pages
func WithPagination(paginate bool) ResultOption {
	return func(r *Result) {
		r.paginate = paginate
	}
}

// WithMaxAttempts overrides the attempt budget for this Result
func WithMaxAttempts(attempts int) ResultOption {
	return func(r *Result) {
		r.retry = r.retry.WithAttempts(attempts)
	}
}

// NewResult creates a lazily fetched Result for endpoint and params. No
// request is made until the data is accessed.
func (c *Client) NewResult(endpoint string, params Params, opts ...ResultOption) *Result {
	r := &Result{
		client: c,
		url:    endpoint,
		params: Normalize(params),
		pageNo: 1,
		retry:  c.retry,
	}
	if page, err := strconv.Atoi(r.params[PageParam]); err == nil && page > 0 {
		r.pageNo = page
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// load returns the cached entry for key, fetching it on a miss. Concurrent
// loads of the same key share a single request. Each caller stops waiting
// when its own ctx is done; the shared request outlives any single caller.
func (c *Client) load(ctx context.Context, endpoint, key string, params map[string]string, policy RetryPolicy) (cache.Entry, error) {
	if entry, ok, err := c.cache.Get(ctx, key); err != nil {
		return cache.Entry{}, err
	} else if ok {
		c.logger.Trace().Str("key", key).Msg("Cache hit")
		return entry, nil
	}

	ch := c.flight.DoChan(key, func() (any, error) {
		ctx := context.WithoutCancel(ctx)

		// another caller may have filled the key while we waited
		if entry, ok, err := c.cache.Get(ctx, key); err == nil && ok {
			return entry, nil
		}

		var entry cache.Entry
		err := policy.Do(ctx, func(attempt int) error {
			c.logger.Debug().
				Str("url", endpoint).
				Str("key", key).
				Int("attempt", attempt).
				Msg("Making API request")

			resp, err := c.transport.Get(ctx, endpoint, Query(params))
			if err != nil {
				return err
			}
			if resp.Status == "error" {
				if resp.Error == nil {
					resp.Error = &RequestError{Message: "UNKNOWN_ERROR"}
				}
				c.logger.Warn().
					Str("url", endpoint).
					Int("attempt", attempt).
					Int("code", resp.Error.Code).
					Str("message", resp.Error.Message).
					Msg("API returned error")
				return resp.Error
			}
			entry = cache.Entry{Data: resp.Data, Meta: resp.Meta}
			return nil
		})
		if err != nil {
			return nil, err
		}

		if err := c.cache.Put(ctx, key, entry); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("Failed to store response in cache")
		}
		return entry, nil
	})

	select {
	case <-ctx.Done():
		return cache.Entry{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return cache.Entry{}, res.Err
		}
		return res.Val.(cache.Entry), nil
	}
}
