package kidplan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"kidplan-downloader/pkg/config"
	errs "kidplan-downloader/pkg/errors"
	"kidplan-downloader/pkg/logger"
	"kidplan-downloader/pkg/ratelimit"
	"kidplan-downloader/pkg/retry"
)

// Client is an authenticated-session HTTP client for Kidplan
type Client struct {
	httpClient   *http.Client
	baseURL      string
	userAgent    string
	timeout      time.Duration
	maxRedirects int
	limiter      ratelimit.Limiter
	retry        *retry.Config
	logger       logger.Logger
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL overrides the application root
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(base, "/") }
}

// WithUserAgent overrides the user agent sent with every request
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithMaxRedirects sets how many redirects are followed
func WithMaxRedirects(n int) Option {
	return func(c *Client) { c.maxRedirects = n }
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimiter paces every request through l
func WithRateLimiter(l ratelimit.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithRetry retries transient failures up to maxRetries times
func WithRetry(maxRetries int, baseDelay time.Duration) Option {
	return func(c *Client) {
		c.retry.MaxRetries = maxRetries
		c.retry.InitialInterval = baseDelay
	}
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a new Kidplan client
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:      config.DefaultBaseURL,
		userAgent:    config.DefaultUserAgent,
		timeout:      60 * time.Second,
		maxRedirects: 10,
		limiter:      ratelimit.Unlimited(),
		retry:        retry.NoRetry(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = logger.GetLogger()
	}
	c.retry.Logger = c.logger.WithField("component", "kidplan")

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		c.httpClient.Jar = jar
	}
	if c.httpClient.CheckRedirect == nil {
		limit := c.maxRedirects
		c.httpClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) > limit {
				return fmt.Errorf("stopped after %d redirects", limit)
			}
			return nil
		}
	}

	return c, nil
}

// NewClientFromConfig creates a client from the kidplan and rate limit
// configuration sections
func NewClientFromConfig(cfg *config.Config, log logger.Logger) (*Client, error) {
	return NewClient(
		WithBaseURL(cfg.Kidplan.BaseURL),
		WithUserAgent(cfg.Kidplan.UserAgent),
		WithTimeout(cfg.Kidplan.Timeout),
		WithMaxRedirects(cfg.Kidplan.MaxRedirects),
		WithRateLimiter(ratelimit.NewTokenBucket(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)),
		WithRetry(cfg.RateLimit.MaxRetries, cfg.RateLimit.RetryDelay),
		WithLogger(log),
	)
}

// BaseURL returns the application root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// bodyFunc rebuilds the request body for every attempt
type bodyFunc func() io.Reader

// do sends a request with rate limiting and retries. Only 2xx responses
// are returned; anything else becomes a typed error.
func (c *Client) do(ctx context.Context, method, rawURL string, body bodyFunc, contentType string) (*http.Response, error) {
	return retry.DoWithResult(ctx, func() (*http.Response, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		var reader io.Reader
		if body != nil {
			reader = body()
		}
		req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
		if err != nil {
			return nil, errs.Wrap(errs.ErrorTypeUnknown, "failed to create request", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept-Language", "nb-NO,nb;q=0.9,en;q=0.8")
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.WithError(err).WarnWithFields("HTTP request failed", map[string]interface{}{
				"method": method,
				"url":    redact(rawURL),
			})
			return nil, errs.Wrap(errs.ErrorTypeNetwork, "request failed", err)
		}
		logger.LogRequest(c.logger, method, redact(rawURL), resp.StatusCode, time.Since(start))

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
			resp.Body.Close()
			return nil, errs.FromStatus(resp.StatusCode, redact(rawURL))
		}
		return resp, nil
	}, c.retry)
}

// GetText fetches a page and returns its body
func (c *Client) GetText(ctx context.Context, rawURL string) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, rawURL, nil, "")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errs.Wrap(errs.ErrorTypeNetwork, "failed to read response body", err)
	}
	return string(data), nil
}

// GetJSON fetches rawURL and decodes the JSON body into target
func (c *Client) GetJSON(ctx context.Context, rawURL string, target interface{}) error {
	text, err := c.GetText(ctx, rawURL)
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(text), target); err != nil {
		preview := text
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          redact(rawURL),
			"error":        err.Error(),
			"body_preview": preview,
		})
		return errs.Wrap(errs.ErrorTypeParsing, "failed to parse JSON", err)
	}
	return nil
}

// PostForm submits a form and returns the body of the final page
func (c *Client) PostForm(ctx context.Context, rawURL string, values url.Values) (string, error) {
	encoded := values.Encode()
	resp, err := c.do(ctx, http.MethodPost, rawURL, func() io.Reader {
		return strings.NewReader(encoded)
	}, "application/x-www-form-urlencoded")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errs.Wrap(errs.ErrorTypeNetwork, "failed to read response body", err)
	}
	return string(data), nil
}

// Download opens a picture for streaming. The caller closes the body.
func (c *Client) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	resp, err := c.do(ctx, http.MethodGet, rawURL, nil, "")
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// redact hides credentials passed in query strings
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if q.Has("password") {
		q.Set("password", "xxxxx")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
