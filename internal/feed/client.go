package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"jobfeed-engine/internal/domain"
	"jobfeed-engine/internal/logger"
)

const (
	DefaultEndpoint  = "https://testapi.getlokalapp.com/common/jobs"
	DefaultUserAgent = "JobFeed/1.0 (+local)"

	maxBodyBytes = 8 << 20
)

type Config struct {
	Endpoint  string
	UserAgent string
	// Timeout bounds a single page request. Zero means 20s.
	Timeout time.Duration
}

// Client fetches pages of postings from the jobs API. It holds no feed
// state; deduplication and bookkeeping belong to Session.
type Client struct {
	cfg     Config
	hc      *http.Client
	limiter *HostLimiter
	log     logger.Logger
}

func NewClient(cfg Config, limiter *HostLimiter, log logger.Logger) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Client{
		cfg:     cfg,
		hc:      &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		log:     log.With(logger.String("component", "feed_client")),
	}
}

// PageURL returns the request URL for page, keeping any query the
// configured endpoint already has.
func (c *Client) PageURL(page int) (string, error) {
	u, err := url.Parse(c.cfg.Endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// LoadPage issues one request for page and returns the decoded postings in
// response order. Every error is a *FetchError.
func (c *Client) LoadPage(ctx context.Context, page int) ([]domain.JobPosting, error) {
	if page < 1 {
		return nil, &FetchError{Page: page, Err: ErrInvalidPage}
	}
	apiURL, err := c.PageURL(page)
	if err != nil {
		return nil, &FetchError{Page: page, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, &FetchError{Page: page, Err: err}
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	if c.limiter != nil {
		if err := c.limiter.WaitURL(ctx, apiURL); err != nil {
			return nil, &FetchError{Page: page, Err: err}
		}
	}

	start := time.Now()
	res, err := c.hc.Do(req)
	if err != nil {
		return nil, &FetchError{Page: page, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 256))
		c.log.Warn("jobs api non-2xx",
			logger.Int("page", page),
			logger.Int("status", res.StatusCode),
			logger.String("body", string(b)),
		)
		return nil, &FetchError{Page: page, Status: res.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes+1))
	if err != nil {
		return nil, &FetchError{Page: page, Status: res.StatusCode, Err: err}
	}
	if len(body) > maxBodyBytes {
		return nil, &FetchError{Page: page, Status: res.StatusCode, Err: errors.New("response body too large")}
	}

	postings, err := c.decodeResults(page, body)
	if err != nil {
		c.log.Error("jobs api parse failed", logger.Int("page", page), logger.Error(err))
		return nil, &FetchError{Page: page, Status: res.StatusCode, Err: err}
	}

	c.log.Debug("jobs page fetched",
		logger.Int("page", page),
		logger.Int("results", len(postings)),
		logger.Duration("took", time.Since(start)),
	)
	return postings, nil
}

// decodeResults extracts the results array. Elements that do not decode
// into a posting are dropped; a missing or non-array results is fatal.
func (c *Client) decodeResults(page int, body []byte) ([]domain.JobPosting, error) {
	if !json.Valid(body) {
		return nil, &ParseError{Reason: "body is not valid JSON"}
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &ParseError{Reason: "results missing", Err: err}
	}
	raw, ok := envelope["results"]
	if !ok {
		return nil, &ParseError{Reason: "results missing"}
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, &ParseError{Reason: "results is not an array"}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &ParseError{Reason: "results is not an array", Err: err}
	}

	out := make([]domain.JobPosting, 0, len(items))
	for i, item := range items {
		var p domain.JobPosting
		if err := json.Unmarshal(item, &p); err != nil {
			c.log.Warn("dropping undecodable posting",
				logger.Int("page", page),
				logger.Int("index", i),
				logger.Error(err),
			)
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
