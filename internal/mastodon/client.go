package mastodon

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tomnomnom/linkheader"
	"golang.org/x/time/rate"

	logx "reblograffle/pkg/logx"
)

// maxBodyBytes bounds a single page read.
const maxBodyBytes = 8 << 20

type Config struct {
	// MaxPages > 1 follows Link rel="next". 0 or 1 means a single GET.
	MaxPages       int
	RequestsPerSec float64

	Timeout            time.Duration
	InsecureSkipVerify bool
	UserAgent          string
}

// Client issues reblogged_by requests.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	log     logx.Logger
}

func New(cfg Config, log logx.Logger) *Client {
	if log.IsZero() {
		log = logx.Nop()
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 1
	}
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = 1
	}
	return &Client{
		cfg:     cfg,
		http:    NewHTTPClient(cfg.Timeout, cfg.InsecureSkipVerify, log),
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1),
		log:     log,
	}
}

// NewHTTPClient builds the client shared by fetcher and webhook.
// insecure disables certificate verification and is logged loudly.
func NewHTTPClient(timeout time.Duration, insecure bool, log logx.Logger) *http.Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	if insecure {
		if !log.IsZero() {
			log.Warn("TLS certificate verification is DISABLED (http.insecure_skip_verify=true)")
		}
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via config
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}

// RebloggedBy returns the accounts that reblogged the status behind url.
func (c *Client) RebloggedBy(ctx context.Context, url string) ([]Account, error) {
	var all []Account
	next := url
	for page := 1; next != "" && page <= c.cfg.MaxPages; page++ {
		// The bucket starts full, so the first request is not delayed.
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &FetchError{URL: next, Err: err}
		}

		accounts, link, err := c.fetchPage(ctx, next)
		if err != nil {
			return nil, err
		}
		all = append(all, accounts...)
		c.log.Debug("page fetched", logx.Int("page", page), logx.Int("accounts", len(accounts)))

		next = nextLink(link)
	}
	if all == nil {
		all = []Account{}
	}
	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, url string) ([]Account, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, "", &FetchError{URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if ua := strings.TrimSpace(c.cfg.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, "", &FetchError{URL: url, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode/100 != 2 {
		return nil, "", &FetchError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	accounts, err := decodeAccounts(body)
	if err != nil {
		return nil, "", &FetchError{URL: url, StatusCode: resp.StatusCode, Err: err}
	}
	return accounts, resp.Header.Get("Link"), nil
}

func nextLink(header string) string {
	if strings.TrimSpace(header) == "" {
		return ""
	}
	for _, l := range linkheader.Parse(header).FilterByRel("next") {
		if u := strings.TrimSpace(l.URL); u != "" {
			return u
		}
	}
	return ""
}
