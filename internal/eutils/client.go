package eutils

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/proxy"
	"golang.org/x/time/rate"

	"github.com/bluehealth/cooccur/internal/model"
	"github.com/bluehealth/cooccur/internal/provider"
)

// DefaultBaseURL is the public E-utilities endpoint.
const DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/"

// Published request rate limits.
const (
	anonymousRate = 3
	apiKeyRate    = 10
)

// maxResponseSize bounds a count reply; real ones are well under 1KB.
const maxResponseSize = 1 << 20

// Client queries E-utilities for hit counts. It implements provider.CountsProvider.
type Client struct {
	// baseURL is the E-utilities root, ending in '/'.
	baseURL string

	// httpClient performs the requests.
	httpClient *http.Client

	// apiKey raises the rate limit when set. It is never logged.
	apiKey string

	// field restricts the search, e.g. "TIAB" for title/abstract.
	field string

	// limiter paces outgoing requests.
	limiter *rate.Limiter

	// logger for structured logging.
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the E-utilities endpoint.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		c.baseURL = base
	}
}

// WithAPIKey sets the NCBI API key.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithField sets the search field tag.
func WithField(field string) Option {
	return func(c *Client) {
		c.field = field
	}
}

// WithHTTPClient replaces the HTTP client, e.g. one routed through a proxy.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRateLimit overrides the request rate in requests per second.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a Client with the given per-request timeout.
func NewClient(timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.limiter == nil {
		perSecond := anonymousRate
		if c.apiKey != "" {
			perSecond = apiKeyRate
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}

	return c
}

// NewProxyHTTPClient creates an HTTP client that dials through a SOCKS5 proxy
// at proxyAddress ("host:port").
func NewProxyHTTPClient(proxyAddress string, timeout time.Duration) (*http.Client, error) {
	if !isValidProxyAddress(proxyAddress) {
		return nil, ErrInvalidProxyAddress
	}

	dialer, err := proxy.SOCKS5("tcp", proxyAddress, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			if cd, ok := dialer.(proxy.ContextDialer); ok {
				return cd.DialContext(ctx, network, addr)
			}
			return dialer.Dial(network, addr)
		},
		TLSHandshakeTimeout: timeout,
	}

	return &http.Client{Transport: transport, Timeout: timeout}, nil
}

// isValidProxyAddress checks for "host:port" with a port in 1..65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 1 && n <= 65535
}

// Collect implements provider.CountsProvider.
func (c *Client) Collect(ctx context.Context, req provider.Request) provider.Result {
	db := req.Source
	if db == "" {
		db = "pubmed"
	}

	m := model.NewCountsMatrix(req.A, req.B)
	m.Source = db

	cache := make(map[string]int64)
	count := func(term string) (int64, error) {
		if n, ok := cache[term]; ok {
			return n, nil
		}
		n, err := c.Count(ctx, db, term, req.RetMax)
		if err != nil {
			return 0, err
		}
		cache[term] = n
		return n, nil
	}

	termsA := dimensionTerms(req.A)
	termsB := dimensionTerms(req.B)

	c.logger.Info("collecting counts",
		"db", db,
		"termsA", len(termsA),
		"termsB", len(termsB),
		"requests", len(termsA)+len(termsB)+len(termsA)*len(termsB),
	)

	var err error
	for i, ta := range termsA {
		if m.MarginalA[i], err = count(ta); err != nil {
			return provider.Failure(fmt.Errorf("%w: %w", provider.ErrUnavailable, err))
		}
	}
	for j, tb := range termsB {
		if m.MarginalB[j], err = count(tb); err != nil {
			return provider.Failure(fmt.Errorf("%w: %w", provider.ErrUnavailable, err))
		}
	}
	for i, ta := range termsA {
		for j, tb := range termsB {
			if m.Counts[i][j], err = count(ta + "AND" + tb); err != nil {
				return provider.Failure(fmt.Errorf("%w: %w", provider.ErrUnavailable, err))
			}
		}
		c.logger.Debug("row collected", "term", req.A.Label(i), "row", i+1, "of", len(termsA))
	}

	return provider.Success(m)
}

// esearchReply is the subset of the esearch JSON reply we read.
type esearchReply struct {
	Result struct {
		Count string `json:"count"`
		Error string `json:"ERROR"`
	} `json:"esearchresult"`
}

// Count returns the number of records matching term in db.
func (c *Client) Count(ctx context.Context, db, term string, retmax int) (int64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	params := url.Values{}
	params.Set("db", db)
	params.Set("term", term)
	params.Set("rettype", "count")
	params.Set("retmode", "json")
	if retmax > 0 {
		params.Set("retmax", strconv.Itoa(retmax))
	}
	if c.field != "" {
		params.Set("field", c.field)
	}
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	endpoint := c.baseURL + "esearch.fcgi?" + params.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// The URL carries the API key; report the term instead.
		return 0, fmt.Errorf("request for %q failed: %w", term, unwrapURLError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return 0, fmt.Errorf("failed to read response: %w", err)
	}

	var reply esearchReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	if reply.Result.Error != "" {
		return 0, fmt.Errorf("%w: %s", ErrQueryRejected, reply.Result.Error)
	}

	n, err := strconv.ParseInt(reply.Result.Count, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: count %q", ErrBadResponse, reply.Result.Count)
	}
	return n, nil
}

// unwrapURLError strips the *url.Error wrapper, whose message embeds the
// full request URL including the API key.
func unwrapURLError(err error) error {
	if ue, ok := err.(*url.Error); ok {
		return ue.Err
	}
	return err
}

// dimensionTerms builds the query term for every group of d.
func dimensionTerms(d model.Dimension) []string {
	out := make([]string, d.Len())
	for i, g := range d.Groups {
		var excl model.TermGroup
		if i < len(d.Exclusions) {
			excl = d.Exclusions[i]
		}
		out[i] = BuildTerm(g, excl)
	}
	return out
}

// BuildTerm renders a group and its optional exclusions as a search term.
func BuildTerm(group, exclusions model.TermGroup) string {
	term := orGroup(group)
	if len(exclusions) > 0 {
		term += "NOT" + orGroup(exclusions)
	}
	return term
}

// orGroup quotes every synonym and joins them with OR inside parentheses.
func orGroup(g model.TermGroup) string {
	quoted := make([]string, len(g))
	for i, s := range g {
		quoted[i] = `"` + strings.ReplaceAll(s, `"`, "") + `"`
	}
	return "(" + strings.Join(quoted, "OR") + ")"
}
