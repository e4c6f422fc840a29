// Package api is a typed client for the meal diary backend. Every method
// returns either its payload or an *Error carrying a Kind.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mealdiary/pkg/spec"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const maxErrorBody = 4 << 10

type Client struct {
	base    *url.URL
	http    *http.Client
	tokens  oauth2.TokenSource
	limiter *rate.Limiter
	log     *zap.Logger
	newID   func() string
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.log = l } }

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(perSec float64, burst int) Option {
	return func(c *Client) {
		if perSec <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSec), burst)
	}
}

// StaticToken wraps a stored session token.
func StaticToken(token string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
}

// New creates a client for baseURL. The session token from tokens is sent
// as the raw Authorization header value.
func New(baseURL string, tokens oauth2.TokenSource, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = spec.DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must be http or https", baseURL)
	}

	c := &Client{
		base:    u,
		http:    &http.Client{Timeout: 30 * time.Second},
		tokens:  tokens,
		limiter: rate.NewLimiter(rate.Limit(10), 5),
		log:     zap.NewNop(),
		newID:   uuid.NewString,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

type request struct {
	op          string
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	header      http.Header
	// emptyOK accepts a 2xx response without a body, leaving out untouched
	emptyOK bool
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = c.base.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do performs r and decodes a JSON response into out when out is non-nil.
func (c *Client) do(ctx context.Context, r request, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &Error{Op: r.op, Kind: KindRateLimited, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.endpoint(r.path, r.query), r.body)
	if err != nil {
		return &Error{Op: r.op, Kind: KindInvalid, Err: err}
	}
	for k, vs := range r.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	req.Header.Set("Accept", "application/json")
	reqID := c.newID()
	req.Header.Set("X-Request-ID", reqID)

	if c.tokens != nil {
		tok, err := c.tokens.Token()
		if err != nil {
			return &Error{Op: r.op, Kind: KindUnauthorized, Err: err}
		}
		req.Header.Set("Authorization", tok.AccessToken)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		c.log.Warn("request failed", zap.String("op", r.op), zap.String("request_id", reqID), zap.Error(err))
		return &Error{Op: r.op, Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug("request done",
		zap.String("op", r.op),
		zap.String("request_id", reqID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		text := strings.TrimSpace(string(msg))
		if text == "" {
			text = http.StatusText(resp.StatusCode)
		}
		return &Error{Op: r.op, Kind: kindForStatus(resp.StatusCode), Status: resp.StatusCode, Err: errors.New(text)}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if r.emptyOK && errors.Is(err, io.EOF) {
			return nil
		}
		return &Error{Op: r.op, Kind: KindDecode, Status: resp.StatusCode, Err: err}
	}
	return nil
}

func jsonBody(op string, v any) (io.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindInvalid, Err: err}
	}
	return bytes.NewReader(b), nil
}

func requireUser(op, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return &Error{Op: op, Kind: KindInvalid, Err: errors.New("user id is required")}
	}
	return nil
}
