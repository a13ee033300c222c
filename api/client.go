// Package api is the REST facade over the rate-limit governor: a small,
// representative set of CRUD endpoints fully wired end to end (channel,
// message, guild, role, invite, webhook), all built on the unexported do
// helper, so another documented Discord REST endpoint is added as one more
// such method. Every request is submitted through a ratelimit.Governor.
package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gorilla/schema"
	"github.com/pkg/errors"

	"github.com/riftcord/corebot/json"
	"github.com/riftcord/corebot/ratelimit"
)

// DefaultVersion is the REST API version path segment this client targets.
const DefaultVersion = "10"

// BaseURL is the Discord REST origin; overridable for testing against a
// local fake server.
var BaseURL = "https://discord.com/api/v" + DefaultVersion

// UserAgent is sent on every request per Discord's REST guidelines.
var UserAgent = "DiscordBot (https://github.com/riftcord/corebot, v1.0.0)"

var encoder = schema.NewEncoder()

// Client is a thin REST facade: it builds requests, threads the bot token
// and user agent, and submits everything through a shared Governor so every
// caller benefits from the same bucket and global-lockout state.
type Client struct {
	gov       *ratelimit.Governor
	token     string
	userAgent string
	baseURL   string
}

// NewClient builds a Client around an existing Governor. The token is sent
// in the Authorization header as "Bot " followed by the token; no other
// token type is supported.
func NewClient(token string, gov *ratelimit.Governor) *Client {
	return &Client{
		gov:       gov,
		token:     token,
		userAgent: UserAgent,
		baseURL:   BaseURL,
	}
}

// WithUserAgent returns a shallow copy of c using the given user agent.
func (c *Client) WithUserAgent(ua string) *Client {
	cp := *c
	cp.userAgent = ua
	return &cp
}

// request is the shared plumbing every wrapped endpoint method funnels
// through: build headers, encode a body if present, submit via the
// governor, and unmarshal a JSON response if out is non-nil.
type request struct {
	method string
	path   string // fully-substituted path (no query string); also used for bucket-key derivation
	query  interface{}
	body   interface{}
	// rawBody and contentType, if set, are sent as-is instead of
	// JSON-encoding body — used for multipart/form-data file uploads built
	// with transport.Multipart.
	rawBody     []byte
	contentType string
	auditReason string
}

func (c *Client) do(ctx context.Context, r request, out interface{}) error {
	u := c.baseURL + r.path
	if r.query != nil {
		values, err := encodeQuery(r.query)
		if err != nil {
			return errors.Wrap(err, "api: failed to encode query")
		}
		if enc := values.Encode(); enc != "" {
			u += "?" + enc
		}
	}

	headers := http.Header{
		"Authorization": {"Bot " + c.token},
		"User-Agent":    {c.userAgent},
	}
	if r.auditReason != "" {
		headers.Set("X-Audit-Log-Reason", r.auditReason)
	}

	var body []byte
	switch {
	case r.rawBody != nil:
		body = r.rawBody
		headers.Set("Content-Type", r.contentType)
	case r.body != nil:
		b, err := json.Marshal(r.body)
		if err != nil {
			return errors.Wrap(err, "api: failed to encode request body")
		}
		body = b
		headers.Set("Content-Type", "application/json")
	}

	resp, err := c.gov.Do(ctx, ratelimit.Request{
		Method:  r.method,
		Route:   r.path,
		URL:     u,
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		return err
	}

	if out != nil && len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, out); err != nil {
			return errors.Wrap(err, "api: failed to decode response body")
		}
	}
	return nil
}

func encodeQuery(v interface{}) (url.Values, error) {
	values := make(url.Values)
	if err := encoder.Encode(v, values); err != nil {
		return nil, err
	}
	return values, nil
}
