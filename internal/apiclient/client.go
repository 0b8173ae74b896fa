// Package apiclient is the single choke point for calls to the cinema REST
// backend.  Every operation is a fresh request: there are no retries and no
// caching, and every failure surfaces as a *RequestError.
package apiclient

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

	"github.com/iliyamo/cinema-storefront/internal/logging"
)

// DefaultTimeout bounds a single backend request.
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of an error response is read for message
// extraction.
const maxErrorBody = 1 << 20

// Client talks to the backend under <baseURL>/api.
type Client struct {
	base string
	hc   *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient uses a copy of hc for every request.  The timeout passed
// to New is applied to the copy unless hc already has one; hc itself is
// never modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		cp := *hc
		c.hc = &cp
	}
}

// New builds a Client for the backend rooted at baseURL.  A non-positive
// timeout selects DefaultTimeout.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		base: strings.TrimRight(baseURL, "/") + "/api",
		hc:   &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	if c.hc.Timeout == 0 {
		c.hc.Timeout = timeout
	}
	return c
}

// do performs one request and decodes a 2xx JSON body into out (when non-nil).
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return &RequestError{Op: op, Message: "could not encode request", Err: err}
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return &RequestError{Op: op, Message: "could not build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := logging.FromContext(ctx).WithField("op", op)
	log.Debugf("API Request: %s %s", method, path)

	resp, err := c.hc.Do(req)
	if err != nil {
		log.WithError(err).Warn("API Error: transport failure")
		return &RequestError{Op: op, Message: transportMessage(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := extractMessage(raw)
		if msg == "" {
			msg = fmt.Sprintf("%s (status %d)", fallbackMessage, resp.StatusCode)
		}
		log.WithField("status", resp.StatusCode).Warnf("API Error: %s", msg)
		return &RequestError{Op: op, Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RequestError{Op: op, Status: resp.StatusCode, Message: "invalid response from server", Err: err}
	}
	return nil
}

func transportMessage(err error) string {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Timeout() {
		return "the server took too long to respond"
	}
	return "could not reach the server"
}
