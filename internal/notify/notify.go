// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package notify posts chat messages to Slack-style incoming webhooks.
//
// Delivery is fire-and-forget: one POST, no retry, and the response status is
// not inspected. Only failures to build or transmit the request are returned.
package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	sferrors "sfkit/cli/internal/errors"
	"sfkit/cli/internal/logging"

	"go.uber.org/zap"
)

const (
	userAgent      = "sfkit-cli"
	DefaultTimeout = 10 * time.Second
)

// Client sends webhook messages.
type Client struct {
	http *http.Client
	log  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for delivery.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New returns a Client with a 10 second request timeout.
func New(opts ...Option) *Client {
	c := &Client{
		http: &http.Client{Timeout: DefaultTimeout},
		log:  zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SendText posts message as {"text":"<message>"}.
//
// The body is concatenated by hand and no Content-Type header is sent, which is
// what existing webhook consumers of this sender receive. Messages containing
// quotes, backslashes or control characters therefore produce malformed JSON;
// use SendDict or escape the text first when that matters.
func (c *Client) SendText(ctx context.Context, url, message string) error {
	if strings.ContainsAny(message, "\"\\\n\r\t") {
		c.log.Warn("text message contains characters that are not escaped in the payload",
			zap.Int("length", len(message)))
	}
	body := `{"text":"` + message + `"}`
	return c.post(ctx, url, body, "")
}

// SendDict renders d and posts it as a properly encoded JSON payload.
func (c *Client) SendDict(ctx context.Context, url string, d Dict) error {
	payload, err := json.Marshal(struct {
		Text string `json:"text"`
	}{Text: d.Render()})
	if err != nil {
		return sferrors.Wrap(sferrors.NotifyFailed, "encode message", err)
	}
	return c.post(ctx, url, string(payload), "application/json")
}

func (c *Client) post(ctx context.Context, url, body, contentType string) error {
	if strings.TrimSpace(url) == "" {
		return sferrors.New(sferrors.InvalidArgument, "webhook URL is required")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return sferrors.Wrap(sferrors.NotifyFailed, "build webhook request", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("webhook delivery failed", zap.String("url", logging.Mask(url)), zap.Error(err))
		return sferrors.Wrap(sferrors.NotifyFailed, "send webhook message", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	c.log.Debug("webhook posted", zap.String("url", logging.Mask(url)), zap.Int("status", resp.StatusCode))
	return nil
}
