// Package remote consulta un servicio de capabilities externo
// (GET /v1/capabilities?user_id=...).
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"adoptipet/internal/platform/httpclient"
)

var (
	ErrNotConfigured = errors.New("capabilities client not configured")
	ErrUnauthorized  = errors.New("capabilities unauthorized")
	ErrUpstream      = errors.New("capabilities upstream error")
)

type Config struct {
	BaseURL string
	APIKey  string

	APIKeyHeader string
	Timeout      time.Duration
}

type Client struct {
	http *httpclient.Client
}

func NewClient(cfg Config, opts ...httpclient.Option) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrNotConfigured
	}
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	opts = append([]httpclient.Option{
		httpclient.WithTimeout(timeout),
		httpclient.WithHeader(h, strings.TrimSpace(cfg.APIKey)),
	}, opts...)

	c, err := httpclient.New(cfg.BaseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{http: c}, nil
}

// CapabilitiesResponse: {"capabilities": {"admin:access": true}}
type CapabilitiesResponse struct {
	Capabilities map[string]bool `json:"capabilities"`
}

func (c *Client) GetCapabilities(ctx context.Context, userID string) (CapabilitiesResponse, error) {
	if c == nil || c.http == nil {
		return CapabilitiesResponse{}, ErrNotConfigured
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return CapabilitiesResponse{}, errors.New("userID required")
	}

	var out CapabilitiesResponse
	err := c.http.DoJSON(ctx, http.MethodGet, "/v1/capabilities?user_id="+url.QueryEscape(userID), nil, nil, &out)
	if err != nil {
		switch httpclient.StatusCode(err) {
		case http.StatusUnauthorized, http.StatusForbidden:
			return CapabilitiesResponse{}, ErrUnauthorized
		default:
			return CapabilitiesResponse{}, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
	}
	if out.Capabilities == nil {
		out.Capabilities = map[string]bool{}
	}
	return out, nil
}
