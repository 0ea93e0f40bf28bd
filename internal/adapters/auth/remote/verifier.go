// Package remote delega la verificación de tokens a un IAM externo.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"adoptipet/internal/platform/httpclient"
	"adoptipet/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("remote auth not configured")
	ErrUpstream      = errors.New("remote auth upstream error")
)

// Config del IAM remoto.
type Config struct {
	BaseURL string
	APIKey  string

	// Si está vacío se usa "X-Api-Key".
	APIKeyHeader string
	// Si está vacío se usa /v1/tokens/verify.
	VerifyPath string

	Timeout time.Duration
}

type Verifier struct {
	client     *httpclient.Client
	verifyPath string
}

func NewVerifier(cfg Config, opts ...httpclient.Option) (*Verifier, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrNotConfigured
	}
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}
	path := strings.TrimSpace(cfg.VerifyPath)
	if path == "" {
		path = "/v1/tokens/verify"
	}

	opts = append([]httpclient.Option{
		httpclient.WithTimeout(cfg.Timeout),
		httpclient.WithHeader(h, strings.TrimSpace(cfg.APIKey)),
	}, opts...)

	c, err := httpclient.New(cfg.BaseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &Verifier{client: c, verifyPath: path}, nil
}

type verifyResponse struct {
	UserID string   `json:"user_id"`
	Email  string   `json:"email"`
	Name   string   `json:"name"`
	Roles  []string `json:"roles"`
}

// Verify manda el token en el body y también como Bearer: algunos IAM sólo
// miran uno de los dos.
func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || v.client == nil {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, auth.ErrInvalidToken
	}

	var out verifyResponse
	err := v.client.DoJSON(ctx, http.MethodPost, v.verifyPath,
		map[string]string{"Authorization": "Bearer " + token},
		map[string]string{"token": token},
		&out,
	)
	if err != nil {
		switch httpclient.StatusCode(err) {
		case http.StatusUnauthorized, http.StatusForbidden:
			return auth.Claims{}, auth.ErrInvalidToken
		default:
			return auth.Claims{}, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
	}

	out.UserID = strings.TrimSpace(out.UserID)
	if out.UserID == "" {
		return auth.Claims{}, fmt.Errorf("%w: response missing user_id", ErrUpstream)
	}

	return auth.Claims{
		UserID: out.UserID,
		Email:  strings.TrimSpace(out.Email),
		Name:   strings.TrimSpace(out.Name),
		Roles:  out.Roles,
	}, nil
}

var _ auth.AuthVerifier = (*Verifier)(nil)
