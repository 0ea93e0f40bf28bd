// Package jwtauth verifica bearer tokens localmente: HS256 con secreto
// compartido o RS256/ES256 contra un JWKS remoto.
package jwtauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"adoptipet/internal/ports/auth"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

type Config struct {
	// Secret habilita HS256. Si JWKSURL viene, tiene prioridad.
	Secret  string
	JWKSURL string
	Issuer  string
	Leeway  time.Duration
}

type Verifier struct {
	keyfunc jwt.Keyfunc
	methods []string
	issuer  string
	leeway  time.Duration
}

// tokenClaims es el formato que aceptamos: roles planos o realm_access.roles (Keycloak).
type tokenClaims struct {
	jwt.RegisteredClaims
	Email       string       `json:"email"`
	Name        string       `json:"name"`
	Roles       []string     `json:"roles,omitempty"`
	RealmAccess *realmAccess `json:"realm_access,omitempty"`
}

type realmAccess struct {
	Roles []string `json:"roles"`
}

// New arma el verifier. Con JWKS, keyfunc refresca las claves en background
// hasta que ctx se cancele.
func New(ctx context.Context, cfg Config) (*Verifier, error) {
	if url := strings.TrimSpace(cfg.JWKSURL); url != "" {
		k, err := keyfunc.NewDefaultCtx(ctx, []string{url})
		if err != nil {
			return nil, fmt.Errorf("jwks keyfunc: %w", err)
		}
		return NewWithKeyfunc(k, cfg.Issuer, cfg.Leeway), nil
	}

	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		return nil, errors.New("jwtauth: secret or jwks url required")
	}
	return &Verifier{
		keyfunc: func(*jwt.Token) (any, error) { return secret, nil },
		methods: []string{jwt.SigningMethodHS256.Alg()},
		issuer:  strings.TrimSpace(cfg.Issuer),
		leeway:  cfg.Leeway,
	}, nil
}

// NewWithKeyfunc se usa con un JWKS ya cargado (tests, JWKS estático).
func NewWithKeyfunc(k keyfunc.Keyfunc, issuer string, leeway time.Duration) *Verifier {
	return &Verifier{
		keyfunc: k.Keyfunc,
		methods: []string{"RS256", "ES256"},
		issuer:  strings.TrimSpace(issuer),
		leeway:  leeway,
	}
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, auth.ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods(v.methods),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var tc tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &tc, v.keyfunc, opts...)
	if err != nil || !parsed.Valid {
		return auth.Claims{}, fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)
	}

	sub := strings.TrimSpace(tc.Subject)
	if sub == "" {
		return auth.Claims{}, fmt.Errorf("%w: missing sub", auth.ErrInvalidToken)
	}

	roles := append([]string(nil), tc.Roles...)
	if tc.RealmAccess != nil {
		roles = append(roles, tc.RealmAccess.Roles...)
	}

	return auth.Claims{
		UserID: sub,
		Email:  strings.TrimSpace(tc.Email),
		Name:   strings.TrimSpace(tc.Name),
		Roles:  roles,
	}, nil
}

var _ auth.AuthVerifier = (*Verifier)(nil)
