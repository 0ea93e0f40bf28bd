package auth

import (
	"context"
	"errors"
)

// ErrInvalidToken lo devuelven los verifiers ante firma, expiración o emisor inválidos.
var ErrInvalidToken = errors.New("invalid token")

// AuthVerifier verifica un bearer token y devuelve claims o error.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
