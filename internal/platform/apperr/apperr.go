// Package apperr define la taxonomía de errores compartida por todos los dominios.
//
// Cada dominio declara sus errores sentinela con New(kind, msg); los handlers
// sólo miran el Kind para decidir el status HTTP.
package apperr

import (
	"errors"
)

type Kind string

const (
	KindNotFound     Kind = "NOT_FOUND"
	KindForbidden    Kind = "FORBIDDEN"
	KindConflict     Kind = "CONFLICT"
	KindInvalidInput Kind = "INVALID_INPUT"
	KindInvalidState Kind = "INVALID_STATE"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindRateLimited  Kind = "RATE_LIMITED"
	KindInternal     Kind = "INTERNAL"
)

// Error es un error clasificado. Message es seguro para mostrar al cliente.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap clasifica un error de otra capa sin perder la causa.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf devuelve el Kind del primer *Error en la cadena; KindInternal si no hay.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf devuelve el mensaje público del primer *Error en la cadena.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Errores genéricos para adapters que no conocen el dominio.
var (
	ErrNotFound        = New(KindNotFound, "not found")
	ErrVersionConflict = New(KindConflict, "resource was modified concurrently")
)
