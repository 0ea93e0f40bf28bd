// Package httpx agrupa los helpers HTTP compartidos por los handlers de dominio.
//
// Antes cada módulo tenía su propio writeJSON; con más de cinco módulos
// conviene un único lugar, y además así todos responden errores con el
// mismo formato: {"error": {"code": "...", "message": "..."}}.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"adoptipet/internal/platform/apperr"
	"adoptipet/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// maxBodyBytes limita el body JSON de los requests (las imágenes van por /uploads).
const maxBodyBytes = 1 << 20

var ErrInvalidJSON = apperr.New(apperr.KindInvalidInput, "invalid json")

// ErrorResponse es el envelope de error de toda la API.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError escribe el envelope de error con un status explícito.
func WriteError(w http.ResponseWriter, status int, code apperr.Kind, message string) {
	JSON(w, status, ErrorResponse{Error: ErrorDetail{Code: string(code), Message: message}})
}

func Unauthorized(w http.ResponseWriter) {
	WriteError(w, http.StatusUnauthorized, apperr.KindUnauthorized, "unauthorized")
}

// StatusOf traduce el Kind de un error a status HTTP.
func StatusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindInvalidInput, apperr.KindInvalidState:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error responde un error de dominio. Los errores sin clasificar se loguean
// con request_id y ruta, y al cliente sólo le llega "internal error".
func Error(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		logger.FromContext(r.Context()).Error("unhandled error", map[string]any{
			"error":      err,
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": chimw.GetReqID(r.Context()),
		})
	}
	WriteError(w, StatusOf(kind), kind, apperr.MessageOf(err))
}

// Decode lee el body JSON en v. Campos desconocidos son error.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return ErrInvalidJSON
	}
	return nil
}

// DecodeOptional es como Decode pero acepta body vacío (p.ej. PATCH .../accepter sin payload).
func DecodeOptional(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return ErrInvalidJSON
	}
	return nil
}

// ExpectedVersion lee If-Match. Devuelve 0 si no vino (sin chequeo de versión).
// Acepta ETag con comillas: If-Match: "3".
func ExpectedVersion(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.Header.Get("If-Match"))
	if raw == "" {
		return 0, nil
	}
	raw = strings.TrimPrefix(raw, "W/")
	raw = strings.Trim(raw, `"`)
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, apperr.New(apperr.KindInvalidInput, "If-Match must be a positive version number")
	}
	return v, nil
}

// SetVersion expone la versión actual como ETag para el siguiente If-Match.
func SetVersion(w http.ResponseWriter, version int) {
	w.Header().Set("ETag", `"`+strconv.Itoa(version)+`"`)
}
