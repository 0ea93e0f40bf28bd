// Package media sube imágenes al blob store. Anuncios, animales y productos
// guardan sólo la key que devuelve Upload.
package media

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"adoptipet/internal/platform/apperr"
	"adoptipet/internal/ports/blob"

	"github.com/google/uuid"
)

const DefaultMaxBytes = 5 << 20

var (
	ErrMissingFile = apperr.New(apperr.KindInvalidInput, "multipart field \"image\" is required")
	ErrNotImage    = apperr.New(apperr.KindInvalidInput, "only image/* uploads are allowed")
	ErrTooLarge    = apperr.New(apperr.KindInvalidInput, "image exceeds the maximum size")
)

type Upload struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type Service struct {
	store    blob.Store
	maxBytes int64
	newID    func() string
}

func NewService(store blob.Store, maxBytes int64) *Service {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Service{store: store, maxBytes: maxBytes, newID: uuid.NewString}
}

func (s *Service) MaxBytes() int64 { return s.maxBytes }

// Upload detecta el content type por contenido (no confía en el header del
// cliente) y guarda bajo images/<uuid><ext>.
func (s *Service) Upload(ctx context.Context, filename string, r io.Reader, size int64) (Upload, error) {
	if size > s.maxBytes {
		return Upload{}, ErrTooLarge
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return Upload{}, err
	}
	head = head[:n]
	if n == 0 {
		return Upload{}, ErrMissingFile
	}

	contentType := http.DetectContentType(head)
	if !strings.HasPrefix(contentType, "image/") {
		return Upload{}, ErrNotImage
	}

	key := "images/" + s.newID() + extensionFor(filename, contentType)
	info, err := s.store.Put(ctx, key, io.MultiReader(bytes.NewReader(head), r), size, contentType)
	if err != nil {
		return Upload{}, err
	}

	url, err := s.store.URL(ctx, info.Key)
	if err != nil {
		return Upload{}, err
	}
	return Upload{Key: info.Key, URL: url, ContentType: contentType, Size: info.Size}, nil
}

func extensionFor(filename, contentType string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return ext
	}
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		return exts[0]
	}
	return ""
}
