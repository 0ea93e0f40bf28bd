package blob

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("blob not found")

// Info describe un objeto guardado.
type Info struct {
	Key         string
	ContentType string
	Size        int64
}

// Store es el almacenamiento de imágenes (S3/MinIO en prod, memoria en dev/tests).
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (Info, error)
	Delete(ctx context.Context, key string) error
	// URL devuelve una URL para mostrar la imagen (pública o pre-firmada).
	URL(ctx context.Context, key string) (string, error)
}
