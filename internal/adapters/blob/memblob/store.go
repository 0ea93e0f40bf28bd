// Package memblob es un blob.Store en memoria para dev y tests.
package memblob

import (
	"context"
	"io"
	"sync"

	"adoptipet/internal/ports/blob"
)

type object struct {
	data        []byte
	contentType string
}

type Store struct {
	mu      sync.RWMutex
	objects map[string]object
	baseURL string
}

// New: baseURL es el prefijo que devuelve URL (p.ej. "memory://").
func New(baseURL string) *Store {
	if baseURL == "" {
		baseURL = "memory://"
	}
	return &Store{objects: make(map[string]object), baseURL: baseURL}
}

func (s *Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (blob.Info, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return blob.Info{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = object{data: data, contentType: contentType}
	return blob.Info{Key: key, ContentType: contentType, Size: int64(len(data))}, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *Store) URL(ctx context.Context, key string) (string, error) {
	return s.baseURL + key, nil
}

// Get se usa en tests.
func (s *Store) Get(key string) ([]byte, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[key]
	if !ok {
		return nil, "", blob.ErrNotFound
	}
	return append([]byte(nil), o.data...), o.contentType, nil
}

var _ blob.Store = (*Store)(nil)
