package users

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Reader es la vista por ID que usan la población de migraciones y el dispatcher.
type Reader interface {
	GetByID(ctx context.Context, id string) (User, error)
}

// CachedReader cachea lecturas por ID con TTL. Los perfiles cambian poco y
// el listado de migraciones resuelve el mismo candidato muchas veces.
type CachedReader struct {
	next  Reader
	cache *expirable.LRU[string, User]
}

func NewCachedReader(next Reader, size int, ttl time.Duration) *CachedReader {
	if size <= 0 {
		size = 1024
	}
	return &CachedReader{
		next:  next,
		cache: expirable.NewLRU[string, User](size, nil, ttl),
	}
}

func (c *CachedReader) GetByID(ctx context.Context, id string) (User, error) {
	if u, ok := c.cache.Get(id); ok {
		return u, nil
	}
	u, err := c.next.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	c.cache.Add(id, u)
	return u, nil
}

// Invalidate se llama después de actualizar un perfil.
func (c *CachedReader) Invalidate(id string) {
	c.cache.Remove(id)
}

// EmailOf resuelve el email de un usuario; "" si no existe o no tiene.
func EmailOf(ctx context.Context, r Reader, id string) string {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return ""
	}
	return u.Email
}
