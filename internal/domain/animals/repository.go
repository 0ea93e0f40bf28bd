package animals

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, a Animal) error
	GetByID(ctx context.Context, id string) (Animal, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Animal, error)
	// Update persiste si la versión guardada == a.Version y la incrementa.
	// Si no coincide devuelve apperr.ErrVersionConflict.
	Update(ctx context.Context, a Animal) error
	Delete(ctx context.Context, id string) error
	// ListWithCareDue devuelve animales con algún NextDueAt en [from, to).
	ListWithCareDue(ctx context.Context, from, to time.Time) ([]Animal, error)
}
