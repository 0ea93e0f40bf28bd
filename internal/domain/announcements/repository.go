package announcements

import "context"

type Repository interface {
	Create(ctx context.Context, a Announcement) error
	GetByID(ctx context.Context, id string) (Announcement, error)
	// Update es optimista: falla con apperr.ErrVersionConflict si a.Version no es la guardada.
	Update(ctx context.Context, a Announcement) error
	Delete(ctx context.Context, id string) error
	// List ordena por created_at desc.
	List(ctx context.Context, f ListFilter) ([]Announcement, error)
}
