package users

import "context"

type Repository interface {
	// Upsert crea o reemplaza el perfil.
	Upsert(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (User, error)
	ListByRole(ctx context.Context, role Role) ([]User, error)
}
