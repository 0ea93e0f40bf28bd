package capabilities

import (
	"context"

	"adoptipet/internal/ports/auth"
)

// CapabilityAdmin habilita moderación, migraciones, catálogo y dashboard.
const CapabilityAdmin = "admin:access"

// AdminResolver decide si un usuario autenticado tiene capacidad de administrador.
type AdminResolver interface {
	IsAdmin(ctx context.Context, claims auth.Claims) (bool, error)
}
