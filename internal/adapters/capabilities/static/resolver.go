// Package static resuelve la capacidad de administrador sin servicios externos.
package static

import (
	"context"
	"strings"

	"adoptipet/internal/domain/users"
	"adoptipet/internal/ports/auth"
	"adoptipet/internal/ports/capabilities"
)

// RoleLookup es el rol guardado del usuario (users.Service lo cumple).
type RoleLookup interface {
	RoleOf(ctx context.Context, userID string) (users.Role, error)
}

// Resolver es admin si cualquiera de estas fuentes lo dice, en orden:
// rol del token, admin.user_ids, rol guardado, Fallback.
type Resolver struct {
	ids      map[string]struct{}
	roles    RoleLookup
	fallback capabilities.AdminResolver
}

func NewResolver(adminIDs []string, roles RoleLookup, fallback capabilities.AdminResolver) *Resolver {
	ids := make(map[string]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids[id] = struct{}{}
		}
	}
	return &Resolver{ids: ids, roles: roles, fallback: fallback}
}

func (r *Resolver) IsAdmin(ctx context.Context, c auth.Claims) (bool, error) {
	if c.HasRole(auth.RoleAdmin) {
		return true, nil
	}
	if _, ok := r.ids[c.UserID]; ok {
		return true, nil
	}
	if r.roles != nil {
		role, err := r.roles.RoleOf(ctx, c.UserID)
		if err != nil {
			return false, err
		}
		if role == users.RoleAdmin {
			return true, nil
		}
	}
	if r.fallback != nil {
		return r.fallback.IsAdmin(ctx, c)
	}
	return false, nil
}

var _ capabilities.AdminResolver = (*Resolver)(nil)
