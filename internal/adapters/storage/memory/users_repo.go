package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"adoptipet/internal/domain/users"
)

type usersRepo struct{ s *Store }

func (r *usersRepo) Upsert(ctx context.Context, u users.User) error {
	if strings.TrimSpace(u.ID) == "" {
		return errors.New("user id required")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[u.ID] = u
	return nil
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return users.User{}, ErrNotFound
	}
	return u, nil
}

func (r *usersRepo) ListByRole(ctx context.Context, role users.Role) ([]users.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]users.User, 0)
	for _, u := range r.s.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
