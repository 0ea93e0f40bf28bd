package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"adoptipet/internal/domain/animals"
	"adoptipet/internal/platform/apperr"
)

type animalsRepo struct{ s *Store }

func (r *animalsRepo) Create(ctx context.Context, a animals.Animal) error {
	if strings.TrimSpace(a.ID) == "" {
		return errors.New("animal id required")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.animals[a.ID]; exists {
		return errors.New("animal already exists")
	}
	r.s.animals[a.ID] = cloneAnimal(a)
	return nil
}

func (r *animalsRepo) GetByID(ctx context.Context, id string) (animals.Animal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.animals[id]
	if !ok {
		return animals.Animal{}, ErrNotFound
	}
	return cloneAnimal(a), nil
}

func (r *animalsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]animals.Animal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]animals.Animal, 0)
	for _, a := range r.s.animals {
		if a.OwnerUserID == ownerUserID {
			out = append(out, cloneAnimal(a))
		}
	}

	// Orden estable por created_at asc (igual que Postgres)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *animalsRepo) Update(ctx context.Context, a animals.Animal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.updateAnimalLocked(a)
}

func (s *Store) updateAnimalLocked(a animals.Animal) error {
	cur, ok := s.animals[a.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != a.Version {
		return apperr.ErrVersionConflict
	}
	a = cloneAnimal(a)
	a.Version++
	s.animals[a.ID] = a
	return nil
}

func (r *animalsRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.animals[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.animals, id)
	return nil
}

func (r *animalsRepo) ListWithCareDue(ctx context.Context, from, to time.Time) ([]animals.Animal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]animals.Animal, 0)
	for _, a := range r.s.animals {
		if len(a.DueRecords(from, to)) > 0 {
			out = append(out, cloneAnimal(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
