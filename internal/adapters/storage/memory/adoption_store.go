package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"adoptipet/internal/domain/adoption"
	"adoptipet/internal/domain/animals"
	"adoptipet/internal/domain/announcements"
	"adoptipet/internal/platform/apperr"
)

type adoptionStore struct{ s *Store }

func (r *adoptionStore) CreateApplication(ctx context.Context, a adoption.Application) error {
	if strings.TrimSpace(a.ID) == "" {
		return errors.New("application id required")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.applications[a.ID]; exists {
		return errors.New("application already exists")
	}
	// Equivale al índice único parcial de Postgres sobre (anuncio, postulante) activos.
	if a.Status.Active() {
		for _, cur := range r.s.applications {
			if cur.AnnouncementID == a.AnnouncementID && cur.ApplicantUserID == a.ApplicantUserID && cur.Status.Active() {
				return adoption.ErrDuplicateApplication
			}
		}
	}
	r.s.applications[a.ID] = a
	return nil
}

func (r *adoptionStore) GetApplication(ctx context.Context, id string) (adoption.Application, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.applications[id]
	if !ok {
		return adoption.Application{}, ErrNotFound
	}
	return a, nil
}

func (r *adoptionStore) ListApplicationsByAnnouncement(ctx context.Context, announcementID string) ([]adoption.Application, error) {
	return r.listApplications(func(a adoption.Application) bool { return a.AnnouncementID == announcementID }), nil
}

func (r *adoptionStore) ListApplicationsByApplicant(ctx context.Context, applicantUserID string) ([]adoption.Application, error) {
	return r.listApplications(func(a adoption.Application) bool { return a.ApplicantUserID == applicantUserID }), nil
}

func (r *adoptionStore) listApplications(keep func(adoption.Application) bool) []adoption.Application {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]adoption.Application, 0)
	for _, a := range r.s.applications {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *adoptionStore) GetMigration(ctx context.Context, id string) (adoption.MigrationRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.migrations[id]
	if !ok {
		return adoption.MigrationRequest{}, ErrNotFound
	}
	return cloneMigration(m), nil
}

func (r *adoptionStore) FindMigration(ctx context.Context, announcementID, candidateUserID string) (adoption.MigrationRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.findMigrationLocked(announcementID, candidateUserID)
	if !ok {
		return adoption.MigrationRequest{}, ErrNotFound
	}
	return cloneMigration(m), nil
}

func (s *Store) findMigrationLocked(announcementID, candidateUserID string) (adoption.MigrationRequest, bool) {
	for _, m := range s.migrations {
		if m.AnnouncementID == announcementID && m.CandidateUserID == candidateUserID {
			return m, true
		}
	}
	return adoption.MigrationRequest{}, false
}

func (r *adoptionStore) ListMigrations(ctx context.Context, status adoption.MigrationStatus) ([]adoption.MigrationRequest, error) {
	return r.listMigrations(func(m adoption.MigrationRequest) bool { return status == "" || m.Status == status }), nil
}

func (r *adoptionStore) ListMigrationsByAnnouncement(ctx context.Context, announcementID string) ([]adoption.MigrationRequest, error) {
	return r.listMigrations(func(m adoption.MigrationRequest) bool { return m.AnnouncementID == announcementID }), nil
}

func (r *adoptionStore) listMigrations(keep func(adoption.MigrationRequest) bool) []adoption.MigrationRequest {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]adoption.MigrationRequest, 0)
	for _, m := range r.s.migrations {
		if keep(m) {
			out = append(out, cloneMigration(m))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Commit valida todas las versiones antes de escribir nada; con el lock
// tomado eso equivale a la transacción de Postgres.
func (r *adoptionStore) Commit(ctx context.Context, cs adoption.Changeset) (adoption.Changeset, error) {
	if err := ctx.Err(); err != nil {
		return adoption.Changeset{}, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if a := cs.Application; a != nil {
		cur, ok := r.s.applications[a.ID]
		if err := checkVersion(ok, cur.Version, a.Version); err != nil {
			return adoption.Changeset{}, err
		}
	}
	if m := cs.Migration; m != nil && m.Version != 0 {
		cur, ok := r.s.migrations[m.ID]
		if err := checkVersion(ok, cur.Version, m.Version); err != nil {
			return adoption.Changeset{}, err
		}
	}
	if a := cs.Announcement; a != nil {
		cur, ok := r.s.announcements[a.ID]
		if err := checkVersion(ok, cur.Version, a.Version); err != nil {
			return adoption.Changeset{}, err
		}
	}
	if a := cs.Animal; a != nil {
		cur, ok := r.s.animals[a.ID]
		if err := checkVersion(ok, cur.Version, a.Version); err != nil {
			return adoption.Changeset{}, err
		}
	}

	var out adoption.Changeset
	if cs.Application != nil {
		a := *cs.Application
		a.Version++
		r.s.applications[a.ID] = a
		out.Application = &a
	}
	if cs.Migration != nil {
		m := cloneMigration(*cs.Migration)
		switch {
		case m.Version != 0:
			m.Version++
			r.s.migrations[m.ID] = m
		default:
			// upsert por (anuncio, candidato)
			if existing, ok := r.s.findMigrationLocked(m.AnnouncementID, m.CandidateUserID); ok {
				m = cloneMigration(existing)
			} else {
				m.Version = 1
				r.s.migrations[m.ID] = m
			}
		}
		out.Migration = &m
	}
	if cs.Announcement != nil {
		a := *cs.Announcement
		a.Version++
		r.s.announcements[a.ID] = a
		out.Announcement = &a
	}
	if cs.Animal != nil {
		a := cloneAnimal(*cs.Animal)
		a.Version++
		r.s.animals[a.ID] = a
		out.Animal = &a
	}
	return out, nil
}

func checkVersion(found bool, stored, observed int) error {
	if !found {
		return ErrNotFound
	}
	if stored != observed {
		return apperr.ErrVersionConflict
	}
	return nil
}

func cloneMigration(m adoption.MigrationRequest) adoption.MigrationRequest {
	if m.CompletedAt != nil {
		t := *m.CompletedAt
		m.CompletedAt = &t
	}
	return m
}

var (
	_ animals.Repository       = (*animalsRepo)(nil)
	_ announcements.Repository = (*announcementsRepo)(nil)
	_ adoption.Store           = (*adoptionStore)(nil)
)
