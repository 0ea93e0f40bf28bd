package adoption

import (
	"context"
	"strings"

	"adoptipet/internal/domain/animals"
	"adoptipet/internal/domain/announcements"
	"adoptipet/internal/domain/users"
	"adoptipet/internal/platform/apperr"
	"adoptipet/internal/platform/logger"
)

// PopulatedMigration es la vista admin de una solicitud con sus referencias
// resueltas. Una referencia que ya no existe queda en nil.
type PopulatedMigration struct {
	Migration     MigrationRequest
	Announcement  *announcements.Announcement
	Animal        *animals.Animal
	Candidate     *users.User
	PreviousOwner *users.User
}

// ListMigrations lista solicitudes (status vacío = todas) y resuelve
// anuncio, animal, candidato y dueño anterior con lecturas por ID.
func (s *Service) ListMigrations(ctx context.Context, status string, actor Actor) ([]PopulatedMigration, error) {
	if !actor.IsAdmin {
		return nil, ErrAdminOnly
	}
	st := MigrationStatus(strings.ToLower(strings.TrimSpace(status)))
	if st != "" && !st.Valid() {
		return nil, apperr.New(apperr.KindInvalidInput, "status must be awaiting_admin, approved, rejected or completed")
	}

	items, err := s.store.ListMigrations(ctx, st)
	if err != nil {
		return nil, err
	}

	out := make([]PopulatedMigration, 0, len(items))
	for _, m := range items {
		p, err := s.populate(ctx, m)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Service) populate(ctx context.Context, m MigrationRequest) (PopulatedMigration, error) {
	p := PopulatedMigration{Migration: m}
	log := logger.FromContext(ctx)

	if ann, err := s.announcements.GetByID(ctx, m.AnnouncementID); err == nil {
		p.Announcement = &ann
	} else if !apperr.IsKind(err, apperr.KindNotFound) {
		return PopulatedMigration{}, err
	} else {
		log.Debug("migration references a missing announcement", map[string]any{"migration_id": m.ID, "announcement_id": m.AnnouncementID})
	}

	if m.AnimalID != "" {
		if a, err := s.animals.GetByID(ctx, m.AnimalID); err == nil {
			p.Animal = &a
		} else if !apperr.IsKind(err, apperr.KindNotFound) {
			return PopulatedMigration{}, err
		}
	}

	p.Candidate = s.lookupUser(ctx, m.CandidateUserID)

	// Completada: el dueño anterior quedó guardado. Si no, es el dueño actual del animal.
	previous := m.PreviousOwnerUserID
	if previous == "" && p.Animal != nil {
		previous = p.Animal.OwnerUserID
	}
	p.PreviousOwner = s.lookupUser(ctx, previous)

	return p, nil
}

func (s *Service) lookupUser(ctx context.Context, id string) *users.User {
	if id == "" || s.users == nil {
		return nil
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if !apperr.IsKind(err, apperr.KindNotFound) {
			logger.FromContext(ctx).Warn("user lookup failed", map[string]any{"user_id": id, "error": err})
		}
		return nil
	}
	return &u
}
