package adoption

import (
	"context"

	"adoptipet/internal/domain/animals"
	"adoptipet/internal/domain/announcements"
)

// Changeset agrupa los documentos que una operación del flujo persiste juntos.
// nil = no se toca. Cada documento lleva la versión observada al cargarlo.
type Changeset struct {
	Application  *Application
	Migration    *MigrationRequest
	Announcement *announcements.Announcement
	Animal       *animals.Animal
}

func (c Changeset) Empty() bool {
	return c.Application == nil && c.Migration == nil && c.Announcement == nil && c.Animal == nil
}

// Store es la persistencia del flujo de adopción.
//
// Commit es atómico: o se escriben todos los documentos del changeset o
// ninguno. Cada update exige que la versión guardada sea la observada
// (apperr.ErrVersionConflict si no) y la incrementa. Una Migration con
// Version 0 se inserta con upsert por (AnnouncementID, CandidateUserID):
// si ya existe se devuelve la guardada. Devuelve el changeset con las
// versiones nuevas.
type Store interface {
	CreateApplication(ctx context.Context, a Application) error
	GetApplication(ctx context.Context, id string) (Application, error)
	ListApplicationsByAnnouncement(ctx context.Context, announcementID string) ([]Application, error)
	ListApplicationsByApplicant(ctx context.Context, applicantUserID string) ([]Application, error)

	GetMigration(ctx context.Context, id string) (MigrationRequest, error)
	// FindMigration devuelve apperr.ErrNotFound si no hay solicitud para el par.
	FindMigration(ctx context.Context, announcementID, candidateUserID string) (MigrationRequest, error)
	// ListMigrations: status vacío = todas. Orden created_at desc.
	ListMigrations(ctx context.Context, status MigrationStatus) ([]MigrationRequest, error)
	ListMigrationsByAnnouncement(ctx context.Context, announcementID string) ([]MigrationRequest, error)

	Commit(ctx context.Context, cs Changeset) (Changeset, error)
}

// Lecturas por ID de los otros dominios (población y guardas).
type AnnouncementReader interface {
	GetByID(ctx context.Context, id string) (announcements.Announcement, error)
}

type AnimalReader interface {
	GetByID(ctx context.Context, id string) (animals.Animal, error)
}
