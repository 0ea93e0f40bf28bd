package adoption

import (
	"time"

	"adoptipet/internal/domain/animals"
	"adoptipet/internal/domain/announcements"
)

// Las funciones plan* son el núcleo del flujo: reciben los documentos ya
// cargados y devuelven qué hay que persistir. No tocan el Store.

// planAcceptance selecciona la candidatura, crea (o reabre) la solicitud de
// migración y pasa el anuncio a awaiting_admin. Si todo ya estaba así
// devuelve un changeset vacío (accept idempotente).
func planAcceptance(app Application, ann announcements.Announcement, existing *MigrationRequest, newID string, at time.Time) (Changeset, error) {
	if ann.Kind != announcements.KindAdoption {
		return Changeset{}, ErrNotAdoption
	}
	if ann.AdoptionStatus == announcements.AdoptionClosed {
		return Changeset{}, ErrAnnouncementClosed
	}

	var cs Changeset

	nextApp, err := TransitionApplication(app, ApplicationSelected)
	if err != nil {
		return Changeset{}, err
	}
	if app.Status != ApplicationSelected {
		nextApp.UpdatedAt = at
		cs.Application = &nextApp
	}

	switch {
	case existing == nil:
		cs.Migration = &MigrationRequest{
			ID:              newID,
			AnnouncementID:  ann.ID,
			AnimalID:        ann.AnimalID,
			ApplicationID:   app.ID,
			CandidateUserID: app.ApplicantUserID,
			Status:          MigrationAwaitingAdmin,
			CreatedAt:       at,
			UpdatedAt:       at,
		}
	case existing.Status == MigrationAwaitingAdmin:
		if existing.ApplicationID != app.ID {
			m := *existing
			m.ApplicationID = app.ID
			m.UpdatedAt = at
			cs.Migration = &m
		}
	default:
		m, err := TransitionMigration(*existing, MigrationAwaitingAdmin)
		if err != nil {
			return Changeset{}, err
		}
		m.ApplicationID = app.ID
		m.AnimalID = ann.AnimalID
		m.PreviousOwnerUserID = ""
		m.CompletedAt = nil
		m.UpdatedAt = at
		cs.Migration = &m
	}

	if ann.AdoptionStatus != announcements.AdoptionAwaitingAdmin {
		nextAnn, err := announcements.TransitionAdoption(ann, announcements.AdoptionAwaitingAdmin)
		if err != nil {
			return Changeset{}, err
		}
		nextAnn.UpdatedAt = at
		cs.Announcement = &nextAnn
	}
	return cs, nil
}

// planApproval arma la transferencia completa: historial + dueño del animal,
// anuncio cerrado, solicitud completada y candidatura aprobada. Se persiste
// en un solo Commit.
func planApproval(m MigrationRequest, app Application, ann announcements.Announcement, animal animals.Animal, at time.Time) (Changeset, error) {
	if m.Status != MigrationAwaitingAdmin {
		return Changeset{}, ErrAlreadyProcessed
	}
	if ann.AdoptionStatus == announcements.AdoptionClosed {
		return Changeset{}, ErrAnnouncementClosed
	}
	if animal.ID == "" {
		return Changeset{}, ErrNoLinkedAnimal
	}
	// Otro anuncio del mismo animal pudo completar antes.
	if animal.OwnerUserID != ann.AuthorUserID {
		return Changeset{}, ErrOwnerChanged
	}

	previousOwner := animal.OwnerUserID
	nextAnimal, err := animals.TransferOwnership(animal, m.CandidateUserID, at)
	if err != nil {
		return Changeset{}, err
	}

	nextAnn, err := announcements.TransitionAdoption(ann, announcements.AdoptionClosed)
	if err != nil {
		return Changeset{}, err
	}
	nextAnn.UpdatedAt = at

	nextM, err := TransitionMigration(m, MigrationCompleted)
	if err != nil {
		return Changeset{}, err
	}
	nextM.PreviousOwnerUserID = previousOwner
	completed := at
	nextM.CompletedAt = &completed
	nextM.UpdatedAt = at

	nextApp, err := TransitionApplication(app, ApplicationApproved)
	if err != nil {
		return Changeset{}, err
	}
	nextApp.UpdatedAt = at

	return Changeset{
		Application:  &nextApp,
		Migration:    &nextM,
		Announcement: &nextAnn,
		Animal:       &nextAnimal,
	}, nil
}

// planApplicationRejection rechaza la candidatura y, si tenía solicitud
// esperando al admin, también la solicitud. othersAwaiting indica si el
// anuncio tiene otras solicitudes esperando (entonces no se reabre).
func planApplicationRejection(app Application, ann announcements.Announcement, m *MigrationRequest, othersAwaiting bool, at time.Time) (Changeset, error) {
	nextApp, err := TransitionApplication(app, ApplicationRejected)
	if err != nil {
		return Changeset{}, err
	}
	nextApp.UpdatedAt = at
	cs := Changeset{Application: &nextApp}

	if m != nil && m.Status == MigrationAwaitingAdmin {
		nextM, err := TransitionMigration(*m, MigrationRejected)
		if err != nil {
			return Changeset{}, err
		}
		nextM.UpdatedAt = at
		cs.Migration = &nextM

		if reopened, ok := reopen(ann, othersAwaiting, at); ok {
			cs.Announcement = &reopened
		}
	}
	return cs, nil
}

// planMigrationRejection es el rechazo del lado admin.
func planMigrationRejection(m MigrationRequest, app *Application, ann announcements.Announcement, othersAwaiting bool, at time.Time) (Changeset, error) {
	if m.Status != MigrationAwaitingAdmin {
		return Changeset{}, ErrAlreadyProcessed
	}
	nextM, err := TransitionMigration(m, MigrationRejected)
	if err != nil {
		return Changeset{}, err
	}
	nextM.UpdatedAt = at
	cs := Changeset{Migration: &nextM}

	if app != nil && app.Status.Active() {
		nextApp, err := TransitionApplication(*app, ApplicationRejected)
		if err != nil {
			return Changeset{}, err
		}
		nextApp.UpdatedAt = at
		cs.Application = &nextApp
	}

	if reopened, ok := reopen(ann, othersAwaiting, at); ok {
		cs.Announcement = &reopened
	}
	return cs, nil
}

func reopen(ann announcements.Announcement, othersAwaiting bool, at time.Time) (announcements.Announcement, bool) {
	if othersAwaiting || ann.Kind != announcements.KindAdoption || ann.AdoptionStatus != announcements.AdoptionAwaitingAdmin {
		return announcements.Announcement{}, false
	}
	next, err := announcements.TransitionAdoption(ann, announcements.AdoptionOpen)
	if err != nil {
		return announcements.Announcement{}, false
	}
	next.UpdatedAt = at
	return next, true
}
