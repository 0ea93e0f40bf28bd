package adoption

import (
	"fmt"

	"adoptipet/internal/platform/apperr"
)

// Tablas únicas de transiciones. Lo que no está acá es Conflict.
var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationPending:  {ApplicationSelected, ApplicationRejected},
	ApplicationSelected: {ApplicationSelected, ApplicationApproved, ApplicationRejected},
}

// rejected -> awaiting_admin: el autor vuelve a aceptar al mismo candidato
// (la solicitud es única por anuncio+candidato, se reabre).
var migrationTransitions = map[MigrationStatus][]MigrationStatus{
	MigrationAwaitingAdmin: {MigrationCompleted, MigrationApproved, MigrationRejected},
	MigrationApproved:      {MigrationCompleted},
	MigrationRejected:      {MigrationAwaitingAdmin},
}

func CanTransitionApplication(from, to ApplicationStatus) bool {
	for _, s := range applicationTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func CanTransitionMigration(from, to MigrationStatus) bool {
	for _, s := range migrationTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func TransitionApplication(a Application, to ApplicationStatus) (Application, error) {
	if !CanTransitionApplication(a.Status, to) {
		return Application{}, apperr.New(apperr.KindConflict,
			fmt.Sprintf("application cannot go from %s to %s", a.Status, to))
	}
	a.Status = to
	return a, nil
}

func TransitionMigration(m MigrationRequest, to MigrationStatus) (MigrationRequest, error) {
	if !CanTransitionMigration(m.Status, to) {
		return MigrationRequest{}, apperr.New(apperr.KindConflict,
			fmt.Sprintf("migration request cannot go from %s to %s", m.Status, to))
	}
	m.Status = to
	return m, nil
}
