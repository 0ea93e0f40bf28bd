package announcements

import (
	"fmt"

	"adoptipet/internal/platform/apperr"
)

// adoptionTransitions es la única tabla de transiciones de AdoptionStatus.
// awaiting_admin -> awaiting_admin cubre el accept idempotente.
var adoptionTransitions = map[AdoptionStatus][]AdoptionStatus{
	AdoptionOpen:          {AdoptionAwaitingAdmin, AdoptionClosed},
	AdoptionAwaitingAdmin: {AdoptionAwaitingAdmin, AdoptionOpen, AdoptionClosed},
}

func CanTransitionAdoption(from, to AdoptionStatus) bool {
	for _, allowed := range adoptionTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// TransitionAdoption devuelve el anuncio con el nuevo estado o Conflict.
func TransitionAdoption(a Announcement, to AdoptionStatus) (Announcement, error) {
	if a.Kind != KindAdoption {
		return Announcement{}, apperr.New(apperr.KindInvalidInput, "announcement is not an adoption")
	}
	if !CanTransitionAdoption(a.AdoptionStatus, to) {
		return Announcement{}, apperr.New(apperr.KindConflict,
			fmt.Sprintf("adoption status cannot go from %s to %s", a.AdoptionStatus, to))
	}
	a.AdoptionStatus = to
	return a, nil
}
