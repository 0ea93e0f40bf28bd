package animals

import (
	"strings"
	"time"

	"adoptipet/internal/platform/apperr"
)

var ErrSameOwner = apperr.New(apperr.KindInvalidState, "animal already belongs to the new owner")

// TransferOwnership agrega al historial el dueño anterior y reasigna el dueño.
// Es puro: no persiste; la persistencia la hace quien orquesta la transferencia.
func TransferOwnership(a Animal, newOwnerUserID string, at time.Time) (Animal, error) {
	newOwnerUserID = strings.TrimSpace(newOwnerUserID)
	if newOwnerUserID == "" {
		return Animal{}, ErrInvalidInput
	}
	if newOwnerUserID == a.OwnerUserID {
		return Animal{}, ErrSameOwner
	}

	history := make([]OwnershipEntry, 0, len(a.History)+1)
	history = append(history, a.History...)
	history = append(history, OwnershipEntry{
		PreviousOwnerUserID: a.OwnerUserID,
		TransferredAt:       at,
	})

	a.History = history
	a.OwnerUserID = newOwnerUserID
	a.UpdatedAt = at
	return a, nil
}
