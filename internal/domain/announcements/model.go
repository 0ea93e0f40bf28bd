package announcements

import "time"

// Kind define el tipo de anuncio.
// @Enum adoption, temporary_care, lost, found, advice
type Kind string

const (
	KindAdoption      Kind = "adoption"
	KindTemporaryCare Kind = "temporary_care"
	KindLost          Kind = "lost"
	KindFound         Kind = "found"
	KindAdvice        Kind = "advice"
)

// AnimalRule indica si el tipo exige, permite o prohíbe un animal enlazado.
type AnimalRule int

const (
	AnimalForbidden AnimalRule = iota
	AnimalOptional
	AnimalRequired
)

func (k Kind) Valid() bool {
	switch k {
	case KindAdoption, KindTemporaryCare, KindLost, KindFound, KindAdvice:
		return true
	}
	return false
}

func (k Kind) AnimalRule() AnimalRule {
	switch k {
	case KindAdoption, KindTemporaryCare:
		return AnimalRequired
	case KindLost:
		return AnimalOptional
	default:
		return AnimalForbidden
	}
}

type ModerationStatus string

const (
	ModerationPending  ModerationStatus = "pending"
	ModerationAccepted ModerationStatus = "accepted"
	ModerationRejected ModerationStatus = "rejected"
)

func (m ModerationStatus) Valid() bool {
	switch m {
	case ModerationPending, ModerationAccepted, ModerationRejected:
		return true
	}
	return false
}

// AdoptionStatus sólo tiene sentido para Kind == adoption; vacío en el resto.
type AdoptionStatus string

const (
	AdoptionOpen          AdoptionStatus = "open"
	AdoptionAwaitingAdmin AdoptionStatus = "awaiting_admin"
	AdoptionClosed        AdoptionStatus = "closed"
)

type Announcement struct {
	ID   string
	Kind Kind

	Title       string
	Description string
	Location    string
	ImageKey    string

	// AnimalID vacío si el tipo no enlaza animal.
	AnimalID     string
	AuthorUserID string

	ModerationStatus ModerationStatus
	AdoptionStatus   AdoptionStatus

	Version int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ListFilter: campos vacíos = sin filtro.
type ListFilter struct {
	Kind             Kind
	ModerationStatus ModerationStatus
	AuthorUserID     string
	// CreatedBefore filtra anuncios creados antes de ese instante (barrido de pendientes).
	CreatedBefore time.Time
}
