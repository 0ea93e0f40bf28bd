package animals

import "time"

// Species define las especies soportadas.
// @Enum dog, cat, bird, rabbit, other
type Species string

const (
	SpeciesDog    Species = "dog"
	SpeciesCat    Species = "cat"
	SpeciesBird   Species = "bird"
	SpeciesRabbit Species = "rabbit"
	SpeciesOther  Species = "other"
)

func (s Species) Valid() bool {
	switch s {
	case SpeciesDog, SpeciesCat, SpeciesBird, SpeciesRabbit, SpeciesOther:
		return true
	}
	return false
}

// Sex define el sexo del animal.
// @Enum male, female, unknown
type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

func (s Sex) Valid() bool {
	switch s {
	case SexMale, SexFemale, SexUnknown:
		return true
	}
	return false
}

// HealthRecordKind es el tipo de registro sanitario.
type HealthRecordKind string

const (
	HealthCheckup     HealthRecordKind = "checkup"
	HealthVaccination HealthRecordKind = "vaccination"
	HealthDeworming   HealthRecordKind = "deworming"
	HealthTreatment   HealthRecordKind = "treatment"
)

func (k HealthRecordKind) Valid() bool {
	switch k {
	case HealthCheckup, HealthVaccination, HealthDeworming, HealthTreatment:
		return true
	}
	return false
}

// HealthRecord es append-only. NextDueAt alimenta los recordatorios.
type HealthRecord struct {
	ID          string           `json:"id"`
	Kind        HealthRecordKind `json:"kind"`
	Title       string           `json:"title"`
	Notes       string           `json:"notes,omitempty"`
	PerformedAt time.Time        `json:"performed_at"`
	NextDueAt   *time.Time       `json:"next_due_at,omitempty"`
	RecordedAt  time.Time        `json:"recorded_at"`
}

// OwnershipEntry registra el dueño ANTERIOR en cada transferencia.
type OwnershipEntry struct {
	PreviousOwnerUserID string    `json:"previous_owner_user_id"`
	TransferredAt       time.Time `json:"transferred_at"`
}

// Animal es el perfil de un animal con su dueño actual.
type Animal struct {
	ID          string
	OwnerUserID string

	Name    string
	Species Species
	Breed   string
	Sex     Sex

	BirthDate   *time.Time
	Description string
	ImageKey    string

	HealthRecords []HealthRecord
	History       []OwnershipEntry

	// Version se usa para concurrencia optimista (UPDATE ... WHERE version = $n).
	Version int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DueRecords devuelve los registros con NextDueAt en [from, to).
func (a Animal) DueRecords(from, to time.Time) []HealthRecord {
	out := make([]HealthRecord, 0)
	for _, hr := range a.HealthRecords {
		if hr.NextDueAt == nil {
			continue
		}
		if !hr.NextDueAt.Before(from) && hr.NextDueAt.Before(to) {
			out = append(out, hr)
		}
	}
	return out
}
