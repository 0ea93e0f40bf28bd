package adoption

import "time"

// ApplicationStatus es el estado de una candidatura.
// @Enum pending, selected, rejected, approved
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationSelected ApplicationStatus = "selected"
	ApplicationRejected ApplicationStatus = "rejected"
	ApplicationApproved ApplicationStatus = "approved"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationSelected, ApplicationRejected, ApplicationApproved:
		return true
	}
	return false
}

// Active: cuenta para la regla de "una candidatura viva por anuncio y usuario".
func (s ApplicationStatus) Active() bool {
	return s == ApplicationPending || s == ApplicationSelected
}

// MigrationStatus es el estado de una solicitud de migración (transferencia pendiente de admin).
// @Enum awaiting_admin, approved, rejected, completed
type MigrationStatus string

const (
	MigrationAwaitingAdmin MigrationStatus = "awaiting_admin"
	MigrationApproved      MigrationStatus = "approved"
	MigrationRejected      MigrationStatus = "rejected"
	MigrationCompleted     MigrationStatus = "completed"
)

func (s MigrationStatus) Valid() bool {
	switch s {
	case MigrationAwaitingAdmin, MigrationApproved, MigrationRejected, MigrationCompleted:
		return true
	}
	return false
}

type Application struct {
	ID             string
	AnnouncementID string
	// AnimalID es copia del anuncio al momento de postular.
	AnimalID        string
	ApplicantUserID string
	Message         string
	Status          ApplicationStatus
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// MigrationRequest es única por (AnnouncementID, CandidateUserID).
type MigrationRequest struct {
	ID              string
	AnnouncementID  string
	AnimalID        string
	ApplicationID   string
	CandidateUserID string
	// PreviousOwnerUserID se completa al transferir.
	PreviousOwnerUserID string
	Status              MigrationStatus
	// Version 0 = todavía no persistida (Commit hace upsert por anuncio+candidato).
	Version     int
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
