package adoption

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"adoptipet/internal/domain/animals"
	"adoptipet/internal/domain/announcements"
	"adoptipet/internal/domain/users"
	"adoptipet/internal/platform/apperr"
	"adoptipet/internal/platform/logger"
	"adoptipet/internal/ports/notifier"

	"github.com/google/uuid"
)

var (
	ErrAnnouncementNotFound = apperr.New(apperr.KindNotFound, "announcement not found")
	ErrApplicationNotFound  = apperr.New(apperr.KindNotFound, "application not found")
	ErrMigrationNotFound    = apperr.New(apperr.KindNotFound, "migration request not found")

	ErrForbidden = apperr.New(apperr.KindForbidden, "only the announcement author can do this")
	ErrAdminOnly = apperr.New(apperr.KindForbidden, "admin capability required")

	ErrNotAdoption     = apperr.New(apperr.KindInvalidInput, "announcement is not an adoption")
	ErrNotPublished    = apperr.New(apperr.KindInvalidInput, "announcement is not published")
	ErrSelfApplication = apperr.New(apperr.KindInvalidInput, "cannot apply to your own announcement")

	ErrAnnouncementClosed   = apperr.New(apperr.KindConflict, "announcement is closed")
	ErrDuplicateApplication = apperr.New(apperr.KindConflict, "an application is already in progress for this announcement")
	ErrAlreadyProcessed     = apperr.New(apperr.KindConflict, "request already processed")

	ErrNoLinkedAnimal = apperr.New(apperr.KindInvalidState, "no linked animal")
	ErrOwnerChanged   = apperr.New(apperr.KindInvalidState, "announcement author no longer owns the animal")
)

// Actor es quien llama. IsAdmin viene del resolver de capabilities.
type Actor struct {
	UserID  string
	IsAdmin bool
}

// Service orquesta el flujo: carga documentos, delega en las funciones plan*
// y persiste con un único Store.Commit por operación.
//
// No hay locks en proceso: el aislamiento es sólo el chequeo de versiones
// del Commit más la relectura del anuncio en Approve.
type Service struct {
	store         Store
	announcements AnnouncementReader
	animals       AnimalReader
	users         users.Reader
	queue         notifier.Queue
	now           func() time.Time
	newID         func() string
}

func NewService(store Store, anns AnnouncementReader, animalReader AnimalReader, people users.Reader, queue notifier.Queue) *Service {
	if queue == nil {
		queue = notifier.Discard{}
	}
	return &Service{
		store:         store,
		announcements: anns,
		animals:       animalReader,
		users:         people,
		queue:         queue,
		now:           time.Now,
		newID:         uuid.NewString,
	}
}

// Apply crea una candidatura pending sobre un anuncio de adopción publicado.
func (s *Service) Apply(ctx context.Context, announcementID, applicantUserID, message string) (Application, error) {
	applicantUserID = strings.TrimSpace(applicantUserID)
	if applicantUserID == "" {
		return Application{}, apperr.New(apperr.KindInvalidInput, "applicant is required")
	}

	ann, err := s.loadAnnouncement(ctx, announcementID)
	if err != nil {
		return Application{}, err
	}
	if ann.Kind != announcements.KindAdoption {
		return Application{}, ErrNotAdoption
	}
	if ann.ModerationStatus != announcements.ModerationAccepted {
		return Application{}, ErrNotPublished
	}
	if ann.AdoptionStatus == announcements.AdoptionClosed {
		return Application{}, ErrAnnouncementClosed
	}
	if ann.AuthorUserID == applicantUserID {
		return Application{}, ErrSelfApplication
	}

	existing, err := s.store.ListApplicationsByAnnouncement(ctx, ann.ID)
	if err != nil {
		return Application{}, err
	}
	for _, a := range existing {
		if a.ApplicantUserID == applicantUserID && a.Status.Active() {
			return Application{}, ErrDuplicateApplication
		}
	}

	now := s.now()
	app := Application{
		ID:              s.newID(),
		AnnouncementID:  ann.ID,
		AnimalID:        ann.AnimalID,
		ApplicantUserID: applicantUserID,
		Message:         strings.TrimSpace(message),
		Status:          ApplicationPending,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.CreateApplication(ctx, app); err != nil {
		return Application{}, err
	}
	applicationsTotal.Inc()

	s.notify(ctx, notifier.Message{
		UserIDs: []string{ann.AuthorUserID},
		Kind:    "application_received",
		Subject: fmt.Sprintf("New application for %q", ann.Title),
		Body:    fmt.Sprintf("Someone applied to adopt through your announcement %q. Review the candidates in your dashboard.", ann.Title),
	})
	return app, nil
}

// ListForAnnouncement devuelve las candidaturas de un anuncio. Sólo el autor.
func (s *Service) ListForAnnouncement(ctx context.Context, announcementID string, actor Actor) ([]Application, error) {
	ann, err := s.loadAnnouncement(ctx, announcementID)
	if err != nil {
		return nil, err
	}
	if ann.AuthorUserID != actor.UserID {
		return nil, ErrForbidden
	}
	return s.store.ListApplicationsByAnnouncement(ctx, ann.ID)
}

func (s *Service) ListMine(ctx context.Context, applicantUserID string) ([]Application, error) {
	if strings.TrimSpace(applicantUserID) == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "applicant is required")
	}
	return s.store.ListApplicationsByApplicant(ctx, applicantUserID)
}

type AcceptResult struct {
	Application Application
	Migration   MigrationRequest
}

// Accept: el autor elige una candidatura. Crea (upsert) la solicitud de
// migración para el par anuncio+candidato y deja el anuncio esperando al admin.
// Repetirlo devuelve la misma solicitud.
func (s *Service) Accept(ctx context.Context, applicationID string, actor Actor, expectedVersion int) (AcceptResult, error) {
	app, err := s.loadApplication(ctx, applicationID)
	if err != nil {
		return AcceptResult{}, err
	}
	ann, err := s.loadAnnouncement(ctx, app.AnnouncementID)
	if err != nil {
		return AcceptResult{}, err
	}
	// Antes que cualquier otra cosa: un no-autor nunca toca la solicitud.
	if ann.AuthorUserID != actor.UserID {
		return AcceptResult{}, ErrForbidden
	}
	if expectedVersion > 0 && expectedVersion != app.Version {
		return AcceptResult{}, apperr.ErrVersionConflict
	}

	existing, err := s.findMigration(ctx, ann.ID, app.ApplicantUserID)
	if err != nil {
		return AcceptResult{}, err
	}

	cs, err := planAcceptance(app, ann, existing, s.newID(), s.now())
	if err != nil {
		return AcceptResult{}, err
	}

	res := AcceptResult{Application: app}
	if existing != nil {
		res.Migration = *existing
	}
	if cs.Empty() {
		acceptancesTotal.Inc()
		return res, nil
	}

	committed, err := s.store.Commit(ctx, cs)
	if err != nil {
		return AcceptResult{}, err
	}
	if committed.Application != nil {
		res.Application = *committed.Application
	}
	if committed.Migration != nil {
		res.Migration = *committed.Migration
	}
	acceptancesTotal.Inc()

	s.notify(ctx, notifier.Message{
		UserIDs: []string{app.ApplicantUserID},
		Kind:    "application_accepted",
		Subject: fmt.Sprintf("Your application for %q was accepted", ann.Title),
		Body:    "The author selected you as adopter. An administrator will validate the transfer shortly.",
	})
	return res, nil
}

type ApproveResult struct {
	AnimalID string
	NewOwner string
}

// Approve completa la transferencia. Relee el anuncio justo antes de
// mutar y persiste animal, anuncio, solicitud y candidatura en un solo Commit.
func (s *Service) Approve(ctx context.Context, migrationID string, actor Actor, expectedVersion int) (ApproveResult, error) {
	if !actor.IsAdmin {
		return ApproveResult{}, ErrAdminOnly
	}
	m, err := s.loadMigration(ctx, migrationID)
	if err != nil {
		return ApproveResult{}, err
	}
	if expectedVersion > 0 && expectedVersion != m.Version {
		return ApproveResult{}, apperr.ErrVersionConflict
	}
	if m.Status != MigrationAwaitingAdmin {
		return ApproveResult{}, ErrAlreadyProcessed
	}

	ann, err := s.loadAnnouncement(ctx, m.AnnouncementID)
	if err != nil {
		return ApproveResult{}, err
	}
	if ann.AdoptionStatus == announcements.AdoptionClosed {
		return ApproveResult{}, ErrAnnouncementClosed
	}

	animalID := ann.AnimalID
	if animalID == "" {
		animalID = m.AnimalID
	}
	if animalID == "" {
		return ApproveResult{}, ErrNoLinkedAnimal
	}
	animal, err := s.animals.GetByID(ctx, animalID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return ApproveResult{}, ErrNoLinkedAnimal
		}
		return ApproveResult{}, err
	}

	app, err := s.loadApplication(ctx, m.ApplicationID)
	if err != nil {
		return ApproveResult{}, err
	}

	cs, err := planApproval(m, app, ann, animal, s.now())
	if err != nil {
		return ApproveResult{}, err
	}
	if _, err := s.store.Commit(ctx, cs); err != nil {
		return ApproveResult{}, err
	}
	transfersTotal.Inc()

	logger.FromContext(ctx).Info("adoption completed", map[string]any{
		"migration_id":   m.ID,
		"animal_id":      animal.ID,
		"previous_owner": animal.OwnerUserID,
		"new_owner":      m.CandidateUserID,
		"admin_id":       actor.UserID,
	})

	s.notify(ctx, notifier.Message{
		UserIDs: []string{m.CandidateUserID, animal.OwnerUserID},
		Kind:    "adoption_completed",
		Subject: fmt.Sprintf("Adoption of %s completed", animal.Name),
		Body:    fmt.Sprintf("The transfer of %s was approved by an administrator. Thank you for using AdoptiPet.", animal.Name),
	})

	return ApproveResult{AnimalID: animal.ID, NewOwner: m.CandidateUserID}, nil
}

// RejectApplication: el autor descarta una candidatura pending o selected.
func (s *Service) RejectApplication(ctx context.Context, applicationID string, actor Actor, expectedVersion int) (Application, error) {
	app, err := s.loadApplication(ctx, applicationID)
	if err != nil {
		return Application{}, err
	}
	ann, err := s.loadAnnouncement(ctx, app.AnnouncementID)
	if err != nil {
		return Application{}, err
	}
	if ann.AuthorUserID != actor.UserID {
		return Application{}, ErrForbidden
	}
	if expectedVersion > 0 && expectedVersion != app.Version {
		return Application{}, apperr.ErrVersionConflict
	}

	m, err := s.findMigration(ctx, ann.ID, app.ApplicantUserID)
	if err != nil {
		return Application{}, err
	}
	excluded := ""
	if m != nil {
		excluded = m.ID
	}
	others, err := s.othersAwaiting(ctx, ann.ID, excluded)
	if err != nil {
		return Application{}, err
	}

	cs, err := planApplicationRejection(app, ann, m, others, s.now())
	if err != nil {
		return Application{}, err
	}
	committed, err := s.store.Commit(ctx, cs)
	if err != nil {
		return Application{}, err
	}
	rejectionsTotal.WithLabelValues("application").Inc()

	s.notify(ctx, notifier.Message{
		UserIDs: []string{app.ApplicantUserID},
		Kind:    "application_rejected",
		Subject: fmt.Sprintf("Your application for %q was not retained", ann.Title),
		Body:    "The author chose not to move forward with your application.",
	})
	return *committed.Application, nil
}

// RejectMigration: un admin rechaza la transferencia. La candidatura queda
// rechazada y el anuncio vuelve a open si no queda otra solicitud esperando.
func (s *Service) RejectMigration(ctx context.Context, migrationID string, actor Actor, expectedVersion int) (MigrationRequest, error) {
	if !actor.IsAdmin {
		return MigrationRequest{}, ErrAdminOnly
	}
	m, err := s.loadMigration(ctx, migrationID)
	if err != nil {
		return MigrationRequest{}, err
	}
	if expectedVersion > 0 && expectedVersion != m.Version {
		return MigrationRequest{}, apperr.ErrVersionConflict
	}
	if m.Status != MigrationAwaitingAdmin {
		return MigrationRequest{}, ErrAlreadyProcessed
	}

	ann, err := s.loadAnnouncement(ctx, m.AnnouncementID)
	if err != nil {
		return MigrationRequest{}, err
	}

	var app *Application
	if m.ApplicationID != "" {
		a, err := s.store.GetApplication(ctx, m.ApplicationID)
		switch {
		case err == nil:
			app = &a
		case !errors.Is(err, apperr.ErrNotFound):
			return MigrationRequest{}, err
		}
	}

	others, err := s.othersAwaiting(ctx, ann.ID, m.ID)
	if err != nil {
		return MigrationRequest{}, err
	}

	cs, err := planMigrationRejection(m, app, ann, others, s.now())
	if err != nil {
		return MigrationRequest{}, err
	}
	committed, err := s.store.Commit(ctx, cs)
	if err != nil {
		return MigrationRequest{}, err
	}
	rejectionsTotal.WithLabelValues("migration").Inc()

	s.notify(ctx, notifier.Message{
		UserIDs: []string{m.CandidateUserID, ann.AuthorUserID},
		Kind:    "migration_rejected",
		Subject: fmt.Sprintf("Adoption request for %q was rejected", ann.Title),
		Body:    "An administrator rejected the ownership transfer.",
	})
	return *committed.Migration, nil
}

func (s *Service) loadAnnouncement(ctx context.Context, id string) (announcements.Announcement, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return announcements.Announcement{}, ErrAnnouncementNotFound
	}
	ann, err := s.announcements.GetByID(ctx, id)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return announcements.Announcement{}, ErrAnnouncementNotFound
		}
		return announcements.Announcement{}, err
	}
	return ann, nil
}

func (s *Service) loadApplication(ctx context.Context, id string) (Application, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Application{}, ErrApplicationNotFound
	}
	app, err := s.store.GetApplication(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Application{}, ErrApplicationNotFound
		}
		return Application{}, err
	}
	return app, nil
}

func (s *Service) loadMigration(ctx context.Context, id string) (MigrationRequest, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return MigrationRequest{}, ErrMigrationNotFound
	}
	m, err := s.store.GetMigration(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return MigrationRequest{}, ErrMigrationNotFound
		}
		return MigrationRequest{}, err
	}
	return m, nil
}

// findMigration devuelve nil si el par todavía no tiene solicitud.
func (s *Service) findMigration(ctx context.Context, announcementID, candidateUserID string) (*MigrationRequest, error) {
	m, err := s.store.FindMigration(ctx, announcementID, candidateUserID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (s *Service) othersAwaiting(ctx context.Context, announcementID, excludeID string) (bool, error) {
	items, err := s.store.ListMigrationsByAnnouncement(ctx, announcementID)
	if err != nil {
		return false, err
	}
	for _, m := range items {
		if m.ID != excludeID && m.Status == MigrationAwaitingAdmin {
			return true, nil
		}
	}
	return false, nil
}

// notify encola; si la cola está llena el dispatcher ya lo loguea.
func (s *Service) notify(_ context.Context, msg notifier.Message) {
	_ = s.queue.Enqueue(msg)
}

var _ AnimalReader = (*animals.Service)(nil)
var _ AnnouncementReader = (*announcements.Service)(nil)
