package announcements

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"adoptipet/internal/platform/apperr"
	"adoptipet/internal/platform/logger"
	"adoptipet/internal/ports/notifier"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput       = apperr.New(apperr.KindInvalidInput, "invalid announcement input")
	ErrNotFound           = apperr.New(apperr.KindNotFound, "announcement not found")
	ErrForbidden          = apperr.New(apperr.KindForbidden, "only the author or an admin can modify this announcement")
	ErrImageRequired      = apperr.New(apperr.KindInvalidInput, "image_key is required")
	ErrAnimalRequired     = apperr.New(apperr.KindInvalidInput, "this kind of announcement requires an animal")
	ErrAnimalNotAllowed   = apperr.New(apperr.KindInvalidInput, "this kind of announcement cannot reference an animal")
	ErrAnimalNotFound     = apperr.New(apperr.KindNotFound, "linked animal not found")
	ErrAnimalNotOwned     = apperr.New(apperr.KindForbidden, "the animal is not owned by the author")
	ErrAdoptionInProgress = apperr.New(apperr.KindConflict, "announcement has an adoption in progress")
)

// AnimalOwnerLookup evita importar animals desde announcements.
type AnimalOwnerLookup interface {
	OwnerOf(ctx context.Context, animalID string) (string, error)
}

type ImageStore interface {
	Delete(ctx context.Context, key string) error
}

// Actor es quien ejecuta la operación.
type Actor struct {
	UserID  string
	IsAdmin bool
}

type Service struct {
	repo    Repository
	animals AnimalOwnerLookup
	images  ImageStore
	queue   notifier.Queue
	now     func() time.Time
}

func NewService(repo Repository, animals AnimalOwnerLookup, images ImageStore, queue notifier.Queue) *Service {
	if queue == nil {
		queue = notifier.Discard{}
	}
	return &Service{
		repo:    repo,
		animals: animals,
		images:  images,
		queue:   queue,
		now:     time.Now,
	}
}

type CreateInput struct {
	Kind        string
	Title       string
	Description string
	Location    string
	ImageKey    string
	AnimalID    string
}

// Create valida el enlace con el animal (dueño == autor) y deja el anuncio
// pendiente de moderación. Los de adopción arrancan "open".
func (s *Service) Create(ctx context.Context, authorUserID string, in CreateInput) (Announcement, error) {
	authorUserID = strings.TrimSpace(authorUserID)
	if authorUserID == "" {
		return Announcement{}, ErrInvalidInput
	}

	kind := Kind(strings.ToLower(strings.TrimSpace(in.Kind)))
	if !kind.Valid() {
		return Announcement{}, apperr.New(apperr.KindInvalidInput, "kind must be adoption, temporary_care, lost, found or advice")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Announcement{}, apperr.New(apperr.KindInvalidInput, "title is required")
	}
	imageKey := strings.TrimSpace(in.ImageKey)
	if imageKey == "" {
		return Announcement{}, ErrImageRequired
	}

	animalID := strings.TrimSpace(in.AnimalID)
	if err := s.validateAnimalLink(ctx, kind, animalID, authorUserID); err != nil {
		return Announcement{}, err
	}

	now := s.now()
	a := Announcement{
		ID:               uuid.NewString(),
		Kind:             kind,
		Title:            title,
		Description:      strings.TrimSpace(in.Description),
		Location:         strings.TrimSpace(in.Location),
		ImageKey:         imageKey,
		AnimalID:         animalID,
		AuthorUserID:     authorUserID,
		ModerationStatus: ModerationPending,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if kind == KindAdoption {
		a.AdoptionStatus = AdoptionOpen
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return Announcement{}, err
	}
	return a, nil
}

func (s *Service) validateAnimalLink(ctx context.Context, kind Kind, animalID, authorUserID string) error {
	switch kind.AnimalRule() {
	case AnimalForbidden:
		if animalID != "" {
			return ErrAnimalNotAllowed
		}
		return nil
	case AnimalRequired:
		if animalID == "" {
			return ErrAnimalRequired
		}
	}
	if animalID == "" {
		return nil
	}

	owner, err := s.animals.OwnerOf(ctx, animalID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return ErrAnimalNotFound
		}
		return err
	}
	if owner != authorUserID {
		return ErrAnimalNotOwned
	}
	return nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Announcement, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Announcement{}, ErrNotFound
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Announcement{}, ErrNotFound
		}
		return Announcement{}, err
	}
	return a, nil
}

// GetVisible aplica la regla de visibilidad pública: los no aceptados
// sólo los ve el autor o un admin; al resto les da 404.
func (s *Service) GetVisible(ctx context.Context, id string, viewer Actor) (Announcement, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return Announcement{}, err
	}
	if a.ModerationStatus == ModerationAccepted || viewer.IsAdmin || (viewer.UserID != "" && viewer.UserID == a.AuthorUserID) {
		return a, nil
	}
	return Announcement{}, ErrNotFound
}

// ListPublic sólo devuelve anuncios con moderación aceptada.
func (s *Service) ListPublic(ctx context.Context, kind string) ([]Announcement, error) {
	f := ListFilter{ModerationStatus: ModerationAccepted}
	if strings.TrimSpace(kind) != "" {
		k := Kind(strings.ToLower(strings.TrimSpace(kind)))
		if !k.Valid() {
			return nil, apperr.New(apperr.KindInvalidInput, "unknown kind")
		}
		f.Kind = k
	}
	items, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	// El repo ya filtra; igual no dejamos pasar nada no aceptado.
	out := items[:0]
	for _, a := range items {
		if a.ModerationStatus == ModerationAccepted {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Service) ListForAdmin(ctx context.Context, moderation, kind string) ([]Announcement, error) {
	var f ListFilter
	if m := ModerationStatus(strings.ToLower(strings.TrimSpace(moderation))); m != "" {
		if !m.Valid() {
			return nil, apperr.New(apperr.KindInvalidInput, "unknown moderation status")
		}
		f.ModerationStatus = m
	}
	if k := Kind(strings.ToLower(strings.TrimSpace(kind))); k != "" {
		if !k.Valid() {
			return nil, apperr.New(apperr.KindInvalidInput, "unknown kind")
		}
		f.Kind = k
	}
	return s.repo.List(ctx, f)
}

func (s *Service) ListMine(ctx context.Context, authorUserID string) ([]Announcement, error) {
	if strings.TrimSpace(authorUserID) == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.List(ctx, ListFilter{AuthorUserID: authorUserID})
}

// ListStalePending devuelve anuncios pendientes de moderación creados antes de before.
func (s *Service) ListStalePending(ctx context.Context, before time.Time) ([]Announcement, error) {
	return s.repo.List(ctx, ListFilter{ModerationStatus: ModerationPending, CreatedBefore: before})
}

type UpdateInput struct {
	// nil = no tocar. AnimalID "" explícito = desenlazar.
	Kind        *string
	Title       *string
	Description *string
	Location    *string
	ImageKey    *string
	AnimalID    *string
}

// Update: autor o admin. Si cambia el tipo o el animal se re-valida el enlace
// contra el autor. Si edita contenido alguien que no es admin, vuelve a moderación.
func (s *Service) Update(ctx context.Context, id string, actor Actor, expectedVersion int, in UpdateInput) (Announcement, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return Announcement{}, err
	}
	if !actor.IsAdmin && a.AuthorUserID != actor.UserID {
		return Announcement{}, ErrForbidden
	}
	if expectedVersion > 0 && expectedVersion != a.Version {
		return Announcement{}, apperr.ErrVersionConflict
	}

	oldImage := a.ImageKey
	relink := false

	if in.Kind != nil {
		k := Kind(strings.ToLower(strings.TrimSpace(*in.Kind)))
		if !k.Valid() {
			return Announcement{}, apperr.New(apperr.KindInvalidInput, "kind must be adoption, temporary_care, lost, found or advice")
		}
		if k != a.Kind {
			if a.Kind == KindAdoption && a.AdoptionStatus != AdoptionOpen {
				return Announcement{}, ErrAdoptionInProgress
			}
			a.Kind = k
			relink = true
		}
	}
	if in.AnimalID != nil {
		id := strings.TrimSpace(*in.AnimalID)
		if id != a.AnimalID {
			if a.Kind == KindAdoption && a.AdoptionStatus != AdoptionOpen {
				return Announcement{}, ErrAdoptionInProgress
			}
			a.AnimalID = id
			relink = true
		}
	}
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		if t == "" {
			return Announcement{}, apperr.New(apperr.KindInvalidInput, "title cannot be empty")
		}
		a.Title = t
	}
	if in.Description != nil {
		a.Description = strings.TrimSpace(*in.Description)
	}
	if in.Location != nil {
		a.Location = strings.TrimSpace(*in.Location)
	}
	if in.ImageKey != nil {
		k := strings.TrimSpace(*in.ImageKey)
		if k == "" {
			return Announcement{}, ErrImageRequired
		}
		a.ImageKey = k
	}

	if relink {
		if err := s.validateAnimalLink(ctx, a.Kind, a.AnimalID, a.AuthorUserID); err != nil {
			return Announcement{}, err
		}
		switch {
		case a.Kind == KindAdoption && a.AdoptionStatus == "":
			a.AdoptionStatus = AdoptionOpen
		case a.Kind != KindAdoption:
			a.AdoptionStatus = ""
		}
	}

	if !actor.IsAdmin {
		a.ModerationStatus = ModerationPending
	}

	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Announcement{}, err
	}
	a.Version++

	if oldImage != a.ImageKey {
		s.removeImage(ctx, oldImage)
	}
	return a, nil
}

// Delete: autor o admin. No se borra con una adopción esperando al admin.
func (s *Service) Delete(ctx context.Context, id string, actor Actor) error {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsAdmin && a.AuthorUserID != actor.UserID {
		return ErrForbidden
	}
	if a.Kind == KindAdoption && a.AdoptionStatus == AdoptionAwaitingAdmin {
		return ErrAdoptionInProgress
	}
	if err := s.repo.Delete(ctx, a.ID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.removeImage(ctx, a.ImageKey)
	return nil
}

// Moderate lo llama el handler admin; la capability se chequea en el router.
func (s *Service) Moderate(ctx context.Context, id string, status string) (Announcement, error) {
	m := ModerationStatus(strings.ToLower(strings.TrimSpace(status)))
	if !m.Valid() {
		return Announcement{}, apperr.New(apperr.KindInvalidInput, "status must be pending, accepted or rejected")
	}

	a, err := s.GetByID(ctx, id)
	if err != nil {
		return Announcement{}, err
	}
	if a.ModerationStatus == m {
		return a, nil
	}

	a.ModerationStatus = m
	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Announcement{}, err
	}
	a.Version++

	if m != ModerationPending {
		s.queue.Enqueue(notifier.Message{
			UserIDs: []string{a.AuthorUserID},
			Kind:    "announcement_moderated",
			Subject: fmt.Sprintf("Your announcement %q was %s", a.Title, m),
			Body:    fmt.Sprintf("The moderation team marked your announcement %q as %s.", a.Title, m),
		})
	}
	return a, nil
}

func (s *Service) removeImage(ctx context.Context, key string) {
	if s.images == nil || key == "" {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		logger.FromContext(ctx).Warn("image cleanup failed", map[string]any{"key": key, "error": err})
	}
}
