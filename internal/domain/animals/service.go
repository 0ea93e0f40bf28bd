package animals

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"adoptipet/internal/platform/apperr"
	"adoptipet/internal/platform/logger"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = apperr.New(apperr.KindInvalidInput, "invalid animal input")
	ErrNotFound     = apperr.New(apperr.KindNotFound, "animal not found")
	ErrForbidden    = apperr.New(apperr.KindForbidden, "only the owner can modify this animal")
)

// ImageStore es lo mínimo que necesitamos del blob store: borrar la imagen.
type ImageStore interface {
	Delete(ctx context.Context, key string) error
}

type Service struct {
	repo   Repository
	images ImageStore
	now    func() time.Time
}

// NewService: images puede ser nil (no se limpian imágenes).
func NewService(repo Repository, images ImageStore) *Service {
	return &Service{
		repo:   repo,
		images: images,
		now:    time.Now,
	}
}

type CreateInput struct {
	Name        string
	Species     string
	Breed       string
	Sex         string
	BirthDate   *time.Time
	Description string
	ImageKey    string
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Animal, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Animal{}, ErrInvalidInput
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Animal{}, apperr.New(apperr.KindInvalidInput, "name is required")
	}
	species := Species(strings.ToLower(strings.TrimSpace(in.Species)))
	if !species.Valid() {
		return Animal{}, apperr.New(apperr.KindInvalidInput, "species must be one of dog, cat, bird, rabbit, other")
	}
	sex := Sex(strings.ToLower(strings.TrimSpace(in.Sex)))
	if sex == "" {
		sex = SexUnknown
	}
	if !sex.Valid() {
		return Animal{}, apperr.New(apperr.KindInvalidInput, "sex must be male, female or unknown")
	}

	now := s.now()
	if in.BirthDate != nil && in.BirthDate.After(now) {
		return Animal{}, apperr.New(apperr.KindInvalidInput, "birth_date cannot be in the future")
	}

	a := Animal{
		ID:            uuid.NewString(),
		OwnerUserID:   ownerUserID,
		Name:          name,
		Species:       species,
		Breed:         strings.TrimSpace(in.Breed),
		Sex:           sex,
		BirthDate:     in.BirthDate,
		Description:   strings.TrimSpace(in.Description),
		ImageKey:      strings.TrimSpace(in.ImageKey),
		HealthRecords: []HealthRecord{},
		History:       []OwnershipEntry{},
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return Animal{}, err
	}
	return a, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Animal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Animal{}, ErrNotFound
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Animal{}, ErrNotFound
		}
		return Animal{}, err
	}
	return a, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Animal, error) {
	return s.repo.ListByOwner(ctx, ownerUserID)
}

// OptionalDate distingue "no enviado" de "enviado null" en un PATCH.
type OptionalDate struct {
	Present bool
	Value   *time.Time
}

type UpdateInput struct {
	// Punteros para PATCH real: nil = no tocar.
	Name        *string
	Species     *string
	Breed       *string
	Sex         *string
	BirthDate   OptionalDate
	Description *string
	ImageKey    *string
}

// Update aplica un merge parcial. Sólo el dueño.
// expectedVersion 0 = sin chequeo previo (igual se chequea contra lo leído).
func (s *Service) Update(ctx context.Context, id, actorUserID string, expectedVersion int, in UpdateInput) (Animal, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return Animal{}, err
	}
	if a.OwnerUserID != actorUserID {
		return Animal{}, ErrForbidden
	}
	if expectedVersion > 0 && expectedVersion != a.Version {
		return Animal{}, apperr.ErrVersionConflict
	}

	if in.Name != nil {
		v := strings.TrimSpace(*in.Name)
		if v == "" {
			return Animal{}, apperr.New(apperr.KindInvalidInput, "name cannot be empty")
		}
		a.Name = v
	}
	if in.Species != nil {
		v := Species(strings.ToLower(strings.TrimSpace(*in.Species)))
		if !v.Valid() {
			return Animal{}, apperr.New(apperr.KindInvalidInput, "species must be one of dog, cat, bird, rabbit, other")
		}
		a.Species = v
	}
	if in.Breed != nil {
		a.Breed = strings.TrimSpace(*in.Breed)
	}
	if in.Sex != nil {
		v := Sex(strings.ToLower(strings.TrimSpace(*in.Sex)))
		if !v.Valid() {
			return Animal{}, apperr.New(apperr.KindInvalidInput, "sex must be male, female or unknown")
		}
		a.Sex = v
	}
	if in.BirthDate.Present {
		if in.BirthDate.Value != nil && in.BirthDate.Value.After(s.now()) {
			return Animal{}, apperr.New(apperr.KindInvalidInput, "birth_date cannot be in the future")
		}
		a.BirthDate = in.BirthDate.Value
	}
	if in.Description != nil {
		a.Description = strings.TrimSpace(*in.Description)
	}
	oldImage := a.ImageKey
	if in.ImageKey != nil {
		a.ImageKey = strings.TrimSpace(*in.ImageKey)
	}

	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Animal{}, err
	}
	a.Version++

	if oldImage != "" && oldImage != a.ImageKey {
		s.removeImage(ctx, oldImage)
	}
	return a, nil
}

// Delete borra el animal (sólo el dueño) y limpia la imagen best-effort.
func (s *Service) Delete(ctx context.Context, id, actorUserID string) error {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a.OwnerUserID != actorUserID {
		return ErrForbidden
	}
	if err := s.repo.Delete(ctx, a.ID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if a.ImageKey != "" {
		s.removeImage(ctx, a.ImageKey)
	}
	return nil
}

type HealthRecordInput struct {
	Kind        string
	Title       string
	Notes       string
	PerformedAt time.Time
	NextDueAt   *time.Time
}

// AddHealthRecord agrega un registro sanitario (append-only). Sólo el dueño.
func (s *Service) AddHealthRecord(ctx context.Context, animalID, actorUserID string, in HealthRecordInput) (Animal, HealthRecord, error) {
	kind := HealthRecordKind(strings.ToLower(strings.TrimSpace(in.Kind)))
	if !kind.Valid() {
		return Animal{}, HealthRecord{}, apperr.New(apperr.KindInvalidInput, "kind must be checkup, vaccination, deworming or treatment")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = string(kind)
	}
	if in.PerformedAt.IsZero() {
		return Animal{}, HealthRecord{}, apperr.New(apperr.KindInvalidInput, "performed_at is required")
	}
	if in.NextDueAt != nil && !in.NextDueAt.After(in.PerformedAt) {
		return Animal{}, HealthRecord{}, apperr.New(apperr.KindInvalidInput, "next_due_at must be after performed_at")
	}

	a, err := s.GetByID(ctx, animalID)
	if err != nil {
		return Animal{}, HealthRecord{}, err
	}
	if a.OwnerUserID != actorUserID {
		return Animal{}, HealthRecord{}, ErrForbidden
	}

	now := s.now()
	hr := HealthRecord{
		ID:          uuid.NewString(),
		Kind:        kind,
		Title:       title,
		Notes:       strings.TrimSpace(in.Notes),
		PerformedAt: in.PerformedAt,
		NextDueAt:   in.NextDueAt,
		RecordedAt:  now,
	}

	records := make([]HealthRecord, 0, len(a.HealthRecords)+1)
	records = append(records, a.HealthRecords...)
	records = append(records, hr)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].PerformedAt.Before(records[j].PerformedAt)
	})
	a.HealthRecords = records
	a.UpdatedAt = now

	if err := s.repo.Update(ctx, a); err != nil {
		return Animal{}, HealthRecord{}, err
	}
	a.Version++
	return a, hr, nil
}

// ListWithCareDue lo usa el barrido de recordatorios.
func (s *Service) ListWithCareDue(ctx context.Context, from, to time.Time) ([]Animal, error) {
	if !from.Before(to) {
		return nil, fmt.Errorf("list care due: empty window %s..%s", from, to)
	}
	return s.repo.ListWithCareDue(ctx, from, to)
}

func (s *Service) removeImage(ctx context.Context, key string) {
	if s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		logger.FromContext(ctx).Warn("image cleanup failed", map[string]any{"key": key, "error": err})
	}
}
