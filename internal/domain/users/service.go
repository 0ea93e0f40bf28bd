package users

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"adoptipet/internal/platform/apperr"
	"adoptipet/internal/ports/auth"
)

var (
	ErrInvalidInput = apperr.New(apperr.KindInvalidInput, "invalid user input")
	ErrInvalidEmail = apperr.New(apperr.KindInvalidInput, "email is not valid")
	ErrNotFound     = apperr.New(apperr.KindNotFound, "user not found")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// EnsureFromClaims crea el usuario la primera vez que se ve su token y
// sincroniza el rol admin del token. Nombre/email editados por el usuario no se pisan.
func (s *Service) EnsureFromClaims(ctx context.Context, c auth.Claims) (User, error) {
	uid := strings.TrimSpace(c.UserID)
	if uid == "" {
		return User{}, ErrInvalidInput
	}

	role := RoleUser
	if c.HasRole(auth.RoleAdmin) {
		role = RoleAdmin
	}

	now := s.now()
	u, err := s.repo.GetByID(ctx, uid)
	switch {
	case err == nil:
		changed := false
		if u.Email == "" && strings.TrimSpace(c.Email) != "" {
			u.Email = strings.TrimSpace(c.Email)
			changed = true
		}
		if u.Name == "" && strings.TrimSpace(c.Name) != "" {
			u.Name = strings.TrimSpace(c.Name)
			changed = true
		}
		// El rol sólo sube desde el token; bajar un admin es una operación manual.
		if role == RoleAdmin && u.Role != RoleAdmin {
			u.Role = RoleAdmin
			changed = true
		}
		if !changed {
			return u, nil
		}
		u.UpdatedAt = now
	case errors.Is(err, apperr.ErrNotFound):
		u = User{
			ID:        uid,
			Email:     strings.TrimSpace(c.Email),
			Name:      strings.TrimSpace(c.Name),
			Role:      role,
			CreatedAt: now,
			UpdatedAt: now,
		}
	default:
		return User{}, err
	}

	if err := s.repo.Upsert(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	u, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

type UpdateInput struct {
	// nil = no tocar
	Name  *string
	Email *string
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, in UpdateInput) (User, error) {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return User{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return User{}, ErrInvalidInput
		}
		u.Name = name
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if _, err := mail.ParseAddress(email); err != nil {
			return User{}, ErrInvalidEmail
		}
		u.Email = email
	}

	u.UpdatedAt = s.now()
	if err := s.repo.Upsert(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// RoleOf lo usa el resolver de capabilities. Usuario desconocido => RoleUser.
func (s *Service) RoleOf(ctx context.Context, userID string) (Role, error) {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RoleUser, nil
		}
		return "", err
	}
	return u.Role, nil
}

// AdminIDs devuelve los admins guardados más los extra (config), sin duplicados.
func (s *Service) AdminIDs(ctx context.Context, extra []string) ([]string, error) {
	admins, err := s.repo.ListByRole(ctx, RoleAdmin)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	out := make([]string, 0, len(admins)+len(extra))
	add := func(id string) {
		id = strings.TrimSpace(id)
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	for _, a := range admins {
		add(a.ID)
	}
	for _, id := range extra {
		add(id)
	}
	return out, nil
}
