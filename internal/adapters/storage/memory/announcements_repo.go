package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"adoptipet/internal/domain/announcements"
	"adoptipet/internal/platform/apperr"
)

type announcementsRepo struct{ s *Store }

func (r *announcementsRepo) Create(ctx context.Context, a announcements.Announcement) error {
	if strings.TrimSpace(a.ID) == "" {
		return errors.New("announcement id required")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.announcements[a.ID]; exists {
		return errors.New("announcement already exists")
	}
	r.s.announcements[a.ID] = a
	return nil
}

func (r *announcementsRepo) GetByID(ctx context.Context, id string) (announcements.Announcement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.announcements[id]
	if !ok {
		return announcements.Announcement{}, ErrNotFound
	}
	return a, nil
}

func (r *announcementsRepo) Update(ctx context.Context, a announcements.Announcement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.updateAnnouncementLocked(a)
}

func (s *Store) updateAnnouncementLocked(a announcements.Announcement) error {
	cur, ok := s.announcements[a.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != a.Version {
		return apperr.ErrVersionConflict
	}
	a.Version++
	s.announcements[a.ID] = a
	return nil
}

func (r *announcementsRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.announcements[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.announcements, id)
	return nil
}

func (r *announcementsRepo) List(ctx context.Context, f announcements.ListFilter) ([]announcements.Announcement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]announcements.Announcement, 0)
	for _, a := range r.s.announcements {
		if f.Kind != "" && a.Kind != f.Kind {
			continue
		}
		if f.ModerationStatus != "" && a.ModerationStatus != f.ModerationStatus {
			continue
		}
		if f.AuthorUserID != "" && a.AuthorUserID != f.AuthorUserID {
			continue
		}
		if !f.CreatedBefore.IsZero() && !a.CreatedAt.Before(f.CreatedBefore) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
