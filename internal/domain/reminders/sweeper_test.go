package reminders

import (
	"context"
	"errors"
	"testing"
	"time"

	"adoptipet/internal/domain/animals"
	"adoptipet/internal/domain/announcements"
	"adoptipet/internal/platform/logger"
	"adoptipet/internal/ports/notifier"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePending struct {
	items  []announcements.Announcement
	before time.Time
}

func (f *fakePending) ListStalePending(ctx context.Context, before time.Time) ([]announcements.Announcement, error) {
	f.before = before
	out := make([]announcements.Announcement, 0)
	for _, a := range f.items {
		if a.ModerationStatus == announcements.ModerationPending && a.CreatedAt.Before(before) {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeCare struct {
	items []animals.Animal
	err   error
}

func (f *fakeCare) ListWithCareDue(ctx context.Context, from, to time.Time) ([]animals.Animal, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]animals.Animal, 0)
	for _, a := range f.items {
		if len(a.DueRecords(from, to)) > 0 {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeAdmins []string

func (f fakeAdmins) AdminIDs(ctx context.Context, extra []string) ([]string, error) {
	return append(append([]string{}, f...), extra...), nil
}

type recordingQueue struct {
	msgs []notifier.Message
	full bool
}

func (q *recordingQueue) Enqueue(m notifier.Message) bool {
	if q.full {
		return false
	}
	q.msgs = append(q.msgs, m)
	return true
}

func (q *recordingQueue) byKind(kind string) []notifier.Message {
	out := make([]notifier.Message, 0)
	for _, m := range q.msgs {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

func at(t time.Time) *time.Time { return &t }

func TestSweep_StaleAndCareWindows(t *testing.T) {
	now := time.Date(2026, 9, 10, 6, 0, 0, 0, time.UTC)

	pending := &fakePending{items: []announcements.Announcement{
		{ID: "old", Title: "Gato perdido", Kind: announcements.KindLost, AuthorUserID: "u1", ModerationStatus: announcements.ModerationPending, CreatedAt: now.Add(-96 * time.Hour)},
		{ID: "new", Title: "Consejo", Kind: announcements.KindAdvice, AuthorUserID: "u2", ModerationStatus: announcements.ModerationPending, CreatedAt: now.Add(-time.Hour)},
		{ID: "ok", Title: "Aceptado", Kind: announcements.KindAdvice, AuthorUserID: "u3", ModerationStatus: announcements.ModerationAccepted, CreatedAt: now.Add(-200 * time.Hour)},
	}}
	care := &fakeCare{items: []animals.Animal{
		{ID: "a1", Name: "Milo", OwnerUserID: "u1", HealthRecords: []animals.HealthRecord{
			{Title: "rabia", Kind: animals.HealthVaccination, NextDueAt: at(now.Add(7*24*time.Hour + 2*time.Hour))},
		}},
		{ID: "a2", Name: "Luna", OwnerUserID: "u2", HealthRecords: []animals.HealthRecord{
			{Title: "pipeta", Kind: animals.HealthDeworming, NextDueAt: at(now.Add(5 * time.Hour))},
			{Title: "control", Kind: animals.HealthCheckup, NextDueAt: at(now.Add(30 * 24 * time.Hour))},
		}},
	}}
	q := &recordingQueue{}

	s := NewSweeper(pending, care, fakeAdmins{"admin1"}, q, logger.NewNop(), Options{
		StaleAfter:  72 * time.Hour,
		Lead:        7 * 24 * time.Hour,
		ExtraAdmins: []string{"cfg-admin"},
	})

	res, err := s.Sweep(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(-72*time.Hour), pending.before)

	// Autor + un resumen para los admins.
	assert.Equal(t, 2, res.StaleAnnouncements)
	require.Len(t, q.byKind("announcement_pending"), 1)
	assert.Equal(t, []string{"u1"}, q.byKind("announcement_pending")[0].UserIDs)
	backlog := q.byKind("moderation_backlog")
	require.Len(t, backlog, 1)
	assert.Equal(t, []string{"admin1", "cfg-admin"}, backlog[0].UserIDs)
	assert.Contains(t, backlog[0].Body, "Gato perdido")

	assert.Equal(t, 1, res.UpcomingCare)
	upcoming := q.byKind("care_upcoming")
	require.Len(t, upcoming, 1)
	assert.Equal(t, []string{"u1"}, upcoming[0].UserIDs)

	assert.Equal(t, 1, res.DueSoonCare)
	soon := q.byKind("care_due_soon")
	require.Len(t, soon, 1)
	assert.Equal(t, []string{"u2"}, soon[0].UserIDs)
	assert.Contains(t, soon[0].Body, "pipeta")
	assert.NotContains(t, soon[0].Body, "control")
}

func TestSweep_ErrorsDoNotStopOtherPasses(t *testing.T) {
	now := time.Date(2026, 9, 10, 6, 0, 0, 0, time.UTC)
	pending := &fakePending{items: []announcements.Announcement{
		{ID: "old", Title: "x", AuthorUserID: "u1", ModerationStatus: announcements.ModerationPending, CreatedAt: now.Add(-100 * time.Hour)},
	}}
	care := &fakeCare{err: errors.New("db down")}
	q := &recordingQueue{}

	s := NewSweeper(pending, care, nil, q, nil, Options{Lead: 7 * 24 * time.Hour})
	res, err := s.Sweep(context.Background(), now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.Equal(t, 1, res.StaleAnnouncements)
}

func TestSweep_DroppedMessagesAreNotCounted(t *testing.T) {
	now := time.Date(2026, 9, 10, 6, 0, 0, 0, time.UTC)
	care := &fakeCare{items: []animals.Animal{
		{ID: "a1", Name: "Milo", OwnerUserID: "u1", HealthRecords: []animals.HealthRecord{
			{Title: "x", Kind: animals.HealthTreatment, NextDueAt: at(now.Add(time.Hour))},
		}},
	}}
	q := &recordingQueue{full: true}

	s := NewSweeper(&fakePending{}, care, nil, q, logger.NewNop(), Options{})
	require.NoError(t, s.Run(context.Background(), now))

	res, err := s.Sweep(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, res.DueSoonCare)
}
