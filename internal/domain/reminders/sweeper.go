// Package reminders implementa el barrido diario de recordatorios.
//
// Son pasadas de sólo lectura: encolan notificaciones y no cambian el estado
// de ningún documento. El scheduler del proceso llama Run.
package reminders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"adoptipet/internal/domain/animals"
	"adoptipet/internal/domain/announcements"
	"adoptipet/internal/platform/logger"
	"adoptipet/internal/ports/notifier"
)

const day = 24 * time.Hour

type PendingSource interface {
	ListStalePending(ctx context.Context, before time.Time) ([]announcements.Announcement, error)
}

type CareSource interface {
	ListWithCareDue(ctx context.Context, from, to time.Time) ([]animals.Animal, error)
}

type AdminDirectory interface {
	AdminIDs(ctx context.Context, extra []string) ([]string, error)
}

type Options struct {
	// StaleAfter: antigüedad a partir de la cual un anuncio pendiente se recuerda.
	StaleAfter time.Duration
	// Lead: anticipación del recordatorio de cuidados.
	Lead time.Duration
	// ExtraAdmins se suman a los admins guardados (config admin.user_ids).
	ExtraAdmins []string
}

type Sweeper struct {
	pending PendingSource
	care    CareSource
	admins  AdminDirectory
	queue   notifier.Queue
	log     logger.Logger
	opts    Options
}

func NewSweeper(pending PendingSource, care CareSource, admins AdminDirectory, queue notifier.Queue, log logger.Logger, opts Options) *Sweeper {
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = 72 * time.Hour
	}
	if opts.Lead < 0 {
		opts.Lead = 0
	}
	if queue == nil {
		queue = notifier.Discard{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Sweeper{
		pending: pending,
		care:    care,
		admins:  admins,
		queue:   queue,
		log:     log,
		opts:    opts,
	}
}

// Result cuenta cuántas notificaciones se encolaron por tipo.
type Result struct {
	StaleAnnouncements int
	UpcomingCare       int
	DueSoonCare        int
}

// Run tiene la firma de scheduler.Job.
func (s *Sweeper) Run(ctx context.Context, now time.Time) error {
	res, err := s.Sweep(ctx, now)
	s.log.Info("reminder sweep finished", map[string]any{
		"stale_announcements": res.StaleAnnouncements,
		"upcoming_care":       res.UpcomingCare,
		"due_soon_care":       res.DueSoonCare,
	})
	return err
}

// Sweep corre las tres pasadas. Un error en una no corta las otras; se
// devuelven todos juntos.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) (Result, error) {
	var res Result
	var errs []error

	n, err := s.staleAnnouncements(ctx, now)
	res.StaleAnnouncements = n
	if err != nil {
		errs = append(errs, fmt.Errorf("stale announcements: %w", err))
	}

	if s.opts.Lead >= day {
		from := now.Add(s.opts.Lead)
		n, err = s.careDue(ctx, from, from.Add(day), "care_upcoming")
		res.UpcomingCare = n
		if err != nil {
			errs = append(errs, fmt.Errorf("upcoming care: %w", err))
		}
	}

	n, err = s.careDue(ctx, now, now.Add(day), "care_due_soon")
	res.DueSoonCare = n
	if err != nil {
		errs = append(errs, fmt.Errorf("due soon care: %w", err))
	}

	return res, errors.Join(errs...)
}

func (s *Sweeper) staleAnnouncements(ctx context.Context, now time.Time) (int, error) {
	items, err := s.pending.ListStalePending(ctx, now.Add(-s.opts.StaleAfter))
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, nil
	}

	var admins []string
	if s.admins != nil {
		admins, err = s.admins.AdminIDs(ctx, s.opts.ExtraAdmins)
		if err != nil {
			return 0, err
		}
	}

	titles := make([]string, 0, len(items))
	sent := 0
	for _, a := range items {
		titles = append(titles, fmt.Sprintf("- %s (%s)", a.Title, a.Kind))
		if s.enqueue(notifier.Message{
			UserIDs: []string{a.AuthorUserID},
			Kind:    "announcement_pending",
			Subject: fmt.Sprintf("Your announcement %q is still awaiting moderation", a.Title),
			Body:    "Our moderators have not reviewed your announcement yet. It will become visible as soon as it is accepted.",
		}) {
			sent++
		}
	}

	if len(admins) > 0 {
		if s.enqueue(notifier.Message{
			UserIDs: admins,
			Kind:    "moderation_backlog",
			Subject: fmt.Sprintf("%d announcement(s) awaiting moderation", len(items)),
			Body:    "Pending for more than " + s.opts.StaleAfter.String() + ":\n" + strings.Join(titles, "\n"),
		}) {
			sent++
		}
	}
	return sent, nil
}

func (s *Sweeper) careDue(ctx context.Context, from, to time.Time, kind string) (int, error) {
	items, err := s.care.ListWithCareDue(ctx, from, to)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, a := range items {
		records := a.DueRecords(from, to)
		if len(records) == 0 {
			continue
		}
		lines := make([]string, 0, len(records))
		for _, hr := range records {
			lines = append(lines, fmt.Sprintf("- %s (%s) on %s", hr.Title, hr.Kind, hr.NextDueAt.Format("2006-01-02")))
		}
		if s.enqueue(notifier.Message{
			UserIDs: []string{a.OwnerUserID},
			Kind:    kind,
			Subject: fmt.Sprintf("Care reminder for %s", a.Name),
			Body:    strings.Join(lines, "\n"),
		}) {
			sent++
		}
	}
	return sent, nil
}

func (s *Sweeper) enqueue(msg notifier.Message) bool {
	if s.queue.Enqueue(msg) {
		return true
	}
	s.log.Warn("reminder dropped", map[string]any{"kind": msg.Kind})
	return false
}
