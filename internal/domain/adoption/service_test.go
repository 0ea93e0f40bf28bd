package adoption

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"adoptipet/internal/domain/animals"
	"adoptipet/internal/domain/announcements"
	"adoptipet/internal/domain/users"
	"adoptipet/internal/platform/apperr"
	"adoptipet/internal/platform/logger"
	"adoptipet/internal/ports/notifier"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// -------------------------
// Fake store: un "mundo" con los cuatro tipos de documento
// -------------------------

type testWorld struct {
	anns    map[string]announcements.Announcement
	animals map[string]animals.Animal
	apps    map[string]Application
	migs    map[string]MigrationRequest

	commits      int
	beforeCommit func()
}

func newTestWorld() *testWorld {
	return &testWorld{
		anns:    map[string]announcements.Announcement{},
		animals: map[string]animals.Animal{},
		apps:    map[string]Application{},
		migs:    map[string]MigrationRequest{},
	}
}

func (w *testWorld) CreateApplication(ctx context.Context, a Application) error {
	w.apps[a.ID] = a
	return nil
}

func (w *testWorld) GetApplication(ctx context.Context, id string) (Application, error) {
	a, ok := w.apps[id]
	if !ok {
		return Application{}, apperr.ErrNotFound
	}
	return a, nil
}

func (w *testWorld) ListApplicationsByAnnouncement(ctx context.Context, announcementID string) ([]Application, error) {
	out := make([]Application, 0)
	for _, a := range w.apps {
		if a.AnnouncementID == announcementID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (w *testWorld) ListApplicationsByApplicant(ctx context.Context, applicantUserID string) ([]Application, error) {
	out := make([]Application, 0)
	for _, a := range w.apps {
		if a.ApplicantUserID == applicantUserID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (w *testWorld) GetMigration(ctx context.Context, id string) (MigrationRequest, error) {
	m, ok := w.migs[id]
	if !ok {
		return MigrationRequest{}, apperr.ErrNotFound
	}
	return m, nil
}

func (w *testWorld) FindMigration(ctx context.Context, announcementID, candidateUserID string) (MigrationRequest, error) {
	for _, m := range w.migs {
		if m.AnnouncementID == announcementID && m.CandidateUserID == candidateUserID {
			return m, nil
		}
	}
	return MigrationRequest{}, apperr.ErrNotFound
}

func (w *testWorld) ListMigrations(ctx context.Context, status MigrationStatus) ([]MigrationRequest, error) {
	out := make([]MigrationRequest, 0)
	for _, m := range w.migs {
		if status == "" || m.Status == status {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (w *testWorld) ListMigrationsByAnnouncement(ctx context.Context, announcementID string) ([]MigrationRequest, error) {
	out := make([]MigrationRequest, 0)
	for _, m := range w.migs {
		if m.AnnouncementID == announcementID {
			out = append(out, m)
		}
	}
	return out, nil
}

// Commit valida todas las versiones antes de escribir nada.
func (w *testWorld) Commit(ctx context.Context, cs Changeset) (Changeset, error) {
	w.commits++
	if w.beforeCommit != nil {
		w.beforeCommit()
	}

	check := func(found bool, stored, observed int) error {
		if !found {
			return apperr.ErrNotFound
		}
		if stored != observed {
			return apperr.ErrVersionConflict
		}
		return nil
	}
	if a := cs.Application; a != nil {
		cur, ok := w.apps[a.ID]
		if err := check(ok, cur.Version, a.Version); err != nil {
			return Changeset{}, err
		}
	}
	if m := cs.Migration; m != nil && m.Version != 0 {
		cur, ok := w.migs[m.ID]
		if err := check(ok, cur.Version, m.Version); err != nil {
			return Changeset{}, err
		}
	}
	if a := cs.Announcement; a != nil {
		cur, ok := w.anns[a.ID]
		if err := check(ok, cur.Version, a.Version); err != nil {
			return Changeset{}, err
		}
	}
	if a := cs.Animal; a != nil {
		cur, ok := w.animals[a.ID]
		if err := check(ok, cur.Version, a.Version); err != nil {
			return Changeset{}, err
		}
	}

	var out Changeset
	if cs.Application != nil {
		a := *cs.Application
		a.Version++
		w.apps[a.ID] = a
		out.Application = &a
	}
	if cs.Migration != nil {
		m := *cs.Migration
		if m.Version == 0 {
			if existing, err := w.FindMigration(ctx, m.AnnouncementID, m.CandidateUserID); err == nil {
				m = existing
			} else {
				m.Version = 1
				w.migs[m.ID] = m
			}
		} else {
			m.Version++
			w.migs[m.ID] = m
		}
		out.Migration = &m
	}
	if cs.Announcement != nil {
		a := *cs.Announcement
		a.Version++
		w.anns[a.ID] = a
		out.Announcement = &a
	}
	if cs.Animal != nil {
		a := *cs.Animal
		a.Version++
		w.animals[a.ID] = a
		out.Animal = &a
	}
	return out, nil
}

type annReader struct{ w *testWorld }

func (r annReader) GetByID(ctx context.Context, id string) (announcements.Announcement, error) {
	a, ok := r.w.anns[id]
	if !ok {
		return announcements.Announcement{}, announcements.ErrNotFound
	}
	return a, nil
}

type animalReader struct{ w *testWorld }

func (r animalReader) GetByID(ctx context.Context, id string) (animals.Animal, error) {
	a, ok := r.w.animals[id]
	if !ok {
		return animals.Animal{}, animals.ErrNotFound
	}
	return a, nil
}

type testUsers map[string]users.User

func (u testUsers) GetByID(ctx context.Context, id string) (users.User, error) {
	v, ok := u[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return v, nil
}

type testQueue struct{ msgs []notifier.Message }

func (q *testQueue) Enqueue(m notifier.Message) bool {
	q.msgs = append(q.msgs, m)
	return true
}

func (q *testQueue) kinds() []string {
	out := make([]string, 0, len(q.msgs))
	for _, m := range q.msgs {
		out = append(out, m.Kind)
	}
	return out
}

var (
	author = Actor{UserID: "U1"}
	admin  = Actor{UserID: "root", IsAdmin: true}
)

// setup arma el escenario base: animal A de U1 y anuncio N de adopción aceptado.
func setup(t *testing.T) (*Service, *testWorld, *testQueue) {
	t.Helper()
	w := newTestWorld()
	w.animals["A"] = animals.Animal{ID: "A", OwnerUserID: "U1", Name: "Milo", Species: animals.SpeciesDog, Version: 1}
	w.anns["N"] = announcements.Announcement{
		ID:               "N",
		Kind:             announcements.KindAdoption,
		Title:            "Milo busca casa",
		AnimalID:         "A",
		AuthorUserID:     "U1",
		ModerationStatus: announcements.ModerationAccepted,
		AdoptionStatus:   announcements.AdoptionOpen,
		Version:          1,
	}

	people := testUsers{
		"U1": {ID: "U1", Email: "u1@example.com"},
		"U2": {ID: "U2", Email: "u2@example.com"},
	}
	q := &testQueue{}
	svc := NewService(w, annReader{w}, animalReader{w}, people, q)

	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return svc, w, q
}

// -------------------------
// Tests
// -------------------------

func TestAdoption_FullScenario(t *testing.T) {
	svc, w, q := setup(t)
	ctx := context.Background()

	p1, err := svc.Apply(ctx, "N", "U2", "tengo jardín")
	require.NoError(t, err)
	assert.Equal(t, ApplicationPending, p1.Status)
	assert.Equal(t, "A", p1.AnimalID)

	res, err := svc.Accept(ctx, p1.ID, author, p1.Version)
	require.NoError(t, err)
	assert.Equal(t, ApplicationSelected, res.Application.Status)
	assert.Equal(t, MigrationAwaitingAdmin, res.Migration.Status)
	assert.Equal(t, "U2", res.Migration.CandidateUserID)
	assert.Equal(t, announcements.AdoptionAwaitingAdmin, w.anns["N"].AdoptionStatus)

	out, err := svc.Approve(ctx, res.Migration.ID, admin, res.Migration.Version)
	require.NoError(t, err)
	assert.Equal(t, ApproveResult{AnimalID: "A", NewOwner: "U2"}, out)

	a := w.animals["A"]
	assert.Equal(t, "U2", a.OwnerUserID)
	require.Len(t, a.History, 1)
	assert.Equal(t, "U1", a.History[0].PreviousOwnerUserID)
	assert.Equal(t, announcements.AdoptionClosed, w.anns["N"].AdoptionStatus)

	m := w.migs[res.Migration.ID]
	assert.Equal(t, MigrationCompleted, m.Status)
	assert.Equal(t, "U1", m.PreviousOwnerUserID)
	require.NotNil(t, m.CompletedAt)
	assert.Equal(t, ApplicationApproved, w.apps[p1.ID].Status)

	assert.Equal(t, []string{"application_received", "application_accepted", "adoption_completed"}, q.kinds())
}

func TestApply_Guards(t *testing.T) {
	svc, w, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Apply(ctx, "missing", "U2", "")
	assert.ErrorIs(t, err, ErrAnnouncementNotFound)

	_, err = svc.Apply(ctx, "N", "U1", "")
	assert.ErrorIs(t, err, ErrSelfApplication)

	w.anns["L"] = announcements.Announcement{ID: "L", Kind: announcements.KindLost, AuthorUserID: "U1", ModerationStatus: announcements.ModerationAccepted}
	_, err = svc.Apply(ctx, "L", "U2", "")
	assert.ErrorIs(t, err, ErrNotAdoption)

	pending := w.anns["N"]
	pending.ID = "P"
	pending.ModerationStatus = announcements.ModerationPending
	w.anns["P"] = pending
	_, err = svc.Apply(ctx, "P", "U2", "")
	assert.ErrorIs(t, err, ErrNotPublished)

	closed := w.anns["N"]
	closed.ID = "C"
	closed.AdoptionStatus = announcements.AdoptionClosed
	w.anns["C"] = closed
	_, err = svc.Apply(ctx, "C", "U2", "")
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestApply_DuplicateUntilRejected(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	p1, err := svc.Apply(ctx, "N", "U2", "")
	require.NoError(t, err)

	_, err = svc.Apply(ctx, "N", "U2", "otra vez")
	assert.ErrorIs(t, err, ErrDuplicateApplication)

	// Seleccionada también bloquea.
	_, err = svc.Accept(ctx, p1.ID, author, 0)
	require.NoError(t, err)
	_, err = svc.Apply(ctx, "N", "U2", "otra vez")
	assert.ErrorIs(t, err, ErrDuplicateApplication)

	_, err = svc.RejectApplication(ctx, p1.ID, author, 0)
	require.NoError(t, err)

	p2, err := svc.Apply(ctx, "N", "U2", "segunda")
	require.NoError(t, err)
	assert.NotEqual(t, p1.ID, p2.ID)
}

func TestAccept_ForbiddenNeverTouchesMigrations(t *testing.T) {
	svc, w, _ := setup(t)
	ctx := context.Background()

	p1, err := svc.Apply(ctx, "N", "U2", "")
	require.NoError(t, err)

	for _, actor := range []Actor{{UserID: "U2"}, {UserID: "U3"}, {UserID: "root", IsAdmin: true}} {
		_, err := svc.Accept(ctx, p1.ID, actor, 0)
		assert.ErrorIs(t, err, ErrForbidden)
	}
	assert.Empty(t, w.migs)
	assert.Zero(t, w.commits)
	assert.Equal(t, ApplicationPending, w.apps[p1.ID].Status)
	assert.Equal(t, announcements.AdoptionOpen, w.anns["N"].AdoptionStatus)
}

func TestAccept_Idempotent(t *testing.T) {
	svc, w, _ := setup(t)
	ctx := context.Background()

	p1, err := svc.Apply(ctx, "N", "U2", "")
	require.NoError(t, err)

	first, err := svc.Accept(ctx, p1.ID, author, 0)
	require.NoError(t, err)
	commits := w.commits

	second, err := svc.Accept(ctx, p1.ID, author, 0)
	require.NoError(t, err)

	assert.Equal(t, first.Migration.ID, second.Migration.ID)
	assert.Len(t, w.migs, 1)
	assert.Equal(t, commits, w.commits, "second accept should not write")

	// If-Match viejo => conflicto.
	_, err = svc.Accept(ctx, p1.ID, author, 1)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestAccept_UpsertReturnsExistingOnRace(t *testing.T) {
	svc, w, _ := setup(t)
	ctx := context.Background()

	p1, err := svc.Apply(ctx, "N", "U2", "")
	require.NoError(t, err)

	// Otra request creó la solicitud entre la lectura y el commit.
	w.beforeCommit = func() {
		w.beforeCommit = nil
		w.migs["other"] = MigrationRequest{ID: "other", AnnouncementID: "N", CandidateUserID: "U2", ApplicationID: p1.ID, Status: MigrationAwaitingAdmin, Version: 1}
	}
	res, err := svc.Accept(ctx, p1.ID, author, 0)
	require.NoError(t, err)
	assert.Equal(t, "other", res.Migration.ID)
	assert.Len(t, w.migs, 1)
}

func TestApprove_TwiceIsConflictAndKeepsState(t *testing.T) {
	svc, w, _ := setup(t)
	ctx := context.Background()

	p1, _ := svc.Apply(ctx, "N", "U2", "")
	res, err := svc.Accept(ctx, p1.ID, author, 0)
	require.NoError(t, err)
	_, err = svc.Approve(ctx, res.Migration.ID, admin, 0)
	require.NoError(t, err)

	animalAfter := w.animals["A"]
	annAfter := w.anns["N"]

	_, err = svc.Approve(ctx, res.Migration.ID, admin, 0)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
	assert.Equal(t, animalAfter, w.animals["A"])
	assert.Equal(t, annAfter, w.anns["N"])
}

func TestApprove_AllOrNothingOnConcurrentChange(t *testing.T) {
	svc, w, _ := setup(t)
	ctx := context.Background()

	p1, _ := svc.Apply(ctx, "N", "U2", "")
	res, err := svc.Accept(ctx, p1.ID, author, 0)
	require.NoError(t, err)

	// El dueño edita el animal justo antes del commit.
	w.beforeCommit = func() {
		a := w.animals["A"]
		a.Version++
		w.animals["A"] = a
	}
	_, err = svc.Approve(ctx, res.Migration.ID, admin, 0)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	a := w.animals["A"]
	assert.Equal(t, "U1", a.OwnerUserID)
	assert.Empty(t, a.History)
	assert.Equal(t, announcements.AdoptionAwaitingAdmin, w.anns["N"].AdoptionStatus)
	assert.Equal(t, MigrationAwaitingAdmin, w.migs[res.Migration.ID].Status)
	assert.Equal(t, ApplicationSelected, w.apps[p1.ID].Status)
}

func TestApprove_ClosedAnnouncementAndGuards(t *testing.T) {
	svc, w, _ := setup(t)
	ctx := context.Background()

	p2, _ := svc.Apply(ctx, "N", "U2", "")
	p3, _ := svc.Apply(ctx, "N", "U3", "")
	r2, err := svc.Accept(ctx, p2.ID, author, 0)
	require.NoError(t, err)
	r3, err := svc.Accept(ctx, p3.ID, author, 0)
	require.NoError(t, err)
	require.NotEqual(t, r2.Migration.ID, r3.Migration.ID)

	_, err = svc.Approve(ctx, r2.Migration.ID, Actor{UserID: "U1"}, 0)
	assert.ErrorIs(t, err, ErrAdminOnly)

	_, err = svc.Approve(ctx, r2.Migration.ID, admin, 0)
	require.NoError(t, err)

	_, err = svc.Approve(ctx, r3.Migration.ID, admin, 0)
	assert.ErrorIs(t, err, ErrAnnouncementClosed)
	assert.Equal(t, "U2", w.animals["A"].OwnerUserID)

	_, err = svc.Approve(ctx, "ghost", admin, 0)
	assert.ErrorIs(t, err, ErrMigrationNotFound)
}

func TestApprove_SecondListingAfterTransfer(t *testing.T) {
	svc, w, _ := setup(t)
	ctx := context.Background()

	// Segundo anuncio de U1 sobre el mismo animal.
	n2 := w.anns["N"]
	n2.ID = "N2"
	w.anns["N2"] = n2

	p2, err := svc.Apply(ctx, "N", "U2", "")
	require.NoError(t, err)
	r2, err := svc.Accept(ctx, p2.ID, author, 0)
	require.NoError(t, err)

	p3, err := svc.Apply(ctx, "N2", "U3", "")
	require.NoError(t, err)
	r3, err := svc.Accept(ctx, p3.ID, author, 0)
	require.NoError(t, err)

	_, err = svc.Approve(ctx, r2.Migration.ID, admin, 0)
	require.NoError(t, err)

	commits := w.commits
	_, err = svc.Approve(ctx, r3.Migration.ID, admin, 0)
	assert.ErrorIs(t, err, ErrOwnerChanged)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
	assert.Equal(t, commits, w.commits)

	a := w.animals["A"]
	assert.Equal(t, "U2", a.OwnerUserID)
	require.Len(t, a.History, 1)
	assert.Equal(t, "U1", a.History[0].PreviousOwnerUserID)
	assert.Equal(t, MigrationAwaitingAdmin, w.migs[r3.Migration.ID].Status)
	assert.Equal(t, announcements.AdoptionAwaitingAdmin, w.anns["N2"].AdoptionStatus)
}

func TestApprove_NoLinkedAnimal(t *testing.T) {
	svc, w, _ := setup(t)
	ctx := context.Background()

	p1, _ := svc.Apply(ctx, "N", "U2", "")
	res, err := svc.Accept(ctx, p1.ID, author, 0)
	require.NoError(t, err)

	delete(w.animals, "A")
	_, err = svc.Approve(ctx, res.Migration.ID, admin, 0)
	assert.ErrorIs(t, err, ErrNoLinkedAnimal)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
}

func TestRejectMigration_ReopensAnnouncement(t *testing.T) {
	svc, w, _ := setup(t)
	ctx := context.Background()

	p1, _ := svc.Apply(ctx, "N", "U2", "")
	res, err := svc.Accept(ctx, p1.ID, author, 0)
	require.NoError(t, err)

	_, err = svc.RejectMigration(ctx, res.Migration.ID, author, 0)
	assert.ErrorIs(t, err, ErrAdminOnly)

	m, err := svc.RejectMigration(ctx, res.Migration.ID, admin, 0)
	require.NoError(t, err)
	assert.Equal(t, MigrationRejected, m.Status)
	assert.Equal(t, ApplicationRejected, w.apps[p1.ID].Status)
	assert.Equal(t, announcements.AdoptionOpen, w.anns["N"].AdoptionStatus)

	_, err = svc.RejectMigration(ctx, res.Migration.ID, admin, 0)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	// El candidato vuelve a postular y el autor lo acepta: se reabre la misma solicitud.
	p2, err := svc.Apply(ctx, "N", "U2", "")
	require.NoError(t, err)
	again, err := svc.Accept(ctx, p2.ID, author, 0)
	require.NoError(t, err)
	assert.Equal(t, res.Migration.ID, again.Migration.ID)
	assert.Equal(t, MigrationAwaitingAdmin, again.Migration.Status)
	assert.Equal(t, p2.ID, again.Migration.ApplicationID)
}

func TestRejectApplication_KeepsAwaitingWhenOthersPending(t *testing.T) {
	svc, w, _ := setup(t)
	ctx := context.Background()

	p2, _ := svc.Apply(ctx, "N", "U2", "")
	p3, _ := svc.Apply(ctx, "N", "U3", "")
	_, err := svc.Accept(ctx, p2.ID, author, 0)
	require.NoError(t, err)
	_, err = svc.Accept(ctx, p3.ID, author, 0)
	require.NoError(t, err)

	_, err = svc.RejectApplication(ctx, p2.ID, Actor{UserID: "U2"}, 0)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.RejectApplication(ctx, p2.ID, author, 0)
	require.NoError(t, err)
	assert.Equal(t, announcements.AdoptionAwaitingAdmin, w.anns["N"].AdoptionStatus)

	_, err = svc.RejectApplication(ctx, p3.ID, author, 0)
	require.NoError(t, err)
	assert.Equal(t, announcements.AdoptionOpen, w.anns["N"].AdoptionStatus)

	_, err = svc.RejectApplication(ctx, p3.ID, author, 0)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestListMigrations_Populated(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	p1, _ := svc.Apply(ctx, "N", "U2", "")
	_, err := svc.Accept(ctx, p1.ID, author, 0)
	require.NoError(t, err)

	_, err = svc.ListMigrations(ctx, "", author)
	assert.ErrorIs(t, err, ErrAdminOnly)

	_, err = svc.ListMigrations(ctx, "done", admin)
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))

	items, err := svc.ListMigrations(ctx, "awaiting_admin", admin)
	require.NoError(t, err)
	require.Len(t, items, 1)
	p := items[0]
	require.NotNil(t, p.Announcement)
	require.NotNil(t, p.Animal)
	require.NotNil(t, p.Candidate)
	require.NotNil(t, p.PreviousOwner)
	assert.Equal(t, "u2@example.com", p.Candidate.Email)
	assert.Equal(t, "U1", p.PreviousOwner.ID)

	none, err := svc.ListMigrations(ctx, "completed", admin)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListForAnnouncement_AuthorOnly(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	_, _ = svc.Apply(ctx, "N", "U2", "")

	_, err := svc.ListForAnnouncement(ctx, "N", Actor{UserID: "U2"})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.ListForAnnouncement(ctx, "nope", author)
	assert.ErrorIs(t, err, ErrAnnouncementNotFound)

	items, err := svc.ListForAnnouncement(ctx, "N", author)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	mine, err := svc.ListMine(ctx, "U2")
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestTransitionTables(t *testing.T) {
	assert.True(t, CanTransitionApplication(ApplicationPending, ApplicationSelected))
	assert.True(t, CanTransitionApplication(ApplicationSelected, ApplicationSelected))
	assert.False(t, CanTransitionApplication(ApplicationPending, ApplicationApproved))
	assert.False(t, CanTransitionApplication(ApplicationApproved, ApplicationRejected))
	assert.False(t, CanTransitionApplication(ApplicationRejected, ApplicationSelected))

	assert.True(t, CanTransitionMigration(MigrationAwaitingAdmin, MigrationCompleted))
	assert.True(t, CanTransitionMigration(MigrationApproved, MigrationCompleted))
	assert.False(t, CanTransitionMigration(MigrationCompleted, MigrationAwaitingAdmin))

	_, err := TransitionMigration(MigrationRequest{Status: MigrationCompleted}, MigrationRejected)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

type fullQueue struct{}

func (fullQueue) Enqueue(notifier.Message) bool { return false }

func TestApply_DroppedNotificationDoesNotFailOrLog(t *testing.T) {
	svc, _, _ := setup(t)
	svc.queue = fullQueue{}

	core, logs := observer.New(zapcore.DebugLevel)
	ctx := logger.WithContext(context.Background(), logger.NewFromCore(core))

	_, err := svc.Apply(ctx, "N", "U2", "")
	require.NoError(t, err)
	// El descarte lo registra la cola, no el servicio.
	assert.Equal(t, 0, logs.Len())
}
