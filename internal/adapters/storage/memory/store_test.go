package memory

import (
	"context"
	"testing"
	"time"

	"adoptipet/internal/domain/adoption"
	"adoptipet/internal/domain/animals"
	"adoptipet/internal/domain/announcements"
	"adoptipet/internal/domain/shop"
	"adoptipet/internal/platform/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func seedAdoption(t *testing.T, s *Store) (animals.Animal, announcements.Announcement, adoption.Application) {
	t.Helper()
	ctx := context.Background()

	a := animals.Animal{ID: "A", OwnerUserID: "u1", Name: "Milo", Species: animals.SpeciesDog, Version: 1, CreatedAt: t0}
	require.NoError(t, s.Animals().Create(ctx, a))

	n := announcements.Announcement{
		ID: "N", Kind: announcements.KindAdoption, AnimalID: "A", AuthorUserID: "u1",
		ModerationStatus: announcements.ModerationAccepted, AdoptionStatus: announcements.AdoptionOpen,
		Version: 1, CreatedAt: t0,
	}
	require.NoError(t, s.Announcements().Create(ctx, n))

	app := adoption.Application{ID: "P", AnnouncementID: "N", AnimalID: "A", ApplicantUserID: "u2", Status: adoption.ApplicationPending, Version: 1, CreatedAt: t0}
	require.NoError(t, s.Adoption().CreateApplication(ctx, app))
	return a, n, app
}

func TestAdoptionCommit_AllOrNothing(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, n, app := seedAdoption(t, s)

	// El anuncio cambia por fuera: el commit debe fallar sin tocar la candidatura.
	other := n
	other.Title = "edited"
	require.NoError(t, s.Announcements().Update(ctx, other))

	selected := app
	selected.Status = adoption.ApplicationSelected
	n.AdoptionStatus = announcements.AdoptionAwaitingAdmin

	_, err := s.Adoption().Commit(ctx, adoption.Changeset{Application: &selected, Announcement: &n})
	assert.ErrorIs(t, err, apperr.ErrVersionConflict)

	stored, err := s.Adoption().GetApplication(ctx, "P")
	require.NoError(t, err)
	assert.Equal(t, adoption.ApplicationPending, stored.Status)
	assert.Equal(t, 1, stored.Version)
}

func TestAdoptionCommit_MigrationUpsertReturnsExisting(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedAdoption(t, s)

	first := adoption.MigrationRequest{ID: "M1", AnnouncementID: "N", CandidateUserID: "u2", Status: adoption.MigrationAwaitingAdmin, CreatedAt: t0}
	out, err := s.Adoption().Commit(ctx, adoption.Changeset{Migration: &first})
	require.NoError(t, err)
	require.NotNil(t, out.Migration)
	assert.Equal(t, 1, out.Migration.Version)

	second := first
	second.ID = "M2"
	out, err = s.Adoption().Commit(ctx, adoption.Changeset{Migration: &second})
	require.NoError(t, err)
	assert.Equal(t, "M1", out.Migration.ID)

	all, err := s.Adoption().ListMigrations(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = s.Adoption().FindMigration(ctx, "N", "u3")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAnimals_ReturnedCopiesDoNotAlias(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedAdoption(t, s)

	a, err := s.Animals().GetByID(ctx, "A")
	require.NoError(t, err)
	a.History = append(a.History, animals.OwnershipEntry{PreviousOwnerUserID: "x"})

	again, err := s.Animals().GetByID(ctx, "A")
	require.NoError(t, err)
	assert.Empty(t, again.History)

	stale := again
	require.NoError(t, s.Animals().Update(ctx, again))
	assert.ErrorIs(t, s.Animals().Update(ctx, stale), apperr.ErrVersionConflict)
}

func TestCommitCheckout_StaleProductLeavesEverythingUntouched(t *testing.T) {
	s := New()
	ctx := context.Background()
	repo := s.Shop()

	p := shop.Product{ID: "p1", Name: "Collar", PriceCents: 1500, Stock: 3, Active: true, Version: 1}
	require.NoError(t, repo.CreateProduct(ctx, p))
	require.NoError(t, repo.SaveCart(ctx, shop.Cart{UserID: "u1", Items: []shop.CartItem{{ProductID: "p1", Quantity: 2}}}))

	// Otro checkout se llevó stock antes.
	bumped := p
	bumped.Stock = 1
	require.NoError(t, repo.UpdateProduct(ctx, bumped))

	p.Stock = 1
	o := shop.Order{ID: "o1", UserID: "u1", Items: []shop.OrderLine{{ProductID: "p1", Quantity: 2, UnitPriceCents: 1500}}, TotalCents: 3000, Status: shop.OrderPlaced, Version: 1, CreatedAt: t0}
	assert.ErrorIs(t, repo.CommitCheckout(ctx, o, []shop.Product{p}), apperr.ErrVersionConflict)

	_, err := repo.GetOrder(ctx, "o1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	cart, err := repo.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)

	fresh, err := repo.GetProduct(ctx, "p1")
	require.NoError(t, err)
	fresh.Stock = 0
	require.NoError(t, repo.CommitCheckout(ctx, o, []shop.Product{fresh}))
	cart, err = repo.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestDashboardStats(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedAdoption(t, s)

	done := t0.Add(48 * time.Hour)
	m := adoption.MigrationRequest{ID: "M1", AnnouncementID: "N", CandidateUserID: "u2", Status: adoption.MigrationCompleted, CompletedAt: &done, CreatedAt: t0}
	_, err := s.Adoption().Commit(ctx, adoption.Changeset{Migration: &m})
	require.NoError(t, err)

	repo := s.Shop()
	require.NoError(t, repo.CommitCheckout(ctx, shop.Order{ID: "o1", UserID: "u1", Status: shop.OrderPlaced, TotalCents: 2000,
		Items: []shop.OrderLine{{ProductID: "p1", Name: "Collar", UnitPriceCents: 1000, Quantity: 2}}}, nil))
	require.NoError(t, repo.CommitCheckout(ctx, shop.Order{ID: "o2", UserID: "u1", Status: shop.OrderCancelled, TotalCents: 9000,
		Items: []shop.OrderLine{{ProductID: "p2", Name: "Bed", UnitPriceCents: 9000, Quantity: 1}}}, nil))

	st, err := s.Dashboard().Stats(ctx, t0, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, st.AnnouncementsByKind["adoption"])
	assert.Equal(t, 1, st.AdoptionsCompleted)
	assert.Equal(t, 1, st.AdoptionsByMonth["2026-03"])
	assert.Equal(t, 1, st.AnimalsRegistered)
	assert.Equal(t, 2, st.Orders)
	assert.Equal(t, int64(2000), st.RevenueCents)
	require.Len(t, st.TopProducts, 1)
	assert.Equal(t, "Collar", st.TopProducts[0].Name)
}

func TestCreateApplication_RejectsSecondActivePair(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, _, app := seedAdoption(t, s)

	dup := app
	dup.ID = "P2"
	err := s.Adoption().CreateApplication(ctx, dup)
	assert.ErrorIs(t, err, adoption.ErrDuplicateApplication)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	// Con la anterior rechazada, la nueva entra.
	rejected := app
	rejected.Status = adoption.ApplicationRejected
	_, err = s.Adoption().Commit(ctx, adoption.Changeset{Application: &rejected})
	require.NoError(t, err)
	require.NoError(t, s.Adoption().CreateApplication(ctx, dup))

	apps, err := s.Adoption().ListApplicationsByAnnouncement(ctx, "N")
	require.NoError(t, err)
	assert.Len(t, apps, 2)
}
