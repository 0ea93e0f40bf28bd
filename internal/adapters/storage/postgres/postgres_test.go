package postgres

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"adoptipet/internal/domain/adoption"
	"adoptipet/internal/domain/animals"
	"adoptipet/internal/domain/announcements"
	"adoptipet/internal/domain/shop"
	"adoptipet/internal/platform/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB levanta Postgres en un contenedor y aplica las migraciones.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("skipping integration test: TEST_INTEGRATION not set")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		tcpostgres.WithDatabase("adoptipet_test"),
		tcpostgres.WithUsername("adoptipet"),
		tcpostgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	_, err = Migrate(dsn)
	require.NoError(t, err)

	db, err := Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@h:5432/db", migrateURL("postgres://u:p@h:5432/db"))
	assert.Equal(t, "pgx5://u:p@h/db", migrateURL("postgresql://u:p@h/db"))
	assert.Equal(t, "pgx5://h/db", migrateURL("pgx5://h/db"))
}

func TestIntegration_AdoptionCommit(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	animalsRepo := NewAnimalsRepo(db)
	annRepo := NewAnnouncementsRepo(db)
	store := NewAdoptionStore(db)

	a := animals.Animal{ID: "A", OwnerUserID: "u1", Name: "Milo", Species: animals.SpeciesDog, Sex: animals.SexUnknown, Version: 1, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, animalsRepo.Create(ctx, a))

	n := announcements.Announcement{
		ID: "N", Kind: announcements.KindAdoption, Title: "Milo", ImageKey: "images/x.jpg", AnimalID: "A", AuthorUserID: "u1",
		ModerationStatus: announcements.ModerationAccepted, AdoptionStatus: announcements.AdoptionOpen,
		Version: 1, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, annRepo.Create(ctx, n))

	app := adoption.Application{ID: "P", AnnouncementID: "N", AnimalID: "A", ApplicantUserID: "u2", Status: adoption.ApplicationPending, Version: 1, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.CreateApplication(ctx, app))

	dup := app
	dup.ID = "P2"
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(store.CreateApplication(ctx, dup)))

	selected := app
	selected.Status = adoption.ApplicationSelected
	openAnn := n
	openAnn.AdoptionStatus = announcements.AdoptionAwaitingAdmin
	m := adoption.MigrationRequest{ID: "M", AnnouncementID: "N", AnimalID: "A", ApplicationID: "P", CandidateUserID: "u2", Status: adoption.MigrationAwaitingAdmin, CreatedAt: now, UpdatedAt: now}

	out, err := store.Commit(ctx, adoption.Changeset{Application: &selected, Announcement: &openAnn, Migration: &m})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Application.Version)
	assert.Equal(t, 1, out.Migration.Version)

	// Segundo insert del mismo par: devuelve la existente.
	again := m
	again.ID = "M2"
	out, err = store.Commit(ctx, adoption.Changeset{Migration: &again})
	require.NoError(t, err)
	assert.Equal(t, "M", out.Migration.ID)

	// Versión vieja del anuncio: rollback completo.
	stale := n
	stale.AdoptionStatus = announcements.AdoptionClosed
	approved := *out.Migration
	approved.Status = adoption.MigrationCompleted
	_, err = store.Commit(ctx, adoption.Changeset{Migration: &approved, Announcement: &stale})
	assert.ErrorIs(t, err, apperr.ErrVersionConflict)

	got, err := store.GetMigration(ctx, "M")
	require.NoError(t, err)
	assert.Equal(t, adoption.MigrationAwaitingAdmin, got.Status)
}

func TestIntegration_CheckoutAndCareDue(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	repo := NewShopRepo(db)
	p := shop.Product{ID: "p1", Name: "Collar", PriceCents: 1500, Stock: 3, Active: true, Version: 1, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.CreateProduct(ctx, p))
	require.NoError(t, repo.SaveCart(ctx, shop.Cart{UserID: "u1", Items: []shop.CartItem{{ProductID: "p1", Quantity: 2}}, UpdatedAt: now}))

	p.Stock = 1
	o := shop.Order{ID: "o1", UserID: "u1", Items: []shop.OrderLine{{ProductID: "p1", Name: "Collar", UnitPriceCents: 1500, Quantity: 2}}, TotalCents: 3000, Status: shop.OrderPlaced, Version: 1, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.CommitCheckout(ctx, o, []shop.Product{p}))

	cart, err := repo.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	stats, err := NewDashboardRepo(db).Stats(ctx, now.AddDate(0, -1, 0), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), stats.RevenueCents)
	require.Len(t, stats.TopProducts, 1)
	assert.Equal(t, 2, stats.TopProducts[0].Units)

	due := now.Add(48 * time.Hour)
	a := animals.Animal{ID: "A", OwnerUserID: "u1", Name: "Milo", Species: animals.SpeciesCat, Sex: animals.SexUnknown, Version: 1, CreatedAt: now, UpdatedAt: now,
		HealthRecords: []animals.HealthRecord{{ID: "h1", Kind: animals.HealthVaccination, Title: "rabies", PerformedAt: now, NextDueAt: &due, RecordedAt: now}}}
	animalsRepo := NewAnimalsRepo(db)
	require.NoError(t, animalsRepo.Create(ctx, a))

	list, err := animalsRepo.ListWithCareDue(ctx, now.Add(24*time.Hour), now.Add(72*time.Hour))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].HealthRecords, 1)
}
