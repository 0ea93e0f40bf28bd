package postgres

import (
	"context"
	"database/sql"
	"time"

	"adoptipet/internal/domain/dashboard"
)

type DashboardRepo struct {
	db *sql.DB
}

func NewDashboardRepo(db *sql.DB) *DashboardRepo {
	return &DashboardRepo{db: db}
}

func (r *DashboardRepo) Stats(ctx context.Context, since time.Time, limit int) (dashboard.Stats, error) {
	st := dashboard.Stats{
		AnnouncementsByKind:       map[string]int{},
		AnnouncementsByModeration: map[string]int{},
		AdoptionsByMonth:          map[string]int{},
		TopProducts:               []dashboard.ProductSales{},
	}

	if err := r.countBy(ctx, st.AnnouncementsByKind, `SELECT kind, count(*) FROM announcements GROUP BY kind`); err != nil {
		return dashboard.Stats{}, err
	}
	if err := r.countBy(ctx, st.AnnouncementsByModeration, `SELECT moderation_status, count(*) FROM announcements GROUP BY moderation_status`); err != nil {
		return dashboard.Stats{}, err
	}
	if err := r.countBy(ctx, st.AdoptionsByMonth, `
		SELECT to_char(completed_at AT TIME ZONE 'UTC', 'YYYY-MM'), count(*)
		FROM migration_requests
		WHERE status = 'completed' AND completed_at >= $1
		GROUP BY 1
	`, since); err != nil {
		return dashboard.Stats{}, err
	}

	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT count(*) FROM migration_requests WHERE status = 'completed'),
			(SELECT count(*) FROM migration_requests WHERE status = 'awaiting_admin'),
			(SELECT count(*) FROM animals),
			(SELECT count(*) FROM orders),
			(SELECT COALESCE(sum(total_cents), 0) FROM orders WHERE status <> 'cancelled')
	`).Scan(&st.AdoptionsCompleted, &st.OpenMigrationRequests, &st.AnimalsRegistered, &st.Orders, &st.RevenueCents)
	if err != nil {
		return dashboard.Stats{}, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			l->>'product_id',
			max(l->>'name'),
			sum((l->>'quantity')::int),
			sum((l->>'unit_price_cents')::bigint * (l->>'quantity')::int)
		FROM orders o, jsonb_array_elements(o.items) l
		WHERE o.status <> 'cancelled'
		GROUP BY 1
		ORDER BY 3 DESC, 2 ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return dashboard.Stats{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var ps dashboard.ProductSales
		if err := rows.Scan(&ps.ProductID, &ps.Name, &ps.Units, &ps.RevenueCents); err != nil {
			return dashboard.Stats{}, err
		}
		st.TopProducts = append(st.TopProducts, ps)
	}
	return st, rows.Err()
}

func (r *DashboardRepo) countBy(ctx context.Context, into map[string]int, query string, args ...any) error {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key string
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return err
		}
		into[key] = n
	}
	return rows.Err()
}

var _ dashboard.Repository = (*DashboardRepo)(nil)
