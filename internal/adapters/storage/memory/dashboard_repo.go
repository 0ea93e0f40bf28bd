package memory

import (
	"context"
	"sort"
	"time"

	"adoptipet/internal/domain/adoption"
	"adoptipet/internal/domain/dashboard"
	"adoptipet/internal/domain/shop"
)

// DashboardRepo calcula las estadísticas recorriendo los mapas.
type DashboardRepo struct{ s *Store }

func (r *DashboardRepo) Stats(ctx context.Context, since time.Time, limit int) (dashboard.Stats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	st := dashboard.Stats{
		AnnouncementsByKind:       map[string]int{},
		AnnouncementsByModeration: map[string]int{},
		AdoptionsByMonth:          map[string]int{},
		AnimalsRegistered:         len(r.s.animals),
		TopProducts:               []dashboard.ProductSales{},
	}

	for _, a := range r.s.announcements {
		st.AnnouncementsByKind[string(a.Kind)]++
		st.AnnouncementsByModeration[string(a.ModerationStatus)]++
	}

	for _, m := range r.s.migrations {
		switch m.Status {
		case adoption.MigrationAwaitingAdmin:
			st.OpenMigrationRequests++
		case adoption.MigrationCompleted:
			st.AdoptionsCompleted++
			if m.CompletedAt != nil && !m.CompletedAt.Before(since) {
				st.AdoptionsByMonth[m.CompletedAt.UTC().Format("2006-01")]++
			}
		}
	}

	sales := map[string]*dashboard.ProductSales{}
	for _, o := range r.s.orders {
		st.Orders++
		if o.Status == shop.OrderCancelled {
			continue
		}
		st.RevenueCents += o.TotalCents
		for _, l := range o.Items {
			ps, ok := sales[l.ProductID]
			if !ok {
				ps = &dashboard.ProductSales{ProductID: l.ProductID, Name: l.Name}
				sales[l.ProductID] = ps
			}
			ps.Units += l.Quantity
			ps.RevenueCents += l.UnitPriceCents * int64(l.Quantity)
		}
	}
	for _, ps := range sales {
		st.TopProducts = append(st.TopProducts, *ps)
	}
	sort.Slice(st.TopProducts, func(i, j int) bool {
		if st.TopProducts[i].Units == st.TopProducts[j].Units {
			return st.TopProducts[i].Name < st.TopProducts[j].Name
		}
		return st.TopProducts[i].Units > st.TopProducts[j].Units
	})
	if limit > 0 && len(st.TopProducts) > limit {
		st.TopProducts = st.TopProducts[:limit]
	}
	return st, nil
}

var _ dashboard.Repository = (*DashboardRepo)(nil)
