package dashboard

import (
	"context"
	"sort"
	"time"
)

const (
	months      = 12
	topProducts = 5
)

type Repository interface {
	// Stats agrega todo; limit acota TopProducts.
	Stats(ctx context.Context, since time.Time, limit int) (Stats, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Overview arma la serie de los últimos 12 meses (con ceros) y el top 5.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	now := s.now().UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	st, err := s.repo.Stats(ctx, first, topProducts)
	if err != nil {
		return Overview{}, err
	}

	series := make([]MonthCount, 0, months)
	for i := 0; i < months; i++ {
		key := first.AddDate(0, i, 0).Format("2006-01")
		series = append(series, MonthCount{Month: key, Count: st.AdoptionsByMonth[key]})
	}

	top := append([]ProductSales(nil), st.TopProducts...)
	sort.SliceStable(top, func(i, j int) bool {
		if top[i].Units != top[j].Units {
			return top[i].Units > top[j].Units
		}
		return top[i].Name < top[j].Name
	})
	if len(top) > topProducts {
		top = top[:topProducts]
	}

	return Overview{
		AnnouncementsByKind:       nonNil(st.AnnouncementsByKind),
		AnnouncementsByModeration: nonNil(st.AnnouncementsByModeration),
		AdoptionsCompleted:        st.AdoptionsCompleted,
		AdoptionsByMonth:          series,
		AnimalsRegistered:         st.AnimalsRegistered,
		OpenMigrationRequests:     st.OpenMigrationRequests,
		Orders:                    st.Orders,
		RevenueCents:              st.RevenueCents,
		TopProducts:               top,
		GeneratedAt:               now,
	}, nil
}

func nonNil(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}
