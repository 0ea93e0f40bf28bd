package dashboard

import "time"

// Stats es lo que calcula el storage (GROUP BY en Postgres, loops en memoria).
type Stats struct {
	AnnouncementsByKind       map[string]int
	AnnouncementsByModeration map[string]int
	AdoptionsCompleted        int
	// AdoptionsByMonth: clave "YYYY-MM" (UTC) de CompletedAt, sólo desde `since`.
	AdoptionsByMonth      map[string]int
	AnimalsRegistered     int
	OpenMigrationRequests int
	Orders                int
	// RevenueCents y TopProducts excluyen órdenes canceladas.
	RevenueCents int64
	TopProducts  []ProductSales
}

type ProductSales struct {
	ProductID    string `json:"product_id"`
	Name         string `json:"name"`
	Units        int    `json:"units"`
	RevenueCents int64  `json:"revenue_cents"`
}

type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// Overview es la respuesta del dashboard admin.
type Overview struct {
	AnnouncementsByKind       map[string]int `json:"announcements_by_kind"`
	AnnouncementsByModeration map[string]int `json:"announcements_by_moderation"`
	AdoptionsCompleted        int            `json:"adoptions_completed"`
	AdoptionsByMonth          []MonthCount   `json:"adoptions_by_month"`
	AnimalsRegistered         int            `json:"animals_registered"`
	OpenMigrationRequests     int            `json:"open_migration_requests"`
	Orders                    int            `json:"orders"`
	RevenueCents              int64          `json:"revenue_cents"`
	TopProducts               []ProductSales `json:"top_products"`
	GeneratedAt               time.Time      `json:"generated_at"`
}
