// Package memory implementa todos los repositorios en memoria.
//
// Un único Store con un solo mutex: así los commits del flujo de adopción y
// del checkout son atómicos igual que en Postgres. Se usa en dev (sin DSN) y
// en los tests del router.
package memory

import (
	"sync"

	"adoptipet/internal/domain/adoption"
	"adoptipet/internal/domain/animals"
	"adoptipet/internal/domain/announcements"
	"adoptipet/internal/domain/shop"
	"adoptipet/internal/domain/users"
	"adoptipet/internal/platform/apperr"
)

var ErrNotFound = apperr.ErrNotFound

type Store struct {
	mu sync.RWMutex

	users         map[string]users.User
	animals       map[string]animals.Animal
	announcements map[string]announcements.Announcement
	applications  map[string]adoption.Application
	migrations    map[string]adoption.MigrationRequest
	products      map[string]shop.Product
	carts         map[string]shop.Cart
	orders        map[string]shop.Order
}

func New() *Store {
	return &Store{
		users:         make(map[string]users.User),
		animals:       make(map[string]animals.Animal),
		announcements: make(map[string]announcements.Announcement),
		applications:  make(map[string]adoption.Application),
		migrations:    make(map[string]adoption.MigrationRequest),
		products:      make(map[string]shop.Product),
		carts:         make(map[string]shop.Cart),
		orders:        make(map[string]shop.Order),
	}
}

// Vistas tipadas por dominio sobre el mismo Store.

func (s *Store) Users() users.Repository { return &usersRepo{s: s} }
func (s *Store) Animals() animals.Repository { return &animalsRepo{s: s} }
func (s *Store) Announcements() announcements.Repository { return &announcementsRepo{s: s} }
func (s *Store) Adoption() adoption.Store { return &adoptionStore{s: s} }
func (s *Store) Shop() shop.Repository { return &shopRepo{s: s} }
func (s *Store) Dashboard() *DashboardRepo { return &DashboardRepo{s: s} }

// Los documentos con slices se copian al entrar y al salir para que nadie
// mute el estado guardado por aliasing.

func cloneAnimal(a animals.Animal) animals.Animal {
	a.HealthRecords = append([]animals.HealthRecord(nil), a.HealthRecords...)
	a.History = append([]animals.OwnershipEntry(nil), a.History...)
	if a.BirthDate != nil {
		bd := *a.BirthDate
		a.BirthDate = &bd
	}
	return a
}

func cloneOrder(o shop.Order) shop.Order {
	o.Items = append([]shop.OrderLine(nil), o.Items...)
	return o
}

func cloneCart(c shop.Cart) shop.Cart {
	c.Items = append([]shop.CartItem(nil), c.Items...)
	return c
}
