package shop

import (
	"context"
	"errors"
	"strings"
	"time"

	"adoptipet/internal/platform/apperr"
	"adoptipet/internal/platform/logger"
	"adoptipet/internal/ports/notifier"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ErrProductNotFound = apperr.New(apperr.KindNotFound, "product not found")
	ErrOrderNotFound   = apperr.New(apperr.KindNotFound, "order not found")

	ErrInvalidProduct = apperr.New(apperr.KindInvalidInput, "invalid product")
	ErrInvalidQty     = apperr.New(apperr.KindInvalidInput, "quantity must be zero or positive")
	ErrExceedsStock   = apperr.New(apperr.KindInvalidInput, "quantity exceeds available stock")
	ErrEmptyCart      = apperr.New(apperr.KindInvalidInput, "cart is empty")

	ErrProductUnavailable = apperr.New(apperr.KindConflict, "a product in the cart is no longer available")
	ErrInsufficientStock  = apperr.New(apperr.KindConflict, "not enough stock to complete the order")
)

var (
	checkoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adoptipet_shop_checkouts_total",
		Help: "Órdenes creadas.",
	})
	revenueCentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adoptipet_shop_revenue_cents_total",
		Help: "Facturación acumulada en centavos.",
	})
)

type Service struct {
	repo  Repository
	queue notifier.Queue
	now   func() time.Time
}

func NewService(repo Repository, queue notifier.Queue) *Service {
	if queue == nil {
		queue = notifier.Discard{}
	}
	return &Service{
		repo:  repo,
		queue: queue,
		now:   time.Now,
	}
}

// -------------------------
// Productos
// -------------------------

func (s *Service) ListProducts(ctx context.Context, category string, activeOnly bool) ([]Product, error) {
	return s.repo.ListProducts(ctx, ProductFilter{
		Category:   normalizeCategory(category),
		ActiveOnly: activeOnly,
	})
}

// GetProduct: si publicOnly, un producto inactivo se ve como inexistente.
func (s *Service) GetProduct(ctx context.Context, id string, publicOnly bool) (Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Product{}, ErrProductNotFound
	}
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Product{}, ErrProductNotFound
		}
		return Product{}, err
	}
	if publicOnly && !p.Active {
		return Product{}, ErrProductNotFound
	}
	return p, nil
}

type ProductInput struct {
	Name        string
	Description string
	Category    string
	PriceCents  int64
	Stock       int
	ImageKey    string
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Product{}, apperr.New(apperr.KindInvalidInput, "name is required")
	}
	if in.PriceCents < 0 {
		return Product{}, apperr.New(apperr.KindInvalidInput, "price_cents cannot be negative")
	}
	if in.Stock < 0 {
		return Product{}, apperr.New(apperr.KindInvalidInput, "stock cannot be negative")
	}

	now := s.now()
	p := Product{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Category:    normalizeCategory(in.Category),
		PriceCents:  in.PriceCents,
		Stock:       in.Stock,
		ImageKey:    strings.TrimSpace(in.ImageKey),
		Active:      true,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return Product{}, err
	}
	return p, nil
}

type ProductUpdate struct {
	Name        *string
	Description *string
	Category    *string
	PriceCents  *int64
	Stock       *int
	ImageKey    *string
	Active      *bool
}

func (s *Service) UpdateProduct(ctx context.Context, id string, expectedVersion int, in ProductUpdate) (Product, error) {
	p, err := s.GetProduct(ctx, id, false)
	if err != nil {
		return Product{}, err
	}
	if expectedVersion > 0 && expectedVersion != p.Version {
		return Product{}, apperr.ErrVersionConflict
	}

	if in.Name != nil {
		v := strings.TrimSpace(*in.Name)
		if v == "" {
			return Product{}, apperr.New(apperr.KindInvalidInput, "name cannot be empty")
		}
		p.Name = v
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Category != nil {
		p.Category = normalizeCategory(*in.Category)
	}
	if in.PriceCents != nil {
		if *in.PriceCents < 0 {
			return Product{}, apperr.New(apperr.KindInvalidInput, "price_cents cannot be negative")
		}
		p.PriceCents = *in.PriceCents
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return Product{}, apperr.New(apperr.KindInvalidInput, "stock cannot be negative")
		}
		p.Stock = *in.Stock
	}
	if in.ImageKey != nil {
		p.ImageKey = strings.TrimSpace(*in.ImageKey)
	}
	if in.Active != nil {
		p.Active = *in.Active
	}

	p.UpdatedAt = s.now()
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return Product{}, err
	}
	p.Version++
	return p, nil
}

// DeleteProduct es un borrado lógico: el producto queda inactivo.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	inactive := false
	_, err := s.UpdateProduct(ctx, id, 0, ProductUpdate{Active: &inactive})
	return err
}

func normalizeCategory(c string) string {
	return strings.ToLower(strings.TrimSpace(c))
}

func (s *Service) warn(ctx context.Context, msg string, fields map[string]any) {
	logger.FromContext(ctx).Warn(msg, fields)
}
