package shop

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"adoptipet/internal/platform/apperr"
	"adoptipet/internal/ports/notifier"

	"github.com/google/uuid"
)

// Checkout convierte el carrito en una orden. Descuenta stock, crea la orden
// y vacía el carrito en un solo commit con chequeo de versión por producto.
func (s *Service) Checkout(ctx context.Context, userID string) (Order, error) {
	c, err := s.repo.GetCart(ctx, userID)
	if err != nil {
		return Order{}, err
	}
	if len(c.Items) == 0 {
		return Order{}, ErrEmptyCart
	}

	now := s.now()
	lines := make([]OrderLine, 0, len(c.Items))
	products := make([]Product, 0, len(c.Items))
	var total int64

	for _, it := range c.Items {
		p, err := s.repo.GetProduct(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return Order{}, ErrProductUnavailable
			}
			return Order{}, err
		}
		if !p.Active {
			return Order{}, ErrProductUnavailable
		}
		if p.Stock < it.Quantity {
			return Order{}, ErrInsufficientStock
		}

		lines = append(lines, OrderLine{
			ProductID:      p.ID,
			Name:           p.Name,
			UnitPriceCents: p.PriceCents,
			Quantity:       it.Quantity,
		})
		total += p.PriceCents * int64(it.Quantity)

		p.Stock -= it.Quantity
		p.UpdatedAt = now
		products = append(products, p)
	}

	o := Order{
		ID:         uuid.NewString(),
		UserID:     userID,
		Items:      lines,
		TotalCents: total,
		Status:     OrderPlaced,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.CommitCheckout(ctx, o, products); err != nil {
		return Order{}, err
	}

	checkoutsTotal.Inc()
	revenueCentsTotal.Add(float64(total))

	if !s.queue.Enqueue(notifier.Message{
		UserIDs: []string{userID},
		Kind:    "order_placed",
		Subject: "Your AdoptiPet order was placed",
		Body:    fmt.Sprintf("Order %s: %d item(s), total %s.", o.ID, len(lines), formatCents(total)),
	}) {
		s.warn(ctx, "notification dropped", map[string]any{"kind": "order_placed", "order_id": o.ID})
	}
	return o, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (Order, error) {
	o, err := s.repo.GetOrder(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Order{}, ErrOrderNotFound
		}
		return Order{}, err
	}
	return o, nil
}

func (s *Service) ListMyOrders(ctx context.Context, userID string) ([]Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "user is required")
	}
	return s.repo.ListOrders(ctx, userID, "")
}

func (s *Service) ListOrders(ctx context.Context, status string) ([]Order, error) {
	st := OrderStatus(strings.ToLower(strings.TrimSpace(status)))
	if st != "" && !st.Valid() {
		return nil, apperr.New(apperr.KindInvalidInput, "status must be placed, shipped, delivered or cancelled")
	}
	return s.repo.ListOrders(ctx, "", st)
}

// UpdateOrderStatus lo usa el admin; respeta la tabla de transiciones.
func (s *Service) UpdateOrderStatus(ctx context.Context, id, status string, expectedVersion int) (Order, error) {
	to := OrderStatus(strings.ToLower(strings.TrimSpace(status)))
	if !to.Valid() {
		return Order{}, apperr.New(apperr.KindInvalidInput, "status must be placed, shipped, delivered or cancelled")
	}

	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if expectedVersion > 0 && expectedVersion != o.Version {
		return Order{}, apperr.ErrVersionConflict
	}

	next, err := TransitionOrder(o, to)
	if err != nil {
		return Order{}, err
	}
	next.UpdatedAt = s.now()
	if err := s.repo.UpdateOrder(ctx, next); err != nil {
		return Order{}, err
	}
	next.Version++

	s.queue.Enqueue(notifier.Message{
		UserIDs: []string{o.UserID},
		Kind:    "order_status_changed",
		Subject: fmt.Sprintf("Your order is now %s", to),
		Body:    fmt.Sprintf("Order %s changed from %s to %s.", o.ID, o.Status, to),
	})
	return next, nil
}

func formatCents(c int64) string {
	return fmt.Sprintf("%d.%02d", c/100, c%100)
}
