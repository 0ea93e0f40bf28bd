package shop

import (
	"context"
	"errors"
	"strings"

	"adoptipet/internal/platform/apperr"
)

// CartLine es un item del carrito con precio actual del producto.
type CartLine struct {
	ProductID      string
	Name           string
	UnitPriceCents int64
	Quantity       int
	SubtotalCents  int64
	// Available false si el producto se desactivó o quedó sin stock suficiente.
	Available bool
}

type CartView struct {
	UserID     string
	Lines      []CartLine
	TotalCents int64
}

func (s *Service) GetCart(ctx context.Context, userID string) (CartView, error) {
	c, err := s.repo.GetCart(ctx, userID)
	if err != nil {
		return CartView{}, err
	}
	return s.view(ctx, c)
}

// SetItem fija la cantidad de un producto. qty 0 lo saca del carrito.
func (s *Service) SetItem(ctx context.Context, userID, productID string, qty int) (CartView, error) {
	if strings.TrimSpace(userID) == "" {
		return CartView{}, apperr.New(apperr.KindInvalidInput, "user is required")
	}
	if qty < 0 {
		return CartView{}, ErrInvalidQty
	}

	c, err := s.repo.GetCart(ctx, userID)
	if err != nil {
		return CartView{}, err
	}
	c.UserID = userID

	if qty > 0 {
		p, err := s.GetProduct(ctx, productID, true)
		if err != nil {
			return CartView{}, err
		}
		if qty > p.Stock {
			return CartView{}, ErrExceedsStock
		}
		productID = p.ID
	}

	items := make([]CartItem, 0, len(c.Items)+1)
	found := false
	for _, it := range c.Items {
		if it.ProductID == productID {
			found = true
			if qty > 0 {
				items = append(items, CartItem{ProductID: productID, Quantity: qty})
			}
			continue
		}
		items = append(items, it)
	}
	if !found && qty > 0 {
		items = append(items, CartItem{ProductID: productID, Quantity: qty})
	}

	c.Items = items
	c.UpdatedAt = s.now()
	if err := s.repo.SaveCart(ctx, c); err != nil {
		return CartView{}, err
	}
	return s.view(ctx, c)
}

func (s *Service) ClearCart(ctx context.Context, userID string) error {
	return s.repo.ClearCart(ctx, userID)
}

func (s *Service) view(ctx context.Context, c Cart) (CartView, error) {
	v := CartView{UserID: c.UserID, Lines: make([]CartLine, 0, len(c.Items))}
	for _, it := range c.Items {
		p, err := s.repo.GetProduct(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				v.Lines = append(v.Lines, CartLine{ProductID: it.ProductID, Quantity: it.Quantity})
				continue
			}
			return CartView{}, err
		}
		line := CartLine{
			ProductID:      p.ID,
			Name:           p.Name,
			UnitPriceCents: p.PriceCents,
			Quantity:       it.Quantity,
			SubtotalCents:  p.PriceCents * int64(it.Quantity),
			Available:      p.Active && p.Stock >= it.Quantity,
		}
		v.Lines = append(v.Lines, line)
		v.TotalCents += line.SubtotalCents
	}
	return v, nil
}
