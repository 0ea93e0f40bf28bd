package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"adoptipet/internal/domain/shop"
	"adoptipet/internal/platform/apperr"
)

type shopRepo struct{ s *Store }

func (r *shopRepo) CreateProduct(ctx context.Context, p shop.Product) error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.New("product id required")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.products[p.ID]; exists {
		return errors.New("product already exists")
	}
	r.s.products[p.ID] = p
	return nil
}

func (r *shopRepo) GetProduct(ctx context.Context, id string) (shop.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return shop.Product{}, ErrNotFound
	}
	return p, nil
}

func (r *shopRepo) ListProducts(ctx context.Context, f shop.ProductFilter) ([]shop.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]shop.Product, 0)
	for _, p := range r.s.products {
		if f.ActiveOnly && !p.Active {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *shopRepo) UpdateProduct(ctx context.Context, p shop.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.products[p.ID]
	if err := checkVersion(ok, cur.Version, p.Version); err != nil {
		return err
	}
	p.Version++
	r.s.products[p.ID] = p
	return nil
}

func (r *shopRepo) GetCart(ctx context.Context, userID string) (shop.Cart, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.carts[userID]
	if !ok {
		return shop.Cart{UserID: userID, Items: []shop.CartItem{}}, nil
	}
	return cloneCart(c), nil
}

func (r *shopRepo) SaveCart(ctx context.Context, c shop.Cart) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.carts[c.UserID] = cloneCart(c)
	return nil
}

func (r *shopRepo) ClearCart(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.carts, userID)
	return nil
}

func (r *shopRepo) GetOrder(ctx context.Context, id string) (shop.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	o, ok := r.s.orders[id]
	if !ok {
		return shop.Order{}, ErrNotFound
	}
	return cloneOrder(o), nil
}

func (r *shopRepo) ListOrders(ctx context.Context, userID string, status shop.OrderStatus) ([]shop.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]shop.Order, 0)
	for _, o := range r.s.orders {
		if userID != "" && o.UserID != userID {
			continue
		}
		if status != "" && o.Status != status {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *shopRepo) UpdateOrder(ctx context.Context, o shop.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.orders[o.ID]
	if err := checkVersion(ok, cur.Version, o.Version); err != nil {
		return err
	}
	o = cloneOrder(o)
	o.Version++
	r.s.orders[o.ID] = o
	return nil
}

func (r *shopRepo) CommitCheckout(ctx context.Context, o shop.Order, products []shop.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.orders[o.ID]; exists {
		return errors.New("order already exists")
	}
	for _, p := range products {
		cur, ok := r.s.products[p.ID]
		if err := checkVersion(ok, cur.Version, p.Version); err != nil {
			return err
		}
		if p.Stock < 0 {
			return apperr.ErrVersionConflict
		}
	}

	for _, p := range products {
		p.Version++
		r.s.products[p.ID] = p
	}
	r.s.orders[o.ID] = cloneOrder(o)
	delete(r.s.carts, o.UserID)
	return nil
}

var _ shop.Repository = (*shopRepo)(nil)
