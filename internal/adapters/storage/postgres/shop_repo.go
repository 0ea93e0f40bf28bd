package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"adoptipet/internal/domain/shop"
)

type ShopRepo struct {
	db *sql.DB
}

func NewShopRepo(db *sql.DB) *ShopRepo {
	return &ShopRepo{db: db}
}

const productColumns = `
	id, name, description, category, price_cents, stock,
	image_key, active, version, created_at, updated_at`

const orderColumns = `id, user_id, items, total_cents, status, version, created_at, updated_at`

func (r *ShopRepo) CreateProduct(ctx context.Context, p shop.Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		p.ID, p.Name, p.Description, p.Category, p.PriceCents, p.Stock,
		p.ImageKey, p.Active, p.Version, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *ShopRepo) GetProduct(ctx context.Context, id string) (shop.Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, strings.TrimSpace(id))
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return shop.Product{}, ErrNotFound
		}
		return shop.Product{}, err
	}
	return p, nil
}

func (r *ShopRepo) ListProducts(ctx context.Context, f shop.ProductFilter) ([]shop.Product, error) {
	where := []string{"TRUE"}
	args := make([]any, 0, 1)
	if f.ActiveOnly {
		where = append(where, "active")
	}
	if f.Category != "" {
		args = append(args, f.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY name ASC, id ASC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]shop.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ShopRepo) UpdateProduct(ctx context.Context, p shop.Product) error {
	return updateProduct(ctx, r.db, p)
}

func updateProduct(ctx context.Context, q querier, p shop.Product) error {
	return versionedExec(ctx, q, "products", p.ID, `
		UPDATE products
		SET
			name = $3,
			description = $4,
			category = $5,
			price_cents = $6,
			stock = $7,
			image_key = $8,
			active = $9,
			updated_at = $10,
			version = version + 1
		WHERE id = $1 AND version = $2
	`,
		p.ID, p.Version,
		p.Name, p.Description, p.Category, p.PriceCents, p.Stock,
		p.ImageKey, p.Active, p.UpdatedAt,
	)
}

func (r *ShopRepo) GetCart(ctx context.Context, userID string) (shop.Cart, error) {
	c := shop.Cart{UserID: userID, Items: []shop.CartItem{}}

	var (
		items     []byte
		updatedAt time.Time
	)
	err := r.db.QueryRowContext(ctx, `SELECT items, updated_at FROM carts WHERE user_id = $1`, userID).Scan(&items, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c, nil
		}
		return shop.Cart{}, err
	}
	if err := json.Unmarshal(items, &c.Items); err != nil {
		return shop.Cart{}, err
	}
	c.UpdatedAt = updatedAt
	return c, nil
}

func (r *ShopRepo) SaveCart(ctx context.Context, c shop.Cart) error {
	items := c.Items
	if items == nil {
		items = []shop.CartItem{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO carts (user_id, items, updated_at)
		VALUES ($1,$2,$3)
		ON CONFLICT (user_id) DO UPDATE SET items = EXCLUDED.items, updated_at = EXCLUDED.updated_at
	`, c.UserID, b, c.UpdatedAt)
	return err
}

func (r *ShopRepo) ClearCart(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM carts WHERE user_id = $1`, userID)
	return err
}

func (r *ShopRepo) GetOrder(ctx context.Context, id string) (shop.Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, strings.TrimSpace(id))
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return shop.Order{}, ErrNotFound
		}
		return shop.Order{}, err
	}
	return o, nil
}

func (r *ShopRepo) ListOrders(ctx context.Context, userID string, status shop.OrderStatus) ([]shop.Order, error) {
	where := []string{"TRUE"}
	args := make([]any, 0, 2)
	if userID != "" {
		args = append(args, userID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if status != "" {
		args = append(args, status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY created_at DESC, id ASC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]shop.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *ShopRepo) UpdateOrder(ctx context.Context, o shop.Order) error {
	return versionedExec(ctx, r.db, "orders", o.ID, `
		UPDATE orders
		SET status = $3, updated_at = $4, version = version + 1
		WHERE id = $1 AND version = $2
	`, o.ID, o.Version, o.Status, o.UpdatedAt)
}

// CommitCheckout: stock, orden y carrito en la misma transacción.
func (r *ShopRepo) CommitCheckout(ctx context.Context, o shop.Order, products []shop.Product) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, p := range products {
			if err := updateProduct(ctx, tx, p); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO orders (`+orderColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`, o.ID, o.UserID, items, o.TotalCents, o.Status, o.Version, o.CreatedAt, o.UpdatedAt); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `DELETE FROM carts WHERE user_id = $1`, o.UserID)
		return err
	})
}

func scanProduct(row rowScanner) (shop.Product, error) {
	var p shop.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Category, &p.PriceCents, &p.Stock,
		&p.ImageKey, &p.Active, &p.Version, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func scanOrder(row rowScanner) (shop.Order, error) {
	var (
		o     shop.Order
		items []byte
	)
	if err := row.Scan(&o.ID, &o.UserID, &items, &o.TotalCents, &o.Status, &o.Version, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return shop.Order{}, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return shop.Order{}, err
	}
	return o, nil
}

var _ shop.Repository = (*ShopRepo)(nil)
