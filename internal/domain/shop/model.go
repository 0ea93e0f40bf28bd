package shop

import "time"

type Product struct {
	ID          string
	Name        string
	Description string
	Category    string
	PriceCents  int64
	Stock       int
	ImageKey    string
	// Active false = borrado lógico; no se vende pero las órdenes viejas lo siguen referenciando.
	Active    bool
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CartItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Cart es uno por usuario. Sin items = carrito vacío (no es error).
type Cart struct {
	UserID    string
	Items     []CartItem
	UpdatedAt time.Time
}

// OrderStatus es el estado de una orden.
// @Enum placed, shipped, delivered, cancelled
type OrderStatus string

const (
	OrderPlaced    OrderStatus = "placed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPlaced, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// OrderLine congela nombre y precio al momento de la compra.
type OrderLine struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int    `json:"quantity"`
}

type Order struct {
	ID         string
	UserID     string
	Items      []OrderLine
	TotalCents int64
	Status     OrderStatus
	Version    int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type ProductFilter struct {
	Category   string
	ActiveOnly bool
}
