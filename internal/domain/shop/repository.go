package shop

import "context"

type Repository interface {
	CreateProduct(ctx context.Context, p Product) error
	GetProduct(ctx context.Context, id string) (Product, error)
	// ListProducts ordena por nombre.
	ListProducts(ctx context.Context, f ProductFilter) ([]Product, error)
	// UpdateProduct es optimista (apperr.ErrVersionConflict).
	UpdateProduct(ctx context.Context, p Product) error

	// GetCart devuelve un carrito vacío si el usuario no tiene uno.
	GetCart(ctx context.Context, userID string) (Cart, error)
	SaveCart(ctx context.Context, c Cart) error
	ClearCart(ctx context.Context, userID string) error

	GetOrder(ctx context.Context, id string) (Order, error)
	// ListOrders: userID y status vacíos = sin filtro. Orden created_at desc.
	ListOrders(ctx context.Context, userID string, status OrderStatus) ([]Order, error)
	UpdateOrder(ctx context.Context, o Order) error

	// CommitCheckout descuenta stock (cada producto con su versión observada),
	// inserta la orden y vacía el carrito, todo o nada.
	CommitCheckout(ctx context.Context, o Order, products []Product) error
}
