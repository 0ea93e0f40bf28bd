package shop

import (
	"net/http"
	"time"

	"adoptipet/internal/middleware"
	"adoptipet/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/products", listProductsHandler(svc, true))
	r.Get("/products/{productID}", getProductHandler(svc))

	r.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireUser)
		pr.Get("/cart", getCartHandler(svc))
		pr.Put("/cart/items/{productID}", setCartItemHandler(svc))
		pr.Delete("/cart", clearCartHandler(svc))
		pr.Post("/orders", checkoutHandler(svc))
		pr.Get("/orders", listMyOrdersHandler(svc))
	})

	r.Group(func(ad chi.Router) {
		ad.Use(middleware.RequireAdmin)
		ad.Get("/admin/products", listProductsHandler(svc, false))
		ad.Post("/admin/products", createProductHandler(svc))
		ad.Patch("/admin/products/{productID}", updateProductHandler(svc))
		ad.Delete("/admin/products/{productID}", deleteProductHandler(svc))
		ad.Get("/admin/orders", listOrdersHandler(svc))
		ad.Patch("/admin/orders/{orderID}/status", updateOrderStatusHandler(svc))
	})
}

type productRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	PriceCents  int64  `json:"price_cents"`
	Stock       int    `json:"stock"`
	ImageKey    string `json:"image_key"`
}

type productUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	PriceCents  *int64  `json:"price_cents"`
	Stock       *int    `json:"stock"`
	ImageKey    *string `json:"image_key"`
	Active      *bool   `json:"active"`
}

type productResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	PriceCents  int64     `json:"price_cents"`
	Stock       int       `json:"stock"`
	ImageKey    string    `json:"image_key,omitempty"`
	Active      bool      `json:"active"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type cartItemRequest struct {
	Quantity int `json:"quantity"`
}

type cartLineResponse struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int    `json:"quantity"`
	SubtotalCents  int64  `json:"subtotal_cents"`
	Available      bool   `json:"available"`
}

type cartResponse struct {
	Items      []cartLineResponse `json:"items"`
	TotalCents int64              `json:"total_cents"`
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

type orderResponse struct {
	ID         string      `json:"id"`
	UserID     string      `json:"user_id"`
	Items      []OrderLine `json:"items"`
	TotalCents int64       `json:"total_cents"`
	Status     OrderStatus `json:"status"`
	Version    int         `json:"version"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// listProductsHandler godoc
// @Summary Catálogo de productos
// @Description En /products sólo activos; en /admin/products todos.
// @Tags shop
// @Produce json
// @Param category query string false "Categoría"
// @Success 200 {array} productResponse
// @Router /products [get]
func listProductsHandler(svc *Service, activeOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListProducts(r.Context(), r.URL.Query().Get("category"), activeOnly)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		out := make([]productResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toProductResponse(p))
		}
		httpx.JSON(w, http.StatusOK, out)
	}
}

// getProductHandler godoc
// @Summary Detalle de producto
// @Tags shop
// @Produce json
// @Param productID path string true "ID del producto"
// @Success 200 {object} productResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /products/{productID} [get]
func getProductHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetProduct(r.Context(), chi.URLParam(r, "productID"), !middleware.IsAdmin(r.Context()))
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.SetVersion(w, p.Version)
		httpx.JSON(w, http.StatusOK, toProductResponse(p))
	}
}

// createProductHandler godoc
// @Summary Alta de producto
// @Tags admin
// @Accept json
// @Produce json
// @Param payload body productRequest true "Producto"
// @Success 201 {object} productResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Router /admin/products [post]
func createProductHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req productRequest
		if err := httpx.Decode(r, &req); err != nil {
			httpx.Error(w, r, err)
			return
		}
		p, err := svc.CreateProduct(r.Context(), ProductInput{
			Name:        req.Name,
			Description: req.Description,
			Category:    req.Category,
			PriceCents:  req.PriceCents,
			Stock:       req.Stock,
			ImageKey:    req.ImageKey,
		})
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.SetVersion(w, p.Version)
		httpx.JSON(w, http.StatusCreated, toProductResponse(p))
	}
}

// updateProductHandler godoc
// @Summary Editar producto
// @Tags admin
// @Accept json
// @Produce json
// @Param productID path string true "ID del producto"
// @Param If-Match header string false "Versión esperada"
// @Param payload body productUpdateRequest true "Campos a modificar"
// @Success 200 {object} productResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /admin/products/{productID} [patch]
func updateProductHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		expected, err := httpx.ExpectedVersion(r)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		var req productUpdateRequest
		if err := httpx.Decode(r, &req); err != nil {
			httpx.Error(w, r, err)
			return
		}
		p, err := svc.UpdateProduct(r.Context(), chi.URLParam(r, "productID"), expected, ProductUpdate{
			Name:        req.Name,
			Description: req.Description,
			Category:    req.Category,
			PriceCents:  req.PriceCents,
			Stock:       req.Stock,
			ImageKey:    req.ImageKey,
			Active:      req.Active,
		})
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.SetVersion(w, p.Version)
		httpx.JSON(w, http.StatusOK, toProductResponse(p))
	}
}

// deleteProductHandler godoc
// @Summary Desactivar producto
// @Description Borrado lógico.
// @Tags admin
// @Param productID path string true "ID del producto"
// @Success 204
// @Failure 404 {object} httpx.ErrorResponse
// @Router /admin/products/{productID} [delete]
func deleteProductHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteProduct(r.Context(), chi.URLParam(r, "productID")); err != nil {
			httpx.Error(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// getCartHandler godoc
// @Summary Mi carrito
// @Tags shop
// @Produce json
// @Success 200 {object} cartResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /cart [get]
func getCartHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())
		v, err := svc.GetCart(r.Context(), claims.UserID)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, toCartResponse(v))
	}
}

// setCartItemHandler godoc
// @Summary Fijar cantidad de un producto en el carrito
// @Description quantity 0 lo quita. No puede superar el stock.
// @Tags shop
// @Accept json
// @Produce json
// @Param productID path string true "ID del producto"
// @Param payload body cartItemRequest true "Cantidad"
// @Success 200 {object} cartResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /cart/items/{productID} [put]
func setCartItemHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req cartItemRequest
		if err := httpx.Decode(r, &req); err != nil {
			httpx.Error(w, r, err)
			return
		}
		v, err := svc.SetItem(r.Context(), claims.UserID, chi.URLParam(r, "productID"), req.Quantity)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, toCartResponse(v))
	}
}

// clearCartHandler godoc
// @Summary Vaciar carrito
// @Tags shop
// @Success 204
// @Router /cart [delete]
func clearCartHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())
		if err := svc.ClearCart(r.Context(), claims.UserID); err != nil {
			httpx.Error(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// checkoutHandler godoc
// @Summary Confirmar compra
// @Description Convierte el carrito en una orden y descuenta stock.
// @Tags shop
// @Produce json
// @Success 201 {object} orderResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /orders [post]
func checkoutHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())
		o, err := svc.Checkout(r.Context(), claims.UserID)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		w.Header().Set("Location", "/orders/"+o.ID)
		httpx.SetVersion(w, o.Version)
		httpx.JSON(w, http.StatusCreated, toOrderResponse(o))
	}
}

// listMyOrdersHandler godoc
// @Summary Mis órdenes
// @Tags shop
// @Produce json
// @Success 200 {array} orderResponse
// @Router /orders [get]
func listMyOrdersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())
		items, err := svc.ListMyOrders(r.Context(), claims.UserID)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, toOrderResponses(items))
	}
}

// listOrdersHandler godoc
// @Summary Todas las órdenes
// @Tags admin
// @Produce json
// @Param status query string false "placed, shipped, delivered, cancelled"
// @Success 200 {array} orderResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Router /admin/orders [get]
func listOrdersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListOrders(r.Context(), r.URL.Query().Get("status"))
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, toOrderResponses(items))
	}
}

// updateOrderStatusHandler godoc
// @Summary Cambiar estado de una orden
// @Tags admin
// @Accept json
// @Produce json
// @Param orderID path string true "ID de la orden"
// @Param If-Match header string false "Versión esperada"
// @Param payload body orderStatusRequest true "Nuevo estado"
// @Success 200 {object} orderResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /admin/orders/{orderID}/status [patch]
func updateOrderStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		expected, err := httpx.ExpectedVersion(r)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		var req orderStatusRequest
		if err := httpx.Decode(r, &req); err != nil {
			httpx.Error(w, r, err)
			return
		}
		o, err := svc.UpdateOrderStatus(r.Context(), chi.URLParam(r, "orderID"), req.Status, expected)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.SetVersion(w, o.Version)
		httpx.JSON(w, http.StatusOK, toOrderResponse(o))
	}
}

func toProductResponse(p Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		PriceCents:  p.PriceCents,
		Stock:       p.Stock,
		ImageKey:    p.ImageKey,
		Active:      p.Active,
		Version:     p.Version,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toCartResponse(v CartView) cartResponse {
	out := cartResponse{Items: make([]cartLineResponse, 0, len(v.Lines)), TotalCents: v.TotalCents}
	for _, l := range v.Lines {
		out.Items = append(out.Items, cartLineResponse{
			ProductID:      l.ProductID,
			Name:           l.Name,
			UnitPriceCents: l.UnitPriceCents,
			Quantity:       l.Quantity,
			SubtotalCents:  l.SubtotalCents,
			Available:      l.Available,
		})
	}
	return out
}

func toOrderResponses(items []Order) []orderResponse {
	out := make([]orderResponse, 0, len(items))
	for _, o := range items {
		out = append(out, toOrderResponse(o))
	}
	return out
}

func toOrderResponse(o Order) orderResponse {
	lines := o.Items
	if lines == nil {
		lines = []OrderLine{}
	}
	return orderResponse{
		ID:         o.ID,
		UserID:     o.UserID,
		Items:      lines,
		TotalCents: o.TotalCents,
		Status:     o.Status,
		Version:    o.Version,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}
