package dashboard

import (
	"net/http"

	"adoptipet/internal/middleware"
	"adoptipet/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.With(middleware.RequireAdmin).Get("/admin/dashboard", overviewHandler(svc))
}

// overviewHandler godoc
// @Summary Dashboard de administración
// @Description Conteos de anuncios, adopciones por mes, animales, solicitudes abiertas, órdenes y top de productos.
// @Tags admin
// @Produce json
// @Success 200 {object} Overview
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Router /admin/dashboard [get]
func overviewHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		o, err := svc.Overview(r.Context())
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, o)
	}
}
