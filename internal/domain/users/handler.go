package users

import (
	"net/http"
	"time"

	"adoptipet/internal/middleware"
	"adoptipet/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, cache *CachedReader) {
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireUser)
		pr.Get("/me", getMeHandler(svc))
		pr.Put("/me", updateMeHandler(svc, cache))
	})
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type updateMeRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// getMeHandler godoc
// @Summary Perfil del usuario autenticado
// @Tags users
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev"
// @Param Authorization header string false "Bearer token"
// @Success 200 {object} userResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /me [get]
func getMeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		u, err := svc.EnsureFromClaims(r.Context(), claims)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, toUserResponse(u, middleware.IsAdmin(r.Context())))
	}
}

// updateMeHandler godoc
// @Summary Actualizar nombre/email del usuario autenticado
// @Tags users
// @Accept json
// @Produce json
// @Param payload body updateMeRequest true "Campos a modificar"
// @Success 200 {object} userResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /me [put]
func updateMeHandler(svc *Service, cache *CachedReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req updateMeRequest
		if err := httpx.Decode(r, &req); err != nil {
			httpx.Error(w, r, err)
			return
		}

		// El perfil puede no existir todavía si SyncFromClaims no corrió.
		if _, err := svc.EnsureFromClaims(r.Context(), claims); err != nil {
			httpx.Error(w, r, err)
			return
		}

		u, err := svc.UpdateProfile(r.Context(), claims.UserID, UpdateInput{Name: req.Name, Email: req.Email})
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		if cache != nil {
			cache.Invalidate(u.ID)
		}
		httpx.JSON(w, http.StatusOK, toUserResponse(u, middleware.IsAdmin(r.Context())))
	}
}

func toUserResponse(u User, isAdmin bool) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		IsAdmin:   isAdmin || u.Role == RoleAdmin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
