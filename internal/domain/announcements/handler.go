package announcements

import (
	"net/http"
	"time"

	"adoptipet/internal/middleware"
	"adoptipet/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/announcements", func(ar chi.Router) {
		ar.Get("/", listPublicHandler(svc))
		ar.Get("/{announcementID}", getAnnouncementHandler(svc))

		ar.Group(func(pr chi.Router) {
			pr.Use(middleware.RequireUser)
			pr.Post("/", createAnnouncementHandler(svc))
			pr.Patch("/{announcementID}", updateAnnouncementHandler(svc))
			pr.Delete("/{announcementID}", deleteAnnouncementHandler(svc))
		})
	})

	r.With(middleware.RequireUser).Get("/me/announcements", listMineHandler(svc))

	r.Group(func(ad chi.Router) {
		ad.Use(middleware.RequireAdmin)
		ad.Get("/admin/announcements", listAdminHandler(svc))
		ad.Patch("/admin/announcements/{announcementID}/moderation", moderateHandler(svc))
	})
}

type createAnnouncementRequest struct {
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	ImageKey    string `json:"image_key"`
	AnimalID    string `json:"animal_id"`
}

type updateAnnouncementRequest struct {
	Kind        *string `json:"kind"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	ImageKey    *string `json:"image_key"`
	AnimalID    *string `json:"animal_id"`
}

type moderationRequest struct {
	Status string `json:"status"`
}

type announcementResponse struct {
	ID               string           `json:"id"`
	Kind             Kind             `json:"kind"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Location         string           `json:"location"`
	ImageKey         string           `json:"image_key"`
	AnimalID         string           `json:"animal_id,omitempty"`
	AuthorUserID     string           `json:"author_user_id"`
	ModerationStatus ModerationStatus `json:"moderation_status"`
	AdoptionStatus   AdoptionStatus   `json:"adoption_status,omitempty"`
	Version          int              `json:"version"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func actorFrom(r *http.Request) Actor {
	claims, _ := middleware.GetClaims(r.Context())
	return Actor{UserID: claims.UserID, IsAdmin: middleware.IsAdmin(r.Context())}
}

// listPublicHandler godoc
// @Summary Anuncios publicados
// @Description Sólo devuelve anuncios con moderación aceptada.
// @Tags announcements
// @Produce json
// @Param kind query string false "adoption, temporary_care, lost, found, advice"
// @Success 200 {array} announcementResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /announcements [get]
func listPublicHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListPublic(r.Context(), r.URL.Query().Get("kind"))
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, toResponses(items))
	}
}

// getAnnouncementHandler godoc
// @Summary Detalle de un anuncio
// @Description Un anuncio no aceptado sólo lo ven el autor o un admin.
// @Tags announcements
// @Produce json
// @Param announcementID path string true "ID del anuncio"
// @Success 200 {object} announcementResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /announcements/{announcementID} [get]
func getAnnouncementHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := svc.GetVisible(r.Context(), chi.URLParam(r, "announcementID"), actorFrom(r))
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.SetVersion(w, a.Version)
		httpx.JSON(w, http.StatusOK, toResponse(a))
	}
}

// createAnnouncementHandler godoc
// @Summary Publicar anuncio
// @Description Queda pendiente de moderación. adoption y temporary_care exigen animal_id propio.
// @Tags announcements
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev"
// @Param Authorization header string false "Bearer token"
// @Param payload body createAnnouncementRequest true "Anuncio"
// @Success 201 {object} announcementResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /announcements [post]
func createAnnouncementHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req createAnnouncementRequest
		if err := httpx.Decode(r, &req); err != nil {
			httpx.Error(w, r, err)
			return
		}

		a, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Kind:        req.Kind,
			Title:       req.Title,
			Description: req.Description,
			Location:    req.Location,
			ImageKey:    req.ImageKey,
			AnimalID:    req.AnimalID,
		})
		if err != nil {
			httpx.Error(w, r, err)
			return
		}

		httpx.SetVersion(w, a.Version)
		httpx.JSON(w, http.StatusCreated, toResponse(a))
	}
}

// updateAnnouncementHandler godoc
// @Summary Editar anuncio
// @Description Autor o admin. Una edición del autor vuelve el anuncio a moderación pendiente.
// @Tags announcements
// @Accept json
// @Produce json
// @Param announcementID path string true "ID del anuncio"
// @Param If-Match header string false "Versión esperada"
// @Param payload body updateAnnouncementRequest true "Campos a modificar"
// @Success 200 {object} announcementResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /announcements/{announcementID} [patch]
func updateAnnouncementHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		expected, err := httpx.ExpectedVersion(r)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}

		var req updateAnnouncementRequest
		if err := httpx.Decode(r, &req); err != nil {
			httpx.Error(w, r, err)
			return
		}

		a, err := svc.Update(r.Context(), chi.URLParam(r, "announcementID"), actorFrom(r), expected, UpdateInput{
			Kind:        req.Kind,
			Title:       req.Title,
			Description: req.Description,
			Location:    req.Location,
			ImageKey:    req.ImageKey,
			AnimalID:    req.AnimalID,
		})
		if err != nil {
			httpx.Error(w, r, err)
			return
		}

		httpx.SetVersion(w, a.Version)
		httpx.JSON(w, http.StatusOK, toResponse(a))
	}
}

// deleteAnnouncementHandler godoc
// @Summary Borrar anuncio
// @Tags announcements
// @Param announcementID path string true "ID del anuncio"
// @Success 204
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /announcements/{announcementID} [delete]
func deleteAnnouncementHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "announcementID"), actorFrom(r)); err != nil {
			httpx.Error(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// listMineHandler godoc
// @Summary Mis anuncios
// @Tags announcements
// @Produce json
// @Success 200 {array} announcementResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /me/announcements [get]
func listMineHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())
		items, err := svc.ListMine(r.Context(), claims.UserID)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, toResponses(items))
	}
}

// listAdminHandler godoc
// @Summary Anuncios para moderar
// @Tags admin
// @Produce json
// @Param status query string false "pending, accepted, rejected"
// @Param kind query string false "Tipo de anuncio"
// @Success 200 {array} announcementResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Router /admin/announcements [get]
func listAdminHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		items, err := svc.ListForAdmin(r.Context(), q.Get("status"), q.Get("kind"))
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, toResponses(items))
	}
}

// moderateHandler godoc
// @Summary Moderar anuncio
// @Tags admin
// @Accept json
// @Produce json
// @Param announcementID path string true "ID del anuncio"
// @Param payload body moderationRequest true "Nuevo estado"
// @Success 200 {object} announcementResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /admin/announcements/{announcementID}/moderation [patch]
func moderateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req moderationRequest
		if err := httpx.Decode(r, &req); err != nil {
			httpx.Error(w, r, err)
			return
		}
		a, err := svc.Moderate(r.Context(), chi.URLParam(r, "announcementID"), req.Status)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.SetVersion(w, a.Version)
		httpx.JSON(w, http.StatusOK, toResponse(a))
	}
}

func toResponses(items []Announcement) []announcementResponse {
	out := make([]announcementResponse, 0, len(items))
	for _, a := range items {
		out = append(out, toResponse(a))
	}
	return out
}

func toResponse(a Announcement) announcementResponse {
	return announcementResponse{
		ID:               a.ID,
		Kind:             a.Kind,
		Title:            a.Title,
		Description:      a.Description,
		Location:         a.Location,
		ImageKey:         a.ImageKey,
		AnimalID:         a.AnimalID,
		AuthorUserID:     a.AuthorUserID,
		ModerationStatus: a.ModerationStatus,
		AdoptionStatus:   a.AdoptionStatus,
		Version:          a.Version,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}
