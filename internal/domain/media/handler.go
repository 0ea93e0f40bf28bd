package media

import (
	"errors"
	"net/http"

	"adoptipet/internal/middleware"
	"adoptipet/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

// overhead del multipart (boundaries, headers) por encima del archivo.
const multipartOverhead = 64 << 10

func RegisterRoutes(r chi.Router, svc *Service, limiter *Limiter) {
	r.Group(func(ur chi.Router) {
		ur.Use(middleware.RequireUser)
		if limiter != nil {
			ur.Use(limiter.Middleware)
		}
		ur.Post("/uploads", uploadHandler(svc))
	})
}

// uploadHandler godoc
// @Summary Subir imagen
// @Description multipart/form-data con el campo "image" (image/*, máximo 5 MiB por defecto). Devuelve la key para usar en anuncios, animales o productos.
// @Tags media
// @Accept mpfd
// @Produce json
// @Param image formData file true "Imagen"
// @Success 201 {object} Upload
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 429 {object} httpx.ErrorResponse
// @Router /uploads [post]
func uploadHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, svc.MaxBytes()+multipartOverhead)
		if err := r.ParseMultipartForm(svc.MaxBytes()); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				httpx.Error(w, r, ErrTooLarge)
				return
			}
			httpx.Error(w, r, ErrMissingFile)
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()

		file, header, err := r.FormFile("image")
		if err != nil {
			httpx.Error(w, r, ErrMissingFile)
			return
		}
		defer file.Close()

		up, err := svc.Upload(r.Context(), header.Filename, file, header.Size)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, up)
	}
}
