package animals

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"adoptipet/internal/middleware"
	"adoptipet/internal/platform/apperr"
	"adoptipet/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/animals", func(ar chi.Router) {
		// Perfil público: los anuncios enlazan al animal.
		ar.Get("/{animalID}", getAnimalHandler(svc))

		ar.Group(func(pr chi.Router) {
			pr.Use(middleware.RequireUser)
			pr.Post("/", createAnimalHandler(svc))
			pr.Get("/", listAnimalsHandler(svc))
			pr.Patch("/{animalID}", updateAnimalHandler(svc))
			pr.Delete("/{animalID}", deleteAnimalHandler(svc))
			pr.Post("/{animalID}/health-records", addHealthRecordHandler(svc))
		})
	})
}

type createAnimalRequest struct {
	Name        string `json:"name"`
	Species     string `json:"species"`
	Breed       string `json:"breed"`
	Sex         string `json:"sex"`
	BirthDate   string `json:"birth_date"` // YYYY-MM-DD opcional
	Description string `json:"description"`
	ImageKey    string `json:"image_key"`
}

type updateAnimalRequest struct {
	// Punteros para PATCH real: nil = no tocar. birth_date se trata aparte (null = limpiar).
	Name        *string `json:"name"`
	Species     *string `json:"species"`
	Breed       *string `json:"breed"`
	Sex         *string `json:"sex"`
	Description *string `json:"description"`
	ImageKey    *string `json:"image_key"`
}

type healthRecordRequest struct {
	Kind        string  `json:"kind"`
	Title       string  `json:"title"`
	Notes       string  `json:"notes"`
	PerformedAt string  `json:"performed_at"` // RFC3339 o YYYY-MM-DD
	NextDueAt   *string `json:"next_due_at"`
}

type animalResponse struct {
	ID            string           `json:"id"`
	OwnerUserID   string           `json:"owner_user_id"`
	Name          string           `json:"name"`
	Species       Species          `json:"species"`
	Breed         string           `json:"breed"`
	Sex           Sex              `json:"sex"`
	BirthDate     *time.Time       `json:"birth_date,omitempty"`
	Description   string           `json:"description"`
	ImageKey      string           `json:"image_key,omitempty"`
	HealthRecords []HealthRecord   `json:"health_records"`
	History       []OwnershipEntry `json:"history"`
	Version       int              `json:"version"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// createAnimalHandler godoc
// @Summary Registrar animal
// @Description El usuario autenticado queda como dueño.
// @Tags animals
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev"
// @Param Authorization header string false "Bearer token"
// @Param payload body createAnimalRequest true "Datos del animal"
// @Success 201 {object} animalResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /animals [post]
func createAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req createAnimalRequest
		if err := httpx.Decode(r, &req); err != nil {
			httpx.Error(w, r, err)
			return
		}

		var bd *time.Time
		if strings.TrimSpace(req.BirthDate) != "" {
			t, err := time.Parse("2006-01-02", req.BirthDate)
			if err != nil {
				httpx.Error(w, r, apperr.New(apperr.KindInvalidInput, "birth_date must be YYYY-MM-DD"))
				return
			}
			bd = &t
		}

		a, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Name:        req.Name,
			Species:     req.Species,
			Breed:       req.Breed,
			Sex:         req.Sex,
			BirthDate:   bd,
			Description: req.Description,
			ImageKey:    req.ImageKey,
		})
		if err != nil {
			httpx.Error(w, r, err)
			return
		}

		httpx.SetVersion(w, a.Version)
		httpx.JSON(w, http.StatusCreated, toAnimalResponse(a))
	}
}

// listAnimalsHandler godoc
// @Summary Mis animales
// @Tags animals
// @Produce json
// @Success 200 {array} animalResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /animals [get]
func listAnimalsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}

		out := make([]animalResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAnimalResponse(a))
		}
		httpx.JSON(w, http.StatusOK, out)
	}
}

// getAnimalHandler godoc
// @Summary Perfil de un animal
// @Tags animals
// @Produce json
// @Param animalID path string true "ID del animal"
// @Success 200 {object} animalResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /animals/{animalID} [get]
func getAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := svc.GetByID(r.Context(), chi.URLParam(r, "animalID"))
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.SetVersion(w, a.Version)
		httpx.JSON(w, http.StatusOK, toAnimalResponse(a))
	}
}

// updateAnimalHandler godoc
// @Summary Actualizar animal (merge parcial)
// @Description Sólo el dueño. birth_date: null limpia la fecha. Acepta If-Match con la versión.
// @Tags animals
// @Accept json
// @Produce json
// @Param animalID path string true "ID del animal"
// @Param If-Match header string false "Versión esperada"
// @Param payload body updateAnimalRequest true "Campos a modificar"
// @Success 200 {object} animalResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /animals/{animalID} [patch]
func updateAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		expected, err := httpx.ExpectedVersion(r)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}

		// Para soportar birth_date: null decodificamos a map y miramos presencia del campo.
		var raw map[string]json.RawMessage
		if err := httpx.Decode(r, &raw); err != nil {
			httpx.Error(w, r, err)
			return
		}
		bd, err := parseOptionalDate(raw)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		delete(raw, "birth_date")

		var req updateAnimalRequest
		b, _ := json.Marshal(raw)
		dec := json.NewDecoder(strings.NewReader(string(b)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			httpx.Error(w, r, httpx.ErrInvalidJSON)
			return
		}

		updated, err := svc.Update(r.Context(), chi.URLParam(r, "animalID"), claims.UserID, expected, UpdateInput{
			Name:        req.Name,
			Species:     req.Species,
			Breed:       req.Breed,
			Sex:         req.Sex,
			BirthDate:   bd,
			Description: req.Description,
			ImageKey:    req.ImageKey,
		})
		if err != nil {
			httpx.Error(w, r, err)
			return
		}

		httpx.SetVersion(w, updated.Version)
		httpx.JSON(w, http.StatusOK, toAnimalResponse(updated))
	}
}

// deleteAnimalHandler godoc
// @Summary Borrar animal
// @Tags animals
// @Param animalID path string true "ID del animal"
// @Success 204
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /animals/{animalID} [delete]
func deleteAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		if err := svc.Delete(r.Context(), chi.URLParam(r, "animalID"), claims.UserID); err != nil {
			httpx.Error(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// addHealthRecordHandler godoc
// @Summary Agregar registro sanitario
// @Description Append-only. next_due_at alimenta los recordatorios por email.
// @Tags animals
// @Accept json
// @Produce json
// @Param animalID path string true "ID del animal"
// @Param payload body healthRecordRequest true "Registro"
// @Success 201 {object} animalResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /animals/{animalID}/health-records [post]
func addHealthRecordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req healthRecordRequest
		if err := httpx.Decode(r, &req); err != nil {
			httpx.Error(w, r, err)
			return
		}

		performed, err := parseFlexibleTime(req.PerformedAt)
		if err != nil {
			httpx.Error(w, r, apperr.New(apperr.KindInvalidInput, "performed_at must be RFC3339 or YYYY-MM-DD"))
			return
		}
		var nextDue *time.Time
		if req.NextDueAt != nil && strings.TrimSpace(*req.NextDueAt) != "" {
			t, err := parseFlexibleTime(*req.NextDueAt)
			if err != nil {
				httpx.Error(w, r, apperr.New(apperr.KindInvalidInput, "next_due_at must be RFC3339 or YYYY-MM-DD"))
				return
			}
			nextDue = &t
		}

		a, _, err := svc.AddHealthRecord(r.Context(), chi.URLParam(r, "animalID"), claims.UserID, HealthRecordInput{
			Kind:        req.Kind,
			Title:       req.Title,
			Notes:       req.Notes,
			PerformedAt: performed,
			NextDueAt:   nextDue,
		})
		if err != nil {
			httpx.Error(w, r, err)
			return
		}

		httpx.SetVersion(w, a.Version)
		httpx.JSON(w, http.StatusCreated, toAnimalResponse(a))
	}
}

func parseOptionalDate(raw map[string]json.RawMessage) (OptionalDate, error) {
	v, exists := raw["birth_date"]
	if !exists {
		return OptionalDate{}, nil
	}
	if string(v) == "null" {
		return OptionalDate{Present: true}, nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return OptionalDate{}, apperr.New(apperr.KindInvalidInput, "birth_date must be YYYY-MM-DD or null")
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return OptionalDate{}, apperr.New(apperr.KindInvalidInput, "birth_date must be YYYY-MM-DD or null")
	}
	return OptionalDate{Present: true, Value: &t}, nil
}

func parseFlexibleTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse("2006-01-02", s)
}

func toAnimalResponse(a Animal) animalResponse {
	records := a.HealthRecords
	if records == nil {
		records = []HealthRecord{}
	}
	history := a.History
	if history == nil {
		history = []OwnershipEntry{}
	}
	return animalResponse{
		ID:            a.ID,
		OwnerUserID:   a.OwnerUserID,
		Name:          a.Name,
		Species:       a.Species,
		Breed:         a.Breed,
		Sex:           a.Sex,
		BirthDate:     a.BirthDate,
		Description:   a.Description,
		ImageKey:      a.ImageKey,
		HealthRecords: records,
		History:       history,
		Version:       a.Version,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}
