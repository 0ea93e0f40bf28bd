package adoption

import (
	"net/http"
	"time"

	"adoptipet/internal/middleware"
	"adoptipet/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/adoptions", func(ar chi.Router) {
		ar.Use(middleware.RequireUser)
		ar.Get("/me", listMyApplicationsHandler(svc))
		ar.Post("/{announcementID}/apply", applyHandler(svc))
		ar.Get("/announcements/{announcementID}/candidats", listCandidatesHandler(svc))
		ar.Patch("/candidats/{applicationID}/accepter", acceptHandler(svc))
		ar.Patch("/candidats/{applicationID}/refuser", rejectApplicationHandler(svc))
	})

	r.Route("/admin/migrations", func(mr chi.Router) {
		mr.Use(middleware.RequireAdmin)
		mr.Get("/", listMigrationsHandler(svc))
		mr.Patch("/{migrationID}/accepter", approveHandler(svc))
		mr.Patch("/{migrationID}/refuser", rejectMigrationHandler(svc))
	})
}

type applyRequest struct {
	Message string `json:"message"`
}

type applicationResponse struct {
	ID              string            `json:"id"`
	AnnouncementID  string            `json:"announcement_id"`
	AnimalID        string            `json:"animal_id,omitempty"`
	ApplicantUserID string            `json:"applicant_user_id"`
	Message         string            `json:"message,omitempty"`
	Status          ApplicationStatus `json:"status"`
	Version         int               `json:"version"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

type migrationResponse struct {
	ID                  string          `json:"id"`
	AnnouncementID      string          `json:"announcement_id"`
	AnimalID            string          `json:"animal_id,omitempty"`
	ApplicationID       string          `json:"application_id"`
	CandidateUserID     string          `json:"candidate_user_id"`
	PreviousOwnerUserID string          `json:"previous_owner_user_id,omitempty"`
	Status              MigrationStatus `json:"status"`
	Version             int             `json:"version"`
	CompletedAt         *time.Time      `json:"completed_at,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

type acceptResponse struct {
	Application      applicationResponse `json:"application"`
	MigrationRequest migrationResponse   `json:"migrationRequest"`
}

type approveResponse struct {
	AnimalID string `json:"animalId"`
	NewOwner string `json:"newOwner"`
}

type userRef struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

type announcementRef struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	AdoptionStatus string `json:"adoption_status,omitempty"`
	AuthorUserID   string `json:"author_user_id"`
}

type animalRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Species     string `json:"species"`
	OwnerUserID string `json:"owner_user_id"`
}

type populatedMigrationResponse struct {
	migrationResponse
	Announcement  *announcementRef `json:"announcement"`
	Animal        *animalRef       `json:"animal"`
	Candidate     *userRef         `json:"candidate"`
	PreviousOwner *userRef         `json:"previous_owner"`
}

func actorFrom(r *http.Request) Actor {
	claims, _ := middleware.GetClaims(r.Context())
	return Actor{UserID: claims.UserID, IsAdmin: middleware.IsAdmin(r.Context())}
}

// applyHandler godoc
// @Summary Postularse a un anuncio de adopción
// @Tags adoptions
// @Accept json
// @Produce json
// @Param announcementID path string true "ID del anuncio"
// @Param payload body applyRequest false "Mensaje al autor"
// @Success 201 {object} applicationResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /adoptions/{announcementID}/apply [post]
func applyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req applyRequest
		if err := httpx.DecodeOptional(r, &req); err != nil {
			httpx.Error(w, r, err)
			return
		}

		app, err := svc.Apply(r.Context(), chi.URLParam(r, "announcementID"), claims.UserID, req.Message)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.SetVersion(w, app.Version)
		httpx.JSON(w, http.StatusCreated, toApplicationResponse(app))
	}
}

// listCandidatesHandler godoc
// @Summary Candidaturas de un anuncio
// @Description Sólo el autor del anuncio.
// @Tags adoptions
// @Produce json
// @Param announcementID path string true "ID del anuncio"
// @Success 200 {array} applicationResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /adoptions/announcements/{announcementID}/candidats [get]
func listCandidatesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListForAnnouncement(r.Context(), chi.URLParam(r, "announcementID"), actorFrom(r))
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, toApplicationResponses(items))
	}
}

// listMyApplicationsHandler godoc
// @Summary Mis candidaturas
// @Tags adoptions
// @Produce json
// @Success 200 {array} applicationResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /adoptions/me [get]
func listMyApplicationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())
		items, err := svc.ListMine(r.Context(), claims.UserID)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, toApplicationResponses(items))
	}
}

// acceptHandler godoc
// @Summary Aceptar una candidatura
// @Description Idempotente. Crea la solicitud de migración para el admin.
// @Tags adoptions
// @Produce json
// @Param applicationID path string true "ID de la candidatura"
// @Param If-Match header string false "Versión esperada de la candidatura"
// @Success 200 {object} acceptResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /adoptions/candidats/{applicationID}/accepter [patch]
func acceptHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		expected, err := httpx.ExpectedVersion(r)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		res, err := svc.Accept(r.Context(), chi.URLParam(r, "applicationID"), actorFrom(r), expected)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.SetVersion(w, res.Application.Version)
		httpx.JSON(w, http.StatusOK, acceptResponse{
			Application:      toApplicationResponse(res.Application),
			MigrationRequest: toMigrationResponse(res.Migration),
		})
	}
}

// rejectApplicationHandler godoc
// @Summary Rechazar una candidatura
// @Tags adoptions
// @Produce json
// @Param applicationID path string true "ID de la candidatura"
// @Param If-Match header string false "Versión esperada de la candidatura"
// @Success 200 {object} applicationResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /adoptions/candidats/{applicationID}/refuser [patch]
func rejectApplicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		expected, err := httpx.ExpectedVersion(r)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		app, err := svc.RejectApplication(r.Context(), chi.URLParam(r, "applicationID"), actorFrom(r), expected)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.SetVersion(w, app.Version)
		httpx.JSON(w, http.StatusOK, toApplicationResponse(app))
	}
}

// listMigrationsHandler godoc
// @Summary Solicitudes de migración
// @Description Con anuncio, animal, candidato y dueño anterior resueltos.
// @Tags admin
// @Produce json
// @Param status query string false "awaiting_admin, approved, rejected, completed"
// @Success 200 {array} populatedMigrationResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Router /admin/migrations [get]
func listMigrationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListMigrations(r.Context(), r.URL.Query().Get("status"), actorFrom(r))
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		out := make([]populatedMigrationResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPopulatedResponse(p))
		}
		httpx.JSON(w, http.StatusOK, out)
	}
}

// approveHandler godoc
// @Summary Aprobar una transferencia
// @Description Transfiere el animal al candidato y cierra el anuncio.
// @Tags admin
// @Produce json
// @Param migrationID path string true "ID de la solicitud"
// @Param If-Match header string false "Versión esperada de la solicitud"
// @Success 200 {object} approveResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /admin/migrations/{migrationID}/accepter [patch]
func approveHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		expected, err := httpx.ExpectedVersion(r)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		res, err := svc.Approve(r.Context(), chi.URLParam(r, "migrationID"), actorFrom(r), expected)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, approveResponse{AnimalID: res.AnimalID, NewOwner: res.NewOwner})
	}
}

// rejectMigrationHandler godoc
// @Summary Rechazar una transferencia
// @Tags admin
// @Produce json
// @Param migrationID path string true "ID de la solicitud"
// @Param If-Match header string false "Versión esperada de la solicitud"
// @Success 200 {object} migrationResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /admin/migrations/{migrationID}/refuser [patch]
func rejectMigrationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		expected, err := httpx.ExpectedVersion(r)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		m, err := svc.RejectMigration(r.Context(), chi.URLParam(r, "migrationID"), actorFrom(r), expected)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.SetVersion(w, m.Version)
		httpx.JSON(w, http.StatusOK, toMigrationResponse(m))
	}
}

func toApplicationResponses(items []Application) []applicationResponse {
	out := make([]applicationResponse, 0, len(items))
	for _, a := range items {
		out = append(out, toApplicationResponse(a))
	}
	return out
}

func toApplicationResponse(a Application) applicationResponse {
	return applicationResponse{
		ID:              a.ID,
		AnnouncementID:  a.AnnouncementID,
		AnimalID:        a.AnimalID,
		ApplicantUserID: a.ApplicantUserID,
		Message:         a.Message,
		Status:          a.Status,
		Version:         a.Version,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func toMigrationResponse(m MigrationRequest) migrationResponse {
	return migrationResponse{
		ID:                  m.ID,
		AnnouncementID:      m.AnnouncementID,
		AnimalID:            m.AnimalID,
		ApplicationID:       m.ApplicationID,
		CandidateUserID:     m.CandidateUserID,
		PreviousOwnerUserID: m.PreviousOwnerUserID,
		Status:              m.Status,
		Version:             m.Version,
		CompletedAt:         m.CompletedAt,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func toPopulatedResponse(p PopulatedMigration) populatedMigrationResponse {
	out := populatedMigrationResponse{migrationResponse: toMigrationResponse(p.Migration)}
	if p.Announcement != nil {
		out.Announcement = &announcementRef{
			ID:             p.Announcement.ID,
			Title:          p.Announcement.Title,
			AdoptionStatus: string(p.Announcement.AdoptionStatus),
			AuthorUserID:   p.Announcement.AuthorUserID,
		}
	}
	if p.Animal != nil {
		out.Animal = &animalRef{
			ID:          p.Animal.ID,
			Name:        p.Animal.Name,
			Species:     string(p.Animal.Species),
			OwnerUserID: p.Animal.OwnerUserID,
		}
	}
	if p.Candidate != nil {
		out.Candidate = &userRef{ID: p.Candidate.ID, Email: p.Candidate.Email, Name: p.Candidate.Name}
	}
	if p.PreviousOwner != nil {
		out.PreviousOwner = &userRef{ID: p.PreviousOwner.ID, Email: p.PreviousOwner.Email, Name: p.PreviousOwner.Name}
	}
	return out
}
