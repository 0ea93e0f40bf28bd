package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"adoptipet/internal/platform/config"
	"adoptipet/internal/router"
)

const adminID = "admin-1"

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := &config.Config{}
	cfg.Admin.UserIDs = []string{adminID}
	ts := httptest.NewServer(router.NewRouter(router.Options{Config: cfg}))
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_EndToEnd_AdoptionScenario(t *testing.T) {
	ts := newServer(t)

	ownerID := "u1"
	candidateID := "u2"

	// 1) U1 registra el animal A
	animalID := createAnimal(t, ts.URL, ownerID)

	// 2) U1 publica el anuncio N; queda pendiente
	annID := createAdoptionAnnouncement(t, ts.URL, ownerID, animalID)

	// 3) No aparece en el listado público hasta que se modera
	if ids := publicAnnouncementIDs(t, ts.URL); contains(ids, annID) {
		t.Fatalf("pending announcement listed publicly")
	}
	{
		st, body := doReq(t, ts.URL, "PATCH", "/admin/announcements/"+annID+"/moderation", adminID, map[string]any{"status": "accepted"})
		if st != http.StatusOK {
			t.Fatalf("expected 200 moderating, got %d body=%s", st, string(body))
		}
	}
	if ids := publicAnnouncementIDs(t, ts.URL); !contains(ids, annID) {
		t.Fatalf("accepted announcement missing from public listing")
	}

	// 4) U2 se postula => P1 pending; una segunda postulación => 409
	var appID string
	{
		st, body := doReq(t, ts.URL, "POST", "/adoptions/"+annID+"/apply", candidateID, map[string]any{"message": "tengo patio"})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 apply, got %d body=%s", st, string(body))
		}
		var app struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		}
		mustDecode(t, body, &app)
		if app.Status != "pending" {
			t.Fatalf("expected pending, got %s", app.Status)
		}
		appID = app.ID
	}
	{
		st, _ := doReq(t, ts.URL, "POST", "/adoptions/"+annID+"/apply", candidateID, nil)
		if st != http.StatusConflict {
			t.Fatalf("expected 409 duplicate apply, got %d", st)
		}
	}

	// 5) Un tercero no puede aceptar
	{
		st, _ := doReq(t, ts.URL, "PATCH", "/adoptions/candidats/"+appID+"/accepter", "u3", nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 accept by non-author, got %d", st)
		}
		if migs := listMigrations(t, ts.URL); len(migs) != 0 {
			t.Fatalf("forbidden accept created a migration request")
		}
	}

	// 6) U1 acepta dos veces: misma solicitud M1
	var migID string
	for i := 0; i < 2; i++ {
		st, body := doReq(t, ts.URL, "PATCH", "/adoptions/candidats/"+appID+"/accepter", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 accept #%d, got %d body=%s", i+1, st, string(body))
		}
		var res struct {
			Application struct {
				Status string `json:"status"`
			} `json:"application"`
			MigrationRequest struct {
				ID              string `json:"id"`
				Status          string `json:"status"`
				CandidateUserID string `json:"candidate_user_id"`
			} `json:"migrationRequest"`
		}
		mustDecode(t, body, &res)
		if res.Application.Status != "selected" || res.MigrationRequest.Status != "awaiting_admin" || res.MigrationRequest.CandidateUserID != candidateID {
			t.Fatalf("unexpected accept result %s", string(body))
		}
		if migID != "" && migID != res.MigrationRequest.ID {
			t.Fatalf("second accept created another migration request")
		}
		migID = res.MigrationRequest.ID
	}
	if migs := listMigrations(t, ts.URL); len(migs) != 1 {
		t.Fatalf("expected exactly 1 migration request, got %d", len(migs))
	}

	// 7) Sólo admin aprueba
	{
		st, _ := doReq(t, ts.URL, "PATCH", "/admin/migrations/"+migID+"/accepter", ownerID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 approve by non-admin, got %d", st)
		}
	}
	{
		st, body := doReq(t, ts.URL, "PATCH", "/admin/migrations/"+migID+"/accepter", adminID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 approve, got %d body=%s", st, string(body))
		}
		var res struct {
			AnimalID string `json:"animalId"`
			NewOwner string `json:"newOwner"`
		}
		mustDecode(t, body, &res)
		if res.AnimalID != animalID || res.NewOwner != candidateID {
			t.Fatalf("unexpected approve result %s", string(body))
		}
	}

	// 8) Estado final: A es de U2 con una entrada de historial, N cerrado
	assertAdopted := func() {
		t.Helper()
		st, body := doReq(t, ts.URL, "GET", "/animals/"+animalID, "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get animal, got %d", st)
		}
		var a struct {
			OwnerUserID string `json:"owner_user_id"`
			History     []struct {
				PreviousOwnerUserID string `json:"previous_owner_user_id"`
			} `json:"history"`
		}
		mustDecode(t, body, &a)
		if a.OwnerUserID != candidateID || len(a.History) != 1 || a.History[0].PreviousOwnerUserID != ownerID {
			t.Fatalf("unexpected animal after approve %s", string(body))
		}

		st, body = doReq(t, ts.URL, "GET", "/announcements/"+annID, "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get announcement, got %d", st)
		}
		var n struct {
			AdoptionStatus string `json:"adoption_status"`
		}
		mustDecode(t, body, &n)
		if n.AdoptionStatus != "closed" {
			t.Fatalf("expected closed announcement, got %s", n.AdoptionStatus)
		}
	}
	assertAdopted()

	// 9) Segunda aprobación => 409 sin cambios
	{
		st, _ := doReq(t, ts.URL, "PATCH", "/admin/migrations/"+migID+"/accepter", adminID, nil)
		if st != http.StatusConflict {
			t.Fatalf("expected 409 second approve, got %d", st)
		}
	}
	assertAdopted()

	{
		st, body := doReq(t, ts.URL, "GET", "/admin/migrations?status=completed", adminID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list completed, got %d", st)
		}
		var migs []struct {
			Status    string `json:"status"`
			Candidate *struct {
				ID string `json:"id"`
			} `json:"candidate"`
		}
		mustDecode(t, body, &migs)
		if len(migs) != 1 || migs[0].Status != "completed" || migs[0].Candidate == nil || migs[0].Candidate.ID != candidateID {
			t.Fatalf("unexpected completed migrations %s", string(body))
		}
	}
}

func TestHTTP_ReapplyAfterRejection(t *testing.T) {
	ts := newServer(t)

	animalID := createAnimal(t, ts.URL, "u1")
	annID := createAdoptionAnnouncement(t, ts.URL, "u1", animalID)
	if st, _ := doReq(t, ts.URL, "PATCH", "/admin/announcements/"+annID+"/moderation", adminID, map[string]any{"status": "accepted"}); st != http.StatusOK {
		t.Fatalf("moderation failed: %d", st)
	}

	st, body := doReq(t, ts.URL, "POST", "/adoptions/"+annID+"/apply", "u2", nil)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 apply, got %d", st)
	}
	var app struct {
		ID string `json:"id"`
	}
	mustDecode(t, body, &app)

	if st, body := doReq(t, ts.URL, "PATCH", "/adoptions/candidats/"+app.ID+"/refuser", "u1", nil); st != http.StatusOK {
		t.Fatalf("expected 200 reject, got %d body=%s", st, string(body))
	}
	if st, body := doReq(t, ts.URL, "POST", "/adoptions/"+annID+"/apply", "u2", nil); st != http.StatusCreated {
		t.Fatalf("expected 201 re-apply after rejection, got %d body=%s", st, string(body))
	}
}

func TestHTTP_StaleIfMatchIsConflict(t *testing.T) {
	ts := newServer(t)
	animalID := createAnimal(t, ts.URL, "u1")

	if st, body := doReqWithVersion(t, ts.URL, "PATCH", "/animals/"+animalID, "u1", 1, map[string]any{"name": "Luna"}); st != http.StatusOK {
		t.Fatalf("expected 200 patch, got %d body=%s", st, string(body))
	}
	if st, _ := doReqWithVersion(t, ts.URL, "PATCH", "/animals/"+animalID, "u1", 1, map[string]any{"name": "Sol"}); st != http.StatusConflict {
		t.Fatalf("expected 409 for stale If-Match, got %d", st)
	}
}

func TestHTTP_Probes(t *testing.T) {
	ts := newServer(t)

	for _, path := range []string{"/health", "/ready", "/metrics"} {
		st, _ := doReq(t, ts.URL, "GET", path, "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 for %s, got %d", path, st)
		}
	}
	if st, _ := doReq(t, ts.URL, "GET", "/me", "", nil); st != http.StatusUnauthorized {
		t.Fatalf("expected 401 for /me without identity, got %d", st)
	}
	if st, _ := doReq(t, ts.URL, "GET", "/admin/dashboard", "u1", nil); st != http.StatusForbidden {
		t.Fatalf("expected 403 dashboard for non-admin, got %d", st)
	}
	if st, _ := doReq(t, ts.URL, "GET", "/admin/dashboard", adminID, nil); st != http.StatusOK {
		t.Fatalf("expected 200 dashboard for admin, got %d", st)
	}
}

func createAnimal(t *testing.T, baseURL, userID string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/animals", userID, map[string]any{
		"name":    "Milo",
		"species": "dog",
		"breed":   "mixed",
		"sex":     "male",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create animal, got %d body=%s", st, string(body))
	}
	return mustID(t, body)
}

func createAdoptionAnnouncement(t *testing.T, baseURL, userID, animalID string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/announcements", userID, map[string]any{
		"kind":        "adoption",
		"title":       "Milo busca familia",
		"description": "Perro tranquilo",
		"location":    "Montevideo",
		"animal_id":   animalID,
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create announcement, got %d body=%s", st, string(body))
	}
	return mustID(t, body)
}

func publicAnnouncementIDs(t *testing.T, baseURL string) []string {
	t.Helper()

	st, body := doReq(t, baseURL, "GET", "/announcements", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 public listing, got %d", st)
	}
	var items []struct {
		ID               string `json:"id"`
		ModerationStatus string `json:"moderation_status"`
	}
	mustDecode(t, body, &items)

	ids := make([]string, 0, len(items))
	for _, it := range items {
		if it.ModerationStatus != "accepted" {
			t.Fatalf("public listing returned %s announcement", it.ModerationStatus)
		}
		ids = append(ids, it.ID)
	}
	return ids
}

func listMigrations(t *testing.T, baseURL string) []json.RawMessage {
	t.Helper()

	st, body := doReq(t, baseURL, "GET", "/admin/migrations", adminID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 list migrations, got %d body=%s", st, string(body))
	}
	var out []json.RawMessage
	mustDecode(t, body, &out)
	return out
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func mustID(t *testing.T, body []byte) string {
	t.Helper()
	var resp struct {
		ID string `json:"id"`
	}
	mustDecode(t, body, &resp)
	if resp.ID == "" {
		t.Fatalf("missing id body=%s", string(body))
	}
	return resp.ID
}

func mustDecode(t *testing.T, body []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("decode %s: %v", string(body), err)
	}
}

func doReq(t *testing.T, baseURL, method, path, userID string, payload any) (int, []byte) {
	return doReqWithVersion(t, baseURL, method, path, userID, 0, payload)
}

func doReqWithVersion(t *testing.T, baseURL, method, path, userID string, version int, payload any) (int, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-Debug-User-ID", userID)
	}
	if version > 0 {
		req.Header.Set("If-Match", `"`+strconv.Itoa(version)+`"`)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b
}
