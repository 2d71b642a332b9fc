package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hotel_onboarding/internal/adapters/catalog"
	"hotel_onboarding/internal/app"
	"hotel_onboarding/internal/domain"
)

type Handlers struct {
	Svc     *app.OnboardingService
	Catalog *catalog.Static
}

// problem follows RFC 7807; validation failures carry the enumerated errors
// and warnings so the wizard can render them field by field.
type problem struct {
	Type         string          `json:"type"`
	Title        string          `json:"title"`
	Status       int             `json:"status"`
	Detail       string          `json:"detail,omitempty"`
	Errors       []string        `json:"errors,omitempty"`
	Warnings     []string        `json:"warnings,omitempty"`
	MissingSteps []domain.StepID `json:"missing_steps,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/onboarding/amenities", h.listAmenities)
	s.mux.Post("/v1/onboarding/sessions", h.createSession)
	s.mux.Get("/v1/onboarding/sessions/{id}", h.getStatus)
	s.mux.Put("/v1/onboarding/sessions/{id}/steps/{step}", h.updateStep)
	s.mux.Post("/v1/onboarding/sessions/{id}/images", h.analyzeImages)
	s.mux.Post("/v1/onboarding/sessions/{id}/complete", h.complete)
	s.mux.Post("/v1/onboarding/steps/{step}/validate", h.validateStep)
}

func writeProblem(w http.ResponseWriter, p problem) {
	if p.Type == "" {
		p.Type = "about:blank"
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps the engine's error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeProblem(w, problem{
			Title: "Validation Failed", Status: http.StatusUnprocessableEntity,
			Errors: verr.Errors, Warnings: verr.Warnings, MissingSteps: verr.MissingSteps,
		})
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, problem{Title: "Not Found", Status: http.StatusNotFound, Detail: "session not found"})
	case errors.Is(err, domain.ErrExpired):
		writeProblem(w, problem{Title: "Gone", Status: http.StatusGone, Detail: "session expired"})
	case errors.Is(err, domain.ErrInvalidState):
		writeProblem(w, problem{Title: "Conflict", Status: http.StatusConflict, Detail: "session is no longer active"})
	case errors.Is(err, domain.ErrVersionConflict):
		writeProblem(w, problem{Title: "Conflict", Status: http.StatusConflict, Detail: "concurrent update, retry"})
	default:
		writeProblem(w, problem{Title: "Internal Server Error", Status: http.StatusInternalServerError})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func (h *Handlers) listAmenities(w http.ResponseWriter, r *http.Request) {
	if pt := r.URL.Query().Get("property_type"); pt != "" {
		writeJSON(w, http.StatusOK, h.Catalog.ListForPropertyType(domain.PropertyType(pt)))
		return
	}
	writeJSON(w, http.StatusOK, h.Catalog.ListAmenities())
}

func (h *Handlers) createSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HotelID string `json:"hotel_id"`
		OwnerID string `json:"owner_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, problem{Title: "Bad Request", Status: http.StatusBadRequest, Detail: "invalid JSON body"})
		return
	}
	sess, err := h.Svc.CreateSession(r.Context(), req.HotelID, req.OwnerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"session_id": sess.ID,
		"status":     sess.Status,
		"expires_at": sess.ExpiresAt,
	})
}

func (h *Handlers) getStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.Svc.GetStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	etag, body := calcETagAndBody(st)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write status body")
	}
}

// updateStep decodes the body into the step's payload variant exactly once,
// at this boundary; everything past here works with typed payloads.
func (h *Handlers) updateStep(w http.ResponseWriter, r *http.Request) {
	step := domain.StepID(chi.URLParam(r, "step"))
	body, err := io.ReadAll(io.LimitReader(r.Body, 4<<20))
	if err != nil {
		writeProblem(w, problem{Title: "Bad Request", Status: http.StatusBadRequest, Detail: "unreadable body"})
		return
	}
	payload, err := domain.DecodeStepPayload(step, body)
	if err != nil {
		writeProblem(w, problem{Title: "Bad Request", Status: http.StatusBadRequest, Detail: err.Error()})
		return
	}
	res, err := h.Svc.UpdateStep(r.Context(), chi.URLParam(r, "id"), step, payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) validateStep(w http.ResponseWriter, r *http.Request) {
	step := domain.StepID(chi.URLParam(r, "step"))
	var req struct {
		Payload              json.RawMessage `json:"payload"`
		ValidateDependencies bool            `json:"validate_dependencies"`
		Draft                domain.Draft    `json:"draft,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, problem{Title: "Bad Request", Status: http.StatusBadRequest, Detail: "invalid JSON body"})
		return
	}
	payload, err := domain.DecodeStepPayload(step, req.Payload)
	if err != nil {
		writeProblem(w, problem{Title: "Bad Request", Status: http.StatusBadRequest, Detail: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, h.Svc.ValidateStep(step, payload, req.ValidateDependencies, req.Draft))
}

// analyzeImages accepts a multipart upload, scores every part in parallel
// and returns the records the client later submits in the images step.
func (h *Handlers) analyzeImages(w http.ResponseWriter, r *http.Request) {
	st, err := h.Svc.GetStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if st.Session.Status != domain.StatusActive {
		writeError(w, domain.ErrInvalidState)
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeProblem(w, problem{Title: "Bad Request", Status: http.StatusBadRequest, Detail: "expected multipart form"})
		return
	}
	category := r.FormValue("category")
	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		writeProblem(w, problem{Title: "Bad Request", Status: http.StatusBadRequest, Detail: "no images provided"})
		return
	}

	uploads := make([]app.ImageUpload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			writeProblem(w, problem{Title: "Bad Request", Status: http.StatusBadRequest, Detail: "unreadable image part"})
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			writeProblem(w, problem{Title: "Bad Request", Status: http.StatusBadRequest, Detail: "unreadable image part"})
			return
		}
		uploads = append(uploads, app.ImageUpload{Category: category, URL: fh.Filename, Data: data})
	}
	writeJSON(w, http.StatusOK, h.Svc.AnalyzeImages(r.Context(), uploads))
}

func (h *Handlers) complete(w http.ResponseWriter, r *http.Request) {
	score, err := h.Svc.Complete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"quality_score": score})
}
