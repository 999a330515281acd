package checker

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// SessionResponse is returned by every session endpoint.
type SessionResponse struct {
	SessionID string         `json:"session_id"`
	Screen    Screen         `json:"screen"`
	Progress  float64        `json:"progress"`
	State     State          `json:"state"`
	History   []HistoryEntry `json:"history"`
	Page      PageSnapshot   `json:"page"`
}

type NavigateRequest struct {
	Screen Screen `json:"screen"`
}

type UserInfoRequest struct {
	Age        string   `json:"age"`
	Gender     string   `json:"gender"`
	Conditions []string `json:"conditions"`
	Location   string   `json:"location"`
}

type SearchRequest struct {
	Query string `json:"query"`
}

type FollowUpRequest struct {
	Duration string `json:"duration"`
	Severity *int   `json:"severity"`
	Trend    string `json:"trend"`
}

type ConfirmRequest struct {
	Confirm bool `json:"confirm"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func respond(w http.ResponseWriter, status int, sess *Session) {
	st := sess.Wizard.State()
	writeJSON(w, status, SessionResponse{
		SessionID: sess.ID.String(),
		Screen:    st.Screen,
		Progress:  st.Screen.Progress(),
		State:     st,
		History:   sess.Wizard.History(),
		Page:      sess.Page.Snapshot(),
	})
}

// session resolves the {id} URL parameter, writing the error response itself.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid session ID")
		return nil, false
	}
	sess, err := h.svc.Session(id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return nil, false
	}
	return sess, true
}

func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Catalog())
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.CreateSession(r.Context(), r.Header.Get("X-Client-ID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	respond(w, http.StatusCreated, sess)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	respond(w, http.StatusOK, sess)
}

func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := h.svc.CloseSession(sess.ID); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req NavigateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	sess.Wizard.GoTo(req.Screen)
	respond(w, http.StatusOK, sess)
}

func (h *Handler) SubmitUserInfo(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req UserInfoRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	sess.Page.ClearAlert()
	sess.Page.SetValue(FieldAge, req.Age)
	sess.Page.SetValue(FieldGender, req.Gender)
	sess.Page.SetChecked(FieldConditions, req.Conditions)
	sess.Page.SetValue(FieldLocation, req.Location)

	if err := sess.Wizard.SubmitUserInfo(); err != nil {
		respond(w, http.StatusUnprocessableEntity, sess)
		return
	}
	respond(w, http.StatusOK, sess)
}

func (h *Handler) ToggleSymptom(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	sess.Wizard.ToggleSymptom(chi.URLParam(r, "symptom"))
	respond(w, http.StatusOK, sess)
}

func (h *Handler) SearchSymptoms(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req SearchRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	sess.Page.SetValue(FieldSymptomSearch, req.Query)
	sess.Wizard.FilterSymptoms()
	respond(w, http.StatusOK, sess)
}

// UpdateFollowUp moves the follow-up widgets. Nothing is committed to the
// session state; diagnosis reads the widgets when it runs.
func (h *Handler) UpdateFollowUp(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req FollowUpRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if req.Duration != "" && !ValidDuration(req.Duration) {
		writeError(w, http.StatusBadRequest, "Invalid duration")
		return
	}
	if req.Trend != "" && !ValidTrend(req.Trend) {
		writeError(w, http.StatusBadRequest, "Invalid trend")
		return
	}
	if req.Duration != "" {
		sess.Page.SetValue(FieldDuration, req.Duration)
	}
	if req.Severity != nil {
		sess.Page.SetValue(FieldSeverity, strconv.Itoa(*req.Severity))
	}
	if req.Trend != "" {
		sess.Page.SetValue(FieldTrend, req.Trend)
	}
	respond(w, http.StatusOK, sess)
}

func (h *Handler) StartAnalysis(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if _, err := h.svc.StartAnalysis(sess.ID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, http.StatusAccepted, sess)
}

func (h *Handler) CancelAnalysis(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	sess.Wizard.CancelAnalysis()
	respond(w, http.StatusOK, sess)
}

func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req ConfirmRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	sess.Page.AnswerConfirm(req.Confirm)
	sess.Wizard.ClearHistory(r.Context())
	respond(w, http.StatusOK, sess)
}

func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	pdf, err := h.svc.Report(sess.ID)
	switch {
	case errors.Is(err, ErrNoDiagnosisYet):
		writeError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, ErrReportsDisabled):
		writeError(w, http.StatusNotImplemented, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Report failed: "+err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="report_`+sess.ID.String()+`.pdf"`)
	if _, err := w.Write(pdf); err != nil {
		log.Warn().Err(err).Msg("Failed to write report")
	}
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/catalog", h.Catalog)
	r.Post("/sessions", h.CreateSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Delete("/", h.CloseSession)
		r.Post("/screen", h.Navigate)
		r.Post("/user-info", h.SubmitUserInfo)
		r.Post("/symptoms/search", h.SearchSymptoms)
		r.Post("/symptoms/{symptom}/toggle", h.ToggleSymptom)
		r.Put("/follow-up", h.UpdateFollowUp)
		r.Post("/analysis", h.StartAnalysis)
		r.Delete("/analysis", h.CancelAnalysis)
		r.Post("/history/clear", h.ClearHistory)
		r.Get("/report.pdf", h.Report)
	})
}
