// Package http exposes the scoreboard operations over JSON HTTP plus a
// websocket stream for live boards. Authentication happens upstream; the
// gateway forwards the verified identity as X-User-ID / X-User-Role headers.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"scoreboard-service/internal/app"
	"scoreboard-service/internal/domain"
)

type Handler struct {
	submissions *app.SubmissionService
	rankings    *app.RankingService
	attempts    *app.AttemptService
}

func NewHandler(submissions *app.SubmissionService, rankings *app.RankingService, attempts *app.AttemptService) *Handler {
	return &Handler{submissions: submissions, rankings: rankings, attempts: attempts}
}

// Register mounts all REST routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/scores", h.handleSubmitScore)
	mux.HandleFunc("GET /api/leaderboard", h.handleLeaderboard)
	mux.HandleFunc("POST /api/leaderboard/reset", h.handleReset)
	mux.HandleFunc("POST /api/quizzes/{quizID}/attempts", h.handleQuizAttempt)
}

type submitScoreRequest struct {
	Type   string      `json:"type"`
	Ref    string      `json:"ref"`
	Points float64     `json:"points"`
	Meta   domain.Meta `json:"meta,omitempty"`
}

type attemptRequest struct {
	Answers []domain.AnswerInput `json:"answers"`
}

type resetRequest struct {
	Type string `json:"type"`
	Ref  string `json:"ref"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) handleSubmitScore(w http.ResponseWriter, r *http.Request) {
	userID, role, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req submitScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidInput)
		return
	}
	kind, err := domain.ParseItemKind(req.Type)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.submissions.Submit(r.Context(), userID, role, kind, req.Ref, req.Points, req.Meta); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *Handler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	userID, role, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}

	query := r.URL.Query()
	kind, err := domain.ParseItemKind(query.Get("type"))
	if err != nil {
		writeError(w, err)
		return
	}

	board, err := h.rankings.Leaderboard(r.Context(), userID, role, kind, query.Get("ref"), query.Get("window"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	userID, role, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidInput)
		return
	}
	kind, err := domain.ParseItemKind(req.Type)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.rankings.Reset(r.Context(), userID, role, kind, req.Ref); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *Handler) handleQuizAttempt(w http.ResponseWriter, r *http.Request) {
	userID, role, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req attemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidInput)
		return
	}

	attempt, err := h.attempts.SubmitAttempt(r.Context(), userID, role, r.PathValue("quizID"), req.Answers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attempt)
}

var errMissingIdentity = errors.New("missing identity")

// identity extracts the verified caller forwarded by the gateway. Websocket
// clients cannot always set headers, so query params are the fallback.
func identity(r *http.Request) (string, domain.Role, error) {
	userID := r.Header.Get("X-User-ID")
	rawRole := r.Header.Get("X-User-Role")
	if userID == "" {
		userID = r.URL.Query().Get("userId")
	}
	if rawRole == "" {
		rawRole = r.URL.Query().Get("role")
	}
	if userID == "" || rawRole == "" {
		return "", "", errMissingIdentity
	}
	role, err := domain.ParseRole(rawRole)
	if err != nil {
		return "", "", err
	}
	return userID, role, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrScopeViolation), errors.Is(err, domain.ErrNoClassAssigned):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrStudentNotFound),
		errors.Is(err, domain.ErrTeacherNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrAttemptsExhausted):
		status = http.StatusTooManyRequests
	case errors.Is(err, errMissingIdentity):
		status = http.StatusUnauthorized
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
