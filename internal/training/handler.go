package training

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/trainloop/internal/middleware"
	"github.com/2beens/trainloop/internal/telemetry/tracing"
	"github.com/2beens/trainloop/internal/training/logs"
	"github.com/2beens/trainloop/internal/training/plans"
	"github.com/2beens/trainloop/internal/training/sessions"
	"github.com/2beens/trainloop/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=training_test

type service interface {
	GetOrGenerateDailySession(ctx context.Context, userID, date string) (*sessions.DailySession, error)
	SubmitSessionLog(ctx context.Context, userID, date string, entries []logs.Entry) (*SubmitResult, error)
	GetSessionLog(ctx context.Context, userID, date string) (*logs.SessionLog, error)
	GetUserPlan(ctx context.Context, userID string) (*plans.UserPlan, error)
	AssignTemplate(ctx context.Context, userID, templateID string) (*plans.UserPlan, error)
	AdvanceDay(ctx context.Context, userID string) (*plans.UserPlan, error)
}

type SubmitLogRequest struct {
	Date    string       `json:"date"`
	Entries []logs.Entry `json:"entries"`
}

type AssignTemplateRequest struct {
	TemplateID string `json:"templateId"`
}

type Handler struct {
	service service
}

func NewHandler(service service) *Handler {
	return &Handler{
		service: service,
	}
}

// SetupRoutes registers the training routes on r. submitMiddleware wraps
// log submission only (rate limiting).
func (h *Handler) SetupRoutes(r *mux.Router, submitMiddleware ...mux.MiddlewareFunc) {
	r.HandleFunc("/training/session/{date}", h.HandleGetDailySession).Methods("GET", "OPTIONS").Name("daily-session")
	r.HandleFunc("/training/log/{date}", h.HandleGetSessionLog).Methods("GET", "OPTIONS").Name("get-session-log")
	r.HandleFunc("/training/plan", h.HandleGetUserPlan).Methods("GET", "OPTIONS").Name("get-plan")
	r.HandleFunc("/training/plan", h.HandleAssignTemplate).Methods("PUT", "OPTIONS").Name("assign-template")
	r.HandleFunc("/training/plan/advance", h.HandleAdvanceDay).Methods("POST", "OPTIONS").Name("advance-day")

	var submit http.Handler = http.HandlerFunc(h.HandleSubmitSessionLog)
	for i := len(submitMiddleware) - 1; i >= 0; i-- {
		submit = submitMiddleware[i](submit)
	}
	r.Handle("/training/log", submit).Methods("POST", "OPTIONS").Name("submit-session-log")
}

func requestUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return "", false
	}
	return userID, true
}

// writeServiceError maps service errors to statuses: validation to 400,
// anything not found to 404, the rest to 500.
func writeServiceError(w http.ResponseWriter, operation string, err error) {
	var validationErr *ValidationError
	switch {
	case errors.As(err, &validationErr):
		pkg.WriteJSONResponse(w, validationErr, http.StatusBadRequest)
	case errors.Is(err, pkg.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		log.Errorf("%s: %s", operation, err)
		http.Error(w, "error, "+operation+" failed", http.StatusInternalServerError)
	}
}

func (h *Handler) HandleGetDailySession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.training.session.get")
	defer span.End()

	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	date := mux.Vars(r)["date"]
	span.SetAttributes(attribute.String("date", date))

	session, err := h.service.GetOrGenerateDailySession(ctx, userID, date)
	if err != nil {
		writeServiceError(w, "get daily session", err)
		return
	}

	pkg.WriteJSONResponse(w, session, http.StatusOK)
}

func (h *Handler) HandleSubmitSessionLog(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.training.log.submit")
	defer span.End()

	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	if r.Header.Get("Content-Type") != pkg.ContentType.JSON {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req SubmitLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("submit session log, unmarshal json params: %s", err)
		http.Error(w, "submit session log failed", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.String("date", req.Date))

	result, err := h.service.SubmitSessionLog(ctx, userID, req.Date, req.Entries)
	if err != nil {
		writeServiceError(w, "submit session log", err)
		return
	}

	log.Debugf("session log for user [%s] on [%s] stored, %d exercises evaluated", userID, result.Log.Date, len(result.Outcomes))
	pkg.WriteJSONResponse(w, result, http.StatusOK)
}

func (h *Handler) HandleGetSessionLog(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.training.log.get")
	defer span.End()

	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	sessionLog, err := h.service.GetSessionLog(ctx, userID, mux.Vars(r)["date"])
	if err != nil {
		writeServiceError(w, "get session log", err)
		return
	}

	pkg.WriteJSONResponse(w, sessionLog, http.StatusOK)
}

func (h *Handler) HandleGetUserPlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.training.plan.get")
	defer span.End()

	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	plan, err := h.service.GetUserPlan(ctx, userID)
	if err != nil {
		writeServiceError(w, "get user plan", err)
		return
	}

	pkg.WriteJSONResponse(w, plan, http.StatusOK)
}

func (h *Handler) HandleAssignTemplate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.training.plan.assign")
	defer span.End()

	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	if r.Header.Get("Content-Type") != pkg.ContentType.JSON {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req AssignTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("assign template, unmarshal json params: %s", err)
		http.Error(w, "assign template failed", http.StatusBadRequest)
		return
	}

	plan, err := h.service.AssignTemplate(ctx, userID, req.TemplateID)
	if err != nil {
		writeServiceError(w, "assign template", err)
		return
	}

	pkg.WriteJSONResponse(w, plan, http.StatusOK)
}

func (h *Handler) HandleAdvanceDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.training.plan.advance")
	defer span.End()

	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	plan, err := h.service.AdvanceDay(ctx, userID)
	if err != nil {
		writeServiceError(w, "advance day", err)
		return
	}

	pkg.WriteJSONResponse(w, plan, http.StatusOK)
}
