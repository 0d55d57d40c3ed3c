package payroll

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/nomina-erp/nomina-erp/internal/platform/httpx"
)

// Handler serves the payroll API: period management, dispatch and monitoring.
type Handler struct {
	logger     *slog.Logger
	repo       Repository
	dispatcher *Dispatcher
	monitor    *Monitor
	validate   *validator.Validate
}

// NewHandler constructs the payroll handler.
func NewHandler(logger *slog.Logger, repo Repository, dispatcher *Dispatcher, monitor *Monitor) *Handler {
	return &Handler{
		logger:     logger,
		repo:       repo,
		dispatcher: dispatcher,
		monitor:    monitor,
		validate:   validator.New(),
	}
}

func (h *Handler) CreatePeriod(w http.ResponseWriter, r *http.Request) {
	var req CreatePeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	period, err := h.repo.CreatePeriod(r.Context(), Period{
		PeriodIdentifier: req.PeriodIdentifier,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
	})
	if err != nil {
		h.logger.Error("create period", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, period)
}

func (h *Handler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := h.repo.ListPeriods(r.Context())
	if err != nil {
		h.logger.Error("list periods", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"periods": periods})
}

func (h *Handler) GetPeriod(w http.ResponseWriter, r *http.Request) {
	period, err := h.repo.GetPeriodByIdentifier(r.Context(), chi.URLParam(r, "identifier"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, period)
}

// Dispatch triggers a calculation run for the period.
func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")

	summary, err := h.dispatcher.Dispatch(r.Context(), identifier)
	if err != nil {
		h.logger.Error("dispatch payroll", slog.String("period", identifier), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, summary)
}

// Progress reports completion for a period by numeric id.
func (h *Handler) Progress(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "period id must be an integer")
		return
	}

	report, err := h.monitor.Progress(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

// Results lists persisted results for a period, paged.
func (h *Handler) Results(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage <= 0 {
		perPage = 50
	}

	results, total, err := h.repo.ListResults(r.Context(), identifier, page, perPage)
	if err != nil {
		h.logger.Error("list results", slog.String("period", identifier), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ResultsPage{
		PeriodIdentifier: identifier,
		Page:             page,
		PerPage:          perPage,
		Total:            total,
		Results:          results,
	})
}
