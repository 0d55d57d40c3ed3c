package employees

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nomina-erp/nomina-erp/internal/platform/httpx"
	"github.com/nomina-erp/nomina-erp/internal/shared"
)

// Handler serves the read-only employee API.
type Handler struct {
	logger *slog.Logger
	repo   Repository
}

// NewHandler constructs the employee handler.
func NewHandler(logger *slog.Logger, repo Repository) *Handler {
	return &Handler{logger: logger, repo: repo}
}

// MountRoutes attaches employee routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/employees", h.List)
	r.Get("/employees/{id}", h.Get)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	total, err := h.repo.CountActive(r.Context())
	if err != nil {
		h.logger.Error("count active employees", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	pg := shared.NewPagination(page, perPage, total)

	list, err := h.repo.ListActivePage(r.Context(), pg.Page-1, pg.PerPage)
	if err != nil {
		h.logger.Error("list active employees", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"employees":   list,
		"page":        pg.Page,
		"per_page":    pg.PerPage,
		"total":       pg.Total,
		"total_pages": pg.TotalPages,
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "employee id must be an integer")
		return
	}
	emp, err := h.repo.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, emp)
}
