package payroll

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// MountRoutes attaches payroll routes. Dispatch gets its own tighter rate
// limit: each call fans out a whole calculation run.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/periods", h.ListPeriods)
	r.Post("/periods", h.CreatePeriod)
	r.Get("/periods/{identifier}", h.GetPeriod)
	r.Get("/periods/{identifier}/results", h.Results)
	r.Get("/monitor/{id}", h.Progress)

	r.Group(func(r chi.Router) {
		r.Use(httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		r.Post("/periods/{identifier}/dispatch", h.Dispatch)
	})
}
