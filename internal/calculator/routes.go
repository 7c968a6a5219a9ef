package calculator

import (
	"github.com/go-chi/chi/v5"

	"fanout-api/internal/fanout"
)

// RegisterRoutes mounts the calculate endpoint. Both /calculate and
// /calculate/ are served so clients need not follow a redirect.
func RegisterRoutes(r chi.Router, opts fanout.Options) {
	h := NewHandler(opts)

	r.Post("/calculate", h.Calculate)
	r.Post("/calculate/", h.Calculate)
}
