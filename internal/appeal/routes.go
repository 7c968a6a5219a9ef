package appeal

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the appeal endpoints under the /appeal prefix.
func RegisterRoutes(r chi.Router, store Store) {
	h := NewHandler(store)

	r.Route("/appeal", func(r chi.Router) {
		r.Post("/task1", h.Task1)
		r.Post("/task2", h.Task2)
		r.Post("/task3", h.Task3)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
	})
}
