package handlers

import (
	"net/http"

	"flight_booker/internal/metrics"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func RegisterBookingRoutes(r chi.Router, h *BookingHandler) {
	r.Get("/", h.FormPage)
	r.Post("/", h.SubmitForm)
	r.Post("/form/field", h.EditField)

	r.Route("/bookings", func(r chi.Router) {
		r.Get("/", h.ListPage)
		r.Get("/more", h.More)
		r.Get("/{id}", h.Detail)
		r.Get("/{id}/close", h.CloseDetail)
		r.Post("/{id}/delete", h.Delete)
	})
}

// NewRouter собирает весь HTTP-интерфейс: страницы, /health и /metrics.
func NewRouter(h *BookingHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(metrics.HTTPMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", metrics.Handler())

	RegisterBookingRoutes(r, h)
	return r
}
