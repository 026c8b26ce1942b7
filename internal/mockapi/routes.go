package mockapi

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates a new router with all routes configured
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware)
	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	r.Get("/health", h.Health)

	r.Post("/predict", h.Predict)
	r.Post("/recommend", h.Recommend)
	r.Get("/analytics", h.Analytics)
	r.Get("/fetch_weather", h.FetchWeather)
	r.Post("/predict_pest_risk", h.PredictPestRisk)
	r.Get("/market-status", h.MarketStatus)

	r.Route("/alerts", func(r chi.Router) {
		r.Get("/", h.ListAlerts)
		r.Post("/", h.CreateAlert)
		r.Delete("/{id}", h.DeleteAlert)
	})

	r.Post("/chatbot", h.Chatbot)

	return r
}
