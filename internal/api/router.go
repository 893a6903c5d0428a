package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Cheertaboi/Billing-system-promo-engine/internal/api/handlers"
	"github.com/Cheertaboi/Billing-system-promo-engine/internal/api/middleware"
)

// NewRouter builds the HTTP router for the promo-service
func NewRouter(svc handlers.PromotionService, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Logger(logger))

	promoHandler := handlers.NewPromotionHandler(svc, logger)

	// Till-facing promotion endpoints
	r.Route("/promotions", func(r chi.Router) {
		r.Post("/allocate", promoHandler.Allocate)
		r.Post("/validate", promoHandler.Validate)
		r.Get("/{id}", promoHandler.GetPromotion)
	})

	// Admin endpoints
	r.Route("/admin", func(r chi.Router) {
		r.Post("/promotions", promoHandler.CreatePromotion)
	})

	// health
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
