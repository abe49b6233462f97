package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/crimelens/crime-analytics/cmd/crime-analytics-api/handlers"
	"github.com/crimelens/crime-analytics/cmd/crime-analytics-api/middleware"
	"github.com/crimelens/crime-analytics/internal/analytics"
	"github.com/crimelens/crime-analytics/internal/dataset"
	"github.com/crimelens/crime-analytics/internal/observability"
	"github.com/crimelens/crime-analytics/internal/storage"
)

// AppConfig holds what the router needs besides its services.
type AppConfig struct {
	RequestTimeout time.Duration
	AllowedOrigins []string
	SessionMaxAge  time.Duration
	InsightEnabled bool
}

// Services bundles the router's dependencies.
type Services struct {
	Analytics *analytics.Service
	Chat      handlers.Asker
	Feedback  *storage.FeedbackRepository
	// Ready reports whether the datasets are loaded.
	Ready func() bool
}

// NewRouter creates the main API router with all routes configured.
func NewRouter(logger *observability.Logger, cfg *AppConfig, svc Services) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.TraceID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	if cfg.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"crime-analytics"}`))
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if svc.Ready != nil && !svc.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"loading"}`))
			return
		}
		w.Write([]byte(`{"status":"ready"}`))
	})

	chatHandler := handlers.NewChatHandler(logger, svc.Chat, cfg.InsightEnabled)
	arrests := handlers.NewArrestsHandler(logger, svc.Analytics)
	juvenile := handlers.NewJuvenileHandler(logger, svc.Analytics)
	government := handlers.NewRecordsHandler(logger, svc.Analytics, dataset.Government)
	foreign := handlers.NewRecordsHandler(logger, svc.Analytics, dataset.Foreign)

	var feedback *handlers.FeedbackHandler
	if svc.Feedback != nil {
		feedback = handlers.NewFeedbackHandler(logger, svc.Feedback)
		r.Post("/submit-feedback", feedback.Submit)
	}

	r.With(middleware.Session(middleware.SessionConfig{MaxAge: cfg.SessionMaxAge})).
		Post("/chat", chatHandler.Chat)

	r.Route("/api", func(r chi.Router) {
		// City arrests
		r.Get("/cities", arrests.Cities)
		r.Get("/city-comparison", arrests.CityComparison)
		r.Get("/city-wise", arrests.CityWise)
		r.Get("/city-profile", arrests.CityProfile)
		r.Get("/gender-ratio", arrests.GenderRatio)
		r.Get("/gender-ratio-trend", arrests.GenderRatioTrend)
		r.Get("/year-trend", arrests.YearTrend)
		r.Get("/filter", arrests.Filter)
		r.Get("/home-kpis", arrests.HomeKPIs)
		r.Get("/all-kpis", arrests.AllKPIs)
		r.Get("/age-gender-trend", arrests.AgeGenderTrend)
		r.Get("/age-trend", arrests.AgeTrend)
		r.Get("/gender-city-comparison", arrests.GenderCityComparison)
		r.Get("/year-gender-city", arrests.YearGenderCity)
		r.Get("/year-city-filter", arrests.YearCityFilter)
		r.Get("/reports-summary", arrests.ReportsSummary)

		// Juveniles
		r.Get("/juvenile-kpis", juvenile.KPIs)
		r.Get("/juvenile-filter", juvenile.Filter)
		r.Get("/juvenile-cities", juvenile.Cities)
		r.Get("/juvenile-trend", juvenile.Trend)

		// Government crime heads
		r.Get("/gov-data", government.Data)
		r.Get("/gov-crimes", government.Crimes)
		r.Get("/highest-crime-trend", government.Trend)

		// Foreigners
		r.Get("/foreigner-data", foreign.Data)
		r.Get("/foreigner-crimes", foreign.Crimes)
		r.Get("/foreigner-trend", foreign.Trend)

		if feedback != nil {
			r.Get("/feedback", feedback.List)
		}
	})

	return r
}
