package handlers

import (
	"net/http"

	"github.com/crimelens/crime-analytics/internal/analytics"
	"github.com/crimelens/crime-analytics/internal/observability"
)

// JuvenileHandler serves the juvenile apprehension endpoints.
type JuvenileHandler struct {
	logger  *observability.Logger
	service *analytics.Service
}

// NewJuvenileHandler creates a new juvenile handler.
func NewJuvenileHandler(logger *observability.Logger, service *analytics.Service) *JuvenileHandler {
	return &JuvenileHandler{logger: logger, service: service}
}

// KPIs handles GET /api/juvenile-kpis.
func (h *JuvenileHandler) KPIs(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.JuvenileKPIs(queryParam(r, "year"))
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

// Filter handles GET /api/juvenile-filter.
func (h *JuvenileHandler) Filter(w http.ResponseWriter, r *http.Request) {
	series, err := h.service.JuvenileFilter(queryParam(r, "year"), queryParam(r, "gender"), queryParam(r, "city"))
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

// Cities handles GET /api/juvenile-cities.
func (h *JuvenileHandler) Cities(w http.ResponseWriter, r *http.Request) {
	series, err := h.service.JuvenileCities(queryParam(r, "year"))
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

// Trend handles GET /api/juvenile-trend.
func (h *JuvenileHandler) Trend(w http.ResponseWriter, r *http.Request) {
	trend, err := h.service.JuvenileTrend()
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trend)
}
