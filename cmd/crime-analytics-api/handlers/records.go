package handlers

import (
	"net/http"

	"github.com/crimelens/crime-analytics/internal/analytics"
	"github.com/crimelens/crime-analytics/internal/dataset"
	"github.com/crimelens/crime-analytics/internal/observability"
)

// RecordsHandler serves the crime-head tables of one family
// (government or foreign).
type RecordsHandler struct {
	logger  *observability.Logger
	service *analytics.Service
	name    dataset.Name
}

// NewRecordsHandler creates a records handler for a table family.
func NewRecordsHandler(logger *observability.Logger, service *analytics.Service, name dataset.Name) *RecordsHandler {
	return &RecordsHandler{logger: logger, service: service, name: name}
}

// Data handles GET /api/gov-data and /api/foreigner-data.
func (h *RecordsHandler) Data(w http.ResponseWriter, r *http.Request) {
	page, err := intParam(r, "page", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid query parameter", err.Error())
		return
	}
	perPage, err := intParam(r, "per_page", analytics.DefaultPerPage)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid query parameter", err.Error())
		return
	}

	res, err := h.service.Records(h.name, queryParam(r, "year"), queryParam(r, "crime"), page, perPage)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Crimes handles GET /api/gov-crimes and /api/foreigner-crimes.
func (h *RecordsHandler) Crimes(w http.ResponseWriter, r *http.Request) {
	crimes, err := h.service.Crimes(h.name, queryParam(r, "year"))
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"crimes": crimes})
}

// Trend handles GET /api/highest-crime-trend and /api/foreigner-trend.
func (h *RecordsHandler) Trend(w http.ResponseWriter, r *http.Request) {
	trend, err := h.service.HighestColumnTrend(h.name)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trend)
}
