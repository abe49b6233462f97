package handlers

import (
	"net/http"

	"github.com/crimelens/crime-analytics/internal/analytics"
	"github.com/crimelens/crime-analytics/internal/observability"
)

// ArrestsHandler serves the city arrest dashboard endpoints.
type ArrestsHandler struct {
	logger  *observability.Logger
	service *analytics.Service
}

// NewArrestsHandler creates a new arrests handler.
func NewArrestsHandler(logger *observability.Logger, service *analytics.Service) *ArrestsHandler {
	return &ArrestsHandler{logger: logger, service: service}
}

// Cities handles GET /api/cities.
func (h *ArrestsHandler) Cities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.service.Cities(queryParam(r, "year"))
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"cities": cities})
}

// CityComparison handles GET /api/city-comparison.
func (h *ArrestsHandler) CityComparison(w http.ResponseWriter, r *http.Request) {
	ranking, err := h.service.CityComparison(queryParam(r, "year"))
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ranking)
}

// CityWise handles GET /api/city-wise.
func (h *ArrestsHandler) CityWise(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.CityWise(queryParam(r, "year"))
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// CityProfile handles GET /api/city-profile.
func (h *ArrestsHandler) CityProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.Profile(queryParam(r, "year"), queryParam(r, "city"))
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// GenderRatio handles GET /api/gender-ratio.
func (h *ArrestsHandler) GenderRatio(w http.ResponseWriter, r *http.Request) {
	ratio, err := h.service.GenderRatio(queryParam(r, "year"))
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ratio)
}

// GenderRatioTrend handles GET /api/gender-ratio-trend.
func (h *ArrestsHandler) GenderRatioTrend(w http.ResponseWriter, r *http.Request) {
	trend, err := h.service.GenderRatioTrend()
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trend)
}

// YearTrend handles GET /api/year-trend.
func (h *ArrestsHandler) YearTrend(w http.ResponseWriter, r *http.Request) {
	trend, err := h.service.YearTrend()
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trend)
}

// Filter handles GET /api/filter.
func (h *ArrestsHandler) Filter(w http.ResponseWriter, r *http.Request) {
	gender, err := genderParam(r)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	res, err := h.service.Filter(queryParam(r, "year"), queryParam(r, "city"), queryParam(r, "age"), gender)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HomeKPIs handles GET /api/home-kpis.
func (h *ArrestsHandler) HomeKPIs(w http.ResponseWriter, r *http.Request) {
	kpis, err := h.service.HomeKPIs()
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, kpis)
}

// AllKPIs handles GET /api/all-kpis.
func (h *ArrestsHandler) AllKPIs(w http.ResponseWriter, r *http.Request) {
	kpis, err := h.service.AllKPIs()
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, kpis)
}

// AgeGenderTrend handles GET /api/age-gender-trend.
func (h *ArrestsHandler) AgeGenderTrend(w http.ResponseWriter, r *http.Request) {
	gender, err := genderParam(r)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	trend, err := h.service.AgeGenderTrend(queryParam(r, "age"), gender)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trend)
}

// AgeTrend handles GET /api/age-trend.
func (h *ArrestsHandler) AgeTrend(w http.ResponseWriter, r *http.Request) {
	trend, err := h.service.AgeTrend(queryParam(r, "age"))
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trend)
}

// GenderCityComparison handles GET /api/gender-city-comparison.
func (h *ArrestsHandler) GenderCityComparison(w http.ResponseWriter, r *http.Request) {
	gender, err := genderParam(r)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	ranking, err := h.service.GenderCityComparison(gender)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ranking)
}

// YearGenderCity handles GET /api/year-gender-city.
func (h *ArrestsHandler) YearGenderCity(w http.ResponseWriter, r *http.Request) {
	gender, err := genderParam(r)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	ranking, err := h.service.YearGenderCity(queryParam(r, "year"), gender)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ranking)
}

// YearCityFilter handles GET /api/year-city-filter.
func (h *ArrestsHandler) YearCityFilter(w http.ResponseWriter, r *http.Request) {
	gender, err := genderParam(r)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	ranking, err := h.service.YearCityFilter(queryParam(r, "year"), queryParam(r, "age"), gender)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ranking)
}

// ReportsSummary handles GET /api/reports-summary.
func (h *ArrestsHandler) ReportsSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.ReportsSummary()
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
