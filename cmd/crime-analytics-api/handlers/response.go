// Package handlers provides HTTP handlers for the crime analytics API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/crimelens/crime-analytics/internal/analytics"
	"github.com/crimelens/crime-analytics/internal/dataset"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, detail string) {
	resp := map[string]string{
		"error":   message,
		"message": message,
	}
	if detail != "" {
		resp["detail"] = detail
	}
	writeJSON(w, status, resp)
}

// writeQueryError maps an analytics error onto a status code.
func writeQueryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, analytics.ErrInvalidFilter), errors.Is(err, analytics.ErrColumnNotFound):
		writeError(w, http.StatusBadRequest, "invalid query parameter", err.Error())
	case errors.Is(err, analytics.ErrCityNotFound):
		writeError(w, http.StatusNotFound, "city not found", err.Error())
	case errors.Is(err, analytics.ErrCrimeNotFound):
		writeError(w, http.StatusNotFound, "crime not found", err.Error())
	case errors.Is(err, analytics.ErrNoData), errors.Is(err, dataset.ErrTableNotFound):
		writeError(w, http.StatusNotFound, "no data available", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "query failed", err.Error())
	}
}

func queryParam(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// genderParam parses the gender query parameter.
func genderParam(r *http.Request) (analytics.Gender, error) {
	return analytics.ParseGender(queryParam(r, "gender"))
}

// intParam parses an optional non-negative integer query parameter.
func intParam(r *http.Request, key string, fallback int) (int, error) {
	v := queryParam(r, key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New(key + " must be a non-negative integer")
	}
	return n, nil
}
