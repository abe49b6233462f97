package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimelens/crime-analytics/cmd/crime-analytics-api/middleware"
	"github.com/crimelens/crime-analytics/internal/analytics"
	"github.com/crimelens/crime-analytics/internal/chat"
	"github.com/crimelens/crime-analytics/internal/dataset"
	"github.com/crimelens/crime-analytics/internal/dataset/datasettest"
	"github.com/crimelens/crime-analytics/internal/observability"
	"github.com/crimelens/crime-analytics/internal/storage"
)

func newTestRouter(t *testing.T, provider *dataset.StaticProvider) http.Handler {
	t.Helper()
	ctx := context.Background()

	db, err := storage.Open(ctx, storage.Config{Driver: storage.DriverSQLite, DSN: ":memory:", MaxOpenConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.Migrate(ctx, db, storage.DriverSQLite))

	svc := analytics.NewService(provider, nil)
	engine := chat.NewEngine(provider, svc, chat.Options{Source: "test"})

	return NewRouter(observability.NopLogger(), &AppConfig{AllowedOrigins: []string{"*"}}, Services{
		Analytics: svc,
		Chat:      engine,
		Feedback:  storage.NewFeedbackRepository(db),
		Ready:     provider.Loaded,
	})
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestRouter_HealthAndReady(t *testing.T) {
	h := newTestRouter(t, datasettest.Provider())

	rec := get(t, h, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"crime-analytics"}`, rec.Body.String())

	rec = get(t, h, "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, newTestRouter(t, dataset.NewStaticProvider()), "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_Cities(t *testing.T) {
	h := newTestRouter(t, datasettest.Provider())

	rec := get(t, h, "/api/cities?year=2020")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string][]string](t, rec)
	cities := body["cities"]
	assert.Len(t, cities, 5)
	assert.True(t, sort.StringsAreSorted(cities))
	assert.Contains(t, cities, "Mumbai")
	for _, c := range cities {
		assert.False(t, dataset.IsTotalLabel(c), c)
	}

	all := decode[map[string][]string](t, get(t, h, "/api/cities?year=all"))
	assert.Len(t, all["cities"], 5)
}

func TestRouter_ComparisonMatchesYearTrend(t *testing.T) {
	h := newTestRouter(t, datasettest.Provider())

	trend := decode[map[string]int64](t, get(t, h, "/api/year-trend"))
	assert.Equal(t, map[string]int64{
		"2016": datasettest.Total2016,
		"2019": datasettest.Total2019,
		"2020": datasettest.Total2020,
	}, trend)

	for year, total := range trend {
		rec := get(t, h, "/api/city-comparison?year="+year)
		require.Equal(t, http.StatusOK, rec.Code)

		var sum int64
		for _, v := range decode[map[string]int64](t, rec) {
			sum += v
		}
		assert.Equal(t, total, sum, year)
	}
}

func TestRouter_ComparisonOrder(t *testing.T) {
	h := newTestRouter(t, datasettest.Provider())

	rec := get(t, h, "/api/city-comparison?year=2020")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Less(t, strings.Index(body, "Delhi"), strings.Index(body, "Mumbai"))
	assert.Less(t, strings.Index(body, "Mumbai"), strings.Index(body, "Kolkata"))
}

func TestRouter_StatusCodes(t *testing.T) {
	h := newTestRouter(t, datasettest.Provider())

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"lenient profile", "/api/city-profile?year=2020&city=Atlantis", http.StatusOK},
		{"bad gender", "/api/filter?gender=robot", http.StatusBadRequest},
		{"bad age", "/api/filter?age=12", http.StatusBadRequest},
		{"bad page", "/api/gov-data?page=x", http.StatusBadRequest},
		{"negative per_page", "/api/foreigner-data?page=1&per_page=-3", http.StatusBadRequest},
		{"juvenile kpis", "/api/juvenile-kpis?year=2020", http.StatusOK},
		{"reports summary", "/api/reports-summary", http.StatusOK},
		{"government trend", "/api/highest-crime-trend", http.StatusOK},
		{"unknown route", "/api/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, h, tt.target)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestRouter_ErrorBody(t *testing.T) {
	rec := get(t, newTestRouter(t, datasettest.Provider()), "/api/filter?gender=robot")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode[map[string]string](t, rec)
	assert.Equal(t, "invalid query parameter", body["error"])
	assert.Contains(t, body["detail"], "robot")
}

func TestRouter_NoData(t *testing.T) {
	h := newTestRouter(t, dataset.NewStaticProvider())

	for _, target := range []string{"/api/city-comparison", "/api/gov-crimes", "/api/home-kpis"} {
		rec := get(t, h, target)
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
	}
}

func TestRouter_Records(t *testing.T) {
	h := newTestRouter(t, datasettest.Provider())

	crimes := decode[map[string][]string](t, get(t, h, "/api/gov-crimes?year=2020"))
	assert.Equal(t, []string{"Cyber Crime", "Kidnapping", "Murder", "Theft"}, crimes["crimes"])

	crimes = decode[map[string][]string](t, get(t, h, "/api/foreigner-crimes?year=2016"))
	assert.Equal(t, []string{"Drug Offences", "Theft"}, crimes["crimes"])

	page := decode[analytics.RecordPage](t, get(t, h, "/api/gov-data?year=2020&crime=murder"))
	assert.Equal(t, 1, page.TotalRows)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "Murder", page.Rows[0]["Crime Head"])

	page = decode[analytics.RecordPage](t, get(t, h, "/api/gov-data?year=2020&page=2&per_page=3"))
	assert.Equal(t, 4, page.TotalRows)
	assert.Len(t, page.Rows, 1)
	assert.Equal(t, 2, page.Page)
}

func TestRouter_Chat(t *testing.T) {
	h := newTestRouter(t, datasettest.Provider())

	post := func(body string, sessionID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if sessionID != "" {
			req.Header.Set(middleware.SessionHeader, sessionID)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	t.Run("answers a question", func(t *testing.T) {
		rec := post(`{"message":"Highest arrests 2020"}`, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get(middleware.SessionHeader))

		env := decode[map[string]any](t, rec)
		assert.Equal(t, "highest", env["type"])
		assert.Equal(t, "Highest Arrest City - 2020", env["title"])
		assert.Equal(t, map[string]any{"Delhi": float64(22000)}, env["data"])
		assert.Equal(t, "test", env["source"])
	})

	t.Run("echoes the session", func(t *testing.T) {
		rec := post(`{"message":"delhi 2020"}`, "abc")
		assert.Equal(t, "abc", rec.Header().Get(middleware.SessionHeader))
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := post(`{"message":`, "")
		require.Equal(t, http.StatusOK, rec.Code)
		env := decode[map[string]any](t, rec)
		assert.Equal(t, chat.TypeError, env["type"])
		assert.Equal(t, chat.MsgUnknown, env["summary"])
	})

	t.Run("unknown question", func(t *testing.T) {
		rec := post(`{"message":"hello there"}`, "")
		require.Equal(t, http.StatusOK, rec.Code)
		env := decode[map[string]any](t, rec)
		assert.Equal(t, chat.TypeError, env["type"])
	})
}

func TestRouter_Feedback(t *testing.T) {
	h := newTestRouter(t, datasettest.Provider())

	body, _ := json.Marshal(map[string]string{"name": "Asha", "email": "asha@example.org", "message": "Great charts"})
	req := httptest.NewRequest(http.MethodPost, "/submit-feedback", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]string](t, rec)
	assert.Equal(t, "ok", created["status"])
	assert.NotEmpty(t, created["id"])

	form := url.Values{"name": {""}, "message": {"no name"}}
	req = httptest.NewRequest(http.MethodPost, "/submit-feedback", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	list := decode[map[string][]storage.Feedback](t, get(t, h, "/api/feedback"))
	require.Len(t, list["feedback"], 1)
	assert.Equal(t, "Asha", list["feedback"][0].Name)
	assert.Equal(t, created["id"], list["feedback"][0].ID.String())
}

func TestRouter_FeedbackDisabled(t *testing.T) {
	provider := datasettest.Provider()
	h := NewRouter(observability.NopLogger(), &AppConfig{}, Services{
		Analytics: analytics.NewService(provider, nil),
		Chat:      chat.NewEngine(provider, analytics.NewService(provider, nil), chat.Options{}),
	})

	rec := get(t, h, "/api/feedback")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
