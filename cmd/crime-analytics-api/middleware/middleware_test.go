package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimelens/crime-analytics/internal/observability"
)

func captureSession(t *testing.T, req *http.Request) (string, *httptest.ResponseRecorder) {
	t.Helper()
	var got string
	h := Session(SessionConfig{MaxAge: time.Hour})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = SessionFromContext(r.Context())
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return got, rec
}

func TestSession_FromHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/chat", nil)
	req.Header.Set(SessionHeader, "abc")
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "from-cookie"})

	id, rec := captureSession(t, req)
	assert.Equal(t, "abc", id)
	assert.Equal(t, "abc", rec.Header().Get(SessionHeader))
}

func TestSession_FromCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/chat", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "from-cookie"})

	id, _ := captureSession(t, req)
	assert.Equal(t, "from-cookie", id)
}

func TestSession_Minted(t *testing.T) {
	id, rec := captureSession(t, httptest.NewRequest(http.MethodPost, "/chat", nil))
	assert.Len(t, id, 36)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.Equal(t, id, cookies[0].Value)
	assert.Equal(t, 3600, cookies[0].MaxAge)
	assert.True(t, cookies[0].HttpOnly)

	other, _ := captureSession(t, httptest.NewRequest(http.MethodPost, "/chat", nil))
	assert.NotEqual(t, id, other)
}

func TestTraceID(t *testing.T) {
	var traceID string
	h := chimiddleware.RequestID(TraceID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = observability.TraceIDFromContext(r.Context())
	})))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(chimiddleware.RequestIDHeader, "req-42")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "req-42", traceID)
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://dashboard.example"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", "https://dashboard.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://dashboard.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/cities", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
