package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimelens/crime-analytics/cmd/crime-analytics-api/middleware"
	"github.com/crimelens/crime-analytics/internal/chat"
	"github.com/crimelens/crime-analytics/internal/observability"
)

type recordingAsker struct {
	got chat.Request
}

func (a *recordingAsker) Ask(ctx context.Context, req chat.Request) chat.Answer {
	a.got = req
	return chat.Answer{Envelope: chat.Envelope{Type: "total", Title: "ok"}}
}

func serveChat(h *ChatHandler, body, sessionID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	if sessionID != "" {
		req = req.WithContext(context.WithValue(req.Context(), middleware.SessionIDKey, sessionID))
	}
	rec := httptest.NewRecorder()
	h.Chat(rec, req)
	return rec
}

func TestChatHandler_InsightFlag(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		body    string
		want    bool
	}{
		{"enabled by default", true, `{"message":"x"}`, true},
		{"request opts out", true, `{"message":"x","insight":false}`, false},
		{"disabled server wins", false, `{"message":"x","insight":true}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asker := &recordingAsker{}
			h := NewChatHandler(observability.NopLogger(), asker, tt.enabled)

			rec := serveChat(h, tt.body, "")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, asker.got.Insight)
		})
	}
}

func TestChatHandler_Session(t *testing.T) {
	asker := &recordingAsker{}
	h := NewChatHandler(observability.NopLogger(), asker, false)

	serveChat(h, `{"message":"delhi"}`, "from-context")
	assert.Equal(t, "from-context", asker.got.SessionID)
	assert.Equal(t, "delhi", asker.got.Message)

	serveChat(h, `{"message":"delhi","session_id":" from-body "}`, "from-context")
	assert.Equal(t, "from-body", asker.got.SessionID)
}

func TestChatHandler_Envelope(t *testing.T) {
	h := NewChatHandler(observability.NopLogger(), &recordingAsker{}, false)

	rec := serveChat(h, `{"message":"x"}`, "")
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"type":"total","title":"ok"}`, rec.Body.String())
}

func TestChatHandler_BodyTooLarge(t *testing.T) {
	asker := &recordingAsker{}
	h := NewChatHandler(observability.NopLogger(), asker, false)

	body := `{"message":"` + strings.Repeat("a", maxChatBody) + `"}`
	rec := serveChat(h, body, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"type":"error","summary":"`+chat.MsgUnknown+`"}`, rec.Body.String())
	assert.Empty(t, asker.got.Message)
}
