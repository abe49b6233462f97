package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/crimelens/crime-analytics/cmd/crime-analytics-api/middleware"
	"github.com/crimelens/crime-analytics/internal/chat"
	"github.com/crimelens/crime-analytics/internal/observability"
)

// maxChatBody bounds the size of a chat request body.
const maxChatBody = 64 << 10

// Asker answers chat messages.
type Asker interface {
	Ask(ctx context.Context, req chat.Request) chat.Answer
}

// ChatHandler serves the conversational endpoint.
type ChatHandler struct {
	logger         *observability.Logger
	engine         Asker
	insightEnabled bool
}

// NewChatHandler creates a new chat handler. Insights are generated only when
// insightEnabled is set, and a request may opt out.
func NewChatHandler(logger *observability.Logger, engine Asker, insightEnabled bool) *ChatHandler {
	return &ChatHandler{logger: logger, engine: engine, insightEnabled: insightEnabled}
}

// ChatRequestDTO is the body of POST /chat.
type ChatRequestDTO struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
	Insight   *bool  `json:"insight,omitempty"`
}

// Chat handles POST /chat. It always answers 200 with an envelope; problems
// are reported through an error envelope.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequestDTO
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBody)).Decode(&req); err != nil {
		h.logger.WithContext(r.Context()).Debug().Err(err).Msg("Malformed chat request")
		writeJSON(w, http.StatusOK, chat.Envelope{Type: chat.TypeError, Summary: chat.MsgUnknown})
		return
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = middleware.SessionFromContext(r.Context())
	}

	insight := h.insightEnabled
	if req.Insight != nil {
		insight = *req.Insight && h.insightEnabled
	}

	ans := h.engine.Ask(r.Context(), chat.Request{
		Message:   req.Message,
		SessionID: sessionID,
		Insight:   insight,
	})
	writeJSON(w, http.StatusOK, ans.Envelope)
}
