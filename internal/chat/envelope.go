package chat

import (
	"context"
	"time"

	"github.com/crimelens/crime-analytics/internal/observability"
)

// TypeError tags an envelope that carries an error summary instead of data.
const TypeError = "error"

// User-facing messages.
const (
	MsgUnknown         = "Unable to interpret request."
	MsgNoData          = "No data available."
	MsgSpecifyYear     = "Please specify a year."
	MsgCityNotFound    = "City not found"
	MsgCrimeNotFound   = "Crime not found"
	MsgNeedTwoCities   = "Please name at least two cities to compare."
	MsgNeedCrime       = "Please name a crime head, for example murder or theft."
	MsgNeedGender      = "Please say male or female."
	FallbackInsight    = "Insight generation unavailable at the moment."
	defaultInsightTime = 8 * time.Second
)

// Envelope is the uniform chat response.
type Envelope struct {
	Type    string `json:"type"`
	Title   string `json:"title,omitempty"`
	Data    any    `json:"data,omitempty"`
	Summary string `json:"summary,omitempty"`
	Insight string `json:"insight,omitempty"`
	Source  string `json:"source,omitempty"`
}

// IsError reports whether the envelope carries an error.
func (e Envelope) IsError() bool {
	return e.Type == TypeError
}

func errorEnvelope(summary string) Envelope {
	return Envelope{Type: TypeError, Summary: summary}
}

// InsightGenerator turns a question and its computed payload into prose.
type InsightGenerator interface {
	Generate(ctx context.Context, question string, payload any) (string, error)
}

// Assembler enriches envelopes with a best-effort prose insight.
type Assembler struct {
	insights InsightGenerator
	timeout  time.Duration
	logger   *observability.Logger
}

// NewAssembler creates an assembler. A nil generator disables insights.
func NewAssembler(insights InsightGenerator, timeout time.Duration, logger *observability.Logger) *Assembler {
	if timeout <= 0 {
		timeout = defaultInsightTime
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Assembler{insights: insights, timeout: timeout, logger: logger}
}

// Enrich attaches an insight to comparison and profile envelopes. Failures
// and timeouts substitute FallbackInsight; the numeric payload is returned
// unchanged either way.
func (a *Assembler) Enrich(ctx context.Context, question string, intent Intent, env Envelope) Envelope {
	if a == nil || a.insights == nil || env.IsError() {
		return env
	}
	if intent != IntentCityComparison && intent != IntentCityProfile {
		return env
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	text, err := a.insights.Generate(ctx, question, map[string]any{
		"title": env.Title,
		"data":  env.Data,
	})
	if err != nil || text == "" {
		a.logger.WithContext(ctx).Warn().
			Err(err).
			Str("intent", string(intent)).
			Dur("duration", time.Since(start)).
			Msg("Insight generation failed, using fallback")
		env.Insight = FallbackInsight
		return env
	}

	env.Insight = text
	return env
}
