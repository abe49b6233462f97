package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

const insightSystemPrompt = "You are a crime analytics expert."

// Completer is the subset of Client used by the generators.
type Completer interface {
	Complete(ctx context.Context, system, user string, temperature float64) (string, error)
}

// InsightGenerator writes a short prose explanation of computed numbers.
type InsightGenerator struct {
	completer Completer
}

// NewInsightGenerator creates a new insight generator.
func NewInsightGenerator(c Completer) *InsightGenerator {
	return &InsightGenerator{completer: c}
}

// Generate asks for an explanation, a key insight and one follow-up
// suggestion for the question and its payload.
func (g *InsightGenerator) Generate(ctx context.Context, question string, payload any) (string, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	prompt := fmt.Sprintf(`User Question:
%s

Data:
%s

Provide:
1. Clear explanation
2. Key insight
3. One smart follow-up suggestion
Keep it professional.`, question, data)

	text, err := g.completer.Complete(ctx, insightSystemPrompt, prompt, 0.3)
	if err != nil {
		return "", fmt.Errorf("generate insight: %w", err)
	}
	return text, nil
}
