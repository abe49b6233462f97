package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const extractorSystemPrompt = `You are a strict intent extraction engine for a crime analytics dashboard.

Rules:
- Extract city names.
- Extract year if mentioned.
- Extract gender if mentioned.
- If one city is mentioned, intent = city_profile.
- If two cities, intent = city_comparison.
- If highest/maximum/top, intent = highest.
- If lowest/minimum/least, intent = lowest.

Return JSON only:
{
  "intent": "",
  "cities": [],
  "years": [],
  "gender": "",
  "crime": ""
}`

// Extraction is the structured reading of a message.
type Extraction struct {
	Intent string   `json:"intent"`
	Cities []string `json:"cities"`
	Years  []string `json:"years"`
	Gender string   `json:"gender"`
	Crime  string   `json:"crime"`
}

// Extractor reads slots out of a message with the model.
type Extractor struct {
	completer Completer
}

// NewExtractor creates a new slot extractor.
func NewExtractor(c Completer) *Extractor {
	return &Extractor{completer: c}
}

// Extract returns the model's reading of message.
func (e *Extractor) Extract(ctx context.Context, message string) (Extraction, error) {
	text, err := e.completer.Complete(ctx, extractorSystemPrompt, message, 0)
	if err != nil {
		return Extraction{}, fmt.Errorf("extract slots: %w", err)
	}
	return ParseExtraction(text)
}

// ParseExtraction decodes a model reply, tolerating markdown code fences
// and numeric years.
func ParseExtraction(text string) (Extraction, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var raw struct {
		Intent string            `json:"intent"`
		Cities []string          `json:"cities"`
		Years  []json.RawMessage `json:"years"`
		Gender string            `json:"gender"`
		Crime  string            `json:"crime"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return Extraction{}, fmt.Errorf("decode extraction: %w", err)
	}

	out := Extraction{
		Intent: strings.TrimSpace(raw.Intent),
		Cities: raw.Cities,
		Gender: strings.ToLower(strings.TrimSpace(raw.Gender)),
		Crime:  strings.TrimSpace(raw.Crime),
	}
	for _, y := range raw.Years {
		var s string
		if err := json.Unmarshal(y, &s); err == nil {
			out.Years = append(out.Years, strings.TrimSpace(s))
			continue
		}
		var n int
		if err := json.Unmarshal(y, &n); err == nil {
			out.Years = append(out.Years, strconv.Itoa(n))
		}
	}
	return out, nil
}
