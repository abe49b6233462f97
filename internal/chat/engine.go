// Package chat turns free-text questions into one aggregate query over the
// crime tables and wraps the result in a uniform envelope.
package chat

import (
	"context"
	"strings"
	"time"

	"github.com/crimelens/crime-analytics/internal/dataset"
	"github.com/crimelens/crime-analytics/internal/llm"
	"github.com/crimelens/crime-analytics/internal/observability"
)

// Hinter reads slots out of a message with an external model.
type Hinter interface {
	Extract(ctx context.Context, message string) (llm.Extraction, error)
}

// Options configures an Engine. Every field is optional.
type Options struct {
	Source         string
	Memory         *MemoryStore
	Hinter         Hinter
	HintTimeout    time.Duration
	Insights       InsightGenerator
	InsightTimeout time.Duration
	Logger         *observability.Logger
}

// Request is one chat message.
type Request struct {
	Message   string
	SessionID string
	Insight   bool
}

// Resolution records how a message was read.
type Resolution struct {
	Dataset dataset.Name
	Intent  Intent
	Slots   Slots
}

// Answer is the envelope plus the resolution that produced it.
type Answer struct {
	Envelope   Envelope
	Resolution Resolution
}

// Engine runs the extract, classify, dispatch and assemble pipeline.
type Engine struct {
	provider    dataset.Provider
	extractor   *Extractor
	classifier  *Classifier
	router      *Router
	dispatcher  *Dispatcher
	assembler   *Assembler
	memory      *MemoryStore
	hinter      Hinter
	hintTimeout time.Duration
	logger      *observability.Logger
}

// NewEngine creates a chat engine over provider and agg.
func NewEngine(provider dataset.Provider, agg Aggregator, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = observability.NopLogger()
	}
	hintTimeout := opts.HintTimeout
	if hintTimeout <= 0 {
		hintTimeout = 5 * time.Second
	}

	return &Engine{
		provider:    provider,
		extractor:   NewExtractor(),
		classifier:  NewClassifier(),
		router:      NewRouter(),
		dispatcher:  NewDispatcher(agg, opts.Source),
		assembler:   NewAssembler(opts.Insights, opts.InsightTimeout, logger),
		memory:      opts.Memory,
		hinter:      opts.Hinter,
		hintTimeout: hintTimeout,
		logger:      logger,
	}
}

// Ask answers one message. It never fails: problems are reported through an
// error envelope.
func (e *Engine) Ask(ctx context.Context, req Request) Answer {
	start := time.Now()
	logger := e.logger.WithContext(ctx).WithSession(req.SessionID)

	msg := normalizeMessage(req.Message)
	if msg == "" {
		return Answer{
			Envelope:   errorEnvelope(MsgUnknown),
			Resolution: Resolution{Dataset: dataset.City, Intent: IntentUnknown},
		}
	}

	hint, hinted := e.hint(ctx, msg, logger)

	crime := e.extractor.Crime(msg)
	if crime == "" && hinted {
		crime = e.extractor.Crime(strings.ToLower(hint.Crime))
	}
	name := e.router.Route(msg, crime)
	vocab := e.vocabulary(name, msg)
	slots := e.extractor.Extract(msg, vocab)
	if hinted {
		slots = e.extractor.ApplyHint(slots, hint, vocab)
	}

	res, env := e.resolve(ctx, req.SessionID, msg, Resolution{Dataset: name, Intent: IntentDatasetOverride, Slots: slots}, logger)
	if req.Insight {
		env = e.assembler.Enrich(ctx, req.Message, res.Intent, env)
	}

	logger.Info().
		Str("dataset", string(res.Dataset)).
		Str("intent", string(res.Intent)).
		Strs("years", res.Slots.Years).
		Strs("cities", res.Slots.Cities).
		Str("type", env.Type).
		Dur("duration", time.Since(start)).
		Msg("Chat message answered")

	return Answer{Envelope: env, Resolution: res}
}

// resolve classifies and dispatches a routed message. Arrests-table
// messages with a session run under the session lock so recall, dispatch
// and remember see one consistent state.
func (e *Engine) resolve(ctx context.Context, sessionID, msg string, res Resolution, logger *observability.Logger) (Resolution, Envelope) {
	if res.Dataset != dataset.City {
		return res, e.dispatch(res)
	}

	res.Intent = e.classifier.Classify(msg, res.Slots)
	if e.memory == nil || sessionID == "" {
		return res, e.dispatch(res)
	}

	unlock := e.memory.Lock(sessionID)
	defer unlock()

	res = e.recall(ctx, sessionID, msg, res, logger)
	env := e.dispatch(res)
	if !env.IsError() {
		e.remember(ctx, sessionID, res, logger)
	}
	return res, env
}

func (e *Engine) dispatch(res Resolution) Envelope {
	return e.dispatcher.Dispatch(Query{Dataset: res.Dataset, Intent: res.Intent, Slots: res.Slots})
}

// hint asks the external extractor for a reading of msg. Failures are
// logged and ignored.
func (e *Engine) hint(ctx context.Context, msg string, logger *observability.Logger) (llm.Extraction, bool) {
	if e.hinter == nil {
		return llm.Extraction{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, e.hintTimeout)
	defer cancel()

	ext, err := e.hinter.Extract(ctx, msg)
	if err != nil {
		logger.Warn().Err(err).Msg("Slot hint unavailable, using keyword rules only")
		return llm.Extraction{}, false
	}
	return ext, true
}

// vocabulary returns the years of a table family and, for the arrests
// table, the city labels of the first year the message resolves to.
func (e *Engine) vocabulary(name dataset.Name, msg string) Vocabulary {
	vocab := Vocabulary{Years: e.provider.Years(name)}
	if name != dataset.City {
		return vocab
	}

	years, _ := e.extractor.Years(msg, vocab.Years)
	if len(years) == 0 {
		return vocab
	}
	t, err := e.provider.Table(name, years[0])
	if err != nil {
		return vocab
	}
	for _, r := range t.CityRows() {
		vocab.Cities = append(vocab.Cities, t.City(r))
	}
	return vocab
}

// recall back-fills what the message left open from the session state.
func (e *Engine) recall(ctx context.Context, sessionID, msg string, res Resolution, logger *observability.Logger) Resolution {
	st, err := e.memory.Load(ctx, sessionID)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to load chat memory")
		return res
	}

	// A message with neither a question type nor a city continues the last
	// question as asked, cities included.
	if res.Intent == IntentUnknown && len(res.Slots.Cities) == 0 {
		switch {
		case st.Intent != "":
			res.Intent = st.Intent
			res.Slots.Cities = append([]string(nil), st.Cities...)
		case len(st.Cities) > 0:
			res.Slots.Cities = []string{st.Cities[0]}
			res.Intent = e.classifier.Classify(msg, res.Slots)
		}
	}
	if !res.Slots.YearsExplicit && res.Intent.needsSingleYear() &&
		st.Year != "" && dataset.HasYear(e.provider, dataset.City, st.Year) {
		res.Slots.Years = []string{st.Year}
	}

	return res
}

// remember stores whatever the message newly resolved.
func (e *Engine) remember(ctx context.Context, sessionID string, res Resolution, logger *observability.Logger) {
	st, err := e.memory.Load(ctx, sessionID)
	if err != nil {
		st = State{}
	}

	if len(res.Slots.Cities) > 0 {
		n := min(len(res.Slots.Cities), maxCompared)
		st.Cities = append([]string(nil), res.Slots.Cities[:n]...)
	}
	if res.Slots.YearsExplicit && len(res.Slots.Years) > 0 {
		st.Year = res.Slots.Years[0]
	}
	if res.Intent != IntentUnknown {
		st.Intent = res.Intent
	}

	if err := e.memory.Save(ctx, sessionID, st); err != nil {
		logger.Warn().Err(err).Msg("Failed to save chat memory")
	}
}
