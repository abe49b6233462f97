package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/crimelens/crime-analytics/internal/app"
	"github.com/crimelens/crime-analytics/internal/chat"
	"github.com/crimelens/crime-analytics/pkg/client"
)

// backend answers CLI commands either from locally loaded files or from a
// running API.
type backend interface {
	Ask(ctx context.Context, message, sessionID string, insight bool) (*client.Envelope, error)
	Cities(ctx context.Context, year string) ([]string, error)
	YearTrend(ctx context.Context) (map[string]int64, error)
	Close() error
}

func openBackend(ctx context.Context) (backend, error) {
	if serverURL != "" {
		c, err := client.NewClient(client.ClientConfig{BaseURL: serverURL})
		if err != nil {
			return nil, err
		}
		return &remoteBackend{client: c}, nil
	}

	loaderCfg := app.LoaderConfig(cfg)
	bar := ui.ProgressBar(loaderCfg.Files(), "Loading datasets")

	opts := app.Options{}
	if bar != nil {
		opts.OnFile = func() { bar.Add(1) }
	}
	a, err := app.New(ctx, cfg, logger, opts)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return nil, err
	}
	return &localBackend{app: a}, nil
}

type localBackend struct {
	app *app.App
}

func (b *localBackend) Ask(ctx context.Context, message, sessionID string, insight bool) (*client.Envelope, error) {
	ans := b.app.Engine.Ask(ctx, chat.Request{Message: message, SessionID: sessionID, Insight: insight})
	return toClientEnvelope(ans.Envelope)
}

func (b *localBackend) Cities(ctx context.Context, year string) ([]string, error) {
	return b.app.Analytics.Cities(year)
}

func (b *localBackend) YearTrend(ctx context.Context) (map[string]int64, error) {
	return b.app.Analytics.YearTrend()
}

func (b *localBackend) Close() error {
	return b.app.Close()
}

func toClientEnvelope(env chat.Envelope) (*client.Envelope, error) {
	raw, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	var out client.Envelope
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return &out, nil
}

type remoteBackend struct {
	client *client.Client
}

// Ask ignores sessionID: the server assigns one and the client echoes it.
func (b *remoteBackend) Ask(ctx context.Context, message, sessionID string, insight bool) (*client.Envelope, error) {
	return b.client.Chat(ctx, client.ChatRequest{Message: message, Insight: &insight})
}

func (b *remoteBackend) Cities(ctx context.Context, year string) ([]string, error) {
	return b.client.Cities(ctx, year)
}

func (b *remoteBackend) YearTrend(ctx context.Context) (map[string]int64, error) {
	return b.client.YearTrend(ctx)
}

func (b *remoteBackend) Close() error {
	return nil
}
