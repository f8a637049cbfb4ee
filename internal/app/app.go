// Package app wires configuration into the extractor, model client and
// pipeline shared by the server and the CLI.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dgallion1/docbrief/internal/chunker"
	"github.com/dgallion1/docbrief/internal/config"
	"github.com/dgallion1/docbrief/internal/evaluate"
	"github.com/dgallion1/docbrief/internal/layout"
	"github.com/dgallion1/docbrief/internal/llm"
	"github.com/dgallion1/docbrief/internal/pipeline"
	"github.com/dgallion1/docbrief/internal/section"
)

// App holds the long-lived components built from a Config.
type App struct {
	Config    config.Config
	Extractor layout.Extractor
	Completer llm.Completer
	Stats     *llm.Stats
	Model     string
	Processor *pipeline.Processor
	Evaluator *evaluate.Evaluator

	log     *slog.Logger
	closers []func()
}

// NewLogger returns the JSON logger used by both binaries.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// New validates cfg and builds every component.
func New(cfg config.Config, log *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	a := &App{Config: cfg, log: log}

	switch cfg.Extractor {
	case config.ExtractorAzure:
		az := layout.NewAzureClient(layout.AzureConfig{
			Endpoint:     cfg.DIEndpoint,
			APIKey:       cfg.DIAPIKey,
			APIVersion:   cfg.DIAPIVersion,
			PollInterval: cfg.DIPollInterval,
			MaxPolls:     cfg.DIMaxPolls,
		}, log)
		a.Extractor = az
		a.closers = append(a.closers, az.Close)
	default:
		a.Extractor = layout.NewLocalExtractor(log)
	}

	client := llm.NewOpenAIClient(llm.OpenAIConfig{
		APIKey:          cfg.OpenAIAPIKey,
		Model:           cfg.OpenAIModel,
		BaseURL:         cfg.OpenAIBaseURL,
		AzureEndpoint:   cfg.OpenAIAzureEndpoint,
		AzureAPIVersion: cfg.OpenAIAzureAPIVersion,
		Temperature:     cfg.Temperature,
		MaxRetries:      cfg.LLMMaxRetries,
		Timeout:         cfg.LLMTimeout,
	})
	a.Model = client.Model()
	a.Stats = llm.NewStats(time.Hour)
	a.Completer = llm.Instrument(client, a.Stats, log)

	runner := section.NewRunner(cfg.MaxConcurrentCalls)
	a.Processor = pipeline.NewProcessor(a.Extractor, a.Completer, pipeline.Options{
		Runner:     runner,
		SampleRows: cfg.SampleRows,
		Chunking:   chunker.Config{MaxTokens: cfg.MaxChunkTokens, SkipRoles: cfg.SkipRoles},
	}, log)
	a.Evaluator = evaluate.NewEvaluator(a.Completer, runner, log)

	log.Info("app.ready",
		"extractor", cfg.Extractor,
		"model", a.Model,
		"azure_openai", cfg.OpenAIAzureEndpoint != "",
		"max_concurrent_calls", cfg.MaxConcurrentCalls,
	)
	return a, nil
}

// Orchestrator returns a job pipeline over the app's processor. The caller
// starts and stops it.
func (a *App) Orchestrator() *pipeline.Orchestrator {
	return pipeline.NewOrchestrator(a.Config, a.Processor, a.Evaluator, a.log)
}

// Close releases idle connections held by the clients.
func (a *App) Close() {
	for _, c := range a.closers {
		c()
	}
}
