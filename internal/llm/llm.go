package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Completer sends one prompt to a language model and returns the text reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// StatusError is a model call rejected by the provider with an HTTP status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("model call failed (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("model call failed (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// Temporary reports whether the status is worth retrying.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

type instrumented struct {
	next  Completer
	stats *Stats
	log   *slog.Logger
}

// Instrument wraps c so every call is timed into stats and logged.
func Instrument(c Completer, stats *Stats, log *slog.Logger) Completer {
	if log == nil {
		log = slog.Default()
	}
	return &instrumented{next: c, stats: stats, log: log}
}

func (i *instrumented) Complete(ctx context.Context, prompt string) (string, error) {
	reqID := uuid.NewString()
	start := time.Now()
	reply, err := i.next.Complete(ctx, prompt)
	elapsed := time.Since(start)
	if i.stats != nil {
		i.stats.Record(elapsed.Milliseconds(), err)
	}
	if err != nil {
		i.log.Warn("llm.call.failed", "req_id", reqID, "elapsed_ms", elapsed.Milliseconds(), "error", err)
		return "", err
	}
	i.log.Debug("llm.call.ok",
		"req_id", reqID,
		"prompt_chars", len(prompt),
		"reply_chars", len(reply),
		"elapsed_ms", elapsed.Milliseconds(),
	)
	return reply, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
