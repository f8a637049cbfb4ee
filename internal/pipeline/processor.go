package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/docbrief/internal/chunker"
	"github.com/dgallion1/docbrief/internal/document"
	"github.com/dgallion1/docbrief/internal/layout"
	"github.com/dgallion1/docbrief/internal/llm"
	"github.com/dgallion1/docbrief/internal/section"
)

// Stage names a step of a pipeline run.
type Stage string

const (
	StageRead       Stage = "read"
	StageExtract    Stage = "extract"
	StageSummarize  Stage = "summarize"
	StageChunk      Stage = "chunk"
	StageClassify   Stage = "classify"
	StageSynthesize Stage = "synthesize"
	StageEvaluate   Stage = "evaluate"
)

// Failure is the error returned for any failed run. It names the stage and
// the document so callers can report which input broke.
type Failure struct {
	Stage    Stage
	Document string
	Err      error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", f.Document, f.Stage, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Options tunes a Processor. Zero values give the baseline behavior.
type Options struct {
	Runner     section.Runner
	Categories *document.CategorySet
	SampleRows int
	Chunking   chunker.Config
}

// Event reports progress after a stage completes.
type Event struct {
	Stage      Stage
	Paragraphs int
	Tables     int
	Chunks     int
	Sections   int
}

// Processor runs extract, filter, summarize, chunk, classify and synthesize
// for one document at a time. It holds no per-run state.
type Processor struct {
	extractor   layout.Extractor
	summarizer  *section.Summarizer
	classifier  *section.Classifier
	synthesizer *section.Synthesizer
	chunking    chunker.Config
	log         *slog.Logger
}

func NewProcessor(extractor layout.Extractor, completer llm.Completer, opts Options, log *slog.Logger) *Processor {
	if log == nil {
		log = slog.Default()
	}
	runner := opts.Runner
	if runner == nil {
		runner = section.Sequential{}
	}
	return &Processor{
		extractor:   extractor,
		summarizer:  section.NewSummarizer(completer, runner, opts.SampleRows, log),
		classifier:  section.NewClassifier(completer, opts.Categories, runner, log),
		synthesizer: section.NewSynthesizer(completer, runner, log),
		chunking:    opts.Chunking,
		log:         log,
	}
}

// ProcessDocument turns document bytes into a GeneratedDocument. exemplar
// may be nil. Errors are *Failure.
func (p *Processor) ProcessDocument(ctx context.Context, data []byte, name string, exemplar *document.ExemplarDocument) (*document.GeneratedDocument, error) {
	return p.run(ctx, data, name, exemplar, nil)
}

// ProcessFile reads path and processes it. The file contents are not kept
// past extraction.
func (p *Processor) ProcessFile(ctx context.Context, path string, exemplar *document.ExemplarDocument) (*document.GeneratedDocument, error) {
	name := filepath.Base(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Failure{Stage: StageRead, Document: name, Err: err}
	}
	return p.run(ctx, data, name, exemplar, nil)
}

func (p *Processor) run(ctx context.Context, data []byte, name string, exemplar *document.ExemplarDocument, observe func(Event)) (*document.GeneratedDocument, error) {
	if observe == nil {
		observe = func(Event) {}
	}
	log := p.log.With("doc", name, "run_id", uuid.NewString())
	start := time.Now()
	fail := func(stage Stage, err error) error {
		log.Error("pipeline.failed", "stage", stage, "error", err)
		return &Failure{Stage: stage, Document: name, Err: err}
	}

	res, err := p.extractor.Extract(ctx, data, name)
	if err != nil {
		return nil, fail(StageExtract, err)
	}
	paragraphs := layout.FilterParagraphs(res.Paragraphs, res.Tables)
	rawTables := layout.NonEmptyTables(res.Tables)
	log.Info("pipeline.extracted",
		"pages", res.Pages,
		"paragraphs", len(res.Paragraphs),
		"kept_paragraphs", len(paragraphs),
		"tables", len(rawTables),
	)
	observe(Event{Stage: StageExtract, Paragraphs: len(paragraphs), Tables: len(rawTables)})

	tables, err := p.summarizer.SummarizeAll(ctx, rawTables)
	if err != nil {
		return nil, fail(StageSummarize, err)
	}
	observe(Event{Stage: StageSummarize, Paragraphs: len(paragraphs), Tables: len(tables)})

	chunks := chunker.Build(paragraphs, tables, p.chunking)
	observe(Event{Stage: StageChunk, Paragraphs: len(paragraphs), Tables: len(tables), Chunks: len(chunks)})

	grouped, err := p.classifier.ClassifyAll(ctx, chunks, tables)
	if err != nil {
		return nil, fail(StageClassify, err)
	}
	observe(Event{Stage: StageClassify, Paragraphs: len(paragraphs), Tables: len(tables), Chunks: len(chunks)})

	doc, err := p.synthesizer.SynthesizeAll(ctx, grouped, exemplar, tables)
	if err != nil {
		return nil, fail(StageSynthesize, err)
	}
	observe(Event{Stage: StageSynthesize, Paragraphs: len(paragraphs), Tables: len(tables), Chunks: len(chunks), Sections: len(doc.Sections)})

	log.Info("pipeline.done",
		"chunks", len(chunks),
		"sections", len(doc.Sections),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return doc, nil
}
