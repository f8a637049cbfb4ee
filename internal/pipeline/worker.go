package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dgallion1/docbrief/internal/evaluate"
)

// Worker processes a single summary job.
type Worker struct {
	processor  *Processor
	evaluator  *evaluate.Evaluator
	log        *slog.Logger
	runTimeout time.Duration
}

func NewWorker(processor *Processor, evaluator *evaluate.Evaluator, log *slog.Logger, runTimeout time.Duration) *Worker {
	return &Worker{
		processor:  processor,
		evaluator:  evaluator,
		log:        log,
		runTimeout: runTimeout,
	}
}

// Process runs the pipeline for a job and, when asked, evaluates the result.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc", job.Filename)
	if w.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.runTimeout)
		defer cancel()
	}

	job.SetStatus(StatusExtracting, string(StageExtract))
	exemplar := job.Exemplar()
	doc, err := w.processor.run(ctx, job.TakeFileData(), job.Filename, exemplar, job.Observe)
	if err != nil {
		phase := "failed"
		var f *Failure
		if errors.As(err, &f) {
			phase = string(f.Stage)
		}
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, phase)
		return
	}
	job.SetResult(doc)

	if job.Evaluate && w.evaluator != nil {
		job.SetStatus(StatusEvaluating, string(StageEvaluate))
		res, err := w.evaluator.Compare(ctx, doc, exemplar)
		if err != nil {
			log.Error("evaluation failed", "error", err)
			job.AddError((&Failure{Stage: StageEvaluate, Document: job.Filename, Err: err}).Error())
			job.SetStatus(StatusFailed, string(StageEvaluate))
			return
		}
		job.SetEvaluation(res)
	}

	log.Info("job.completed", "sections", len(doc.Sections))
	job.SetStatus(StatusCompleted, "done")
}
