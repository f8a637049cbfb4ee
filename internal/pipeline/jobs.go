package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/docbrief/internal/document"
)

// JobStatus represents the state of a summary job.
type JobStatus string

const (
	StatusQueued       JobStatus = "queued"
	StatusExtracting   JobStatus = "extracting"
	StatusSummarizing  JobStatus = "summarizing"
	StatusClassifying  JobStatus = "classifying"
	StatusSynthesizing JobStatus = "synthesizing"
	StatusEvaluating   JobStatus = "evaluating"
	StatusCompleted    JobStatus = "completed"
	StatusFailed       JobStatus = "failed"
)

// Done reports whether the status is terminal.
func (s JobStatus) Done() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job tracks one asynchronous summary run.
type Job struct {
	mu sync.Mutex

	ID          string    `json:"job_id"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	Filename    string    `json:"filename"`
	DocType     string    `json:"type"`
	SummaryType string    `json:"summary_type"`
	Evaluate    bool      `json:"evaluate"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData   []byte
	exemplar   *document.ExemplarDocument
	result     *document.GeneratedDocument
	evaluation *document.EvaluationResult
	errors     []string
}

// Progress tracks processing progress.
type Progress struct {
	Paragraphs int      `json:"paragraphs"`
	Tables     int      `json:"tables"`
	Chunks     int      `json:"chunks"`
	Sections   int      `json:"sections"`
	Errors     []string `json:"errors"`
}

// NewJob creates a queued job holding the uploaded bytes.
func NewJob(id, filename string, data []byte, exemplar *document.ExemplarDocument) *Job {
	now := time.Now()
	return &Job{
		ID:          id,
		Status:      StatusQueued,
		Phase:       "queued",
		Filename:    filename,
		ContentHash: ContentHashHex(data),
		CreatedAt:   now,
		UpdatedAt:   now,
		fileData:    data,
		exemplar:    exemplar,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.updatedAt()) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

func (j *Job) updatedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// Observe applies a pipeline event to the job's status and counters.
func (j *Job) Observe(ev Event) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Paragraphs = ev.Paragraphs
	j.Progress.Tables = ev.Tables
	j.Progress.Chunks = ev.Chunks
	j.Progress.Sections = ev.Sections
	// Status names the stage now running.
	switch ev.Stage {
	case StageExtract:
		j.Status = StatusSummarizing
	case StageSummarize, StageChunk:
		j.Status = StatusClassifying
	case StageClassify:
		j.Status = StatusSynthesizing
	}
	j.Phase = string(ev.Stage)
	j.UpdatedAt = time.Now()
}

// TakeFileData returns the raw file bytes and drops the job's reference.
func (j *Job) TakeFileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	data := j.fileData
	j.fileData = nil
	return data
}

// Exemplar returns the exemplar chosen at submission.
func (j *Job) Exemplar() *document.ExemplarDocument {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.exemplar
}

// SetResult stores the generated document.
func (j *Job) SetResult(doc *document.GeneratedDocument) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = doc
	j.Progress.Sections = len(doc.Sections)
	j.UpdatedAt = time.Now()
}

// Result returns the generated document, nil until the run succeeds.
func (j *Job) Result() *document.GeneratedDocument {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// SetEvaluation stores the evaluation of the generated document.
func (j *Job) SetEvaluation(res *document.EvaluationResult) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.evaluation = res
	j.UpdatedAt = time.Now()
}

// Evaluation returns the evaluation, nil when none was requested or it
// has not finished.
func (j *Job) Evaluation() *document.EvaluationResult {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.evaluation
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string                     `json:"job_id"`
	Status      JobStatus                  `json:"status"`
	Phase       string                     `json:"phase"`
	Filename    string                     `json:"filename"`
	DocType     string                     `json:"type,omitempty"`
	SummaryType string                     `json:"summary_type,omitempty"`
	ContentHash string                     `json:"content_hash,omitempty"`
	Progress    Progress                   `json:"progress"`
	Evaluation  *document.EvaluationResult `json:"evaluation,omitempty"`
	CreatedAt   time.Time                  `json:"created_at"`
	UpdatedAt   time.Time                  `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.Progress.Errors))
	copy(errs, j.Progress.Errors)
	return JobSnapshot{
		ID:          j.ID,
		Status:      j.Status,
		Phase:       j.Phase,
		Filename:    j.Filename,
		DocType:     j.DocType,
		SummaryType: j.SummaryType,
		ContentHash: j.ContentHash,
		Progress: Progress{
			Paragraphs: j.Progress.Paragraphs,
			Tables:     j.Progress.Tables,
			Chunks:     j.Progress.Chunks,
			Sections:   j.Progress.Sections,
			Errors:     errs,
		},
		Evaluation: j.evaluation,
		CreatedAt:  j.CreatedAt,
		UpdatedAt:  j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
