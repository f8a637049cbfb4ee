package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dgallion1/docbrief/internal/document"
	"github.com/dgallion1/docbrief/internal/exemplar"
	"github.com/dgallion1/docbrief/internal/pipeline"
	"github.com/dgallion1/docbrief/internal/report"
)

// errUpload marks request problems that map to a 4xx response.
type errUpload struct {
	code int
	msg  string
}

func (e *errUpload) Error() string { return e.msg }

type upload struct {
	filename    string
	data        []byte
	docType     string
	summaryType string
}

// readUpload parses the multipart form and reads the "file" part. The
// caller must call r.MultipartForm.RemoveAll when err is nil.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	// Extra 1MB for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &errUpload{http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)}
		}
		return nil, &errUpload{http.StatusBadRequest, "invalid multipart form: " + err.Error()}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		r.MultipartForm.RemoveAll()
		return nil, &errUpload{http.StatusBadRequest, "file is required: " + err.Error()}
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		r.MultipartForm.RemoveAll()
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		r.MultipartForm.RemoveAll()
		return nil, &errUpload{http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)}
	}
	return &upload{
		filename:    sanitizeFilename(header.Filename),
		data:        data,
		docType:     strings.TrimSpace(r.FormValue("type")),
		summaryType: strings.TrimSpace(r.FormValue("summary_type")),
	}, nil
}

func writeUploadError(w http.ResponseWriter, err error) {
	var ue *errUpload
	if errors.As(err, &ue) {
		jsonError(w, ue.msg, ue.code)
		return
	}
	jsonError(w, err.Error(), http.StatusInternalServerError)
}

// handleGenerateSummary runs the pipeline synchronously and returns a DOCX
// attachment. An unknown summary type falls back to the brief exemplar.
func (s *Server) handleGenerateSummary(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		writeUploadError(w, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	if up.docType == "" || up.summaryType == "" {
		jsonError(w, "type and summary_type are required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if s.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RunTimeout)
		defer cancel()
	}

	doc, err := s.orchestrator.Processor().ProcessDocument(ctx, up.data, up.filename, exemplar.Lookup(up.summaryType))
	if err != nil {
		s.log.Error("generate_summary failed", "doc", up.filename, "error", err)
		jsonError(w, err.Error(), statusFor(err))
		return
	}

	meta := report.Meta{Filename: up.filename, DocType: up.docType, SummaryType: up.summaryType}
	s.writeReport(w, report.FormatDOCX, doc, meta)
}

// handleCreateSummary queues an asynchronous run. An optional "exemplar"
// file part (JSON or YAML) overrides the summary_type preset.
func (s *Server) handleCreateSummary(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		writeUploadError(w, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	ex, err := s.formExemplar(r, up.summaryType)
	if err != nil {
		jsonError(w, "invalid exemplar: "+err.Error(), http.StatusBadRequest)
		return
	}

	job := pipeline.NewJob(uuid.NewString(), up.filename, up.data, ex)
	job.DocType = up.docType
	job.SummaryType = up.summaryType
	if job.SummaryType == "" {
		job.SummaryType = ex.Name
	}
	job.Evaluate = r.FormValue("evaluate") == "true"
	job.ContentHash = pipeline.ContentHashHex(up.data)[:16]

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":     job.ID,
		"status":     pipeline.StatusQueued,
		"poll_url":   fmt.Sprintf("/api/summaries/%s/status", job.ID),
		"report_url": fmt.Sprintf("/api/summaries/%s/report", job.ID),
	})
}

func (s *Server) formExemplar(r *http.Request, summaryType string) (*document.ExemplarDocument, error) {
	fhs := r.MultipartForm.File["exemplar"]
	if len(fhs) == 0 {
		return exemplar.Lookup(summaryType), nil
	}
	return readExemplarPart(fhs[0], s.categories)
}

func readExemplarPart(fh *multipart.FileHeader, set *document.CategorySet) (*document.ExemplarDocument, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	name := fh.Filename
	if filepath.Ext(name) == "" {
		name += ".json"
	}
	return exemplar.Read(f, name, set)
}

func (s *Server) handleSummaryStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleSummaryReport(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	snap := job.Snapshot()
	if snap.Status != pipeline.StatusCompleted {
		jsonError(w, fmt.Sprintf("job is %s", snap.Status), http.StatusConflict)
		return
	}
	meta := report.Meta{
		Filename:    snap.Filename,
		DocType:     snap.DocType,
		SummaryType: snap.SummaryType,
		Evaluation:  snap.Evaluation,
	}
	s.writeReport(w, format, job.Result(), meta)
}

// writeReport renders into memory first so a render failure can still be
// reported as JSON.
func (s *Server) writeReport(w http.ResponseWriter, format report.Format, doc *document.GeneratedDocument, meta report.Meta) {
	var buf bytes.Buffer
	if err := report.Write(&buf, format, doc, meta); err != nil {
		s.log.Error("report render failed", "doc", meta.Filename, "format", format, "error", err)
		jsonError(w, "failed to render report", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
