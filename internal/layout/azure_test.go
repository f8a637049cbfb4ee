package layout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const succeededBody = `{
  "status": "succeeded",
  "analyzeResult": {
    "pages": [{}, {}],
    "paragraphs": [
      {"role": "title", "content": "Annual Report", "spans": [{"offset": 0, "length": 13}]},
      {"content": "Name", "spans": [{"offset": 14, "length": 4}]},
      {"content": "Body text", "spans": [{"offset": 40, "length": 9}]},
      {"content": "no spans"}
    ],
    "tables": [
      {
        "rowCount": 2, "columnCount": 2,
        "cells": [
          {"kind": "columnHeader", "rowIndex": 0, "columnIndex": 0, "content": "Name "},
          {"kind": "columnHeader", "rowIndex": 0, "columnIndex": 1, "content": "Role"},
          {"rowIndex": 1, "columnIndex": 0, "content": "Ada"},
          {"rowIndex": 1, "columnIndex": 1, "content": "Chief"}
        ],
        "spans": [{"offset": 14, "length": 20}]
      },
      {"rowCount": 0, "columnCount": 0, "cells": [], "spans": [{"offset": 60, "length": 1}]}
    ]
  }
}`

func newDIServer(t *testing.T, pollsBeforeDone int32, final string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var polls atomic.Int32
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/documentintelligence/documentModels/prebuilt-layout:analyze", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.URL.Query().Get("api-version"); got != defaultAPIVersion {
			t.Errorf("expected api-version %q, got %q", defaultAPIVersion, got)
		}
		if r.Header.Get("Ocp-Apim-Subscription-Key") != "test-key" {
			t.Errorf("missing subscription key header")
		}
		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Base64Source == "" {
			t.Errorf("expected base64Source in body, err=%v", err)
		}
		w.Header().Set("Operation-Location", srv.URL+"/operations/op-1")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("/operations/op-1", func(w http.ResponseWriter, r *http.Request) {
		n := polls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if n <= pollsBeforeDone {
			fmt.Fprint(w, `{"status":"running"}`)
			return
		}
		fmt.Fprint(w, final)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &polls
}

func newTestClient(url string, maxPolls int) *AzureClient {
	return NewAzureClient(AzureConfig{
		Endpoint:     url + "/",
		APIKey:       "test-key",
		PollInterval: time.Millisecond,
		MaxPolls:     maxPolls,
	}, quietLogger())
}

func TestAzureClient_ExtractPollsUntilSucceeded(t *testing.T) {
	srv, polls := newDIServer(t, 2, succeededBody)
	c := newTestClient(srv.URL, 10)

	res, err := c.Extract(context.Background(), []byte("%PDF-1.7"), "report.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if polls.Load() != 3 {
		t.Errorf("expected 3 polls, got %d", polls.Load())
	}
	if res.Pages != 2 {
		t.Errorf("expected 2 pages, got %d", res.Pages)
	}
	if len(res.Paragraphs) != 3 {
		t.Fatalf("expected 3 paragraphs with spans, got %d", len(res.Paragraphs))
	}
	if res.Paragraphs[0].Role != "title" || res.Paragraphs[0].Span.End != 13 {
		t.Errorf("unexpected first paragraph: %+v", res.Paragraphs[0])
	}
	if len(res.Tables) != 1 {
		t.Fatalf("expected empty table to be skipped, got %d tables", len(res.Tables))
	}
	tbl := res.Tables[0]
	if strings.Join(tbl.Headers, ",") != "Name,Role" {
		t.Errorf("expected headers Name,Role, got %v", tbl.Headers)
	}
	if len(tbl.Rows) != 1 || tbl.Rows[0][1] != "Chief" {
		t.Errorf("unexpected rows: %v", tbl.Rows)
	}
	if tbl.Span.Start != 14 || tbl.Span.End != 34 {
		t.Errorf("expected table span [14,34), got %+v", tbl.Span)
	}

	kept := FilterParagraphs(res.Paragraphs, res.Tables)
	if len(kept) != 2 || kept[1].Text != "Body text" {
		t.Errorf("expected header cell paragraph filtered, got %+v", kept)
	}
}

func TestAzureClient_FailedOperation(t *testing.T) {
	srv, _ := newDIServer(t, 0, `{"status":"failed","error":{"code":"InvalidContent","message":"corrupt"}}`)
	c := newTestClient(srv.URL, 5)

	_, err := c.Extract(context.Background(), []byte("x"), "bad.pdf")
	if !errors.Is(err, ErrAnalyzeFailed) {
		t.Fatalf("expected ErrAnalyzeFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "InvalidContent") {
		t.Errorf("expected service error code in message, got %q", err)
	}
}

func TestAzureClient_GivesUpAfterMaxPolls(t *testing.T) {
	srv, polls := newDIServer(t, 100, succeededBody)
	c := newTestClient(srv.URL, 3)

	_, err := c.Extract(context.Background(), []byte("x"), "slow.pdf")
	if err == nil {
		t.Fatal("expected error after max polls")
	}
	if polls.Load() != 3 {
		t.Errorf("expected 3 polls, got %d", polls.Load())
	}
}

func TestAzureClient_SubmitRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()
	c := newTestClient(srv.URL, 3)

	_, err := c.Extract(context.Background(), []byte("x"), "a.pdf")
	if err == nil || !strings.Contains(err.Error(), "status 401") {
		t.Fatalf("expected status 401 error, got %v", err)
	}
}

func TestCellGrid_GrowsToFitCells(t *testing.T) {
	grid := cellGrid(diTable{
		RowCount:    1,
		ColumnCount: 1,
		Cells: []diCell{
			{RowIndex: 0, ColumnIndex: 0, Content: "a"},
			{RowIndex: 2, ColumnIndex: 1, Content: " b "},
		},
	})
	if len(grid) != 3 || len(grid[0]) != 2 {
		t.Fatalf("expected 3x2 grid, got %dx%d", len(grid), len(grid[0]))
	}
	if grid[2][1] != "b" {
		t.Errorf("expected trimmed cell %q, got %q", "b", grid[2][1])
	}
}
