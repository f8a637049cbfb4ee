package layout

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/dgallion1/docbrief/internal/document"
)

const (
	defaultAPIVersion   = "2024-11-30"
	defaultLayoutModel  = "prebuilt-layout"
	defaultPollInterval = 2 * time.Second
	defaultMaxPolls     = 150
)

// ErrAnalyzeFailed is returned when the service reports a failed operation.
var ErrAnalyzeFailed = errors.New("document analysis failed")

var errOperationRunning = errors.New("analyze operation still running")

// AzureConfig configures the Document Intelligence client.
type AzureConfig struct {
	Endpoint     string
	APIKey       string
	APIVersion   string        // default 2024-11-30
	Model        string        // default prebuilt-layout
	PollInterval time.Duration // delay between status polls
	MaxPolls     int           // give up after this many polls
	HTTPClient   *http.Client  // optional (tests)
}

// AzureClient calls the Azure AI Document Intelligence layout model.
type AzureClient struct {
	cfg        AzureConfig
	httpClient *http.Client
	log        *slog.Logger
}

func NewAzureClient(cfg AzureConfig, log *slog.Logger) *AzureClient {
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}
	if cfg.Model == "" {
		cfg.Model = defaultLayoutModel
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.MaxPolls <= 0 {
		cfg.MaxPolls = defaultMaxPolls
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if log == nil {
		log = slog.Default()
	}
	return &AzureClient{cfg: cfg, httpClient: httpClient, log: log}
}

type analyzeRequest struct {
	Base64Source string `json:"base64Source"`
}

type diSpan struct {
	Offset int `json:"offset"`
	Length int `json:"length"`
}

type diParagraph struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Spans   []diSpan `json:"spans"`
}

type diCell struct {
	Kind        string `json:"kind"`
	RowIndex    int    `json:"rowIndex"`
	ColumnIndex int    `json:"columnIndex"`
	Content     string `json:"content"`
}

type diTable struct {
	RowCount    int      `json:"rowCount"`
	ColumnCount int      `json:"columnCount"`
	Cells       []diCell `json:"cells"`
	Spans       []diSpan `json:"spans"`
}

type analyzeResult struct {
	Pages      []json.RawMessage `json:"pages"`
	Paragraphs []diParagraph     `json:"paragraphs"`
	Tables     []diTable         `json:"tables"`
}

type operationResponse struct {
	Status        string         `json:"status"`
	AnalyzeResult *analyzeResult `json:"analyzeResult"`
	Error         *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Extract submits the document and polls the analyze operation to completion.
func (c *AzureClient) Extract(ctx context.Context, data []byte, filename string) (*Result, error) {
	start := time.Now()
	opURL, err := c.submit(ctx, data)
	if err != nil {
		return nil, err
	}
	c.log.Info("layout.analyze.submitted", "doc", filename, "bytes", len(data))

	op, err := retry.DoWithData(
		func() (*operationResponse, error) {
			return c.poll(ctx, opURL)
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.cfg.MaxPolls)),
		retry.Delay(c.cfg.PollInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, errOperationRunning)
		}),
	)
	if errors.Is(err, errOperationRunning) {
		return nil, fmt.Errorf("analyze %s: not finished after %d polls", filename, c.cfg.MaxPolls)
	}
	if err != nil {
		return nil, err
	}

	res := convertResult(op.AnalyzeResult)
	c.log.Info("layout.analyze.ok",
		"doc", filename,
		"paragraphs", len(res.Paragraphs),
		"tables", len(res.Tables),
		"pages", res.Pages,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (c *AzureClient) submit(ctx context.Context, data []byte) (string, error) {
	body, err := json.Marshal(analyzeRequest{Base64Source: base64.StdEncoding.EncodeToString(data)})
	if err != nil {
		return "", fmt.Errorf("marshal analyze request: %w", err)
	}
	u := fmt.Sprintf("%s/documentintelligence/documentModels/%s:analyze?api-version=%s",
		strings.TrimRight(c.cfg.Endpoint, "/"), url.PathEscape(c.cfg.Model), url.QueryEscape(c.cfg.APIVersion))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("analyze document: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("analyze document: status %d: %s", resp.StatusCode, string(respBody))
	}
	opURL := resp.Header.Get("Operation-Location")
	if opURL == "" {
		return "", fmt.Errorf("analyze document: missing Operation-Location header")
	}
	return opURL, nil
}

func (c *AzureClient) poll(ctx context.Context, opURL string) (*operationResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, opURL, nil)
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("poll analyze result: %w", err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, fmt.Errorf("read analyze result: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("poll analyze result: status %d: %s", resp.StatusCode, truncate(string(respBody), 1024))
	}

	var op operationResponse
	if err := json.Unmarshal(respBody, &op); err != nil {
		return nil, fmt.Errorf("decode analyze result: %w", err)
	}
	switch strings.ToLower(op.Status) {
	case "succeeded":
		if op.AnalyzeResult == nil {
			return nil, fmt.Errorf("%w: empty analyzeResult", ErrAnalyzeFailed)
		}
		return &op, nil
	case "failed", "canceled":
		if op.Error != nil {
			return nil, fmt.Errorf("%w: %s: %s", ErrAnalyzeFailed, op.Error.Code, op.Error.Message)
		}
		return nil, fmt.Errorf("%w: status %s", ErrAnalyzeFailed, op.Status)
	default:
		return nil, errOperationRunning
	}
}

func convertResult(ar *analyzeResult) *Result {
	res := &Result{Pages: len(ar.Pages)}
	for _, p := range ar.Paragraphs {
		if len(p.Spans) == 0 {
			continue
		}
		res.Paragraphs = append(res.Paragraphs, document.RawParagraph{
			Text: p.Content,
			Role: p.Role,
			Span: document.SpanFromOffset(p.Spans[0].Offset, p.Spans[0].Length),
		})
	}
	for _, t := range ar.Tables {
		if len(t.Cells) == 0 || len(t.Spans) == 0 {
			continue
		}
		grid := cellGrid(t)
		res.Tables = append(res.Tables, document.RawTable{
			Headers: grid[0],
			Rows:    grid[1:],
			Span:    document.SpanFromOffset(t.Spans[0].Offset, t.Spans[0].Length),
		})
	}
	return res
}

// cellGrid lays cells out by row/column index. Row 0 is the header row.
func cellGrid(t diTable) [][]string {
	rows, cols := t.RowCount, t.ColumnCount
	for _, cell := range t.Cells {
		if cell.RowIndex+1 > rows {
			rows = cell.RowIndex + 1
		}
		if cell.ColumnIndex+1 > cols {
			cols = cell.ColumnIndex + 1
		}
	}
	if rows == 0 {
		rows = 1
	}
	grid := make([][]string, rows)
	for i := range grid {
		grid[i] = make([]string, cols)
	}
	for _, cell := range t.Cells {
		if cell.RowIndex < 0 || cell.ColumnIndex < 0 {
			continue
		}
		grid[cell.RowIndex][cell.ColumnIndex] = strings.TrimSpace(cell.Content)
	}
	return grid
}

// Close releases idle connections.
func (c *AzureClient) Close() {
	c.httpClient.CloseIdleConnections()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
