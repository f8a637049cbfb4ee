package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docbrief/internal/document"
	"github.com/dgallion1/docbrief/internal/exemplar"
	"github.com/dgallion1/docbrief/internal/report"
)

type generateOptions struct {
	summaryType  string
	exemplarPath string
	docType      string
	out          string
	format       string
	evaluate     bool
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate FILE",
		Short: "Summarize a PDF or DOCX file",
		Long: `Run the full pipeline on one document and write the report.

The format is taken from --format, else from the --out extension. Without
--out the report is written to stdout as JSON unless --format says otherwise.

Examples:
  docbrief generate county.pdf --out summary.docx
  docbrief generate county.pdf --summary-type detailed --format html --out summary.html
  docbrief generate county.pdf --exemplar style.yaml --evaluate`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, log, err := root.setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			format, err := resolveFormat(opts.out, opts.format)
			if err != nil {
				return err
			}
			ex, err := loadExemplar(opts.exemplarPath, opts.summaryType)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), a.Config.RunTimeout)
			defer cancel()

			doc, err := a.Processor.ProcessFile(ctx, args[0], ex)
			if err != nil {
				return err
			}
			meta := report.Meta{
				Filename:    filepath.Base(args[0]),
				DocType:     opts.docType,
				SummaryType: ex.Name,
			}
			if opts.evaluate {
				res, err := a.Evaluator.Compare(ctx, doc, ex)
				if err != nil {
					return fmt.Errorf("evaluate: %w", err)
				}
				meta.Evaluation = res
				printScores(cmd, res)
			}

			var buf bytes.Buffer
			if err := report.Write(&buf, format, doc, meta); err != nil {
				return err
			}
			if opts.out == "" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(opts.out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			log.Info("report.written", "path", opts.out, "format", format, "sections", len(doc.Sections), "tables", len(doc.Tables))
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.summaryType, "summary-type", exemplar.FallbackPreset, "exemplar preset: "+fmt.Sprint(exemplar.Names()))
	cmd.Flags().StringVar(&opts.exemplarPath, "exemplar", "", "exemplar file (.json, .yaml); overrides --summary-type")
	cmd.Flags().StringVar(&opts.docType, "type", "", "document type shown in the report")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&opts.format, "format", "", "docx, xlsx, html or json")
	cmd.Flags().BoolVar(&opts.evaluate, "evaluate", false, "score the result against the exemplar")
	return cmd
}

// resolveFormat prefers an explicit format, then the output extension.
// Stdout defaults to JSON.
func resolveFormat(out, format string) (report.Format, error) {
	switch {
	case format != "":
		return report.ParseFormat(format)
	case out != "":
		return report.ParseFormat(filepath.Ext(out))
	}
	return report.FormatJSON, nil
}

func loadExemplar(path, summaryType string) (*document.ExemplarDocument, error) {
	if path == "" {
		return exemplar.Lookup(summaryType), nil
	}
	return exemplar.LoadFile(path, nil)
}

func printScores(cmd *cobra.Command, res *document.EvaluationResult) {
	w := cmd.ErrOrStderr()
	for _, cat := range res.Order {
		fmt.Fprintf(w, "%-16s %5.2f\n", cat, res.SectionScores[cat])
	}
	fmt.Fprintf(w, "%-16s %5.2f\n", "overall", res.OverallScore)
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
