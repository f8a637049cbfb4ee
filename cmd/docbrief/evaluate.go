package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docbrief/internal/exemplar"
	"github.com/dgallion1/docbrief/internal/report"
)

func newEvaluateCmd(root *rootOptions) *cobra.Command {
	var summaryType, exemplarPath string
	cmd := &cobra.Command{
		Use:   "evaluate GENERATED.json",
		Short: "Score a generated summary against an exemplar",
		Long: `Read a JSON report written by "docbrief generate --format json" and
ask the model to score each exemplar section from 1 to 10. Sections missing
from the report score 0. The result is printed as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			doc, meta, err := report.ReadJSON(f)
			f.Close()
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			// Default to the preset recorded in the report.
			if !cmd.Flags().Changed("summary-type") && meta.SummaryType != "" {
				summaryType = meta.SummaryType
			}
			ex, err := loadExemplar(exemplarPath, summaryType)
			if err != nil {
				return err
			}

			a, _, err := root.setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), a.Config.RunTimeout)
			defer cancel()
			res, err := a.Evaluator.Compare(ctx, doc, ex)
			if err != nil {
				return err
			}
			return writeJSON(cmd, res)
		},
	}
	cmd.Flags().StringVar(&summaryType, "summary-type", exemplar.FallbackPreset, "exemplar preset")
	cmd.Flags().StringVar(&exemplarPath, "exemplar", "", "exemplar file (.json, .yaml); overrides --summary-type")
	return cmd
}
