package main

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dgallion1/docbrief/internal/app"
	"github.com/dgallion1/docbrief/internal/config"
)

type rootOptions struct {
	cfgFile  string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "docbrief",
		Short: "Summarize long-form reports into categorized narratives",
		Long: `docbrief extracts paragraphs and tables from a report, classifies each
chunk into Water, Fire, Administrative or Other, and writes one narrative
per category in the style of an exemplar document.

Configuration comes from the environment (and .env), optionally layered
over a YAML file given with --config.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "YAML config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")

	cmd.AddCommand(newGenerateCmd(opts), newEvaluateCmd(opts), newServeCmd(opts))
	return cmd
}

// setup loads configuration and builds the app. CLI logs go to stderr so
// stdout can carry a report.
func (o *rootOptions) setup(cmd *cobra.Command) (*app.App, *slog.Logger, error) {
	_ = godotenv.Load()

	cfg, err := config.Load(o.cfgFile)
	if err != nil {
		return nil, nil, err
	}
	if o.logLevel != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(o.logLevel)); err != nil {
			return nil, nil, err
		}
	}
	log := app.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	a, err := app.New(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return a, log, nil
}
