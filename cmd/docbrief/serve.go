package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docbrief/internal/api"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the docbrief HTTP API with the async job workers.

Endpoints:
  POST /generate_summary                 synchronous DOCX summary
  POST /api/summaries                    queue a summary job
  GET  /api/summaries/{id}/status        job progress
  GET  /api/summaries/{id}/report        rendered report (?format=)
  POST /api/evaluations                  score a generated document`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, log, err := root.setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			cfg := a.Config
			if port != "" {
				cfg.Port = port
			}

			ctx := cmd.Context()
			orch := a.Orchestrator()
			orch.Start(ctx)
			defer orch.Stop()

			srv := api.NewServer(orch, api.Options{Stats: a.Stats, Model: a.Model}, log, cfg)
			return api.ListenAndServe(ctx, ":"+cfg.Port, srv, cfg.RunTimeout+30*time.Second, log)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "override PORT")
	return cmd
}
