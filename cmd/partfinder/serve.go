// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/pdiddy/partfinder/internal/jobs"
	"github.com/pdiddy/partfinder/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve exposes the alternatives and compare pipelines over HTTP:

  POST /api/alternatives        {"partNumber": "LM317"}
  POST /api/compare             {"partA": "LM317", "partB": "LM350"}
  POST /api/alternatives/jobs   {"partNumber": "LM317"}  -> 202 {"id": ...}
  GET  /api/jobs/:id
  GET  /health

The server shuts down gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if dev, _ := cmd.Flags().GetBool("dev"); !dev {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := buildService(ctx, cfg, logger)
	if err != nil {
		return err
	}

	store, err := jobs.NewStore(cfg.Jobs)
	if err != nil {
		return err
	}
	defer store.Close()
	runner := jobs.NewRunner(store, cfg.Jobs.RunTimeout, logger)

	return server.New(svc, runner, cfg.Server, logger).Run(ctx)
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :3000)")
	serveCmd.Flags().Bool("include-context", false, "include the aggregated context in responses")
	serveCmd.Flags().String("jobs-dsn", "", "SQLite data source for background jobs (default in-memory)")
	addPipelineFlags(serveCmd)

	rootCmd.AddCommand(serveCmd)
}
