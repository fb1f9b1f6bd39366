package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"gitaqa/internal/server"
)

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the question-answering API over HTTP",
	Long: `Start an HTTP server exposing POST /query for question answering
and GET /healthz for health checks. The chunk store and Gemini client
are built once at startup and shared across requests.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	ag := mustNewAgent(cfg)

	hist := openHistory(cfg)
	if hist != nil {
		defer hist.Close()
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.ListenAddr
	}

	logger := log.New(cmd.ErrOrStderr(), "gitaqa: ", log.LstdFlags)
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(ag, hist, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * time.Minute,
	}

	fmt.Printf("Listening on %s\n", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		exitWithError(ExitError, "serving: %v", err)
	}
	return nil
}
