package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/tidemark/internal/api"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server with the websocket stream.

Endpoints:
  GET  /health                        - Health check
  GET  /api/analysis/{symbol}         - Latest analysis row
  GET  /api/analysis/{symbol}/history - Analysis rows in a date range
  POST /api/analyze                   - Trigger an analysis run
  GET  /ws/analysis                   - Websocket stream of new rows

Example:
  go run ./cmd/tidemark api
  go run ./cmd/tidemark api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default from config)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Tidemark API Server ===")

	application, err := newApp()
	if err != nil {
		return err
	}
	defer application.Close()

	hub := api.NewHub(application.log)
	application.service.SetPublisher(hub)

	if apiPort != "" {
		application.cfg.Port = apiPort
	}

	handler := api.NewAnalysisHandler(application.service, application.log)
	router := api.NewRouter(handler, hub, application.log)
	server := api.New(application.cfg, application.log, router)

	go func() {
		if err := server.Start(); err != nil {
			application.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	application.log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", application.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
