package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/fundsim/internal/api"
	"github.com/wonny/fundsim/internal/api/handlers"
	"github.com/wonny/fundsim/internal/quote"
	"github.com/wonny/fundsim/pkg/config"
	"github.com/wonny/fundsim/pkg/logger"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the HTTP API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health        - Health check
  POST /api/backtest  - Run strategies over supplied observations
  GET  /api/advice    - Evaluate a fund's live estimate

Example:
  go run ./cmd/fundsim api
  go run ./cmd/fundsim api --port 8087`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default from config)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	log := logger.New(cfg)

	quoteClient := quote.NewClient(cfg, log)
	simHandler := handlers.NewSimulationHandler(log, cfg.Simulation.RiskFreeRate, cfg.Simulation.CommissionRate)
	adviceHandler := handlers.NewAdviceHandler(quoteClient, log)

	router := api.NewRouter(simHandler, adviceHandler, log)
	server := api.New(cfg, log, router)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("Server running on http://localhost:%s, press Ctrl+C to stop\n", cfg.Port)

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
