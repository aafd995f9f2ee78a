package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/fundsim/internal/monitor"
	"github.com/wonny/fundsim/internal/quote"
	"github.com/wonny/fundsim/internal/scheduler"
	"github.com/wonny/fundsim/internal/store"
	"github.com/wonny/fundsim/pkg/config"
	"github.com/wonny/fundsim/pkg/database"
	"github.com/wonny/fundsim/pkg/logger"
)

// monitorCmd represents the monitor command
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run the scheduled fund monitor",
	Long: `Evaluates every watched fund on a cron schedule and sends advice
notifications. Notifications are deduplicated per fund, action and day.

Example:
  go run ./cmd/fundsim monitor
  go run ./cmd/fundsim monitor --once`,
	RunE: runMonitor,
}

var monitorOnce bool

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().BoolVar(&monitorOnce, "once", false, "run one sweep immediately and exit")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	watches := store.NewWatchRepository(db.Pool)
	quotes := quote.NewClient(cfg, log)

	var notifier monitor.Notifier
	if cfg.Mail.Enabled {
		notifier = monitor.NewEmailNotifier(cfg.Mail, log)
	} else {
		notifier = monitor.NewLogNotifier(log)
	}
	notifier = monitor.NewDedup(notifier)

	m := monitor.New(watches, quotes, notifier, log, cfg.Monitor.Schedule)

	if monitorOnce {
		return m.Run(cmd.Context())
	}

	if !cfg.Monitor.Enabled {
		return fmt.Errorf("monitor is disabled, set MONITOR_ENABLED=true")
	}

	sched := scheduler.New(log)
	if err := sched.AddJob(m); err != nil {
		return fmt.Errorf("schedule monitor: %w", err)
	}
	sched.Start()

	fmt.Printf("Monitor running on schedule %q, press Ctrl+C to stop\n", cfg.Monitor.Schedule)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}
