package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/fundsim/internal/store"
	"github.com/wonny/fundsim/pkg/config"
	"github.com/wonny/fundsim/pkg/database"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Manage the funds watched by the monitor",
}

var watchAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a fund to the watch list",
	Long: `Example:
  go run ./cmd/fundsim watch add --code 161725 --name "White Wine Index" --buy-pct -5 --sell-pct 10`,
	RunE: runWatchAdd,
}

var watchListCmd = &cobra.Command{
	Use:   "list",
	Short: "List enabled watches",
	RunE:  runWatchList,
}

var (
	watchCode     string
	watchName     string
	watchBuyPct   float64
	watchSellPct  float64
	watchLookback int
	watchAmount   float64
)

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.AddCommand(watchAddCmd)
	watchCmd.AddCommand(watchListCmd)

	watchAddCmd.Flags().StringVar(&watchCode, "code", "", "fund code (required)")
	watchAddCmd.Flags().StringVar(&watchName, "name", "", "fund display name")
	watchAddCmd.Flags().Float64Var(&watchBuyPct, "buy-pct", -5, "buy threshold percentage")
	watchAddCmd.Flags().Float64Var(&watchSellPct, "sell-pct", 10, "sell threshold percentage")
	watchAddCmd.Flags().IntVar(&watchLookback, "lookback", 20, "lookback window in trading days")
	watchAddCmd.Flags().Float64Var(&watchAmount, "amount", 1000, "suggested amount per buy")

	watchAddCmd.MarkFlagRequired("code")
}

func runWatchAdd(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	repo := store.NewWatchRepository(db.Pool)
	id, err := repo.Add(cmd.Context(), store.Watch{
		FundCode:     watchCode,
		Name:         watchName,
		BuyPct:       watchBuyPct,
		SellPct:      watchSellPct,
		LookbackDays: watchLookback,
		Amount:       watchAmount,
		Enabled:      true,
	})
	if err != nil {
		return fmt.Errorf("add watch: %w", err)
	}

	fmt.Printf("Watch %d added for fund %s\n", id, watchCode)
	return nil
}

func runWatchList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	repo := store.NewWatchRepository(db.Pool)
	watches, err := repo.ListEnabled(cmd.Context())
	if err != nil {
		return fmt.Errorf("list watches: %w", err)
	}
	if len(watches) == 0 {
		fmt.Println("No watches configured")
		return nil
	}

	fmt.Printf("%-4s %-8s %-24s %8s %8s %10s %10s\n",
		"ID", "CODE", "NAME", "BUY%", "SELL%", "LOOKBACK", "AMOUNT")
	for _, w := range watches {
		fmt.Printf("%-4d %-8s %-24s %8.1f %8.1f %10d %10.0f\n",
			w.ID, w.FundCode, w.Name, w.BuyPct, w.SellPct, w.LookbackDays, w.Amount)
	}
	return nil
}
