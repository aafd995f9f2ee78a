package commands

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/fundsim/internal/advisor"
	"github.com/wonny/fundsim/internal/quote"
	"github.com/wonny/fundsim/internal/series"
	"github.com/wonny/fundsim/internal/strategy"
	"github.com/wonny/fundsim/pkg/config"
	"github.com/wonny/fundsim/pkg/logger"
)

// adviseCmd represents the advise command
var adviseCmd = &cobra.Command{
	Use:   "advise",
	Short: "Evaluate a fund's live estimate against threshold rules",
	Long: `Fetches the live estimated NAV and recent history for a fund and
classifies the estimate with the same comparator the backtest uses.

Example:
  go run ./cmd/fundsim advise --code 161725
  go run ./cmd/fundsim advise --code 161725 --buy-pct -8 --lookback 30`,
	RunE: runAdvise,
}

var (
	advCode     string
	advBuyPct   float64
	advSellPct  float64
	advLookback int
)

func init() {
	rootCmd.AddCommand(adviseCmd)

	adviseCmd.Flags().StringVar(&advCode, "code", "", "fund code (required)")
	adviseCmd.Flags().Float64Var(&advBuyPct, "buy-pct", -5, "buy threshold percentage")
	adviseCmd.Flags().Float64Var(&advSellPct, "sell-pct", 10, "sell threshold percentage")
	adviseCmd.Flags().IntVar(&advLookback, "lookback", 20, "lookback window in trading days")

	adviseCmd.MarkFlagRequired("code")
}

func runAdvise(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)
	client := quote.NewClient(cfg, log)

	today := series.DateOnly(time.Now())
	from := today.AddDate(0, 0, -(advLookback*2 + 30))
	yesterday := today.AddDate(0, 0, -1)

	records, err := client.FetchHistory(cmd.Context(), advCode, from, yesterday)
	if err != nil {
		return fmt.Errorf("fetch NAV history: %w", err)
	}
	aligned, err := series.Align(quote.Observations(records), from, yesterday)
	if err != nil {
		return fmt.Errorf("align NAV history: %w", err)
	}

	estimate, err := client.FetchEstimate(cmd.Context(), advCode)
	if err != nil {
		return fmt.Errorf("fetch estimate: %w", err)
	}

	params := &strategy.ThresholdParams{
		BuyPct:       advBuyPct,
		SellPct:      advSellPct,
		LookbackDays: advLookback,
	}
	advice, err := advisor.Evaluate(aligned, estimate.EstimatedNav, params)
	if err != nil {
		if errors.Is(err, strategy.ErrInsufficientHistory) {
			return fmt.Errorf("not enough recorded history for a %d trading-day lookback", advLookback)
		}
		return fmt.Errorf("evaluate: %w", err)
	}

	fmt.Printf("Fund:             %s (%s)\n", estimate.Name, advCode)
	fmt.Printf("Estimated NAV:    %.4f (%s)\n", advice.EstimatedValue, estimate.EstimateTime.Format("2006-01-02 15:04"))
	fmt.Printf("Reference NAV:    %.4f (%s)\n", advice.ReferenceValue, advice.ReferenceDate.Format("2006-01-02"))
	fmt.Printf("Lookback Return:  %+.2f%% over %d trading days\n", advice.LookbackReturn, advLookback)
	fmt.Printf("Advice:           %s\n", strings.ToUpper(string(advice.Action)))
	return nil
}
