package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/wonny/fundsim/internal/backtest"
	"github.com/wonny/fundsim/internal/perf"
	"github.com/wonny/fundsim/internal/quote"
	"github.com/wonny/fundsim/internal/series"
	"github.com/wonny/fundsim/internal/store"
	"github.com/wonny/fundsim/internal/strategy"
	"github.com/wonny/fundsim/pkg/config"
	"github.com/wonny/fundsim/pkg/database"
	"github.com/wonny/fundsim/pkg/logger"
)

// backtestCmd represents the backtest command
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a strategy backtest over NAV history",
	Long: `Fetches NAV history for a fund, runs the selected strategy over it
and prints a performance report.

Strategies:
  threshold     buy on a lookback drop, sell on a lookback rise
  dca           periodic fixed-amount investment
  ma_crossover  invested while the short MA is above the long MA
  rsi           enter oversold, exit overbought
  bollinger     enter at the lower band, exit at the upper band
  macd          enter when MACD crosses above its signal line

Example:
  go run ./cmd/fundsim backtest --code 161725 --from 2023-01-01
  go run ./cmd/fundsim backtest --code 161725 --from 2023-01-01 --strategy dca --day-of-month 1
  go run ./cmd/fundsim backtest --code 161725 --from 2023-01-01 --compare`,
	RunE: runBacktest,
}

var (
	btCode        string
	btFrom        string
	btTo          string
	btStrategy    string
	btInitialCash float64
	btCompare     bool
	btSave        bool

	// threshold
	btBuyPct   float64
	btSellPct  float64
	btLookback int
	btAmount   float64

	// dca
	btDCAFrequency   string
	btDCADayOfMonth  int
	btDCAWeekday     int
	btDCAIntervalDay int

	// indicator windows
	btShortWindow int
	btLongWindow  int
	btRSIPeriod   int
	btOversold    float64
	btOverbought  float64
	btBollWindow  int
	btBollStd     float64
	btMACDFast    int
	btMACDSlow    int
	btMACDSignal  int
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVar(&btCode, "code", "", "fund code (required)")
	backtestCmd.Flags().StringVar(&btFrom, "from", "", "start date YYYY-MM-DD (required)")
	backtestCmd.Flags().StringVar(&btTo, "to", "", "end date YYYY-MM-DD (default: today)")
	backtestCmd.Flags().StringVar(&btStrategy, "strategy", "threshold", "strategy kind")
	backtestCmd.Flags().Float64Var(&btInitialCash, "initial-cash", 10000, "initial cash for full-allocation strategies")
	backtestCmd.Flags().BoolVar(&btCompare, "compare", false, "also run a monthly DCA with the same amount")
	backtestCmd.Flags().BoolVar(&btSave, "save", false, "persist transactions to the database")

	backtestCmd.Flags().Float64Var(&btBuyPct, "buy-pct", -5, "buy when the lookback return drops to this percentage")
	backtestCmd.Flags().Float64Var(&btSellPct, "sell-pct", 10, "sell when the lookback return rises to this percentage")
	backtestCmd.Flags().IntVar(&btLookback, "lookback", 20, "lookback window in trading days")
	backtestCmd.Flags().Float64Var(&btAmount, "amount", 1000, "amount per buy or DCA installment")

	backtestCmd.Flags().StringVar(&btDCAFrequency, "frequency", "monthly", "DCA cadence (monthly|weekly)")
	backtestCmd.Flags().IntVar(&btDCADayOfMonth, "day-of-month", 1, "DCA monthly target day")
	backtestCmd.Flags().IntVar(&btDCAWeekday, "weekday", 1, "DCA weekly target weekday (0=Sunday)")
	backtestCmd.Flags().IntVar(&btDCAIntervalDay, "interval-days", 0, "DCA fixed interval in calendar days (overrides frequency)")

	backtestCmd.Flags().IntVar(&btShortWindow, "short-window", 5, "MA crossover short window")
	backtestCmd.Flags().IntVar(&btLongWindow, "long-window", 20, "MA crossover long window")
	backtestCmd.Flags().IntVar(&btRSIPeriod, "rsi-period", 14, "RSI period")
	backtestCmd.Flags().Float64Var(&btOversold, "oversold", 30, "RSI oversold level")
	backtestCmd.Flags().Float64Var(&btOverbought, "overbought", 70, "RSI overbought level")
	backtestCmd.Flags().IntVar(&btBollWindow, "boll-window", 20, "Bollinger window")
	backtestCmd.Flags().Float64Var(&btBollStd, "boll-std", 2, "Bollinger band width in standard deviations")
	backtestCmd.Flags().IntVar(&btMACDFast, "macd-fast", 12, "MACD fast EMA span")
	backtestCmd.Flags().IntVar(&btMACDSlow, "macd-slow", 26, "MACD slow EMA span")
	backtestCmd.Flags().IntVar(&btMACDSignal, "macd-signal", 9, "MACD signal EMA span")

	backtestCmd.MarkFlagRequired("code")
	backtestCmd.MarkFlagRequired("from")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	from, err := time.Parse("2006-01-02", btFrom)
	if err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	to := time.Now()
	if btTo != "" {
		to, err = time.Parse("2006-01-02", btTo)
		if err != nil {
			return fmt.Errorf("invalid end date: %w", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	client := quote.NewClient(cfg, log)
	records, err := client.FetchHistory(cmd.Context(), btCode, from, to)
	if err != nil {
		return fmt.Errorf("fetch NAV history: %w", err)
	}

	aligned, err := series.Align(quote.Observations(records), from, to)
	if err != nil {
		return fmt.Errorf("align NAV history: %w", err)
	}

	strategyCfg, err := buildStrategyConfig()
	if err != nil {
		return err
	}

	initialCash := decimal.NewFromFloat(btInitialCash)
	commission := decimal.NewFromFloat(cfg.Simulation.CommissionRate)

	jobs := []backtest.Job{{
		Name:   btStrategy,
		Series: aligned,
		Config: strategyCfg,
		Params: backtest.DefaultParamsFor(strategyCfg, initialCash, commission),
	}}
	if btCompare && strategyCfg.Kind != strategy.KindDCA {
		dcaCfg := &strategy.Config{
			Kind: strategy.KindDCA,
			DCA: &strategy.DCAParams{
				Amount:     btAmount,
				Frequency:  strategy.FrequencyMonthly,
				DayOfMonth: btDCADayOfMonth,
			},
		}
		jobs = append(jobs, backtest.Job{
			Name:   "dca",
			Series: aligned,
			Config: dcaCfg,
			Params: backtest.DefaultParamsFor(dcaCfg, initialCash, commission),
		})
	}

	results := backtest.RunBatch(cmd.Context(), jobs, len(jobs))
	analyzer := perf.NewAnalyzer(cfg.Simulation.RiskFreeRate)

	fmt.Printf("Fund %s, %s ~ %s (%d trading days)\n\n",
		btCode, from.Format("2006-01-02"), to.Format("2006-01-02"),
		len(aligned.TradingDayIndexes()))

	for _, res := range results {
		if res.Err != nil {
			fmt.Printf("%s: failed: %v\n", res.Name, res.Err)
			continue
		}
		printReport(res.Name, analyzer.Analyze(res.Result), len(res.Result.Transactions))
	}

	if btSave {
		if err := saveTransactions(cmd, results); err != nil {
			return err
		}
	}
	return nil
}

func buildStrategyConfig() (*strategy.Config, error) {
	kind := strategy.Kind(btStrategy)
	cfg := &strategy.Config{Kind: kind}

	switch kind {
	case strategy.KindThreshold:
		cfg.Threshold = &strategy.ThresholdParams{
			BuyPct:       btBuyPct,
			SellPct:      btSellPct,
			LookbackDays: btLookback,
			Amount:       btAmount,
		}
	case strategy.KindDCA:
		cfg.DCA = &strategy.DCAParams{
			Amount:       btAmount,
			IntervalDays: btDCAIntervalDay,
		}
		if btDCAIntervalDay == 0 {
			cfg.DCA.Frequency = strategy.Frequency(btDCAFrequency)
			cfg.DCA.DayOfMonth = btDCADayOfMonth
			cfg.DCA.Weekday = time.Weekday(btDCAWeekday)
		}
	case strategy.KindMACrossover:
		cfg.MACrossover = &strategy.MACrossoverParams{
			ShortWindow: btShortWindow,
			LongWindow:  btLongWindow,
		}
	case strategy.KindRSI:
		cfg.RSI = &strategy.RSIParams{
			Period:     btRSIPeriod,
			Oversold:   btOversold,
			Overbought: btOverbought,
		}
	case strategy.KindBollinger:
		cfg.Bollinger = &strategy.BollingerParams{
			Window:        btBollWindow,
			StdMultiplier: btBollStd,
		}
	case strategy.KindMACD:
		cfg.MACD = &strategy.MACDParams{
			Fast:   btMACDFast,
			Slow:   btMACDSlow,
			Signal: btMACDSignal,
		}
	default:
		return nil, fmt.Errorf("unknown strategy %q", btStrategy)
	}

	return cfg, strategy.Validate(cfg)
}

func printReport(name string, report perf.Report, trades int) {
	fmt.Printf("=== %s ===\n", name)
	fmt.Println(strings.Repeat("-", 40))
	fmt.Printf("Total Invested:   %s\n", report.TotalInvested.StringFixed(2))
	fmt.Printf("Final Value:      %s\n", report.FinalValue.StringFixed(2))
	fmt.Printf("Total Return:     %+.2f%%\n", report.TotalReturnPct)
	fmt.Printf("Annual Return:    %+.2f%%\n", report.AnnualizedReturnPct)
	fmt.Printf("Volatility:       %.2f%%\n", report.AnnualizedVolatilityPct)
	fmt.Printf("Sharpe Ratio:     %.2f\n", report.SharpeRatio)
	fmt.Printf("Max Drawdown:     %.2f%%\n", report.MaxDrawdownPct)
	fmt.Printf("Trades:           %d\n\n", trades)
}

func saveTransactions(cmd *cobra.Command, results []backtest.JobResult) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	repo := store.NewTransactionRepository(db.Pool)
	for _, res := range results {
		if res.Err != nil || res.Result == nil {
			continue
		}
		if err := repo.Save(cmd.Context(), btCode, res.Name, res.Result.Transactions); err != nil {
			return fmt.Errorf("save transactions for %s: %w", res.Name, err)
		}
	}
	fmt.Println("Transactions saved")
	return nil
}
