package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/fundsim/internal/quote"
	"github.com/wonny/fundsim/internal/store"
	"github.com/wonny/fundsim/pkg/config"
	"github.com/wonny/fundsim/pkg/database"
	"github.com/wonny/fundsim/pkg/logger"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch NAV history into the database",
	Long: `Downloads NAV history for a fund and upserts it into PostgreSQL.
Without --from, fetching resumes from the day after the latest stored
record.

Example:
  go run ./cmd/fundsim fetch --code 161725 --from 2020-01-01
  go run ./cmd/fundsim fetch --code 161725`,
	RunE: runFetch,
}

var (
	fetchCode string
	fetchFrom string
	fetchTo   string
)

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVar(&fetchCode, "code", "", "fund code (required)")
	fetchCmd.Flags().StringVar(&fetchFrom, "from", "", "start date YYYY-MM-DD (default: resume after latest stored)")
	fetchCmd.Flags().StringVar(&fetchTo, "to", "", "end date YYYY-MM-DD (default: today)")

	fetchCmd.MarkFlagRequired("code")
}

func runFetch(cmd *cobra.Command, args []string) error {
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

	repo := store.NewNavRepository(db.Pool)

	to := time.Now()
	if fetchTo != "" {
		to, err = time.Parse("2006-01-02", fetchTo)
		if err != nil {
			return fmt.Errorf("invalid end date: %w", err)
		}
	}

	var from time.Time
	if fetchFrom != "" {
		from, err = time.Parse("2006-01-02", fetchFrom)
		if err != nil {
			return fmt.Errorf("invalid start date: %w", err)
		}
	} else {
		latest, err := repo.LatestDate(cmd.Context(), fetchCode)
		if err != nil {
			return fmt.Errorf("find latest stored date: %w", err)
		}
		if latest.IsZero() {
			// No stored history yet, default to one year back
			from = to.AddDate(-1, 0, 0)
		} else {
			from = latest.AddDate(0, 0, 1)
		}
	}
	if from.After(to) {
		fmt.Println("Already up to date")
		return nil
	}

	client := quote.NewClient(cfg, log)
	records, err := client.FetchHistory(cmd.Context(), fetchCode, from, to)
	if err != nil {
		return fmt.Errorf("fetch NAV history: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("No new records")
		return nil
	}

	if err := repo.Upsert(cmd.Context(), fetchCode, records); err != nil {
		return fmt.Errorf("store NAV history: %w", err)
	}

	fmt.Printf("Stored %d records for fund %s (%s ~ %s)\n",
		len(records), fetchCode, from.Format("2006-01-02"), to.Format("2006-01-02"))
	return nil
}
