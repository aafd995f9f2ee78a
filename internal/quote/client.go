package quote

import (
	"time"

	"github.com/wonny/fundsim/internal/series"
	"github.com/wonny/fundsim/pkg/config"
	"github.com/wonny/fundsim/pkg/httputil"
	"github.com/wonny/fundsim/pkg/logger"
)

// Client fetches fund NAV data from the provider. All provider calls
// go through this client.
type Client struct {
	httpClient      *httputil.Client
	logger          *logger.Logger
	estimateBaseURL string
	historyBaseURL  string
}

// Estimate is the provider's live intraday NAV estimate for a fund.
type Estimate struct {
	FundCode     string    `json:"fund_code"`
	Name         string    `json:"name"`
	NavDate      time.Time `json:"nav_date"`
	Nav          float64   `json:"nav"`
	EstimatedNav float64   `json:"estimated_nav"`
	EstimatedPct float64   `json:"estimated_pct"`
	EstimateTime time.Time `json:"estimate_time"`
}

// NavRecord is one historical NAV row.
type NavRecord struct {
	Date          time.Time `json:"date"`
	Nav           float64   `json:"nav"`
	CumulativeNav float64   `json:"cumulative_nav,omitempty"`
}

// NewClient creates a provider client from config.
func NewClient(cfg *config.Config, log *logger.Logger) *Client {
	return &Client{
		httpClient:      httputil.New(cfg, log),
		logger:          log,
		estimateBaseURL: cfg.Provider.EstimateBaseURL,
		historyBaseURL:  cfg.Provider.HistoryBaseURL,
	}
}

// Observations converts NAV records into aligner observations.
func Observations(records []NavRecord) []series.Observation {
	obs := make([]series.Observation, len(records))
	for i, r := range records {
		obs[i] = series.Observation{Date: r.Date, Value: r.Nav}
	}
	return obs
}
