package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/fundsim/internal/backtest"
	"github.com/wonny/fundsim/internal/perf"
	"github.com/wonny/fundsim/internal/series"
	"github.com/wonny/fundsim/internal/strategy"
	"github.com/wonny/fundsim/pkg/logger"
)

// SimulationHandler runs backtests over caller-supplied observations.
type SimulationHandler struct {
	logger         *logger.Logger
	riskFreeRate   float64
	commissionRate float64
}

// NewSimulationHandler creates the backtest handler.
func NewSimulationHandler(log *logger.Logger, riskFreeRate, commissionRate float64) *SimulationHandler {
	return &SimulationHandler{
		logger:         log,
		riskFreeRate:   riskFreeRate,
		commissionRate: commissionRate,
	}
}

// ObservationDTO is one raw (date, value) pair.
type ObservationDTO struct {
	Date  string  `json:"date"` // 2006-01-02
	Value float64 `json:"value"`
}

// BacktestRequest runs one or more strategies over the same series.
type BacktestRequest struct {
	Observations []ObservationDTO  `json:"observations"`
	Start        string            `json:"start"`
	End          string            `json:"end"`
	Strategies   []strategy.Config `json:"strategies"`
	InitialCash  float64           `json:"initial_cash"`
}

// RunResponse is the outcome of one strategy run.
type RunResponse struct {
	Strategy     strategy.Kind          `json:"strategy"`
	Report       perf.Report            `json:"report"`
	Transactions []backtest.Transaction `json:"transactions"`
	Error        string                 `json:"error,omitempty"`
}

// BacktestResponse pairs the aligned series with per-strategy runs.
type BacktestResponse struct {
	Series []series.PricePoint `json:"series"`
	Runs   []RunResponse       `json:"runs"`
}

// Backtest handles POST /api/backtest.
func (h *SimulationHandler) Backtest(w http.ResponseWriter, r *http.Request) {
	var req BacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Strategies) == 0 {
		writeError(w, http.StatusBadRequest, "at least one strategy is required")
		return
	}

	start, err := time.Parse("2006-01-02", req.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start date")
		return
	}
	end, err := time.Parse("2006-01-02", req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end date")
		return
	}

	obs := make([]series.Observation, 0, len(req.Observations))
	for _, o := range req.Observations {
		d, err := time.Parse("2006-01-02", o.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid observation date "+o.Date)
			return
		}
		obs = append(obs, series.Observation{Date: d, Value: o.Value})
	}

	aligned, err := series.Align(obs, start, end)
	if err != nil {
		if errors.Is(err, series.ErrEmptyInput) || errors.Is(err, series.ErrNoDataInRange) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "alignment failed")
		return
	}

	initialCash := decimal.NewFromFloat(req.InitialCash)
	commission := decimal.NewFromFloat(h.commissionRate)

	jobs := make([]backtest.Job, len(req.Strategies))
	for i := range req.Strategies {
		cfg := &req.Strategies[i]
		jobs[i] = backtest.Job{
			Name:   string(cfg.Kind),
			Series: aligned,
			Config: cfg,
			Params: backtest.DefaultParamsFor(cfg, initialCash, commission),
		}
	}

	results := backtest.RunBatch(r.Context(), jobs, len(jobs))
	analyzer := perf.NewAnalyzer(h.riskFreeRate)

	resp := BacktestResponse{Series: aligned.Points}
	for i, res := range results {
		run := RunResponse{Strategy: req.Strategies[i].Kind}
		if res.Err != nil {
			var vErr strategy.ValidationError
			if errors.As(res.Err, &vErr) {
				run.Error = vErr.Error()
			} else {
				run.Error = res.Err.Error()
			}
		} else {
			run.Report = analyzer.Analyze(res.Result)
			run.Transactions = res.Result.Transactions
		}
		resp.Runs = append(resp.Runs, run)
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
