package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/wonny/fundsim/internal/advisor"
	"github.com/wonny/fundsim/internal/quote"
	"github.com/wonny/fundsim/internal/series"
	"github.com/wonny/fundsim/internal/strategy"
	"github.com/wonny/fundsim/pkg/logger"
)

// QuoteSource provides live estimates and NAV history.
type QuoteSource interface {
	FetchEstimate(ctx context.Context, fundCode string) (*quote.Estimate, error)
	FetchHistory(ctx context.Context, fundCode string, from, to time.Time) ([]quote.NavRecord, error)
}

// AdviceHandler serves one-shot advisory evaluations for a fund.
type AdviceHandler struct {
	quotes QuoteSource
	logger *logger.Logger

	// now is overridable in tests
	now func() time.Time
}

// NewAdviceHandler creates the advice handler.
func NewAdviceHandler(quotes QuoteSource, log *logger.Logger) *AdviceHandler {
	return &AdviceHandler{
		quotes: quotes,
		logger: log,
		now:    time.Now,
	}
}

// AdviceResponse pairs the fund with its evaluated advice.
type AdviceResponse struct {
	FundCode string          `json:"fund_code"`
	FundName string          `json:"fund_name,omitempty"`
	Advice   *advisor.Advice `json:"advice"`
}

// Get handles GET /api/advice.
func (h *AdviceHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	fundCode := q.Get("code")
	if fundCode == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	params := strategy.ThresholdParams{
		BuyPct:       -5,
		SellPct:      10,
		LookbackDays: 20,
	}
	var err error
	if params.BuyPct, err = floatParam(q.Get("buy_pct"), params.BuyPct); err != nil {
		writeError(w, http.StatusBadRequest, "invalid buy_pct")
		return
	}
	if params.SellPct, err = floatParam(q.Get("sell_pct"), params.SellPct); err != nil {
		writeError(w, http.StatusBadRequest, "invalid sell_pct")
		return
	}
	if params.LookbackDays, err = intParam(q.Get("lookback_days"), params.LookbackDays); err != nil {
		writeError(w, http.StatusBadRequest, "invalid lookback_days")
		return
	}

	ctx := r.Context()
	today := series.DateOnly(h.now())

	from := today.AddDate(0, 0, -(params.LookbackDays*2 + 30))
	records, err := h.quotes.FetchHistory(ctx, fundCode, from, today.AddDate(0, 0, -1))
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch NAV history")
		writeError(w, http.StatusBadGateway, "failed to fetch NAV history")
		return
	}

	aligned, err := series.Align(quote.Observations(records), from, today.AddDate(0, 0, -1))
	if err != nil {
		if errors.Is(err, series.ErrEmptyInput) || errors.Is(err, series.ErrNoDataInRange) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("no NAV history for fund %s", fundCode))
			return
		}
		writeError(w, http.StatusInternalServerError, "alignment failed")
		return
	}

	estimate, err := h.quotes.FetchEstimate(ctx, fundCode)
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch estimate")
		writeError(w, http.StatusBadGateway, "failed to fetch estimate")
		return
	}

	advice, err := advisor.Evaluate(aligned, estimate.EstimatedNav, &params)
	if err != nil {
		var vErr strategy.ValidationError
		switch {
		case errors.As(err, &vErr):
			writeError(w, http.StatusBadRequest, vErr.Error())
		case errors.Is(err, strategy.ErrInsufficientHistory):
			writeError(w, http.StatusUnprocessableEntity, "not enough history to advise")
		default:
			writeError(w, http.StatusInternalServerError, "evaluation failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, AdviceResponse{
		FundCode: fundCode,
		FundName: estimate.Name,
		Advice:   advice,
	})
}

func floatParam(raw string, def float64) (float64, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
