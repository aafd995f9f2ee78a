package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// The estimate endpoint answers with a JSONP payload:
//
//	jsonpgz({"fundcode":"161725","name":"...","jzrq":"2024-01-05",
//	         "dwjz":"1.0100","gsz":"1.0230","gszzl":"1.29",
//	         "gztime":"2024-01-08 14:30"});
const (
	jsonpPrefix = "jsonpgz("
	jsonpSuffix = ");"
)

type estimatePayload struct {
	FundCode     string `json:"fundcode"`
	Name         string `json:"name"`
	NavDate      string `json:"jzrq"`
	Nav          string `json:"dwjz"`
	EstimatedNav string `json:"gsz"`
	EstimatedPct string `json:"gszzl"`
	EstimateTime string `json:"gztime"`
}

// FetchEstimate fetches the live estimated NAV for a fund.
func (c *Client) FetchEstimate(ctx context.Context, fundCode string) (*Estimate, error) {
	url := fmt.Sprintf("%s/%s.js", c.estimateBaseURL, fundCode)

	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}

	estimate, err := parseEstimate(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse estimate failed: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"fund_code":     fundCode,
		"estimated_nav": estimate.EstimatedNav,
	}).Debug("Fetched estimate")
	return estimate, nil
}

// parseEstimate unwraps the JSONP envelope and decodes the payload.
func parseEstimate(body string) (*Estimate, error) {
	body = strings.TrimSpace(body)
	if !strings.HasPrefix(body, jsonpPrefix) || !strings.HasSuffix(body, jsonpSuffix) {
		return nil, fmt.Errorf("unexpected JSONP envelope")
	}
	inner := body[len(jsonpPrefix) : len(body)-len(jsonpSuffix)]

	var payload estimatePayload
	if err := json.Unmarshal([]byte(inner), &payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if payload.FundCode == "" {
		return nil, fmt.Errorf("payload has no fund code")
	}

	estimate := &Estimate{
		FundCode: payload.FundCode,
		Name:     payload.Name,
	}

	estimate.Nav, _ = strconv.ParseFloat(payload.Nav, 64)
	estimate.EstimatedNav, _ = strconv.ParseFloat(payload.EstimatedNav, 64)
	estimate.EstimatedPct, _ = strconv.ParseFloat(payload.EstimatedPct, 64)
	if estimate.EstimatedNav <= 0 {
		return nil, fmt.Errorf("estimated nav %q is not positive", payload.EstimatedNav)
	}

	if d, err := time.Parse("2006-01-02", payload.NavDate); err == nil {
		estimate.NavDate = d
	}
	if ts, err := time.Parse("2006-01-02 15:04", payload.EstimateTime); err == nil {
		estimate.EstimateTime = ts
	}

	return estimate, nil
}
