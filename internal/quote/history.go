package quote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	historyPageSize = 49
	historyMaxPages = 100
)

// contentRe pulls the embedded HTML table out of the JS payload the
// history endpoint answers with:
//
//	var apidata={ content:"<table>...</table>",records:123,pages:3,curpage:1};
var contentRe = regexp.MustCompile(`content:"(.*?)",records`)

// FetchHistory fetches the NAV history of a fund, paging until an
// empty page, a row older than from, or the page cap.
func (c *Client) FetchHistory(ctx context.Context, fundCode string, from, to time.Time) ([]NavRecord, error) {
	var records []NavRecord

	for page := 1; page <= historyMaxPages; page++ {
		rows, err := c.fetchHistoryPage(ctx, fundCode, page)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			break
		}

		done := false
		for _, row := range rows {
			if row.Date.After(to) {
				continue
			}
			if row.Date.Before(from) {
				// Rows come newest first; everything below is older
				done = true
				break
			}
			records = append(records, row)
		}
		if done || len(rows) < historyPageSize {
			break
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"fund_code": fundCode,
		"count":     len(records),
	}).Debug("Fetched NAV history")
	return records, nil
}

func (c *Client) fetchHistoryPage(ctx context.Context, fundCode string, page int) ([]NavRecord, error) {
	url := fmt.Sprintf("%s?type=lsjz&code=%s&page=%d&per=%d",
		c.historyBaseURL, fundCode, page, historyPageSize)

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

	records, err := parseHistoryPage(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse history page %d failed: %w", page, err)
	}
	return records, nil
}

// parseHistoryPage extracts NAV rows from one history payload. Cells
// holding "--" are tolerated and skipped.
func parseHistoryPage(body string) ([]NavRecord, error) {
	m := contentRe.FindStringSubmatch(body)
	if m == nil {
		return nil, fmt.Errorf("no content table in payload")
	}
	html := strings.ReplaceAll(m[1], `\"`, `"`)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse table: %w", err)
	}

	var records []NavRecord
	doc.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}

		date, err := time.Parse("2006-01-02", strings.TrimSpace(cells.Eq(0).Text()))
		if err != nil {
			return
		}

		nav, ok := parseCell(cells.Eq(1).Text())
		if !ok {
			return
		}

		record := NavRecord{Date: date, Nav: nav}
		if cells.Length() > 2 {
			if cumulative, ok := parseCell(cells.Eq(2).Text()); ok {
				record.CumulativeNav = cumulative
			}
		}
		records = append(records, record)
	})

	return records, nil
}

func parseCell(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	if text == "" || text == "--" {
		return 0, false
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
