package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"ThemeSentinel/internal/calculator"
	"ThemeSentinel/internal/model"
)

// YahooFetcher implements Fetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	Client    *http.Client
	BaseURL   string
	Quote     string            // appended to bare tickers, e.g. "-USD"
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooFetcher{
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		BaseURL: "https://query1.finance.yahoo.com",
		Quote:   "-USD",
		SymbolMap: map[string]string{
			"TAO": "TAO22974-USD",
			"SUI": "SUI20947-USD",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	symbol = strings.ToUpper(symbol)
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	if f.Quote == "" || strings.Contains(symbol, "-") || strings.HasPrefix(symbol, "^") {
		return symbol
	}
	return symbol + f.Quote
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// closes prefers adjusted closes when Yahoo sends them.
func (r chartResponse) closes() (ts []int64, closes []*float64, ok bool) {
	if len(r.Chart.Result) == 0 {
		return nil, nil, false
	}
	res := r.Chart.Result[0]
	switch {
	case len(res.Indicators.AdjClose) > 0 && len(res.Indicators.AdjClose[0].AdjClose) > 0:
		closes = res.Indicators.AdjClose[0].AdjClose
	case len(res.Indicators.Quote) > 0:
		closes = res.Indicators.Quote[0].Close
	}
	return res.Timestamp, closes, len(res.Timestamp) > 0 && len(closes) > 0
}

// rangeFor picks the smallest chart range covering days of history.
func rangeFor(days int) string {
	switch {
	case days <= 30:
		return "1mo"
	case days <= 90:
		return "3mo"
	case days <= 180:
		return "6mo"
	case days <= 365:
		return "1y"
	case days <= 730:
		return "2y"
	default:
		return "5y"
	}
}

// FetchSeries returns up to days daily closes, oldest first. Null closes are
// dropped and a same-day intraday point replaces the earlier one of that day.
func (f *YahooFetcher) FetchSeries(ctx context.Context, symbol string, days int) (model.PriceSeries, error) {
	ticker := f.yahooSymbol(symbol)
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s", f.BaseURL, url.PathEscape(ticker), rangeFor(days))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return model.PriceSeries{}, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("yahoo %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("yahoo %s: read body: %w", ticker, err)
	}
	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		if resp.StatusCode != http.StatusOK {
			return model.PriceSeries{}, fmt.Errorf("yahoo %s: status %d", ticker, resp.StatusCode)
		}
		return model.PriceSeries{}, fmt.Errorf("yahoo %s: decode: %w", ticker, err)
	}
	if chart.Chart.Error != nil {
		return model.PriceSeries{}, fmt.Errorf("yahoo %s: %s", ticker, chart.Chart.Error.Description)
	}
	ts, closes, ok := chart.closes()
	if !ok {
		return model.PriceSeries{}, fmt.Errorf("yahoo %s: %w", ticker, ErrNoPrices)
	}

	byDay := make(map[time.Time]float64, len(ts))
	for i, sec := range ts {
		if i >= len(closes) || closes[i] == nil || *closes[i] == 0 {
			continue
		}
		byDay[time.Unix(sec, 0).UTC().Truncate(24*time.Hour)] = *closes[i]
	}
	points := make([]model.PricePoint, 0, len(byDay))
	for d, c := range byDay {
		points = append(points, model.PricePoint{Date: d, Close: c})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	points = calculator.TrailingValid(points, days)
	return model.PriceSeries{Symbol: strings.ToUpper(symbol), Points: points, FetchedAt: time.Now()}, nil
}
