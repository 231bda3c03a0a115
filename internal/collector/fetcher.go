package collector

import (
	"context"
	"errors"

	"ThemeSentinel/internal/model"
)

// ErrNoPrices is returned when a source has no closes for a symbol.
var ErrNoPrices = errors.New("no price data")

// Fetcher defines the interface for fetching daily close series. days counts
// valid closes; sources may return more rows when some are missing data.
type Fetcher interface {
	Name() string
	FetchSeries(ctx context.Context, symbol string, days int) (model.PriceSeries, error)
}

// SymbolLister is implemented by fetchers that know their own universe.
type SymbolLister interface {
	Symbols() ([]string, error)
}
