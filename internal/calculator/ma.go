package calculator

import (
	"errors"
	"math"

	"ThemeSentinel/internal/model"
)

// CalculateSMA computes the simple moving average of the given prices over the specified period.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// CalculateSampleStdDev computes the Bessel-corrected standard deviation
// (divisor period-1) of the trailing period prices.
func CalculateSampleStdDev(prices []float64, period int) (float64, error) {
	if period < 2 {
		return 0, errors.New("period must be at least 2")
	}
	mean, err := CalculateSMA(prices, period)
	if err != nil {
		return 0, err
	}
	sq := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		d := prices[i] - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(period-1)), nil
}

// CalculateUpperBand returns mean + multiplier*stddev over the trailing period prices.
func CalculateUpperBand(prices []float64, period int, multiplier float64) (float64, error) {
	mean, err := CalculateSMA(prices, period)
	if err != nil {
		return 0, err
	}
	std, err := CalculateSampleStdDev(prices, period)
	if err != nil {
		return 0, err
	}
	return mean + multiplier*std, nil
}

// ValidClose reports whether c can enter a band window. Zero, negative and
// non-finite closes are missing data.
func ValidClose(c float64) bool {
	return c > 0 && !math.IsNaN(c) && !math.IsInf(c, 0)
}

func validPoints(points []model.PricePoint) []model.PricePoint {
	out := make([]model.PricePoint, 0, len(points))
	for _, p := range points {
		if ValidClose(p.Close) {
			out = append(out, p)
		}
	}
	return out
}

// TrailingValid returns the shortest tail of points holding n valid closes.
// Invalid rows after the earliest kept close stay in place so the series'
// last date is unchanged. A non-positive n keeps everything.
func TrailingValid(points []model.PricePoint, n int) []model.PricePoint {
	if n <= 0 {
		return points
	}
	seen := 0
	for i := len(points) - 1; i >= 0; i-- {
		if !ValidClose(points[i].Close) {
			continue
		}
		if seen++; seen == n {
			return points[i:]
		}
	}
	return points
}

func extractCloses(points []model.PricePoint) []float64 {
	closes := make([]float64, len(points))
	for i, p := range points {
		closes[i] = p.Close
	}
	return closes
}
