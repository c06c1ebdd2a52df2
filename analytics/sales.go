package analytics

import (
	"fmt"
	"sort"
	"time"
)

// SaleLine is one product line of a sale.
type SaleLine struct {
	ProductName string
	Quantity    int
}

// SalePoint is a sale reduced to what the heuristics need.
type SalePoint struct {
	At     time.Time
	Amount float64
	Lines  []SaleLine
}

// DailyTotal is the summed sale amount of one UTC day.
type DailyTotal struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// Trends describes the shape of daily sales.
type Trends struct {
	DailyAverages float64      `json:"dailyAverages"`
	PeakDays      []DailyTotal `json:"peakDays"`
	Growth        float64      `json:"growth"`
}

// Forecast is a naive next-day sales estimate.
type Forecast struct {
	NextDayForecast float64    `json:"nextDayForecast"`
	Confidence      Confidence `json:"confidence"`
	Trend           Direction  `json:"trend"`
}

// Insight is a human-readable observation about sales.
type Insight struct {
	Type    string   `json:"type"`
	Message string   `json:"message"`
	Data    []string `json:"data,omitempty"`
}

// SalesAnalysis bundles trends, forecast and insights.
type SalesAnalysis struct {
	Trends   Trends    `json:"trends"`
	Forecast Forecast  `json:"forecast"`
	Insights []Insight `json:"insights"`
}

// DailyTotals groups sales by UTC day, oldest day first.
func DailyTotals(sales []SalePoint) []DailyTotal {
	byDay := make(map[string]float64)
	for _, s := range sales {
		byDay[dayOf(s.At)] += s.Amount
	}

	out := make([]DailyTotal, 0, len(byDay))
	for _, day := range sortedKeys(byDay) {
		out = append(out, DailyTotal{Date: day, Amount: byDay[day]})
	}
	return out
}

func amounts(days []DailyTotal) []float64 {
	out := make([]float64, len(days))
	for i, d := range days {
		out[i] = d.Amount
	}
	return out
}

// AnalyzeSales runs trends, forecast and insights over sales.
func AnalyzeSales(sales []SalePoint) SalesAnalysis {
	if len(sales) == 0 {
		return SalesAnalysis{
			Trends:   Trends{PeakDays: []DailyTotal{}},
			Forecast: Forecast{Confidence: ConfidenceLow, Trend: DirectionStable},
			Insights: []Insight{{Type: "info", Message: "No sales data available for analysis"}},
		}
	}

	return SalesAnalysis{
		Trends:   AnalyzeTrends(sales),
		Forecast: ForecastSales(sales),
		Insights: SalesInsights(sales),
	}
}

// AnalyzeTrends reports the mean daily total, the three best days and the
// growth from the first to the last day.
func AnalyzeTrends(sales []SalePoint) Trends {
	days := DailyTotals(sales)

	peaks := make([]DailyTotal, len(days))
	copy(peaks, days)
	sort.SliceStable(peaks, func(i, j int) bool { return peaks[i].Amount > peaks[j].Amount })
	if len(peaks) > 3 {
		peaks = peaks[:3]
	}

	return Trends{
		DailyAverages: mean(amounts(days)),
		PeakDays:      peaks,
		Growth:        GrowthRate(amounts(days)),
	}
}

// GrowthRate is the percentage change from the first to the last value. It
// compares two points only and says nothing about the values in between.
func GrowthRate(values []float64) float64 {
	if len(values) < 2 || values[0] == 0 {
		return 0
	}
	first, last := values[0], values[len(values)-1]
	return (last - first) / first * 100
}

// ForecastSales estimates the next day's sales. With fewer than seven days
// of data it returns the mean daily total at low confidence; otherwise the
// mean of the last seven days, with confidence and trend taken from the
// whole series.
func ForecastSales(sales []SalePoint) Forecast {
	values := amounts(DailyTotals(sales))
	if len(values) < 7 {
		return Forecast{
			NextDayForecast: mean(values),
			Confidence:      ConfidenceLow,
			Trend:           DirectionStable,
		}
	}

	return Forecast{
		NextDayForecast: mean(values[len(values)-7:]),
		Confidence:      ForecastConfidence(values),
		Trend:           TrendDirection(values),
	}
}

// ForecastConfidence buckets the coefficient of variation of values:
// under 20% is high, under 40% medium, anything else low.
func ForecastConfidence(values []float64) Confidence {
	if len(values) < 7 {
		return ConfidenceLow
	}
	st := Describe(values)
	if st.Mean == 0 {
		return ConfidenceLow
	}

	cv := st.StdDev / st.Mean * 100
	switch {
	case cv < 20:
		return ConfidenceHigh
	case cv < 40:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// TrendDirection compares the mean of the second half of values with the
// first half. A move of more than 10% of the first half's mean is a trend.
func TrendDirection(values []float64) Direction {
	if len(values) < 4 {
		return DirectionStable
	}

	half := len(values) / 2
	firstAvg := mean(values[:half])
	secondAvg := mean(values[half:])
	diff := secondAvg - firstAvg

	switch {
	case diff > firstAvg*0.1:
		return DirectionIncreasing
	case diff < -firstAvg*0.1:
		return DirectionDecreasing
	default:
		return DirectionStable
	}
}

// SalesInsights reports the three best-selling products by units and the
// busiest hour of day (UTC) by number of sales.
func SalesInsights(sales []SalePoint) []Insight {
	insights := []Insight{}

	units := make(map[string]int)
	for _, s := range sales {
		for _, line := range s.Lines {
			if line.ProductName != "" {
				units[line.ProductName] += line.Quantity
			}
		}
	}
	if len(units) > 0 {
		names := sortedKeys(units)
		sort.SliceStable(names, func(i, j int) bool { return units[names[i]] > units[names[j]] })
		if len(names) > 3 {
			names = names[:3]
		}
		data := make([]string, len(names))
		for i, name := range names {
			data[i] = fmt.Sprintf("%s (%d units)", name, units[name])
		}
		insights = append(insights, Insight{Type: "top_products", Message: "Top performing products:", Data: data})
	}

	if len(sales) > 0 {
		var byHour [24]int
		for _, s := range sales {
			byHour[s.At.UTC().Hour()]++
		}
		peak := 0
		for h := 1; h < 24; h++ {
			if byHour[h] > byHour[peak] {
				peak = h
			}
		}
		insights = append(insights, Insight{
			Type:    "peak_hours",
			Message: fmt.Sprintf("Peak sales hour is %d:00 with %d sales", peak, byHour[peak]),
		})
	}

	return insights
}
