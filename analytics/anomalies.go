package analytics

import (
	"fmt"
	"math"
	"time"
)

// AnomalyThreshold is the score above which a transaction is reported.
const AnomalyThreshold = 0.7

// TransactionPoint is a transaction reduced to what anomaly scoring needs.
type TransactionPoint struct {
	ID        uint
	Reference string
	Amount    float64
	At        time.Time
}

// AnomalyDetails puts an anomaly in context of the period average.
type AnomalyDetails struct {
	AverageAmount       float64 `json:"averageAmount"`
	Deviation           float64 `json:"deviation"`
	PercentageDeviation float64 `json:"percentageDeviation"`
}

// Anomaly is a transaction whose amount is far from the period mean.
type Anomaly struct {
	TransactionID uint           `json:"transactionId"`
	Reference     string         `json:"reference"`
	Score         float64        `json:"score"`
	Amount        float64        `json:"amount"`
	Date          string         `json:"date"`
	Reasons       []string       `json:"reasons"`
	Details       AnomalyDetails `json:"details"`
}

// AnomalyScore is |amount - mean| / (2 * stddev), capped at 1. A series
// without variance scores zero everywhere.
func AnomalyScore(amount float64, st Stats) float64 {
	if st.StdDev == 0 {
		return 0
	}
	return math.Min(math.Abs(amount-st.Mean)/(2*st.StdDev), 1)
}

// DetectAnomalies returns the transactions scoring above AnomalyThreshold,
// in input order.
func DetectAnomalies(txns []TransactionPoint) []Anomaly {
	out := []Anomaly{}
	if len(txns) == 0 {
		return out
	}

	values := make([]float64, len(txns))
	for i, t := range txns {
		values[i] = t.Amount
	}
	st := Describe(values)

	for _, t := range txns {
		score := AnomalyScore(t.Amount, st)
		if score <= AnomalyThreshold {
			continue
		}

		deviation := math.Abs(t.Amount - st.Mean)
		pct := 0.0
		if st.Mean != 0 {
			pct = deviation / st.Mean * 100
		}
		out = append(out, Anomaly{
			TransactionID: t.ID,
			Reference:     t.Reference,
			Score:         score,
			Amount:        t.Amount,
			Date:          dayOf(t.At),
			Reasons:       AnomalyReasons(t.Amount, st),
			Details: AnomalyDetails{
				AverageAmount:       round2(st.Mean),
				Deviation:           round2(deviation),
				PercentageDeviation: math.Round(pct),
			},
		})
	}
	return out
}

// AnomalyReasons explains why amount stands out against st.
func AnomalyReasons(amount float64, st Stats) []string {
	var reasons []string
	avg := st.Mean

	if avg > 0 && amount > avg*2 {
		reasons = append(reasons, fmt.Sprintf("Transaction amount (%.2f) is %.0f%% higher than average (%.2f)",
			amount, (amount/avg-1)*100, avg))
	}
	if avg > 0 && amount < avg*0.5 {
		reasons = append(reasons, fmt.Sprintf("Transaction amount (%.2f) is %.0f%% lower than average (%.2f)",
			amount, (1-amount/avg)*100, avg))
	}
	if amount == st.Max {
		reasons = append(reasons, "This is the highest transaction amount in the current period")
	}
	if amount == st.Min {
		reasons = append(reasons, "This is the lowest transaction amount in the current period")
	}

	if len(reasons) == 0 {
		return []string{"Unusual transaction pattern detected"}
	}
	return reasons
}
