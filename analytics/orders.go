package analytics

import (
	"fmt"
	"time"
)

// OrderLine is one product line of an order.
type OrderLine struct {
	ProductID   uint
	ProductName string
}

// OrderPoint is an order reduced to what prediction needs.
type OrderPoint struct {
	ID        uint
	Status    string
	CreatedAt time.Time
	Lines     []OrderLine
}

// PredictionFactors lists the evidence behind a prediction.
type PredictionFactors struct {
	SimilarOrdersCount      int `json:"similarOrdersCount"`
	SuccessfulSimilarOrders int `json:"successfulSimilarOrders"`
}

// OrderPrediction estimates how likely an order is to complete.
type OrderPrediction struct {
	Likelihood float64           `json:"likelihood"`
	Confidence Confidence        `json:"confidence"`
	Factors    PredictionFactors `json:"factors"`
}

// Recommendation is a suggestion derived from similar orders.
type Recommendation struct {
	Type     string   `json:"type"`
	Message  string   `json:"message"`
	Products []string `json:"products,omitempty"`
}

const completedStatus = "Completed"

// PredictOrderSuccess rates an order by the share of similar orders that
// completed. Without similar orders the prediction is a neutral 50.
func PredictOrderSuccess(similar []OrderPoint) OrderPrediction {
	if len(similar) == 0 {
		return OrderPrediction{Likelihood: 50, Confidence: ConfidenceLow}
	}

	successful := 0
	for _, o := range similar {
		if o.Status == completedStatus {
			successful++
		}
	}

	confidence := ConfidenceMedium
	if len(similar) > 3 {
		confidence = ConfidenceHigh
	}
	return OrderPrediction{
		Likelihood: float64(successful) / float64(len(similar)) * 100,
		Confidence: confidence,
		Factors: PredictionFactors{
			SimilarOrdersCount:      len(similar),
			SuccessfulSimilarOrders: successful,
		},
	}
}

// RelatedProducts returns the names of products bought in similar orders
// that are not already part of order, in first-seen order.
func RelatedProducts(order OrderPoint, similar []OrderPoint) []string {
	own := make(map[uint]struct{}, len(order.Lines))
	for _, l := range order.Lines {
		own[l.ProductID] = struct{}{}
	}

	seen := make(map[string]struct{})
	out := []string{}
	for _, o := range similar {
		for _, l := range o.Lines {
			if _, ok := own[l.ProductID]; ok || l.ProductName == "" {
				continue
			}
			if _, ok := seen[l.ProductName]; ok {
				continue
			}
			seen[l.ProductName] = struct{}{}
			out = append(out, l.ProductName)
		}
	}
	return out
}

// Recommendations suggests a delivery time from the mean creation time of
// similar orders and lists related products.
func Recommendations(order OrderPoint, similar []OrderPoint) []Recommendation {
	if len(similar) == 0 {
		return []Recommendation{{
			Type:    "general",
			Message: "No similar orders found to generate specific recommendations.",
		}}
	}

	var recs []Recommendation
	var sum int64
	for _, o := range similar {
		sum += o.CreatedAt.Unix()
	}
	avg := time.Unix(sum/int64(len(similar)), 0).UTC()
	recs = append(recs, Recommendation{
		Type:    "delivery",
		Message: fmt.Sprintf("Recommended delivery time based on similar orders: %s", avg.Format("15:04")),
	})

	if related := RelatedProducts(order, similar); len(related) > 0 {
		recs = append(recs, Recommendation{
			Type:     "product",
			Message:  "Customers who ordered these items also bought:",
			Products: related,
		})
	}
	return recs
}
