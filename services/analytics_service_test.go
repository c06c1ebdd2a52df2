package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restaurant-oms/oms-api/analytics"
	"github.com/restaurant-oms/oms-api/services"
)

func TestAnalyzeSales_NoData(t *testing.T) {
	f := newFixture(t)

	result, err := f.analytics.AnalyzeSales(f.ctx, services.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, analytics.ConfidenceLow, result.Forecast.Confidence)
	require.Len(t, result.Insights, 1)
	assert.Equal(t, "info", result.Insights[0].Type)
}

func TestAnalyzeSales_RecentSales(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Carbonara", "12", 100)
	b := f.product(t, "Tiramisu", "6", 100)
	f.order(t, "Completed", ref(a.ID, 3), ref(b.ID, 1))
	f.order(t, "Completed", ref(b.ID, 2))

	result, err := f.analytics.AnalyzeSales(f.ctx, services.DateRange{})
	require.NoError(t, err)

	assert.InDelta(t, 54.0, result.Trends.DailyAverages, 1e-9)
	require.Len(t, result.Trends.PeakDays, 1)
	assert.InDelta(t, 54.0, result.Forecast.NextDayForecast, 1e-9)
	assert.Equal(t, analytics.ConfidenceLow, result.Forecast.Confidence)

	require.NotEmpty(t, result.Insights)
	assert.Equal(t, "top_products", result.Insights[0].Type)
	assert.Equal(t, []string{"Carbonara (3 units)", "Tiramisu (3 units)"}, result.Insights[0].Data)
}

func TestDetectAnomalies_Service(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Water", "2", 100)
	for i := 0; i < 3; i++ {
		f.order(t, "Completed", ref(a.ID, 1))
	}

	anomalies, err := f.analytics.DetectAnomalies(f.ctx, services.DateRange{})
	require.NoError(t, err)
	assert.Empty(t, anomalies, "identical amounts have no variance")
}

func TestAnalyzeOrder(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Pasta", "10", 100)
	b := f.product(t, "Wine", "20", 100)
	c := f.product(t, "Bread", "3", 100)

	lonely := f.order(t, "", ref(c.ID, 1))
	result, err := f.analytics.AnalyzeOrder(f.ctx, lonely.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, result.Prediction.Likelihood)
	assert.Equal(t, analytics.ConfidenceLow, result.Prediction.Confidence)
	require.Len(t, result.Recommendations, 1)
	assert.Equal(t, "general", result.Recommendations[0].Type)

	f.order(t, "Completed", ref(a.ID, 1), ref(b.ID, 1))
	f.order(t, "Completed", ref(a.ID, 2))
	f.order(t, "Cancelled", ref(a.ID, 1), ref(c.ID, 1))
	target := f.order(t, "", ref(a.ID, 1))

	result, err = f.analytics.AnalyzeOrder(f.ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, result.Prediction.Likelihood)
	assert.Equal(t, analytics.ConfidenceMedium, result.Prediction.Confidence)
	assert.Equal(t, 2, result.Prediction.Factors.SimilarOrdersCount)
	assert.Len(t, result.SimilarOrders, 2)

	var products []string
	for _, rec := range result.Recommendations {
		if rec.Type == "product" {
			products = rec.Products
		}
	}
	assert.Equal(t, []string{"Wine"}, products)

	_, err = f.analytics.AnalyzeOrder(f.ctx, 999)
	assert.True(t, services.IsKind(err, services.KindNotFound))
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Pasta", "10", 100)
	f.order(t, "Completed", ref(a.ID, 1))
	f.order(t, "", ref(a.ID, 2))

	d, err := f.analytics.Dashboard(f.ctx)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, d.SalesInsights.Trends.DailyAverages, 1e-9)
	assert.LessOrEqual(t, len(d.SalesInsights.TopInsights), 3)
	require.Len(t, d.OrderPredictions, 2)
	assert.Equal(t, "Ada Lovelace", d.OrderPredictions[0].CustomerName)
	assert.NotNil(t, d.RecentAnomalies)
}
