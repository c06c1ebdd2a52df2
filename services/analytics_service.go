package services

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/restaurant-oms/oms-api/analytics"
	"github.com/restaurant-oms/oms-api/models"
)

const (
	defaultAnalysisDays  = 30
	anomalyScanLimit     = 100
	similarOrdersLimit   = 5
	dashboardOrderSample = 10
)

// OrderAnalysis is the prediction and recommendations for one order.
type OrderAnalysis struct {
	Prediction      analytics.OrderPrediction  `json:"prediction"`
	Recommendations []analytics.Recommendation `json:"recommendations"`
	SimilarOrders   []models.Order             `json:"similarOrders"`
}

// OrderPredictionSummary is a dashboard row for a recent order.
type OrderPredictionSummary struct {
	OrderID      uint                      `json:"orderId"`
	CustomerName string                    `json:"customerName"`
	Prediction   analytics.OrderPrediction `json:"prediction"`
}

// DashboardSales is the sales part of the dashboard.
type DashboardSales struct {
	Trends      analytics.Trends    `json:"trends"`
	Forecast    analytics.Forecast  `json:"forecast"`
	TopInsights []analytics.Insight `json:"topInsights"`
}

// Dashboard combines the last 30 days of sales analysis, predictions for
// recent orders and recent anomalies.
type Dashboard struct {
	SalesInsights    DashboardSales           `json:"salesInsights"`
	OrderPredictions []OrderPredictionSummary `json:"orderPredictions"`
	RecentAnomalies  []analytics.Anomaly      `json:"recentAnomalies"`
}

// AnalyticsService loads sales, transactions and orders and runs the
// analytics heuristics over them.
type AnalyticsService struct {
	db        *gorm.DB
	reporting *ReportingService
	orders    *OrderService
	lg        *zap.Logger
	now       func() time.Time
}

// NewAnalyticsService creates an analytics service.
func NewAnalyticsService(db *gorm.DB, reporting *ReportingService, orders *OrderService, lg *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		db:        db,
		reporting: reporting,
		orders:    orders,
		lg:        lg.Named("analytics"),
		now:       time.Now,
	}
}

func (s *AnalyticsService) window(r DateRange) DateRange {
	if r.IsZero() {
		return LastDays(s.now(), defaultAnalysisDays)
	}
	return r
}

// AnalyzeSales analyses sales in r, or the last 30 days when r is empty.
func (s *AnalyticsService) AnalyzeSales(ctx context.Context, r DateRange) (*analytics.SalesAnalysis, error) {
	sales, err := s.reporting.sales(ctx, s.window(r), 0)
	if err != nil {
		return nil, err
	}

	points := make([]analytics.SalePoint, len(sales))
	for i, sale := range sales {
		lines := make([]analytics.SaleLine, len(sale.Items))
		for j, item := range sale.Items {
			lines[j] = analytics.SaleLine{ProductName: item.ProductName, Quantity: item.Quantity}
		}
		points[i] = analytics.SalePoint{At: sale.SaleDate, Amount: sale.TotalAmount.InexactFloat64(), Lines: lines}
	}

	result := analytics.AnalyzeSales(points)
	return &result, nil
}

// DetectAnomalies scores the most recent transactions in r, or in the last
// 30 days when r is empty.
func (s *AnalyticsService) DetectAnomalies(ctx context.Context, r DateRange) ([]analytics.Anomaly, error) {
	txns, err := s.reporting.ListTransactions(ctx, s.window(r), anomalyScanLimit)
	if err != nil {
		return nil, err
	}

	points := make([]analytics.TransactionPoint, len(txns))
	for i, t := range txns {
		points[i] = analytics.TransactionPoint{
			ID:        t.ID,
			Reference: t.Reference,
			Amount:    t.Amount.InexactFloat64(),
			At:        t.TransactionDate,
		}
	}

	anomalies := analytics.DetectAnomalies(points)
	if len(anomalies) > 0 {
		s.lg.Info("Transaction anomalies detected", zap.Int("count", len(anomalies)))
	}
	return anomalies, nil
}

// AnalyzeOrder predicts an order's outcome from completed orders that share
// at least one product with it.
func (s *AnalyticsService) AnalyzeOrder(ctx context.Context, orderID uint) (*OrderAnalysis, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.analyzeOrder(ctx, order)
}

func (s *AnalyticsService) analyzeOrder(ctx context.Context, order *models.Order) (*OrderAnalysis, error) {
	similar, err := s.similarOrders(ctx, order)
	if err != nil {
		return nil, err
	}

	target := orderPoint(order)
	points := make([]analytics.OrderPoint, len(similar))
	for i := range similar {
		points[i] = orderPoint(&similar[i])
	}

	top := similar
	if len(top) > 3 {
		top = top[:3]
	}
	return &OrderAnalysis{
		Prediction:      analytics.PredictOrderSuccess(points),
		Recommendations: analytics.Recommendations(target, points),
		SimilarOrders:   top,
	}, nil
}

// Dashboard summarises the last 30 days.
func (s *AnalyticsService) Dashboard(ctx context.Context) (*Dashboard, error) {
	window := LastDays(s.now(), defaultAnalysisDays)

	sales, err := s.AnalyzeSales(ctx, window)
	if err != nil {
		return nil, err
	}
	topInsights := sales.Insights
	if len(topInsights) > 3 {
		topInsights = topInsights[:3]
	}

	var recent []models.Order
	err = s.db.WithContext(ctx).
		Preload("Items").
		Where("created_at >= ?", *window.Start).
		Order("created_at DESC").Order("id DESC").
		Limit(dashboardOrderSample).
		Find(&recent).Error
	if err != nil {
		return nil, internal(err, "Failed to load recent orders")
	}

	predictions := []OrderPredictionSummary{}
	for i := range recent {
		if len(predictions) == 5 {
			break
		}
		analysis, err := s.analyzeOrder(ctx, &recent[i])
		if err != nil {
			return nil, err
		}
		predictions = append(predictions, OrderPredictionSummary{
			OrderID:      recent[i].ID,
			CustomerName: recent[i].CustomerName,
			Prediction:   analysis.Prediction,
		})
	}

	anomalies, err := s.DetectAnomalies(ctx, window)
	if err != nil {
		return nil, err
	}
	if len(anomalies) > 3 {
		anomalies = anomalies[:3]
	}

	return &Dashboard{
		SalesInsights: DashboardSales{
			Trends:      sales.Trends,
			Forecast:    sales.Forecast,
			TopInsights: topInsights,
		},
		OrderPredictions: predictions,
		RecentAnomalies:  anomalies,
	}, nil
}

func (s *AnalyticsService) similarOrders(ctx context.Context, order *models.Order) ([]models.Order, error) {
	similar := []models.Order{}
	ids := order.ProductIDs()
	if len(ids) == 0 {
		return similar, nil
	}

	db := s.db.WithContext(ctx)
	sharing := db.Model(&models.OrderItem{}).Select("order_id").Where("product_id IN ?", ids)
	err := db.
		Preload("Items").
		Where("status = ? AND id <> ? AND id IN (?)", models.OrderStatusCompleted, order.ID, sharing).
		Order("created_at DESC").Order("id DESC").
		Limit(similarOrdersLimit).
		Find(&similar).Error
	if err != nil {
		return nil, internal(err, "Failed to load similar orders")
	}
	return similar, nil
}

func orderPoint(o *models.Order) analytics.OrderPoint {
	lines := make([]analytics.OrderLine, len(o.Items))
	for i, item := range o.Items {
		lines[i] = analytics.OrderLine{ProductID: item.ProductID, ProductName: item.ProductName}
	}
	return analytics.OrderPoint{
		ID:        o.ID,
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
		Lines:     lines,
	}
}
