package services

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/restaurant-oms/oms-api/models"
)

// DateRange is an optional time window. Nil bounds are open.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// ParseDateRange turns YYYY-MM-DD (or RFC 3339) bounds into an inclusive
// range covering the start of the first day to the end of the last, in UTC.
// Empty strings leave that side open.
func ParseDateRange(start, end string) (DateRange, error) {
	var r DateRange
	if start != "" {
		t, err := parseDay(start)
		if err != nil {
			return r, NewValidationError("INVALID_DATE", "startDate must be formatted as YYYY-MM-DD")
		}
		r.Start = &t
	}
	if end != "" {
		t, err := parseDay(end)
		if err != nil {
			return r, NewValidationError("INVALID_DATE", "endDate must be formatted as YYYY-MM-DD")
		}
		t = t.Add(24*time.Hour - time.Nanosecond)
		r.End = &t
	}
	if r.Start != nil && r.End != nil && r.End.Before(*r.Start) {
		return r, NewValidationError("INVALID_DATE_RANGE", "endDate must not be before startDate")
	}
	return r, nil
}

// LastDays is the range covering the last n days up to now.
func LastDays(now time.Time, n int) DateRange {
	now = now.UTC()
	start := now.AddDate(0, 0, -n)
	return DateRange{Start: &start, End: &now}
}

func parseDay(raw string) (time.Time, error) {
	if t, err := time.Parse(orderDateLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool {
	return r.Start == nil && r.End == nil
}

func (r DateRange) apply(q *gorm.DB, column string) *gorm.DB {
	if r.Start != nil {
		q = q.Where(column+" >= ?", *r.Start)
	}
	if r.End != nil {
		q = q.Where(column+" <= ?", *r.End)
	}
	return q
}

// SalesSummary aggregates sales over a range.
type SalesSummary struct {
	TotalSales        decimal.Decimal `json:"totalSales"`
	AverageSale       decimal.Decimal `json:"averageSale"`
	TotalTransactions int             `json:"totalTransactions"`
	TotalItems        int             `json:"totalItems"`
}

// ReportingService answers read-only questions about sales and transactions.
type ReportingService struct {
	db *gorm.DB
	lg *zap.Logger
}

// NewReportingService creates a reporting service.
func NewReportingService(db *gorm.DB, lg *zap.Logger) *ReportingService {
	return &ReportingService{db: db, lg: lg.Named("reporting")}
}

// SalesSummary sums the sales in r. TotalItems counts sale lines.
func (s *ReportingService) SalesSummary(ctx context.Context, r DateRange) (*SalesSummary, error) {
	sales, err := s.sales(ctx, r, 0)
	if err != nil {
		return nil, err
	}

	summary := &SalesSummary{TotalSales: decimal.Zero, AverageSale: decimal.Zero}
	for _, sale := range sales {
		summary.TotalSales = summary.TotalSales.Add(sale.TotalAmount)
		summary.TotalItems += len(sale.Items)
	}
	summary.TotalTransactions = len(sales)
	if len(sales) > 0 {
		summary.AverageSale = summary.TotalSales.Div(decimal.NewFromInt(int64(len(sales)))).Round(2)
	}
	return summary, nil
}

// SalesByDateRange returns sales whose sale date falls within r, oldest
// first. Both bounds are required.
func (s *ReportingService) SalesByDateRange(ctx context.Context, r DateRange) ([]models.Sale, error) {
	if r.Start == nil || r.End == nil {
		return nil, NewValidationError("VALIDATION_ERROR", "startDate and endDate are required")
	}
	return s.sales(ctx, r, 0)
}

// ListSales returns sales newest first.
func (s *ReportingService) ListSales(ctx context.Context, r DateRange) ([]models.Sale, error) {
	sales, err := s.sales(ctx, r, 0)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(sales)-1; i < j; i, j = i+1, j-1 {
		sales[i], sales[j] = sales[j], sales[i]
	}
	return sales, nil
}

// GetSale returns a single sale with its lines.
func (s *ReportingService) GetSale(ctx context.Context, id uint) (*models.Sale, error) {
	var sale models.Sale
	if err := s.db.WithContext(ctx).Preload("Items").First(&sale, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("SALE_NOT_FOUND", "Sale not found")
		}
		return nil, internal(err, "Failed to load sale")
	}
	return &sale, nil
}

// ListTransactions returns transactions in r, newest first, with their
// orders. limit <= 0 means no limit.
func (s *ReportingService) ListTransactions(ctx context.Context, r DateRange, limit int) ([]models.Transaction, error) {
	q := r.apply(s.db.WithContext(ctx), "transaction_date").
		Preload("Order").
		Order("transaction_date DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	txns := []models.Transaction{}
	if err := q.Find(&txns).Error; err != nil {
		return nil, internal(err, "Failed to list transactions")
	}
	return txns, nil
}

// CompletedTransactions returns transactions whose payment is Completed,
// newest first, with their orders and lines.
func (s *ReportingService) CompletedTransactions(ctx context.Context) ([]models.Transaction, error) {
	txns := []models.Transaction{}
	err := s.db.WithContext(ctx).
		Where("status = ?", models.TransactionStatusCompleted).
		Preload("Order").
		Preload("Order.Items").
		Order("transaction_date DESC").Order("id DESC").
		Find(&txns).Error
	if err != nil {
		return nil, internal(err, "Failed to list completed transactions")
	}
	return txns, nil
}

// GetTransaction returns a single transaction with its order.
func (s *ReportingService) GetTransaction(ctx context.Context, id uint) (*models.Transaction, error) {
	var txn models.Transaction
	err := s.db.WithContext(ctx).
		Preload("Order").
		Preload("Order.Items").
		First(&txn, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("TRANSACTION_NOT_FOUND", "Transaction not found")
		}
		return nil, internal(err, "Failed to load transaction")
	}
	return &txn, nil
}

func (s *ReportingService) sales(ctx context.Context, r DateRange, limit int) ([]models.Sale, error) {
	q := r.apply(s.db.WithContext(ctx), "sale_date").
		Preload("Items").
		Order("sale_date ASC").Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	sales := []models.Sale{}
	if err := q.Find(&sales).Error; err != nil {
		return nil, internal(err, "Failed to load sales")
	}
	return sales, nil
}
