package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/restaurant-oms/oms-api/services"
)

// ReportController serves read-only views of transactions and the sales
// ledger. Payment status changes live on OrderController.
type ReportController struct {
	reporting *services.ReportingService
	lg        *zap.Logger
}

// NewReportController creates a report controller.
func NewReportController(reporting *services.ReportingService, lg *zap.Logger) *ReportController {
	return &ReportController{reporting: reporting, lg: lg}
}

// ListTransactions handles GET /api/v1/transactions?startDate=&endDate=&limit=
func (rc *ReportController) ListTransactions(c *gin.Context) {
	r, err := dateRange(c)
	if err != nil {
		respondError(c, rc.lg, err)
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			respondFail(c, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be a non-negative integer")
			return
		}
	}

	txns, err := rc.reporting.ListTransactions(c.Request.Context(), r, limit)
	if err != nil {
		respondError(c, rc.lg, err)
		return
	}

	respondOK(c, http.StatusOK, txns)
}

// TransactionsByRange handles GET /api/v1/transactions/range?startDate=&endDate=
func (rc *ReportController) TransactionsByRange(c *gin.Context) {
	r, err := dateRange(c)
	if err != nil {
		respondError(c, rc.lg, err)
		return
	}
	if r.Start == nil || r.End == nil {
		respondFail(c, http.StatusBadRequest, "VALIDATION_ERROR", "startDate and endDate are required")
		return
	}

	txns, err := rc.reporting.ListTransactions(c.Request.Context(), r, 0)
	if err != nil {
		respondError(c, rc.lg, err)
		return
	}

	respondOK(c, http.StatusOK, txns)
}

// CompletedTransactions handles GET /api/v1/transactions/completed
func (rc *ReportController) CompletedTransactions(c *gin.Context) {
	txns, err := rc.reporting.CompletedTransactions(c.Request.Context())
	if err != nil {
		respondError(c, rc.lg, err)
		return
	}

	respondOK(c, http.StatusOK, txns)
}

// GetTransaction handles GET /api/v1/transactions/:id
func (rc *ReportController) GetTransaction(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	txn, err := rc.reporting.GetTransaction(c.Request.Context(), id)
	if err != nil {
		respondError(c, rc.lg, err)
		return
	}

	respondOK(c, http.StatusOK, txn)
}

// ListSales handles GET /api/v1/sales?startDate=&endDate=
func (rc *ReportController) ListSales(c *gin.Context) {
	r, err := dateRange(c)
	if err != nil {
		respondError(c, rc.lg, err)
		return
	}

	sales, err := rc.reporting.ListSales(c.Request.Context(), r)
	if err != nil {
		respondError(c, rc.lg, err)
		return
	}

	respondOK(c, http.StatusOK, sales)
}

// SalesSummary handles GET /api/v1/sales/summary?startDate=&endDate=
func (rc *ReportController) SalesSummary(c *gin.Context) {
	r, err := dateRange(c)
	if err != nil {
		respondError(c, rc.lg, err)
		return
	}

	summary, err := rc.reporting.SalesSummary(c.Request.Context(), r)
	if err != nil {
		respondError(c, rc.lg, err)
		return
	}

	respondOK(c, http.StatusOK, summary)
}

// SalesByRange handles GET /api/v1/sales/range?startDate=&endDate=
func (rc *ReportController) SalesByRange(c *gin.Context) {
	r, err := dateRange(c)
	if err != nil {
		respondError(c, rc.lg, err)
		return
	}

	sales, err := rc.reporting.SalesByDateRange(c.Request.Context(), r)
	if err != nil {
		respondError(c, rc.lg, err)
		return
	}

	respondOK(c, http.StatusOK, sales)
}

// GetSale handles GET /api/v1/sales/:id
func (rc *ReportController) GetSale(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	sale, err := rc.reporting.GetSale(c.Request.Context(), id)
	if err != nil {
		respondError(c, rc.lg, err)
		return
	}

	respondOK(c, http.StatusOK, sale)
}
