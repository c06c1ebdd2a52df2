package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/restaurant-oms/oms-api/services"
)

// AIController exposes the sales and order analytics.
type AIController struct {
	analytics *services.AnalyticsService
	lg        *zap.Logger
}

// NewAIController creates an analytics controller.
func NewAIController(analytics *services.AnalyticsService, lg *zap.Logger) *AIController {
	return &AIController{analytics: analytics, lg: lg}
}

// AnalyzeSales handles GET /api/v1/ai/analyze-sales?startDate=&endDate=
func (ac *AIController) AnalyzeSales(c *gin.Context) {
	r, err := dateRange(c)
	if err != nil {
		respondError(c, ac.lg, err)
		return
	}

	analysis, err := ac.analytics.AnalyzeSales(c.Request.Context(), r)
	if err != nil {
		respondError(c, ac.lg, err)
		return
	}

	respondOK(c, http.StatusOK, analysis)
}

// AnalyzeOrder handles GET /api/v1/ai/analyze-order/:orderId
func (ac *AIController) AnalyzeOrder(c *gin.Context) {
	id, ok := parseID(c, "orderId")
	if !ok {
		return
	}

	analysis, err := ac.analytics.AnalyzeOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, ac.lg, err)
		return
	}

	respondOK(c, http.StatusOK, analysis)
}

// DetectAnomalies handles GET /api/v1/ai/detect-anomalies?startDate=&endDate=
func (ac *AIController) DetectAnomalies(c *gin.Context) {
	r, err := dateRange(c)
	if err != nil {
		respondError(c, ac.lg, err)
		return
	}

	anomalies, err := ac.analytics.DetectAnomalies(c.Request.Context(), r)
	if err != nil {
		respondError(c, ac.lg, err)
		return
	}

	respondOK(c, http.StatusOK, anomalies)
}

// Dashboard handles GET /api/v1/ai/dashboard
func (ac *AIController) Dashboard(c *gin.Context) {
	dashboard, err := ac.analytics.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, ac.lg, err)
		return
	}

	respondOK(c, http.StatusOK, dashboard)
}
