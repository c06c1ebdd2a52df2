package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/restaurant-oms/oms-api/services"
)

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondFail(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// statusFor maps a service error to its HTTP status.
func statusFor(e *services.Error) int {
	switch e.Kind {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindUnauthorized, services.KindInvalidCredentials:
		return http.StatusUnauthorized
	case services.KindConflict:
		// A taken username is reported as a bad registration request.
		if e.Code == "USERNAME_TAKEN" {
			return http.StatusBadRequest
		}
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as an error envelope. Internal errors are logged
// and their details kept out of the response.
func respondError(c *gin.Context, lg *zap.Logger, err error) {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		svcErr = services.NewInternalError(err, "An unexpected error occurred")
	}

	status := statusFor(svcErr)
	if status == http.StatusInternalServerError {
		lg.Error("Request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("code", svcErr.Code),
			zap.Error(err),
		)
		_ = c.Error(err)
	}
	respondFail(c, status, svcErr.Code, svcErr.Message)
}

// bindJSON decodes the request body into req, rejecting unknown fields, and
// runs the binding validation. It writes the 400 response itself and
// reports whether the handler may continue.
func bindJSON(c *gin.Context, req any) bool {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(req)
	if errors.Is(err, io.EOF) {
		err = errors.New("request body is empty")
	}
	if err == nil {
		err = binding.Validator.ValidateStruct(req)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return false
	}
	return true
}

// parseID reads a positive numeric path parameter.
func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		respondFail(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+param)
		return 0, false
	}
	return uint(id), true
}

// dateRange parses the startDate and endDate query parameters.
func dateRange(c *gin.Context) (services.DateRange, error) {
	return services.ParseDateRange(c.Query("startDate"), c.Query("endDate"))
}
