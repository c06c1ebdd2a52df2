package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/restaurant-oms/oms-api/config"
	"github.com/restaurant-oms/oms-api/models"
	"github.com/restaurant-oms/oms-api/services"
)

func testTokens(t *testing.T, ttl time.Duration) *services.TokenManager {
	t.Helper()

	tokens, err := services.NewTokenManager(&config.Config{
		JWTSecret:   "middleware-test-secret",
		JWTIssuer:   "restaurant-oms",
		JWTAudience: "restaurant-oms-api",
		TokenTTL:    ttl,
	})
	require.NoError(t, err)
	return tokens
}

func claimsFor(userID uint, role string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  "restaurant-oms",
			Subject: strconv.FormatUint(uint64(userID), 10),
		},
		CustomClaims: &services.CustomClaims{Username: "tester", Role: role},
	}
}

type errorBody struct {
	Success bool `json:"success"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestEnsureValidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tokens := testTokens(t, time.Hour)
	user := &models.User{ID: 7, Username: "waiter", Role: models.RoleStaff}
	valid, _, err := tokens.Issue(user)
	require.NoError(t, err)

	expired, _, err := testTokens(t, -2*time.Hour).Issue(user)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{name: "valid token", header: "Bearer " + valid, wantStatus: http.StatusOK},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized, wantCode: "MISSING_TOKEN"},
		{name: "malformed token", header: "Bearer not-a-jwt", wantStatus: http.StatusUnauthorized, wantCode: "INVALID_TOKEN"},
		{name: "tampered token", header: "Bearer " + valid + "x", wantStatus: http.StatusUnauthorized, wantCode: "INVALID_TOKEN"},
		{name: "expired token", header: "Bearer " + expired, wantStatus: http.StatusUnauthorized, wantCode: "INVALID_TOKEN"},
		{name: "wrong scheme", header: "Basic " + valid, wantStatus: http.StatusUnauthorized, wantCode: "INVALID_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached := false
			router := gin.New()
			router.GET("/protected", EnsureValidToken(tokens, zap.NewNop()), func(c *gin.Context) {
				reached = true
				id, err := GetUserID(c)
				require.NoError(t, err)
				c.JSON(http.StatusOK, gin.H{
					"userId":   id,
					"username": c.GetString(ContextUsername),
					"role":     c.GetString(ContextRole),
				})
			})

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode == "" {
				assert.True(t, reached)
				assert.JSONEq(t, `{"userId":7,"username":"waiter","role":"staff"}`, w.Body.String())
				return
			}

			assert.False(t, reached, "handler must not run after a rejected token")
			var body errorBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantCode, body.Error.Code)
		})
	}
}

func TestGetUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		setupFunc func(*gin.Context)
		wantID    uint
		wantErr   bool
	}{
		{
			name: "successfully extracts user ID",
			setupFunc: func(c *gin.Context) {
				c.Set(ContextUserID, uint(42))
			},
			wantID:  42,
			wantErr: false,
		},
		{
			name: "user ID not found in context",
			setupFunc: func(c *gin.Context) {
				// Don't set user_id
			},
			wantErr: true,
		},
		{
			name: "user ID has the wrong type",
			setupFunc: func(c *gin.Context) {
				c.Set(ContextUserID, "42")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			tt.setupFunc(c)

			gotID, err := GetUserID(c)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Zero(t, gotID)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantID, gotID)
			}
		})
	}
}

func TestGetClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		setupFunc func(*gin.Context)
		wantErr   bool
	}{
		{
			name: "successfully extracts claims",
			setupFunc: func(c *gin.Context) {
				c.Set(ContextValidatedClaims, claimsFor(1, models.RoleStaff))
			},
			wantErr: false,
		},
		{
			name: "claims not found in context",
			setupFunc: func(c *gin.Context) {
				// Don't set validated_claims
			},
			wantErr: true,
		},
		{
			name: "claims are not the expected type",
			setupFunc: func(c *gin.Context) {
				c.Set(ContextValidatedClaims, "invalid")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			tt.setupFunc(c)

			claims, err := GetClaims(c)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, claims)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, claims)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		setupFunc      func(*gin.Context)
		wantStatusCode int
		wantAborted    bool
	}{
		{
			name: "has required role",
			setupFunc: func(c *gin.Context) {
				c.Set(ContextValidatedClaims, claimsFor(1, models.RoleAdmin))
			},
			wantAborted: false,
		},
		{
			name: "staff is forbidden",
			setupFunc: func(c *gin.Context) {
				c.Set(ContextValidatedClaims, claimsFor(2, models.RoleStaff))
			},
			wantStatusCode: http.StatusForbidden,
			wantAborted:    true,
		},
		{
			name: "claims not in context",
			setupFunc: func(c *gin.Context) {
				// Don't set validated_claims
			},
			wantStatusCode: http.StatusUnauthorized,
			wantAborted:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodDelete, "/test", nil)

			tt.setupFunc(c)

			handler := RequireRole(models.RoleAdmin)
			handler(c)

			if tt.wantAborted {
				assert.True(t, c.IsAborted())
				assert.Equal(t, tt.wantStatusCode, w.Code)
			} else {
				assert.False(t, c.IsAborted())
			}
		})
	}
}

func TestAuthError(t *testing.T) {
	err := &AuthError{
		Code:    "TEST_ERROR",
		Message: "This is a test error",
	}

	assert.Equal(t, "This is a test error", err.Error())
}
