package testutil

import (
	"strconv"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/restaurant-oms/oms-api/models"
	"github.com/restaurant-oms/oms-api/services"
)

// MockValidatedClaims creates a ValidatedClaims as the identity gate would.
func MockValidatedClaims(userID uint, username, role string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  "restaurant-oms",
			Subject: strconv.FormatUint(uint64(userID), 10),
		},
		CustomClaims: &services.CustomClaims{
			Username: username,
			Role:     role,
		},
	}
}

// SetMockAuthContext sets up an authenticated gin context for handler tests.
func SetMockAuthContext(c *gin.Context, userID uint, username, role string) {
	c.Set("user_id", userID)
	c.Set("username", username)
	c.Set("role", role)
	c.Set("validated_claims", MockValidatedClaims(userID, username, role))
}

// CreateUser inserts a user with the given role and returns it together
// with a valid access token.
func CreateUser(t testing.TB, db *gorm.DB, tokens *services.TokenManager, username, role string) (*models.User, string) {
	t.Helper()

	user := models.User{Username: username, PasswordHash: "not-a-real-hash", Role: role}
	require.NoError(t, db.Create(&user).Error)

	token, _, err := tokens.Issue(&user)
	require.NoError(t, err)
	return &user, token
}
