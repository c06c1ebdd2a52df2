package services

import (
	"context"
	"strconv"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/go-faster/errors"
	"gopkg.in/go-jose/go-jose.v2"
	"gopkg.in/go-jose/go-jose.v2/jwt"

	"github.com/restaurant-oms/oms-api/config"
	"github.com/restaurant-oms/oms-api/models"
)

// CustomClaims are the application claims carried in access tokens next to
// the registered ones.
type CustomClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Validate satisfies validator.CustomClaims.
func (c *CustomClaims) Validate(ctx context.Context) error {
	if c.Username == "" {
		return errors.New("username claim is required")
	}
	return nil
}

// Claims is the identity extracted from a verified token.
type Claims struct {
	UserID    uint
	Username  string
	Role      string
	ExpiresAt time.Time
}

// TokenManager issues HS256 access tokens and verifies them.
type TokenManager struct {
	secret    []byte
	issuer    string
	audience  string
	ttl       time.Duration
	signer    jose.Signer
	validator *validator.Validator
	now       func() time.Time
}

// NewTokenManager creates a token manager from the JWT settings in cfg.
func NewTokenManager(cfg *config.Config) (*TokenManager, error) {
	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 {
		return nil, errors.New("JWT secret is empty")
	}

	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: secret},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create token signer")
	}

	keyFunc := func(ctx context.Context) (interface{}, error) {
		return secret, nil
	}
	v, err := validator.New(
		keyFunc,
		validator.HS256,
		cfg.JWTIssuer,
		[]string{cfg.JWTAudience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, errors.Wrap(err, "set up token validator")
	}

	return &TokenManager{
		secret:    secret,
		issuer:    cfg.JWTIssuer,
		audience:  cfg.JWTAudience,
		ttl:       cfg.TokenTTL,
		signer:    signer,
		validator: v,
		now:       time.Now,
	}, nil
}

// Issue signs a token for user. It returns the token and its expiry.
func (m *TokenManager) Issue(user *models.User) (string, time.Time, error) {
	now := m.now()
	expires := now.Add(m.ttl)

	registered := jwt.Claims{
		Subject:   strconv.FormatUint(uint64(user.ID), 10),
		Issuer:    m.issuer,
		Audience:  jwt.Audience{m.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Expiry:    jwt.NewNumericDate(expires),
	}
	custom := CustomClaims{Username: user.Username, Role: user.Role}

	raw, err := jwt.Signed(m.signer).Claims(registered).Claims(custom).CompactSerialize()
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "sign token")
	}
	return raw, expires, nil
}

// ValidateToken verifies a raw token. Its signature matches what
// jwtmiddleware.New expects.
func (m *TokenManager) ValidateToken(ctx context.Context, token string) (interface{}, error) {
	return m.validator.ValidateToken(ctx, token)
}

// Authenticate verifies a raw token and returns its identity.
func (m *TokenManager) Authenticate(ctx context.Context, token string) (*Claims, error) {
	if token == "" {
		return nil, NewUnauthorizedError("MISSING_TOKEN", "Authorization token is required", nil)
	}

	validated, err := m.ValidateToken(ctx, token)
	if err != nil {
		return nil, NewUnauthorizedError("INVALID_TOKEN", "Invalid or expired token", err)
	}
	return ClaimsFromValidated(validated.(*validator.ValidatedClaims))
}

// ClaimsFromValidated converts the validator's result into Claims.
func ClaimsFromValidated(vc *validator.ValidatedClaims) (*Claims, error) {
	id, err := strconv.ParseUint(vc.RegisteredClaims.Subject, 10, 64)
	if err != nil || id == 0 {
		return nil, NewUnauthorizedError("INVALID_TOKEN", "Invalid or expired token", err)
	}

	claims := &Claims{
		UserID:    uint(id),
		ExpiresAt: time.Unix(vc.RegisteredClaims.Expiry, 0).UTC(),
	}
	if custom, ok := vc.CustomClaims.(*CustomClaims); ok {
		claims.Username = custom.Username
		claims.Role = custom.Role
	}
	return claims, nil
}
