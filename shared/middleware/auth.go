package middleware

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	customerIDKey = "customerId"
	roleKey       = "role"

	// RoleAdmin is the claim value allowed to approve loans.
	RoleAdmin = "admin"
)

var (
	jwtSecretOnce sync.Once
	jwtSecretVal  []byte
)

func jwtSecret() []byte {
	jwtSecretOnce.Do(func() {
		secret := os.Getenv("JWT_SECRET")
		if secret == "" {
			panic("JWT_SECRET environment variable is not set")
		}
		jwtSecretVal = []byte(secret)
	})
	return jwtSecretVal
}

// MustInitJWTSecret resolves the signing secret at startup so a missing
// JWT_SECRET fails the process before it accepts traffic.
func MustInitJWTSecret() {
	_ = jwtSecret()
}

// Claims are issued by the auth service. UserID is the customer identity.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

var (
	errMissingHeader = errors.New("Authorization header required")
	errHeaderFormat  = errors.New("Invalid authorization header format")
	errInvalidToken  = errors.New("Invalid or expired token")
)

// ParseBearer validates an "Authorization: Bearer <jwt>" header value. Only
// HS256 tokens that name a user are accepted.
func ParseBearer(header string) (*Claims, error) {
	if header == "" {
		return nil, errMissingHeader
	}
	scheme, raw, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" || raw == "" {
		return nil, errHeaderFormat
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return jwtSecret(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil || !token.Valid || claims.UserID == "" {
		return nil, errInvalidToken
	}
	return claims, nil
}

// AuthMiddleware rejects requests without a valid bearer token and records
// the caller as the customer for the rest of the chain.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := ParseBearer(c.GetHeader("Authorization"))
		if err != nil {
			RespondWithErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
			c.Abort()
			return
		}
		SetPrincipal(c, claims.UserID, claims.Role)
		c.Next()
	}
}

// AdminOnly must run after AuthMiddleware.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(roleKey) != RoleAdmin {
			RespondWithErrorCode(c, http.StatusForbidden, "FORBIDDEN", "Administrator role required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func GetCustomerID(c *gin.Context) (string, bool) {
	customerID := c.GetString(customerIDKey)
	return customerID, customerID != ""
}

// SetPrincipal stores an already authenticated identity on the context.
func SetPrincipal(c *gin.Context, customerID, role string) {
	c.Set(customerIDKey, customerID)
	c.Set(roleKey, role)
}
