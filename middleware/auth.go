package middleware

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const operatorKey = "operator_id"

// OperatorAuth validates a bearer JWT (HS256, shared secret) on dashboard
// routes. The token's sub claim becomes the operator identity stamped into
// reviewed_by.
func OperatorAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "operator auth not configured"})
			c.Abort()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			// Browsers cannot set headers on websocket dials; accept the
			// token as a query parameter on the listen endpoint.
			if t := c.Query("token"); t != "" {
				authHeader = "Bearer " + t
			}
		}

		tokenString := extractToken(authHeader)
		if tokenString == "" {
			log.Printf("WARNING: Missing or malformed authorization from %s", c.ClientIP())
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid authorization header"})
			c.Abort()
			return
		}

		operator, err := validateToken(tokenString, secret)
		if err != nil {
			log.Printf("WARNING: Rejected operator token from %s: %v", c.ClientIP(), err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(operatorKey, operator)
		c.Next()
	}
}

// OperatorFromContext returns the authenticated operator identity, or the
// given fallback when the route runs unauthenticated.
func OperatorFromContext(c *gin.Context, fallback string) string {
	if operator := c.GetString(operatorKey); operator != "" {
		return operator
	}
	return fallback
}

// SignOperatorToken mints an HS256 operator token. Used by the dev client and
// tests; production operators get theirs out of band.
func SignOperatorToken(secret, operator string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": operator,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func extractToken(authHeader string) string {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

func validateToken(tokenString, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("unexpected claims type")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", fmt.Errorf("missing sub claim")
	}
	return sub, nil
}
