package mirrorserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	apperrors "studyhub/internal/platform/errors"
)

const subjectKey = "subject"

// MintToken issues an HS256 bearer token whose subject is userID.
func MintToken(secret, userID string, ttl time.Duration, now time.Time) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", fmt.Errorf("%w: jwt secret is required", apperrors.ErrInvalidInput)
	}
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("%w: user id is required", apperrors.ErrInvalidInput)
	}
	claims := jwt.RegisteredClaims{
		Subject:  userID,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// RequireToken validates the bearer token and pins the request to the
// token's subject. A subject that differs from the :uid segment is 403.
func RequireToken(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		claims := &jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(strings.TrimSpace(header[7:]), claims, func(*jwt.Token) (any, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}
		if claims.Subject == "" || claims.Subject != c.Param("uid") {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "token subject does not match user"})
			return
		}
		c.Set(subjectKey, claims.Subject)
		c.Next()
	}
}
