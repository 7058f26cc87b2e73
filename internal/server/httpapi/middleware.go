package httpapi

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/cotsubo/camsync/internal/common"
	"github.com/cotsubo/camsync/internal/logging"
)

// AuthMiddleware authenticates upload requests by bearer token: HS256 JWT
// verification when a secret is configured, constant-time comparison against
// a static token otherwise. With neither configured, requests pass through.
type AuthMiddleware struct {
	logger logging.Logger
	secret string
	token  string
}

// NewAuthMiddleware creates a new authentication middleware.
func NewAuthMiddleware(logger logging.Logger, secret, token string) *AuthMiddleware {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &AuthMiddleware{logger: logger, secret: secret, token: token}
}

// RequireAuth middleware that requires bearer authentication.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.secret == "" && m.token == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader(common.AuthHeaderName)
		if authHeader == "" {
			m.logger.Warn(c.Request.Context(), "missing authorization header")
			m.reject(c)
			return
		}

		if !strings.HasPrefix(authHeader, common.BearerPrefix) {
			m.logger.Warn(c.Request.Context(), "invalid authorization header format")
			m.reject(c)
			return
		}
		bearer := strings.TrimPrefix(authHeader, common.BearerPrefix)

		if m.secret != "" {
			if err := m.verifyJWT(bearer); err != nil {
				m.logger.Warn(c.Request.Context(), "token verification failed", "error", err)
				m.reject(c)
				return
			}
		} else if subtle.ConstantTimeCompare([]byte(bearer), []byte(m.token)) != 1 {
			m.logger.Warn(c.Request.Context(), "invalid bearer token")
			m.reject(c)
			return
		}

		c.Next()
	}
}

func (m *AuthMiddleware) verifyJWT(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(m.secret), nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return common.ErrInvalidToken
	}
	return nil
}

func (m *AuthMiddleware) reject(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, UploadResponse{Success: false, Message: ptr("unauthorized")})
	c.Abort()
}
