package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/gdugdh24/sublease-matcher-backend/internal/delivery/http/handler"
	"github.com/gdugdh24/sublease-matcher-backend/internal/domain"
)

var ErrInvalidToken = errors.New("invalid token")

// AuthMiddleware verifies HS256 bearer tokens. Tokens are issued elsewhere;
// the only claim read is user_id.
type AuthMiddleware struct {
	secret []byte
	logger *zap.Logger
}

func NewAuthMiddleware(secret string, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{
		secret: []byte(secret),
		logger: logger,
	}
}

// RequireAuth rejects requests without a valid token and stores the caller's
// domain.UserID under handler.ContextUserID.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(tokenString) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.ErrorResponse{Error: "missing bearer token"})
			return
		}

		userID, err := m.VerifyToken(strings.TrimSpace(tokenString))
		if err != nil {
			m.logger.Debug("token rejected", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.ErrorResponse{Error: "invalid token"})
			return
		}

		c.Set(handler.ContextUserID, userID)
		c.Next()
	}
}

// VerifyToken checks the signature and expiry and returns the user_id claim.
func (m *AuthMiddleware) VerifyToken(tokenString string) (domain.UserID, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	userID, ok := claims["user_id"].(string)
	if !ok || strings.TrimSpace(userID) == "" {
		return "", ErrInvalidToken
	}
	return domain.UserID(userID), nil
}

// IssueToken signs a token for userID valid for ttl. Used by tests and local
// tooling; production tokens come from the identity provider.
func IssueToken(secret string, userID domain.UserID, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": string(userID),
		"exp":     now.Add(ttl).Unix(),
		"iat":     now.Unix(),
	})
	return token.SignedString([]byte(secret))
}
