package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdugdh24/sublease-matcher-backend/internal/delivery/http/handler"
	"github.com/gdugdh24/sublease-matcher-backend/internal/domain"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestVerifyToken(t *testing.T) {
	m := NewAuthMiddleware(secret, nil)

	valid, err := IssueToken(secret, "u-1", time.Hour)
	require.NoError(t, err)
	expired, err := IssueToken(secret, "u-1", -time.Minute)
	require.NoError(t, err)
	foreign, err := IssueToken("another-secret-another-secret-xx", "u-1", time.Hour)
	require.NoError(t, err)
	numeric, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 42}).SignedString([]byte(secret))
	require.NoError(t, err)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": "u-1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	userID, err := m.VerifyToken(valid)
	require.NoError(t, err)
	assert.Equal(t, domain.UserID("u-1"), userID)

	for name, token := range map[string]string{
		"expired":     expired,
		"wrong key":   foreign,
		"numeric id":  numeric,
		"alg none":    unsigned,
		"not a token": "abc.def",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.VerifyToken(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewAuthMiddleware(secret, nil)

	r := gin.New()
	r.GET("/me", m.RequireAuth(), func(c *gin.Context) {
		v, _ := c.Get(handler.ContextUserID)
		c.String(http.StatusOK, string(v.(domain.UserID)))
	})

	token, err := IssueToken(secret, "u-7", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid", "Bearer " + token, http.StatusOK, "u-7"},
		{"missing", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized, ""},
		{"garbage", "Bearer garbage", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}
