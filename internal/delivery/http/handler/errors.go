package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gdugdh24/sublease-matcher-backend/internal/domain"
)

// ContextUserID is the gin context key the auth middleware stores the caller under.
const ContextUserID = "user_id"

// ErrorResponse represents error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with the status of its kind. Errors without a kind
// are logged and hidden behind a generic message.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(status, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}

// respondBindError answers a request whose body could not be decoded. Bad
// values inside well-formed JSON are validation failures.
func respondBindError(c *gin.Context, err error) {
	if domain.IsValueError(err) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
		return
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: fieldErrs.Error()})
		return
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid type for field " + typeErr.Field})
		return
	}
	if errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "request body is empty"})
		return
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
}

// currentUser returns the authenticated caller. It writes 401 and returns
// false when the middleware did not set one.
func currentUser(c *gin.Context) (domain.UserID, bool) {
	v, exists := c.Get(ContextUserID)
	userID, ok := v.(domain.UserID)
	if !exists || !ok || userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return "", false
	}
	return userID, true
}

// queryInt reads a non-negative integer query parameter, falling back to def
// when it is missing.
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + name + " parameter"})
		return 0, false
	}
	return n, true
}
