package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gdugdh24/sublease-matcher-backend/internal/usecase/user"
)

type UserHandler struct {
	userUseCase *user.UserUseCase
	logger      *zap.Logger
}

func NewUserHandler(userUseCase *user.UserUseCase, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
		logger:      logger,
	}
}

// Me handles GET /users/me
// @Summary Get current user
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.UserAccount
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	account, err := h.userUseCase.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

// UpdateMe handles PUT /users/me
// @Summary Create or update current user
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body user.UpsertUserCmd true "Account fields"
// @Success 200 {object} domain.UserAccount
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /users/me [put]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var cmd user.UpsertUserCmd
	if err := c.ShouldBindJSON(&cmd); err != nil {
		respondBindError(c, err)
		return
	}
	cmd.UserID = userID

	account, err := h.userUseCase.Upsert(c.Request.Context(), &cmd)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, account)
}
