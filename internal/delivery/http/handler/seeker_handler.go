package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gdugdh24/sublease-matcher-backend/internal/usecase/profile"
)

type SeekerHandler struct {
	profileUseCase *profile.ProfileUseCase
	logger         *zap.Logger
}

func NewSeekerHandler(profileUseCase *profile.ProfileUseCase, logger *zap.Logger) *SeekerHandler {
	return &SeekerHandler{
		profileUseCase: profileUseCase,
		logger:         logger,
	}
}

// GetMyProfile handles GET /seekers/me
// @Summary Get my seeker profile
// @Tags seekers
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.SeekerProfile
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /seekers/me [get]
func (h *SeekerHandler) GetMyProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	seeker, err := h.profileUseCase.GetByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, seeker)
}

// UpdateMyProfile handles PUT /seekers/me. The first call creates the
// profile; later calls merge the fields present in the body.
func (h *SeekerHandler) UpdateMyProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var cmd profile.UpdateSeekerCmd
	if err := c.ShouldBindJSON(&cmd); err != nil {
		respondBindError(c, err)
		return
	}
	cmd.UserID = userID

	seeker, err := h.profileUseCase.UpsertForUser(c.Request.Context(), &cmd)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, seeker)
}
