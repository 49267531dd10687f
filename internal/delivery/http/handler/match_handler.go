package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gdugdh24/sublease-matcher-backend/internal/domain"
	"github.com/gdugdh24/sublease-matcher-backend/internal/usecase/match"
)

type MatchHandler struct {
	matchUseCase *match.MatchUseCase
	logger       *zap.Logger
}

func NewMatchHandler(matchUseCase *match.MatchUseCase, logger *zap.Logger) *MatchHandler {
	return &MatchHandler{
		matchUseCase: matchUseCase,
		logger:       logger,
	}
}

// ListMatches handles GET /matches?limit=&offset=
// @Summary List my matches
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Page size, 0 for all"
// @Param offset query int false "Offset"
// @Success 200 {object} repository.Page[domain.Match]
// @Router /matches [get]
func (h *MatchHandler) ListMatches(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		return
	}

	page, err := h.matchUseCase.MyMatches(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetMatch handles GET /matches/:id
func (h *MatchHandler) GetMatch(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	m, err := h.matchUseCase.Get(c.Request.Context(), userID, domain.MatchID(c.Param("id")))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, m)
}
