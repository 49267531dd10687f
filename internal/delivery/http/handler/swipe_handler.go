package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gdugdh24/sublease-matcher-backend/internal/domain"
	"github.com/gdugdh24/sublease-matcher-backend/internal/usecase/listing"
	"github.com/gdugdh24/sublease-matcher-backend/internal/usecase/swipe"
)

type SwipeHandler struct {
	swipeUseCase   *swipe.SwipeUseCase
	listingUseCase *listing.ListingUseCase
	logger         *zap.Logger
}

func NewSwipeHandler(swipeUseCase *swipe.SwipeUseCase, listingUseCase *listing.ListingUseCase, logger *zap.Logger) *SwipeHandler {
	return &SwipeHandler{
		swipeUseCase:   swipeUseCase,
		listingUseCase: listingUseCase,
		logger:         logger,
	}
}

// CreateSwipeRequest is the body of POST /swipe. TargetKind is optional; when
// empty the listing-/seeker- prefix of TargetID decides.
type CreateSwipeRequest struct {
	TargetID   string `json:"target_id" binding:"required"`
	TargetKind string `json:"target_kind" binding:"omitempty,oneof=listing seeker"`
	Decision   string `json:"decision" binding:"required"`
}

type UndoResponse struct {
	Undone bool          `json:"undone"`
	Swipe  *domain.Swipe `json:"swipe,omitempty"`
}

// SeekerQueue handles GET /swipe/queue/seeker?limit=
// @Summary Listings to swipe on
// @Tags swipe
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Queue size (default 20, max 100)"
// @Success 200 {array} swipe.ListingQueueItem
// @Failure 404 {object} ErrorResponse
// @Router /swipe/queue/seeker [get]
func (h *SwipeHandler) SeekerQueue(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", swipe.DefaultLimit)
	if !ok {
		return
	}

	items, err := h.swipeUseCase.QueueForSeeker(c.Request.Context(), domain.SeekerIDFor(userID), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if items == nil {
		items = []swipe.ListingQueueItem{}
	}

	c.JSON(http.StatusOK, items)
}

// HostQueue handles GET /swipe/queue/host?limit=. Seekers are ranked against
// the caller's listing.
// @Summary Seekers to swipe on for the caller's listing
// @Tags swipe
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Queue size (default 20, max 100)"
// @Success 200 {array} swipe.SeekerQueueItem
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /swipe/queue/host [get]
func (h *SwipeHandler) HostQueue(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", swipe.DefaultLimit)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	mine, err := h.listingUseCase.GetMine(ctx, domain.HostIDFor(userID))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	items, err := h.swipeUseCase.QueueForHost(ctx, mine.ID, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if items == nil {
		items = []swipe.SeekerQueueItem{}
	}

	c.JSON(http.StatusOK, items)
}

// CreateSwipe handles POST /swipe
// @Summary Like or pass a listing or a seeker
// @Tags swipe
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateSwipeRequest true "Swipe"
// @Success 201 {object} swipe.SwipeResult
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /swipe [post]
func (h *SwipeHandler) CreateSwipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreateSwipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	target, err := domain.ParseSwipeTarget(req.TargetKind, req.TargetID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	result, err := h.swipeUseCase.Record(c.Request.Context(), swipe.SwipeCmd{
		UserID:   userID,
		Target:   target,
		Decision: req.Decision,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// Undo handles POST /swipe/undo. An empty history is not an error.
// @Summary Undo the caller's most recent swipe
// @Tags swipe
// @Security BearerAuth
// @Produce json
// @Success 200 {object} UndoResponse
// @Failure 401 {object} ErrorResponse
// @Router /swipe/undo [post]
func (h *SwipeHandler) Undo(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	undone, found, err := h.swipeUseCase.UndoLast(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, UndoResponse{Undone: found, Swipe: undone})
}

// History handles GET /swipe/history?limit=
// @Summary The caller's swipes, newest first
// @Tags swipe
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Page size (default 20, max 100)"
// @Success 200 {array} domain.Swipe
// @Failure 400 {object} ErrorResponse
// @Router /swipe/history [get]
func (h *SwipeHandler) History(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", swipe.DefaultLimit)
	if !ok {
		return
	}

	swipes, err := h.swipeUseCase.History(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if swipes == nil {
		swipes = []domain.Swipe{}
	}

	c.JSON(http.StatusOK, swipes)
}
