package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gdugdh24/sublease-matcher-backend/internal/domain"
	"github.com/gdugdh24/sublease-matcher-backend/internal/usecase/listing"
)

type ListingHandler struct {
	listingUseCase *listing.ListingUseCase
	logger         *zap.Logger
}

func NewListingHandler(listingUseCase *listing.ListingUseCase, logger *zap.Logger) *ListingHandler {
	return &ListingHandler{
		listingUseCase: listingUseCase,
		logger:         logger,
	}
}

// GetListing handles GET /listings/:id
// @Summary Get listing by id
// @Tags listings
// @Security BearerAuth
// @Produce json
// @Param id path string true "Listing ID"
// @Success 200 {object} domain.Listing
// @Failure 404 {object} ErrorResponse
// @Router /listings/{id} [get]
func (h *ListingHandler) GetListing(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	l, err := h.listingUseCase.Get(c.Request.Context(), domain.ListingID(c.Param("id")))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, l)
}

// GetMyListing handles GET /listings/me
func (h *ListingHandler) GetMyListing(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	l, err := h.listingUseCase.GetMine(c.Request.Context(), domain.HostIDFor(userID))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, l)
}

// UpsertMyListing handles PUT /listings/me
// @Summary Create or update my listing
// @Description New listings start as DRAFT. Roommates and photo_urls replace the stored sets.
// @Tags listings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body listing.UpsertListingCmd true "Listing fields"
// @Success 200 {object} domain.Listing
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /listings/me [put]
func (h *ListingHandler) UpsertMyListing(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var cmd listing.UpsertListingCmd
	if err := c.ShouldBindJSON(&cmd); err != nil {
		respondBindError(c, err)
		return
	}
	cmd.HostID = domain.HostIDFor(userID)

	l, err := h.listingUseCase.UpsertMine(c.Request.Context(), &cmd)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, l)
}

// Publish handles POST /listings/:id/publish
func (h *ListingHandler) Publish(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	l, err := h.listingUseCase.Publish(c.Request.Context(), listing.PublishListingCmd{
		ListingID: domain.ListingID(c.Param("id")),
		HostID:    domain.HostIDFor(userID),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, l)
}

// Unlist handles POST /listings/:id/unlist
func (h *ListingHandler) Unlist(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	l, err := h.listingUseCase.Unlist(c.Request.Context(), listing.UnlistListingCmd{
		ListingID: domain.ListingID(c.Param("id")),
		HostID:    domain.HostIDFor(userID),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, l)
}
