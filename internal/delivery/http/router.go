package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/gdugdh24/sublease-matcher-backend/internal/delivery/http/handler"
	"github.com/gdugdh24/sublease-matcher-backend/internal/delivery/http/middleware"
)

type Router struct {
	userHandler    *handler.UserHandler
	seekerHandler  *handler.SeekerHandler
	listingHandler *handler.ListingHandler
	swipeHandler   *handler.SwipeHandler
	matchHandler   *handler.MatchHandler
	authMiddleware *middleware.AuthMiddleware
	gatherer       prometheus.Gatherer
	corsOrigins    []string
	logger         *zap.Logger
}

func NewRouter(
	userHandler *handler.UserHandler,
	seekerHandler *handler.SeekerHandler,
	listingHandler *handler.ListingHandler,
	swipeHandler *handler.SwipeHandler,
	matchHandler *handler.MatchHandler,
	authMiddleware *middleware.AuthMiddleware,
	gatherer prometheus.Gatherer,
	corsOrigins []string,
	logger *zap.Logger,
) *Router {
	return &Router{
		userHandler:    userHandler,
		seekerHandler:  seekerHandler,
		listingHandler: listingHandler,
		swipeHandler:   swipeHandler,
		matchHandler:   matchHandler,
		authMiddleware: authMiddleware,
		gatherer:       gatherer,
		corsOrigins:    corsOrigins,
		logger:         logger,
	}
}

func (r *Router) Setup() *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(r.logger), middleware.Recovery(r.logger))
	if len(r.corsOrigins) > 0 {
		router.Use(middleware.CORS(r.corsOrigins))
	}

	// Health check (supports both GET and HEAD)
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	if r.gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})))
	}

	// API v1, every route requires a bearer token
	v1 := router.Group("/api/v1")
	v1.Use(r.authMiddleware.RequireAuth())
	{
		users := v1.Group("/users")
		{
			users.GET("/me", r.userHandler.Me)
			users.PUT("/me", r.userHandler.UpdateMe)
		}

		seekers := v1.Group("/seekers")
		{
			seekers.GET("/me", r.seekerHandler.GetMyProfile)
			seekers.PUT("/me", r.seekerHandler.UpdateMyProfile)
		}

		listings := v1.Group("/listings")
		{
			listings.GET("/me", r.listingHandler.GetMyListing)
			listings.PUT("/me", r.listingHandler.UpsertMyListing)
			listings.GET("/:id", r.listingHandler.GetListing)
			listings.POST("/:id/publish", r.listingHandler.Publish)
			listings.POST("/:id/unlist", r.listingHandler.Unlist)
		}

		swipe := v1.Group("/swipe")
		{
			swipe.GET("/queue/seeker", r.swipeHandler.SeekerQueue)
			swipe.GET("/queue/host", r.swipeHandler.HostQueue)
			swipe.POST("", r.swipeHandler.CreateSwipe)
			swipe.POST("/undo", r.swipeHandler.Undo)
			swipe.GET("/history", r.swipeHandler.History)
		}

		matches := v1.Group("/matches")
		{
			matches.GET("", r.matchHandler.ListMatches)
			matches.GET("/:id", r.matchHandler.GetMatch)
		}
	}

	return router
}
