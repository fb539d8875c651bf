package api

import (
	"github.com/gin-gonic/gin"
)

func RegisterCampaignRoutes(rg *gin.RouterGroup, handler *Handler) {
	// POST /campaigns          (submit createCampaign)
	rg.POST("", handler.CreateCampaign)

	// POST /campaigns/donate   (submit donate)
	rg.POST("/donate", handler.Donate)

	// GET /campaigns           (query all campaigns)
	rg.GET("", handler.ListCampaigns)

	// GET /campaigns/:id       (query one campaign)
	rg.GET("/:id", handler.GetCampaign)

	// GET /campaigns/:id/history  (key history from the ledger)
	rg.GET("/:id/history", handler.CampaignHistory)
}

// NewRouter builds the full engine with all routes mounted under /api.
func NewRouter(service *Service) *gin.Engine {
	router := gin.Default()
	apiGroup := router.Group("/api")
	RegisterCampaignRoutes(apiGroup.Group("/campaigns"), NewHandler(service))
	return router
}
