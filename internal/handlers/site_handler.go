package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Acurioustractor/empathy-ledger-syndication/internal/models"
	"github.com/Acurioustractor/empathy-ledger-syndication/internal/service"
	"github.com/Acurioustractor/empathy-ledger-syndication/internal/utils"
)

// SiteHandler handles syndication site registry HTTP requests
type SiteHandler struct {
	sites  *service.SiteService
	logger *logrus.Logger
}

// NewSiteHandler creates a new SiteHandler
func NewSiteHandler(sites *service.SiteService, logger *logrus.Logger) *SiteHandler {
	return &SiteHandler{sites: sites, logger: logger}
}

// Create handles POST /api/v1/sites
func (h *SiteHandler) Create(c *gin.Context) {
	var req models.SiteCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err)
		return
	}

	site, err := h.sites.Create(c.Request.Context(), &req)
	if err != nil {
		utils.SendServiceError(c, h.logger, err)
		return
	}

	utils.SendCreatedResponse(c, site)
}

// Get handles GET /api/v1/sites/:siteId
func (h *SiteHandler) Get(c *gin.Context) {
	site, err := h.sites.Get(c.Request.Context(), c.Param("siteId"))
	if err != nil {
		utils.SendServiceError(c, h.logger, err)
		return
	}

	utils.SendOKResponse(c, site)
}

// List handles GET /api/v1/sites
func (h *SiteHandler) List(c *gin.Context) {
	limit, offset := utils.GetPaginationParams(c)

	sites, err := h.sites.List(c.Request.Context(), limit, offset)
	if err != nil {
		utils.SendServiceError(c, h.logger, err)
		return
	}

	utils.SendOKResponse(c, sites)
}

// Suspend handles POST /api/v1/sites/:siteId/suspend
func (h *SiteHandler) Suspend(c *gin.Context) {
	if err := h.sites.Suspend(c.Request.Context(), c.Param("siteId")); err != nil {
		utils.SendServiceError(c, h.logger, err)
		return
	}
	utils.SendNoContentResponse(c)
}

// Activate handles POST /api/v1/sites/:siteId/activate
func (h *SiteHandler) Activate(c *gin.Context) {
	if err := h.sites.Activate(c.Request.Context(), c.Param("siteId")); err != nil {
		utils.SendServiceError(c, h.logger, err)
		return
	}
	utils.SendNoContentResponse(c)
}
