package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Acurioustractor/empathy-ledger-syndication/internal/models"
	"github.com/Acurioustractor/empathy-ledger-syndication/internal/service"
	"github.com/Acurioustractor/empathy-ledger-syndication/internal/utils"
)

// StoryHandler handles story registry HTTP requests
type StoryHandler struct {
	stories *service.StoryService
	logger  *logrus.Logger
}

// NewStoryHandler creates a new StoryHandler
func NewStoryHandler(stories *service.StoryService, logger *logrus.Logger) *StoryHandler {
	return &StoryHandler{stories: stories, logger: logger}
}

// Create handles POST /api/v1/stories
func (h *StoryHandler) Create(c *gin.Context) {
	var req models.StoryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err)
		return
	}

	story, err := h.stories.Create(c.Request.Context(), &req)
	if err != nil {
		utils.SendServiceError(c, h.logger, err)
		return
	}

	utils.SendCreatedResponse(c, story)
}

// Get handles GET /api/v1/stories/:storyId
func (h *StoryHandler) Get(c *gin.Context) {
	story, err := h.stories.Get(c.Request.Context(), c.Param("storyId"))
	if err != nil {
		utils.SendServiceError(c, h.logger, err)
		return
	}

	utils.SendOKResponse(c, story)
}

// List handles GET /api/v1/stories
func (h *StoryHandler) List(c *gin.Context) {
	limit, offset := utils.GetPaginationParams(c)

	stories, err := h.stories.List(c.Request.Context(), limit, offset)
	if err != nil {
		utils.SendServiceError(c, h.logger, err)
		return
	}

	utils.SendOKResponse(c, stories)
}
