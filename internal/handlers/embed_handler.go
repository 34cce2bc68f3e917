package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Acurioustractor/empathy-ledger-syndication/internal/models"
	"github.com/Acurioustractor/empathy-ledger-syndication/internal/service"
	"github.com/Acurioustractor/empathy-ledger-syndication/internal/utils"
)

// EmbedHandler handles the partner-facing embed surface: permission checks
// and engagement reporting.
type EmbedHandler struct {
	permission *service.PermissionService
	tokens     *service.TokenService
	engagement *service.EngagementService
	logger     *logrus.Logger
}

// NewEmbedHandler creates a new EmbedHandler
func NewEmbedHandler(permission *service.PermissionService, tokens *service.TokenService,
	engagement *service.EngagementService, logger *logrus.Logger) *EmbedHandler {
	return &EmbedHandler{
		permission: permission,
		tokens:     tokens,
		engagement: engagement,
		logger:     logger,
	}
}

// Permission handles GET /embed/permission. With a token the check is
// authenticated against the token's consent; without one it answers the
// plain (storyId, siteId) distribution question. Either way a negative
// answer is an ordinary 200 with allowed=false; only a bad token is a 401.
func (h *EmbedHandler) Permission(c *gin.Context) {
	storyID := c.Query("storyId")
	siteID := c.Query("siteId")
	token := c.Query("token")

	if token != "" {
		consent, err := h.tokens.Validate(c.Request.Context(), token, renderDomain(c))
		if err != nil {
			utils.SendUnauthorizedError(c, "invalid or expired token")
			return
		}
		if (storyID != "" && consent.StoryID != storyID) || (siteID != "" && consent.SiteID != siteID) {
			utils.SendUnauthorizedError(c, "token not issued for this story and site")
			return
		}
		utils.SendOKResponse(c, models.PermissionDecision{
			Allowed:     true,
			Permissions: consent.Permissions(),
		})
		return
	}

	if storyID == "" || siteID == "" {
		utils.SendBadRequestError(c, "storyId and siteId are required")
		return
	}

	decision, err := h.permission.CanDistribute(c.Request.Context(), storyID, siteID)
	if err != nil {
		utils.SendServiceError(c, h.logger, err)
		return
	}

	utils.SendOKResponse(c, decision)
}

// Engagement handles POST /embed/engagement. Duplicate reports inside the
// dedup window are accepted without recording anything.
func (h *EmbedHandler) Engagement(c *gin.Context) {
	var req models.EngagementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err)
		return
	}
	if req.Domain == "" {
		req.Domain = renderDomain(c)
	}

	event, recorded, err := h.engagement.Record(c.Request.Context(), &req)
	if err != nil {
		utils.SendServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"recorded": recorded,
		"event":    event,
	})
}

// renderDomain resolves the domain a request renders on, preferring an
// explicit query parameter over the browser-supplied Origin header.
func renderDomain(c *gin.Context) string {
	if domain := c.Query("domain"); domain != "" {
		return domain
	}
	return c.GetHeader("Origin")
}
