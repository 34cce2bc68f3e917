package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Acurioustractor/empathy-ledger-syndication/internal/models"
	"github.com/Acurioustractor/empathy-ledger-syndication/internal/service"
	"github.com/Acurioustractor/empathy-ledger-syndication/internal/utils"
)

// ConsentHandler handles consent lifecycle HTTP requests
type ConsentHandler struct {
	consents *service.ConsentService
	tokens   *service.TokenService
	logger   *logrus.Logger
}

// NewConsentHandler creates a new ConsentHandler
func NewConsentHandler(consents *service.ConsentService, tokens *service.TokenService, logger *logrus.Logger) *ConsentHandler {
	return &ConsentHandler{consents: consents, tokens: tokens, logger: logger}
}

// Create handles POST /api/v1/consents
func (h *ConsentHandler) Create(c *gin.Context) {
	var req models.ConsentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err)
		return
	}

	consent, err := h.consents.Create(c.Request.Context(), &req)
	if err != nil {
		utils.SendServiceError(c, h.logger, err)
		return
	}

	utils.SendCreatedResponse(c, consent)
}

// Get handles GET /api/v1/consents/:consentId
func (h *ConsentHandler) Get(c *gin.Context) {
	consent, err := h.consents.Get(c.Request.Context(), c.Param("consentId"))
	if err != nil {
		utils.SendServiceError(c, h.logger, err)
		return
	}

	utils.SendOKResponse(c, consent)
}

// List handles GET /api/v1/consents
func (h *ConsentHandler) List(c *gin.Context) {
	var params models.ConsentSearchParams
	if err := c.ShouldBindQuery(&params); err != nil {
		utils.SendValidationError(c, err)
		return
	}
	params.Limit, params.Offset = utils.GetPaginationParams(c)

	consents, err := h.consents.Search(c.Request.Context(), &params)
	if err != nil {
		utils.SendServiceError(c, h.logger, err)
		return
	}

	utils.SendOKResponse(c, consents)
}

// Audits handles GET /api/v1/consents/:consentId/audits
func (h *ConsentHandler) Audits(c *gin.Context) {
	audits, err := h.consents.Audits(c.Request.Context(), c.Param("consentId"))
	if err != nil {
		utils.SendServiceError(c, h.logger, err)
		return
	}

	utils.SendOKResponse(c, audits)
}

// Approve handles POST /api/v1/consents/:consentId/approve
func (h *ConsentHandler) Approve(c *gin.Context) {
	h.action(c, h.consents.Approve)
}

// Deny handles POST /api/v1/consents/:consentId/deny
func (h *ConsentHandler) Deny(c *gin.Context) {
	h.action(c, h.consents.Deny)
}

// Revoke handles POST /api/v1/consents/:consentId/revoke
func (h *ConsentHandler) Revoke(c *gin.Context) {
	h.action(c, h.consents.Revoke)
}

// FlagForReview handles POST /api/v1/consents/:consentId/review
func (h *ConsentHandler) FlagForReview(c *gin.Context) {
	h.action(c, h.consents.FlagForReview)
}

// IssueToken handles POST /api/v1/consents/:consentId/token. The plaintext in
// the response is the only time the token is ever visible.
func (h *ConsentHandler) IssueToken(c *gin.Context) {
	issued, err := h.tokens.Issue(c.Request.Context(), c.Param("consentId"))
	if err != nil {
		utils.SendServiceError(c, h.logger, err)
		return
	}

	utils.SendCreatedResponse(c, issued)
}

func (h *ConsentHandler) action(c *gin.Context,
	fn func(ctx context.Context, consentID string, req *models.ConsentActionRequest) (*models.ConsentRecord, error)) {

	var req models.ConsentActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err)
		return
	}

	consent, err := fn(c.Request.Context(), c.Param("consentId"), &req)
	if err != nil {
		utils.SendServiceError(c, h.logger, err)
		return
	}

	utils.SendOKResponse(c, consent)
}
