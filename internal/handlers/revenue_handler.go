package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Acurioustractor/empathy-ledger-syndication/internal/models"
	"github.com/Acurioustractor/empathy-ledger-syndication/internal/service"
	"github.com/Acurioustractor/empathy-ledger-syndication/internal/utils"
)

// RevenueHandler handles revenue attribution HTTP requests
type RevenueHandler struct {
	revenue *service.RevenueService
	logger  *logrus.Logger
}

// NewRevenueHandler creates a new RevenueHandler
func NewRevenueHandler(revenue *service.RevenueService, logger *logrus.Logger) *RevenueHandler {
	return &RevenueHandler{revenue: revenue, logger: logger}
}

// Compute handles POST /api/v1/revenue/compute
func (h *RevenueHandler) Compute(c *gin.Context) {
	var req models.ComputePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err)
		return
	}

	result, err := h.revenue.ComputePeriod(c.Request.Context(), &req)
	if err != nil {
		utils.SendServiceError(c, h.logger, err)
		return
	}

	utils.SendOKResponse(c, result)
}

// MarkPaid handles POST /api/v1/revenue/mark-paid
func (h *RevenueHandler) MarkPaid(c *gin.Context) {
	var req models.MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err)
		return
	}

	result, err := h.revenue.MarkPaid(c.Request.Context(), &req)
	if err != nil {
		utils.SendServiceError(c, h.logger, err)
		return
	}

	utils.SendOKResponse(c, result)
}

// ListEntries handles GET /api/v1/revenue/entries. With periodStart and
// periodEnd it scopes to one period; otherwise it pages across all.
func (h *RevenueHandler) ListEntries(c *gin.Context) {
	startStr := c.Query("periodStart")
	endStr := c.Query("periodEnd")

	if startStr != "" && endStr != "" {
		start, err := strconv.ParseInt(startStr, 10, 64)
		if err != nil {
			utils.SendBadRequestError(c, "invalid periodStart")
			return
		}
		end, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil {
			utils.SendBadRequestError(c, "invalid periodEnd")
			return
		}

		entries, err := h.revenue.ListByPeriod(c.Request.Context(), start, end)
		if err != nil {
			utils.SendServiceError(c, h.logger, err)
			return
		}
		utils.SendOKResponse(c, entries)
		return
	}

	limit, offset := utils.GetPaginationParams(c)
	entries, err := h.revenue.List(c.Request.Context(), limit, offset)
	if err != nil {
		utils.SendServiceError(c, h.logger, err)
		return
	}
	utils.SendOKResponse(c, entries)
}
