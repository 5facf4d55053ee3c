package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/family-chores-api/internal/dto"
	apierrors "github.com/yukikurage/family-chores-api/internal/errors"
	"github.com/yukikurage/family-chores-api/internal/models"
	"github.com/yukikurage/family-chores-api/internal/services"
	"github.com/yukikurage/family-chores-api/internal/utils"
)

// LedgerHandler serves task completions and gift redemptions
type LedgerHandler struct {
	ledgerService *services.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledgerService *services.LedgerService) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
	}
}

// CompleteTask records that the caller did a task today
func (h *LedgerHandler) CompleteTask(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	taskID, ok := parseIDParam(c, "id", "task")
	if !ok {
		return
	}

	completion, err := h.ledgerService.CompleteTask(c.Request.Context(), identity, taskID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCompletionDTO(*completion))
}

// RequestGift spends the caller's points on a gift request
func (h *LedgerHandler) RequestGift(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	giftID, ok := parseIDParam(c, "id", "gift")
	if !ok {
		return
	}

	redemption, err := h.ledgerService.RequestGift(c.Request.Context(), identity, giftID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToRedemptionDTO(*redemption))
}

// ListCompletions returns completions visible to the caller
// Can filter by user_id and status
func (h *LedgerHandler) ListCompletions(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	input, ok := listLedgerInput(c)
	if !ok {
		return
	}

	completions, total, err := h.ledgerService.ListCompletions(c.Request.Context(), identity, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCompletionListResponse(completions, input.Page, input.PageSize, total))
}

// ListRedemptions returns redemptions visible to the caller
// Can filter by user_id and status
func (h *LedgerHandler) ListRedemptions(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	input, ok := listLedgerInput(c)
	if !ok {
		return
	}

	redemptions, total, err := h.ledgerService.ListRedemptions(c.Request.Context(), identity, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToRedemptionListResponse(redemptions, input.Page, input.PageSize, total))
}

// SetCompletionStatus lets a guardian dispute or restore a completion
func (h *LedgerHandler) SetCompletionStatus(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "completion")
	if !ok {
		return
	}
	status, ok := bindStatus(c)
	if !ok {
		return
	}

	completion, err := h.ledgerService.SetCompletionStatus(c.Request.Context(), identity, id, models.CompletionStatus(status))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCompletionDTO(*completion))
}

// SetRedemptionStatus approves, rejects or fulfils a gift request
func (h *LedgerHandler) SetRedemptionStatus(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "redemption")
	if !ok {
		return
	}
	status, ok := bindStatus(c)
	if !ok {
		return
	}

	redemption, err := h.ledgerService.SetRedemptionStatus(c.Request.Context(), identity, id, models.RedemptionStatus(status))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToRedemptionDTO(*redemption))
}

func bindStatus(c *gin.Context) (string, bool) {
	type StatusRequest struct {
		Status string `json:"status" binding:"required"`
	}

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return "", false
	}
	return req.Status, true
}

func listLedgerInput(c *gin.Context) (services.ListLedgerInput, bool) {
	params := utils.GetPaginationParams(c)
	input := services.ListLedgerInput{
		Page:     params.Page,
		PageSize: params.Limit,
	}

	if raw := c.Query("user_id"); raw != "" {
		userID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid user_id")
			return input, false
		}
		input.PersonID = &userID
	}
	if status := c.Query("status"); status != "" {
		input.Status = &status
	}

	return input, true
}
